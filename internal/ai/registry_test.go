package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()
	reg.Register(" Ollama ", func(ctx context.Context, model string) (TextGenerator, error) {
		return NewOllamaProvider("", model), nil
	})

	p, err := reg.Get(context.Background(), "ollama", "mistral")
	require.NoError(t, err)
	assert.Equal(t, "mistral", p.(*OllamaProvider).Model)

	_, err = reg.Get(context.Background(), "nope", "")
	assert.Error(t, err)
}

func TestOllama_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaGenerateReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, 100, req.Options.NumPredict)
		_, _ = w.Write([]byte(`{"response":"10 titles","done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "titles", 100)
	require.NoError(t, err)
	assert.Equal(t, "10 titles", out)
}

func TestOpenRouter_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var req openRouterChatReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1000, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "review", req.Messages[0].Content)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"solid"}}]}`))
	}))
	defer srv.Close()

	out, err := NewOpenRouterProvider(srv.URL, "key", "openrouter/auto", "", "").Generate(context.Background(), "review", 1000)
	require.NoError(t, err)
	assert.Equal(t, "solid", out)
}
