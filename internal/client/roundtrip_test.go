package client

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/ai-studio/internal/auth"
	"github.com/suPer8Hu/ai-studio/internal/config"
	"github.com/suPer8Hu/ai-studio/internal/creation"
	"github.com/suPer8Hu/ai-studio/internal/httpapi"
	"github.com/suPer8Hu/ai-studio/internal/httpapi/handlers"
	"gorm.io/gorm"
)

type capturingImages struct{ prompts []string }

func (c *capturingImages) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	c.prompts = append(c.prompts, prompt)
	return []byte("png"), nil
}

type urlStore struct{}

func (urlStore) UploadDataURI(ctx context.Context, dataURI string) (string, error) {
	return "https://cdn.test/roundtrip.png", nil
}

func (urlStore) RemoveBackground(ctx context.Context, filename string, image io.Reader) (string, error) {
	return "", nil
}

func (urlStore) RemoveObject(ctx context.Context, filename string, image io.Reader, object string) (string, error) {
	return "", nil
}

func TestRoundTrip_ImagePromptCarriesSubjectAndStyle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&creation.Creation{}))

	images := &capturingImages{}
	svc := creation.NewService(creation.Deps{
		Repo:   creation.NewRepo(db),
		Images: images,
		Store:  urlStore{},
	})
	const secret = "roundtrip-secret"
	router := httpapi.NewRouter(handlers.NewHandler(config.Config{JWTSecret: secret}, svc, nil))
	srv := httptest.NewServer(router)
	defer srv.Close()

	tokens := TokenFunc(func(context.Context) (string, error) {
		return auth.SignJWT("user_rt", string(creation.PlanPremium), secret, time.Minute)
	})
	c := New(srv.URL, tokens)

	const subject = "a lighthouse at dusk"
	for _, style := range ImageStyles {
		url, err := c.GenerateImage(context.Background(), ImagePrompt(subject, style), false)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/roundtrip.png", url)
	}

	require.Len(t, images.prompts, len(ImageStyles))
	for i, p := range images.prompts {
		assert.True(t, strings.Contains(p, subject), p)
		assert.True(t, strings.Contains(p, ImageStyles[i]), p)
	}
}
