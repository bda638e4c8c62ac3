package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/suPer8Hu/ai-studio/internal/creation"
)

const (
	TextTimeout  = 60 * time.Second
	ImageTimeout = 120 * time.Second
)

var (
	ErrTimeout     = errors.New("request timeout")
	ErrNoResponse  = errors.New("no response from server")
	ErrNoToken     = errors.New("authentication token not available")
	ErrEmptyResult = errors.New("no content received")
)

// APIError is a failure envelope or a non-200 response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// TokenSource yields the caller's bearer token. It is consulted on every submission.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token.
func StaticToken(tok string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) { return tok, nil })
}

type Client struct {
	baseURL      string
	http         *http.Client
	tokens       TokenSource
	textTimeout  time.Duration
	imageTimeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeouts(text, image time.Duration) Option {
	return func(c *Client) {
		c.textTimeout = text
		c.imageTimeout = image
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{},
		tokens:       tokens,
		textTimeout:  TextTimeout,
		imageTimeout: ImageTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Content json.RawMessage `json:"content"`
	Message string          `json:"message"`
}

func (c *Client) GenerateArticle(ctx context.Context, prompt string, length int) (string, error) {
	return c.postText(ctx, "/api/ai/generate-article", c.textTimeout, map[string]any{"prompt": prompt, "length": length})
}

func (c *Client) GenerateBlogTitle(ctx context.Context, prompt string) (string, error) {
	return c.postText(ctx, "/api/ai/generate-blog-title", c.textTimeout, map[string]any{"prompt": prompt})
}

func (c *Client) GenerateImage(ctx context.Context, prompt string, publish bool) (string, error) {
	return c.postText(ctx, "/api/ai/generate-image", c.imageTimeout, map[string]any{"prompt": prompt, "publish": publish})
}

func (c *Client) RemoveBackground(ctx context.Context, filename string, image io.Reader) (string, error) {
	return c.postFile(ctx, "/api/ai/remove-image-background", c.imageTimeout, "image", filename, image, nil)
}

func (c *Client) RemoveObject(ctx context.Context, filename string, image io.Reader, object string) (string, error) {
	return c.postFile(ctx, "/api/ai/remove-image-object", c.imageTimeout, "image", filename, image, map[string]string{"object": object})
}

func (c *Client) ReviewResume(ctx context.Context, filename string, resume io.Reader) (string, error) {
	return c.postFile(ctx, "/api/ai/resume-review", c.textTimeout, "resume", filename, resume, nil)
}

func (c *Client) UserCreations(ctx context.Context) ([]creation.Creation, error) {
	return c.list(ctx, "/api/user/get-user-creations")
}

func (c *Client) PublishedCreations(ctx context.Context) ([]creation.Creation, error) {
	return c.list(ctx, "/api/user/get-published-creations")
}

func (c *Client) list(ctx context.Context, path string) ([]creation.Creation, error) {
	raw, err := c.do(ctx, http.MethodGet, path, c.textTimeout, "", func() (io.Reader, error) { return nil, nil })
	if err != nil {
		return nil, err
	}
	var out []creation.Creation
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode creations: %w", err)
	}
	return out, nil
}

func (c *Client) postText(ctx context.Context, path string, timeout time.Duration, body any) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	raw, err := c.do(ctx, http.MethodPost, path, timeout, "application/json", func() (io.Reader, error) {
		return bytes.NewReader(b), nil
	})
	if err != nil {
		return "", err
	}
	return contentString(raw)
}

func (c *Client) postFile(ctx context.Context, path string, timeout time.Duration, field, filename string, r io.Reader, fields map[string]string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	raw, err := c.do(ctx, http.MethodPost, path, timeout, mw.FormDataContentType(), func() (io.Reader, error) {
		return bytes.NewReader(buf.Bytes()), nil
	})
	if err != nil {
		return "", err
	}
	return contentString(raw)
}

func contentString(raw json.RawMessage) (string, error) {
	var s string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode content: %w", err)
		}
	}
	if s == "" {
		return "", ErrEmptyResult
	}
	return s, nil
}

// do issues one bounded request with a freshly fetched token and unwraps the envelope.
func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, contentType string, body func() (io.Reader, error)) (json.RawMessage, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if tok == "" {
		return nil, ErrNoToken
	}

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r, err := body()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(rctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, rctx, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, transportError(ctx, rctx, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(b, &env)
	if resp.StatusCode != http.StatusOK {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("Server error: %d", resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return env.Content, nil
}

// transportError separates our own deadline from caller cancellation and network faults.
func transportError(parent, rctx context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(rctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrNoResponse, err)
}
