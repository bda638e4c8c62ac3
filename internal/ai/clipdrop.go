package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// maxImageBytes caps how much of a text-to-image response is buffered.
const maxImageBytes = 20 << 20

type ClipDropProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewClipDropProvider(baseURL, apiKey string) *ClipDropProvider {
	if baseURL == "" {
		baseURL = "https://clipdrop-api.co"
	}
	return &ClipDropProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *ClipDropProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if p.Client == nil {
		return nil, errors.New("clipdrop: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, errors.New("clipdrop: api key is required")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("prompt", prompt); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-image/v1", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("x-api-key", p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("clipdrop", resp)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, ErrInvalidResponse
	}
	return img, nil
}
