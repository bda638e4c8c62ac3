package ai

import "context"

// TextGenerator turns a single prompt into text, bounded by maxTokens output tokens.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ImageGenerator turns a prompt into raw image bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
