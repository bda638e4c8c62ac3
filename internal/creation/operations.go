package creation

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/suPer8Hu/ai-studio/internal/storage"
)

const (
	defaultArticleTokens = 800
	maxArticleTokens     = 4096
	blogTitleTokens      = 100
	resumeReviewTokens   = 1000

	MaxResumeBytes = 5 * 1024 * 1024
	// MaxUploadBytes bounds a whole multipart request body.
	MaxUploadBytes = 10 * 1024 * 1024
)

// objectNamePattern admits a single word; it is pasted into a CDN transformation string.
var objectNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

const resumePromptTmpl = "Review the following resume and provide constructive feedback on its strengths, weaknesses, and areas for improvement. Resume Content:\n\n%s"

// File is an opened upload. multipart.File satisfies it.
type File interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// Upload is a file received from the client, opened lazily. TooLarge marks a body
// that was cut off at MaxUploadBytes before the file could be read.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (File, error)
	TooLarge bool
}

func requirePrompt(prompt string) func() error {
	return func() error {
		if strings.TrimSpace(prompt) == "" {
			return reject(MsgPromptRequired)
		}
		return nil
	}
}

func (s *Service) GenerateArticle(ctx context.Context, caller Caller, prompt string, length int) Result {
	if length <= 0 {
		length = defaultArticleTokens
	}
	if length > maxArticleTokens {
		length = maxArticleTokens
	}
	return s.Run(ctx, caller, Operation{
		Name:           "GenerateArticle",
		Kind:           KindArticle,
		QuotaGated:     true,
		GenericFailure: "Failed to generate article. Please try again.",
		Validate:       requirePrompt(prompt),
		Invoke: func(ctx context.Context) (Output, error) {
			content, err := s.text.Generate(ctx, prompt, length)
			if err != nil {
				return Output{}, err
			}
			return Output{Prompt: prompt, Content: content}, nil
		},
	})
}

func (s *Service) GenerateBlogTitle(ctx context.Context, caller Caller, prompt string) Result {
	return s.Run(ctx, caller, Operation{
		Name:           "GenerateBlogTitle",
		Kind:           KindBlogTitle,
		QuotaGated:     true,
		GenericFailure: "Failed to generate blog titles. Please try again.",
		Validate:       requirePrompt(prompt),
		Invoke: func(ctx context.Context) (Output, error) {
			content, err := s.text.Generate(ctx, prompt, blogTitleTokens)
			if err != nil {
				return Output{}, err
			}
			return Output{Prompt: prompt, Content: content}, nil
		},
	})
}

func (s *Service) GenerateImage(ctx context.Context, caller Caller, prompt string, publish bool) Result {
	return s.Run(ctx, caller, Operation{
		Name:           "GenerateImage",
		Kind:           KindImage,
		PremiumOnly:    true,
		GenericFailure: "Failed to generate image. Please try again.",
		Validate:       requirePrompt(prompt),
		Invoke: func(ctx context.Context) (Output, error) {
			img, err := s.images.GenerateImage(ctx, prompt)
			if err != nil {
				return Output{}, err
			}
			url, err := s.store.UploadDataURI(ctx, storage.PNGDataURI(img))
			if err != nil {
				return Output{}, err
			}
			return Output{Prompt: prompt, Content: url, Publish: publish}, nil
		},
	})
}

func requireImage(img *Upload) func() error {
	return func() error {
		if img != nil && img.TooLarge {
			return reject(MsgImageTooLarge)
		}
		if img == nil || img.Open == nil || img.Size == 0 {
			return reject(MsgImageRequired)
		}
		return nil
	}
}

func (s *Service) RemoveBackground(ctx context.Context, caller Caller, img *Upload) Result {
	return s.Run(ctx, caller, Operation{
		Name:           "RemoveBackground",
		Kind:           KindImage,
		PremiumOnly:    true,
		GenericFailure: "Failed to remove background. Please try again.",
		Validate:       requireImage(img),
		Invoke: func(ctx context.Context) (Output, error) {
			f, err := img.Open()
			if err != nil {
				return Output{}, err
			}
			defer f.Close()

			url, err := s.store.RemoveBackground(ctx, img.Filename, f)
			if err != nil {
				return Output{}, err
			}
			return Output{Prompt: "Remove background from image", Content: url}, nil
		},
	})
}

func (s *Service) RemoveObject(ctx context.Context, caller Caller, img *Upload, object string) Result {
	object = strings.TrimSpace(object)
	return s.Run(ctx, caller, Operation{
		Name:           "RemoveObject",
		Kind:           KindImage,
		PremiumOnly:    true,
		GenericFailure: "Failed to remove object. Please try again.",
		Validate: func() error {
			if err := requireImage(img)(); err != nil {
				return err
			}
			if object == "" {
				return reject(MsgObjectRequired)
			}
			if !objectNamePattern.MatchString(object) {
				return reject(MsgSingleObject)
			}
			return nil
		},
		Invoke: func(ctx context.Context) (Output, error) {
			f, err := img.Open()
			if err != nil {
				return Output{}, err
			}
			defer f.Close()

			url, err := s.store.RemoveObject(ctx, img.Filename, f, object)
			if err != nil {
				return Output{}, err
			}
			return Output{Prompt: fmt.Sprintf("Removed %s from image", object), Content: url}, nil
		},
	})
}

func (s *Service) ReviewResume(ctx context.Context, caller Caller, resume *Upload) Result {
	return s.Run(ctx, caller, Operation{
		Name:           "ReviewResume",
		Kind:           KindResumeReview,
		PremiumOnly:    true,
		GenericFailure: "Failed to review resume. Please try again.",
		Validate: func() error {
			if resume != nil && resume.TooLarge {
				return reject(MsgResumeTooLarge)
			}
			if resume == nil || resume.Open == nil || resume.Size == 0 {
				return reject(MsgResumeRequired)
			}
			if resume.Size > MaxResumeBytes {
				return reject(MsgResumeTooLarge)
			}
			if !strings.EqualFold(filepath.Ext(resume.Filename), ".pdf") {
				return reject(MsgResumeNotPDF)
			}
			return nil
		},
		Invoke: func(ctx context.Context) (Output, error) {
			f, err := resume.Open()
			if err != nil {
				return Output{}, err
			}
			defer f.Close()

			text, err := s.extract(f, resume.Size)
			if err != nil {
				return Output{}, err
			}
			content, err := s.text.Generate(ctx, fmt.Sprintf(resumePromptTmpl, text), resumeReviewTokens)
			if err != nil {
				return Output{}, err
			}
			return Output{Prompt: "Review the uploaded Resume", Content: content}, nil
		},
	})
}
