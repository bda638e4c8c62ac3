package creation

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/suPer8Hu/ai-studio/internal/ai"
	"github.com/suPer8Hu/ai-studio/internal/common"
	"github.com/suPer8Hu/ai-studio/internal/storage"
)

// UsageCounter is the per-user free usage counter owned by the identity store.
type UsageCounter interface {
	FreeUsage(ctx context.Context, userID string) (int64, error)
	// IncrFreeUsage must be an atomic increment; the counter is never decremented.
	IncrFreeUsage(ctx context.Context, userID string) (int64, error)
}

// EventPublisher announces persisted creations. Publishing is best effort.
type EventPublisher interface {
	PublishCreation(ctx context.Context, c *Creation) error
}

// FeedWriter maintains the community feed of published images.
type FeedWriter interface {
	PushPublished(ctx context.Context, c *Creation) error
}

// TextExtractor pulls plain text out of an uploaded document.
type TextExtractor func(r io.ReaderAt, size int64) (string, error)

type Deps struct {
	Repo      *Repo
	Usage     UsageCounter
	Text      ai.TextGenerator
	Images    ai.ImageGenerator
	Store     storage.ImageStore
	Extract   TextExtractor
	Events    EventPublisher
	Feed      FeedWriter
	FreeLimit int
}

type Service struct {
	repo      *Repo
	usage     UsageCounter
	text      ai.TextGenerator
	images    ai.ImageGenerator
	store     storage.ImageStore
	extract   TextExtractor
	events    EventPublisher
	feed      FeedWriter
	freeLimit int64
}

func NewService(d Deps) *Service {
	limit := int64(d.FreeLimit)
	if limit <= 0 {
		limit = 10
	}
	return &Service{
		repo:      d.Repo,
		usage:     d.Usage,
		text:      d.Text,
		images:    d.Images,
		store:     d.Store,
		extract:   d.Extract,
		events:    d.Events,
		feed:      d.Feed,
		freeLimit: limit,
	}
}

// Output is what an upstream invocation produced and how it is recorded.
type Output struct {
	Prompt  string
	Content string
	Publish bool
}

// Operation parameterizes the request pipeline for one capability.
type Operation struct {
	Name           string
	Kind           Kind
	QuotaGated     bool
	PremiumOnly    bool
	GenericFailure string
	Validate       func() error
	Invoke         func(ctx context.Context) (Output, error)
}

// Result is the uniform response envelope.
type Result struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

func failed(msg string) Result { return Result{Success: false, Message: msg} }

// Run executes authorize → validate → invoke → persist → quota update. Every step's
// failure short-circuits to a failure Result; nothing is retried.
func (s *Service) Run(ctx context.Context, caller Caller, op Operation) Result {
	if caller.UserID == "" {
		return failed(MsgUnauthenticated)
	}

	gated := op.QuotaGated && !caller.Premium()
	if !caller.Premium() {
		if op.PremiumOnly {
			return failed(MsgPremiumOnly)
		}
		if gated {
			used, err := s.usage.FreeUsage(ctx, caller.UserID)
			if err != nil {
				log.Printf("[%s] FreeUsage failed uid=%s err=%v", op.Name, caller.UserID, err)
				return failed(op.generic())
			}
			if used >= s.freeLimit {
				return failed(MsgLimitReached)
			}
		}
	}

	if op.Validate != nil {
		if err := op.Validate(); err != nil {
			var f *Failure
			if errors.As(err, &f) {
				return failed(f.Message)
			}
			log.Printf("[%s] Validate failed uid=%s err=%v", op.Name, caller.UserID, err)
			return failed(op.generic())
		}
	}

	start := time.Now()
	out, err := op.Invoke(ctx)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return failed(f.Message)
		}
		log.Printf("[%s] upstream failed uid=%s cost=%s fault=%d err=%v",
			op.Name, caller.UserID, time.Since(start), Classify(err), err)
		return failed(UserMessage(err, op.generic()))
	}

	id, err := common.NewULID()
	if err != nil {
		log.Printf("[%s] NewULID failed uid=%s err=%v", op.Name, caller.UserID, err)
		return failed(op.generic())
	}
	rec := &Creation{
		ID:      id,
		UserID:  caller.UserID,
		Prompt:  out.Prompt,
		Content: out.Content,
		Type:    op.Kind,
		Publish: out.Publish,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		log.Printf("[%s] Insert failed uid=%s err=%v", op.Name, caller.UserID, err)
		return failed(op.generic())
	}

	// The check above and this increment are not atomic together: concurrent requests
	// from one user at limit-1 can both pass. The increment itself is atomic.
	if gated {
		if _, err := s.usage.IncrFreeUsage(ctx, caller.UserID); err != nil {
			log.Printf("[%s] IncrFreeUsage failed uid=%s creation=%s err=%v", op.Name, caller.UserID, rec.ID, err)
		}
	}

	s.announce(ctx, op.Name, rec)

	return Result{Success: true, Content: out.Content}
}

// announce publishes the creation event. When no event goes out, a published image
// is written to the feed directly so the community feed does not go stale.
func (s *Service) announce(ctx context.Context, opName string, rec *Creation) {
	if s.events != nil {
		err := s.events.PublishCreation(ctx, rec)
		if err == nil {
			return
		}
		log.Printf("[%s] PublishCreation failed uid=%s creation=%s err=%v", opName, rec.UserID, rec.ID, err)
	}

	if s.feed == nil || !rec.Publish || rec.Type != KindImage {
		return
	}
	if err := s.feed.PushPublished(ctx, rec); err != nil {
		log.Printf("[%s] PushPublished failed uid=%s creation=%s err=%v", opName, rec.UserID, rec.ID, err)
	}
}

func (op Operation) generic() string {
	if op.GenericFailure == "" {
		return MsgRetry
	}
	return op.GenericFailure
}

func (s *Service) ListUserCreations(ctx context.Context, userID string, limit int) ([]Creation, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *Service) ListPublished(ctx context.Context, limit int) ([]Creation, error) {
	return s.repo.ListPublished(ctx, limit)
}
