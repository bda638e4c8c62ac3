package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/suPer8Hu/ai-studio/internal/creation"
	"github.com/suPer8Hu/ai-studio/internal/store/rabbitmq"
)

// ErrMalformed marks a message that can never succeed and goes straight to the DLQ.
var ErrMalformed = errors.New("malformed creation event")

type FeedWriter interface {
	PushPublished(ctx context.Context, c *creation.Creation) error
}

type Handler struct {
	Feed FeedWriter
}

// Handle applies one creation event. Only published images reach the community feed.
func (h *Handler) Handle(ctx context.Context, body []byte) error {
	var ev rabbitmq.CreationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.CreationID == "" || ev.Creation == nil {
		return fmt.Errorf("%w: missing creation", ErrMalformed)
	}

	if !ev.Publish || ev.Type != creation.KindImage {
		return nil
	}
	return h.Feed.PushPublished(ctx, ev.Creation)
}
