package rabbitmq

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/ai-studio/internal/creation"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

// CreationEvent announces a persisted creation to background consumers.
type CreationEvent struct {
	CreationID string             `json:"creation_id"`
	UserID     string             `json:"user_id"`
	Type       creation.Kind      `json:"type"`
	Publish    bool               `json:"publish"`
	Creation   *creation.Creation `json:"creation"`
}

// Attempt counts how many times the event has been routed through the retry queue.
func Attempt(d amqp.Delivery) int {
	switch v := d.Headers["x-attempt"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) PublishCreation(ctx context.Context, c *creation.Creation) error {
	body, err := json.Marshal(CreationEvent{
		CreationID: c.ID,
		UserID:     c.UserID,
		Type:       c.Type,
		Publish:    c.Publish,
		Creation:   c,
	})
	if err != nil {
		return err
	}
	return p.publish(ctx, p.queue, body, nil)
}

// Retry sends the delivery to the retry queue, which dead-letters it back to the
// main queue after delay.
func (p *Publisher) Retry(ctx context.Context, d amqp.Delivery, delay time.Duration) error {
	headers := amqp.Table{"x-attempt": int32(Attempt(d) + 1)}
	return p.publish(ctx, RetryQueue(p.queue), d.Body, &amqp.Publishing{
		Headers:    headers,
		Expiration: strconv.FormatInt(delay.Milliseconds(), 10),
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, body []byte, extra *amqp.Publishing) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	}
	if extra != nil {
		msg.Headers = extra.Headers
		msg.Expiration = extra.Expiration
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(cctx,
		"",         // default exchange
		routingKey, // routing key = queue
		false,
		false,
		msg,
	)
}
