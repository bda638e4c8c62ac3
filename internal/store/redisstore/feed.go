package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suPer8Hu/ai-studio/internal/creation"
)

const (
	publishedFeedKey = "feed:published"
	publishedFeedCap = 200
)

// PushPublished prepends a published creation to the community feed, keeping the newest entries.
func (s *Store) PushPublished(ctx context.Context, c *creation.Creation) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, publishedFeedKey, b)
	pipe.LTrim(ctx, publishedFeedKey, 0, publishedFeedCap-1)
	_, err = pipe.Exec(ctx)
	return err
}

// ListPublished returns up to limit feed entries, newest first.
func (s *Store) ListPublished(ctx context.Context, limit int) ([]creation.Creation, error) {
	if limit <= 0 || limit > publishedFeedCap {
		limit = publishedFeedCap
	}
	raw, err := s.rdb.LRange(ctx, publishedFeedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]creation.Creation, 0, len(raw))
	for _, r := range raw {
		var c creation.Creation
		if err := json.Unmarshal([]byte(r), &c); err != nil {
			return nil, fmt.Errorf("decode feed entry: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// SeedPublished fills an empty feed from items ordered newest first. A non-empty
// feed is left untouched.
func (s *Store) SeedPublished(ctx context.Context, items []creation.Creation) (bool, error) {
	n, err := s.rdb.LLen(ctx, publishedFeedKey).Result()
	if err != nil || n > 0 || len(items) == 0 {
		return false, err
	}
	if len(items) > publishedFeedCap {
		items = items[:publishedFeedCap]
	}
	vals := make([]any, 0, len(items))
	for i := range items {
		b, err := json.Marshal(&items[i])
		if err != nil {
			return false, err
		}
		vals = append(vals, b)
	}
	return true, s.rdb.RPush(ctx, publishedFeedKey, vals...).Err()
}
