package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

func freeUsageKey(userID string) string {
	return "usage:free:" + userID
}

// FreeUsage returns how many quota-gated generations the user has completed.
func (s *Store) FreeUsage(ctx context.Context, userID string) (int64, error) {
	n, err := s.rdb.Get(ctx, freeUsageKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// IncrFreeUsage atomically adds one to the user's counter and returns the new value.
func (s *Store) IncrFreeUsage(ctx context.Context, userID string) (int64, error) {
	return s.rdb.Incr(ctx, freeUsageKey(userID)).Result()
}
