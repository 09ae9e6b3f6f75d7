// Package dedupe remembers webhook deliveries that were fully processed, so
// provider retries can be acknowledged without touching the store. It is an
// optimisation only: a miss always falls through to the idempotent writer.
package dedupe

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 72 * time.Hour

type Store struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func New(client redis.Cmdable, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "webhook"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(provider, eventID string) string {
	return s.prefix + ":" + provider + ":" + eventID
}

// Seen reports whether the delivery was already processed.
func (s *Store) Seen(ctx context.Context, provider, eventID string) (bool, error) {
	if s == nil || eventID == "" {
		return false, nil
	}
	err := s.client.Get(ctx, s.key(provider, eventID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Mark records a processed delivery. It returns false when it was already recorded.
func (s *Store) Mark(ctx context.Context, provider, eventID string) (bool, error) {
	if s == nil || eventID == "" {
		return false, nil
	}
	return s.client.SetNX(ctx, s.key(provider, eventID), time.Now().UTC().Unix(), s.ttl).Result()
}
