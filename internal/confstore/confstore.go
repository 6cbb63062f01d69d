// Package confstore persists confusion-set configuration in Redis so several
// checker instances can share and survive one configuration.
package confstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "rwse:confusion_sets"

// Store wraps a Redis client to persist confusion-set groups.
type Store struct {
	client *redis.Client
	key    string
}

// New creates a Store using the provided Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client, key: defaultKey}
}

// Save replaces the stored groups.
func (s *Store) Save(ctx context.Context, groups [][]string) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("encode confusion sets: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("store confusion sets: %w", err)
	}
	return nil
}

// Load returns the stored groups, or nil when nothing has been saved yet.
func (s *Store) Load(ctx context.Context) ([][]string, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load confusion sets: %w", err)
	}
	var groups [][]string
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decode confusion sets: %w", err)
	}
	return groups, nil
}

// Clear removes the stored groups.
func (s *Store) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
