package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/julis-sh/console/internal/console/store"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "console:"

// Store keeps the console's durable slots in redis. Useful when several
// consoles on one machine (or a kiosk fleet) should share a login.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an existing redis client. An empty prefix uses "console:".
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		return "", mapNotFound(err)
	}
	return v, nil
}

// Set stores the value without TTL; the token's own exp is the authority
// on its lifetime.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Take uses GETDEL so two consoles never both consume a one-shot flag.
func (s *Store) Take(ctx context.Context, key string) (string, error) {
	v, err := s.client.GetDel(ctx, s.prefix+key).Result()
	if err != nil {
		return "", mapNotFound(err)
	}
	return v, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func mapNotFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	return fmt.Errorf("redis: %w", err)
}
