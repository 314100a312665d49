package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Keys of the durable slots the console persists.
const (
	KeyToken          = "token"
	KeySessionExpired = "session_expired"
)

// Store is the durable key-value slot behind the session. It survives a
// restart of the console. Drivers (sqlite, redis) implement it; every Set
// replaces the whole value. Schema setup is driver specific and happens
// before the store is handed out.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Take returns and removes the value under key in one step, for
	// one-shot flags. Returns ErrNotFound when absent.
	Take(ctx context.Context, key string) (string, error)

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backend is still reachable.
	Ping(ctx context.Context) error
}
