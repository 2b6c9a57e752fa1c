package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotInitialized is returned by Load when the backing store has never been created
	ErrNotInitialized = errors.New("storage not initialized, run 'detoxscan init' first")
	// ErrNotLoaded is returned by data operations before Init or Load succeeded
	ErrNotLoaded = errors.New("storage not loaded")
)

// UpdateFunc receives the current value of a key (found is false when the
// key is absent) and returns the value to store in its place.
type UpdateFunc func(current string, found bool) (string, error)

// Provider is the key-value store the quota gate and history log persist to.
// Values are opaque strings; callers JSON-encode their records.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Update performs an atomic read-modify-write of a single key. If fn
	// returns an error nothing is written and the error is returned as-is.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Keys(ctx context.Context) ([]string, error)

	// Utils
	GetConfigPath() string
}
