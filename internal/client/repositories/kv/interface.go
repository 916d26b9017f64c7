package kv

import "context"

// Store is a minimal key/value store.
type Store interface {
	// Get returns the value for key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	// DeleteNamespace removes every key that starts with prefix.
	DeleteNamespace(ctx context.Context, prefix string) error
	// WithTx runs fn atomically against a transactional view of the store.
	WithTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
