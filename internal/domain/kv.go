package domain

import "context"

// KeyValueStore abstracts string-keyed byte storage for one namespace.
// Get returns ErrNotFound for a missing key. Save overwrites.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
