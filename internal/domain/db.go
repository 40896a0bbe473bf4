package domain

import (
	"context"
	"time"
)

// Database defines lifecycle operations for the underlying database.
// Implementations own their migration files and hand out namespaced
// key-value stores. PurgeStale removes namespaces not written since
// before.
type Database interface {
	Migrate(ctx context.Context) error
	KV(namespace string) KeyValueStore
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
