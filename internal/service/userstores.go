package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/limur-users/internal/domain"
)

// StoreIdleTimeout is how long an unused profile store stays in memory.
const StoreIdleTimeout = 30 * time.Minute

// UserStores keeps one loaded UserStore per active profile. Stores left
// unused for StoreIdleTimeout are dropped by Sweep and reloaded from
// storage on next access.
type UserStores struct {
	kv     func(profileID string) domain.KeyValueStore
	source domain.UserSource
	idle   time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	store    *UserStore
	lastUsed time.Time
}

// NewUserStores creates a registry. kv returns the key-value namespace
// backing a profile.
func NewUserStores(kv func(profileID string) domain.KeyValueStore, source domain.UserSource) *UserStores {
	return &UserStores{
		kv:      kv,
		source:  source,
		idle:    StoreIdleTimeout,
		now:     time.Now,
		entries: make(map[string]*storeEntry),
	}
}

// Get returns the profile's store, loading it on first access. A failed
// fetch is recorded on the store and does not prevent its use. A store
// whose storage could not be read is handed out once and then dropped, so
// the next access loads it again.
func (r *UserStores) Get(ctx context.Context, profileID string) *UserStore {
	r.mu.Lock()
	now := r.now()
	if e, ok := r.entries[profileID]; ok {
		e.lastUsed = now
		r.mu.Unlock()
		return e.store
	}

	// The new store stays locked until loaded so concurrent requests for
	// the same profile never observe an empty list.
	store := NewUserStore(r.kv(profileID), r.source)
	store.mu.Lock()
	r.entries[profileID] = &storeEntry{store: store, lastUsed: now}
	r.mu.Unlock()

	// The load is shared by every request for the profile, so it must not
	// end with the request that triggered it. The remote client's timeout
	// bounds it instead.
	err := store.load(context.WithoutCancel(ctx))
	store.mu.Unlock()

	if err != nil && !errors.Is(err, domain.ErrFetchFailed) {
		r.forget(profileID, store)
	}
	return store
}

// Reload re-runs Load for the profile, e.g. after a failed fetch.
func (r *UserStores) Reload(ctx context.Context, profileID string) error {
	return r.Get(ctx, profileID).Load(context.WithoutCancel(ctx))
}

func (r *UserStores) forget(profileID string, store *UserStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[profileID]; ok && e.store == store {
		delete(r.entries, profileID)
	}
}

// Len reports how many stores are held in memory.
func (r *UserStores) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops stores unused for longer than the idle window and returns
// how many were removed. Their data stays persisted.
func (r *UserStores) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	removed := 0
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *UserStores) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("evicted idle user stores", "count", n)
			}
		}
	}
}
