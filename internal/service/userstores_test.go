package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/limur-users/internal/domain"
	"github.com/msomdec/limur-users/internal/service"
)

func TestUserStores_GetLoadsOncePerProfile(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{users: remoteUsers()}
	stores := service.NewUserStores(db.KV, source)
	ctx := context.Background()

	a := stores.Get(ctx, "profile-a")
	if stores.Get(ctx, "profile-a") != a {
		t.Fatal("expected the same store for the same profile")
	}
	if source.Calls() != 1 {
		t.Fatalf("expected 1 fetch, got %d", source.Calls())
	}

	stores.Get(ctx, "profile-b")
	if source.Calls() != 2 {
		t.Fatalf("expected each profile to fetch once, got %d", source.Calls())
	}
}

func TestUserStores_ProfilesAreIsolated(t *testing.T) {
	db := newTestDB(t)
	stores := service.NewUserStores(db.KV, &fakeSource{users: remoteUsers()})
	ctx := context.Background()

	if err := stores.Get(ctx, "profile-a").Add(ctx, janKowalski(500)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if diff := cmp.Diff([]int64{1, 2}, ids(stores.Get(ctx, "profile-b").Users())); diff != "" {
		t.Fatalf("profile-b users mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{500, 1, 2}, ids(stores.Get(ctx, "profile-a").Users())); diff != "" {
		t.Fatalf("profile-a users mismatch (-want +got):\n%s", diff)
	}
}

func TestUserStores_ConcurrentFirstAccess(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{users: remoteUsers()}
	stores := service.NewUserStores(db.KV, source)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n := len(stores.Get(context.Background(), "profile").Users()); n != 2 {
				t.Errorf("expected 2 users, got %d", n)
			}
		}()
	}
	wg.Wait()

	if source.Calls() != 1 {
		t.Fatalf("expected 1 fetch, got %d", source.Calls())
	}
}

func TestUserStores_Reload(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{err: domain.ErrFetchFailed}
	stores := service.NewUserStores(db.KV, source)
	ctx := context.Background()

	store := stores.Get(ctx, "profile")
	if !errors.Is(store.Err(), domain.ErrFetchFailed) {
		t.Fatalf("expected recorded ErrFetchFailed, got %v", store.Err())
	}

	source.mu.Lock()
	source.err = nil
	source.users = remoteUsers()
	source.mu.Unlock()

	if err := stores.Reload(ctx, "profile"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if store.Err() != nil {
		t.Fatalf("expected error cleared, got %v", store.Err())
	}
	if len(store.Users()) != 2 {
		t.Fatalf("expected 2 users, got %d", len(store.Users()))
	}
}

func TestUserStores_CancelledFirstRequest(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{users: remoteUsers()}
	stores := service.NewUserStores(db.KV, source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first := stores.Get(ctx, "p1")

	store := stores.Get(context.Background(), "p1")
	if store != first {
		t.Fatal("expected the store loaded by the first request")
	}
	if store.Err() != nil {
		t.Fatalf("expected no error, got %v", store.Err())
	}
	if diff := cmp.Diff([]int64{1, 2}, ids(store.Users())); diff != "" {
		t.Fatalf("users mismatch (-want +got):\n%s", diff)
	}

	// Mutations keep the merged order and reach storage.
	if err := store.Add(context.Background(), janKowalski(500)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if diff := cmp.Diff([]int64{500, 1, 2}, ids(store.Users())); diff != "" {
		t.Fatalf("users after add mismatch (-want +got):\n%s", diff)
	}
	if err := store.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if diff := cmp.Diff([]int64{2}, readIDs(t, db.KV("p1"), service.RemoteCacheKey)); diff != "" {
		t.Fatalf("remote cache mismatch (-want +got):\n%s", diff)
	}
}

func TestUserStores_SweepEvictsIdleStores(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{users: remoteUsers()}
	stores := service.NewUserStores(db.KV, source)
	ctx := context.Background()

	now := time.Now()
	stores.SetNow(func() time.Time { return now })

	idle := stores.Get(ctx, "idle")
	if err := idle.Add(ctx, janKowalski(500)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	now = now.Add(service.StoreIdleTimeout / 2)
	stores.Get(ctx, "active")

	if n := stores.Sweep(); n != 0 {
		t.Fatalf("expected nothing swept yet, got %d", n)
	}

	now = now.Add(service.StoreIdleTimeout/2 + time.Second)
	if n := stores.Sweep(); n != 1 {
		t.Fatalf("expected 1 store swept, got %d", n)
	}
	if stores.Len() != 1 {
		t.Fatalf("expected 1 store left, got %d", stores.Len())
	}

	reloaded := stores.Get(ctx, "idle")
	if reloaded == idle {
		t.Fatal("expected a fresh store after eviction")
	}
	if diff := cmp.Diff([]int64{500, 1, 2}, ids(reloaded.Users())); diff != "" {
		t.Fatalf("users mismatch (-want +got):\n%s", diff)
	}
	// One fetch per profile; the evicted one reloads from storage.
	if source.Calls() != 2 {
		t.Fatalf("expected 2 fetches, got %d", source.Calls())
	}
}

// flakyKV fails every Get while broken is set.
type flakyKV struct {
	domain.KeyValueStore
	mu     sync.Mutex
	broken bool
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return nil, errors.New("disk I/O error")
	}
	return f.KeyValueStore.Get(ctx, key)
}

func TestUserStores_StorageFailureIsNotCached(t *testing.T) {
	db := newTestDB(t)
	kv := &flakyKV{KeyValueStore: db.KV("profile"), broken: true}
	stores := service.NewUserStores(func(string) domain.KeyValueStore { return kv }, &fakeSource{users: remoteUsers()})
	ctx := context.Background()

	failed := stores.Get(ctx, "profile")
	if failed.Err() == nil {
		t.Fatal("expected a recorded storage error")
	}
	if stores.Len() != 0 {
		t.Fatalf("expected the failed store to be dropped, got %d", stores.Len())
	}

	kv.mu.Lock()
	kv.broken = false
	kv.mu.Unlock()

	store := stores.Get(ctx, "profile")
	if store.Err() != nil {
		t.Fatalf("expected no error, got %v", store.Err())
	}
	if diff := cmp.Diff([]int64{1, 2}, ids(store.Users())); diff != "" {
		t.Fatalf("users mismatch (-want +got):\n%s", diff)
	}
}
