package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/msomdec/limur-users/internal/service"
)

func TestRetention_PurgesExpiredProfiles(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{users: remoteUsers()}
	ctx := context.Background()

	if err := service.NewUserStores(db.KV, source).Get(ctx, "old").Add(ctx, janKowalski(500)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	retention := service.NewRetention(db, service.ProfileTTL)

	n, err := retention.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing purged within the TTL, got %d", n)
	}

	retention.SetNow(func() time.Time { return time.Now().Add(service.ProfileTTL + time.Hour) })
	n, err = retention.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both collections purged, got %d", n)
	}

	// The purged profile starts over from the remote list.
	store := service.NewUserStores(db.KV, source).Get(ctx, "old")
	if len(store.Users()) != 2 || source.Calls() != 2 {
		t.Fatalf("expected a fresh fetch, got %d users after %d fetches", len(store.Users()), source.Calls())
	}
}

func TestRetention_RunStopsWithContext(t *testing.T) {
	retention := service.NewRetention(newTestDB(t), service.ProfileTTL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- retention.Run(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
