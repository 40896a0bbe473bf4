package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/limur-users/internal/domain"
)

func TestKV_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	kv := db.KV("profile-a")
	ctx := context.Background()

	if err := kv.Save(ctx, "limur_users_data", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := kv.Get(ctx, "limur_users_data")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"id":1}]` {
		t.Fatalf("expected stored value, got %q", got)
	}
}

func TestKV_SaveOverwrites(t *testing.T) {
	db := newTestDB(t)
	kv := db.KV("profile-a")
	ctx := context.Background()

	if err := kv.Save(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := kv.Save(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected %q, got %q", "second", got)
	}
}

func TestKV_GetMissing(t *testing.T) {
	db := newTestDB(t)
	kv := db.KV("profile-a")

	_, err := kv.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKV_Delete(t *testing.T) {
	db := newTestDB(t)
	kv := db.KV("profile-a")
	ctx := context.Background()

	if err := kv.Save(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing key is not an error.
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestKV_NamespacesAreIsolated(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.KV("profile-a").Save(ctx, "k", []byte("a")); err != nil {
		t.Fatalf("Save a: %v", err)
	}

	if _, err := db.KV("profile-b").Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in other namespace, got %v", err)
	}

	if err := db.KV("profile-b").Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete b: %v", err)
	}
	got, err := db.KV("profile-a").Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get a: %v", err)
	}
	if string(got) != "a" {
		t.Fatalf("expected %q, got %q", "a", got)
	}
}
