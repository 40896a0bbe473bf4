package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/msomdec/limur-users/internal/domain"
)

// Storage keys of the two persisted collections.
const (
	RemoteCacheKey    = "limur_api_users_fetched"
	LocalAdditionsKey = "limur_users_data"
)

const (
	maxGeneratedID = 13337
	idAttempts     = 32
)

// UserStore holds one profile's merged user list: local additions first,
// then the remote snapshot. Every mutation updates the in-memory list and
// the persisted collection that owns the record.
type UserStore struct {
	kv     domain.KeyValueStore
	source domain.UserSource

	mu    sync.Mutex
	users []domain.User
	err   error
}

// NewUserStore creates an empty store. Call Load to populate it.
func NewUserStore(kv domain.KeyValueStore, source domain.UserSource) *UserStore {
	return &UserStore{kv: kv, source: source}
}

// Load reads the remote cache, fetching and persisting it once when absent,
// then reads the local additions and publishes their concatenation. On
// failure the list holds whatever was read and the error is both returned
// and recorded for Err.
func (s *UserStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *UserStore) load(ctx context.Context) error {
	remote, remoteErr := s.loadRemote(ctx)
	local, localErr := s.readList(ctx, LocalAdditionsKey)

	merged := make([]domain.User, 0, len(local)+len(remote))
	merged = append(merged, local...)
	merged = append(merged, remote...)
	s.users = merged

	s.err = errors.Join(remoteErr, localErr)
	if s.err != nil {
		slog.Error("load users", "error", s.err)
	}
	return s.err
}

func (s *UserStore) loadRemote(ctx context.Context) ([]domain.User, error) {
	cached, err := s.readList(ctx, RemoteCacheKey)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil {
		return nil, err
	}

	users, err := s.source.FetchUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch remote users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	if err := s.writeList(ctx, RemoteCacheKey, users); err != nil {
		return users, err
	}
	return users, nil
}

// Err returns the error recorded by the last Load, or nil.
func (s *UserStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Users returns a copy of the merged list.
func (s *UserStore) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

// Get returns the user with the given id.
func (s *UserStore) Get(id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return s.users[i], nil
}

// NewID draws a random identifier below 13337 that is not in use,
// falling back to one past the current maximum.
func (s *UserStore) NewID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range idAttempts {
		id := rand.Int64N(maxGeneratedID-1) + 1
		if !s.contains(id) {
			return id
		}
	}
	var highest int64
	for _, u := range s.users {
		highest = max(highest, u.ID)
	}
	return highest + 1
}

// Add prepends user to the list and to the persisted local additions.
func (s *UserStore) Add(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contains(user.ID) {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, user.ID)
	}

	local, err := s.readList(ctx, LocalAdditionsKey)
	if err != nil {
		return err
	}
	local = slices.Insert(local, 0, user)
	if err := s.writeList(ctx, LocalAdditionsKey, local); err != nil {
		return err
	}

	s.users = slices.Insert(s.users, 0, user)
	return nil
}

// Delete removes id from the list and from whichever persisted collection
// holds it. The local additions entry is dropped once it is empty.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.contains(id) {
		return domain.ErrNotFound
	}
	match := func(u domain.User) bool { return u.ID == id }

	local, err := s.readList(ctx, LocalAdditionsKey)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(local, match) {
		local = slices.DeleteFunc(local, match)
		if len(local) > 0 {
			err = s.writeList(ctx, LocalAdditionsKey, local)
		} else {
			err = s.kv.Delete(ctx, LocalAdditionsKey)
		}
		if err != nil {
			return err
		}
	}

	// Random ids can collide with remote ones, so the remote cache is
	// checked even when the local additions held the id.
	remote, err := s.readList(ctx, RemoteCacheKey)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(remote, match) {
		if err := s.writeList(ctx, RemoteCacheKey, slices.DeleteFunc(remote, match)); err != nil {
			return err
		}
	}

	s.users = slices.DeleteFunc(s.users, match)
	return nil
}

func (s *UserStore) contains(id int64) bool {
	return slices.ContainsFunc(s.users, func(u domain.User) bool { return u.ID == id })
}

// readList decodes the JSON array stored under key. A missing key yields
// a nil slice and no error.
func (s *UserStore) readList(ctx context.Context, key string) ([]domain.User, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *UserStore) writeList(ctx context.Context, key string, users []domain.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Save(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
