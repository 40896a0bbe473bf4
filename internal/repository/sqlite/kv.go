package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/limur-users/internal/domain"
)

// kvStore implements domain.KeyValueStore on the kv_entries table.
type kvStore struct {
	db        *sql.DB
	namespace string
}

func (s *kvStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (namespace, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save kv entry %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv_entries WHERE namespace = ? AND key = ?", s.namespace, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get kv entry %s: %w", key, err)
	}
	return data, nil
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM kv_entries WHERE namespace = ? AND key = ?", s.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("delete kv entry %s: %w", key, err)
	}
	return nil
}
