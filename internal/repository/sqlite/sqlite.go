package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/limur-users/internal/domain"
	"github.com/msomdec/limur-users/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection and implements domain.Database.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// KV returns a key-value store scoped to namespace.
func (d *DB) KV(namespace string) domain.KeyValueStore {
	return &kvStore{db: d.SqlDB, namespace: namespace}
}

// PurgeStale deletes every namespace whose entries were all last written
// before the cutoff and returns the number of rows removed. Both halves of
// the namespace selection are range scans on the updated_at index.
func (d *DB) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	cutoff := before.UTC()
	res, err := d.SqlDB.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE namespace IN (
			SELECT namespace FROM kv_entries WHERE updated_at < ?
			EXCEPT
			SELECT namespace FROM kv_entries WHERE updated_at >= ?
		)`, cutoff, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purge stale namespaces: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge stale namespaces: %w", err)
	}
	return n, nil
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}
