package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

// SQLStore keeps records in a kv_records table. The statements are portable
// between SQLite and PostgreSQL; sqlx rebinds placeholders per driver.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore constructs a SQLStore.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the backing table when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS kv_records (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create kv_records: %w", err)
	}
	return nil
}

// Get fetches the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	query := s.db.Rebind(`SELECT value FROM kv_records WHERE key = ?`)
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get record %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set upserts the value stored under key.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := s.db.Rebind(`INSERT INTO kv_records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("set record %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
