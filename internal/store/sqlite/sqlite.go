// Package sqlite persists the document store in a single SQLite table: one
// row per (owner, collection) holding the serialized record array. Replace is
// an upsert of the whole row, which keeps the last-writer-wins semantics of
// the store contract.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tempo/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) List(ctx context.Context, ownerID, collection string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE owner_id = ? AND name = ?`,
		ownerID, collection,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %v", store.ErrUnavailable, collection, err)
	}
	return data, nil
}

func (s *Store) Replace(ctx context.Context, ownerID, collection string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (owner_id, name, data, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id, name) DO UPDATE SET
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		ownerID, collection, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", store.ErrUnavailable, collection, err)
	}
	return nil
}
