// Package sqlite stores restaurant documents in a SQLite database, one row
// per document section.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"restaurantcore/pkg/domain"
)

var _ domain.DocumentBackend = (*Backend)(nil)

// Backend keeps each section of the document as a JSON blob in the state
// table. Save rewrites every section in one transaction.
type Backend struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Backend, error) {
	if path == "" {
		path = "restaurant.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Backend{db: db, path: path}, nil
}

// Load reads every section row. An empty table means no document.
func (b *Backend) Load(ctx context.Context) (domain.Document, bool, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var doc domain.Document
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return domain.Document{}, false, fmt.Errorf("scan: %w", err)
		}
		found = true
		if section := doc.Section(bucket); section != nil {
			*section = payload
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Document{}, false, fmt.Errorf("iterate state: %w", err)
	}
	return doc, found, nil
}

// Save upserts the present sections and drops the absent ones.
func (b *Backend) Save(ctx context.Context, doc domain.Document) (retErr error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range domain.Sections {
		payload := *doc.Section(bucket)
		if len(payload) == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, bucket); err != nil {
				return fmt.Errorf("delete %s: %w", bucket, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, []byte(payload)); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (b *Backend) Close() error { return b.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (b *Backend) DB() *sql.DB { return b.db }

// Path returns the configured database path.
func (b *Backend) Path() string { return b.path }
