// Package postgres stores restaurant documents in PostgreSQL, one JSONB row
// per document section.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"restaurantcore/pkg/domain"
)

var _ domain.DocumentBackend = (*Backend)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/restaurant?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Backend keeps each document section in the state table.
type Backend struct {
	db *sql.DB
	mu sync.Mutex
}

// Open connects to dsn (defaultDSN when empty) and ensures the state table.
func Open(ctx context.Context, dsn string) (*Backend, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Backend{db: db}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

// Load reads the section rows. No rows means no document.
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
			return domain.Document{}, false, fmt.Errorf("scan state: %w", err)
		}
		found = true
		if section := doc.Section(bucket); section != nil && len(payload) > 0 {
			*section = append([]byte(nil), payload...)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Document{}, false, fmt.Errorf("iterate state: %w", err)
	}
	return doc, found, nil
}

// Save rewrites all sections in one transaction.
func (b *Backend) Save(ctx context.Context, doc domain.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range domain.Sections {
		payload := *doc.Section(bucket)
		if len(payload) == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, bucket); err != nil {
				return fmt.Errorf("delete %s: %w", bucket, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, bucket, []byte(payload)); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error { return b.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (b *Backend) DB() *sql.DB { return b.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
