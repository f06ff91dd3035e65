// Package testutil provides a stub database/sql driver for postgres backend
// tests. It models the state(bucket, payload) table and nothing else.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
)

// StubConn keeps the state rows in memory and records every statement.
type StubConn struct {
	Execs []string
	// Rows maps bucket to payload.
	Rows map[string][]byte

	FailPing   bool
	FailBegin  bool
	FailCommit bool
	FailUpsert bool
	FailSelect bool
	// RowsErr is returned by the result set after the last row.
	RowsErr error
}

var stubSeq atomic.Int64

// NewStubDB registers a fresh driver and opens a sql.DB on it.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Rows: map[string][]byte{}}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct{ conn *StubConn }

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (c *StubConn) Close() error                        { return nil }
func (c *StubConn) Begin() (driver.Tx, error)           { return c.BeginTx(context.Background(), driver.TxOptions{}) }

func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return errors.New("ping fail")
	}
	return nil
}

func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, errors.New("begin fail")
	}
	return stubTx{conn: c}, nil
}

// ExecContext understands the table DDL, the section upsert and the section
// delete. Anything else is an error so new statements get noticed.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	stmt := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS STATE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(stmt, "INSERT INTO STATE"):
		if c.FailUpsert {
			return nil, errors.New("upsert fail")
		}
		if len(args) != 2 {
			return nil, fmt.Errorf("upsert wants 2 args, got %d", len(args))
		}
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.Rows[bucket] = append([]byte(nil), payload...)
		return driver.RowsAffected(1), nil
	case strings.HasPrefix(stmt, "DELETE FROM STATE WHERE BUCKET"):
		if len(args) != 1 {
			return nil, fmt.Errorf("delete wants 1 arg, got %d", len(args))
		}
		bucket, _ := args[0].Value.(string)
		delete(c.Rows, bucket)
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unexpected statement: %s", query)
}

// QueryContext serves the full-table select, ordered by bucket.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if c.FailSelect {
		return nil, errors.New("select fail")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT BUCKET, PAYLOAD FROM STATE") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	buckets := make([]string, 0, len(c.Rows))
	for b := range c.Rows {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	rows := &stubRows{err: c.RowsErr}
	for _, b := range buckets {
		rows.rows = append(rows.rows, []driver.Value{b, c.Rows[b]})
	}
	return rows, nil
}

type stubTx struct{ conn *StubConn }

func (t stubTx) Commit() error {
	if t.conn.FailCommit {
		return errors.New("commit fail")
	}
	return nil
}

func (stubTx) Rollback() error { return nil }

type stubRows struct {
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
