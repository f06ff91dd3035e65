package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

const upsert = "INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload"

func TestStubUpsertSelectDelete(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	for _, payload := range []string{"1", "2"} {
		if _, err := conn.ExecContext(ctx, upsert, []driver.NamedValue{{Value: "daily_revenue"}, {Value: []byte(payload)}}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if _, err := conn.ExecContext(ctx, upsert, []driver.NamedValue{{Value: "active_orders"}, {Value: []byte("{}")}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(conn.Rows) != 2 || string(conn.Rows["daily_revenue"]) != "2" {
		t.Fatalf("rows = %v", conn.Rows)
	}

	rows, err := conn.QueryContext(ctx, "SELECT bucket, payload FROM state", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil || dest[0] != "active_orders" {
		t.Fatalf("first row %v %v", dest, err)
	}
	_ = rows.Close()

	if _, err := conn.ExecContext(ctx, "DELETE FROM state WHERE bucket = $1", []driver.NamedValue{{Value: "daily_revenue"}}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := conn.Rows["daily_revenue"]; ok {
		t.Fatalf("row not deleted: %v", conn.Rows)
	}
}

func TestStubRejectsUnknownStatements(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	if _, err := conn.ExecContext(ctx, "TRUNCATE state", nil); err == nil {
		t.Fatalf("expected unknown exec to fail")
	}
	if _, err := conn.QueryContext(ctx, "SELECT 1", nil); err == nil {
		t.Fatalf("expected unknown query to fail")
	}
	if _, err := conn.ExecContext(ctx, upsert, []driver.NamedValue{{Value: "x"}}); err == nil {
		t.Fatalf("expected arg count error")
	}
}

func TestStubFailureFlags(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.FailPing, conn.FailBegin, conn.FailUpsert, conn.FailSelect, conn.FailCommit = true, true, true, true, true
	if err := conn.Ping(ctx); err == nil {
		t.Fatalf("expected ping failure")
	}
	if _, err := conn.BeginTx(ctx, driver.TxOptions{}); err == nil {
		t.Fatalf("expected begin failure")
	}
	if _, err := conn.ExecContext(ctx, upsert, []driver.NamedValue{{Value: "x"}, {Value: []byte("1")}}); err == nil {
		t.Fatalf("expected upsert failure")
	}
	if _, err := conn.QueryContext(ctx, "SELECT bucket, payload FROM state", nil); err == nil {
		t.Fatalf("expected select failure")
	}
	if err := (stubTx{conn: conn}).Commit(); err == nil {
		t.Fatalf("expected commit failure")
	}
}
