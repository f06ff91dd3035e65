package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restaurantcore/internal/infra/persistence/memory"
	"restaurantcore/pkg/domain"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

const fixedStamp = domain.Timestamp("2024-05-01T12:00:00.000000")

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetrics struct {
	calls []metricsCall
	last  StateSummary
}

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetrics) RecordState(s StateSummary) { c.last = s }

func (c *captureMetrics) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type fixture struct {
	store   *Store
	backend *memory.Backend
	logger  *captureLogger
	metrics *captureMetrics
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	return openFixture(t, memory.New(), opts...)
}

func openFixture(t *testing.T, backend *memory.Backend, opts ...Option) fixture {
	t.Helper()
	f := fixture{backend: backend, logger: &captureLogger{}, metrics: &captureMetrics{}}
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(seqIDs()),
		WithLogger(f.logger),
		WithMetrics(f.metrics),
	}
	store, err := Open(context.Background(), "Delicious Bites", backend, append(base, opts...)...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	f.store = store
	return f
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustAddItem(t *testing.T, s *Store, name, price, category string) domain.MenuItem {
	t.Helper()
	item, err := s.AddMenuItem(context.Background(), name, name+" description", money(price), category)
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return item
}

func mustCreateOrder(t *testing.T, s *Store, table int, server string) domain.Order {
	t.Helper()
	order, err := s.CreateOrder(context.Background(), table, server)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func ptr[T any](v T) *T { return &v }
