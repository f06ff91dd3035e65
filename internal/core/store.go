package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurantcore/pkg/domain"
)

// Store holds the restaurant's catalog, orders and revenue. Every successful
// mutation rewrites the whole document through the configured backend before
// the call returns.
type Store struct {
	mu       sync.RWMutex
	state    restaurantState
	backend  domain.DocumentBackend
	logger   Logger
	metrics  MetricsRecorder
	notifier StatusNotifier
	nowFn    func() time.Time
	newID    func() string
	strict   bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l Logger) Option {
	return func(s *Store) {
		if l == nil {
			l = noopLogger{}
		}
		s.logger = l
	}
}

// WithClock overrides the clock used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithIDGenerator overrides how menu item and order IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Store) {
		if m == nil {
			m = noopMetrics{}
		}
		s.metrics = m
	}
}

// WithNotifier installs a status change notifier.
func WithNotifier(n StatusNotifier) Option {
	return func(s *Store) {
		if n == nil {
			n = noopNotifier{}
		}
		s.notifier = n
	}
}

// WithStrictLoad makes Open fail, with an empty store, when the stored
// document cannot be loaded in full.
func WithStrictLoad() Option {
	return func(s *Store) { s.strict = true }
}

// Open builds a store for the named restaurant and loads any document the
// backend already holds. A missing document yields an empty store.
func Open(ctx context.Context, restaurantName string, backend domain.DocumentBackend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("document backend is required")
	}
	s := &Store{
		state:    newRestaurantState(restaurantName),
		backend:  backend,
		logger:   noopLogger{},
		metrics:  noopMetrics{},
		notifier: noopNotifier{},
		nowFn:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	start := time.Now()
	err := s.load(ctx)
	s.metrics.Observe(ctx, "load", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordState(s.state.summary())
	return s, nil
}

// tx is a mutation in progress. It works on a copy of the state that only
// replaces the live state when fn succeeds.
type tx struct {
	state restaurantState
	now   domain.Timestamp
}

func (s *Store) mutate(ctx context.Context, operation string, fn func(*tx) error) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{state: s.state.clone(), now: domain.NewTimestamp(s.nowFn())}
	if err := fn(t); err != nil {
		return err
	}
	s.state = t.state
	s.metrics.RecordState(s.state.summary())

	if err := s.saveLocked(ctx); err != nil {
		s.logger.Error("persist document failed", "action", operation, "error", err)
		return err
	}
	return nil
}

// Save writes the current state through the backend.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	doc, err := encodeState(s.state)
	if err != nil {
		return fmt.Errorf("persist document: %w", err)
	}
	if err := s.backend.Save(ctx, doc); err != nil {
		return fmt.Errorf("persist document: %w", err)
	}
	return nil
}

// RestaurantName returns the display name, which a loaded document may have
// replaced.
func (s *Store) RestaurantName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.name
}

// DailyRevenue returns the revenue accumulated from every paid order.
func (s *Store) DailyRevenue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.revenue
}
