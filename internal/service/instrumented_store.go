package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

// RecordStore mirrors repository.RecordStore.
type RecordStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// InstrumentedStore decorates a RecordStore with latency metrics, failure
// logging and a per-call timeout.
type InstrumentedStore struct {
	next    RecordStore
	driver  string
	timeout time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewInstrumentedStore wraps next. A zero timeout leaves the caller's deadline untouched.
func NewInstrumentedStore(next RecordStore, driver string, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *InstrumentedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedStore{next: next, driver: driver, timeout: timeout, metrics: metrics, logger: logger}
}

// Get delegates to the wrapped store.
func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	value, err := s.next.Get(ctx, key)
	s.observe("get", key, err, time.Since(start))
	return value, err
}

// Set delegates to the wrapped store.
func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observe("set", key, err, time.Since(start))
	return err
}

func (s *InstrumentedStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *InstrumentedStore) observe(op, key string, err error, duration time.Duration) {
	result := StoreResultOK
	switch {
	case err == nil:
	case errors.Is(err, appErrors.ErrKeyNotFound):
		result = StoreResultMiss
	default:
		result = StoreResultError
		s.logger.Warn("record store operation failed",
			zap.String("driver", s.driver),
			zap.String("op", op),
			zap.String("key", key),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
	s.metrics.ObserveStoreOperation(s.driver, op, result, duration)
}
