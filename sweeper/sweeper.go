// Package sweeper purges rides, and the requests made against them, once
// their departure time is further in the past than a grace period.
//
// The sweep runs on its own ticker, independent of request handling. A
// failed run is logged and otherwise ignored; the next tick is the retry.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/logger"
	"github.com/ridemyway/ridemyway/telemetry"
	"go.uber.org/zap"
)

const (
	DefaultInterval = time.Minute
	DefaultGrace    = time.Hour
)

type Sweeper struct {
	store    domain.SweepStorage
	interval time.Duration
	grace    time.Duration
	audit    *zap.Logger
	metrics  telemetry.Recorder
	now      func() time.Time
}

type Option func(*Sweeper)

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		s.interval = d
	}
}

func WithGrace(d time.Duration) Option {
	return func(s *Sweeper) {
		s.grace = d
	}
}

// WithAuditLog sends one line per run to l, typically from NewCleanupLog.
func WithAuditLog(l *zap.Logger) Option {
	return func(s *Sweeper) {
		s.audit = l
	}
}

func WithRecorder(r telemetry.Recorder) Option {
	return func(s *Sweeper) {
		s.metrics = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func New(store domain.SweepStorage, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:    store,
		interval: DefaultInterval,
		grace:    DefaultGrace,
		audit:    zap.NewNop(),
		metrics:  telemetry.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce deletes everything that departed more than the grace period ago.
func (s *Sweeper) RunOnce(ctx context.Context) (res domain.SweepResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "sweeper.run")
	defer func() {
		telemetry.EndSpan(span, err)
		s.metrics.RecordSweep(ctx, res.Rides, res.Requests, err)
	}()

	cutoff := s.now().Add(-s.grace)
	res, err = s.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		logger.Log.Error("expired ride cleanup failed", zap.Time("cutoff", cutoff), zap.Error(err))
		s.audit.Info(fmt.Sprintf("Error: %v", err))
		return domain.SweepResult{}, err
	}

	logger.Log.Info("expired rides cleaned up",
		zap.Int64("rides", res.Rides),
		zap.Int64("requests", res.Requests),
		zap.Time("cutoff", cutoff),
	)
	s.audit.Info(fmt.Sprintf("Cleaned up %d expired ride(s)", res.Rides))
	return res, nil
}

// Start runs a sweep every interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Log.Info("expiry sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("grace", s.grace),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("expiry sweeper panicked", zap.Any("panic", r))
			s.audit.Info(fmt.Sprintf("Error: panic: %v", r))
		}
	}()
	_, _ = s.RunOnce(ctx)
}
