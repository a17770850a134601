// Package ride implements the ride catalog, the request ledger and the seat
// transaction applied when a driver decides on a request.
//
// The Service never caches ride or request state: every operation reads the
// store afresh, and the only multi-row write (accept and take a seat) is
// delegated to the store's transactional AcceptRequest.
package ride

import (
	"time"

	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/telemetry"
)

// Store is the persistence the ride services need.
type Store interface {
	domain.RideStorage
	domain.RequestStorage
	domain.SeatStorage
}

type Service struct {
	store   Store
	metrics telemetry.Recorder
	now     func() time.Time
}

type Option func(*Service)

// WithRecorder reports decision metrics to r.
func WithRecorder(r telemetry.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		metrics: telemetry.Nop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireRole(p domain.Principal, role domain.Role) error {
	if p.Role != role {
		return domain.ErrForbidden
	}
	return nil
}
