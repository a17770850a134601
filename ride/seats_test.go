package ride

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/internal/testdb"
	"github.com/ridemyway/ridemyway/persistence"
)

type fixture struct {
	repo    *persistence.Repository
	svc     *Service
	driver  *domain.User
	alice   *domain.User
	bob     *domain.User
	ride    *domain.Ride
	aliceRq *domain.RideRequest
	bobRq   *domain.RideRequest
}

func newFixture(t *testing.T, seats int) *fixture {
	t.Helper()
	repo := testdb.New(t)

	f := &fixture{repo: repo, svc: NewService(repo)}
	f.driver = testdb.Seed(t, repo, "driver", domain.RoleDriver)
	f.alice = testdb.Seed(t, repo, "alice", domain.RolePassenger)
	f.bob = testdb.Seed(t, repo, "bob", domain.RolePassenger)
	f.ride = testdb.SeedRide(t, repo, f.driver.ID, seats, time.Now().Add(3*time.Hour))
	f.aliceRq = testdb.SeedRequest(t, repo, f.ride.ID, f.alice.ID)
	f.bobRq = testdb.SeedRequest(t, repo, f.ride.ID, f.bob.ID)
	return f
}

func (f *fixture) seats(t *testing.T) int {
	t.Helper()
	r, err := f.repo.GetRide(context.Background(), f.ride.ID)
	if err != nil {
		t.Fatalf("failed to load ride: %v", err)
	}
	return r.AvailableSeats
}

func (f *fixture) status(t *testing.T, id uint) domain.Status {
	t.Helper()
	r, err := f.repo.GetRequest(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load request: %v", err)
	}
	return r.Status
}

func TestDecideLastSeatScenario(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	res, err := f.svc.Decide(ctx, f.aliceRq.ID, domain.StatusAccepted, f.driver.ID)
	if err != nil {
		t.Fatalf("accepting alice failed: %v", err)
	}
	if res.Status != domain.StatusAccepted || res.AvailableSeats != 0 {
		t.Errorf("unexpected decision: %+v", res)
	}
	if got := f.status(t, f.aliceRq.ID); got != domain.StatusAccepted {
		t.Errorf("expected alice accepted, got %s", got)
	}

	_, err = f.svc.Decide(ctx, f.bobRq.ID, domain.StatusAccepted, f.driver.ID)
	if !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Fatalf("expected ErrNoSeatsAvailable, got %v", err)
	}
	if got := f.status(t, f.bobRq.ID); got != domain.StatusPending {
		t.Errorf("expected bob still pending, got %s", got)
	}
	if got := f.seats(t); got != 0 {
		t.Errorf("expected 0 seats, got %d", got)
	}
}

func TestDecideRejectNeverChangesSeats(t *testing.T) {
	for _, seats := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("seats=%d", seats), func(t *testing.T) {
			f := newFixture(t, seats)

			res, err := f.svc.Decide(context.Background(), f.bobRq.ID, domain.StatusRejected, f.driver.ID)
			if err != nil {
				t.Fatalf("reject failed: %v", err)
			}
			if res.Status != domain.StatusRejected {
				t.Errorf("expected rejected, got %s", res.Status)
			}
			if got := f.seats(t); got != seats {
				t.Errorf("expected %d seats, got %d", seats, got)
			}
		})
	}
}

func TestDecideRejectAfterAccept(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	if _, err := f.svc.Decide(ctx, f.aliceRq.ID, domain.StatusAccepted, f.driver.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := f.svc.Decide(ctx, f.aliceRq.ID, domain.StatusRejected, f.driver.ID); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
	if got := f.seats(t); got != 1 {
		t.Errorf("expected 1 seat, got %d", got)
	}
}

func TestDecideValidation(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	tests := []struct {
		name      string
		requestID uint
		decision  domain.Status
		caller    uint
		want      error
	}{
		{"pending is not a decision", f.aliceRq.ID, domain.StatusPending, f.driver.ID, domain.ErrInvalidInput},
		{"unknown decision", f.aliceRq.ID, domain.Status("maybe"), f.driver.ID, domain.ErrInvalidInput},
		{"missing request", 4242, domain.StatusAccepted, f.driver.ID, domain.ErrNotFound},
		{"not the ride's driver", f.aliceRq.ID, domain.StatusAccepted, f.alice.ID, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Decide(ctx, tt.requestID, tt.decision, tt.caller); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if got := f.seats(t); got != 1 {
		t.Errorf("failed decisions must not change seats, got %d", got)
	}
	if got := f.status(t, f.aliceRq.ID); got != domain.StatusPending {
		t.Errorf("failed decisions must not change status, got %s", got)
	}
}

func TestDecideConcurrentAcceptsOnLastSeat(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	ids := []uint{f.aliceRq.ID, f.bobRq.ID}
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.Decide(ctx, id, domain.StatusAccepted, f.driver.ID)
		}(i, id)
	}
	close(start)
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrNoSeatsAvailable):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || full != 1 {
		t.Errorf("expected one success and one ErrNoSeatsAvailable, got %d and %d", ok, full)
	}
	if got := f.seats(t); got != 0 {
		t.Errorf("expected 0 seats, got %d", got)
	}
}

func TestDecideSeatsNeverNegative(t *testing.T) {
	repo := testdb.New(t)
	svc := NewService(repo)
	ctx := context.Background()

	driver := testdb.Seed(t, repo, "driver", domain.RoleDriver)
	ride := testdb.SeedRide(t, repo, driver.ID, 3, time.Now().Add(time.Hour))

	var requests []*domain.RideRequest
	for i := 0; i < 8; i++ {
		p := testdb.Seed(t, repo, fmt.Sprintf("p%d", i), domain.RolePassenger)
		requests = append(requests, testdb.SeedRequest(t, repo, ride.ID, p.ID))
	}

	var wg sync.WaitGroup
	for i, req := range requests {
		decision := domain.StatusAccepted
		if i%4 == 3 {
			decision = domain.StatusRejected
		}
		wg.Add(1)
		go func(id uint, d domain.Status) {
			defer wg.Done()
			_, _ = svc.Decide(ctx, id, d, driver.ID)
		}(req.ID, decision)
	}
	wg.Wait()

	r, err := repo.GetRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("failed to load ride: %v", err)
	}
	if r.AvailableSeats != 0 {
		t.Errorf("expected all 3 seats taken, got %d left", r.AvailableSeats)
	}

	var accepted int64
	repo.DB().Model(&domain.RideRequest{}).Where("ride_id = ? AND status = ?", ride.ID, domain.StatusAccepted).Count(&accepted)
	if accepted != 3 {
		t.Errorf("expected exactly 3 accepted requests, got %d", accepted)
	}
}

type failingStore struct {
	Store
}

func (failingStore) AcceptRequest(ctx context.Context, requestID, rideID uint) (int, error) {
	return 0, fmt.Errorf("%w: connection reset", domain.ErrTransactionFailed)
}

func TestDecideSurfacesTransactionFailure(t *testing.T) {
	f := newFixture(t, 1)
	svc := NewService(failingStore{Store: f.repo})

	_, err := svc.Decide(context.Background(), f.aliceRq.ID, domain.StatusAccepted, f.driver.ID)
	if !errors.Is(err, domain.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	if got := f.seats(t); got != 1 {
		t.Errorf("expected 1 seat, got %d", got)
	}
}
