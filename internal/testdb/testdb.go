// Package testdb opens throwaway SQLite-backed repositories for tests.
package testdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/persistence"
)

// New returns a migrated repository backed by a file in t.TempDir().
// The pool is capped at one connection so concurrent transactions are
// serialized the way a row lock would serialize them.
func New(t testing.TB) *persistence.Repository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ridemyway_test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	repo, err := persistence.NewStorage("sqlite", dsn, nil)
	if err != nil {
		t.Fatalf("failed to setup repo: %v", err)
	}

	sqlDB, err := repo.DB().DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// Seed inserts a user and returns it.
func Seed(t testing.TB, repo *persistence.Repository, name string, role domain.Role) *domain.User {
	t.Helper()

	u := &domain.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsVerified:   true,
	}
	if err := repo.DB().Create(u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	return u
}

// SeedRide inserts a ride departing at departure with the given seats.
func SeedRide(t testing.TB, repo *persistence.Repository, driverID uint, seats int, departure time.Time) *domain.Ride {
	t.Helper()

	ride := &domain.Ride{
		DriverID:       driverID,
		Origin:         "Lagos",
		Destination:    "Ibadan",
		DepartureTime:  departure.UTC(),
		AvailableSeats: seats,
		CarType:        "sedan",
	}
	if err := repo.DB().Create(ride).Error; err != nil {
		t.Fatalf("failed to seed ride: %v", err)
	}
	return ride
}

// SeedRequest inserts a pending request.
func SeedRequest(t testing.TB, repo *persistence.Repository, rideID, passengerID uint) *domain.RideRequest {
	t.Helper()

	req := &domain.RideRequest{RideID: rideID, PassengerID: passengerID, Status: domain.StatusPending}
	if err := repo.DB().Create(req).Error; err != nil {
		t.Fatalf("failed to seed request: %v", err)
	}
	return req
}
