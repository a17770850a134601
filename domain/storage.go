// Package domain defines the ride-sharing types and the storage contracts
// the ride services depend on.
//
// # Interfaces
//
//   - Storage: composite interface combining all storage operations
//   - RideStorage: ride catalog reads and writes
//   - RequestStorage: request ledger reads and writes
//   - SeatStorage: the accept/reject transaction primitives
//   - SweepStorage: bulk deletion of expired rides
//   - UserStorage: identity provider persistence
//
// See the persistence package for the GORM-based implementation.
package domain

import (
	"context"
	"time"
)

// Storage defines the interface for all persistence operations.
type Storage interface {
	RideStorage
	RequestStorage
	SeatStorage
	SweepStorage
	UserStorage
	Ping(ctx context.Context) error
}

type RideStorage interface {
	CreateRide(ctx context.Context, ride *Ride) error
	GetRide(ctx context.Context, id uint) (*Ride, error)
	ListRides(ctx context.Context) ([]Ride, error)
	ListRidesByDriver(ctx context.Context, driverID uint) ([]Ride, error)
	// DeleteRide removes the ride together with every request referencing it.
	DeleteRide(ctx context.Context, id uint) error
}

type RequestStorage interface {
	CreateRequest(ctx context.Context, req *RideRequest) error
	GetRequest(ctx context.Context, id uint) (*RideRequest, error)
	DeleteRequest(ctx context.Context, id uint) error
	CountRequestsForRide(ctx context.Context, rideID uint) (int64, error)
	ListRequestsForRides(ctx context.Context, rideIDs []uint) ([]RequestView, error)
	ListRequestsByDriver(ctx context.Context, driverID uint) ([]RequestView, error)
	ListRequestsByPassenger(ctx context.Context, passengerID uint) ([]PassengerRequestView, error)
}

type SeatStorage interface {
	// GetRequestContext joins a request with the ride it references.
	GetRequestContext(ctx context.Context, requestID uint) (*RequestContext, error)
	// AcceptRequest marks a pending request accepted and takes one seat from
	// its ride, atomically. It returns the ride's remaining seats.
	AcceptRequest(ctx context.Context, requestID, rideID uint) (int, error)
	// RejectRequest marks a pending request rejected.
	RejectRequest(ctx context.Context, requestID uint) error
}

type SweepStorage interface {
	// DeleteExpired removes rides that departed before cutoff and their requests.
	DeleteExpired(ctx context.Context, cutoff time.Time) (SweepResult, error)
}

type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uint) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	MarkUserVerified(ctx context.Context, id uint) error
}

// Hasher defines the interface for password hashing and verification.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}
