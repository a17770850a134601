package domain

import "time"

// Role is the kind of account an authenticated caller holds.
type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

func (r Role) Valid() bool {
	return r == RoleDriver || r == RolePassenger
}

// Status is the lifecycle state of a RideRequest.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Ride is a trip offered by a driver with a fixed seat capacity.
// AvailableSeats only ever decreases after creation.
type Ride struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DriverID       uint      `gorm:"index;not null" json:"driver_id"`
	Origin         string    `gorm:"not null" json:"origin"`
	OriginLat      *float64  `json:"origin_lat,omitempty"`
	OriginLng      *float64  `json:"origin_lng,omitempty"`
	Destination    string    `gorm:"not null" json:"destination"`
	DestinationLat *float64  `json:"destination_lat,omitempty"`
	DestinationLng *float64  `json:"destination_lng,omitempty"`
	DepartureTime  time.Time `gorm:"index;not null" json:"departure_time"`
	AvailableSeats int       `gorm:"not null;check:available_seats >= 0" json:"available_seats"`
	CarType        string    `json:"car_type"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Ride) TableName() string { return "rides" }

// RideRequest is a passenger's request for a seat on a Ride.
type RideRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RideID      uint      `gorm:"index;not null" json:"ride_id"`
	Ride        *Ride     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PassengerID uint      `gorm:"index;not null" json:"passenger_id"`
	Status      Status    `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (RideRequest) TableName() string { return "ride_requests" }

// RequestContext is a request joined with the ride it references. It is
// what the seat transaction needs to authorize and pre-check a decision.
type RequestContext struct {
	RequestID      uint
	RideID         uint
	DriverID       uint
	PassengerID    uint
	AvailableSeats int
	Status         Status
}

// RequestView is a request as shown to a driver.
type RequestView struct {
	ID            uint      `json:"id"`
	RideID        uint      `json:"ride_id"`
	PassengerID   uint      `json:"passenger_id"`
	PassengerName string    `json:"passenger_name"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// PassengerRequestView is a request as shown to the passenger who made it.
type PassengerRequestView struct {
	ID            uint      `json:"id"`
	RideID        uint      `json:"ride_id"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	Status        Status    `json:"status"`
}

// Offer is a driver's ride with the requests made against it.
type Offer struct {
	Ride
	Requests []RequestView `json:"requests"`
}

// Decision is the outcome of a driver accepting or rejecting a request.
type Decision struct {
	RequestID      uint   `json:"request_id"`
	RideID         uint   `json:"ride_id"`
	Status         Status `json:"status"`
	AvailableSeats int    `json:"available_seats"`
}

// SweepResult counts what one expiry sweep removed.
type SweepResult struct {
	Rides    int64 `json:"rides"`
	Requests int64 `json:"requests"`
}
