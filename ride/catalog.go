package ride

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/logger"
	"go.uber.org/zap"
)

// RideInput is what a driver submits to offer a ride.
type RideInput struct {
	Origin         string    `json:"origin"`
	OriginLat      *float64  `json:"origin_lat"`
	OriginLng      *float64  `json:"origin_lng"`
	Destination    string    `json:"destination"`
	DestinationLat *float64  `json:"destination_lat"`
	DestinationLng *float64  `json:"destination_lng"`
	DepartureTime  time.Time `json:"departure_time"`
	AvailableSeats int       `json:"available_seats"`
	CarType        string    `json:"car_type"`
}

func (in RideInput) validate() error {
	switch {
	case strings.TrimSpace(in.Origin) == "":
		return fmt.Errorf("%w: origin is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Destination) == "":
		return fmt.Errorf("%w: destination is required", domain.ErrInvalidInput)
	case in.DepartureTime.IsZero():
		return fmt.Errorf("%w: departure_time is required", domain.ErrInvalidInput)
	case in.AvailableSeats < 0:
		return fmt.Errorf("%w: available_seats must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// CreateRide offers a new ride owned by the calling driver.
func (s *Service) CreateRide(ctx context.Context, caller domain.Principal, in RideInput) (*domain.Ride, error) {
	if err := requireRole(caller, domain.RoleDriver); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		DriverID:       caller.ID,
		Origin:         strings.TrimSpace(in.Origin),
		OriginLat:      in.OriginLat,
		OriginLng:      in.OriginLng,
		Destination:    strings.TrimSpace(in.Destination),
		DestinationLat: in.DestinationLat,
		DestinationLng: in.DestinationLng,
		DepartureTime:  in.DepartureTime,
		AvailableSeats: in.AvailableSeats,
		CarType:        in.CarType,
	}
	if err := s.store.CreateRide(ctx, ride); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}

	logger.Log.Info("ride created",
		zap.Uint("ride_id", ride.ID),
		zap.Uint("driver_id", ride.DriverID),
		zap.Int("seats", ride.AvailableSeats),
	)
	return ride, nil
}

// ListRides returns every ride, earliest departure first.
func (s *Service) ListRides(ctx context.Context) ([]domain.Ride, error) {
	return s.store.ListRides(ctx)
}

func (s *Service) GetRide(ctx context.Context, id uint) (*domain.Ride, error) {
	return s.store.GetRide(ctx, id)
}

// DeleteRide removes a ride and every request made against it. Only the
// driver who offered the ride may delete it.
func (s *Service) DeleteRide(ctx context.Context, rideID uint, caller domain.Principal) error {
	ride, err := s.store.GetRide(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != caller.ID {
		return domain.ErrForbidden
	}

	if err := s.store.DeleteRide(ctx, rideID); err != nil {
		return fmt.Errorf("delete ride %d: %w", rideID, err)
	}

	logger.Log.Info("ride deleted", zap.Uint("ride_id", rideID), zap.Uint("driver_id", caller.ID))
	return nil
}

// MyOffers lists the calling driver's rides, latest departure first, each
// with the requests made against it.
func (s *Service) MyOffers(ctx context.Context, caller domain.Principal) ([]domain.Offer, error) {
	if err := requireRole(caller, domain.RoleDriver); err != nil {
		return nil, err
	}

	rides, err := s.store.ListRidesByDriver(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(rides))
	for i, r := range rides {
		ids[i] = r.ID
	}
	requests, err := s.store.ListRequestsForRides(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRide := make(map[uint][]domain.RequestView, len(rides))
	for _, req := range requests {
		byRide[req.RideID] = append(byRide[req.RideID], req)
	}

	offers := make([]domain.Offer, len(rides))
	for i, r := range rides {
		reqs := byRide[r.ID]
		if reqs == nil {
			reqs = []domain.RequestView{}
		}
		offers[i] = domain.Offer{Ride: r, Requests: reqs}
	}
	return offers, nil
}
