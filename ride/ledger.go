package ride

import (
	"context"
	"fmt"

	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/logger"
	"go.uber.org/zap"
)

// RequestSeat records a pending request by the calling passenger.
func (s *Service) RequestSeat(ctx context.Context, rideID uint, caller domain.Principal) (*domain.RideRequest, error) {
	if err := requireRole(caller, domain.RolePassenger); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRide(ctx, rideID); err != nil {
		return nil, err
	}

	req := &domain.RideRequest{
		RideID:      rideID,
		PassengerID: caller.ID,
		Status:      domain.StatusPending,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	logger.Log.Info("ride requested",
		zap.Uint("request_id", req.ID),
		zap.Uint("ride_id", rideID),
		zap.Uint("passenger_id", caller.ID),
	)
	return req, nil
}

// DeleteOwnRequest removes a passenger's own request whatever its status.
// An accepted request's seat is not given back to the ride.
func (s *Service) DeleteOwnRequest(ctx context.Context, requestID uint, caller domain.Principal) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if caller.Role != domain.RolePassenger || req.PassengerID != caller.ID {
		return domain.ErrForbidden
	}

	if err := s.store.DeleteRequest(ctx, requestID); err != nil {
		return fmt.Errorf("delete request %d: %w", requestID, err)
	}

	logger.Log.Info("ride request deleted",
		zap.Uint("request_id", requestID),
		zap.String("status", string(req.Status)),
	)
	return nil
}

// MyRequests lists the calling passenger's requests, earliest departure first.
func (s *Service) MyRequests(ctx context.Context, caller domain.Principal) ([]domain.PassengerRequestView, error) {
	if err := requireRole(caller, domain.RolePassenger); err != nil {
		return nil, err
	}
	return s.store.ListRequestsByPassenger(ctx, caller.ID)
}

// DriverRequests lists the requests made against all of the calling driver's rides.
func (s *Service) DriverRequests(ctx context.Context, caller domain.Principal) ([]domain.RequestView, error) {
	if err := requireRole(caller, domain.RoleDriver); err != nil {
		return nil, err
	}
	return s.store.ListRequestsByDriver(ctx, caller.ID)
}
