package ride

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/logger"
	"github.com/ridemyway/ridemyway/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Decide applies a driver's decision to a pending request.
//
// Rejecting only changes the request's status. Accepting changes the status
// and takes one seat from the ride in a single store transaction; the seat
// count is re-checked inside that transaction, so of two concurrent accepts
// competing for the last seat exactly one succeeds.
func (s *Service) Decide(ctx context.Context, requestID uint, decision domain.Status, callerID uint) (result *domain.Decision, err error) {
	start := s.now()
	ctx, span := telemetry.StartSpan(ctx, "ride.decide",
		attribute.Int64(telemetry.AttrRequestID, int64(requestID)),
		attribute.Int64(telemetry.AttrCallerID, int64(callerID)),
		attribute.String(telemetry.AttrDecision, string(decision)),
	)
	defer func() {
		telemetry.EndSpan(span, err)
		s.metrics.RecordDecision(ctx, string(decision), outcome(err), s.now().Sub(start))
	}()

	if decision != domain.StatusAccepted && decision != domain.StatusRejected {
		return nil, fmt.Errorf("%w: status must be accepted or rejected", domain.ErrInvalidInput)
	}

	rc, err := s.store.GetRequestContext(ctx, requestID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64(telemetry.AttrRideID, int64(rc.RideID)))

	if rc.DriverID != callerID {
		return nil, domain.ErrForbidden
	}

	if decision == domain.StatusRejected {
		if err := s.store.RejectRequest(ctx, requestID); err != nil {
			return nil, err
		}
		logger.Log.Info("ride request rejected",
			zap.Uint("request_id", requestID),
			zap.Uint("ride_id", rc.RideID),
		)
		return &domain.Decision{
			RequestID:      requestID,
			RideID:         rc.RideID,
			Status:         domain.StatusRejected,
			AvailableSeats: rc.AvailableSeats,
		}, nil
	}

	if rc.AvailableSeats <= 0 {
		return nil, domain.ErrNoSeatsAvailable
	}

	seats, err := s.store.AcceptRequest(ctx, requestID, rc.RideID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionFailed) {
			logger.Log.Error("accept transaction rolled back",
				zap.Uint("request_id", requestID),
				zap.Uint("ride_id", rc.RideID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	logger.Log.Info("ride request accepted",
		zap.Uint("request_id", requestID),
		zap.Uint("ride_id", rc.RideID),
		zap.Int("seats_left", seats),
	)
	return &domain.Decision{
		RequestID:      requestID,
		RideID:         rc.RideID,
		Status:         domain.StatusAccepted,
		AvailableSeats: seats,
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoSeatsAvailable):
		return "no_seats"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrAlreadyDecided):
		return "invalid"
	default:
		return "error"
	}
}
