// Package persistence implements domain.Storage on top of GORM.
//
// SQLite (pure Go), PostgreSQL and MySQL dialects are registered at init.
// Every multi-row mutation runs inside a single database transaction; the
// seat decrement is a conditional UPDATE so the row itself serializes
// concurrent acceptances on the same ride.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/ridemyway/ridemyway/domain"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var _ domain.Storage = (*Repository)(nil)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func init() {
	Register("sqlite", sqlite.Open)
	Register("postgres", postgres.Open)
	Register("mysql", mysql.Open)
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.User{},
		&domain.Ride{},
		&domain.RideRequest{},
	)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// ---- Ride Catalog ----

func (r *Repository) CreateRide(ctx context.Context, ride *domain.Ride) error {
	ride.DepartureTime = ride.DepartureTime.UTC()
	return r.db.WithContext(ctx).Create(ride).Error
}

func (r *Repository) GetRide(ctx context.Context, id uint) (*domain.Ride, error) {
	var ride domain.Ride
	if err := r.db.WithContext(ctx).First(&ride, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ride, nil
}

func (r *Repository) ListRides(ctx context.Context) ([]domain.Ride, error) {
	var rides []domain.Ride
	if err := r.db.WithContext(ctx).Order("departure_time ASC").Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

func (r *Repository) ListRidesByDriver(ctx context.Context, driverID uint) ([]domain.Ride, error) {
	var rides []domain.Ride
	if err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("departure_time DESC").
		Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

func (r *Repository) DeleteRide(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ride_id = ?", id).Delete(&domain.RideRequest{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Ride{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// ---- Request Ledger ----

func (r *Repository) CreateRequest(ctx context.Context, req *domain.RideRequest) error {
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *Repository) GetRequest(ctx context.Context, id uint) (*domain.RideRequest, error) {
	var req domain.RideRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

func (r *Repository) DeleteRequest(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.RideRequest{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) CountRequestsForRide(ctx context.Context, rideID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RideRequest{}).Where("ride_id = ?", rideID).Count(&n).Error
	return n, err
}

const requestViewColumns = "rr.id, rr.ride_id, rr.passenger_id, u.name AS passenger_name, rr.status, rr.created_at"

func (r *Repository) ListRequestsForRides(ctx context.Context, rideIDs []uint) ([]domain.RequestView, error) {
	views := []domain.RequestView{}
	if len(rideIDs) == 0 {
		return views, nil
	}
	err := r.db.WithContext(ctx).
		Table("ride_requests AS rr").
		Select(requestViewColumns).
		Joins("LEFT JOIN users u ON u.id = rr.passenger_id").
		Where("rr.ride_id IN ?", rideIDs).
		Order("rr.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *Repository) ListRequestsByDriver(ctx context.Context, driverID uint) ([]domain.RequestView, error) {
	views := []domain.RequestView{}
	err := r.db.WithContext(ctx).
		Table("ride_requests AS rr").
		Select(requestViewColumns).
		Joins("JOIN rides r ON r.id = rr.ride_id").
		Joins("LEFT JOIN users u ON u.id = rr.passenger_id").
		Where("r.driver_id = ?", driverID).
		Order("rr.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *Repository) ListRequestsByPassenger(ctx context.Context, passengerID uint) ([]domain.PassengerRequestView, error) {
	views := []domain.PassengerRequestView{}
	err := r.db.WithContext(ctx).
		Table("ride_requests AS rr").
		Select("rr.id, rr.ride_id, r.destination, r.departure_time, rr.status").
		Joins("JOIN rides r ON r.id = rr.ride_id").
		Where("rr.passenger_id = ?", passengerID).
		Order("r.departure_time ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ---- Seat Transaction ----

func (r *Repository) GetRequestContext(ctx context.Context, requestID uint) (*domain.RequestContext, error) {
	var rc domain.RequestContext
	res := r.db.WithContext(ctx).
		Table("ride_requests AS rr").
		Select("rr.id AS request_id, rr.ride_id, r.driver_id, rr.passenger_id, r.available_seats, rr.status").
		Joins("JOIN rides r ON r.id = rr.ride_id").
		Where("rr.id = ?", requestID).
		Limit(1).
		Scan(&rc)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return &rc, nil
}

func (r *Repository) AcceptRequest(ctx context.Context, requestID, rideID uint) (int, error) {
	var ride domain.Ride

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.RideRequest{}).
			Where("id = ? AND status = ?", requestID, domain.StatusPending).
			Update("status", domain.StatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrAlreadyDecided
		}

		// The seat check is re-evaluated by the row update itself.
		res = tx.Model(&domain.Ride{}).
			Where("id = ? AND available_seats > 0", rideID).
			UpdateColumn("available_seats", gorm.Expr("available_seats - ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoSeatsAvailable
		}

		return tx.Select("id", "available_seats").First(&ride, "id = ?", rideID).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyDecided) || errors.Is(err, domain.ErrNoSeatsAvailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	return ride.AvailableSeats, nil
}

func (r *Repository) RejectRequest(ctx context.Context, requestID uint) error {
	res := r.db.WithContext(ctx).Model(&domain.RideRequest{}).
		Where("id = ? AND status = ?", requestID, domain.StatusPending).
		Update("status", domain.StatusRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyDecided
	}
	return nil
}

// ---- Expiry Sweep ----

func (r *Repository) DeleteExpired(ctx context.Context, cutoff time.Time) (domain.SweepResult, error) {
	var result domain.SweepResult
	cutoff = cutoff.UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("ride_id IN (SELECT id FROM rides WHERE departure_time < ?)", cutoff).
			Delete(&domain.RideRequest{})
		if res.Error != nil {
			return fmt.Errorf("delete expired requests: %w", res.Error)
		}
		result.Requests = res.RowsAffected

		res = tx.Where("departure_time < ?", cutoff).Delete(&domain.Ride{})
		if res.Error != nil {
			return fmt.Errorf("delete expired rides: %w", res.Error)
		}
		result.Rides = res.RowsAffected
		return nil
	})
	if err != nil {
		return domain.SweepResult{}, err
	}

	return result, nil
}

// ---- Users ----

func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *Repository) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) MarkUserVerified(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_verified": true, "verification_token": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
