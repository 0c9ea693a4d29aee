// File: venuebook/database/repository/booking.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/models"

	"gorm.io/gorm"
)

// BookingRepository provides access to persisted bookings. Create relies
// on the partial unique index on (date) WHERE status <> 'cancelled';
// callers translate gorm.ErrDuplicatedKey into a conflict result.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*models.Booking, error)
	// ActiveOnDates returns bookings holding any of the given dates
	// (status pending or confirmed).
	ActiveOnDates(ctx context.Context, dates []time.Time) ([]models.Booking, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	// UpdateStatusIf transitions id from one status to another and
	// reports whether a row changed. A false result means the booking
	// was missing or already past the expected state.
	UpdateStatusIf(ctx context.Context, id string, from, to models.BookingStatus) (bool, error)
	SetPaymentIntent(ctx context.Context, id, intentID string) error
}

type gormBookingRepo struct {
	db *gorm.DB
}

// NewGormBookingRepo constructs a Postgres-backed BookingRepository.
func NewGormBookingRepo(db *gorm.DB) BookingRepository {
	return &gormBookingRepo{db: db}
}

func (r *gormBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	// Returned unwrapped so callers can match gorm.ErrDuplicatedKey.
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *gormBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *gormBookingRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, "payment_intent_id = ?", intentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking for intent %s: %w", intentID, err)
	}
	return &booking, nil
}

func (r *gormBookingRepo) ActiveOnDates(ctx context.Context, dates []time.Time) ([]models.Booking, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("date IN ? AND status IN ?", dates,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch active bookings: %w", err)
	}
	return bookings, nil
}

func (r *gormBookingRepo) ListRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", models.NormalizeDate(from), models.NormalizeDate(to)).
		Order("date ASC, created_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *gormBookingRepo) UpdateStatusIf(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update booking %s status: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormBookingRepo) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("payment_intent_id", intentID).Error; err != nil {
		return fmt.Errorf("failed to attach payment intent to booking %s: %w", id, err)
	}
	return nil
}
