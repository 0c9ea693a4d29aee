package booking

import (
	"context"
	"time"

	"venuebook/models"
)

// CreateInput carries the customer checkout fields for a new booking.
type CreateInput struct {
	Date          time.Time
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Notes         string
}

// Service is the booking write path. Create is the conflict guard: it
// re-validates availability immediately before the insert and translates
// a store-level uniqueness violation into ErrDateUnavailable.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*models.Booking, error)
	// HandlePaymentResult applies an asynchronous payment outcome:
	// success confirms the pending booking, failure cancels it and
	// frees the date.
	HandlePaymentResult(ctx context.Context, intentID string, succeeded bool) error
	// ExpirePending cancels a booking that is still pending past its
	// payment window. Idempotent; a no-op for settled bookings.
	ExpirePending(ctx context.Context, id string) error
	// Confirm is the manual admin path for payments settled outside
	// the gateway; it marks a pending booking confirmed.
	Confirm(ctx context.Context, id string) error
	// Cancel is the explicit admin path; it cancels pending or
	// confirmed bookings.
	Cancel(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}

// ExpiryScheduler enqueues the deferred cancellation of a pending booking.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string) error
}
