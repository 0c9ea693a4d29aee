package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/database/repository"
	"venuebook/models"
	"venuebook/services/pricing"
	"venuebook/services/propagation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultService is the production booking service.
type DefaultService struct {
	Repo      repository.BookingRepository
	Resolver  *pricing.Resolver
	Publisher propagation.Publisher
	Payments  PaymentGateway  // optional; nil disables payment collection
	Expiry    ExpiryScheduler // optional; nil disables pending expiry
	Logger    *zap.Logger
}

// Create books a date for a customer. The resolver pre-check fails fast
// with a friendly error; the store's partial unique index is what actually
// guarantees at most one non-cancelled booking per date under concurrent
// writers.
func (s *DefaultService) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	date := models.NormalizeDate(in.Date)

	// Fresh resolution at write time; the customer's calendar view may
	// be minutes old.
	record, err := s.Resolver.Resolve(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("availability check failed: %w", err)
	}
	if !record.Available {
		return nil, ErrDateUnavailable
	}

	booking := &models.Booking{
		ID:            uuid.New().String(),
		Date:          date,
		Status:        models.BookingStatusPending,
		Price:         record.Price,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		Notes:         in.Notes,
	}
	if err := s.Repo.Create(ctx, booking); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the insert race to a concurrent writer.
			return nil, ErrDateUnavailable
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if s.Payments != nil {
		intentID, clientSecret, err := s.Payments.CreateIntent(ctx, booking)
		if err != nil {
			// The booking stays pending and the expiry worker reaps it
			// if the customer never pays.
			s.Logger.Error("payment intent creation failed",
				zap.String("bookingID", booking.ID), zap.Error(err))
		} else if err := s.Repo.SetPaymentIntent(ctx, booking.ID, intentID); err != nil {
			s.Logger.Error("failed to attach payment intent",
				zap.String("bookingID", booking.ID), zap.Error(err))
		} else {
			booking.PaymentIntentID = intentID
			booking.ClientSecret = clientSecret
		}
	}

	if s.Expiry != nil {
		if err := s.Expiry.ScheduleExpiry(ctx, booking.ID); err != nil {
			s.Logger.Error("failed to schedule booking expiry",
				zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}

	s.publish(ctx, models.AvailabilityEvent{
		Date:        models.FormatDate(date),
		Price:       record.Price,
		IsAvailable: false,
	})
	return booking, nil
}

// HandlePaymentResult applies the payment collaborator's asynchronous
// outcome for the given payment intent.
func (s *DefaultService) HandlePaymentResult(ctx context.Context, intentID string, succeeded bool) error {
	booking, err := s.Repo.GetByPaymentIntent(ctx, intentID)
	if err != nil {
		return err
	}
	if booking == nil {
		s.Logger.Warn("payment result for unknown intent", zap.String("intentID", intentID))
		return nil
	}

	if succeeded {
		changed, err := s.Repo.UpdateStatusIf(ctx, booking.ID,
			models.BookingStatusPending, models.BookingStatusConfirmed)
		if err != nil {
			return err
		}
		if changed {
			s.Logger.Info("booking confirmed",
				zap.String("bookingID", booking.ID),
				zap.String("date", models.FormatDate(booking.Date)))
		}
		// The date was already held while pending; resolved
		// availability is unchanged, so there is nothing to broadcast.
		return nil
	}

	changed, err := s.Repo.UpdateStatusIf(ctx, booking.ID,
		models.BookingStatusPending, models.BookingStatusCancelled)
	if err != nil {
		return err
	}
	if changed {
		s.Logger.Info("booking cancelled after failed payment",
			zap.String("bookingID", booking.ID))
		s.announceDate(ctx, booking.Date)
	}
	return nil
}

// ExpirePending cancels a booking still pending past its payment window.
func (s *DefaultService) ExpirePending(ctx context.Context, id string) error {
	booking, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return nil
	}
	changed, err := s.Repo.UpdateStatusIf(ctx, id,
		models.BookingStatusPending, models.BookingStatusCancelled)
	if err != nil {
		return err
	}
	if !changed {
		// Already confirmed or cancelled.
		return nil
	}
	s.Logger.Info("expired pending booking",
		zap.String("bookingID", id),
		zap.String("date", models.FormatDate(booking.Date)))
	s.announceDate(ctx, booking.Date)
	return nil
}

// Confirm marks a pending booking confirmed without a payment event,
// covering payments settled outside the gateway.
func (s *DefaultService) Confirm(ctx context.Context, id string) error {
	booking, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	changed, err := s.Repo.UpdateStatusIf(ctx, id,
		models.BookingStatusPending, models.BookingStatusConfirmed)
	if err != nil {
		return err
	}
	if changed {
		s.Logger.Info("booking confirmed by admin", zap.String("bookingID", id))
	}
	// The date was held while pending, so resolved availability is
	// unchanged either way.
	return nil
}

// Cancel is the explicit admin cancellation path.
func (s *DefaultService) Cancel(ctx context.Context, id string) error {
	booking, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	changed, err := s.Repo.UpdateStatusIf(ctx, id,
		models.BookingStatusPending, models.BookingStatusCancelled)
	if err != nil {
		return err
	}
	if !changed {
		changed, err = s.Repo.UpdateStatusIf(ctx, id,
			models.BookingStatusConfirmed, models.BookingStatusCancelled)
		if err != nil {
			return err
		}
	}
	if changed {
		s.announceDate(ctx, booking.Date)
	}
	return nil
}

func (s *DefaultService) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultService) ListRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	return s.Repo.ListRange(ctx, from, to)
}

// announceDate re-resolves a date and broadcasts its new state after a
// mutation freed or changed it.
func (s *DefaultService) announceDate(ctx context.Context, date time.Time) {
	record, err := s.Resolver.Resolve(ctx, date)
	if err != nil {
		s.Logger.Warn("failed to re-resolve date for propagation",
			zap.String("date", models.FormatDate(date)), zap.Error(err))
		return
	}
	s.publish(ctx, models.AvailabilityEvent{
		Date:        models.FormatDate(record.Date),
		Price:       record.Price,
		IsAvailable: record.Available,
	})
}

// publish is fire-and-forget; broadcast failures never fail the mutation.
func (s *DefaultService) publish(ctx context.Context, ev models.AvailabilityEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishAvailability(ctx, ev); err != nil {
		s.Logger.Warn("availability broadcast failed", zap.Error(err))
	}
}
