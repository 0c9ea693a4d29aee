package booking

import (
	"context"
	"fmt"

	"venuebook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// PaymentGateway creates a payment for a freshly-inserted booking. The
// outcome arrives later through the payment collaborator's webhook.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, booking *models.Booking) (intentID, clientSecret string, err error)
}

// StripeGateway is the production gateway. The API key is set globally in
// main (stripe.Key), matching the stripe-go usage model.
type StripeGateway struct {
	Currency string
}

func (g *StripeGateway) CreateIntent(ctx context.Context, booking *models.Booking) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(booking.Price),
		Currency: stripe.String(g.Currency),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", booking.ID)
	params.AddMetadata("booking_date", models.FormatDate(booking.Date))

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}
