package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"venuebook/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 65536

// PaymentWebhookHandler receives asynchronous payment outcomes from the
// payment collaborator and turns them into booking status transitions.
type PaymentWebhookHandler struct {
	Service       booking.Service
	WebhookSecret string
	Logger        *zap.Logger
}

func NewPaymentWebhookHandler(service booking.Service, secret string, logger *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{Service: service, WebhookSecret: secret, Logger: logger}
}

// HandleWebhook verifies the event signature and applies the outcome.
// A non-2xx response makes the collaborator redeliver, so transient store
// errors return 500 while unknown intents are acknowledged and dropped.
func (h *PaymentWebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			h.Logger.Error("failed to parse payment intent", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
			return
		}
		succeeded := event.Type == "payment_intent.succeeded"
		if err := h.Service.HandlePaymentResult(c.Request.Context(), intent.ID, succeeded); err != nil {
			h.Logger.Error("failed to apply payment result",
				zap.String("intentID", intent.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply payment result"})
			return
		}
	default:
		// Other event types are none of our business.
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
