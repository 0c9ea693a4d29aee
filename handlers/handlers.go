package handlers

import "venuebook/services/propagation"

// Bundle groups every HTTP handler so route registration takes a single
// argument.
type Bundle struct {
	Calendar *CalendarHandler
	Booking  *BookingHandler
	Payment  *PaymentWebhookHandler
	Admin    *AdminHandler
	Hub      *propagation.Hub
}
