package models

import "time"

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// HoldsDate reports whether a booking in this status blocks its date.
// Cancelled bookings free the date.
func (s BookingStatus) HoldsDate() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// Booking is a customer reservation of a single calendar date. The store
// enforces at most one non-cancelled booking per date via a partial
// unique index on (date) WHERE status <> 'cancelled'.
// Price is a snapshot taken at booking time and never re-derived.
type Booking struct {
	ID              string        `gorm:"primaryKey" json:"id"`
	Date            time.Time     `gorm:"index" json:"date"`
	Status          BookingStatus `gorm:"index" json:"status"`
	Price           int64         `json:"price"` // minor currency units
	CustomerName    string        `json:"customerName"`
	CustomerEmail   string        `json:"customerEmail"`
	CustomerPhone   string        `json:"customerPhone,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	PaymentIntentID string        `gorm:"index" json:"-"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// ClientSecret is handed to the customer to complete payment; it is
	// never persisted.
	ClientSecret string `gorm:"-" json:"clientSecret,omitempty"`
}
