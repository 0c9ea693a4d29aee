package models

import "time"

// AvailabilityRecord is the resolver's per-date output. It is derived on
// every query and never persisted: availability and price are computed
// independently and only combined here, so a date can carry a rule price
// while being blocked by an existing booking.
type AvailabilityRecord struct {
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
	Price     int64     `json:"price"`
}
