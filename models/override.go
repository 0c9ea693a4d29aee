package models

import "time"

// DateOverride is an admin-set per-date pin of price and/or availability.
// At most one override exists per calendar date (unique index on the
// normalized date). A nil Price means the override only controls
// availability; IsAvailable false blocks the date regardless of bookings.
type DateOverride struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"uniqueIndex" json:"date"`
	Price       *int64    `json:"price,omitempty"` // minor currency units
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
