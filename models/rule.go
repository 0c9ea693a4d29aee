package models

import "time"

// RuleType is the closed set of pricing rule kinds.
type RuleType string

const (
	RuleTypeWeekday RuleType = "weekday"
	RuleTypeWeekend RuleType = "weekend"
	RuleTypeSeason  RuleType = "season"
	RuleTypeHoliday RuleType = "holiday"
)

// PricingRule is a prioritized pricing policy. It supplies a date's price
// when no override pins one: rules are evaluated in priority-descending
// order (ties broken by most recent CreatedAt) and the first match wins.
type PricingRule struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	Name       string     `json:"name"`
	Type       RuleType   `gorm:"index" json:"type"`
	Price      int64      `json:"price"` // minor currency units
	DaysOfWeek []int      `gorm:"serializer:json" json:"daysOfWeek,omitempty"` // 0=Sunday..6=Saturday
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Priority   int        `gorm:"index" json:"priority"`
	IsActive   bool       `gorm:"index" json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Matches reports whether the rule's predicate covers the given date.
// Weekday and weekend rules share the same day-of-week membership check;
// the distinction between the two types is purely administrative.
// Season and holiday rules need both bounds; a rule missing either one
// never matches.
func (r PricingRule) Matches(d time.Time) bool {
	switch r.Type {
	case RuleTypeWeekday, RuleTypeWeekend:
		dow := int(d.Weekday())
		for _, day := range r.DaysOfWeek {
			if day == dow {
				return true
			}
		}
		return false
	case RuleTypeSeason, RuleTypeHoliday:
		if r.StartDate == nil || r.EndDate == nil {
			return false
		}
		start := NormalizeDate(*r.StartDate)
		end := NormalizeDate(*r.EndDate)
		return !d.Before(start) && !d.After(end)
	default:
		return false
	}
}
