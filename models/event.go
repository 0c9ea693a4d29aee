package models

// AvailabilityEvent is the change-propagation payload broadcast to
// connected viewers when a mutation changes a date's resolved state.
// Delivery is best-effort; viewers self-heal by polling.
//
// A rule mutation affects an unbounded set of dates, so it is signalled
// as a dateless RulesChanged event and viewers re-pull their range.
type AvailabilityEvent struct {
	Date         string `json:"date,omitempty"`
	Price        int64  `json:"price,omitempty"`
	IsAvailable  bool   `json:"isAvailable"`
	RulesChanged bool   `json:"rulesChanged,omitempty"`
}
