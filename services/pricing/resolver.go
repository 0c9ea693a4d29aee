package pricing

import (
	"context"
	"fmt"
	"time"

	"venuebook/database/repository"
	"venuebook/models"
)

// Resolver computes per-date availability and price by merging three
// independently-mutated sources: date overrides, prioritized pricing rules
// (through the rule cache), and existing bookings. It owns no data and
// performs no writes.
type Resolver struct {
	Rules     *RuleCache
	Overrides repository.OverrideRepository
	Bookings  repository.BookingRepository

	// DefaultPrice applies when neither an override nor a rule prices
	// the date.
	DefaultPrice int64

	// Now is injected for tests; nil means time.Now.
	Now func() time.Time
}

// Resolve computes the availability record for a single date.
func (r *Resolver) Resolve(ctx context.Context, date time.Time) (models.AvailabilityRecord, error) {
	records, err := r.ResolveMany(ctx, []time.Time{date})
	if err != nil {
		return models.AvailabilityRecord{}, err
	}
	return records[0], nil
}

// ResolveMany computes availability records for a batch of dates with one
// rule fetch, one override query, and one booking query, regardless of
// batch size. Output order matches input order.
func (r *Resolver) ResolveMany(ctx context.Context, dates []time.Time) ([]models.AvailabilityRecord, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = models.NormalizeDate(d)
	}

	rules, err := r.Rules.ActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	overrides, err := r.Overrides.GetByDates(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	bookings, err := r.Bookings.ActiveOnDates(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	overrideByDate := make(map[string]models.DateOverride, len(overrides))
	for _, ov := range overrides {
		overrideByDate[models.FormatDate(ov.Date)] = ov
	}
	bookedDates := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		bookedDates[models.FormatDate(b.Date)] = true
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	today := models.NormalizeDate(now())

	records := make([]models.AvailabilityRecord, len(normalized))
	for i, d := range normalized {
		key := models.FormatDate(d)
		var override *models.DateOverride
		if ov, ok := overrideByDate[key]; ok {
			override = &ov
		}
		records[i] = r.resolveOne(d, today, override, bookedDates[key], rules)
	}
	return records, nil
}

// resolveOne applies the resolution algorithm for one date. Availability
// and price are derived independently: past dates are never bookable, a
// blocking override or an active booking makes the date unavailable, and
// the price comes from the override pin, the first matching rule, or the
// system default, in that order.
func (r *Resolver) resolveOne(
	d, today time.Time,
	override *models.DateOverride,
	booked bool,
	rules []models.PricingRule,
) models.AvailabilityRecord {
	record := models.AvailabilityRecord{
		Date:  d,
		Price: r.priceFor(d, override, rules),
	}

	if d.Before(today) {
		return record
	}
	switch {
	case override != nil && !override.IsAvailable:
		// Blocking override and an existing booking are independent
		// signals; either one blocks the date.
	case booked:
	default:
		record.Available = true
	}
	return record
}

func (r *Resolver) priceFor(d time.Time, override *models.DateOverride, rules []models.PricingRule) int64 {
	if override != nil && override.Price != nil {
		return *override.Price
	}
	// The cache hands rules over in evaluation order (priority desc,
	// newest first); the first match wins.
	for _, rule := range rules {
		if rule.Matches(d) {
			return rule.Price
		}
	}
	return r.DefaultPrice
}
