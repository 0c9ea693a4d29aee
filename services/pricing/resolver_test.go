package pricing

import (
	"context"
	"testing"
	"time"

	"venuebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-08-01 is a Friday; 2025-08-02 and 2025-08-03 are the weekend.
var (
	testToday = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	friday    = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	saturday  = time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	sunday    = time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC)
)

type fakeOverrideRepo struct {
	overrides map[string]models.DateOverride
	queries   int
}

func (f *fakeOverrideRepo) GetByDate(ctx context.Context, date time.Time) (*models.DateOverride, error) {
	if ov, ok := f.overrides[models.FormatDate(date)]; ok {
		return &ov, nil
	}
	return nil, nil
}

func (f *fakeOverrideRepo) GetByDates(ctx context.Context, dates []time.Time) ([]models.DateOverride, error) {
	f.queries++
	var out []models.DateOverride
	for _, d := range dates {
		if ov, ok := f.overrides[models.FormatDate(d)]; ok {
			out = append(out, ov)
		}
	}
	return out, nil
}

func (f *fakeOverrideRepo) ListRange(ctx context.Context, from, to time.Time) ([]models.DateOverride, error) {
	return nil, nil
}

func (f *fakeOverrideRepo) Upsert(ctx context.Context, override *models.DateOverride) error {
	if f.overrides == nil {
		f.overrides = make(map[string]models.DateOverride)
	}
	f.overrides[models.FormatDate(override.Date)] = *override
	return nil
}

func (f *fakeOverrideRepo) Delete(ctx context.Context, date time.Time) error {
	delete(f.overrides, models.FormatDate(date))
	return nil
}

type fakeBookingSource struct {
	booked  map[string]bool
	queries int
}

func (f *fakeBookingSource) Create(ctx context.Context, booking *models.Booking) error { return nil }

func (f *fakeBookingSource) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingSource) GetByPaymentIntent(ctx context.Context, intentID string) (*models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingSource) ActiveOnDates(ctx context.Context, dates []time.Time) ([]models.Booking, error) {
	f.queries++
	var out []models.Booking
	for _, d := range dates {
		if f.booked[models.FormatDate(d)] {
			out = append(out, models.Booking{Date: d, Status: models.BookingStatusPending})
		}
	}
	return out, nil
}

func (f *fakeBookingSource) ListRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingSource) UpdateStatusIf(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	return false, nil
}

func (f *fakeBookingSource) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	return nil
}

func newTestResolver(rules []models.PricingRule, overrides *fakeOverrideRepo, bookings *fakeBookingSource) *Resolver {
	if overrides == nil {
		overrides = &fakeOverrideRepo{}
	}
	if bookings == nil {
		bookings = &fakeBookingSource{}
	}
	fetches := 0
	cache := NewRuleCache(func(ctx context.Context) ([]models.PricingRule, error) {
		fetches++
		return rules, nil
	}, 30*time.Second, nil)
	return &Resolver{
		Rules:        cache,
		Overrides:    overrides,
		Bookings:     bookings,
		DefaultPrice: 5000,
		Now:          func() time.Time { return testToday },
	}
}

func TestResolveDefaultPrice(t *testing.T) {
	r := newTestResolver(nil, nil, nil)

	rec, err := r.Resolve(context.Background(), saturday)
	require.NoError(t, err)
	assert.True(t, rec.Available)
	assert.Equal(t, int64(5000), rec.Price)
}

func TestWeekendRulePricesOnlyWeekendDays(t *testing.T) {
	rules := []models.PricingRule{{
		ID:         "weekend",
		Type:       models.RuleTypeWeekend,
		Price:      7000,
		DaysOfWeek: []int{0, 6},
		IsActive:   true,
	}}
	r := newTestResolver(rules, nil, nil)

	recs, err := r.ResolveMany(context.Background(), []time.Time{friday, saturday, sunday})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, int64(5000), recs[0].Price, "Friday falls through to the default")
	assert.Equal(t, int64(7000), recs[1].Price)
	assert.Equal(t, int64(7000), recs[2].Price)
}

func TestHigherPriorityRuleWins(t *testing.T) {
	// Fetch order is deliberately wrong; the cache must re-sort before
	// the resolver evaluates.
	start, end := saturday, sunday
	rules := []models.PricingRule{
		{ID: "weekend", Type: models.RuleTypeWeekend, Price: 7000, DaysOfWeek: []int{0, 6}, Priority: 5, IsActive: true},
		{ID: "promo", Type: models.RuleTypeSeason, Price: 6000, StartDate: &start, EndDate: &end, Priority: 10, IsActive: true},
	}
	r := newTestResolver(rules, nil, nil)

	rec, err := r.Resolve(context.Background(), saturday)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), rec.Price, "higher-priority season rule shadows the weekend rule")
}

func TestEqualPriorityNewerRuleWins(t *testing.T) {
	older := models.PricingRule{
		ID: "summer-v1", Type: models.RuleTypeWeekend, Price: 6000,
		DaysOfWeek: []int{0, 6}, Priority: 5, IsActive: true,
		CreatedAt: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	}
	newer := models.PricingRule{
		ID: "summer-v2", Type: models.RuleTypeWeekend, Price: 6500,
		DaysOfWeek: []int{0, 6}, Priority: 5, IsActive: true,
		CreatedAt: time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC),
	}
	// Older rule first in fetch order; createdAt must break the tie.
	r := newTestResolver([]models.PricingRule{older, newer}, nil, nil)

	rec, err := r.Resolve(context.Background(), saturday)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), rec.Price, "at equal priority the later-created rule prices the date")
}

func TestOverridePricePinBeatsRules(t *testing.T) {
	rules := []models.PricingRule{{
		ID: "weekend", Type: models.RuleTypeWeekend, Price: 7000, DaysOfWeek: []int{0, 6}, IsActive: true,
	}}
	pinned := int64(9900)
	overrides := &fakeOverrideRepo{overrides: map[string]models.DateOverride{
		models.FormatDate(saturday): {Date: saturday, Price: &pinned, IsAvailable: true},
	}}
	r := newTestResolver(rules, overrides, nil)

	rec, err := r.Resolve(context.Background(), saturday)
	require.NoError(t, err)
	assert.True(t, rec.Available)
	assert.Equal(t, pinned, rec.Price)
}

func TestBlockingOverrideStillCarriesPrice(t *testing.T) {
	rules := []models.PricingRule{{
		ID: "weekend", Type: models.RuleTypeWeekend, Price: 7000, DaysOfWeek: []int{0, 6}, IsActive: true,
	}}
	overrides := &fakeOverrideRepo{overrides: map[string]models.DateOverride{
		models.FormatDate(saturday): {Date: saturday, IsAvailable: false},
	}}
	r := newTestResolver(rules, overrides, nil)

	rec, err := r.Resolve(context.Background(), saturday)
	require.NoError(t, err)
	assert.False(t, rec.Available)
	assert.Equal(t, int64(7000), rec.Price, "price resolution is independent of availability")
}

func TestPastDatesNeverAvailable(t *testing.T) {
	past := testToday.AddDate(0, 0, -1)
	available := int64(100)
	overrides := &fakeOverrideRepo{overrides: map[string]models.DateOverride{
		models.FormatDate(past): {Date: past, Price: &available, IsAvailable: true},
	}}
	r := newTestResolver(nil, overrides, nil)

	rec, err := r.Resolve(context.Background(), past)
	require.NoError(t, err)
	assert.False(t, rec.Available, "no override can resurrect a past date")
	assert.Equal(t, available, rec.Price)
}

func TestTodayIsBookable(t *testing.T) {
	r := newTestResolver(nil, nil, nil)

	rec, err := r.Resolve(context.Background(), testToday)
	require.NoError(t, err)
	assert.True(t, rec.Available)
}

func TestActiveBookingBlocksDate(t *testing.T) {
	bookings := &fakeBookingSource{booked: map[string]bool{
		models.FormatDate(saturday): true,
	}}
	r := newTestResolver(nil, nil, bookings)

	recs, err := r.ResolveMany(context.Background(), []time.Time{saturday, sunday})
	require.NoError(t, err)
	assert.False(t, recs[0].Available)
	assert.True(t, recs[1].Available)
	assert.Equal(t, int64(5000), recs[0].Price, "a held date still shows its price")
}

func TestResolveManyIsOneQueryPerSource(t *testing.T) {
	overrides := &fakeOverrideRepo{}
	bookings := &fakeBookingSource{}
	r := newTestResolver(nil, overrides, bookings)

	dates := make([]time.Time, 0, 31)
	for i := 0; i < 31; i++ {
		dates = append(dates, testToday.AddDate(0, 0, i))
	}
	recs, err := r.ResolveMany(context.Background(), dates)
	require.NoError(t, err)
	require.Len(t, recs, len(dates))

	assert.Equal(t, 1, overrides.queries)
	assert.Equal(t, 1, bookings.queries)
	for i, rec := range recs {
		assert.Equal(t, models.FormatDate(dates[i]), models.FormatDate(rec.Date), "output order follows input order")
	}
}

func TestResolveNormalizesTimestamps(t *testing.T) {
	overrides := &fakeOverrideRepo{overrides: map[string]models.DateOverride{
		models.FormatDate(saturday): {Date: saturday, IsAvailable: false},
	}}
	r := newTestResolver(nil, overrides, nil)

	// Mid-afternoon local timestamp for the same calendar day.
	noisy := time.Date(2025, 8, 2, 15, 42, 7, 0, time.UTC)
	rec, err := r.Resolve(context.Background(), noisy)
	require.NoError(t, err)
	assert.False(t, rec.Available, "timestamp noise must not dodge the override")
	assert.Equal(t, "2025-08-02", models.FormatDate(rec.Date))
}

func TestSeasonRuleBoundsAreInclusive(t *testing.T) {
	start, end := saturday, sunday
	rules := []models.PricingRule{{
		ID: "fair", Type: models.RuleTypeSeason, Price: 8000, StartDate: &start, EndDate: &end, IsActive: true,
	}}
	r := newTestResolver(rules, nil, nil)

	recs, err := r.ResolveMany(context.Background(), []time.Time{friday, saturday, sunday, sunday.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), recs[0].Price)
	assert.Equal(t, int64(8000), recs[1].Price)
	assert.Equal(t, int64(8000), recs[2].Price)
	assert.Equal(t, int64(5000), recs[3].Price)
}

func TestResolveIsDeterministic(t *testing.T) {
	rules := []models.PricingRule{{
		ID: "weekend", Type: models.RuleTypeWeekend, Price: 7000, DaysOfWeek: []int{0, 6}, IsActive: true,
	}}
	r := newTestResolver(rules, nil, nil)

	first, err := r.ResolveMany(context.Background(), []time.Time{friday, saturday})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.ResolveMany(context.Background(), []time.Time{friday, saturday})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
