package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"venuebook/models"
	"venuebook/services/pricing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memOverrideRepo models the store's upsert: a conflicting date keeps the
// existing row's identity and only replaces price and availability.
type memOverrideRepo struct {
	byDate map[string]models.DateOverride
}

func newMemOverrideRepo() *memOverrideRepo {
	return &memOverrideRepo{byDate: make(map[string]models.DateOverride)}
}

func (m *memOverrideRepo) GetByDate(ctx context.Context, date time.Time) (*models.DateOverride, error) {
	if ov, ok := m.byDate[models.FormatDate(date)]; ok {
		return &ov, nil
	}
	return nil, nil
}

func (m *memOverrideRepo) GetByDates(ctx context.Context, dates []time.Time) ([]models.DateOverride, error) {
	var out []models.DateOverride
	for _, d := range dates {
		if ov, ok := m.byDate[models.FormatDate(d)]; ok {
			out = append(out, ov)
		}
	}
	return out, nil
}

func (m *memOverrideRepo) ListRange(ctx context.Context, from, to time.Time) ([]models.DateOverride, error) {
	return nil, nil
}

func (m *memOverrideRepo) Upsert(ctx context.Context, override *models.DateOverride) error {
	key := models.FormatDate(override.Date)
	if existing, ok := m.byDate[key]; ok {
		existing.Price = override.Price
		existing.IsAvailable = override.IsAvailable
		m.byDate[key] = existing
		return nil
	}
	m.byDate[key] = *override
	return nil
}

func (m *memOverrideRepo) Delete(ctx context.Context, date time.Time) error {
	delete(m.byDate, models.FormatDate(date))
	return nil
}

type stubRuleRepo struct {
	byID map[string]*models.PricingRule
}

func (s *stubRuleRepo) ListActive(ctx context.Context) ([]models.PricingRule, error) {
	return nil, nil
}
func (s *stubRuleRepo) List(ctx context.Context) ([]models.PricingRule, error) { return nil, nil }
func (s *stubRuleRepo) GetByID(ctx context.Context, id string) (*models.PricingRule, error) {
	return s.byID[id], nil
}
func (s *stubRuleRepo) Create(ctx context.Context, rule *models.PricingRule) error {
	if s.byID == nil {
		s.byID = make(map[string]*models.PricingRule)
	}
	s.byID[rule.ID] = rule
	return nil
}
func (s *stubRuleRepo) Update(ctx context.Context, rule *models.PricingRule) error { return nil }
func (s *stubRuleRepo) Delete(ctx context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

type recordPublisher struct {
	mu     sync.Mutex
	events []models.AvailabilityEvent
}

func (p *recordPublisher) PublishAvailability(ctx context.Context, ev models.AvailabilityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordPublisher) all() []models.AvailabilityEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.AvailabilityEvent(nil), p.events...)
}

func newAdminFixture(t *testing.T) (*gin.Engine, *memOverrideRepo, *recordPublisher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	overrides := newMemOverrideRepo()
	pub := &recordPublisher{}
	cache := pricing.NewRuleCache(func(ctx context.Context) ([]models.PricingRule, error) {
		return nil, nil
	}, 30*time.Second, nil)
	resolver := &pricing.Resolver{
		Rules:        cache,
		Overrides:    overrides,
		Bookings:     emptyBookingRepo{},
		DefaultPrice: 5000,
		Now: func() time.Time {
			return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		},
	}
	h := NewAdminHandler(&stubRuleRepo{}, overrides, &stubBookingService{}, cache, resolver, pub, zap.NewNop())

	r := gin.New()
	r.POST("/api/admin/rules", h.CreateRule)
	r.PUT("/api/admin/overrides", h.UpsertOverride)
	return r, overrides, pub
}

func putJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpsertOverrideEchoesStoredRow(t *testing.T) {
	r, overrides, _ := newAdminFixture(t)

	existing := models.DateOverride{
		ID:          "orig-id",
		Date:        time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
		IsAvailable: true,
	}
	require.NoError(t, overrides.Upsert(context.Background(), &existing))

	w := putJSON(t, r, "/api/admin/overrides", gin.H{
		"date":  "2025-08-02",
		"price": 8000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Override models.DateOverride `json:"override"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "orig-id", resp.Override.ID, "the conflict path keeps the stored identity")
	require.NotNil(t, resp.Override.Price)
	assert.Equal(t, int64(8000), *resp.Override.Price)
}

func TestUpsertOverridePublishesResolvedDate(t *testing.T) {
	r, _, pub := newAdminFixture(t)

	w := putJSON(t, r, "/api/admin/overrides", gin.H{
		"date":        "2025-08-02",
		"isAvailable": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, "2025-08-02", events[0].Date)
	assert.False(t, events[0].IsAvailable)
}

func TestCreateRulePublishesRulesChanged(t *testing.T) {
	r, _, pub := newAdminFixture(t)

	w := postJSON(t, r, "/api/admin/rules", gin.H{
		"name":       "weekend uplift",
		"type":       "weekend",
		"price":      7000,
		"daysOfWeek": []int{0, 6},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	events := pub.all()
	require.Len(t, events, 1)
	assert.True(t, events[0].RulesChanged)
	assert.Empty(t, events[0].Date, "a rule touches an unbounded date set, so the event is dateless")
}
