package handlers

import (
	"errors"
	"net/http"
	"time"

	"venuebook/database/repository"
	"venuebook/models"
	"venuebook/services/booking"
	"venuebook/services/pricing"
	"venuebook/services/propagation"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminHandler serves the admin mutation surface: rules, overrides, and
// booking management. These are the writes that invalidate the rule cache
// and fire change propagation.
type AdminHandler struct {
	Rules     repository.RuleRepository
	Overrides repository.OverrideRepository
	Bookings  booking.Service
	Cache     *pricing.RuleCache
	Resolver  *pricing.Resolver
	Publisher propagation.Publisher
	Logger    *zap.Logger
}

func NewAdminHandler(
	rules repository.RuleRepository,
	overrides repository.OverrideRepository,
	bookings booking.Service,
	cache *pricing.RuleCache,
	resolver *pricing.Resolver,
	publisher propagation.Publisher,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		Rules:     rules,
		Overrides: overrides,
		Bookings:  bookings,
		Cache:     cache,
		Resolver:  resolver,
		Publisher: publisher,
		Logger:    logger,
	}
}

type ruleInput struct {
	Name       string  `json:"name" validate:"required"`
	Type       string  `json:"type" validate:"required,oneof=weekday weekend season holiday"`
	Price      int64   `json:"price" validate:"required,gt=0"`
	DaysOfWeek []int   `json:"daysOfWeek" validate:"dive,min=0,max=6"`
	StartDate  *string `json:"startDate"`
	EndDate    *string `json:"endDate"`
	Priority   int     `json:"priority"`
	IsActive   *bool   `json:"isActive"`
}

func (in *ruleInput) apply(rule *models.PricingRule) error {
	rule.Name = in.Name
	rule.Type = models.RuleType(in.Type)
	rule.Price = in.Price
	rule.DaysOfWeek = in.DaysOfWeek
	rule.Priority = in.Priority
	rule.IsActive = true
	if in.IsActive != nil {
		rule.IsActive = *in.IsActive
	}
	rule.StartDate = nil
	rule.EndDate = nil
	if in.StartDate != nil {
		d, err := models.ParseDate(*in.StartDate)
		if err != nil {
			return err
		}
		rule.StartDate = &d
	}
	if in.EndDate != nil {
		d, err := models.ParseDate(*in.EndDate)
		if err != nil {
			return err
		}
		rule.EndDate = &d
	}
	return nil
}

// ListRules returns all rules, active or not, in evaluation order.
func (h *AdminHandler) ListRules(c *gin.Context) {
	rules, err := h.Rules.List(c.Request.Context())
	if err != nil {
		h.Logger.Error("failed to list rules", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (h *AdminHandler) CreateRule(c *gin.Context) {
	var input ruleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := utils.GetValidator().Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule", "details": err.Error()})
		return
	}

	rule := models.PricingRule{ID: uuid.New().String()}
	if err := input.apply(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	if err := h.Rules.Create(c.Request.Context(), &rule); err != nil {
		h.Logger.Error("failed to create rule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create rule"})
		return
	}

	h.rulesChanged(c)
	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

func (h *AdminHandler) UpdateRule(c *gin.Context) {
	id := c.Param("id")
	rule, err := h.Rules.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Logger.Error("failed to fetch rule", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch rule"})
		return
	}
	if rule == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	var input ruleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := utils.GetValidator().Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule", "details": err.Error()})
		return
	}
	if err := input.apply(rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	if err := h.Rules.Update(c.Request.Context(), rule); err != nil {
		h.Logger.Error("failed to update rule", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update rule"})
		return
	}

	h.rulesChanged(c)
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

func (h *AdminHandler) DeleteRule(c *gin.Context) {
	id := c.Param("id")
	if err := h.Rules.Delete(c.Request.Context(), id); err != nil {
		h.Logger.Error("failed to delete rule", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete rule"})
		return
	}
	h.rulesChanged(c)
	c.Status(http.StatusNoContent)
}

// rulesChanged makes the next resolution see the mutation immediately and
// tells viewers to re-pull. A rule touches an unbounded set of dates, so
// the event carries no date.
func (h *AdminHandler) rulesChanged(c *gin.Context) {
	h.Cache.Invalidate()
	if err := h.Publisher.PublishAvailability(c.Request.Context(), models.AvailabilityEvent{
		RulesChanged: true,
	}); err != nil {
		h.Logger.Warn("rules-changed broadcast failed", zap.Error(err))
	}
}

// UpsertOverride pins a date's price and/or availability. An absent
// isAvailable means the date stays bookable; an override may exist
// purely to pin a price.
func (h *AdminHandler) UpsertOverride(c *gin.Context) {
	var input struct {
		Date        string `json:"date" binding:"required"`
		Price       *int64 `json:"price"`
		IsAvailable *bool  `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	date, err := models.ParseDate(input.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	if input.Price != nil && *input.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}

	override := models.DateOverride{
		ID:          uuid.New().String(),
		Date:        date,
		Price:       input.Price,
		IsAvailable: true,
	}
	if input.IsAvailable != nil {
		override.IsAvailable = *input.IsAvailable
	}
	if err := h.Overrides.Upsert(c.Request.Context(), &override); err != nil {
		h.Logger.Error("failed to upsert override", zap.String("date", input.Date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save override"})
		return
	}

	// On conflict the store keeps the existing row's ID and CreatedAt,
	// so read the row back instead of echoing the input.
	stored, err := h.Overrides.GetByDate(c.Request.Context(), date)
	if err != nil {
		h.Logger.Error("failed to reload override", zap.String("date", input.Date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save override"})
		return
	}
	if stored == nil {
		stored = &override
	}

	h.announceDate(c, date)
	c.JSON(http.StatusOK, gin.H{"override": stored})
}

// ListOverrides returns overrides in a date range.
func (h *AdminHandler) ListOverrides(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}
	overrides, err := h.Overrides.ListRange(c.Request.Context(), from, to)
	if err != nil {
		h.Logger.Error("failed to list overrides", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list overrides"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

// DeleteOverride removes a date's pin, returning it to rule pricing.
func (h *AdminHandler) DeleteOverride(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	if err := h.Overrides.Delete(c.Request.Context(), date); err != nil {
		h.Logger.Error("failed to delete override", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete override"})
		return
	}
	h.announceDate(c, date)
	c.Status(http.StatusNoContent)
}

// ListBookings returns bookings in a date range.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}
	bookings, err := h.Bookings.ListRange(c.Request.Context(), from, to)
	if err != nil {
		h.Logger.Error("failed to list bookings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ConfirmBooking settles a pending booking manually, for payments taken
// outside the gateway.
func (h *AdminHandler) ConfirmBooking(c *gin.Context) {
	id := c.Param("id")
	if err := h.Bookings.Confirm(c.Request.Context(), id); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.Logger.Error("failed to confirm booking", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": id})
}

// CancelBooking is the explicit admin cancellation, freeing the date.
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	id := c.Param("id")
	if err := h.Bookings.Cancel(c.Request.Context(), id); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.Logger.Error("failed to cancel booking", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": id})
}

// announceDate broadcasts a date's freshly-resolved state after an
// override mutation.
func (h *AdminHandler) announceDate(c *gin.Context, date time.Time) {
	record, err := h.Resolver.Resolve(c.Request.Context(), date)
	if err != nil {
		h.Logger.Warn("failed to re-resolve date for propagation",
			zap.String("date", models.FormatDate(date)), zap.Error(err))
		return
	}
	if err := h.Publisher.PublishAvailability(c.Request.Context(), models.AvailabilityEvent{
		Date:        models.FormatDate(record.Date),
		Price:       record.Price,
		IsAvailable: record.Available,
	}); err != nil {
		h.Logger.Warn("availability broadcast failed", zap.Error(err))
	}
}

// parseRange reads optional from/to query params, defaulting to the next
// 90 days.
func (h *AdminHandler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := models.NormalizeDate(time.Now())
	from, to := now, now.AddDate(0, 0, 90)

	if s := c.Query("from"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return from, to, false
		}
		from = d
	}
	if s := c.Query("to"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return from, to, false
		}
		to = d
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to precedes from"})
		return from, to, false
	}
	return from, to, true
}
