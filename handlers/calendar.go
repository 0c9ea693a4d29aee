package handlers

import (
	"fmt"
	"net/http"
	"time"

	"venuebook/models"
	"venuebook/services/pricing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxBatchDates bounds a single resolution request; a year-long visible
// range is the largest thing the UI ever asks for.
const maxBatchDates = 366

// CalendarHandler serves batch availability resolution for viewers.
type CalendarHandler struct {
	Resolver *pricing.Resolver
	Logger   *zap.Logger
}

func NewCalendarHandler(resolver *pricing.Resolver, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{Resolver: resolver, Logger: logger}
}

// ResolveDates resolves a batch of dates in one call. The whole visible
// month arrives as a single request so the resolver can answer with one
// rule fetch plus one override and one booking query.
func (h *CalendarHandler) ResolveDates(c *gin.Context) {
	var input struct {
		Dates []string `json:"dates" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if len(input.Dates) > maxBatchDates {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("too many dates (max %d)", maxBatchDates)})
		return
	}

	dates := make([]time.Time, 0, len(input.Dates))
	for _, s := range input.Dates {
		d, err := models.ParseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s)})
			return
		}
		dates = append(dates, d)
	}

	records, err := h.Resolver.ResolveMany(c.Request.Context(), dates)
	if err != nil {
		h.Logger.Error("batch resolution failed", zap.Int("dates", len(dates)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve availability"})
		return
	}

	resp := make([]gin.H, len(records))
	for i, rec := range records {
		resp[i] = gin.H{
			"date":      models.FormatDate(rec.Date),
			"available": rec.Available,
			"price":     rec.Price,
		}
	}
	c.JSON(http.StatusOK, resp)
}
