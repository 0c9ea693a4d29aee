package handlers

import (
	"errors"
	"net/http"

	"venuebook/models"
	"venuebook/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the customer checkout write path.
type BookingHandler struct {
	Service booking.Service
	Logger  *zap.Logger
}

func NewBookingHandler(service booking.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// CreateBooking books a date for a customer. A lost race or a blocked
// date comes back as 400 date_unavailable; the client must re-resolve
// rather than retry.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input struct {
		Date          string `json:"date" binding:"required"`
		CustomerName  string `json:"customerName" binding:"required"`
		CustomerEmail string `json:"customerEmail" binding:"required,email"`
		CustomerPhone string `json:"customerPhone"`
		Notes         string `json:"notes"`
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

	created, err := h.Service.Create(c.Request.Context(), booking.CreateInput{
		Date:          date,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Notes:         input.Notes,
	})
	if err != nil {
		if errors.Is(err, booking.ErrDateUnavailable) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "date_unavailable",
				"message": "this date was just taken",
			})
			return
		}
		h.Logger.Error("booking creation failed", zap.String("date", input.Date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": created})
}

// GetBooking returns a single booking by id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	b, err := h.Service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Logger.Error("booking lookup failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking"})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
