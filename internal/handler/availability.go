package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rutlandfarmpark/booking-api/internal/availability"
)

// AvailabilityChecker reports whether a visit date can be booked.
type AvailabilityChecker interface {
	Check(ctx context.Context, date time.Time) availability.Result
}

// AvailabilityHandler serves capacity checks for the booking widget.
type AvailabilityHandler struct {
	checker AvailabilityChecker
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(checker AvailabilityChecker) *AvailabilityHandler {
	return &AvailabilityHandler{checker: checker}
}

type availabilityResponse struct {
	Available bool   `json:"available"`
	Remaining *int   `json:"remaining,omitempty"`
	Capacity  *int   `json:"capacity,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Check handles POST /v1/availability.  The body carries a date in
// YYYY-MM-DD form; the response reports availability, remaining capacity
// when it was counted, and a human-readable reason when unavailable.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	var body struct {
		Date string `json:"date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body."})
	}
	if body.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Date is required."})
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid date format. Use YYYY-MM-DD."})
	}

	res := h.checker.Check(c.Request().Context(), date)
	resp := availabilityResponse{Available: res.Available, Reason: res.Reason}
	if res.Counted {
		resp.Remaining = &res.Remaining
		resp.Capacity = &res.Capacity
	}
	return c.JSON(http.StatusOK, resp)
}
