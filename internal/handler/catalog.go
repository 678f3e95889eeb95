package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// TicketCatalog lists the active admission ticket types.
type TicketCatalog interface {
	ListActive(ctx context.Context) ([]model.TicketType, error)
}

// CatalogHandler serves the public ticket type listing the booking widget
// renders its price table from.
type CatalogHandler struct {
	tickets TicketCatalog
	logger  *zap.Logger
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(tickets TicketCatalog, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{tickets: tickets, logger: logger}
}

type ticketTypeView struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	WeekdayPrice  int64  `json:"weekday_price"`
	WeekendPrice  int64  `json:"weekend_price"`
	MaxPerBooking int    `json:"max_per_booking"`
}

// List handles GET /v1/ticket-types.  Only active types are returned, in
// display order.
func (h *CatalogHandler) List(c echo.Context) error {
	types, err := h.tickets.ListActive(c.Request().Context())
	if err != nil {
		h.logger.Error("handler: listing ticket types failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong. Please try again."})
	}
	out := make([]ticketTypeView, 0, len(types))
	for _, t := range types {
		out = append(out, ticketTypeView{
			ID:            t.ID,
			Name:          t.Name,
			Description:   t.Description,
			WeekdayPrice:  t.WeekdayPrice,
			WeekendPrice:  t.WeekendPrice,
			MaxPerBooking: t.MaxPerBooking,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket_types": out})
}
