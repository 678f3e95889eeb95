package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/pricing"
	"github.com/rutlandfarmpark/booking-api/internal/repository"
	"github.com/rutlandfarmpark/booking-api/internal/service"
)

// BookingCheckout starts a hosted payment session for an admission booking.
type BookingCheckout interface {
	InitiateBooking(ctx context.Context, req service.BookingRequest) (service.CheckoutResult, error)
}

// BookingReader looks up a booking by its customer-facing reference.
type BookingReader interface {
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
}

// BookingHandler serves the admission booking endpoints.
type BookingHandler struct {
	checkout BookingCheckout
	bookings BookingReader
	logger   *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(checkout BookingCheckout, bookings BookingReader, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{checkout: checkout, bookings: bookings, logger: logger}
}

type bookingCheckoutRequest struct {
	Date    string `json:"date"`
	Tickets []struct {
		TicketTypeID uint64 `json:"ticket_type_id"`
		Quantity     int    `json:"quantity"`
	} `json:"tickets"`
	CustomerName        string `json:"customer_name"`
	CustomerEmail       string `json:"customer_email"`
	CustomerPhone       string `json:"customer_phone"`
	SpecialRequirements string `json:"special_requirements"`
}

// Checkout handles POST /v1/bookings/checkout.  It validates and prices the
// request, persists a pending booking and returns the hosted payment page
// URL the customer should be redirected to.
func (h *BookingHandler) Checkout(c echo.Context) error {
	var body bookingCheckoutRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body."})
	}

	var date time.Time
	if body.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", body.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid date format. Use YYYY-MM-DD."})
		}
	}
	selections := make([]pricing.Selection, 0, len(body.Tickets))
	for _, t := range body.Tickets {
		selections = append(selections, pricing.Selection{TicketTypeID: t.TicketTypeID, Quantity: t.Quantity})
	}

	res, err := h.checkout.InitiateBooking(c.Request().Context(), service.BookingRequest{
		Date:                date,
		Tickets:             selections,
		CustomerName:        body.CustomerName,
		CustomerEmail:       body.CustomerEmail,
		CustomerPhone:       body.CustomerPhone,
		SpecialRequirements: body.SpecialRequirements,
	})
	if err != nil {
		return respondCheckoutError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"checkout_url": res.URL,
		"session_id":   res.SessionID,
		"reference":    res.Reference,
	})
}

type bookingTicketView struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Lookup handles GET /v1/bookings/:reference.  It returns the safe subset a
// customer needs to review their booking; payment identifiers and contact
// details are not exposed.
func (h *BookingHandler) Lookup(c echo.Context) error {
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Reference is required."})
	}
	b, err := h.bookings.GetByReference(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found."})
		}
		h.logger.Error("handler: booking lookup failed", zap.String("reference", ref), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong. Please try again."})
	}

	tickets := make([]bookingTicketView, 0, len(b.Tickets))
	for _, t := range b.Tickets {
		tickets = append(tickets, bookingTicketView{Name: t.TicketName, Quantity: t.Quantity, UnitPrice: t.UnitPrice})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reference":    b.Reference,
		"date":         b.Date.Format("2006-01-02"),
		"status":       b.Status,
		"tickets":      tickets,
		"total_amount": b.TotalAmount,
	})
}
