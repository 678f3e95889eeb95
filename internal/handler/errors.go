package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/pricing"
	"github.com/rutlandfarmpark/booking-api/internal/service"
)

// respondCheckoutError maps checkout failures onto HTTP responses.  Business
// rejections carry their reason to the customer with a 400; infrastructure
// failures are logged in full and answered with a generic message so no
// internal detail leaks.
func respondCheckoutError(c echo.Context, logger *zap.Logger, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Reason})
	}
	if errors.Is(err, service.ErrPastDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot book a date in the past."})
	}
	if errors.Is(err, service.ErrClosedDay) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "The farm is closed on this date."})
	}
	if errors.Is(err, pricing.ErrEmptySelection) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Select at least one ticket."})
	}
	var unknown *pricing.UnknownTicketTypeError
	if errors.As(err, &unknown) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": unknown.Error()})
	}
	var limit *pricing.QuantityLimitError
	if errors.As(err, &limit) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": limit.Error()})
	}

	var serr *service.PaymentSessionError
	if errors.As(err, &serr) {
		logger.Error("handler: payment session creation failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Payment service is unavailable. Please try again."})
	}
	var perr *service.PersistenceError
	if errors.As(err, &perr) {
		logger.Error("handler: checkout persistence failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong. Please try again."})
	}

	logger.Error("handler: unexpected checkout failure", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong. Please try again."})
}
