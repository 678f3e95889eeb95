package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/payment"
)

// WebhookVerifier checks a raw webhook payload against its signature.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (payment.Event, error)
}

// EventProcessor applies a verified payment event.
type EventProcessor interface {
	Process(ctx context.Context, ev payment.Event)
}

// WebhookHandler receives payment provider webhooks.  Anything past
// signature verification answers 200: the event is ours to deal with, and a
// non-2xx would make the provider redeliver an event we have already
// accepted.
type WebhookHandler struct {
	verifier  WebhookVerifier
	processor EventProcessor
	logger    *zap.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(verifier WebhookVerifier, processor EventProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, processor: processor, logger: logger}
}

// Receive handles POST /v1/webhooks/stripe.  Unsigned or badly signed
// payloads are rejected with 400; verified events are processed and always
// acknowledged.
func (h *WebhookHandler) Receive(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable payload"})
	}
	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing signature"})
	}

	ev, err := h.verifier.VerifyWebhook(payload, signature)
	if err != nil {
		h.logger.Warn("webhook: signature verification failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	h.processor.Process(c.Request().Context(), ev)
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
