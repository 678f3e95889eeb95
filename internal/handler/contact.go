package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// ContactStore persists contact form submissions.
type ContactStore interface {
	Create(ctx context.Context, sub *model.ContactSubmission) error
}

// ContactMailer forwards a submission to the staff inbox.
type ContactMailer interface {
	SendContactNotification(sub model.ContactSubmission) error
}

// ContactHandler serves the contact form.  The database row is the durable
// copy; the staff email is best effort.
type ContactHandler struct {
	store  ContactStore
	mailer ContactMailer
	logger *zap.Logger
}

// NewContactHandler constructs a ContactHandler.  mailer may be nil when no
// SMTP account is configured.
func NewContactHandler(store ContactStore, mailer ContactMailer, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{store: store, mailer: mailer, logger: logger}
}

// Submit handles POST /v1/contact.
func (h *ContactHandler) Submit(c echo.Context) error {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body."})
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(body.Email)
	body.Message = strings.TrimSpace(body.Message)
	if body.Name == "" || body.Email == "" || body.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Name, email and message are required."})
	}

	sub := model.ContactSubmission{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   strings.TrimSpace(body.Phone),
		Message: body.Message,
	}
	if err := h.store.Create(c.Request().Context(), &sub); err != nil {
		h.logger.Error("handler: saving contact submission failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong. Please try again."})
	}

	if h.mailer != nil {
		if err := h.mailer.SendContactNotification(sub); err != nil {
			h.logger.Warn("handler: contact notification email failed", zap.Error(err))
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Thanks for getting in touch. We'll reply as soon as we can."})
}
