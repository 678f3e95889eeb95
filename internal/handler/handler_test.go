package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/availability"
	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/payment"
	"github.com/rutlandfarmpark/booking-api/internal/repository"
	"github.com/rutlandfarmpark/booking-api/internal/service"
)

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

type stubChecker struct {
	res availability.Result
}

func (s *stubChecker) Check(ctx context.Context, date time.Time) availability.Result {
	return s.res
}

func TestAvailabilityCheck(t *testing.T) {
	h := NewAvailabilityHandler(&stubChecker{res: availability.Result{
		Available: true, Remaining: 89, Capacity: 100, Counted: true,
	}})

	rec := doJSON(t, h.Check, http.MethodPost, "/v1/availability", `{"date":"2026-08-01"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":true,"remaining":89,"capacity":100}`, rec.Body.String())
}

func TestAvailabilityCheckUncountedOmitsCapacity(t *testing.T) {
	h := NewAvailabilityHandler(&stubChecker{res: availability.Result{
		Available: false, Reason: "The farm is closed on this date.",
	}})

	rec := doJSON(t, h.Check, http.MethodPost, "/v1/availability", `{"date":"2026-03-23"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":false,"reason":"The farm is closed on this date."}`, rec.Body.String())
}

func TestAvailabilityCheckBadInput(t *testing.T) {
	h := NewAvailabilityHandler(&stubChecker{})

	rec := doJSON(t, h.Check, http.MethodPost, "/v1/availability", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.Check, http.MethodPost, "/v1/availability", `{"date":"01/08/2026"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubBookingCheckout struct {
	res service.CheckoutResult
	err error
	req service.BookingRequest
}

func (s *stubBookingCheckout) InitiateBooking(ctx context.Context, req service.BookingRequest) (service.CheckoutResult, error) {
	s.req = req
	return s.res, s.err
}

type stubBookingReader struct {
	booking *model.Booking
	err     error
}

func (s *stubBookingReader) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	return s.booking, s.err
}

const checkoutBody = `{
	"date": "2026-08-04",
	"tickets": [{"ticket_type_id": 1, "quantity": 2}],
	"customer_name": "Jo Bloggs",
	"customer_email": "jo@example.org"
}`

func TestBookingCheckoutSuccess(t *testing.T) {
	stub := &stubBookingCheckout{res: service.CheckoutResult{
		SessionID: "cs_test_123",
		URL:       "https://checkout.example/cs_test_123",
		Reference: "RFP-260804-AB12",
	}}
	h := NewBookingHandler(stub, &stubBookingReader{}, zap.NewNop())

	rec := doJSON(t, h.Checkout, http.MethodPost, "/v1/bookings/checkout", checkoutBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"checkout_url": "https://checkout.example/cs_test_123",
		"session_id": "cs_test_123",
		"reference": "RFP-260804-AB12"
	}`, rec.Body.String())

	assert.Equal(t, "Jo Bloggs", stub.req.CustomerName)
	require.Len(t, stub.req.Tickets, 1)
	assert.Equal(t, uint64(1), stub.req.Tickets[0].TicketTypeID)
	assert.Equal(t, time.Date(2026, time.August, 4, 0, 0, 0, 0, time.UTC), stub.req.Date)
}

func TestBookingCheckoutErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &service.ValidationError{Reason: "Missing required fields."}, http.StatusBadRequest},
		{"past date", service.ErrPastDate, http.StatusBadRequest},
		{"closed day", service.ErrClosedDay, http.StatusBadRequest},
		{"persistence", &service.PersistenceError{Err: errors.New("connection refused")}, http.StatusInternalServerError},
		{"payment session", &service.PaymentSessionError{Err: errors.New("stripe down")}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBookingHandler(&stubBookingCheckout{err: tc.err}, &stubBookingReader{}, zap.NewNop())
			rec := doJSON(t, h.Checkout, http.MethodPost, "/v1/bookings/checkout", checkoutBody)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestBookingCheckoutHidesInternalDetail(t *testing.T) {
	h := NewBookingHandler(&stubBookingCheckout{
		err: &service.PersistenceError{Err: errors.New("dial tcp 10.0.0.5:3306")},
	}, &stubBookingReader{}, zap.NewNop())

	rec := doJSON(t, h.Checkout, http.MethodPost, "/v1/bookings/checkout", checkoutBody)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestBookingLookup(t *testing.T) {
	reader := &stubBookingReader{booking: &model.Booking{
		Reference:             "RFP-260804-AB12",
		Date:                  time.Date(2026, time.August, 4, 0, 0, 0, 0, time.UTC),
		Status:                model.BookingConfirmed,
		TotalAmount:           2800,
		CustomerEmail:         "jo@example.org",
		StripePaymentIntentID: "pi_secret",
		Tickets: []model.BookingTicket{
			{TicketName: "Adult", Quantity: 2, UnitPrice: 1400},
		},
	}}
	h := NewBookingHandler(&stubBookingCheckout{}, reader, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/RFP-260804-AB12", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("reference")
	c.SetParamValues("RFP-260804-AB12")
	require.NoError(t, h.Lookup(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"reference":"RFP-260804-AB12"`)
	assert.Contains(t, body, `"date":"2026-08-04"`)
	assert.NotContains(t, body, "pi_secret", "payment identifiers stay private")
	assert.NotContains(t, body, "jo@example.org", "contact details stay private")
}

func TestBookingLookupNotFound(t *testing.T) {
	h := NewBookingHandler(&stubBookingCheckout{}, &stubBookingReader{err: repository.ErrBookingNotFound}, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/RFP-NOPE", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("reference")
	c.SetParamValues("RFP-NOPE")
	require.NoError(t, h.Lookup(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubShopCheckout struct {
	res service.ShopCheckoutResult
	err error
}

func (s *stubShopCheckout) InitiateShopOrder(ctx context.Context, req service.ShopOrderRequest) (service.ShopCheckoutResult, error) {
	return s.res, s.err
}

func TestShopCheckout(t *testing.T) {
	h := NewShopHandler(&stubShopCheckout{res: service.ShopCheckoutResult{
		URL:       "https://checkout.example/cs_test_456",
		Reference: "RFP-S260804-CD34",
	}}, zap.NewNop())

	rec := doJSON(t, h.Checkout, http.MethodPost, "/v1/shop/checkout", `{
		"items": [{"type": "product", "name": "Farm Honey", "quantity": 1, "price": 650}],
		"customer_name": "Jo Bloggs",
		"customer_email": "jo@example.org"
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"checkout_url": "https://checkout.example/cs_test_456",
		"reference": "RFP-S260804-CD34"
	}`, rec.Body.String())
}

type stubVerifier struct {
	ev  payment.Event
	err error
}

func (s *stubVerifier) VerifyWebhook(payload []byte, signature string) (payment.Event, error) {
	return s.ev, s.err
}

type stubProcessor struct {
	events []payment.Event
}

func (s *stubProcessor) Process(ctx context.Context, ev payment.Event) {
	s.events = append(s.events, ev)
}

func TestWebhookMissingSignature(t *testing.T) {
	proc := &stubProcessor{}
	h := NewWebhookHandler(&stubVerifier{}, proc, zap.NewNop())

	rec := doJSON(t, h.Receive, http.MethodPost, "/v1/webhooks/stripe", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, proc.events)
}

func TestWebhookInvalidSignature(t *testing.T) {
	proc := &stubProcessor{}
	h := NewWebhookHandler(&stubVerifier{err: errors.New("signature mismatch")}, proc, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	rec := httptest.NewRecorder()
	require.NoError(t, h.Receive(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, proc.events)
}

func TestWebhookVerifiedEventIsProcessedAndAcked(t *testing.T) {
	proc := &stubProcessor{}
	h := NewWebhookHandler(&stubVerifier{ev: payment.Event{
		Type:     payment.EventCheckoutCompleted,
		Metadata: map[string]string{payment.MetaBookingID: "1"},
	}}, proc, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=ok")
	rec := httptest.NewRecorder()
	require.NoError(t, h.Receive(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	require.Len(t, proc.events, 1)
	assert.Equal(t, payment.EventCheckoutCompleted, proc.events[0].Type)
}

type stubCatalog struct {
	types []model.TicketType
	err   error
}

func (s *stubCatalog) ListActive(ctx context.Context) ([]model.TicketType, error) {
	return s.types, s.err
}

func TestCatalogList(t *testing.T) {
	h := NewCatalogHandler(&stubCatalog{types: []model.TicketType{
		{ID: 1, Name: "Adult", WeekdayPrice: 1000, WeekendPrice: 1400, MaxPerBooking: 10},
	}}, zap.NewNop())

	rec := doJSON(t, h.List, http.MethodGet, "/v1/ticket-types", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"weekend_price":1400`)
}

func TestCatalogListStoreFailure(t *testing.T) {
	h := NewCatalogHandler(&stubCatalog{err: errors.New("connection refused")}, zap.NewNop())

	rec := doJSON(t, h.List, http.MethodGet, "/v1/ticket-types", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type stubContactStore struct {
	subs []model.ContactSubmission
	err  error
}

func (s *stubContactStore) Create(ctx context.Context, sub *model.ContactSubmission) error {
	if s.err != nil {
		return s.err
	}
	sub.ID = uint64(len(s.subs) + 1)
	s.subs = append(s.subs, *sub)
	return nil
}

type stubContactMailer struct {
	sent []model.ContactSubmission
	err  error
}

func (s *stubContactMailer) SendContactNotification(sub model.ContactSubmission) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sub)
	return nil
}

func TestContactSubmit(t *testing.T) {
	store := &stubContactStore{}
	mailer := &stubContactMailer{}
	h := NewContactHandler(store, mailer, zap.NewNop())

	rec := doJSON(t, h.Submit, http.MethodPost, "/v1/contact", `{
		"name": "Jo Bloggs",
		"email": "jo@example.org",
		"message": "What time do the goat feeds run?"
	}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.subs, 1)
	require.Len(t, mailer.sent, 1)
}

func TestContactSubmitValidation(t *testing.T) {
	h := NewContactHandler(&stubContactStore{}, &stubContactMailer{}, zap.NewNop())

	rec := doJSON(t, h.Submit, http.MethodPost, "/v1/contact", `{"name": "Jo"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactSubmitMailFailureStillAccepted(t *testing.T) {
	store := &stubContactStore{}
	h := NewContactHandler(store, &stubContactMailer{err: errors.New("smtp timeout")}, zap.NewNop())

	rec := doJSON(t, h.Submit, http.MethodPost, "/v1/contact", `{
		"name": "Jo Bloggs",
		"email": "jo@example.org",
		"message": "Hello"
	}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, store.subs, 1, "the row is the durable copy")
}
