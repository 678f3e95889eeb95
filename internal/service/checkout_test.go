package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/calendar"
	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/pricing"
	"github.com/rutlandfarmpark/booking-api/internal/reference"
)

type checkoutFixture struct {
	svc       *CheckoutService
	catalog   *fakeCatalog
	bookings  *fakeBookingStore
	orders    *fakeOrderStore
	vouchers  *fakeVoucherStore
	adoptions *fakeAdoptionStore
	provider  *fakeProvider
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		catalog: &fakeCatalog{types: []model.TicketType{
			{ID: 1, Name: "Adult", WeekdayPrice: 1000, WeekendPrice: 1400, MaxPerBooking: 10},
			{ID: 2, Name: "Family", WeekdayPrice: 2800, WeekendPrice: 3600, MaxPerBooking: 3, Occupancy: 4},
		}},
		bookings:  newFakeBookingStore(),
		orders:    newFakeOrderStore(),
		vouchers:  &fakeVoucherStore{},
		adoptions: &fakeAdoptionStore{},
		provider:  &fakeProvider{},
	}
	f.svc = NewCheckoutService(CheckoutDeps{
		Tickets:   f.catalog,
		Bookings:  f.bookings,
		Orders:    f.orders,
		Vouchers:  f.vouchers,
		Adoptions: f.adoptions,
		Settings:  &fakeSettings{values: map[string]int64{}},
		Provider:  f.provider,
		Refs:      reference.NewGenerator("RFP"),
		Calendar:  calendar.New(calendar.UK2026()),
		SiteURL:   "https://example.org",
		SiteName:  "Rutland Farm Park",
		Logger:    zap.NewNop(),
		Now:       fixedNow,
	})
	return f
}

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func validBookingRequest() BookingRequest {
	return BookingRequest{
		Date:          day(time.August, 4), // Tuesday in the summer holidays
		Tickets:       []pricing.Selection{{TicketTypeID: 1, Quantity: 2}},
		CustomerName:  "Jo Bloggs",
		CustomerEmail: "jo@example.org",
	}
}

func TestInitiateBookingSuccess(t *testing.T) {
	f := newCheckoutFixture()

	res, err := f.svc.InitiateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", res.SessionID)
	assert.Equal(t, "https://checkout.example/cs_test_123", res.URL)
	assert.Regexp(t, `^RFP-260318-[A-Z0-9]{4}$`, res.Reference)

	// Pending record persisted with the holiday-rate snapshot.
	b := f.bookings.bookings[1]
	require.NotNil(t, b)
	assert.Equal(t, model.BookingPending, b.Status)
	require.Len(t, b.Tickets, 1)
	assert.Equal(t, int64(1400), b.Tickets[0].UnitPrice, "Tuesday in August prices at the weekend rate")
	assert.Equal(t, int64(2800), b.TotalAmount)

	// Session id attached after creation.
	assert.Equal(t, "cs_test_123", f.bookings.sessions[1])

	// Session carries the metadata reconciliation needs and the redirects.
	require.Len(t, f.provider.requests, 1)
	req := f.provider.requests[0]
	assert.Equal(t, "1", req.Metadata["bookingId"])
	assert.Equal(t, res.Reference, req.Metadata["bookingReference"])
	assert.Equal(t, "https://example.org/booking/confirmation?ref="+res.Reference, req.SuccessURL)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "Adult - Rutland Farm Park", req.Items[0].Name)
	assert.Equal(t, int64(1400), req.Items[0].UnitAmount)
}

func TestInitiateBookingValidation(t *testing.T) {
	f := newCheckoutFixture()

	for name, mutate := range map[string]func(*BookingRequest){
		"missing date":    func(r *BookingRequest) { r.Date = time.Time{} },
		"missing tickets": func(r *BookingRequest) { r.Tickets = nil },
		"missing name":    func(r *BookingRequest) { r.CustomerName = "" },
		"missing email":   func(r *BookingRequest) { r.CustomerEmail = "" },
	} {
		req := validBookingRequest()
		mutate(&req)
		_, err := f.svc.InitiateBooking(context.Background(), req)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, name)
	}
	assert.Empty(t, f.bookings.bookings, "no record created on validation failure")
}

func TestInitiateBookingPastDate(t *testing.T) {
	f := newCheckoutFixture()

	req := validBookingRequest()
	req.Date = day(time.March, 17) // yesterday relative to the fixed clock

	_, err := f.svc.InitiateBooking(context.Background(), req)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Empty(t, f.bookings.bookings)
	assert.Empty(t, f.provider.requests)
}

func TestInitiateBookingSameDayAllowed(t *testing.T) {
	f := newCheckoutFixture()

	req := validBookingRequest()
	req.Date = day(time.March, 18)

	_, err := f.svc.InitiateBooking(context.Background(), req)
	assert.NoError(t, err)
}

func TestInitiateBookingClosedDay(t *testing.T) {
	f := newCheckoutFixture()

	req := validBookingRequest()
	req.Date = day(time.March, 23) // ordinary Monday

	_, err := f.svc.InitiateBooking(context.Background(), req)
	assert.ErrorIs(t, err, ErrClosedDay)
	assert.Empty(t, f.bookings.bookings)
}

func TestInitiateBookingPricingErrorsPropagate(t *testing.T) {
	f := newCheckoutFixture()

	req := validBookingRequest()
	req.Tickets = []pricing.Selection{{TicketTypeID: 2, Quantity: 5}}

	_, err := f.svc.InitiateBooking(context.Background(), req)

	var limit *pricing.QuantityLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "Family", limit.TicketName)
	assert.Equal(t, 3, limit.Limit)
	assert.Empty(t, f.bookings.bookings)
}

func TestInitiateBookingCatalogUnavailable(t *testing.T) {
	f := newCheckoutFixture()
	f.catalog.err = errors.New("connection refused")

	_, err := f.svc.InitiateBooking(context.Background(), validBookingRequest())

	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.Empty(t, f.provider.requests, "no payment session without a catalog")
}

func TestInitiateBookingPersistenceFailureCreatesNoSession(t *testing.T) {
	f := newCheckoutFixture()
	f.bookings.createErr = errors.New("connection refused")

	_, err := f.svc.InitiateBooking(context.Background(), validBookingRequest())

	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.Empty(t, f.provider.requests, "a session must never exist without a backing record")
}

func TestInitiateBookingPaymentFailureLeavesPendingRecord(t *testing.T) {
	f := newCheckoutFixture()
	f.provider.err = errors.New("stripe unavailable")

	_, err := f.svc.InitiateBooking(context.Background(), validBookingRequest())

	var serr *PaymentSessionError
	assert.ErrorAs(t, err, &serr)
	require.Len(t, f.bookings.bookings, 1)
	assert.Equal(t, model.BookingPending, f.bookings.bookings[1].Status)
}

func TestInitiateBookingSessionAttachFailureIsNonFatal(t *testing.T) {
	f := newCheckoutFixture()
	f.bookings.attachErr = errors.New("connection refused")

	res, err := f.svc.InitiateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.URL)
}

func validShopRequest() ShopOrderRequest {
	return ShopOrderRequest{
		Items: []ShopItem{
			{Type: "product", ProductID: 7, Name: "Farm Honey", Quantity: 2, Price: 650},
			{Type: "voucher", Name: "Gift Voucher", Quantity: 1, Price: 2500, RecipientName: "Sam"},
			{Type: "adoption", Name: "Adopt Gerald the Goat", Quantity: 1, Price: 3000, AnimalID: 3, TierID: 1},
		},
		DeliveryMethod: "shipping",
		ShippingAddress: &model.Address{
			Line1: "1 High Street", City: "Oakham", Postcode: "LE15 6JD",
		},
		CustomerName:  "Jo Bloggs",
		CustomerEmail: "jo@example.org",
	}
}

func TestInitiateShopOrderSuccess(t *testing.T) {
	f := newCheckoutFixture()

	res, err := f.svc.InitiateShopOrder(context.Background(), validShopRequest())
	require.NoError(t, err)

	assert.Regexp(t, `^RFP-S260318-[A-Z0-9]{4}$`, res.Reference)

	o := f.orders.orders[1]
	require.NotNil(t, o)
	assert.Equal(t, model.OrderPending, o.Status)
	assert.Equal(t, int64(650*2+2500+3000), o.Subtotal)
	// Subtotal is over the free-shipping threshold.
	assert.Equal(t, int64(0), o.ShippingCost)
	assert.Equal(t, o.Subtotal, o.TotalAmount)

	// Child records created eagerly, pending.
	require.Len(t, f.vouchers.created, 1)
	v := f.vouchers.created[0]
	assert.Regexp(t, `^RFP-V[A-Z0-9]{8}$`, v.Code)
	assert.Equal(t, model.VoucherPending, v.Status)
	assert.Equal(t, "Sam", v.RecipientName)
	assert.Equal(t, fixedNow().AddDate(1, 0, 0), v.ExpiresAt)

	require.Len(t, f.adoptions.created, 1)
	a := f.adoptions.created[0]
	assert.Regexp(t, `^RFP-A[A-Z0-9]{6}$`, a.Reference)
	assert.Equal(t, model.AdoptionPending, a.Status)
	assert.Equal(t, uint64(3), a.AnimalID)
}

func TestInitiateShopOrderShippingBelowThreshold(t *testing.T) {
	f := newCheckoutFixture()

	req := ShopOrderRequest{
		Items:           []ShopItem{{Type: "product", Name: "Postcard", Quantity: 1, Price: 150}},
		DeliveryMethod:  "shipping",
		ShippingAddress: &model.Address{Line1: "1 High Street", City: "Oakham", Postcode: "LE15 6JD"},
		CustomerName:    "Jo Bloggs",
		CustomerEmail:   "jo@example.org",
	}
	_, err := f.svc.InitiateShopOrder(context.Background(), req)
	require.NoError(t, err)

	o := f.orders.orders[1]
	assert.Equal(t, int64(395), o.ShippingCost)
	assert.Equal(t, int64(545), o.TotalAmount)

	// The shipping charge appears as its own payment line.
	lastReq := f.provider.requests[len(f.provider.requests)-1]
	last := lastReq.Items[len(lastReq.Items)-1]
	assert.Equal(t, "Standard Shipping", last.Name)
	assert.Equal(t, int64(395), last.UnitAmount)
}

func TestInitiateShopOrderVoucherOnlyHasNoShipping(t *testing.T) {
	f := newCheckoutFixture()

	req := ShopOrderRequest{
		Items:          []ShopItem{{Type: "voucher", Name: "Gift Voucher", Quantity: 1, Price: 1000}},
		DeliveryMethod: "shipping",
		CustomerName:   "Jo Bloggs",
		CustomerEmail:  "jo@example.org",
	}
	_, err := f.svc.InitiateShopOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.orders.orders[1].ShippingCost)
}

func TestInitiateShopOrderValidation(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.InitiateShopOrder(context.Background(), ShopOrderRequest{
		CustomerName: "Jo", CustomerEmail: "jo@example.org",
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.InitiateShopOrder(context.Background(), ShopOrderRequest{
		Items:        []ShopItem{{Type: "product", Name: "Honey", Quantity: 0, Price: 100}},
		CustomerName: "Jo", CustomerEmail: "jo@example.org",
	})
	assert.ErrorAs(t, err, &verr)
}

func TestInitiateShopOrderChildRecordFailure(t *testing.T) {
	f := newCheckoutFixture()
	f.vouchers.createErr = errors.New("connection refused")

	req := validShopRequest()
	_, err := f.svc.InitiateShopOrder(context.Background(), req)

	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.Empty(t, f.provider.requests, "no payment session when child records fail")
}
