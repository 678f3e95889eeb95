package service

import (
	"context"
	"errors"
	"time"

	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/payment"
	"github.com/rutlandfarmpark/booking-api/internal/queue"
	"github.com/rutlandfarmpark/booking-api/internal/repository"
)

// In-memory fakes for the narrow store interfaces.  They model just enough
// behavior for the orchestration paths under test.

type fakeCatalog struct {
	types []model.TicketType
	err   error
}

func (f *fakeCatalog) ListActive(ctx context.Context) ([]model.TicketType, error) {
	return f.types, f.err
}

type fakeBookingStore struct {
	createErr  error
	attachErr  error
	nextID     uint64
	bookings   map[uint64]*model.Booking
	sessions   map[uint64]string
	intents    map[uint64]string
	transition int // number of applied status transitions
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		nextID:   1,
		bookings: make(map[uint64]*model.Booking),
		sessions: make(map[uint64]string),
		intents:  make(map[uint64]string),
	}
}

func (f *fakeBookingStore) Create(ctx context.Context, b *model.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = f.nextID
	f.nextID++
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingStore) SetStripeSession(ctx context.Context, id uint64, sessionID string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.sessions[id] = sessionID
	return nil
}

func (f *fakeBookingStore) UpdateStatusFrom(ctx context.Context, id uint64, from, to string) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	f.transition++
	return true, nil
}

func (f *fakeBookingStore) SetPaymentIntent(ctx context.Context, id uint64, pi string) error {
	f.intents[id] = pi
	return nil
}

type fakeOrderStore struct {
	createErr  error
	nextID     uint64
	orders     map[uint64]*model.Order
	sessions   map[uint64]string
	intents    map[uint64]string
	transition int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		nextID:   1,
		orders:   make(map[uint64]*model.Order),
		sessions: make(map[uint64]string),
		intents:  make(map[uint64]string),
	}
}

func (f *fakeOrderStore) Create(ctx context.Context, o *model.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = f.nextID
	f.nextID++
	clone := *o
	f.orders[o.ID] = &clone
	return nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (f *fakeOrderStore) SetStripeSession(ctx context.Context, id uint64, sessionID string) error {
	f.sessions[id] = sessionID
	return nil
}

func (f *fakeOrderStore) UpdateStatusFrom(ctx context.Context, id uint64, from, to string) (bool, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	f.transition++
	return true, nil
}

func (f *fakeOrderStore) SetPaymentIntent(ctx context.Context, id uint64, pi string) error {
	f.intents[id] = pi
	return nil
}

type fakeVoucherStore struct {
	created    []model.GiftVoucher
	activated  []string
	createErr  error
	activorErr error
}

func (f *fakeVoucherStore) Create(ctx context.Context, v *model.GiftVoucher) error {
	if f.createErr != nil {
		return f.createErr
	}
	v.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, *v)
	return nil
}

func (f *fakeVoucherStore) ActivatePendingByPurchaser(ctx context.Context, email string) (int64, error) {
	if f.activorErr != nil {
		return 0, f.activorErr
	}
	f.activated = append(f.activated, email)
	var n int64
	for i := range f.created {
		if f.created[i].PurchaserEmail == email && f.created[i].Status == model.VoucherPending {
			f.created[i].Status = model.VoucherActive
			n++
		}
	}
	return n, nil
}

type fakeAdoptionStore struct {
	created   []model.Adoption
	activated []string
}

func (f *fakeAdoptionStore) Create(ctx context.Context, a *model.Adoption) error {
	a.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, *a)
	return nil
}

func (f *fakeAdoptionStore) ActivatePendingByAdopter(ctx context.Context, email string) (int64, error) {
	f.activated = append(f.activated, email)
	var n int64
	for i := range f.created {
		if f.created[i].AdopterEmail == email && f.created[i].Status == model.AdoptionPending {
			f.created[i].Status = model.AdoptionActive
			n++
		}
	}
	return n, nil
}

type fakeSettings struct {
	values map[string]int64
}

func (f *fakeSettings) IntValue(ctx context.Context, name string) (int64, error) {
	v, ok := f.values[name]
	if !ok {
		return 0, repository.ErrSettingNotFound
	}
	return v, nil
}

type fakeProvider struct {
	err      error
	requests []payment.SessionRequest
	session  payment.Session
}

func (f *fakeProvider) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (payment.Session, error) {
	if f.err != nil {
		return payment.Session{}, f.err
	}
	f.requests = append(f.requests, req)
	if f.session.ID == "" {
		return payment.Session{ID: "cs_test_123", URL: "https://checkout.example/cs_test_123"}, nil
	}
	return f.session, nil
}

func (f *fakeProvider) VerifyWebhook(payload []byte, signature string) (payment.Event, error) {
	return payment.Event{}, errors.New("not used in service tests")
}

type fakePublisher struct {
	bookingEvents []queue.BookingConfirmedEvent
	orderEvents   []queue.OrderPaidEvent
	err           error
}

func (f *fakePublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.bookingEvents = append(f.bookingEvents, ev)
	return nil
}

func (f *fakePublisher) PublishOrderPaid(ctx context.Context, ev queue.OrderPaidEvent) error {
	if f.err != nil {
		return f.err
	}
	f.orderEvents = append(f.orderEvents, ev)
	return nil
}

// Fixed clock: Wednesday 18 March 2026, mid-morning.
func fixedNow() time.Time {
	return time.Date(2026, time.March, 18, 10, 0, 0, 0, time.UTC)
}
