package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/payment"
	"github.com/rutlandfarmpark/booking-api/internal/queue"
	"github.com/rutlandfarmpark/booking-api/internal/repository"
)

// EventPublisher publishes confirmation events for the email consumer.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	PublishOrderPaid(ctx context.Context, ev queue.OrderPaidEvent) error
}

// ReconcileService applies verified payment-provider events to bookings and
// orders.  Every path is idempotent: providers redeliver events, and the
// same completed or expired notification applied twice must change nothing
// the second time.  Downstream faults (store reads, event publishing) are
// logged but never propagated.  The payment already happened, and the
// provider must not retry because our notification plumbing hiccuped.
type ReconcileService struct {
	bookings  BookingStore
	orders    OrderStore
	vouchers  VoucherStore
	adoptions AdoptionStore
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewReconcileService wires a ReconcileService.
func NewReconcileService(bookings BookingStore, orders OrderStore, vouchers VoucherStore, adoptions AdoptionStore, publisher EventPublisher, logger *zap.Logger, now func() time.Time) *ReconcileService {
	return &ReconcileService{
		bookings:  bookings,
		orders:    orders,
		vouchers:  vouchers,
		adoptions: adoptions,
		publisher: publisher,
		logger:    logger,
		now:       now,
	}
}

// Process dispatches a verified provider event.  Unrecognized event types
// and events without usable metadata are ignored.
func (s *ReconcileService) Process(ctx context.Context, ev payment.Event) {
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		if id, ok := metaID(ev, payment.MetaBookingID); ok {
			s.completeBooking(ctx, id, ev)
		} else if id, ok := metaID(ev, payment.MetaOrderID); ok {
			s.completeOrder(ctx, id, ev)
		}
	case payment.EventCheckoutExpired:
		if id, ok := metaID(ev, payment.MetaBookingID); ok {
			s.expireBooking(ctx, id)
		} else if id, ok := metaID(ev, payment.MetaOrderID); ok {
			s.expireOrder(ctx, id)
		}
	default:
		s.logger.Debug("reconcile: ignoring event", zap.String("type", ev.Type))
	}
}

func (s *ReconcileService) completeBooking(ctx context.Context, id uint64, ev payment.Event) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			s.logger.Warn("reconcile: completed event for unknown booking", zap.Uint64("booking_id", id))
		} else {
			s.logger.Error("reconcile: loading booking failed", zap.Uint64("booking_id", id), zap.Error(err))
		}
		return
	}
	if b.Status != model.BookingPending {
		// Duplicate delivery; the first one already confirmed the booking.
		s.logger.Info("reconcile: booking already processed",
			zap.String("reference", b.Reference), zap.String("status", b.Status))
		return
	}

	applied, err := s.bookings.UpdateStatusFrom(ctx, id, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		s.logger.Error("reconcile: confirming booking failed", zap.String("reference", b.Reference), zap.Error(err))
		return
	}
	if !applied {
		// A concurrent delivery won the guarded update.
		return
	}
	if ev.PaymentIntentID != "" {
		if err := s.bookings.SetPaymentIntent(ctx, id, ev.PaymentIntentID); err != nil {
			s.logger.Warn("reconcile: recording payment intent failed", zap.String("reference", b.Reference), zap.Error(err))
		}
	}
	s.logger.Info("reconcile: booking confirmed",
		zap.String("reference", b.Reference), zap.String("event_id", ev.ID))

	out := queue.BookingConfirmedEvent{
		EventID:       uuid.NewString(),
		Reference:     b.Reference,
		Date:          b.Date.Format("2006-01-02"),
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		TotalAmount:   b.TotalAmount,
		ConfirmedAt:   s.now().UTC().Format(time.RFC3339),
	}
	for _, t := range b.Tickets {
		out.Tickets = append(out.Tickets, queue.TicketLine{Name: t.TicketName, Quantity: t.Quantity, UnitPrice: t.UnitPrice})
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, out); err != nil {
		s.logger.Error("reconcile: publishing booking confirmation failed",
			zap.String("reference", b.Reference), zap.Error(err))
	}
}

func (s *ReconcileService) completeOrder(ctx context.Context, id uint64, ev payment.Event) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			s.logger.Warn("reconcile: completed event for unknown order", zap.Uint64("order_id", id))
		} else {
			s.logger.Error("reconcile: loading order failed", zap.Uint64("order_id", id), zap.Error(err))
		}
		return
	}
	if o.Status != model.OrderPending {
		s.logger.Info("reconcile: order already processed",
			zap.String("reference", o.Reference), zap.String("status", o.Status))
		return
	}

	applied, err := s.orders.UpdateStatusFrom(ctx, id, model.OrderPending, model.OrderPaid)
	if err != nil {
		s.logger.Error("reconcile: marking order paid failed", zap.String("reference", o.Reference), zap.Error(err))
		return
	}
	if !applied {
		return
	}
	if ev.PaymentIntentID != "" {
		if err := s.orders.SetPaymentIntent(ctx, id, ev.PaymentIntentID); err != nil {
			s.logger.Warn("reconcile: recording payment intent failed", zap.String("reference", o.Reference), zap.Error(err))
		}
	}

	// Activate the child records created alongside the order.  They carry no
	// order reference, so the match is purchaser email + pending status.
	if n, err := s.vouchers.ActivatePendingByPurchaser(ctx, o.CustomerEmail); err != nil {
		s.logger.Error("reconcile: activating vouchers failed", zap.String("reference", o.Reference), zap.Error(err))
	} else if n > 0 {
		s.logger.Info("reconcile: vouchers activated", zap.String("reference", o.Reference), zap.Int64("count", n))
	}
	if n, err := s.adoptions.ActivatePendingByAdopter(ctx, o.CustomerEmail); err != nil {
		s.logger.Error("reconcile: activating adoptions failed", zap.String("reference", o.Reference), zap.Error(err))
	} else if n > 0 {
		s.logger.Info("reconcile: adoptions activated", zap.String("reference", o.Reference), zap.Int64("count", n))
	}

	s.logger.Info("reconcile: order paid",
		zap.String("reference", o.Reference), zap.String("event_id", ev.ID))

	out := queue.OrderPaidEvent{
		EventID:       uuid.NewString(),
		Reference:     o.Reference,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount,
		PaidAt:        s.now().UTC().Format(time.RFC3339),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, queue.OrderLine{Name: it.Name, Variant: it.Variant, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	if err := s.publisher.PublishOrderPaid(ctx, out); err != nil {
		s.logger.Error("reconcile: publishing order confirmation failed",
			zap.String("reference", o.Reference), zap.Error(err))
	}
}

func (s *ReconcileService) expireBooking(ctx context.Context, id uint64) {
	applied, err := s.bookings.UpdateStatusFrom(ctx, id, model.BookingPending, model.BookingCancelled)
	if err != nil {
		s.logger.Error("reconcile: cancelling expired booking failed", zap.Uint64("booking_id", id), zap.Error(err))
		return
	}
	if applied {
		s.logger.Info("reconcile: booking cancelled after session expiry", zap.Uint64("booking_id", id))
	}
}

func (s *ReconcileService) expireOrder(ctx context.Context, id uint64) {
	applied, err := s.orders.UpdateStatusFrom(ctx, id, model.OrderPending, model.OrderCancelled)
	if err != nil {
		s.logger.Error("reconcile: cancelling expired order failed", zap.Uint64("order_id", id), zap.Error(err))
		return
	}
	if applied {
		s.logger.Info("reconcile: order cancelled after session expiry", zap.Uint64("order_id", id))
	}
}

// metaID extracts a numeric record id from event metadata.
func metaID(ev payment.Event, key string) (uint64, bool) {
	raw, ok := ev.Metadata[key]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
