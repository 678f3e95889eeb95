package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/calendar"
	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/payment"
	"github.com/rutlandfarmpark/booking-api/internal/pricing"
	"github.com/rutlandfarmpark/booking-api/internal/reference"
	"github.com/rutlandfarmpark/booking-api/internal/repository"
)

// Default shipping terms used when the shop settings are unavailable.
const (
	defaultShippingRate     = 395  // pence
	defaultFreeShippingOver = 3000 // pence
)

// TicketCatalog lists the active admission ticket types.
type TicketCatalog interface {
	ListActive(ctx context.Context) ([]model.TicketType, error)
}

// BookingStore is the slice of the booking repository checkout and
// reconciliation depend on.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	SetStripeSession(ctx context.Context, id uint64, sessionID string) error
	UpdateStatusFrom(ctx context.Context, id uint64, from, to string) (bool, error)
	SetPaymentIntent(ctx context.Context, id uint64, paymentIntentID string) error
}

// OrderStore mirrors BookingStore for shop orders.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	SetStripeSession(ctx context.Context, id uint64, sessionID string) error
	UpdateStatusFrom(ctx context.Context, id uint64, from, to string) (bool, error)
	SetPaymentIntent(ctx context.Context, id uint64, paymentIntentID string) error
}

// VoucherStore creates and activates gift vouchers.
type VoucherStore interface {
	Create(ctx context.Context, v *model.GiftVoucher) error
	ActivatePendingByPurchaser(ctx context.Context, email string) (int64, error)
}

// AdoptionStore creates and activates animal adoptions.
type AdoptionStore interface {
	Create(ctx context.Context, a *model.Adoption) error
	ActivatePendingByAdopter(ctx context.Context, email string) (int64, error)
}

// SettingsReader reads site-wide configuration values.
type SettingsReader interface {
	IntValue(ctx context.Context, name string) (int64, error)
}

// CheckoutDeps bundles the collaborators of CheckoutService.
type CheckoutDeps struct {
	Tickets   TicketCatalog
	Bookings  BookingStore
	Orders    OrderStore
	Vouchers  VoucherStore
	Adoptions AdoptionStore
	Settings  SettingsReader
	Provider  payment.Provider
	Refs      *reference.Generator
	Calendar  *calendar.Calendar
	SiteURL   string
	SiteName  string
	Logger    *zap.Logger
	Now       func() time.Time
}

// CheckoutService orchestrates the two-phase checkout: persist a pending
// record first, then create the hosted payment session.  A payment session
// must never exist without a backing record to reconcile against, while a
// pending record without a session is merely inert.
type CheckoutService struct {
	deps CheckoutDeps
}

// NewCheckoutService wires a CheckoutService.
func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	return &CheckoutService{deps: deps}
}

// BookingRequest is a requested admission booking.
type BookingRequest struct {
	Date                time.Time
	Tickets             []pricing.Selection
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	SpecialRequirements string
}

// CheckoutResult points the customer at the hosted payment page.
type CheckoutResult struct {
	SessionID string
	URL       string
	Reference string
}

// InitiateBooking validates the request, prices it, persists a pending
// booking and opens a hosted payment session for it.
func (s *CheckoutService) InitiateBooking(ctx context.Context, req BookingRequest) (CheckoutResult, error) {
	d := s.deps
	if req.Date.IsZero() || len(req.Tickets) == 0 || req.CustomerName == "" || req.CustomerEmail == "" {
		return CheckoutResult{}, &ValidationError{Reason: "Missing required fields."}
	}

	now := d.Now()
	if calendar.StartOfDay(req.Date).Before(calendar.StartOfDay(now)) {
		return CheckoutResult{}, ErrPastDate
	}
	if d.Calendar.IsClosedDay(req.Date) {
		return CheckoutResult{}, ErrClosedDay
	}

	catalog, err := d.Tickets.ListActive(ctx)
	if err != nil {
		return CheckoutResult{}, &PersistenceError{Err: err}
	}

	quote, err := pricing.Resolve(d.Calendar, req.Date, req.Tickets, catalog)
	if err != nil {
		return CheckoutResult{}, err
	}

	ref := d.Refs.Booking(now)
	booking := &model.Booking{
		Reference:           ref,
		Date:                req.Date,
		TotalAmount:         quote.Total,
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		SpecialRequirements: req.SpecialRequirements,
		Status:              model.BookingPending,
	}
	for _, line := range quote.Lines {
		booking.Tickets = append(booking.Tickets, model.BookingTicket{
			TicketTypeID: line.TicketType.ID,
			TicketName:   line.TicketType.Name,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Occupancy:    line.TicketType.Occupancy,
		})
	}
	if err := d.Bookings.Create(ctx, booking); err != nil {
		return CheckoutResult{}, &PersistenceError{Err: err}
	}

	tier := "Weekday"
	if quote.HolidayRate {
		tier = "Weekend/Holiday"
	}
	items := make([]payment.SessionItem, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		items = append(items, payment.SessionItem{
			Name:        line.TicketType.Name + " - " + d.SiteName,
			Description: tier + " admission for " + req.Date.Format("02/01/2006"),
			UnitAmount:  line.UnitPrice,
			Quantity:    int64(line.Quantity),
		})
	}
	session, err := d.Provider.CreateCheckoutSession(ctx, payment.SessionRequest{
		Items:         items,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    d.SiteURL + "/booking/confirmation?ref=" + ref,
		CancelURL:     d.SiteURL + "/booking?cancelled=true",
		Metadata: map[string]string{
			payment.MetaBookingID:        strconv.FormatUint(booking.ID, 10),
			payment.MetaBookingReference: ref,
			payment.MetaDate:             req.Date.Format("2006-01-02"),
		},
	})
	if err != nil {
		// The pending booking stays behind.  It can never confirm without a
		// session, so it is inert; no sweeper cleans these up.
		return CheckoutResult{}, &PaymentSessionError{Err: err}
	}

	// Best effort: the webhook reconciles through session metadata, so a
	// failed attach only loses an admin convenience column.
	if err := d.Bookings.SetStripeSession(ctx, booking.ID, session.ID); err != nil {
		d.Logger.Warn("checkout: attaching session id to booking failed",
			zap.String("reference", ref), zap.Error(err))
	}

	return CheckoutResult{SessionID: session.ID, URL: session.URL, Reference: ref}, nil
}

// ShopItem is one cart line at shop checkout.  Vouchers carry recipient
// details; adoptions carry the animal, tier and gifting details.
type ShopItem struct {
	Type              string
	ProductID         uint64
	Name              string
	Variant           string
	Quantity          int
	Price             int64
	RecipientName     string
	RecipientEmail    string
	PersonalMessage   string
	AnimalID          uint64
	TierID            uint64
	IsGift            bool
	GiftRecipientName string
}

// ShopOrderRequest is a requested shop checkout.
type ShopOrderRequest struct {
	Items           []ShopItem
	DeliveryMethod  string
	ShippingAddress *model.Address
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
}

// ShopCheckoutResult points the customer at the hosted payment page.
type ShopCheckoutResult struct {
	URL       string
	Reference string
}

// InitiateShopOrder aggregates heterogeneous cart lines into one pending
// order plus eagerly-created pending voucher/adoption child records, then
// opens a hosted payment session for the lot.
func (s *CheckoutService) InitiateShopOrder(ctx context.Context, req ShopOrderRequest) (ShopCheckoutResult, error) {
	d := s.deps
	if len(req.Items) == 0 || req.CustomerName == "" || req.CustomerEmail == "" {
		return ShopCheckoutResult{}, &ValidationError{Reason: "Missing required fields."}
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.Price < 0 {
			return ShopCheckoutResult{}, &ValidationError{Reason: "Invalid item quantity or price."}
		}
	}

	now := d.Now()
	ref := d.Refs.Order(now)

	deliveryMethod := req.DeliveryMethod
	if deliveryMethod == "" {
		deliveryMethod = model.DeliveryCollection
	}

	var subtotal int64
	orderItems := make([]model.OrderItem, 0, len(req.Items))
	sessionItems := make([]payment.SessionItem, 0, len(req.Items)+1)
	hasPhysical := false
	for _, item := range req.Items {
		itemType := model.ItemProduct
		switch item.Type {
		case model.ItemVoucher:
			itemType = model.ItemVoucher
		case model.ItemAdoption:
			itemType = model.ItemAdoption
		}
		if itemType != model.ItemVoucher {
			hasPhysical = true
		}
		subtotal += item.Price * int64(item.Quantity)

		productID := uint64(0)
		if itemType == model.ItemProduct {
			productID = item.ProductID
		}
		orderItems = append(orderItems, model.OrderItem{
			ItemType:  itemType,
			ProductID: productID,
			Name:      item.Name,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
		sessionItems = append(sessionItems, payment.SessionItem{
			Name:        item.Name,
			Description: item.Variant,
			UnitAmount:  item.Price,
			Quantity:    int64(item.Quantity),
		})
	}

	var shippingCost int64
	if deliveryMethod == model.DeliveryShipping && hasPhysical {
		shippingCost = s.shippingCost(ctx, subtotal)
	}
	if shippingCost > 0 {
		sessionItems = append(sessionItems, payment.SessionItem{
			Name:       "Standard Shipping",
			UnitAmount: shippingCost,
			Quantity:   1,
		})
	}

	order := &model.Order{
		Reference:      ref,
		Items:          orderItems,
		DeliveryMethod: deliveryMethod,
		ShippingCost:   shippingCost,
		Subtotal:       subtotal,
		TotalAmount:    subtotal + shippingCost,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Status:         model.OrderPending,
	}
	if deliveryMethod == model.DeliveryShipping {
		order.ShippingAddress = req.ShippingAddress
	}
	if err := d.Orders.Create(ctx, order); err != nil {
		return ShopCheckoutResult{}, &PersistenceError{Err: err}
	}

	if err := s.createChildRecords(ctx, req, now); err != nil {
		return ShopCheckoutResult{}, &PersistenceError{Err: err}
	}

	session, err := d.Provider.CreateCheckoutSession(ctx, payment.SessionRequest{
		Items:         sessionItems,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    d.SiteURL + "/checkout/confirmation?ref=" + ref,
		CancelURL:     d.SiteURL + "/checkout?cancelled=true",
		Metadata: map[string]string{
			payment.MetaOrderID:        strconv.FormatUint(order.ID, 10),
			payment.MetaOrderReference: ref,
			payment.MetaType:           "shop",
		},
	})
	if err != nil {
		return ShopCheckoutResult{}, &PaymentSessionError{Err: err}
	}

	if err := d.Orders.SetStripeSession(ctx, order.ID, session.ID); err != nil {
		d.Logger.Warn("checkout: attaching session id to order failed",
			zap.String("reference", ref), zap.Error(err))
	}

	return ShopCheckoutResult{URL: session.URL, Reference: ref}, nil
}

// createChildRecords eagerly persists pending vouchers and adoptions for the
// relevant cart lines.  They are activated by the webhook when the order's
// payment completes.
func (s *CheckoutService) createChildRecords(ctx context.Context, req ShopOrderRequest, now time.Time) error {
	d := s.deps
	for _, item := range req.Items {
		switch item.Type {
		case model.ItemVoucher:
			recipient := item.RecipientName
			if recipient == "" {
				recipient = req.CustomerName
			}
			v := &model.GiftVoucher{
				Code:             d.Refs.VoucherCode(),
				Amount:           item.Price,
				RemainingBalance: item.Price,
				PurchaserName:    req.CustomerName,
				PurchaserEmail:   req.CustomerEmail,
				RecipientName:    recipient,
				RecipientEmail:   item.RecipientEmail,
				PersonalMessage:  item.PersonalMessage,
				ExpiresAt:        now.AddDate(1, 0, 0),
				Status:           model.VoucherPending,
			}
			if err := d.Vouchers.Create(ctx, v); err != nil {
				return err
			}
		case model.ItemAdoption:
			addr := model.Address{Line1: "TBC", City: "TBC", Postcode: "TBC"}
			if req.ShippingAddress != nil {
				addr = *req.ShippingAddress
			}
			a := &model.Adoption{
				Reference:         d.Refs.Adoption(),
				AnimalID:          item.AnimalID,
				TierID:            item.TierID,
				AdopterName:       req.CustomerName,
				AdopterEmail:      req.CustomerEmail,
				AdopterPhone:      req.CustomerPhone,
				IsGift:            item.IsGift,
				GiftRecipientName: item.GiftRecipientName,
				ShippingAddress:   addr,
				StartsAt:          now,
				ExpiresAt:         now.AddDate(1, 0, 0),
				Status:            model.AdoptionPending,
			}
			if err := d.Adoptions.Create(ctx, a); err != nil {
				return err
			}
		}
	}
	return nil
}

// shippingCost resolves the standard rate and free-shipping threshold from
// the shop settings, falling back to the documented defaults when the store
// cannot answer.
func (s *CheckoutService) shippingCost(ctx context.Context, subtotal int64) int64 {
	d := s.deps
	rate := int64(defaultShippingRate)
	threshold := int64(defaultFreeShippingOver)
	if v, err := d.Settings.IntValue(ctx, repository.SettingShippingStandardRate); err == nil && v >= 0 {
		rate = v
	}
	if v, err := d.Settings.IntValue(ctx, repository.SettingShippingFreeThreshold); err == nil && v > 0 {
		threshold = v
	}
	if subtotal >= threshold {
		return 0
	}
	return rate
}
