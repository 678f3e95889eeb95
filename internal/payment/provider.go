// Package payment wraps the payment provider behind a narrow interface: one
// call to create a hosted checkout session and one to verify an inbound
// webhook.  Services and handlers depend on the interface, so tests never
// touch the network.
package payment

import "context"

// Event types the reconciliation path cares about.  Everything else is
// acknowledged and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// Metadata keys attached to checkout sessions so webhooks can be matched
// back to the originating record.
const (
	MetaBookingID        = "bookingId"
	MetaBookingReference = "bookingReference"
	MetaOrderID          = "orderId"
	MetaOrderReference   = "orderReference"
	MetaDate             = "date"
	MetaType             = "type"
)

// SessionItem is one display line on the hosted payment page.  Amounts are
// pence.
type SessionItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

// SessionRequest describes the hosted checkout session to create.
type SessionRequest struct {
	Items         []SessionItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session identifies a created hosted checkout session and the page URL the
// customer is redirected to.
type Session struct {
	ID  string
	URL string
}

// Event is a verified webhook notification.  Metadata carries back whatever
// was attached at session creation; PaymentIntentID is the provider's
// payment confirmation id, present on completed events.
type Event struct {
	ID              string
	Type            string
	Metadata        map[string]string
	PaymentIntentID string
}

// Provider is the payment provider surface the core depends on.
type Provider interface {
	// CreateCheckoutSession creates a hosted payment session.
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
	// VerifyWebhook checks the signature over the raw payload and decodes
	// the event.  An error means the event must not be processed.
	VerifyWebhook(payload []byte, signature string) (Event, error)
}
