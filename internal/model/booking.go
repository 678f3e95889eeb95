package model

import (
	"strings"
	"time"
)

// Booking status values.  A booking starts as pending when checkout is
// initiated and only becomes confirmed through a verified payment-completed
// webhook.  Cancelled and refunded are terminal.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingRefunded  = "refunded"
)

// BookingTicket is one line of a booking.  It snapshots the ticket type's
// name, unit price and occupancy at the moment of purchase so later catalog
// edits never change what the customer bought.
//
// Fields:
//  ID           – primary key identifier.
//  BookingID    – owning booking.
//  TicketTypeID – the catalog entry the line was priced from.
//  TicketName   – ticket name at booking time.
//  Quantity     – number of tickets on the line.
//  UnitPrice    – pence per ticket at booking time.
//  Occupancy    – visitors per ticket at booking time; 0 means unset.
type BookingTicket struct {
	ID           uint64 // booking_tickets.id
	BookingID    uint64 // booking_tickets.booking_id
	TicketTypeID uint64 // booking_tickets.ticket_type_id
	TicketName   string // booking_tickets.ticket_name
	Quantity     int    // booking_tickets.quantity
	UnitPrice    int64  // booking_tickets.unit_price
	Occupancy    int    // booking_tickets.occupancy
}

// Visitors returns how many people this line admits for capacity counting.
// Lines written since the occupancy column existed carry a snapshot; older
// rows fall back to the original rule where a ticket whose name contains
// "family" admits four visitors per unit.
func (t BookingTicket) Visitors() int {
	if t.Occupancy > 0 {
		return t.Quantity * t.Occupancy
	}
	if strings.Contains(strings.ToLower(t.TicketName), "family") {
		return t.Quantity * 4
	}
	return t.Quantity
}

// Booking is a venue-entry reservation for a specific visit date.
//
// Fields:
//  ID                    – primary key identifier.
//  Reference             – unique human-readable reference (PREFIX-YYMMDD-XXXX).
//  Date                  – visit date (day precision).
//  Tickets               – snapshot lines; TotalAmount always equals their sum.
//  TotalAmount           – pence, sum of unit price × quantity across lines.
//  CustomerName          – who booked.
//  CustomerEmail         – confirmation email destination.
//  CustomerPhone         – optional contact number.
//  SpecialRequirements   – optional free text from the customer.
//  StripeSessionID       – hosted checkout session, set after session creation.
//  StripePaymentIntentID – provider payment confirmation id, set on completion.
//  Status                – lifecycle state, see constants above.
type Booking struct {
	ID                    uint64          // bookings.id
	Reference             string          // bookings.reference
	Date                  time.Time       // bookings.date
	Tickets               []BookingTicket // booking_tickets rows
	TotalAmount           int64           // bookings.total_amount
	CustomerName          string          // bookings.customer_name
	CustomerEmail         string          // bookings.customer_email
	CustomerPhone         string          // bookings.customer_phone (may be empty)
	SpecialRequirements   string          // bookings.special_requirements (may be empty)
	StripeSessionID       string          // bookings.stripe_session_id (may be empty)
	StripePaymentIntentID string          // bookings.stripe_payment_intent_id (may be empty)
	Status                string          // bookings.status
	CreatedAt             time.Time       // bookings.created_at
	UpdatedAt             time.Time       // bookings.updated_at
}

// Visitors sums the visitor contribution of every line.
func (b Booking) Visitors() int {
	total := 0
	for _, t := range b.Tickets {
		total += t.Visitors()
	}
	return total
}

// CanTransitionBooking reports whether a booking status change is legal.
// Valid moves are pending→confirmed, pending→cancelled and
// confirmed→refunded; cancelled and refunded are terminal.  A transition to
// the current status is not legal either; callers treat redelivered
// provider events as no-ops before consulting this.
func CanTransitionBooking(from, to string) bool {
	switch from {
	case BookingPending:
		return to == BookingConfirmed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingRefunded
	default:
		return false
	}
}
