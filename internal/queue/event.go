// Package queue defines the message payloads exchanged over the broker and
// the consumer that turns them into customer emails.  Publishing is
// fire-and-forget from the webhook path: a notification fault must never
// cause the payment provider to retry a delivery.
package queue

// Queue names.  Durable queues, declared idempotently by both ends.
const (
	BookingConfirmedQueue = "booking.confirmed"
	OrderPaidQueue        = "order.paid"
)

// TicketLine is one booking line carried in a confirmation event.
type TicketLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// BookingConfirmedEvent is published when payment for a booking completes.
// It carries everything the mailer needs so the consumer never queries the
// primary database.
type BookingConfirmedEvent struct {
	EventID       string       `json:"event_id"`
	Reference     string       `json:"reference"`
	Date          string       `json:"date"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	Tickets       []TicketLine `json:"tickets"`
	TotalAmount   int64        `json:"total_amount"`
	ConfirmedAt   string       `json:"confirmed_at"`
}

// OrderLine is one shop order line carried in an order-paid event.
type OrderLine struct {
	Name      string `json:"name"`
	Variant   string `json:"variant,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderPaidEvent is published when payment for a shop order completes.
type OrderPaidEvent struct {
	EventID       string      `json:"event_id"`
	Reference     string      `json:"reference"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Items         []OrderLine `json:"items"`
	TotalAmount   int64       `json:"total_amount"`
	PaidAt        string      `json:"paid_at"`
}
