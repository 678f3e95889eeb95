package model

import "time"

// Order status values.  The payment flow only ever moves an order from
// pending to paid (webhook) or cancelled (session expiry); the fulfilment
// states beyond paid are driven by staff in the back office.
const (
	OrderPending    = "pending"
	OrderPaid       = "paid"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderReady      = "ready"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
	OrderRefunded   = "refunded"
)

// Order item kinds.  Shop checkout aggregates heterogeneous lines into a
// single payment session.
const (
	ItemProduct  = "product"
	ItemVoucher  = "voucher"
	ItemAdoption = "adoption"
)

// Delivery methods offered at shop checkout.
const (
	DeliveryCollection = "collection"
	DeliveryShipping   = "shipping"
)

// OrderItem is one line of a shop order.  Like booking lines it snapshots
// name and price; the product reference is informational only.
type OrderItem struct {
	ID        uint64 // order_items.id
	OrderID   uint64 // order_items.order_id
	ItemType  string // order_items.item_type (product/voucher/adoption)
	ProductID uint64 // order_items.product_id (0 when not a product)
	Name      string // order_items.name
	Variant   string // order_items.variant (may be empty)
	Quantity  int    // order_items.quantity
	UnitPrice int64  // order_items.unit_price
}

// Address is a UK postal address captured for shipped orders and adoption
// welcome packs.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	County   string `json:"county,omitempty"`
	Postcode string `json:"postcode"`
	Country  string `json:"country,omitempty"`
}

// Order is a shop purchase: products, gift vouchers and animal adoptions
// paid for in one hosted checkout session.
//
// Fields mirror the orders table; amounts are pence and TotalAmount always
// equals Subtotal + ShippingCost.
type Order struct {
	ID                    uint64      // orders.id
	Reference             string      // orders.reference
	Items                 []OrderItem // order_items rows
	DeliveryMethod        string      // orders.delivery_method
	ShippingAddress       *Address    // orders.shipping_* columns (nil for collection)
	ShippingCost          int64       // orders.shipping_cost
	Subtotal              int64       // orders.subtotal
	TotalAmount           int64       // orders.total_amount
	CustomerName          string      // orders.customer_name
	CustomerEmail         string      // orders.customer_email
	CustomerPhone         string      // orders.customer_phone (may be empty)
	StripeSessionID       string      // orders.stripe_session_id (may be empty)
	StripePaymentIntentID string      // orders.stripe_payment_intent_id (may be empty)
	Status                string      // orders.status
	CreatedAt             time.Time   // orders.created_at
	UpdatedAt             time.Time   // orders.updated_at
}
