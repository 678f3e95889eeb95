package repository

import (
	"context"
	"database/sql"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// OrderRepo provides persistence for shop orders and their line items.
// Orders follow the same two-phase discipline as bookings: created pending
// before the payment session exists, finalized by the webhook.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, reference, delivery_method, shipping_line1, shipping_line2, shipping_city,
	shipping_county, shipping_postcode, shipping_country, shipping_cost, subtotal, total_amount,
	customer_name, customer_email, customer_phone, stripe_session_id, stripe_payment_intent_id,
	status, created_at, updated_at`

// Create inserts the order and its items in one transaction, populating the
// generated IDs on the passed model.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var line1, line2, city, county, postcode, country sql.NullString
	if a := o.ShippingAddress; a != nil {
		line1 = nullable(a.Line1)
		line2 = nullable(a.Line2)
		city = nullable(a.City)
		county = nullable(a.County)
		postcode = nullable(a.Postcode)
		country = nullable(a.Country)
	}

	const ins = `INSERT INTO orders
		(reference, delivery_method, shipping_line1, shipping_line2, shipping_city, shipping_county,
		 shipping_postcode, shipping_country, shipping_cost, subtotal, total_amount,
		 customer_name, customer_email, customer_phone, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins,
		o.Reference, o.DeliveryMethod, line1, line2, city, county, postcode, country,
		o.ShippingCost, o.Subtotal, o.TotalAmount,
		o.CustomerName, o.CustomerEmail, nullable(o.CustomerPhone), o.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	if len(o.Items) > 0 {
		query := `INSERT INTO order_items (order_id, item_type, product_id, name, variant, quantity, unit_price) VALUES `
		args := make([]interface{}, 0, len(o.Items)*7)
		for i := range o.Items {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?, ?)"
			it := &o.Items[i]
			it.OrderID = o.ID
			var productID sql.NullInt64
			if it.ProductID != 0 {
				productID = sql.NullInt64{Int64: int64(it.ProductID), Valid: true}
			}
			args = append(args, it.OrderID, it.ItemType, productID, it.Name, nullable(it.Variant), it.Quantity, it.UnitPrice)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID returns an order with its items.  ErrOrderNotFound is returned
// when no row matches.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	var o model.Order
	var line1, line2, city, county, postcode, country sql.NullString
	var phone, session, intent sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.Reference, &o.DeliveryMethod,
		&line1, &line2, &city, &county, &postcode, &country,
		&o.ShippingCost, &o.Subtotal, &o.TotalAmount,
		&o.CustomerName, &o.CustomerEmail, &phone, &session, &intent,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.CustomerPhone = phone.String
	o.StripeSessionID = session.String
	o.StripePaymentIntentID = intent.String
	if line1.Valid {
		o.ShippingAddress = &model.Address{
			Line1: line1.String, Line2: line2.String, City: city.String,
			County: county.String, Postcode: postcode.String, Country: country.String,
		}
	}

	const itemsQ = `SELECT id, order_id, item_type, product_id, name, variant, quantity, unit_price
	                FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, itemsQ, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		var productID sql.NullInt64
		var variant sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemType, &productID, &it.Name, &variant, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		if productID.Valid {
			it.ProductID = uint64(productID.Int64)
		}
		it.Variant = variant.String
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// SetStripeSession attaches the hosted checkout session id to the order.
func (r *OrderRepo) SetStripeSession(ctx context.Context, id uint64, sessionID string) error {
	const q = `UPDATE orders SET stripe_session_id = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, sessionID, id)
	return err
}

// UpdateStatusFrom moves the order between statuses atomically, reporting
// whether the transition was applied.  See BookingRepo.UpdateStatusFrom.
func (r *OrderRepo) UpdateStatusFrom(ctx context.Context, id uint64, from, to string) (bool, error) {
	const q = `UPDATE orders SET status = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetPaymentIntent records the provider's payment confirmation id.
func (r *OrderRepo) SetPaymentIntent(ctx context.Context, id uint64, paymentIntentID string) error {
	const q = `UPDATE orders SET stripe_payment_intent_id = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, paymentIntentID, id)
	return err
}
