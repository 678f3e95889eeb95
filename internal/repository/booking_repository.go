package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// BookingRepo provides persistence for bookings and their ticket lines.
// A booking and its lines are always written together in one transaction;
// the stored total must equal the sum of the line subtotals.  Status
// transitions are guarded at the SQL level so redelivered webhook events
// cannot apply a transition twice.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, reference, date, total_amount, customer_name, customer_email,
	customer_phone, special_requirements, stripe_session_id, stripe_payment_intent_id,
	status, created_at, updated_at`

// Create inserts the booking and all of its ticket lines in a single
// transaction and populates the generated IDs on the passed model.  The
// caller sets Reference, Date, Tickets, TotalAmount and Status beforehand.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const ins = `INSERT INTO bookings
		(reference, date, total_amount, customer_name, customer_email, customer_phone, special_requirements, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins,
		b.Reference, b.Date.Format("2006-01-02"), b.TotalAmount,
		b.CustomerName, b.CustomerEmail, nullable(b.CustomerPhone), nullable(b.SpecialRequirements),
		b.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if len(b.Tickets) > 0 {
		query := `INSERT INTO booking_tickets (booking_id, ticket_type_id, ticket_name, quantity, unit_price, occupancy) VALUES `
		args := make([]interface{}, 0, len(b.Tickets)*6)
		for i := range b.Tickets {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?)"
			t := &b.Tickets[i]
			t.BookingID = b.ID
			args = append(args, t.BookingID, t.TicketTypeID, t.TicketName, t.Quantity, t.UnitPrice, t.Occupancy)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID returns a booking with its ticket lines.  ErrBookingNotFound is
// returned when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return r.getOne(ctx, q, id)
}

// GetByReference returns a booking with its ticket lines, looked up by its
// customer-facing reference.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	return r.getOne(ctx, q, ref)
}

func (r *BookingRepo) getOne(ctx context.Context, query string, arg interface{}) (*model.Booking, error) {
	var b model.Booking
	var phone, special, session, intent sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&b.ID, &b.Reference, &b.Date, &b.TotalAmount, &b.CustomerName, &b.CustomerEmail,
		&phone, &special, &session, &intent, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.CustomerPhone = phone.String
	b.SpecialRequirements = special.String
	b.StripeSessionID = session.String
	b.StripePaymentIntentID = intent.String

	tickets, err := r.ticketsFor(ctx, []uint64{b.ID})
	if err != nil {
		return nil, err
	}
	b.Tickets = tickets[b.ID]
	return &b, nil
}

// ListConfirmedByDate returns every confirmed booking for the given visit
// date with its ticket lines loaded.  The availability counter calls this on
// every check; nothing is cached because confirmed membership changes
// asynchronously through payment webhooks.
func (r *BookingRepo) ListConfirmedByDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE date = ? AND status = ?`
	rows, err := r.db.QueryContext(ctx, q, date.Format("2006-01-02"), model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	var ids []uint64
	for rows.Next() {
		var b model.Booking
		var phone, special, session, intent sql.NullString
		if err := rows.Scan(&b.ID, &b.Reference, &b.Date, &b.TotalAmount, &b.CustomerName, &b.CustomerEmail,
			&phone, &special, &session, &intent, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.CustomerPhone = phone.String
		b.SpecialRequirements = special.String
		b.StripeSessionID = session.String
		b.StripePaymentIntentID = intent.String
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	tickets, err := r.ticketsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Tickets = tickets[bookings[i].ID]
	}
	return bookings, nil
}

// ticketsFor loads the lines for a set of bookings in one query.
func (r *BookingRepo) ticketsFor(ctx context.Context, ids []uint64) (map[uint64][]model.BookingTicket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, booking_id, ticket_type_id, ticket_name, quantity, unit_price, occupancy
	          FROM booking_tickets WHERE booking_id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]model.BookingTicket, len(ids))
	for rows.Next() {
		var t model.BookingTicket
		if err := rows.Scan(&t.ID, &t.BookingID, &t.TicketTypeID, &t.TicketName, &t.Quantity, &t.UnitPrice, &t.Occupancy); err != nil {
			return nil, err
		}
		out[t.BookingID] = append(out[t.BookingID], t)
	}
	return out, rows.Err()
}

// SetStripeSession attaches the hosted checkout session id to the booking.
// Called best-effort after session creation; the webhook can still reconcile
// through the metadata even when this write fails.
func (r *BookingRepo) SetStripeSession(ctx context.Context, id uint64, sessionID string) error {
	const q = `UPDATE bookings SET stripe_session_id = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, sessionID, id)
	return err
}

// UpdateStatusFrom moves the booking from one status to another and reports
// whether the transition was applied.  The WHERE clause on the current
// status makes the operation atomic, so two concurrent deliveries of the
// same webhook event apply the transition exactly once.
func (r *BookingRepo) UpdateStatusFrom(ctx context.Context, id uint64, from, to string) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
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
func (r *BookingRepo) SetPaymentIntent(ctx context.Context, id uint64, paymentIntentID string) error {
	const q = `UPDATE bookings SET stripe_payment_intent_id = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, paymentIntentID, id)
	return err
}

// placeholders returns a comma-separated list of n SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// nullable maps an empty string to NULL for optional text columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
