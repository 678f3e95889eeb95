package repository

import (
	"context"
	"database/sql"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// TicketTypeRepo provides read access to the admission ticket catalog.
// Ticket types are managed in the back office; the public API only ever
// lists the active ones.
type TicketTypeRepo struct {
	db *sql.DB
}

// NewTicketTypeRepo returns a new TicketTypeRepo bound to the given database.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{db: db} }

// ListActive returns all active ticket types ordered for display.
func (r *TicketTypeRepo) ListActive(ctx context.Context) ([]model.TicketType, error) {
	const q = `SELECT id, name, description, weekday_price, weekend_price, max_per_booking, occupancy, display_order, active, created_at, updated_at
	           FROM ticket_types WHERE active = 1 ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TicketType
	for rows.Next() {
		var tt model.TicketType
		var desc sql.NullString
		if err := rows.Scan(&tt.ID, &tt.Name, &desc, &tt.WeekdayPrice, &tt.WeekendPrice,
			&tt.MaxPerBooking, &tt.Occupancy, &tt.DisplayOrder, &tt.Active, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
			return nil, err
		}
		tt.Description = desc.String
		out = append(out, tt)
	}
	return out, rows.Err()
}
