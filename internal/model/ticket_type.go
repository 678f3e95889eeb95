package model

import "time"

// TicketType describes an admission ticket sold by the park.  Prices are
// stored in pence and split into a weekday rate and a weekend/holiday rate.
// Bookings snapshot the resolved unit price per line, so a ticket type must
// never be mutated in a way that rewrites historical bookings.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name (Adult, Child, Family, Concession...).
//  Description   – optional display description.
//  WeekdayPrice  – pence charged on standard weekdays.
//  WeekendPrice  – pence charged on weekends, bank and school holidays.
//  MaxPerBooking – maximum quantity of this type in a single booking.
//  Occupancy     – visitors one unit admits for capacity counting; 0 means
//                  unset, in which case the legacy name-based rule applies.
//  DisplayOrder  – sort order in the booking widget.
//  Active        – whether the type is currently purchasable.
type TicketType struct {
	ID            uint64    // ticket_types.id
	Name          string    // ticket_types.name
	Description   string    // ticket_types.description
	WeekdayPrice  int64     // ticket_types.weekday_price
	WeekendPrice  int64     // ticket_types.weekend_price
	MaxPerBooking int       // ticket_types.max_per_booking
	Occupancy     int       // ticket_types.occupancy
	DisplayOrder  int       // ticket_types.display_order
	Active        bool      // ticket_types.active
	CreatedAt     time.Time // ticket_types.created_at
	UpdatedAt     time.Time // ticket_types.updated_at
}
