// Package pricing resolves ticket selections against the active catalog into
// priced booking lines.  All arithmetic is in integer pence; the resolver
// never touches floating point, so totals cannot drift from the per-line
// sums.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/rutlandfarmpark/booking-api/internal/calendar"
	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// ErrEmptySelection is returned when, after dropping zero-quantity entries,
// no ticket line remains.
var ErrEmptySelection = errors.New("no tickets selected")

// UnknownTicketTypeError reports a requested ticket type that is not in the
// active catalog.
type UnknownTicketTypeError struct {
	TicketTypeID uint64
}

func (e *UnknownTicketTypeError) Error() string {
	return fmt.Sprintf("unknown ticket type: %d", e.TicketTypeID)
}

// QuantityLimitError reports a requested quantity above a ticket type's
// per-booking cap.  It names the offending type and its limit so the caller
// can correct the input.
type QuantityLimitError struct {
	TicketName string
	Limit      int
}

func (e *QuantityLimitError) Error() string {
	return fmt.Sprintf("maximum %d %s tickets per booking", e.Limit, e.TicketName)
}

// Selection is one requested (ticket type, quantity) pair.
type Selection struct {
	TicketTypeID uint64
	Quantity     int
}

// Line is a priced selection.  UnitPrice is the snapshot taken at resolution
// time; it already reflects the weekday or weekend/holiday tier.
type Line struct {
	TicketType model.TicketType
	Quantity   int
	UnitPrice  int64
}

// Subtotal returns the line amount in pence.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Quote is the result of resolving a selection for a date.
type Quote struct {
	Lines       []Line
	Total       int64
	HolidayRate bool
}

// Resolve prices the selections for the given visit date.  Zero-quantity
// entries are dropped before any validation, matching the booking widget's
// habit of sending every catalog row.  The unit price per line is the
// weekend price when holiday pricing applies to the date, the weekday price
// otherwise.
func Resolve(cal *calendar.Calendar, date time.Time, selections []Selection, catalog []model.TicketType) (Quote, error) {
	byID := make(map[uint64]model.TicketType, len(catalog))
	for _, tt := range catalog {
		byID[tt.ID] = tt
	}

	holiday := cal.IsHolidayPricing(date)
	quote := Quote{HolidayRate: holiday}

	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		tt, ok := byID[sel.TicketTypeID]
		if !ok {
			return Quote{}, &UnknownTicketTypeError{TicketTypeID: sel.TicketTypeID}
		}
		if sel.Quantity > tt.MaxPerBooking {
			return Quote{}, &QuantityLimitError{TicketName: tt.Name, Limit: tt.MaxPerBooking}
		}

		unit := tt.WeekdayPrice
		if holiday {
			unit = tt.WeekendPrice
		}
		line := Line{TicketType: tt, Quantity: sel.Quantity, UnitPrice: unit}
		quote.Lines = append(quote.Lines, line)
		quote.Total += line.Subtotal()
	}

	if len(quote.Lines) == 0 {
		return Quote{}, ErrEmptySelection
	}
	return quote, nil
}
