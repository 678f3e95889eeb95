// Package availability decides whether a visit date can still be booked.
// The count runs fresh against the store on every check: confirmed-booking
// membership changes asynchronously as payment webhooks land, so there is
// nothing safe to cache.
//
// On store errors the check fails open: a transient database hiccup must not
// turn away legitimate bookings, so the date is reported available and the
// error is logged.  This is a business-continuity decision, not an
// oversight.
//
// Note the check is advisory only: nothing reserves capacity between this
// check and payment completion, so two near-simultaneous bookings can both
// see a free slot and slightly overbook a day.  Accepted bounded risk.
package availability

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/calendar"
	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/repository"
)

// DefaultCapacity is the venue-wide daily visitor cap used when the setting
// is absent.
const DefaultCapacity = 100

// BookingLister is the slice of the booking repository the counter needs.
type BookingLister interface {
	ListConfirmedByDate(ctx context.Context, date time.Time) ([]model.Booking, error)
}

// SettingsReader reads site-wide configuration values.
type SettingsReader interface {
	IntValue(ctx context.Context, name string) (int64, error)
}

// Result is the outcome of an availability check.  Remaining and Capacity
// are only meaningful when Counted is true; past and closed dates are
// rejected before any counting happens.
type Result struct {
	Available bool
	Remaining int
	Capacity  int
	Counted   bool
	Reason    string
}

// Service performs availability checks.
type Service struct {
	bookings BookingLister
	settings SettingsReader
	cal      *calendar.Calendar
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an availability Service.  now is the venue-local clock;
// pass time.Now bound to the venue's location in production.
func NewService(bookings BookingLister, settings SettingsReader, cal *calendar.Calendar, logger *zap.Logger, now func() time.Time) *Service {
	return &Service{bookings: bookings, settings: settings, cal: cal, logger: logger, now: now}
}

// Check reports whether the given date can be booked and how much capacity
// remains.  Dates strictly before the start of the current venue-local day
// and closed days are unavailable regardless of capacity.
func (s *Service) Check(ctx context.Context, date time.Time) Result {
	today := calendar.StartOfDay(s.now())
	if calendar.StartOfDay(date).Before(today) {
		return Result{Available: false, Reason: "Cannot book a date in the past."}
	}
	if s.cal.IsClosedDay(date) {
		return Result{Available: false, Reason: "The farm is closed on this date."}
	}

	capacity := s.capacity(ctx)

	booked := 0
	bookings, err := s.bookings.ListConfirmedByDate(ctx, date)
	if err != nil {
		// Fail open: report the full capacity as free.
		s.logger.Error("availability: listing confirmed bookings failed, failing open",
			zap.String("date", date.Format("2006-01-02")), zap.Error(err))
	} else {
		for _, b := range bookings {
			booked += b.Visitors()
		}
	}

	remaining := capacity - booked
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Available: remaining > 0,
		Remaining: remaining,
		Capacity:  capacity,
		Counted:   true,
	}
	if remaining <= 0 {
		res.Reason = "This date is fully booked."
	}
	return res
}

func (s *Service) capacity(ctx context.Context) int {
	v, err := s.settings.IntValue(ctx, repository.SettingBookingCapacity)
	if err != nil {
		if !errors.Is(err, repository.ErrSettingNotFound) {
			s.logger.Warn("availability: reading capacity setting failed, using default", zap.Error(err))
		}
		return DefaultCapacity
	}
	if v <= 0 {
		return DefaultCapacity
	}
	return int(v)
}
