// Package calendar classifies visit dates for pricing and opening decisions.
// All functions are pure date math over the calendar day of the supplied
// time; the time-of-day component is ignored.  Holiday data is injected per
// year rather than hardcoded in the logic, so keeping the tables current is
// an annual data update, not a code change.  A date in a year with no loaded
// tables is classified as neither a bank holiday nor a school holiday.
package calendar

import "time"

// DayRange describes a span of days within a single month, bounds inclusive.
// School holiday periods are approximated as a small set of these ranges.
type DayRange struct {
	Month time.Month
	From  int
	To    int
}

// Year bundles the holiday data for one calendar year: the official bank
// holiday dates and the approximate school holiday periods.
type Year struct {
	Year           int
	BankHolidays   []time.Time
	SchoolHolidays []DayRange
}

// Calendar answers date classification queries against a set of yearly
// holiday tables.
type Calendar struct {
	years map[int]yearData
}

type yearData struct {
	bank   map[string]struct{} // keyed by "2006-01-02"
	school []DayRange
}

const dayKey = "2006-01-02"

// New builds a Calendar from one or more yearly tables.  Later entries for
// the same year replace earlier ones.
func New(years ...Year) *Calendar {
	c := &Calendar{years: make(map[int]yearData, len(years))}
	for _, y := range years {
		d := yearData{bank: make(map[string]struct{}, len(y.BankHolidays)), school: y.SchoolHolidays}
		for _, bh := range y.BankHolidays {
			d.bank[bh.Format(dayKey)] = struct{}{}
		}
		c.years[y.Year] = d
	}
	return c
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func (c *Calendar) IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBankHoliday reports whether the date's calendar day matches a bank
// holiday in the loaded tables.
func (c *Calendar) IsBankHoliday(date time.Time) bool {
	y, ok := c.years[date.Year()]
	if !ok {
		return false
	}
	_, hit := y.bank[date.Format(dayKey)]
	return hit
}

// IsSchoolHoliday reports whether the date falls within one of the loaded
// school holiday ranges for its year.
func (c *Calendar) IsSchoolHoliday(date time.Time) bool {
	y, ok := c.years[date.Year()]
	if !ok {
		return false
	}
	month := date.Month()
	day := date.Day()
	for _, r := range y.school {
		if r.Month == month && day >= r.From && day <= r.To {
			return true
		}
	}
	return false
}

// IsHolidayPricing reports whether the weekend/holiday price tier applies:
// weekends, bank holidays and school holidays all share that tier.
func (c *Calendar) IsHolidayPricing(date time.Time) bool {
	return c.IsWeekend(date) || c.IsBankHoliday(date) || c.IsSchoolHoliday(date)
}

// IsClosedDay reports whether the park is closed on the date.  The park
// closes on Mondays outside bank and school holidays, and always on
// Christmas Day and New Year's Day regardless of weekday.
func (c *Calendar) IsClosedDay(date time.Time) bool {
	if date.Weekday() == time.Monday && !c.IsBankHoliday(date) && !c.IsSchoolHoliday(date) {
		return true
	}
	if date.Month() == time.December && date.Day() == 25 {
		return true
	}
	if date.Month() == time.January && date.Day() == 1 {
		return true
	}
	return false
}

// StartOfDay truncates t to midnight in its own location.  Past-date checks
// compare against the start of the current day in the venue's local time, so
// same-day bookings remain allowed.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
