package calendar

import "time"

func mustDate(value string) time.Time {
	t, err := time.Parse(dayKey, value)
	if err != nil {
		panic(err)
	}
	return t
}

// UK2026 returns the holiday tables for 2026: the English bank holidays and
// an approximation of the state school holiday periods.  These need
// refreshing every year; a stale table silently misclassifies dates, so the
// refresh is an operational task tracked alongside the annual price review.
func UK2026() Year {
	return Year{
		Year: 2026,
		BankHolidays: []time.Time{
			mustDate("2026-01-01"), // New Year's Day
			mustDate("2026-04-03"), // Good Friday
			mustDate("2026-04-06"), // Easter Monday
			mustDate("2026-05-04"), // Early May Bank Holiday
			mustDate("2026-05-25"), // Spring Bank Holiday
			mustDate("2026-08-31"), // Summer Bank Holiday
			mustDate("2026-12-25"), // Christmas Day
			mustDate("2026-12-28"), // Boxing Day (substitute)
		},
		SchoolHolidays: []DayRange{
			{Month: time.February, From: 14, To: 22}, // February half-term
			{Month: time.March, From: 28, To: 31},    // Easter holidays
			{Month: time.April, From: 1, To: 12},
			{Month: time.May, From: 23, To: 31}, // May half-term
			{Month: time.July, From: 18, To: 31}, // summer holidays
			{Month: time.August, From: 1, To: 31},
			{Month: time.September, From: 1, To: 2},
			{Month: time.October, From: 24, To: 30}, // October half-term
			{Month: time.December, From: 19, To: 31}, // Christmas holidays
		},
	}
}
