/*
calendar.go - Working-day computation

PURPOSE:
  Pure calendar arithmetic: how many chargeable days sit between two dates,
  given weekends, fixed public holidays and half-day boundary flags.

HOLIDAY MODEL:
  Public holidays are a fixed set of month/day pairs, the same every year.
  Movable holidays (Easter Monday, Ascension, Pentecost) are deliberately
  NOT modeled. The table is the French fixed set used by the surrounding
  business suite.

HALF-DAY RULES:
  A counted day contributes 1 day, except:
  - the start date with StartHalfDay set contributes 0.5 (afternoon only)
  - the end date with EndHalfDay set contributes 0.5 (morning only)
  - a single-day request with BOTH flags set contributes 0.5, not 0.
    Summing both subtractions on the same day would wrongly zero the day,
    so that combination is special-cased below.

SEE ALSO:
  - service.go: Calls CalculateWorkingDays when creating requests
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holiday is a fixed public holiday (same month/day every year).
type Holiday struct {
	Month time.Month
	Day   int
	Name  string
}

// fixedHolidays is the static public holiday table.
var fixedHolidays = []Holiday{
	{time.January, 1, "Jour de l'An"},
	{time.May, 1, "Fête du Travail"},
	{time.May, 8, "Victoire 1945"},
	{time.July, 14, "Fête Nationale"},
	{time.August, 15, "Assomption"},
	{time.November, 1, "Toussaint"},
	{time.November, 11, "Armistice"},
	{time.December, 25, "Noël"},
}

var (
	oneDay  = decimal.NewFromInt(1)
	halfDay = decimal.New(5, -1) // 0.5
)

// PublicHolidays returns the fixed holiday table resolved into concrete
// dates for the given year.
func PublicHolidays(year int) []time.Time {
	dates := make([]time.Time, 0, len(fixedHolidays))
	for _, h := range fixedHolidays {
		dates = append(dates, time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC))
	}
	return dates
}

// FixedHolidayTable returns the static month/day holiday definitions.
func FixedHolidayTable() []Holiday {
	out := make([]Holiday, len(fixedHolidays))
	copy(out, fixedHolidays)
	return out
}

// IsPublicHoliday reports whether the date is a fixed public holiday.
func IsPublicHoliday(date time.Time) bool {
	for _, h := range fixedHolidays {
		if date.Month() == h.Month && date.Day() == h.Day {
			return true
		}
	}
	return false
}

// IsWorkingDay reports whether the date is chargeable: not a weekend and,
// when excludeHolidays is set, not a fixed public holiday.
func IsWorkingDay(date time.Time, excludeHolidays bool) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if excludeHolidays && IsPublicHoliday(date) {
		return false
	}
	return true
}

// CalculateWorkingDays computes the number of chargeable days in
// [start, end] inclusive. Returns zero when end is before start.
//
// The function is pure and deterministic: same inputs, same output, no
// side effects.
func CalculateWorkingDays(start, end time.Time, startHalfDay, endHalfDay, excludeHolidays bool) decimal.Decimal {
	start = dateOnly(start)
	end = dateOnly(end)

	if end.Before(start) {
		return decimal.Zero
	}

	days := decimal.Zero
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		if !IsWorkingDay(cur, excludeHolidays) {
			continue
		}
		switch {
		case cur.Equal(start) && cur.Equal(end) && startHalfDay && endHalfDay:
			// Single-day request with both half-day flags: exactly half a
			// day, never zero.
			days = days.Add(halfDay)
		case cur.Equal(start) && startHalfDay:
			days = days.Add(halfDay)
		case cur.Equal(end) && endHalfDay:
			days = days.Add(halfDay)
		default:
			days = days.Add(oneDay)
		}
	}

	return days
}

// dateOnly strips the time-of-day component, keeping the calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
