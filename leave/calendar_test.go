package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Toumasadio2/PME-SI/leave"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func days(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// WORKING DAY TESTS
// =============================================================================

func TestIsWorkingDay_Weekend(t *testing.T) {
	// Saturday and Sunday are never working days
	sat := date(2025, time.June, 7)
	sun := date(2025, time.June, 8)

	assert.False(t, leave.IsWorkingDay(sat, true))
	assert.False(t, leave.IsWorkingDay(sun, true))
	assert.False(t, leave.IsWorkingDay(sat, false), "weekend stays off even when holidays count")
}

func TestIsWorkingDay_PublicHoliday(t *testing.T) {
	// July 14 2025 falls on a Monday
	bastille := date(2025, time.July, 14)

	assert.True(t, leave.IsPublicHoliday(bastille))
	assert.False(t, leave.IsWorkingDay(bastille, true))
	assert.True(t, leave.IsWorkingDay(bastille, false), "holiday counts when exclusion is off")
}

func TestPublicHolidays_EveryYearHasEight(t *testing.T) {
	for _, year := range []int{2024, 2025, 2026} {
		assert.Len(t, leave.PublicHolidays(year), 8)
	}
}

// =============================================================================
// WORKING DAY COUNT TESTS
// =============================================================================

func TestCalculateWorkingDays_FullWeek(t *testing.T) {
	// GIVEN: Monday through Friday, no holidays in range
	// THEN: 5 working days

	mon := date(2025, time.June, 2)
	fri := date(2025, time.June, 6)

	got := leave.CalculateWorkingDays(mon, fri, false, false, true)
	assert.True(t, days("5").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_SpanningWeekend(t *testing.T) {
	// GIVEN: Monday through next Monday
	// THEN: Weekend days do not count, 6 working days

	mon := date(2025, time.June, 2)
	nextMon := date(2025, time.June, 9)

	got := leave.CalculateWorkingDays(mon, nextMon, false, false, true)
	assert.True(t, days("6").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_ExcludesHoliday(t *testing.T) {
	// GIVEN: The full week containing July 14 2025 (a Monday)
	// THEN: Holiday is skipped, 4 working days

	mon := date(2025, time.July, 14)
	fri := date(2025, time.July, 18)

	got := leave.CalculateWorkingDays(mon, fri, false, false, true)
	assert.True(t, days("4").Equal(got), "got %s", got)

	// Holidays count when exclusion is off
	got = leave.CalculateWorkingDays(mon, fri, false, false, false)
	assert.True(t, days("5").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_StartHalfDay(t *testing.T) {
	// GIVEN: A three-day request starting with a half afternoon
	// THEN: First day counts 0.5, total 2.5

	mon := date(2025, time.June, 2)
	wed := date(2025, time.June, 4)

	got := leave.CalculateWorkingDays(mon, wed, true, false, true)
	assert.True(t, days("2.5").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_EndHalfDay(t *testing.T) {
	mon := date(2025, time.June, 2)
	wed := date(2025, time.June, 4)

	got := leave.CalculateWorkingDays(mon, wed, false, true, true)
	assert.True(t, days("2.5").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_BothHalfDays(t *testing.T) {
	// GIVEN: A three-day request with half days at both ends
	// THEN: 0.5 + 1 + 0.5 = 2

	mon := date(2025, time.June, 2)
	wed := date(2025, time.June, 4)

	got := leave.CalculateWorkingDays(mon, wed, true, true, true)
	assert.True(t, days("2").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_SingleDayBothHalves(t *testing.T) {
	// GIVEN: A one-day request flagged as both start and end half day
	// THEN: Counts once as a half day, 0.5 not 0

	mon := date(2025, time.June, 2)

	got := leave.CalculateWorkingDays(mon, mon, true, true, true)
	assert.True(t, days("0.5").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_SingleFullDay(t *testing.T) {
	mon := date(2025, time.June, 2)

	got := leave.CalculateWorkingDays(mon, mon, false, false, true)
	assert.True(t, days("1").Equal(got), "got %s", got)
}

func TestCalculateWorkingDays_WeekendOnly(t *testing.T) {
	// GIVEN: Saturday through Sunday
	// THEN: Zero working days

	sat := date(2025, time.June, 7)
	sun := date(2025, time.June, 8)

	got := leave.CalculateWorkingDays(sat, sun, false, false, true)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestCalculateWorkingDays_EndBeforeStart(t *testing.T) {
	// GIVEN: An inverted period
	// THEN: Zero, not negative

	mon := date(2025, time.June, 2)
	fri := date(2025, time.May, 30)

	got := leave.CalculateWorkingDays(mon, fri, false, false, true)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestCalculateWorkingDays_HalfDayFlagOnWeekendIgnored(t *testing.T) {
	// GIVEN: Friday through Monday with end half day on the Monday
	// THEN: Half day applies to the Monday, weekend contributes nothing

	fri := date(2025, time.June, 6)
	mon := date(2025, time.June, 9)

	got := leave.CalculateWorkingDays(fri, mon, false, true, true)
	assert.True(t, days("1.5").Equal(got), "got %s", got)
}
