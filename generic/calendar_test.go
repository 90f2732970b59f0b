package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// PERIOD
// =============================================================================

func TestPeriod_September2025(t *testing.T) {
	p, err := generic.NewPeriod("2025-09-01", "2025-09-30")
	require.NoError(t, err)

	days := p.Days()
	require.Len(t, days, 30)
	assert.Equal(t, "2025-09-01", days[0].String())
	assert.Equal(t, "2025-09-30", days[29].String())
	assert.Equal(t, 30, p.TotalDays())
	assert.Equal(t, 4, p.CountSundays())
	assert.Equal(t, 26, p.WorkingDays())
}

func TestPeriod_Invalid(t *testing.T) {
	_, err := generic.NewPeriod("2025-09-30", "2025-09-01")
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)

	_, err = generic.NewPeriod("yesterday", "2025-09-01")
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestPeriod_SingleDay(t *testing.T) {
	p, err := generic.NewPeriod("2025-09-07", "2025-09-07")
	require.NoError(t, err)

	assert.Equal(t, 1, p.TotalDays())
	assert.Equal(t, 0, p.WorkingDays())
}

func TestPeriod_PreviousMonth(t *testing.T) {
	p := generic.MonthPeriod(generic.NewTimePoint(2025, time.January, 15))

	prev := p.PreviousMonth()

	assert.Equal(t, "2024-12-01", prev.Start.String())
	assert.Equal(t, "2024-12-31", prev.End.String())
}

func TestParseDate_AcceptsTimestamps(t *testing.T) {
	d, err := generic.ParseDate("2025-09-02T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-02", d.String())

	d, err = generic.ParseDate(" 2025-09-02 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(generic.NewTimePoint(2025, time.September, 2)))
}

func TestParseDate_RejectsTrailingJunk(t *testing.T) {
	for _, s := range []string{"2025-09-03garbage", "2025-09-03/10", "2025-9-3"} {
		_, err := generic.ParseDate(s)
		assert.Error(t, err, s)
	}

	d, err := generic.ParseDate("2025-09-03 08:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-03", d.String())
}

func TestParseMoney(t *testing.T) {
	m, err := generic.ParseMoney("30000.50")
	require.NoError(t, err)
	assert.Equal(t, "30000.50", m.String())

	_, err = generic.ParseMoney("thirty thousand")
	assert.Error(t, err)
	assert.Panics(t, func() { generic.MustParseMoney("") })
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func sept(t *testing.T) generic.Period {
	t.Helper()
	p, err := generic.NewPeriod("2025-09-01", "2025-09-30")
	require.NoError(t, err)
	return p
}

func TestHoliday_Audience(t *testing.T) {
	all := generic.Holiday{ID: "h-1", Date: generic.NewTimePoint(2025, 9, 3), Audience: generic.AllWorkers{}}
	specific := generic.Holiday{ID: "h-2", Date: generic.NewTimePoint(2025, 9, 4), Audience: generic.NewSpecificWorkers("A", "C")}

	assert.True(t, all.AppliesTo("B"))
	assert.True(t, specific.AppliesTo("A"))
	assert.False(t, specific.AppliesTo("B"), "unknown ids simply do not match")
}

func TestNewAudience(t *testing.T) {
	a, err := generic.NewAudience("all", nil)
	require.NoError(t, err)
	assert.Equal(t, generic.AudienceAll, a.Kind())

	a, err = generic.NewAudience("specific", []generic.WorkerID{"A"})
	require.NoError(t, err)
	assert.Equal(t, generic.AudienceSpecific, a.Kind())
	assert.True(t, a.Includes("A"))

	_, err = generic.NewAudience("department", nil)
	assert.Error(t, err)
}

func TestHolidayCalendar_PerWorker(t *testing.T) {
	// GIVEN: A company holiday, a holiday for A only, and one on a Sunday
	// WHEN: Counting holidays per worker
	// THEN: Sunday holidays are not counted, specific ones only for A

	cal, err := generic.NewHolidayCalendar(sept(t), []generic.Holiday{
		{ID: "h-1", Date: generic.NewTimePoint(2025, 9, 3), Audience: generic.AllWorkers{}},
		{ID: "h-2", Date: generic.NewTimePoint(2025, 9, 4), Audience: generic.NewSpecificWorkers("A")},
		{ID: "h-3", Date: generic.NewTimePoint(2025, 9, 7), Audience: generic.AllWorkers{}},
		{ID: "h-4", Date: generic.NewTimePoint(2025, 10, 2), Audience: generic.AllWorkers{}},
	})
	require.NoError(t, err)

	assert.True(t, cal.IsHolidayForWorker(generic.NewTimePoint(2025, 9, 4), "A"))
	assert.False(t, cal.IsHolidayForWorker(generic.NewTimePoint(2025, 9, 4), "B"))
	assert.Equal(t, 2, cal.CountHolidaysForWorker("A"))
	assert.Equal(t, 1, cal.CountHolidaysForWorker("B"))

	h, ok := cal.HolidayFor(generic.NewTimePoint(2025, 9, 3), "B")
	require.True(t, ok)
	assert.Equal(t, "h-1", h.ID)
}

func TestHolidayCalendar_Recurring(t *testing.T) {
	// GIVEN: Independence Day recorded once in 2024 as yearly,
	//        and a Saturday-off rule starting Sep 6 2025
	aug, err := generic.NewPeriod("2025-08-01", "2025-08-31")
	require.NoError(t, err)

	yearly := generic.Holiday{ID: "h-ind", Date: generic.NewTimePoint(2024, 8, 15), Recurrence: "FREQ=YEARLY"}
	dates, err := yearly.Occurrences(aug)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "2025-08-15", dates[0].String())

	saturdays := generic.Holiday{ID: "h-sat", Date: generic.NewTimePoint(2025, 9, 6), Recurrence: "FREQ=WEEKLY;BYDAY=SA", Audience: generic.AllWorkers{}}
	cal, err := generic.NewHolidayCalendar(sept(t), []generic.Holiday{saturdays})
	require.NoError(t, err)
	assert.Equal(t, 4, cal.CountHolidaysForWorker("anyone"))
	assert.True(t, cal.IsHolidayForWorker(generic.NewTimePoint(2025, 9, 27), "anyone"))
	assert.False(t, cal.IsHolidayForWorker(generic.NewTimePoint(2025, 9, 5), "anyone"))
}

func TestHolidayCalendar_BadRecurrence(t *testing.T) {
	_, err := generic.NewHolidayCalendar(sept(t), []generic.Holiday{
		{ID: "h-bad", Date: generic.NewTimePoint(2025, 9, 1), Recurrence: "FREQ=SOMETIMES"},
	})

	assert.Error(t, err)
}
