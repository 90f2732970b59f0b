package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func september(t *testing.T) generic.Period {
	t.Helper()
	p, err := generic.NewPeriod("2025-09-01", "2025-09-30")
	require.NoError(t, err)
	return p
}

func TestWorkers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	w := productivity.Worker{ID: "w-1", Name: "Asha", Salary: generic.MustParseMoney("30000.50"), Batch: "general"}
	require.NoError(t, s.SaveWorker(ctx, w))

	got, err := s.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "30000.50", got.Salary.String())
	assert.Equal(t, generic.ShiftName("general"), got.Batch)

	w.Name = "Asha R."
	require.NoError(t, s.SaveWorker(ctx, w))
	all, err := s.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Asha R.", all[0].Name)

	_, err = s.GetWorker(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrWorkerNotFound)
}

func TestWorkers_CorruptSalary(t *testing.T) {
	// GIVEN: A stored salary that is not a number
	// THEN: Reads fail instead of paying zero
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveWorker(ctx, productivity.Worker{ID: "w-1", Name: "Asha", Salary: generic.NewMoneyFromInt(100)}))
	_, err := s.db.ExecContext(ctx, "UPDATE workers SET salary = 'n/a' WHERE id = ?", "w-1")
	require.NoError(t, err)

	_, err = s.GetWorker(ctx, "w-1")
	assert.ErrorContains(t, err, "w-1")

	_, err = s.ListWorkers(ctx)
	assert.Error(t, err)
}

func TestPunches(t *testing.T) {
	// GIVEN: A worker with scans in September and October
	// WHEN: Listing September
	// THEN: Only September scans come back, dates normalized, times untouched
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveWorker(ctx, productivity.Worker{ID: "w-1", Name: "Asha", Salary: generic.NewMoneyFromInt(100)}))

	for _, rec := range []productivity.AttendanceRecord{
		{Date: "2025-09-02T00:00:00Z", Time: "09:15:00 AM", Presence: true},
		{Date: "2025-09-02", Time: "19:00", Presence: false},
		{Date: "2025-10-01", Time: "09:00 AM", Presence: true, IsAutoGenerated: true},
	} {
		_, err := s.AddPunch(ctx, Punch{WorkerID: "w-1", AttendanceRecord: rec})
		require.NoError(t, err)
	}

	records, err := s.ListRecords(ctx, "w-1", september(t))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-09-02", records[0].Date)
	assert.Equal(t, "09:15:00 AM", records[0].Time)
	assert.Equal(t, "19:00", records[1].Time)

	_, err = s.AddPunch(ctx, Punch{WorkerID: "ghost", AttendanceRecord: productivity.AttendanceRecord{Date: "2025-09-02", Time: "09:00"}})
	assert.ErrorIs(t, err, generic.ErrWorkerNotFound)

	_, err = s.AddPunch(ctx, Punch{WorkerID: "w-1", AttendanceRecord: productivity.AttendanceRecord{Date: "2/9/2025", Time: "09:00"}})
	assert.ErrorIs(t, err, generic.ErrMalformedTime)
}

func TestAddPunches_AllOrNothing(t *testing.T) {
	// GIVEN: A batch whose second insert fails on a duplicate ID
	// WHEN: The batch is stored
	// THEN: The first punch is rolled back too
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveWorker(ctx, productivity.Worker{ID: "w-1", Name: "Asha", Salary: generic.NewMoneyFromInt(100)}))

	rec := productivity.AttendanceRecord{Date: "2025-09-02", Time: "09:00", Presence: true}
	_, err := s.AddPunches(ctx, []Punch{
		{ID: "p-1", WorkerID: "w-1", AttendanceRecord: rec},
		{ID: "p-1", WorkerID: "w-1", AttendanceRecord: rec},
	})
	require.Error(t, err)

	records, err := s.ListRecords(ctx, "w-1", september(t))
	require.NoError(t, err)
	assert.Empty(t, records)

	stored, err := s.AddPunches(ctx, []Punch{
		{WorkerID: "w-1", AttendanceRecord: rec},
		{WorkerID: "w-1", AttendanceRecord: productivity.AttendanceRecord{Date: "2025-09-02T00:00:00Z", Time: "19:00", Presence: false}},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "2025-09-02", stored[1].Date)
	assert.NotEmpty(t, stored[0].ID)
}

func TestDeleteWorker_CascadesPunches(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveWorker(ctx, productivity.Worker{ID: "w-1", Name: "Asha", Salary: generic.NewMoneyFromInt(100)}))
	_, err := s.AddPunch(ctx, Punch{WorkerID: "w-1", AttendanceRecord: productivity.AttendanceRecord{Date: "2025-09-02", Time: "09:00", Presence: true}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteWorker(ctx, "w-1"))

	records, err := s.ListRecords(ctx, "w-1", september(t))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.ErrorIs(t, s.DeleteWorker(ctx, "w-1"), generic.ErrEntityNotFound)
}

func TestShiftsAndBreaks(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	shift, err := productivity.NewShiftConfig("general", "09:00", "19:00", "13:00", "14:00", true)
	require.NoError(t, err)
	require.NoError(t, s.SaveShift(ctx, shift))

	shifts, err := s.ListShifts(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, shift, shifts[0])

	assert.ErrorIs(t, s.SaveShift(ctx, productivity.ShiftConfig{Name: "bad", WorkStart: 600, WorkEnd: 540}), generic.ErrInvalidShift)

	tea, err := productivity.NewBreakInterval("tea", "16:00", "16:15", false)
	require.NoError(t, err)
	require.NoError(t, s.SaveBreakInterval(ctx, tea))
	breaks, err := s.ListBreakIntervals(ctx)
	require.NoError(t, err)
	require.Len(t, breaks, 1)
	assert.Equal(t, tea, breaks[0])

	require.NoError(t, s.DeleteShift(ctx, "general"))
	assert.ErrorIs(t, s.DeleteBreakInterval(ctx, "lunch"), generic.ErrEntityNotFound)
}

func TestSettings_DefaultThenSaved(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, productivity.DefaultSettings(), got)

	want := productivity.Settings{ConsiderLunch: true, DeductSalary: false, PermissionTimeMinutes: 20, DuplicateScanWindow: 2}
	require.NoError(t, s.SaveSettings(ctx, want))
	got, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestHolidays(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveHoliday(ctx, generic.Holiday{
		ID: "h-all", Date: generic.NewTimePoint(2025, 8, 15), Description: "Independence Day",
		Audience: generic.AllWorkers{}, Recurrence: "FREQ=YEARLY",
	}))
	require.NoError(t, s.SaveHoliday(ctx, generic.Holiday{
		ID: "h-some", Date: generic.NewTimePoint(2025, 9, 3), Audience: generic.NewSpecificWorkers("w-1", "w-2"),
	}))

	holidays, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)

	byID := map[string]generic.Holiday{}
	for _, h := range holidays {
		byID[h.ID] = h
	}
	assert.Equal(t, "FREQ=YEARLY", byID["h-all"].Recurrence)
	assert.True(t, byID["h-all"].AppliesTo("anyone"))
	assert.True(t, byID["h-some"].AppliesTo("w-2"))
	assert.False(t, byID["h-some"].AppliesTo("w-3"))

	require.NoError(t, s.DeleteHoliday(ctx, "h-all"))
	assert.ErrorIs(t, s.DeleteHoliday(ctx, "h-all"), generic.ErrEntityNotFound)
}

func TestSnapshots_ReplacePerPeriod(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveWorker(ctx, productivity.Worker{ID: "w-1", Name: "Asha", Salary: generic.NewMoneyFromInt(100)}))
	period := september(t)

	first := productivity.Snapshot{WorkerID: "w-1", Period: period, Reason: productivity.SnapshotMonthEnd}
	first.Result.Summary.FinalSalary = generic.MustParseMoney("100.00")
	require.NoError(t, s.SaveSnapshot(ctx, first))

	second := first
	second.Reason = productivity.SnapshotManual
	second.Result.Summary.FinalSalary = generic.MustParseMoney("90.00")
	require.NoError(t, s.SaveSnapshot(ctx, second))

	got, err := s.GetSnapshot(ctx, "w-1", period)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, productivity.SnapshotManual, got.Reason)
	assert.Equal(t, "90.00", got.Result.Summary.FinalSalary.String())
	assert.False(t, got.TakenAt.IsZero())

	all, err := s.ListSnapshots(ctx, "w-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveWorker(ctx, productivity.Worker{ID: "w-1", Name: "Asha", Salary: generic.NewMoneyFromInt(100)}))

	require.NoError(t, s.Reset(ctx))

	workers, err := s.ListWorkers(ctx)
	require.NoError(t, err)
	assert.Empty(t, workers)
}
