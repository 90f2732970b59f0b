// Package memory provides in-memory implementations of the engine's stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	workers   map[generic.WorkerID]productivity.Worker
	records   map[generic.WorkerID][]productivity.AttendanceRecord
	shifts    map[generic.ShiftName]productivity.ShiftConfig
	breaks    map[string]productivity.BreakInterval
	holidays  map[string]generic.Holiday
	settings  productivity.Settings
	snapshots map[snapshotKey]productivity.Snapshot
}

type snapshotKey struct {
	Worker generic.WorkerID
	Start  string
	End    string
}

var (
	_ productivity.WorkerStore   = (*Store)(nil)
	_ productivity.RecordStore   = (*Store)(nil)
	_ productivity.SettingsStore = (*Store)(nil)
	_ productivity.SnapshotStore = (*Store)(nil)
	_ generic.HolidayStore       = (*Store)(nil)
	_ generic.HolidayWriter      = (*Store)(nil)
)

func New() *Store {
	return &Store{
		workers:   make(map[generic.WorkerID]productivity.Worker),
		records:   make(map[generic.WorkerID][]productivity.AttendanceRecord),
		shifts:    make(map[generic.ShiftName]productivity.ShiftConfig),
		breaks:    make(map[string]productivity.BreakInterval),
		holidays:  make(map[string]generic.Holiday),
		settings:  productivity.DefaultSettings(),
		snapshots: make(map[snapshotKey]productivity.Snapshot),
	}
}

// =============================================================================
// WORKERS AND RECORDS
// =============================================================================

func (m *Store) SaveWorker(_ context.Context, w productivity.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = w
	return nil
}

func (m *Store) GetWorker(_ context.Context, id generic.WorkerID) (productivity.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workers[id]
	if !ok {
		return productivity.Worker{}, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, id)
	}
	return w, nil
}

func (m *Store) ListWorkers(_ context.Context) ([]productivity.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	workers := make([]productivity.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers, nil
}

// AddRecords appends raw scans for a worker. Append-only.
func (m *Store) AddRecords(_ context.Context, worker generic.WorkerID, records ...productivity.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[worker] = append(m.records[worker], records...)
}

// ListRecords filters by date only; malformed dates are passed through so
// the engine reports them.
func (m *Store) ListRecords(_ context.Context, worker generic.WorkerID, period generic.Period) ([]productivity.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []productivity.AttendanceRecord
	for _, r := range m.records[worker] {
		if d, err := generic.ParseDate(r.Date); err == nil && !period.Contains(d) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Store) SaveShift(_ context.Context, s productivity.ShiftConfig) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.Name] = s
	return nil
}

func (m *Store) ListShifts(_ context.Context) ([]productivity.ShiftConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shifts := make([]productivity.ShiftConfig, 0, len(m.shifts))
	for _, s := range m.shifts {
		shifts = append(shifts, s)
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].Name < shifts[j].Name })
	return shifts, nil
}

func (m *Store) SaveBreakInterval(_ context.Context, b productivity.BreakInterval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breaks[b.Name] = b
	return nil
}

func (m *Store) ListBreakIntervals(_ context.Context) ([]productivity.BreakInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	breaks := make([]productivity.BreakInterval, 0, len(m.breaks))
	for _, b := range m.breaks {
		breaks = append(breaks, b)
	}
	sort.Slice(breaks, func(i, j int) bool { return breaks[i].From < breaks[j].From })
	return breaks, nil
}

func (m *Store) GetSettings(_ context.Context) (productivity.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *Store) SaveSettings(_ context.Context, s productivity.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Store) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Store) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return generic.ErrEntityNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Store) ListHolidays(_ context.Context) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	holidays := make([]generic.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		holidays = append(holidays, h)
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (m *Store) SaveSnapshot(_ context.Context, snap productivity.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[keyOf(snap.WorkerID, snap.Period)] = snap
	return nil
}

func (m *Store) GetSnapshot(_ context.Context, worker generic.WorkerID, period generic.Period) (*productivity.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[keyOf(worker, period)]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *Store) ListSnapshots(_ context.Context, worker generic.WorkerID) ([]productivity.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var snaps []productivity.Snapshot
	for k, s := range m.snapshots {
		if k.Worker == worker {
			snaps = append(snaps, s)
		}
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Period.Start.After(snaps[j].Period.Start) })
	return snaps, nil
}

func keyOf(worker generic.WorkerID, p generic.Period) snapshotKey {
	return snapshotKey{Worker: worker, Start: p.Start.String(), End: p.End.String()}
}
