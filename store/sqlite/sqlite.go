/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every collaborator the engine reads from (workers, punches,
  shifts, breaks, holidays, settings) plus report snapshots, using SQLite.
  In production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  productivity.WorkerStore:   Worker lookup
  productivity.RecordStore:   Raw punches per worker and period
  productivity.SettingsStore: Shifts, break intervals, engine switches
  productivity.SnapshotStore: Frozen report results
  generic.HolidayStore:       Holiday calendar
  generic.HolidayWriter:      Holiday administration

KEY TABLES:
  workers:              Salary and assigned shift ("batch")
  attendance_records:   Raw IN/OUT scans, never rewritten by the engine
  shifts:               Work and lunch windows
  break_intervals:      Named breaks outside lunch
  holidays:             Calendar with audience and optional RRULE
  settings:             Single JSON row of engine switches
  productivity_reports: Snapshot per worker and period

INDEXES:
  - idx_records_worker_date: Record fetch for one worker and range (hot path)
  - idx_reports_unique: One snapshot per worker and period

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := productivity.NewService(store, store, store, store)

SEE ALSO:
  - productivity/service.go: Interface definitions
  - generic/store.go: Holiday interfaces
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ productivity.WorkerStore   = (*Store)(nil)
	_ productivity.RecordStore   = (*Store)(nil)
	_ productivity.SettingsStore = (*Store)(nil)
	_ productivity.SnapshotStore = (*Store)(nil)
	_ generic.HolidayStore       = (*Store)(nil)
	_ generic.HolidayWriter      = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		salary TEXT NOT NULL,
		batch TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Raw scans as delivered by the capture devices
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		presence BOOLEAN NOT NULL,
		is_auto_generated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_worker_date
		ON attendance_records(worker_id, date);

	CREATE TABLE IF NOT EXISTS shifts (
		name TEXT PRIMARY KEY,
		work_start TEXT NOT NULL,
		work_end TEXT NOT NULL,
		lunch_start TEXT NOT NULL,
		lunch_end TEXT NOT NULL,
		consider_lunch BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS break_intervals (
		name TEXT PRIMARY KEY,
		from_time TEXT NOT NULL,
		to_time TEXT NOT NULL,
		considered BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		applies_to TEXT NOT NULL DEFAULT 'all',
		workers_json TEXT,
		recurrence TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS productivity_reports (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		reason TEXT NOT NULL,
		result_json TEXT NOT NULL,
		taken_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_unique
		ON productivity_reports(worker_id, period_start, period_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKER STORE (productivity.WorkerStore interface)
// =============================================================================

// SaveWorker inserts or updates a worker.
func (s *Store) SaveWorker(ctx context.Context, w productivity.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO workers (id, name, salary, batch, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			salary = excluded.salary,
			batch = excluded.batch
	`

	_, err := s.db.ExecContext(ctx, query,
		w.ID, w.Name, w.Salary.Value.String(), w.Batch,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save worker: %w", err)
	}
	return nil
}

// GetWorker retrieves a worker by ID.
func (s *Store) GetWorker(ctx context.Context, id generic.WorkerID) (productivity.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var w productivity.Worker
	var salary string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, salary, batch FROM workers WHERE id = ?", id,
	).Scan(&w.ID, &w.Name, &salary, &w.Batch)

	if errors.Is(err, sql.ErrNoRows) {
		return productivity.Worker{}, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, id)
	}
	if err != nil {
		return productivity.Worker{}, err
	}
	if w.Salary, err = generic.ParseMoney(salary); err != nil {
		return productivity.Worker{}, fmt.Errorf("worker %s: %w", w.ID, err)
	}
	return w, nil
}

// ListWorkers returns all workers ordered by name.
func (s *Store) ListWorkers(ctx context.Context) ([]productivity.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, salary, batch FROM workers ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []productivity.Worker
	for rows.Next() {
		var w productivity.Worker
		var salary string
		if err := rows.Scan(&w.ID, &w.Name, &salary, &w.Batch); err != nil {
			return nil, err
		}
		if w.Salary, err = generic.ParseMoney(salary); err != nil {
			return nil, fmt.Errorf("worker %s: %w", w.ID, err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// DeleteWorker removes a worker and, through the foreign key, their punches.
func (s *Store) DeleteWorker(ctx context.Context, id generic.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return expectRow(s.db.ExecContext(ctx, "DELETE FROM workers WHERE id = ?", id))
}

// =============================================================================
// RECORD STORE (productivity.RecordStore interface)
// =============================================================================

// Punch is a stored attendance record.
type Punch struct {
	ID       string
	WorkerID generic.WorkerID
	productivity.AttendanceRecord
	CreatedAt time.Time
}

// AddPunch stores a raw scan. The date is normalized to YYYY-MM-DD so range
// queries can compare strings; the time is stored exactly as received.
func (s *Store) AddPunch(ctx context.Context, p Punch) (Punch, error) {
	stored, err := s.AddPunches(ctx, []Punch{p})
	if err != nil {
		return Punch{}, err
	}
	return stored[0], nil
}

// AddPunches stores a batch of scans in one transaction: either every punch
// is written or none is.
func (s *Store) AddPunches(ctx context.Context, punches []Punch) ([]Punch, error) {
	stored := make([]Punch, 0, len(punches))
	for _, p := range punches {
		date, err := generic.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: punch date %q", generic.ErrMalformedTime, p.Date)
		}
		p.Date = date.String()
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = time.Now().UTC()
		stored = append(stored, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, p := range stored {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO attendance_records (id, worker_id, date, time, presence, is_auto_generated, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.WorkerID, p.Date, p.Time, p.Presence, p.IsAutoGenerated,
			p.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			if isForeignKeyError(err) {
				return nil, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, p.WorkerID)
			}
			return nil, fmt.Errorf("failed to add punch: %w", err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit punches: %w", err)
	}
	return stored, nil
}

// ListPunches returns a worker's punches inside the period in insertion order.
func (s *Store) ListPunches(ctx context.Context, worker generic.WorkerID, period generic.Period) ([]Punch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, date, time, presence, is_auto_generated, created_at
		FROM attendance_records
		WHERE worker_id = ? AND date >= ? AND date <= ?
		ORDER BY date, rowid`,
		worker, period.Start.String(), period.End.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []Punch
	for rows.Next() {
		var p Punch
		var createdAt string
		if err := rows.Scan(&p.ID, &p.WorkerID, &p.Date, &p.Time, &p.Presence, &p.IsAutoGenerated, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// ListRecords implements productivity.RecordStore.
func (s *Store) ListRecords(ctx context.Context, worker generic.WorkerID, period generic.Period) ([]productivity.AttendanceRecord, error) {
	punches, err := s.ListPunches(ctx, worker, period)
	if err != nil {
		return nil, err
	}
	records := make([]productivity.AttendanceRecord, 0, len(punches))
	for _, p := range punches {
		records = append(records, p.AttendanceRecord)
	}
	return records, nil
}

// DeletePunch removes a single scan (admin correction).
func (s *Store) DeletePunch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return expectRow(s.db.ExecContext(ctx, "DELETE FROM attendance_records WHERE id = ?", id))
}

// =============================================================================
// SETTINGS STORE (productivity.SettingsStore interface)
// =============================================================================

// SaveShift inserts or replaces a shift by name.
func (s *Store) SaveShift(ctx context.Context, shift productivity.ShiftConfig) error {
	if err := shift.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (name, work_start, work_end, lunch_start, lunch_end, consider_lunch)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			work_start = excluded.work_start,
			work_end = excluded.work_end,
			lunch_start = excluded.lunch_start,
			lunch_end = excluded.lunch_end,
			consider_lunch = excluded.consider_lunch`,
		shift.Name,
		generic.MinutesToTime(shift.WorkStart), generic.MinutesToTime(shift.WorkEnd),
		generic.MinutesToTime(shift.LunchStart), generic.MinutesToTime(shift.LunchEnd),
		shift.ConsiderLunch,
	)
	if err != nil {
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

// ListShifts returns all shifts ordered by name.
func (s *Store) ListShifts(ctx context.Context) ([]productivity.ShiftConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, work_start, work_end, lunch_start, lunch_end, consider_lunch FROM shifts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []productivity.ShiftConfig
	for rows.Next() {
		var name, ws, we, ls, le string
		var considerLunch bool
		if err := rows.Scan(&name, &ws, &we, &ls, &le, &considerLunch); err != nil {
			return nil, err
		}
		shift, err := productivity.NewShiftConfig(name, ws, we, ls, le, considerLunch)
		if err != nil {
			return nil, fmt.Errorf("stored shift %q: %w", name, err)
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

// DeleteShift removes a shift. Workers assigned to it fall back to the default shift.
func (s *Store) DeleteShift(ctx context.Context, name generic.ShiftName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return expectRow(s.db.ExecContext(ctx, "DELETE FROM shifts WHERE name = ?", name))
}

// SaveBreakInterval inserts or replaces a break by name.
func (s *Store) SaveBreakInterval(ctx context.Context, b productivity.BreakInterval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO break_intervals (name, from_time, to_time, considered)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			from_time = excluded.from_time,
			to_time = excluded.to_time,
			considered = excluded.considered`,
		b.Name, generic.MinutesToTime(b.From), generic.MinutesToTime(b.To), b.IsBreakConsider,
	)
	if err != nil {
		return fmt.Errorf("failed to save break interval: %w", err)
	}
	return nil
}

// ListBreakIntervals returns all breaks ordered by start time.
func (s *Store) ListBreakIntervals(ctx context.Context) ([]productivity.BreakInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, from_time, to_time, considered FROM break_intervals ORDER BY from_time, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breaks []productivity.BreakInterval
	for rows.Next() {
		var name, from, to string
		var considered bool
		if err := rows.Scan(&name, &from, &to, &considered); err != nil {
			return nil, err
		}
		b, err := productivity.NewBreakInterval(name, from, to, considered)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}

func (s *Store) DeleteBreakInterval(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return expectRow(s.db.ExecContext(ctx, "DELETE FROM break_intervals WHERE name = ?", name))
}

const engineSettingsKey = "engine"

// GetSettings returns the stored switches, or productivity.DefaultSettings
// when none were saved yet.
func (s *Store) GetSettings(ctx context.Context) (productivity.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value_json FROM settings WHERE key = ?", engineSettingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return productivity.DefaultSettings(), nil
	}
	if err != nil {
		return productivity.Settings{}, err
	}

	var settings productivity.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return productivity.Settings{}, fmt.Errorf("corrupt settings row: %w", err)
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings productivity.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json`,
		engineSettingsKey, string(raw),
	)
	return err
}

// =============================================================================
// HOLIDAY STORE (generic.HolidayStore / generic.HolidayWriter interfaces)
// =============================================================================

// SaveHoliday inserts or updates a holiday. Missing ids are generated.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	appliesTo := generic.AudienceAll
	var workersJSON sql.NullString
	if sw, ok := h.Audience.(generic.SpecificWorkers); ok {
		appliesTo = generic.AudienceSpecific
		raw, err := json.Marshal(sw.Workers())
		if err != nil {
			return err
		}
		workersJSON = sql.NullString{String: string(raw), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, description, applies_to, workers_json, recurrence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			description = excluded.description,
			applies_to = excluded.applies_to,
			workers_json = excluded.workers_json,
			recurrence = excluded.recurrence`,
		h.ID, h.Date.String(), h.Description, string(appliesTo), workersJSON,
		nullString(h.Recurrence), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// ListHolidays returns the whole calendar ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, description, applies_to, workers_json, recurrence FROM holidays ORDER BY date, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var date, appliesTo string
		var workersJSON, recurrence sql.NullString
		if err := rows.Scan(&h.ID, &date, &h.Description, &appliesTo, &workersJSON, &recurrence); err != nil {
			return nil, err
		}
		h.Date, err = generic.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		var workers []generic.WorkerID
		if workersJSON.Valid {
			if err := json.Unmarshal([]byte(workersJSON.String), &workers); err != nil {
				return nil, fmt.Errorf("holiday %s workers: %w", h.ID, err)
			}
		}
		if h.Audience, err = generic.NewAudience(appliesTo, workers); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		h.Recurrence = recurrence.String
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// DeleteHoliday removes a holiday.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return expectRow(s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id))
}

// =============================================================================
// SNAPSHOT STORE (productivity.SnapshotStore interface)
// =============================================================================

// SaveSnapshot stores a report, replacing any earlier one for the same
// worker and period.
func (s *Store) SaveSnapshot(ctx context.Context, snap productivity.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	raw, err := json.Marshal(snap.Result)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO productivity_reports (id, worker_id, period_start, period_end, reason, result_json, taken_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, period_start, period_end) DO UPDATE SET
			id = excluded.id,
			reason = excluded.reason,
			result_json = excluded.result_json,
			taken_at = excluded.taken_at`,
		snap.ID, snap.WorkerID, snap.Period.Start.String(), snap.Period.End.String(),
		string(snap.Reason), string(raw), snap.TakenAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns nil, nil when the worker has no snapshot for the period.
func (s *Store) GetSnapshot(ctx context.Context, worker generic.WorkerID, period generic.Period) (*productivity.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, period_start, period_end, reason, result_json, taken_at
		FROM productivity_reports
		WHERE worker_id = ? AND period_start = ? AND period_end = ?`,
		worker, period.Start.String(), period.End.String(),
	)
	if err != nil {
		return nil, err
	}
	snaps, err := scanSnapshots(rows)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[0], nil
}

// ListSnapshots returns a worker's snapshots, newest period first.
func (s *Store) ListSnapshots(ctx context.Context, worker generic.WorkerID) ([]productivity.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, period_start, period_end, reason, result_json, taken_at
		FROM productivity_reports
		WHERE worker_id = ?
		ORDER BY period_start DESC`,
		worker,
	)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]productivity.Snapshot, error) {
	defer rows.Close()

	var snaps []productivity.Snapshot
	for rows.Next() {
		var snap productivity.Snapshot
		var start, end, reason, raw, takenAt string
		if err := rows.Scan(&snap.ID, &snap.WorkerID, &start, &end, &reason, &raw, &takenAt); err != nil {
			return nil, err
		}
		period, err := generic.NewPeriod(start, end)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &snap.Result); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
		}
		snap.Period = period
		snap.Reason = productivity.SnapshotReason(reason)
		snap.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Reset deletes everything. Used by demos and tests.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"attendance_records", "workers", "shifts", "break_intervals", "holidays", "settings", "productivity_reports"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// expectRow turns a DELETE that touched nothing into ErrEntityNotFound.
func expectRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrEntityNotFound
	}
	return nil
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
