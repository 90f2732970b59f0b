package productivity

import (
	"context"
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// COLLABORATORS - Where a calculation's inputs come from
// =============================================================================

// WorkerStore resolves workers by id.
type WorkerStore interface {
	GetWorker(ctx context.Context, id generic.WorkerID) (Worker, error)
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// RecordStore returns one worker's raw scans within a period.
type RecordStore interface {
	ListRecords(ctx context.Context, worker generic.WorkerID, period generic.Period) ([]AttendanceRecord, error)
}

// SettingsStore returns shift, break and deduction settings.
type SettingsStore interface {
	ListShifts(ctx context.Context) ([]ShiftConfig, error)
	ListBreakIntervals(ctx context.Context) ([]BreakInterval, error)
	GetSettings(ctx context.Context) (Settings, error)
}

// Settings are the company-wide switches applied to every calculation.
type Settings struct {
	ConsiderLunch         bool            `json:"considerLunch"`
	DeductSalary          bool            `json:"deductSalary"`
	PermissionTimeMinutes generic.Minutes `json:"permissionTimeMinutes"`
	DuplicateScanWindow   generic.Minutes `json:"duplicateScanWindow"`
}

func DefaultSettings() Settings {
	return Settings{DeductSalary: true}
}

// =============================================================================
// SERVICE - Fetches inputs, then runs the pure engine
// =============================================================================

// Service gathers a worker's inputs from the stores and calls CalculatePeriod.
// Retrying failed fetches is left to the caller.
type Service struct {
	Workers  WorkerStore
	Records  RecordStore
	Holidays generic.HolidayStore
	Settings SettingsStore
}

func NewService(workers WorkerStore, records RecordStore, holidays generic.HolidayStore, settings SettingsStore) *Service {
	return &Service{Workers: workers, Records: records, Holidays: holidays, Settings: settings}
}

// Options loads the calculation options shared by every worker.
func (s *Service) Options(ctx context.Context) (Options, error) {
	shifts, err := s.Settings.ListShifts(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("list shifts: %w", err)
	}
	breaks, err := s.Settings.ListBreakIntervals(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("list break intervals: %w", err)
	}
	settings, err := s.Settings.GetSettings(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("get settings: %w", err)
	}
	holidays, err := s.Holidays.ListHolidays(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("list holidays: %w", err)
	}
	return Options{
		Batches:               shifts,
		Holidays:              holidays,
		Intervals:             breaks,
		ConsiderLunch:         settings.ConsiderLunch,
		DeductSalary:          settings.DeductSalary,
		PermissionTimeMinutes: settings.PermissionTimeMinutes,
		DuplicateScanWindow:   settings.DuplicateScanWindow,
	}, nil
}

// Report computes one worker's result for the period.
func (s *Service) Report(ctx context.Context, workerID generic.WorkerID, period generic.Period) (Result, error) {
	worker, err := s.Workers.GetWorker(ctx, workerID)
	if err != nil {
		return Result{}, err
	}
	opts, err := s.Options(ctx)
	if err != nil {
		return Result{}, err
	}
	records, err := s.Records.ListRecords(ctx, workerID, period)
	if err != nil {
		return Result{}, fmt.Errorf("list records for %s: %w", workerID, err)
	}
	return CalculatePeriod(worker, records, period, opts)
}
