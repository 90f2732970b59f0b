/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Worker:
    CreateWorkerRequest (responses use productivity.Worker directly)

  Punches:
    PunchRequest, AddPunchesRequest, PunchDTO

  Settings:
    SettingsRequest (shifts, breaks and holidays reuse the factory documents)

  Reports:
    RunReportsRequest, SnapshotDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags. Handlers run them through
  PolicyFactory.Check so the custom "clock" tag is available everywhere.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: ShiftDocument, BreakDocument, HolidayDocument
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// WORKERS
// =============================================================================

// CreateWorkerRequest creates or updates a worker.
type CreateWorkerRequest struct {
	ID     string        `json:"id" validate:"required,max=64"`
	Name   string        `json:"name" validate:"required"`
	Salary generic.Money `json:"salary"`
	Batch  string        `json:"batch,omitempty"`
}

// =============================================================================
// PUNCHES
// =============================================================================

// PunchRequest is one raw device scan.
type PunchRequest struct {
	Date            string `json:"date" validate:"required"`
	Time            string `json:"time" validate:"required"`
	Presence        *bool  `json:"presence" validate:"required"`
	IsAutoGenerated bool   `json:"isAutoGenerated,omitempty"`
}

// AddPunchesRequest uploads a batch of scans for one worker.
type AddPunchesRequest struct {
	Punches []PunchRequest `json:"punches" validate:"required,min=1,dive"`
}

// PunchDTO is a stored scan.
type PunchDTO struct {
	ID              string `json:"id"`
	WorkerID        string `json:"workerId"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Display         string `json:"display"` // normalized "HH:MM AM|PM"
	Presence        bool   `json:"presence"`
	IsAutoGenerated bool   `json:"isAutoGenerated"`
	CreatedAt       string `json:"createdAt"`
}

func toPunchDTO(p sqlite.Punch) PunchDTO {
	return PunchDTO{
		ID:              p.ID,
		WorkerID:        string(p.WorkerID),
		Date:            p.Date,
		Time:            p.Time,
		Display:         generic.FormatTime(generic.TolerantParseAttendanceTime(p.Time)),
		Presence:        p.Presence,
		IsAutoGenerated: p.IsAutoGenerated,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsRequest replaces the company-wide switches. DeductSalary defaults
// to true when omitted.
type SettingsRequest struct {
	ConsiderLunch         bool    `json:"considerLunch"`
	DeductSalary          *bool   `json:"deductSalary"`
	PermissionTimeMinutes float64 `json:"permissionTimeMinutes" validate:"gte=0,lte=1440"`
	DuplicateScanWindow   float64 `json:"duplicateScanWindow" validate:"gte=0,lte=60"`
}

func (r SettingsRequest) toSettings() productivity.Settings {
	s := productivity.DefaultSettings()
	s.ConsiderLunch = r.ConsiderLunch
	if r.DeductSalary != nil {
		s.DeductSalary = *r.DeductSalary
	}
	s.PermissionTimeMinutes = generic.Minutes(r.PermissionTimeMinutes)
	s.DuplicateScanWindow = generic.Minutes(r.DuplicateScanWindow)
	return s
}

// =============================================================================
// REPORTS
// =============================================================================

// RunReportsRequest snapshots reports for one worker, or for everyone when
// WorkerID is empty.
type RunReportsRequest struct {
	WorkerID string `json:"workerId,omitempty"`
	From     string `json:"from" validate:"required,datetime=2006-01-02"`
	To       string `json:"to" validate:"required,datetime=2006-01-02"`
}

// SnapshotDTO is a stored report. Result is only filled when a single
// snapshot is requested.
type SnapshotDTO struct {
	ID       string               `json:"id"`
	WorkerID string               `json:"workerId"`
	From     string               `json:"from"`
	To       string               `json:"to"`
	Reason   string               `json:"reason"`
	TakenAt  string               `json:"takenAt"`
	Summary  productivity.Summary `json:"summary"`
	Result   *productivity.Result `json:"result,omitempty"`
}

func toSnapshotDTO(s productivity.Snapshot, withResult bool) SnapshotDTO {
	dto := SnapshotDTO{
		ID:       s.ID,
		WorkerID: string(s.WorkerID),
		From:     s.Period.Start.String(),
		To:       s.Period.End.String(),
		Reason:   string(s.Reason),
		TakenAt:  s.TakenAt.Format(time.RFC3339),
		Summary:  s.Result.Summary,
	}
	if withResult {
		result := s.Result
		dto.Result = &result
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Period      string `json:"period"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
