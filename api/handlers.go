/*
handlers.go - HTTP request handlers for the attendance engine API

PURPOSE:
  Implements the REST API endpoints. Handlers are thin: they decode and
  validate requests, call the store or the productivity service, and encode
  responses. No attendance or payroll rule lives here.

ENDPOINT GROUPS:
  Workers:   CRUD for workers (id, name, monthly salary, shift batch)
  Punches:   Raw scan upload, listing and correction
  Settings:  Shifts, break intervals, holidays and deduction switches
  Policy:    Bulk import/export of a JSON or YAML policy document
  Reports:   Live productivity report and stored month-end snapshots
  Scenarios: Demo data sets

ERROR HANDLING:
  All errors return JSON: {"error": "message", "details": "..."}
  HTTP status codes follow generic/errors.go:
  - 400: IsClientError (malformed time, period, shift, policy or body)
  - 404: IsNotFound
  - 500: Anything else

SEE ALSO:
  - server.go: Router configuration
  - dto.go: Request/response types
  - productivity/service.go: Report assembly
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
	"github.com/warp/attendance-engine/store/sqlite"
)

// maxBodyBytes bounds request bodies, including policy uploads.
const maxBodyBytes = 1 << 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	Service       *productivity.Service
	PolicyFactory *factory.PolicyFactory
	Logger        *slog.Logger

	// Now is the wall clock used for default periods and snapshot times.
	Now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler backed by a single store.
func NewHandler(store *sqlite.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:         store,
		Service:       productivity.NewService(store, store, store, store),
		PolicyFactory: factory.NewPolicyFactory(),
		Logger:        logger,
		Now:           time.Now,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all workers.
// GET /api/workers
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.ListWorkers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workers", err)
		return
	}
	if workers == nil {
		workers = []productivity.Worker{}
	}
	writeJSON(w, http.StatusOK, workers)
}

// GetWorker returns a single worker.
// GET /api/workers/{id}
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker, err := h.Store.GetWorker(r.Context(), workerParam(r))
	if err != nil {
		writeDomainError(w, "Failed to get worker", err)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

// CreateWorker creates or updates a worker.
// POST /api/workers
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Salary.IsNegative() {
		writeError(w, http.StatusBadRequest, "Salary must not be negative", nil)
		return
	}

	worker := productivity.Worker{
		ID:     generic.WorkerID(req.ID),
		Name:   req.Name,
		Salary: req.Salary,
		Batch:  generic.ShiftName(req.Batch),
	}
	if err := h.Store.SaveWorker(r.Context(), worker); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save worker", err)
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

// DeleteWorker removes a worker and their punches.
// DELETE /api/workers/{id}
func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteWorker(r.Context(), workerParam(r)); err != nil {
		writeDomainError(w, "Failed to delete worker", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// ListPunches returns a worker's raw scans in a period.
// GET /api/workers/{id}/punches?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeDomainError(w, "Invalid period", err)
		return
	}
	punches, err := h.Store.ListPunches(r.Context(), workerParam(r), period)
	if err != nil {
		writeDomainError(w, "Failed to list punches", err)
		return
	}
	dtos := make([]PunchDTO, 0, len(punches))
	for _, p := range punches {
		dtos = append(dtos, toPunchDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddPunches stores a batch of scans. Times are checked up front and the
// batch is written in one transaction, so a failed upload stores nothing.
// POST /api/workers/{id}/punches
func (h *Handler) AddPunches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workerID := workerParam(r)

	var req AddPunchesRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.Store.GetWorker(ctx, workerID); err != nil {
		writeDomainError(w, "Failed to add punches", err)
		return
	}

	for i, p := range req.Punches {
		if _, err := generic.ParseDate(p.Date); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Punch %d has an invalid date", i), err)
			return
		}
		if _, err := generic.ParseAttendanceTime(p.Time); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Punch %d has an invalid time", i), err)
			return
		}
	}

	batch := make([]sqlite.Punch, 0, len(req.Punches))
	for _, p := range req.Punches {
		batch = append(batch, sqlite.Punch{
			WorkerID: workerID,
			AttendanceRecord: productivity.AttendanceRecord{
				Date:            p.Date,
				Time:            p.Time,
				Presence:        *p.Presence,
				IsAutoGenerated: p.IsAutoGenerated,
			},
		})
	}
	stored, err := h.Store.AddPunches(ctx, batch)
	if err != nil {
		writeDomainError(w, "Failed to add punches", err)
		return
	}
	dtos := make([]PunchDTO, 0, len(stored))
	for _, p := range stored {
		dtos = append(dtos, toPunchDTO(p))
	}

	h.Logger.Info("punches added", "worker", workerID, "count", len(dtos))
	writeJSON(w, http.StatusCreated, dtos)
}

// DeletePunch removes a single scan, e.g. an accidental double tap.
// DELETE /api/punches/{id}
func (h *Handler) DeletePunch(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePunch(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete punch", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetProductivity computes a live report for one worker.
// GET /api/workers/{id}/productivity?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetProductivity(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeDomainError(w, "Invalid period", err)
		return
	}
	result, err := h.Service.Report(r.Context(), workerParam(r), period)
	if err != nil {
		writeDomainError(w, "Failed to calculate productivity", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListSnapshots returns a worker's stored reports without the per-day rows.
// GET /api/workers/{id}/snapshots
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.Store.ListSnapshots(r.Context(), workerParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list snapshots", err)
		return
	}
	dtos := make([]SnapshotDTO, 0, len(snaps))
	for _, s := range snaps {
		dtos = append(dtos, toSnapshotDTO(s, false))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSnapshot returns one stored report in full.
// GET /api/workers/{id}/snapshot?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeDomainError(w, "Invalid period", err)
		return
	}
	snap, err := h.Store.GetSnapshot(r.Context(), workerParam(r), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get snapshot", err)
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "Snapshot not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(*snap, true))
}

// RunReports computes and stores reports on demand.
// POST /api/reports/run
func (h *Handler) RunReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunReportsRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := generic.NewPeriod(req.From, req.To)
	if err != nil {
		writeDomainError(w, "Invalid period", err)
		return
	}

	var workers []generic.WorkerID
	if req.WorkerID != "" {
		workers = []generic.WorkerID{generic.WorkerID(req.WorkerID)}
	} else {
		all, err := h.Store.ListWorkers(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list workers", err)
			return
		}
		for _, wk := range all {
			workers = append(workers, wk.ID)
		}
	}

	dtos := make([]SnapshotDTO, 0, len(workers))
	for _, id := range workers {
		snap, err := h.TakeSnapshot(ctx, id, period, productivity.SnapshotManual)
		if err != nil {
			writeDomainError(w, fmt.Sprintf("Failed to run report for %s", id), err)
			return
		}
		dtos = append(dtos, toSnapshotDTO(snap, false))
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// TakeSnapshot computes a worker's report and stores it, replacing any
// earlier snapshot for the same period.
func (h *Handler) TakeSnapshot(ctx context.Context, worker generic.WorkerID, period generic.Period, reason productivity.SnapshotReason) (productivity.Snapshot, error) {
	result, err := h.Service.Report(ctx, worker, period)
	if err != nil {
		return productivity.Snapshot{}, err
	}
	snap := productivity.Snapshot{
		ID:       uuid.NewString(),
		WorkerID: worker,
		Period:   period,
		TakenAt:  h.Now().UTC(),
		Reason:   reason,
		Result:   result,
	}
	if err := h.Store.SaveSnapshot(ctx, snap); err != nil {
		return productivity.Snapshot{}, err
	}
	h.Logger.Info("report snapshot saved",
		"worker", worker,
		"period", period.String(),
		"reason", reason,
		"final_salary", result.Summary.FinalSalary.String(),
	)
	return snap, nil
}

// =============================================================================
// SHIFT AND BREAK HANDLERS
// =============================================================================

// ListShifts returns all shift batches.
// GET /api/shifts
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Store.ListShifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	doc := h.PolicyFactory.ToDocument(productivity.Options{Batches: shifts})
	writeJSON(w, http.StatusOK, nonNil(doc.Shifts))
}

// SaveShift creates or replaces a shift batch.
// POST /api/shifts
func (h *Handler) SaveShift(w http.ResponseWriter, r *http.Request) {
	var req factory.ShiftDocument
	if !h.decode(w, r, &req) {
		return
	}
	shift, err := productivity.NewShiftConfig(req.Name, req.WorkStart, req.WorkEnd, req.LunchStart, req.LunchEnd, req.ConsiderLunch)
	if err != nil {
		writeDomainError(w, "Invalid shift", err)
		return
	}
	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		writeDomainError(w, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// DeleteShift removes a shift batch.
// DELETE /api/shifts/{name}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteShift(r.Context(), generic.ShiftName(chi.URLParam(r, "name"))); err != nil {
		writeDomainError(w, "Failed to delete shift", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListBreaks returns all break intervals.
// GET /api/breaks
func (h *Handler) ListBreaks(w http.ResponseWriter, r *http.Request) {
	breaks, err := h.Store.ListBreakIntervals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list breaks", err)
		return
	}
	doc := h.PolicyFactory.ToDocument(productivity.Options{Intervals: breaks})
	writeJSON(w, http.StatusOK, nonNil(doc.Breaks))
}

// SaveBreak creates or replaces a break interval.
// POST /api/breaks
func (h *Handler) SaveBreak(w http.ResponseWriter, r *http.Request) {
	var req factory.BreakDocument
	if !h.decode(w, r, &req) {
		return
	}
	b, err := productivity.NewBreakInterval(req.Name, req.From, req.To, req.Considered)
	if err != nil {
		writeDomainError(w, "Invalid break", err)
		return
	}
	if err := h.Store.SaveBreakInterval(r.Context(), b); err != nil {
		writeDomainError(w, "Failed to save break", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// DeleteBreak removes a break interval.
// DELETE /api/breaks/{name}
func (h *Handler) DeleteBreak(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteBreakInterval(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeDomainError(w, "Failed to delete break", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}
	dtos := make([]factory.HolidayDocument, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, factory.HolidayToDocument(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday creates or replaces a holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req factory.HolidayDocument
	if !h.decode(w, r, &req) {
		return
	}
	holiday, err := factory.ParseHoliday(req)
	if err != nil {
		writeDomainError(w, "Invalid holiday", err)
		return
	}
	if _, err := holiday.Occurrences(generic.MonthPeriod(holiday.Date)); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recurrence rule", err)
		return
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.HolidayToDocument(holiday))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// SETTINGS AND POLICY HANDLERS
// =============================================================================

// GetSettings returns the company-wide switches.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the company-wide switches.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !h.decode(w, r, &req) {
		return
	}
	settings := req.toSettings()
	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// ExportPolicy returns everything the engine is configured with as one
// policy document.
// GET /api/policy
func (h *Handler) ExportPolicy(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Service.Options(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToDocument(opts))
}

// ImportPolicy applies a JSON or YAML policy document. YAML is selected by
// a Content-Type containing "yaml".
// POST /api/policy
func (h *Handler) ImportPolicy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	var opts productivity.Options
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		opts, err = h.PolicyFactory.ParseYAML(body)
	} else {
		opts, err = h.PolicyFactory.ParseJSON(body)
	}
	if err != nil {
		writeDomainError(w, "Invalid policy", err)
		return
	}

	if err := h.ApplyPolicy(r.Context(), opts); err != nil {
		writeDomainError(w, "Failed to apply policy", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "applied",
		"shifts":   len(opts.Batches),
		"breaks":   len(opts.Intervals),
		"holidays": len(opts.Holidays),
	})
}

// ApplyPolicy upserts every shift, break and holiday in opts and replaces
// the settings. Existing entries not named in opts are kept.
func (h *Handler) ApplyPolicy(ctx context.Context, opts productivity.Options) error {
	for _, hol := range opts.Holidays {
		if _, err := hol.Occurrences(generic.MonthPeriod(hol.Date)); err != nil {
			return fmt.Errorf("%w: %v", generic.ErrInvalidPolicy, err)
		}
	}
	for _, s := range opts.Batches {
		if err := h.Store.SaveShift(ctx, s); err != nil {
			return err
		}
	}
	for _, b := range opts.Intervals {
		if err := h.Store.SaveBreakInterval(ctx, b); err != nil {
			return err
		}
	}
	for _, hol := range opts.Holidays {
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}
	err := h.Store.SaveSettings(ctx, productivity.Settings{
		ConsiderLunch:         opts.ConsiderLunch,
		DeductSalary:          opts.DeductSalary,
		PermissionTimeMinutes: opts.PermissionTimeMinutes,
		DuplicateScanWindow:   opts.DuplicateScanWindow,
	})
	if err != nil {
		return err
	}
	h.Logger.Info("policy applied",
		"shifts", len(opts.Batches),
		"breaks", len(opts.Intervals),
		"holidays", len(opts.Holidays),
	)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's category.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.PolicyFactory.Check(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// periodFromQuery reads ?from= and ?to=. Both missing means the current
// calendar month.
func (h *Handler) periodFromQuery(r *http.Request) (generic.Period, error) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" && to == "" {
		return generic.MonthPeriod(generic.DateOf(h.Now())), nil
	}
	if from == "" || to == "" {
		return generic.Period{}, fmt.Errorf("%w: both from and to are required", generic.ErrInvalidPeriod)
	}
	return generic.NewPeriod(from, to)
}

func workerParam(r *http.Request) generic.WorkerID {
	return generic.WorkerID(chi.URLParam(r, "id"))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
