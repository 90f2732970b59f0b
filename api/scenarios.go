/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Populates the database with a month of realistic scans that show off one
  engine behavior each. Handy for UI work and for eyeballing reports.

AVAILABLE SCENARIOS:
  late-arrival:  One late morning in an otherwise punctual month
  split-shift:   Mid-day exits with a daily permission allowance
  auto-out:      Forgotten OUT scans closed by the device at shift end
  holidays:      Company, per-worker and recurring Saturday holidays

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Apply a YAML policy through the factory
 3. Create workers
 4. Add a month of scans, with the scenario's exceptions

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "split-shift"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ApplyPolicy
  - factory/policy.go: Policy document schema
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
	"github.com/warp/attendance-engine/store/sqlite"
)

var errUnknownScenario = errors.New("unknown scenario")

// Every scenario fills the same month.
const scenarioFrom, scenarioTo = "2025-09-01", "2025-09-30"

var scenarios = []ScenarioDTO{
	{
		ID:          "late-arrival",
		Name:        "Late Arrival",
		Description: "Punctual month with a single 15 minute late arrival",
		Period:      scenarioFrom + ".." + scenarioTo,
	},
	{
		ID:          "split-shift",
		Name:        "Split Shift",
		Description: "Mid-day exits absorbed by a 30 minute permission allowance",
		Period:      scenarioFrom + ".." + scenarioTo,
	},
	{
		ID:          "auto-out",
		Name:        "Auto-Out",
		Description: "Forgotten OUT scans closed automatically at shift end",
		Period:      scenarioFrom + ".." + scenarioTo,
	},
	{
		ID:          "holidays",
		Name:        "Holidays",
		Description: "Company holiday, a holiday for one worker and recurring Saturdays off",
		Period:      scenarioFrom + ".." + scenarioTo,
	},
}

const scenarioPolicy = `
shifts:
  - name: general
    work_start: "09:00"
    work_end: "19:00"
    lunch_start: "13:00"
    lunch_end: "14:00"
  - name: evening
    work_start: "14:00"
    work_end: "22:00"
    lunch_start: "18:00"
    lunch_end: "18:30"
breaks:
  - name: tea
    from: "16:00"
    to: "16:15"
    considered: true
`

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "late-arrival":
		load = h.loadLateArrivalScenario
	case "split-shift":
		load = h.loadSplitShiftScenario
	case "auto-out":
		load = h.loadAutoOutScenario
	case "holidays":
		load = h.loadHolidaysScenario
	default:
		return fmt.Errorf("%w: %q", errUnknownScenario, id)
	}

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	opts, err := h.PolicyFactory.ParseYAML([]byte(scenarioPolicy))
	if err != nil {
		return err
	}
	if err := h.ApplyPolicy(ctx, opts); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	if err := load(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	h.Logger.Info("scenario loaded", "scenario", id)
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadLateArrivalScenario(ctx context.Context) error {
	worker := productivity.Worker{ID: "w-100", Name: "Asha Rao", Salary: generic.NewMoneyFromInt(30000), Batch: "general"}
	return h.seedMonth(ctx, worker, dayPlan{in: "09:00 AM", out: "07:00 PM"}, map[string][]scan{
		"2025-09-02": {{"09:15 AM", true, false}, {"07:00 PM", false, false}},
	})
}

func (h *Handler) loadSplitShiftScenario(ctx context.Context) error {
	settings := productivity.DefaultSettings()
	settings.PermissionTimeMinutes = 30
	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	worker := productivity.Worker{ID: "w-200", Name: "Vikram Shah", Salary: generic.NewMoneyFromInt(45000), Batch: "general"}
	return h.seedMonth(ctx, worker, dayPlan{in: "09:00 AM", out: "07:00 PM"}, map[string][]scan{
		// 20 minute bank run, fully absorbed.
		"2025-09-03": {
			{"09:00 AM", true, false}, {"11:00 AM", false, false},
			{"11:20 AM", true, false}, {"07:00 PM", false, false},
		},
		// 75 minute doctor visit, 45 minutes charged.
		"2025-09-10": {
			{"09:00 AM", true, false}, {"03:00 PM", false, false},
			{"04:15 PM", true, false}, {"07:00 PM", false, false},
		},
	})
}

func (h *Handler) loadAutoOutScenario(ctx context.Context) error {
	worker := productivity.Worker{ID: "w-300", Name: "Meera Iyer", Salary: generic.NewMoneyFromInt(26000), Batch: "evening"}
	return h.seedMonth(ctx, worker, dayPlan{in: "02:00 PM", out: "10:00 PM"}, map[string][]scan{
		"2025-09-05": {{"02:00 PM", true, false}, {"10:00 PM", false, true}},
		"2025-09-18": {{"06:45 PM", true, false}, {"10:00 PM", false, true}},
	})
}

func (h *Handler) loadHolidaysScenario(ctx context.Context) error {
	opts, err := h.PolicyFactory.ParseYAML([]byte(`
holidays:
  - id: ganesh-chaturthi
    date: "2025-09-08"
    description: Ganesh Chaturthi
  - id: w-401-wedding
    date: "2025-09-15"
    description: Wedding leave
    applies_to: specific
    workers: [w-401]
  - id: second-saturday
    date: "2025-09-13"
    description: Second Saturday
    recurrence: FREQ=MONTHLY;BYDAY=+2SA
`))
	if err != nil {
		return err
	}
	for _, hol := range opts.Holidays {
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}

	for _, worker := range []productivity.Worker{
		{ID: "w-401", Name: "Ravi Kumar", Salary: generic.NewMoneyFromInt(32000), Batch: "general"},
		{ID: "w-402", Name: "Sara Thomas", Salary: generic.NewMoneyFromInt(32000), Batch: "general"},
	} {
		if err := h.seedMonth(ctx, worker, dayPlan{in: "09:00 AM", out: "07:00 PM"}, nil); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

type scan struct {
	time     string
	presence bool
	auto     bool
}

// dayPlan is the default pair of scans for a normal working day.
type dayPlan struct {
	in, out string
}

// seedMonth saves the worker and scans every non-Sunday of the scenario
// month. Days listed in overrides use those scans instead. Days that are a
// holiday for the worker are left empty.
func (h *Handler) seedMonth(ctx context.Context, worker productivity.Worker, plan dayPlan, overrides map[string][]scan) error {
	if err := h.Store.SaveWorker(ctx, worker); err != nil {
		return err
	}

	period, err := generic.NewPeriod(scenarioFrom, scenarioTo)
	if err != nil {
		return err
	}
	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		return err
	}
	calendar, err := generic.NewHolidayCalendar(period, holidays)
	if err != nil {
		return err
	}

	for _, day := range period.Days() {
		if day.IsSunday() || calendar.IsHolidayForWorker(day, worker.ID) {
			continue
		}
		scans, ok := overrides[day.String()]
		if !ok {
			scans = []scan{{plan.in, true, false}, {plan.out, false, false}}
		}
		for _, s := range scans {
			_, err := h.Store.AddPunch(ctx, sqlite.Punch{
				WorkerID: worker.ID,
				AttendanceRecord: productivity.AttendanceRecord{
					Date:            day.String(),
					Time:            s.time,
					Presence:        s.presence,
					IsAutoGenerated: s.auto,
				},
			})
			if err != nil {
				return fmt.Errorf("seed %s on %s: %w", worker.ID, day, err)
			}
		}
	}
	return nil
}
