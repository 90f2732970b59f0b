/*
Package factory provides JSON/YAML to Go policy conversion.

PURPOSE:
  Converts policy documents into productivity.Options. HR defines shifts,
  breaks, holidays and deduction switches in a file or through the admin
  API, and the factory produces validated engine inputs.

DOCUMENT SCHEMA (YAML shown, JSON uses the same keys):

  shifts:
    - name: general
      work_start: "09:00"
      work_end: "19:00"
      lunch_start: "13:00"
      lunch_end: "14:00"
  breaks:
    - name: tea
      from: "16:00"
      to: "16:15"
      considered: false
  holidays:
    - date: "2025-08-15"
      description: Independence Day
      applies_to: all
      recurrence: FREQ=YEARLY
    - date: "2025-09-03"
      applies_to: specific
      workers: [w-17, w-22]
  consider_lunch: false
  deduct_salary: true
  permission_time_minutes: 30
  duplicate_scan_window: 2

KEY FEATURES:
  - Struct validation with go-playground/validator (custom "clock" tag)
  - Sensible defaults (deduct_salary defaults to true)
  - Holiday ids generated when the document leaves them out

USAGE:
  f := factory.NewPolicyFactory()
  opts, err := f.LoadFile("config/policy.yaml")

SEE ALSO:
  - productivity/policy.go: Options and ShiftConfig
  - api/handlers.go: Policy import endpoint
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// PolicyDocument is the file/API representation of a policy.
type PolicyDocument struct {
	Shifts                []ShiftDocument   `json:"shifts" yaml:"shifts" validate:"dive"`
	Breaks                []BreakDocument   `json:"breaks,omitempty" yaml:"breaks,omitempty" validate:"dive"`
	Holidays              []HolidayDocument `json:"holidays,omitempty" yaml:"holidays,omitempty" validate:"dive"`
	ConsiderLunch         bool              `json:"consider_lunch,omitempty" yaml:"consider_lunch,omitempty"`
	DeductSalary          *bool             `json:"deduct_salary,omitempty" yaml:"deduct_salary,omitempty"` // default true
	PermissionTimeMinutes float64           `json:"permission_time_minutes,omitempty" yaml:"permission_time_minutes,omitempty" validate:"gte=0,lte=1440"`
	DuplicateScanWindow   float64           `json:"duplicate_scan_window,omitempty" yaml:"duplicate_scan_window,omitempty" validate:"gte=0,lte=60"`
}

type ShiftDocument struct {
	Name          string `json:"name" yaml:"name" validate:"required"`
	WorkStart     string `json:"work_start" yaml:"work_start" validate:"required,clock"`
	WorkEnd       string `json:"work_end" yaml:"work_end" validate:"required,clock"`
	LunchStart    string `json:"lunch_start" yaml:"lunch_start" validate:"required,clock"`
	LunchEnd      string `json:"lunch_end" yaml:"lunch_end" validate:"required,clock"`
	ConsiderLunch bool   `json:"consider_lunch,omitempty" yaml:"consider_lunch,omitempty"`
}

type BreakDocument struct {
	Name       string `json:"name" yaml:"name" validate:"required"`
	From       string `json:"from" yaml:"from" validate:"required,clock"`
	To         string `json:"to" yaml:"to" validate:"required,clock"`
	Considered bool   `json:"considered,omitempty" yaml:"considered,omitempty"`
}

type HolidayDocument struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Date        string   `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	AppliesTo   string   `json:"applies_to,omitempty" yaml:"applies_to,omitempty" validate:"omitempty,oneof=all specific"`
	Workers     []string `json:"workers,omitempty" yaml:"workers,omitempty" validate:"required_if=AppliesTo specific,dive,required"`
	Recurrence  string   `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// PolicyFactory creates engine options from documents.
type PolicyFactory struct {
	validate *validator.Validate
}

func NewPolicyFactory() *PolicyFactory {
	v := validator.New()
	v.RegisterValidation("clock", validateClock)
	return &PolicyFactory{validate: v}
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := generic.TimeToMinutes(fl.Field().String())
	return err == nil
}

// ParseJSON decodes and converts a JSON policy document.
func (f *PolicyFactory) ParseJSON(data []byte) (productivity.Options, error) {
	var doc PolicyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return productivity.Options{}, fmt.Errorf("%w: failed to parse policy JSON: %v", generic.ErrInvalidPolicy, err)
	}
	return f.FromDocument(doc)
}

// ParseYAML decodes and converts a YAML policy document.
func (f *PolicyFactory) ParseYAML(data []byte) (productivity.Options, error) {
	var doc PolicyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return productivity.Options{}, fmt.Errorf("%w: failed to parse policy YAML: %v", generic.ErrInvalidPolicy, err)
	}
	return f.FromDocument(doc)
}

// LoadFile picks the decoder from the file extension (.yaml, .yml or .json).
func (f *PolicyFactory) LoadFile(path string) (productivity.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return productivity.Options{}, fmt.Errorf("read policy file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	case ".json":
		return f.ParseJSON(data)
	default:
		return productivity.Options{}, fmt.Errorf("%w: unsupported policy file %q", generic.ErrInvalidPolicy, path)
	}
}

// Validate checks the document's structure and returns one message per
// failing field.
func (f *PolicyFactory) Validate(doc PolicyDocument) error {
	if err := f.validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %s", generic.ErrInvalidPolicy, strings.Join(FieldErrors(err), "; "))
	}
	return nil
}

// Check validates an arbitrary request struct with the factory's rules,
// including the "clock" tag.
func (f *PolicyFactory) Check(v any) error {
	if err := f.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", generic.ErrInvalidInput, strings.Join(FieldErrors(err), "; "))
	}
	return nil
}

// FromDocument validates a document and builds engine options.
func (f *PolicyFactory) FromDocument(doc PolicyDocument) (productivity.Options, error) {
	if err := f.Validate(doc); err != nil {
		return productivity.Options{}, err
	}

	opts := productivity.DefaultOptions()
	opts.ConsiderLunch = doc.ConsiderLunch
	if doc.DeductSalary != nil {
		opts.DeductSalary = *doc.DeductSalary
	}
	opts.PermissionTimeMinutes = generic.Minutes(doc.PermissionTimeMinutes)
	opts.DuplicateScanWindow = generic.Minutes(doc.DuplicateScanWindow)

	seen := make(map[string]bool, len(doc.Shifts))
	for _, sd := range doc.Shifts {
		if seen[sd.Name] {
			return productivity.Options{}, fmt.Errorf("%w: duplicate shift %q", generic.ErrInvalidPolicy, sd.Name)
		}
		seen[sd.Name] = true
		shift, err := productivity.NewShiftConfig(sd.Name, sd.WorkStart, sd.WorkEnd, sd.LunchStart, sd.LunchEnd, sd.ConsiderLunch)
		if err != nil {
			return productivity.Options{}, err
		}
		opts.Batches = append(opts.Batches, shift)
	}

	for _, bd := range doc.Breaks {
		b, err := productivity.NewBreakInterval(bd.Name, bd.From, bd.To, bd.Considered)
		if err != nil {
			return productivity.Options{}, err
		}
		opts.Intervals = append(opts.Intervals, b)
	}

	for _, hd := range doc.Holidays {
		h, err := ParseHoliday(hd)
		if err != nil {
			return productivity.Options{}, err
		}
		opts.Holidays = append(opts.Holidays, h)
	}
	return opts, nil
}

// ParseHoliday converts one holiday entry. Missing ids are generated.
func ParseHoliday(hd HolidayDocument) (generic.Holiday, error) {
	date, err := generic.ParseDate(hd.Date)
	if err != nil {
		return generic.Holiday{}, fmt.Errorf("%w: holiday date %q", generic.ErrInvalidPolicy, hd.Date)
	}
	workers := make([]generic.WorkerID, 0, len(hd.Workers))
	for _, w := range hd.Workers {
		workers = append(workers, generic.WorkerID(w))
	}
	audience, err := generic.NewAudience(hd.AppliesTo, workers)
	if err != nil {
		return generic.Holiday{}, fmt.Errorf("%w: %v", generic.ErrInvalidPolicy, err)
	}
	id := hd.ID
	if id == "" {
		id = uuid.NewString()
	}
	return generic.Holiday{
		ID:          id,
		Date:        date,
		Description: hd.Description,
		Audience:    audience,
		Recurrence:  hd.Recurrence,
	}, nil
}

// ToDocument converts options back to the document form.
func (f *PolicyFactory) ToDocument(opts productivity.Options) PolicyDocument {
	deduct := opts.DeductSalary
	doc := PolicyDocument{
		ConsiderLunch:         opts.ConsiderLunch,
		DeductSalary:          &deduct,
		PermissionTimeMinutes: float64(opts.PermissionTimeMinutes),
		DuplicateScanWindow:   float64(opts.DuplicateScanWindow),
	}
	for _, s := range opts.Batches {
		doc.Shifts = append(doc.Shifts, ShiftDocument{
			Name:          string(s.Name),
			WorkStart:     clock(s.WorkStart),
			WorkEnd:       clock(s.WorkEnd),
			LunchStart:    clock(s.LunchStart),
			LunchEnd:      clock(s.LunchEnd),
			ConsiderLunch: s.ConsiderLunch,
		})
	}
	for _, b := range opts.Intervals {
		doc.Breaks = append(doc.Breaks, BreakDocument{Name: b.Name, From: clock(b.From), To: clock(b.To), Considered: b.IsBreakConsider})
	}
	for _, h := range opts.Holidays {
		doc.Holidays = append(doc.Holidays, HolidayToDocument(h))
	}
	return doc
}

// HolidayToDocument is the inverse of ParseHoliday.
func HolidayToDocument(h generic.Holiday) HolidayDocument {
	hd := HolidayDocument{
		ID:          h.ID,
		Date:        h.Date.String(),
		Description: h.Description,
		AppliesTo:   string(generic.AudienceAll),
		Recurrence:  h.Recurrence,
	}
	if sw, ok := h.Audience.(generic.SpecificWorkers); ok {
		hd.AppliesTo = string(generic.AudienceSpecific)
		for _, w := range sw.Workers() {
			hd.Workers = append(hd.Workers, string(w))
		}
	}
	return hd
}

// clock renders minutes as 24h "HH:MM".
func clock(m generic.Minutes) string {
	return generic.MinutesToTime(m)[:5]
}

// =============================================================================
// VALIDATION MESSAGES
// =============================================================================

// FieldErrors turns validator errors into readable per-field messages.
// Any other error is returned as a single message.
func FieldErrors(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "clock":
			msgs = append(msgs, fmt.Sprintf("%s must be a 24h time like 09:00", field))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date like %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation %q", field, fe.Tag()))
		}
	}
	return msgs
}
