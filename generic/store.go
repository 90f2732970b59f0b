/*
store.go - Persistence interfaces for calendar data

PURPOSE:
  Defines the boundary between the engine and wherever holidays live.
  The engine never filters holidays by worker at the store level; it gets
  the whole calendar and re-checks applicability per worker itself.

KEY INTERFACES:
  HolidayStore:  Read side used by every calculation
  HolidayWriter: Admin-side mutations

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: In-memory for testing

SEE ALSO:
  - holiday.go: Holiday and Audience
  - productivity/service.go: Worker, record and settings stores
*/
package generic

import "context"

// HolidayStore returns every holiday in the calendar, regardless of audience.
type HolidayStore interface {
	ListHolidays(ctx context.Context) ([]Holiday, error)
}

// HolidayWriter manages the calendar. Delete of an unknown id returns
// ErrEntityNotFound.
type HolidayWriter interface {
	SaveHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}
