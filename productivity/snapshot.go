package productivity

import (
	"context"
	"time"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// SNAPSHOT - A frozen report for one worker and one period
// =============================================================================

// Snapshot stores a computed Result so payroll can read what was reported
// even after punches or settings change.
type Snapshot struct {
	ID       string
	WorkerID generic.WorkerID
	Period   generic.Period

	// When the snapshot was taken. Set by the caller; the engine has no clock.
	TakenAt time.Time

	Reason SnapshotReason
	Result Result
}

type SnapshotReason string

const (
	SnapshotMonthEnd SnapshotReason = "month_end" // scheduler
	SnapshotManual   SnapshotReason = "manual"    // admin triggered
)

// SnapshotStore persists report snapshots. Get returns nil, nil when no
// snapshot exists for that worker and period.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	GetSnapshot(ctx context.Context, worker generic.WorkerID, period generic.Period) (*Snapshot, error)
	ListSnapshots(ctx context.Context, worker generic.WorkerID) ([]Snapshot, error)
}
