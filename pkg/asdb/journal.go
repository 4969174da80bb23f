package asdb

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a journaled run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"  // finished, at least one item failed
	RunAborted   RunStatus = "aborted" // stopped before processing every item
)

// RunRecord is one batch run as kept in the run journal.
type RunRecord struct {
	ID         string
	InputDir   string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus
	Discovered int
	Excluded   int
	Skipped    int
	Imported   int
	Failed     int
	Error      string
}

// ItemRecord is one attempted item as kept in the run journal.
type ItemRecord struct {
	RunID      string
	Path       string
	Identifier string
	Checksum   string
	Outcome    Outcome
	ExitCode   int
	Duration   time.Duration
	Error      string
	RecordedAt time.Time
}

// Journal keeps a history of batch runs. It is informational only: idempotence
// is decided by the ProgressStore, never by the journal.
type Journal interface {
	StartRun(ctx context.Context, run RunRecord) error
	RecordItem(ctx context.Context, item ItemRecord) error
	FinishRun(ctx context.Context, run RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Items(ctx context.Context, runID string) ([]ItemRecord, error)
	Close() error
}
