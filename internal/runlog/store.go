// Package runlog persists ingest run audit records and per-record
// upsert failures, with SQLite and Postgres backends.
package runlog

import (
	"context"

	"github.com/sells-group/recruit-cli/internal/model"
)

// RunFilter specifies criteria for listing ingest runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source model.Source    `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for ingest run bookkeeping.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, file string, source model.Source) (*model.IngestRun, error)
	CompleteRun(ctx context.Context, runID string, summary *model.UploadSummary) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.IngestRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestRun, error)

	// Failures
	AddFailure(ctx context.Context, failure model.RunFailure) error
	ListFailures(ctx context.Context, runID string) ([]model.RunFailure, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
