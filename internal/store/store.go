package store

import (
	"context"

	"github.com/sells-group/carenav/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface. Episode artifacts
// are flat files; the store only records what each run did.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, datasetDir, outputDir string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Episodes
	RecordEpisode(ctx context.Context, rec *model.EpisodeRecord) error
	ListEpisodes(ctx context.Context, runID string) ([]model.EpisodeRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
