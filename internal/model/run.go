package model

import "time"

// RunStatus represents the current state of a batch run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusProcessing RunStatus = "processing"
	RunStatusIndexing   RunStatus = "indexing"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run represents a single batch run over a dataset.
type Run struct {
	ID         string     `json:"id"`
	DatasetDir string     `json:"dataset_dir"`
	OutputDir  string     `json:"output_dir"`
	Status     RunStatus  `json:"status"`
	Result     *RunResult `json:"result,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	Episodes   int    `json:"episodes"`
	Succeeded  int    `json:"succeeded"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	IndexTotal int    `json:"index_total"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// EpisodeStatus is the terminal state of one episode within a run.
type EpisodeStatus string

const (
	EpisodeStatusSuccess EpisodeStatus = "success"
	EpisodeStatusSkipped EpisodeStatus = "skipped"
	EpisodeStatusFailed  EpisodeStatus = "failed"
)

// EpisodeRecord is the run-history row for one processed episode.
type EpisodeRecord struct {
	ID        string        `json:"id"`
	RunID     string        `json:"run_id"`
	EpisodeID string        `json:"episode_id"`
	PatientID string        `json:"patient_id"`
	Status    EpisodeStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Phases    []PhaseResult `json:"phases,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// PhaseStatus represents the outcome of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
)

// PhaseResult holds the outcome of one component run for an episode.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
