package model

import "time"

// FolderStats holds the transfer-folder accounting for one flow address,
// taken before and after cleanup.
type FolderStats struct {
	FilesBefore  int     `json:"files_before_delete"`
	FilesAfter   int     `json:"files_after_delete"`
	AvgFileBytes float64 `json:"avg_file_bytes"`
}

// RunInfo carries the configured parameters and side observations of one
// test run, recorded by the trigger and merged into the report.
type RunInfo struct {
	StartedAt         time.Time              `json:"started_at"`
	IntervalOnMillis  int                    `json:"interval_on_ms"`
	IntervalOffMillis int                    `json:"interval_off_ms"`
	Repeats           int                    `json:"repeats"`
	CaptureDuration   float64                `json:"capture_duration_s"`
	Folders           map[string]FolderStats `json:"folders,omitempty"`
}

// FlowReport is the metrics breakdown for a single detected flow address.
type FlowReport struct {
	Address string      `json:"address"`
	Metrics FlowMetrics `json:"metrics"`
}

// Report is the structured payload produced by one analysis run and
// consumed by the renderer and the persistence writer.
type Report struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Run         RunInfo              `json:"run"`
	Transfers   []CorrelatedTransfer `json:"transfers"`
	Overall     FlowMetrics          `json:"overall"`
	PerFlow     []FlowReport         `json:"per_flow"`

	// Summary is nil when no transfers were correlated; the summary
	// step is skipped entirely in that case.
	Summary *SummaryStats `json:"summary,omitempty"`
}

// Writer persists a finished report to some store.
type Writer interface {
	Write(report *Report) error
}
