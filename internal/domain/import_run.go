package domain

import "time"

// ImportRunStatus represents lifecycle states of an import run.
type ImportRunStatus string

const (
	ImportRunStatusRunning   ImportRunStatus = "RUNNING"
	ImportRunStatusCompleted ImportRunStatus = "COMPLETED"
	ImportRunStatusRejected  ImportRunStatus = "REJECTED"
)

// ImportRun is the persisted record of one batch import.
type ImportRun struct {
	ID         string
	AdminID    *string
	Status     ImportRunStatus
	Total      int
	Created    int
	Failed     int
	Skipped    int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Results    []EmailResult
}

// Apply copies counters and results from a batch result.
func (r *ImportRun) Apply(result *BatchResult) {
	if result == nil {
		return
	}
	r.Total = result.Total
	r.Created = result.Created
	r.Failed = result.Failed
	r.Skipped = result.Skipped
	r.Results = result.Results
}
