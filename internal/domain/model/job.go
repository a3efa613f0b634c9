package model

import "time"

// Status is the lifecycle state of an analysis job.
type Status string

// Job statuses.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// CanTransition reports whether a job may move from s to next. Transitions
// only move forward; a processing job may be rewritten as processing to
// publish progress.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusProcessing || next == StatusDone || next == StatusFailed
	default:
		return false
	}
}

// Job is one uploaded recording moving through analysis.
type Job struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ticket is the queue payload that hands a stored upload to a worker.
type Ticket struct {
	JobID      string
	Path       string
	Filename   string
	EnqueuedAt time.Time
}
