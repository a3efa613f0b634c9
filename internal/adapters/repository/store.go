// Package repository holds the job registry: the Store contract and an
// in-memory implementation.
package repository

import (
	"context"
	"time"

	"github.com/okian/attnrisk/internal/domain/model"
)

// Mutator edits a job copy in place. Returning an error aborts the write.
type Mutator func(j *model.Job) error

// Store provides read/write access to analysis jobs. Values are copied in
// and out, so a reader always sees a whole snapshot of a job.
type Store interface {
	// Create registers a new job. Returns ErrExists if the id is taken.
	Create(ctx context.Context, job model.Job) error

	// Get returns the job with id. Returns ErrNotFound if it is unknown.
	Get(ctx context.Context, id string) (model.Job, error)

	// Update applies fn to the stored job and writes the result back.
	// Returns ErrInvalidTransition if fn moves the status backwards.
	Update(ctx context.Context, id string, fn Mutator) (model.Job, error)

	// CompareAndSwap is Update guarded by the current status: fn only runs
	// when the stored status equals expected. Returns ErrStatusMismatch
	// otherwise.
	CompareAndSwap(ctx context.Context, id string, expected model.Status, fn Mutator) (model.Job, error)

	// Delete removes a job. Returns ErrNotFound if it is unknown.
	Delete(ctx context.Context, id string) error

	// List returns all jobs ordered by creation time, oldest first.
	List(ctx context.Context) []model.Job

	// Count returns the number of jobs tracked.
	Count(ctx context.Context) int

	// Sweep removes terminal jobs last updated before cutoff and returns
	// how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) int
}
