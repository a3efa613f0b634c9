// Package worker runs queued analysis tickets through the pipeline and
// records each job's outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/attnrisk/internal/adapters/mq/queue"
	"github.com/okian/attnrisk/internal/adapters/repository"
	"github.com/okian/attnrisk/internal/analysis"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/pkg/logger"
	"github.com/okian/attnrisk/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Ticket abstracts what workers read off the queue.
type Ticket = queue.Ticket

// Runner analyzes one stored recording.
type Runner interface {
	Run(ctx context.Context, jobID, filePath string) (*model.Result, error)
}

// Jobs is the slice of the job registry a worker writes to.
type Jobs interface {
	Update(ctx context.Context, id string, fn repository.Mutator) (model.Job, error)
	CompareAndSwap(ctx context.Context, id string, expected model.Status, fn repository.Mutator) (model.Job, error)
}

// Queue defines how workers receive tickets.
type Queue interface {
	Dequeue(ctx context.Context) (Ticket, bool)
}

// ErrShutdown is recorded on jobs still queued when the pool stops.
var ErrShutdown = errors.New("analysis cancelled: service shutting down")

// Worker processes tickets until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job completes.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker. It owns every write to a job from the
// moment it claims the ticket.
type InMemoryWorker struct {
	queue  Queue
	runner Runner
	jobs   Jobs
	name   string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, runner Runner, jobs Jobs, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		runner:   runner,
		jobs:     jobs,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.shutdown:
			cancel()
		case <-runCtx.Done():
		}
	}()

	for {
		select {
		case <-runCtx.Done():
			return
		default:
		}
		t, ok := w.queue.Dequeue(runCtx)
		if !ok {
			return
		}
		if err := w.process(ctx, t); err != nil {
			w.logger.Error(ctx, "job failed", logger.JobID(t.JobID), logger.Error(err))
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process claims the ticket's job, runs the analysis and records the
// terminal state. A started analysis is not interrupted by shutdown.
func (w *InMemoryWorker) process(ctx context.Context, t Ticket) error {
	ctx = context.WithoutCancel(ctx)
	log := w.logger.With(logger.JobID(t.JobID))

	if _, err := w.jobs.CompareAndSwap(ctx, t.JobID, model.StatusQueued, func(j *model.Job) error {
		j.Status = model.StatusProcessing
		return nil
	}); err != nil {
		_ = os.Remove(t.Path)
		metrics.RecordErrorByComponent("worker", "claim")
		log.Warn(ctx, "ticket dropped", logger.Error(err))
		return nil
	}

	metrics.IncWorkerBusy()
	defer metrics.DecWorkerBusy()

	log.Info(ctx, "job started", logger.String("filename", t.Filename), logger.Duration("waited", time.Since(t.EnqueuedAt)))
	res, runErr := w.runner.Run(ctx, t.JobID, t.Path)

	if runErr != nil {
		kind := analysis.Kind(runErr)
		_, err := w.jobs.Update(ctx, t.JobID, func(j *model.Job) error {
			j.Status = model.StatusFailed
			j.Error = runErr.Error()
			j.Result = nil
			return nil
		})
		metrics.RecordJobFailed(kind)
		if err != nil {
			return errors.Join(runErr, fmt.Errorf("record failure: %w", err))
		}
		return runErr
	}

	if _, err := w.jobs.Update(ctx, t.JobID, func(j *model.Job) error {
		j.Status = model.StatusDone
		j.Progress = analysis.ProgressDone
		j.Result = res
		j.Error = ""
		return nil
	}); err != nil {
		metrics.RecordErrorByComponent("worker", "store")
		return fmt.Errorf("record result: %w", err)
	}
	metrics.RecordJobCompleted()
	log.Info(ctx, "job done", logger.String("drop_risk", res.Summary.DropRisk))
	return nil
}

// abandon fails a ticket that no worker will pick up and removes its
// upload.
func abandon(ctx context.Context, jobs Jobs, t Ticket) error {
	defer func() { _ = os.Remove(t.Path) }()
	_, err := jobs.CompareAndSwap(ctx, t.JobID, model.StatusQueued, func(j *model.Job) error {
		j.Status = model.StatusFailed
		j.Error = ErrShutdown.Error()
		return nil
	})
	if err != nil {
		return fmt.Errorf("abandon %s: %w", t.JobID, err)
	}
	metrics.RecordJobFailed("shutdown")
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	jobs    Jobs
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one selects
// runtime.NumCPU().
func NewPool(workerCount int, q Queue, runner Runner, jobs Jobs, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		jobs:    jobs,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, runner, jobs, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue, waits for in-flight jobs to finish and fails
// the jobs that were still waiting.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}

	// Tickets left in the queue are failed so their uploads do not linger.
	if drainer, ok := p.queue.(interface{ Drain() []Ticket }); ok {
		left := drainer.Drain()
		for _, t := range left {
			if err := abandon(ctx, p.jobs, t); err != nil {
				p.logger.Warn(ctx, "abandon ticket", logger.JobID(t.JobID), logger.Error(err))
			}
		}
		if len(left) > 0 {
			p.logger.Info(ctx, "queued jobs abandoned", logger.Int("count", len(left)))
		}
	}
	return errors.Join(errs...)
}
