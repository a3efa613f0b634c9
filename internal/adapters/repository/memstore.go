package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/pkg/logger"
	"github.com/okian/attnrisk/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemoryStore is a map-backed Store guarded by a RWMutex. A stored Result
// is never mutated once written, so copies share it.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job

	metricsUpdateInterval time.Duration
	now                   func() time.Time
	logger                logger.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		jobs:                  make(map[string]model.Job),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
		logger:                logger.Get().Named("repository"),
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateJobsTracked(0)
	s.startMetricsUpdater(ctx)
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, job model.Job) error {
	if job.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidJob)
	}
	now := s.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return ErrExists
	}
	s.jobs[job.ID] = job
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrNotFound
	}
	return j, nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, id string, fn Mutator) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(id, fn)
}

// CompareAndSwap implements Store.
func (s *MemoryStore) CompareAndSwap(ctx context.Context, id string, expected model.Status, fn Mutator) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrNotFound
	}
	if cur.Status != expected {
		return cur, fmt.Errorf("%w: expected %s, found %s", ErrStatusMismatch, expected, cur.Status)
	}
	return s.apply(id, fn)
}

// apply must be called with the write lock held.
func (s *MemoryStore) apply(id string, fn Mutator) (model.Job, error) {
	cur, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrNotFound
	}
	next := cur
	if err := fn(&next); err != nil {
		return cur, err
	}
	if next.ID != cur.ID {
		return cur, fmt.Errorf("%w: id is immutable", ErrInvalidJob)
	}
	if next.Status != cur.Status && !cur.Status.CanTransition(next.Status) {
		return cur, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, next.Status)
	}
	if cur.Status.Terminal() {
		return cur, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, cur.Status)
	}
	if next.Progress < cur.Progress {
		next.Progress = cur.Progress
	}
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.now()
	s.jobs[id] = next
	return next, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) []model.Job {
	s.mu.RLock()
	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(ctx context.Context, cutoff time.Time) int {
	s.mu.Lock()
	removed := 0
	for id, j := range s.jobs {
		if j.Status.Terminal() && j.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	remaining := len(s.jobs)
	s.mu.Unlock()

	if removed > 0 {
		metrics.RecordJobsSwept(removed)
		s.logger.Info(ctx, "expired jobs swept", logger.Int("removed", removed), logger.Int("remaining", remaining))
	}
	metrics.UpdateJobsTracked(remaining)
	return removed
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateJobsTracked(s.Count(ctx))
			}
		}
	}()
}
