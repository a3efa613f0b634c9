// Package dedupe maps client idempotency keys to the jobs they created so
// a retried upload returns the original job instead of a new one.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Registry records which job an idempotency key produced.
type Registry interface {
	// Claim atomically binds key to jobID unless key is already bound.
	// It returns the bound job id and whether the key was seen before.
	Claim(ctx context.Context, key, jobID string) (string, bool)

	// Release unbinds key, allowing a retry to create a new job. Used when
	// the job could not be queued.
	Release(ctx context.Context, key string)

	// Size returns the number of keys held.
	Size() int
}

type entry struct {
	key   string
	jobID string
}

// inMemoryRegistry keeps keys in insertion order and evicts the oldest
// once maxSize is reached. maxSize <= 0 means unbounded.
type inMemoryRegistry struct {
	mu      sync.Mutex
	byKey   map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryRegistry creates a registry with configuration options.
func NewInMemoryRegistry(opts ...Option) Registry {
	r := &inMemoryRegistry{
		byKey:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Claim implements Registry.
func (r *inMemoryRegistry) Claim(ctx context.Context, key, jobID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.byKey[key]; ok {
		return el.Value.(entry).jobID, true
	}
	if r.maxSize > 0 && r.order.Len() >= r.maxSize {
		if oldest := r.order.Front(); oldest != nil {
			delete(r.byKey, oldest.Value.(entry).key)
			r.order.Remove(oldest)
		}
	}
	r.byKey[key] = r.order.PushBack(entry{key: key, jobID: jobID})
	return jobID, false
}

// Release implements Registry.
func (r *inMemoryRegistry) Release(ctx context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.byKey[key]; ok {
		r.order.Remove(el)
		delete(r.byKey, key)
	}
}

// Size implements Registry.
func (r *inMemoryRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
