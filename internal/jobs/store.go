package jobs

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for unknown or swept job IDs. Callers must
// treat it as "unknown job", not a transient failure.
var ErrNotFound = errors.New("job not found")

// Store is the in-memory job registry. It holds no state across restarts.
// Each job ID is only ever written by the goroutine that owns its background
// task, so the lock only guards the map itself.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewStore creates an empty job registry.
func NewStore() *Store {
	return &Store{jobs: make(map[string]Job)}
}

// Create registers a new job record.
func (s *Store) Create(j Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

// Update replaces the stored record wholesale.
func (s *Store) Update(j Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

// Get returns the job record for id, or ErrNotFound.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

// List returns a snapshot of all job records, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out
}

// Len returns the number of registered jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Sweep removes all records older than maxAge and returns how many were removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, j := range s.jobs {
		if j.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
