package observation

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository for tests and local development.
type MemoryRepository struct {
	mu     sync.RWMutex
	series map[Key][]Observation
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{series: make(map[Key][]Observation)}
}

// Append adds an observation to the series for key.
func (r *MemoryRepository) Append(_ context.Context, key Key, obs Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[key] = append(r.series[key], obs)
	return nil
}

// ReadAll returns a copy of the series for key.
func (r *MemoryRepository) ReadAll(_ context.Context, key Key) ([]Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records, ok := r.series[key]
	if !ok || len(records) == 0 {
		return nil, ErrLocationUnknown
	}

	out := make([]Observation, len(records))
	copy(out, records)
	return out, nil
}

// ReadAllLocations returns a copy of every series.
func (r *MemoryRepository) ReadAllLocations(_ context.Context) (map[Key][]Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Key][]Observation, len(r.series))
	for key, records := range r.series {
		cp := make([]Observation, len(records))
		copy(cp, records)
		out[key] = cp
	}
	return out, nil
}
