package observation

import "context"

// Repository persists per-location observation series.
// Series are append-only; records are never mutated after being written.
type Repository interface {
	// Append adds an observation to the series for the given key.
	// Appends must be atomic with respect to concurrent appends.
	Append(ctx context.Context, key Key, obs Observation) error

	// ReadAll returns the full series for a key in stored order.
	// Returns ErrLocationUnknown if no series exists for the key.
	ReadAll(ctx context.Context, key Key) ([]Observation, error)

	// ReadAllLocations returns every known series keyed by location.
	ReadAllLocations(ctx context.Context) (map[Key][]Observation, error)
}
