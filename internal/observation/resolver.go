package observation

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Tier identifies which source supplied the resolved observation's
// missing fields.
type Tier string

const (
	// TierCaller means every measurement field came from the caller.
	TierCaller Tier = "caller"
	// TierLocation means missing fields were filled from the series for the
	// requested location key.
	TierLocation Tier = "location"
	// TierGlobal means missing fields were filled from the most recent record
	// across all known locations.
	TierGlobal Tier = "global"
	// TierDefault means missing fields were filled with the fixed defaults.
	TierDefault Tier = "default"
)

// Degraded reports whether the tier indicates a cross-location or default
// fallback, which callers may want to surface.
func (t Tier) Degraded() bool {
	return t == TierGlobal || t == TierDefault
}

// Resolved is the outcome of resolution: a complete observation plus the
// tier that supplied it.
type Resolved struct {
	Observation Observation
	Tier        Tier
}

// ResolverConfig holds configuration for the resolver.
type ResolverConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Resolver fills missing fields of a partial observation from persisted
// series or fixed defaults. It performs no caching; every call rereads the
// repository's current state.
type Resolver struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewResolver creates a resolver over the given repository.
func NewResolver(cfg ResolverConfig) *Resolver {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    now,
	}
}

// Resolve produces a complete observation for the given partial input.
// Priority order: caller-supplied fields, then the latest record for the
// exact key, then the newest record across all locations, then fixed
// defaults. Repository failures and malformed series are treated as a tier
// miss rather than an error, so resolution always succeeds.
func (r *Resolver) Resolve(ctx context.Context, partial Partial, key *Key) Resolved {
	if partial.Complete() {
		obs := partial.fill(Observation{Timestamp: r.now()})
		return Resolved{Observation: obs, Tier: TierCaller}
	}

	if key != nil {
		if latest, ok := r.latestForKey(ctx, *key); ok {
			return Resolved{Observation: partial.fill(latest), Tier: TierLocation}
		}
	}

	if latest, ok := r.latestAnywhere(ctx); ok {
		return Resolved{Observation: partial.fill(latest), Tier: TierGlobal}
	}

	return Resolved{Observation: partial.fill(Default(r.now())), Tier: TierDefault}
}

func (r *Resolver) latestForKey(ctx context.Context, key Key) (Observation, bool) {
	records, err := r.repo.ReadAll(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrLocationUnknown) {
			r.logger.Warn().Err(err).Str("location_key", string(key)).Msg("failed to read observation series")
		}
		return Observation{}, false
	}
	return latestOf(records)
}

// latestAnywhere picks the newest record across all locations. On equal
// timestamps the lexicographically smallest key wins, which keeps the
// fallback deterministic regardless of map iteration order.
func (r *Resolver) latestAnywhere(ctx context.Context) (Observation, bool) {
	series, err := r.repo.ReadAllLocations(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to scan observation series")
		return Observation{}, false
	}

	keys := make([]Key, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var best Observation
	found := false
	for _, key := range keys {
		latest, ok := latestOf(series[key])
		if !ok {
			continue
		}
		if !found || latest.Timestamp.After(best.Timestamp) {
			best = latest
			found = true
		}
	}
	return best, found
}

// latestOf returns the record with the maximum timestamp, skipping records
// without one.
func latestOf(records []Observation) (Observation, bool) {
	var best Observation
	found := false
	for _, rec := range records {
		if rec.Timestamp.IsZero() {
			continue
		}
		if !found || rec.Timestamp.After(best.Timestamp) {
			best = rec
			found = true
		}
	}
	return best, found
}
