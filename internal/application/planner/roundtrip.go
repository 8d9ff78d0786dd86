package planner

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"golang.org/x/sync/singleflight"
)

// TripQuery identifies a round-trip search and is the cache key.
type TripQuery struct {
	Origin             string
	Destination        string
	WindowStart        time.Time
	WindowEnd          time.Time
	EventDurationHours float64
	IncludeOneStop     bool
}

func (q TripQuery) key() string {
	return fmt.Sprintf("%s|%s|%d|%d|%g|%t",
		q.Origin,
		q.Destination,
		q.WindowStart.UTC().UnixNano(),
		q.WindowEnd.UTC().UnixNano(),
		q.EventDurationHours,
		q.IncludeOneStop,
	)
}

// roundTripCache lives for a single run. Concurrent misses on one key share a
// single computation.
type roundTripCache struct {
	mu      sync.RWMutex
	entries map[string][]models.RoundTripOption
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

func newRoundTripCache() *roundTripCache {
	return &roundTripCache{entries: make(map[string][]models.RoundTripOption)}
}

func (c *roundTripCache) get(key string) ([]models.RoundTripOption, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	trips, ok := c.entries[key]
	if ok {
		c.hits.Add(1)
	}
	return trips, ok
}

func (c *roundTripCache) set(key string, trips []models.RoundTripOption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = trips
	c.misses.Add(1)
}

func (c *roundTripCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RoundTripAssembler pairs outbound and inbound legs into round trips that
// leave the full event duration on the ground.
type RoundTripAssembler struct {
	finder *RouteFinder
	cache  *roundTripCache
}

func NewRoundTripAssembler(finder *RouteFinder) *RoundTripAssembler {
	return &RoundTripAssembler{finder: finder, cache: newRoundTripCache()}
}

// RoundTrips returns every valid round trip for q. The returned slice is shared
// with the cache and must not be modified.
func (a *RoundTripAssembler) RoundTrips(q TripQuery) []models.RoundTripOption {
	key := q.key()
	if trips, ok := a.cache.get(key); ok {
		return trips
	}

	v, _, _ := a.cache.group.Do(key, func() (interface{}, error) {
		if trips, ok := a.cache.get(key); ok {
			return trips, nil
		}
		trips := a.assemble(q)
		a.cache.set(key, trips)
		return trips, nil
	})

	return v.([]models.RoundTripOption)
}

func (a *RoundTripAssembler) CachedQueries() int {
	return a.cache.len()
}

// CacheStats reports cache hits and computed entries so far.
func (a *RoundTripAssembler) CacheStats() (hits, misses int64) {
	return a.cache.hits.Load(), a.cache.misses.Load()
}

func (a *RoundTripAssembler) assemble(q TripQuery) []models.RoundTripOption {
	if q.Origin == q.Destination {
		return []models.RoundTripOption{models.LocalRoundTrip()}
	}

	outbound := a.finder.FindLegs(q.Origin, q.Destination, q.WindowStart, q.WindowEnd, q.IncludeOneStop)
	if len(outbound) == 0 {
		return []models.RoundTripOption{}
	}
	inbound := a.finder.FindLegs(q.Destination, q.Origin, q.WindowStart, q.WindowEnd, q.IncludeOneStop)
	if len(inbound) == 0 {
		return []models.RoundTripOption{}
	}

	gap := time.Duration(q.EventDurationHours * float64(time.Hour))
	trips := make([]models.RoundTripOption, 0)
	for _, out := range outbound {
		earliestReturn := out.ArrivalUTC.Add(gap)
		for _, in := range inbound {
			if !in.DepartureUTC.After(earliestReturn) {
				continue
			}
			trips = append(trips, models.NewRoundTrip(out, in))
		}
	}

	return trips
}
