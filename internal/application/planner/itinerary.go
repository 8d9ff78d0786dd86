package planner

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ItineraryOptimizer picks one round trip per attendee group for a city
// (phase 2). With span optimisation it searches the Cartesian product of each
// group's lowest-CO2 options for the shortest event span; the search is
// bounded by topK^groups combinations and by maxCombinations.
type ItineraryOptimizer struct {
	log             *zap.Logger
	trips           *RoundTripAssembler
	topK            int
	maxCombinations int
	workers         int
}

func NewItineraryOptimizer(log *zap.Logger, trips *RoundTripAssembler, topK, maxCombinations, workers int) *ItineraryOptimizer {
	if log == nil {
		log = zap.NewNop()
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if maxCombinations <= 0 {
		maxCombinations = DefaultMaxCombinations
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &ItineraryOptimizer{
		log:             log,
		trips:           trips,
		topK:            topK,
		maxCombinations: maxCombinations,
		workers:         workers,
	}
}

// BuildItinerary returns false when some group has no round trip to city.
func (o *ItineraryOptimizer) BuildItinerary(ctx context.Context, city string, sc models.Scenario, optimizeSpan, includeOneStop bool) (models.Itinerary, bool, error) {
	limit := 1
	if optimizeSpan {
		limit = o.effectiveTopK(len(sc.Attendees))
	}

	options := make([][]models.RoundTripOption, 0, len(sc.Attendees))
	for _, group := range sc.Attendees {
		trips := o.trips.RoundTrips(TripQuery{
			Origin:             group.CityCode,
			Destination:        city,
			WindowStart:        sc.Window.Start,
			WindowEnd:          sc.Window.End,
			EventDurationHours: sc.EventDurationHours,
			IncludeOneStop:     includeOneStop,
		})
		if len(trips) == 0 {
			o.log.Warn("no round trip for group",
				zap.String("city", city), zap.String("home", group.CityCode))
			return models.Itinerary{}, false, nil
		}
		options = append(options, lowestCO2(trips, limit))
	}

	chosen := make([]int, len(options))
	if optimizeSpan && len(options) > 0 {
		best, combinations, err := o.searchShortestSpan(ctx, options)
		if err != nil {
			return models.Itinerary{}, false, err
		}
		o.log.Info("span optimisation finished",
			zap.String("city", city),
			zap.Int("top_k", limit),
			zap.Int("combinations", combinations),
		)
		chosen = best
	}

	itinerary := models.Itinerary{City: city, Entries: make([]models.ItineraryEntry, 0, len(options))}
	for i, group := range sc.Attendees {
		itinerary.Entries = append(itinerary.Entries, models.ItineraryEntry{
			Group:  group,
			Option: options[i][chosen[i]],
		})
	}

	return itinerary, true, nil
}

// effectiveTopK shrinks topK until topK^groups fits maxCombinations.
func (o *ItineraryOptimizer) effectiveTopK(groups int) int {
	k := o.topK
	for k > 1 && exceeds(k, groups, o.maxCombinations) {
		k--
	}
	if k != o.topK {
		o.log.Warn("combination cap reduced options per group",
			zap.Int("groups", groups),
			zap.Int("top_k", o.topK),
			zap.Int("effective_top_k", k),
			zap.Int("max_combinations", o.maxCombinations),
		)
	}
	return k
}

func exceeds(base, exp, limit int) bool {
	total := 1
	for i := 0; i < exp; i++ {
		total *= base
		if total > limit {
			return true
		}
	}
	return false
}

func lowestCO2(trips []models.RoundTripOption, limit int) []models.RoundTripOption {
	sorted := append([]models.RoundTripOption(nil), trips...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalCO2 < sorted[j].TotalCO2 })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

type spanCandidate struct {
	span    float64
	choice  []int
	visited int
}

// searchShortestSpan partitions the product by the first group's option and
// merges partitions in order, so the first combination found keeps ties.
func (o *ItineraryOptimizer) searchShortestSpan(ctx context.Context, options [][]models.RoundTripOption) ([]int, int, error) {
	partitions := make([]spanCandidate, len(options[0]))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for first := range options[0] {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partitions[first] = bestInPartition(options, first)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	best := spanCandidate{span: math.Inf(1)}
	visited := 0
	for _, p := range partitions {
		visited += p.visited
		if p.span < best.span {
			best = p
		}
	}

	return best.choice, visited, nil
}

func bestInPartition(options [][]models.RoundTripOption, first int) spanCandidate {
	choice := make([]int, len(options))
	choice[0] = first
	best := spanCandidate{span: math.Inf(1)}
	combination := make([]models.RoundTripOption, len(options))

	for {
		for i, idx := range choice {
			combination[i] = options[i][idx]
		}
		best.visited++
		if span := eventSpanHours(combination); span < best.span {
			best.span = span
			best.choice = append([]int(nil), choice...)
		}

		// odometer over groups 1..n-1, last group fastest
		pos := len(choice) - 1
		for pos > 0 {
			choice[pos]++
			if choice[pos] < len(options[pos]) {
				break
			}
			choice[pos] = 0
			pos--
		}
		if pos == 0 {
			return best
		}
	}
}

// eventSpanHours is the time between the earliest arrival and the latest
// departure, ignoring local trips; 0 when nobody travels.
func eventSpanHours(combination []models.RoundTripOption) float64 {
	first, last, ok := spanBounds(combination)
	if !ok {
		return 0
	}
	return last.Sub(first).Hours()
}

func spanBounds(combination []models.RoundTripOption) (time.Time, time.Time, bool) {
	var (
		first, last         time.Time
		hasArrival, hasDept bool
	)
	for _, trip := range combination {
		if trip.FirstArrival != nil && (!hasArrival || trip.FirstArrival.Before(first)) {
			first = *trip.FirstArrival
			hasArrival = true
		}
		if trip.LastDeparture != nil && (!hasDept || trip.LastDeparture.After(last)) {
			last = *trip.LastDeparture
			hasDept = true
		}
	}
	return first, last, hasArrival && hasDept
}
