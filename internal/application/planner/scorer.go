package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ValidateWeights checks that both weights lie in [0, 1]; NaN is rejected.
func ValidateWeights(w models.Weights) error {
	if !(w.CO2 >= 0 && w.CO2 <= 1) {
		return fmt.Errorf("%w: weight_co2 must be between 0.0 and 1.0", derr.ErrInvalidArgument)
	}
	if !(w.AvgVsStd >= 0 && w.AvgVsStd <= 1) {
		return fmt.Errorf("%w: weight_avg_vs_std must be between 0.0 and 1.0", derr.ErrInvalidArgument)
	}
	return nil
}

// CityScorer ranks candidate meeting cities (phase 1).
type CityScorer struct {
	log     *zap.Logger
	index   CompatibilityIndex
	trips   *RoundTripAssembler
	workers int
}

func NewCityScorer(log *zap.Logger, index CompatibilityIndex, trips *RoundTripAssembler, workers int) *CityScorer {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &CityScorer{log: log, index: index, trips: trips, workers: workers}
}

type cityBreakdown struct {
	totalCO2   float64
	meanHours  float64
	stdevHours float64
	fairness   float64
	score      float64
}

// ScoreCities returns every feasible candidate sorted ascending by score. Ties
// keep the order of candidates.
func (s *CityScorer) ScoreCities(ctx context.Context, sc models.Scenario, candidates []string, w models.Weights, includeOneStop bool) ([]models.CityScore, error) {
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}

	scored := make([]*models.CityScore, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, city := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			if !s.passesPrefilter(sc, city) {
				return nil
			}
			b, ok := s.scoreCity(sc, city, w, includeOneStop)
			if !ok {
				return nil
			}
			s.log.Debug("city scored",
				zap.String("city", city),
				zap.Float64("score", b.score),
				zap.Float64("total_co2", b.totalCO2),
				zap.Float64("fairness", b.fairness),
				zap.Float64("avg_travel_hours", b.meanHours),
				zap.Float64("std_travel_hours", b.stdevHours),
				zap.Duration("elapsed", time.Since(started)),
			)
			scored[i] = &models.CityScore{City: city, Score: b.score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]models.CityScore, 0, len(candidates))
	for _, cs := range scored {
		if cs != nil {
			ranked = append(ranked, *cs)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })

	return ranked, nil
}

func (s *CityScorer) passesPrefilter(sc models.Scenario, city string) bool {
	for _, group := range sc.Attendees {
		if group.CityCode == city {
			continue
		}
		if !s.index.Has(group.CityCode, city) {
			s.log.Debug("city skipped by pre-filter: no direct flight out",
				zap.String("city", city), zap.String("home", group.CityCode))
			return false
		}
		if !s.index.Has(city, group.CityCode) {
			s.log.Debug("city skipped by pre-filter: no direct flight back",
				zap.String("city", city), zap.String("home", group.CityCode))
			return false
		}
	}
	return true
}

func (s *CityScorer) scoreCity(sc models.Scenario, city string, w models.Weights, includeOneStop bool) (cityBreakdown, bool) {
	var (
		co2PerGroup   []sample
		hoursPerGroup []sample
	)

	for _, group := range sc.Attendees {
		trips := s.trips.RoundTrips(TripQuery{
			Origin:             group.CityCode,
			Destination:        city,
			WindowStart:        sc.Window.Start,
			WindowEnd:          sc.Window.End,
			EventDurationHours: sc.EventDurationHours,
			IncludeOneStop:     includeOneStop,
		})
		if len(trips) == 0 {
			s.log.Debug("city skipped by post-filter: no round trip in window",
				zap.String("city", city), zap.String("home", group.CityCode))
			return cityBreakdown{}, false
		}

		// averaged over every qualifying round trip, not only the best one
		co2 := make([]float64, len(trips))
		hours := make([]float64, len(trips))
		for i, trip := range trips {
			co2[i] = trip.TotalCO2
			hours[i] = trip.TravelHours
		}
		co2PerGroup = append(co2PerGroup, sample{value: mean(co2), count: group.Headcount})
		hoursPerGroup = append(hoursPerGroup, sample{value: mean(hours), count: group.Headcount})
	}

	if totalCount(hoursPerGroup) == 0 {
		return cityBreakdown{}, false
	}

	return compositeScore(co2PerGroup, hoursPerGroup, w), true
}

// compositeScore weighs every group's averages by its headcount.
func compositeScore(co2PerGroup, hoursPerGroup []sample, w models.Weights) cityBreakdown {
	var b cityBreakdown
	b.totalCO2 = weightedSum(co2PerGroup)
	b.meanHours = weightedMean(hoursPerGroup)
	b.stdevHours = weightedStdDev(hoursPerGroup)
	b.fairness = w.AvgVsStd*b.meanHours + (1-w.AvgVsStd)*b.stdevHours
	b.score = w.CO2*b.totalCO2 + (1-w.CO2)*b.fairness
	return b
}
