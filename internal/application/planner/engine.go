package planner

import (
	"context"
	"fmt"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "meetpoint/planner"

// Engine runs the two optimisation phases over a loaded dataset.
type Engine struct {
	log  *zap.Logger
	opts Options
}

func NewEngine(log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, opts: opts.withDefaults()}
}

func (e *Engine) Options() Options {
	return e.opts
}

// Run scores every candidate city, then builds itineraries for the best
// ResultCount of them. Only rank 1 gets span optimisation. A city whose
// itinerary cannot be built is dropped from the output.
func (e *Engine) Run(ctx context.Context, ds *Dataset, req models.PlanRequest) ([]models.OptimizationResult, error) {
	const op = "planner.Run"
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if err := ValidateWeights(req.Weights); err != nil {
		span.SetStatus(otelcodes.Error, "invalid weights")
		return nil, err
	}

	log := e.log.With(zap.String("op", op))
	sc := req.Scenario

	finder := NewRouteFinder(ds, e.opts.MinLayover, e.opts.MaxLayover)
	trips := NewRoundTripAssembler(finder)

	candidates := ds.CandidateCities(sc.HomeCodes())
	log.Info("phase 1 started",
		zap.Int("candidates", len(candidates)),
		zap.Int("direct_routes", ds.Index().Len()),
		zap.Float64("weight_co2", req.Weights.CO2),
		zap.Float64("weight_avg_vs_std", req.Weights.AvgVsStd),
		zap.Bool("include_one_stop", req.IncludeOneStop),
	)
	span.SetAttributes(attribute.Int("planner.candidates", len(candidates)))

	phase1Start := time.Now()
	phase1Ctx, phase1 := tracer.Start(ctx, "planner.ScoreCities", trace.WithAttributes(
		attribute.Int("planner.candidates", len(candidates)),
		attribute.Int("planner.workers", e.opts.Workers),
	))
	scorer := NewCityScorer(log, ds.Index(), trips, e.opts.Workers)
	ranked, err := scorer.ScoreCities(phase1Ctx, sc, candidates, req.Weights, req.IncludeOneStop)
	phase1.SetAttributes(attribute.Int("planner.feasible_cities", len(ranked)))
	phase1.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "phase 1 failed")
		return nil, fmt.Errorf("%s: score cities: %w", op, err)
	}
	if len(ranked) == 0 {
		span.SetStatus(otelcodes.Error, "no feasible city")
		return nil, derr.ErrNoFeasibleCity
	}

	top := ranked
	if len(top) > e.opts.ResultCount {
		top = top[:e.opts.ResultCount]
	}
	hits, misses := trips.CacheStats()
	log.Info("phase 1 finished",
		zap.Int("feasible_cities", len(ranked)),
		zap.Strings("winners", cityCodes(top)),
		zap.Int64("round_trip_cache_hits", hits),
		zap.Int64("round_trip_cache_misses", misses),
		zap.Duration("elapsed", time.Since(phase1Start)),
	)

	phase2Ctx, phase2 := tracer.Start(ctx, "planner.BuildItineraries", trace.WithAttributes(
		attribute.StringSlice("planner.winners", cityCodes(top)),
	))
	defer phase2.End()
	optimizer := NewItineraryOptimizer(log, trips, e.opts.TopK, e.opts.MaxCombinations, e.opts.Workers)

	results := make([]models.OptimizationResult, 0, len(top))
	for i, cs := range top {
		rank := i + 1
		itinerary, ok, err := optimizer.BuildItinerary(phase2Ctx, cs.City, sc, rank == 1, req.IncludeOneStop)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%s: build itinerary for %s: %w", op, cs.City, err)
		}
		if !ok {
			log.Warn("dropping city without itinerary", zap.String("city", cs.City), zap.Int("rank", rank))
			continue
		}
		results = append(results, BuildReport(rank, cs.City, cs.Score, Measure(itinerary, sc)))
	}

	if len(results) == 0 {
		span.SetStatus(otelcodes.Error, "no itinerary")
		return nil, derr.ErrNoFeasibleCity
	}

	span.SetAttributes(attribute.Int("planner.results", len(results)))
	span.SetStatus(otelcodes.Ok, "ok")
	return results, nil
}

func cityCodes(scores []models.CityScore) []string {
	codes := make([]string, len(scores))
	for i, cs := range scores {
		codes[i] = cs.City
	}
	return codes
}
