package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/application/planner"
	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Settings struct {
	CacheTTL       time.Duration
	DefaultWeights models.Weights
}

func DefaultSettings() Settings {
	return Settings{
		CacheTTL:       15 * time.Minute,
		DefaultWeights: models.Weights{CO2: 0.5, AvgVsStd: 1.0},
	}
}

type PlannerService struct {
	log      *zap.Logger
	table    ports.FlightTable
	cache    ports.ResultCache
	resolver ports.CityResolver
	engine   *planner.Engine
	settings Settings
}

func NewPlannerService(log *zap.Logger, table ports.FlightTable, cache ports.ResultCache, resolver ports.CityResolver, engine *planner.Engine, settings Settings) *PlannerService {
	if log == nil {
		log = zap.NewNop()
	}

	return &PlannerService{
		log:      log,
		table:    table,
		cache:    cache,
		resolver: resolver,
		engine:   engine,
		settings: settings,
	}
}

// FindBestMeeting validates the scenario, then answers from the result cache or
// loads the schedules covering the window and runs both planner phases.
func (s *PlannerService) FindBestMeeting(ctx context.Context, in models.ScenarioInput) ([]models.OptimizationResult, error) {
	const op = "service.FindBestMeeting"
	tracer := otel.Tracer("meetpoint/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	runID := uuid.NewString()
	span.SetAttributes(attribute.String("meetpoint.run_id", runID))
	logger := s.log.With(zap.String("op", op), zap.String("run_id", runID))

	req, err := s.BuildRequest(in)
	if err != nil {
		logger.Warn("invalid scenario", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid scenario")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("meetpoint.groups", len(req.Scenario.Attendees)),
		attribute.Float64("meetpoint.weight_co2", req.Weights.CO2),
		attribute.Float64("meetpoint.weight_avg_vs_std", req.Weights.AvgVsStd),
		attribute.Bool("meetpoint.include_one_stop", req.IncludeOneStop),
	)

	key, err := CacheKey(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			logger.Info("result cache hit", zap.Int("results", len(cached)))
			span.AddEvent("meetpoint.cache.hit")
			span.SetStatus(otelcodes.Ok, "ok")
			return cached, nil
		}
		if errors.Is(err, derr.ErrResultNotFound) {
			logger.Debug("result cache miss")
			span.AddEvent("meetpoint.cache.miss")
		} else {
			logger.Warn("redis cache read failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	loadStart := time.Now()
	ds, err := s.load(ctx, req.Scenario.Window)
	if err != nil {
		logger.Warn("failed to load flight data", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "load failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("flight data loaded",
		zap.Int("legs", ds.LegCount()),
		zap.Int("legs_with_emissions", ds.JoinedCount()),
		zap.Int("direct_routes", ds.Index().Len()),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	results, err := s.engine.Run(ctx, ds, req)
	if err != nil {
		logger.Warn("planner run failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "planner run failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, results, s.settings.CacheTTL); err != nil {
			logger.Warn("redis cache write failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	span.SetAttributes(attribute.Int("meetpoint.results", len(results)))
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("meeting locations ranked", zap.Int("results", len(results)), zap.String("best", results[0].City))
	return results, nil
}

// BuildRequest resolves city names and applies default weights and flags.
func (s *PlannerService) BuildRequest(in models.ScenarioInput) (models.PlanRequest, error) {
	if len(in.Attendees) == 0 {
		return models.PlanRequest{}, fmt.Errorf("%w: attendees must not be empty", derr.ErrInvalidArgument)
	}

	groups := make([]models.AttendeeGroup, 0, len(in.Attendees))
	for _, a := range in.Attendees {
		name := strings.TrimSpace(a.City)
		if name == "" {
			return models.PlanRequest{}, fmt.Errorf("%w: attendee city must not be empty", derr.ErrInvalidArgument)
		}
		if a.Headcount < 1 {
			return models.PlanRequest{}, fmt.Errorf("%w: attendee count for %s must be at least 1", derr.ErrInvalidArgument, name)
		}
		code, ok := s.resolver.Resolve(name)
		if !ok {
			return models.PlanRequest{}, fmt.Errorf("%w: %s", derr.ErrUnknownCity, name)
		}
		groups = append(groups, models.AttendeeGroup{HomeCity: name, CityCode: code, Headcount: a.Headcount})
	}

	if in.WindowStart.IsZero() || in.WindowEnd.IsZero() {
		return models.PlanRequest{}, fmt.Errorf("%w: availability_window needs start and end", derr.ErrInvalidArgument)
	}
	if !in.WindowEnd.After(in.WindowStart) {
		return models.PlanRequest{}, fmt.Errorf("%w: availability_window end must be after start", derr.ErrInvalidArgument)
	}
	if in.EventDays < 0 || in.EventHours < 0 {
		return models.PlanRequest{}, fmt.Errorf("%w: event_duration must not be negative", derr.ErrInvalidArgument)
	}

	weights := s.settings.DefaultWeights
	if in.WeightCO2 != nil {
		weights.CO2 = *in.WeightCO2
	}
	if in.WeightAvgVsStd != nil {
		weights.AvgVsStd = *in.WeightAvgVsStd
	}
	if err := planner.ValidateWeights(weights); err != nil {
		return models.PlanRequest{}, err
	}

	includeOneStop := true
	if in.ConsiderConnectingFlights != nil {
		includeOneStop = *in.ConsiderConnectingFlights
	}

	return models.PlanRequest{
		Scenario: models.Scenario{
			Attendees:          groups,
			Window:             models.Window{Start: in.WindowStart.UTC(), End: in.WindowEnd.UTC()},
			EventDurationHours: in.EventDays*24 + in.EventHours,
		},
		Weights:        weights,
		IncludeOneStop: includeOneStop,
	}, nil
}

func (s *PlannerService) load(ctx context.Context, w models.Window) (*planner.Dataset, error) {
	var (
		legs      []models.FlightLeg
		emissions []models.EmissionFactor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legs, err = s.table.ScanLegs(gctx, w.Start, w.End)
		return err
	})
	g.Go(func() error {
		var err error
		emissions, err = s.table.ScanEmissions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return planner.NewDataset(legs, emissions), nil
}

type cacheKeyGroup struct {
	City      string `json:"city"`
	Code      string `json:"code"`
	Headcount int    `json:"headcount"`
}

type cacheKeyPayload struct {
	Groups         []cacheKeyGroup `json:"groups"`
	WindowStart    string          `json:"window_start"`
	WindowEnd      string          `json:"window_end"`
	EventHours     float64         `json:"event_hours"`
	WeightCO2      float64         `json:"weight_co2"`
	WeightAvgVsStd float64         `json:"weight_avg_vs_std"`
	IncludeOneStop bool            `json:"include_one_stop"`
}

// CacheKey is a SHA-256 over the canonical form of req. Attendee order is
// significant because it decides ties.
func CacheKey(req models.PlanRequest) (string, error) {
	payload := cacheKeyPayload{
		Groups:         make([]cacheKeyGroup, 0, len(req.Scenario.Attendees)),
		WindowStart:    req.Scenario.Window.Start.UTC().Format(time.RFC3339Nano),
		WindowEnd:      req.Scenario.Window.End.UTC().Format(time.RFC3339Nano),
		EventHours:     req.Scenario.EventDurationHours,
		WeightCO2:      req.Weights.CO2,
		WeightAvgVsStd: req.Weights.AvgVsStd,
		IncludeOneStop: req.IncludeOneStop,
	}
	for _, g := range req.Scenario.Attendees {
		payload.Groups = append(payload.Groups, cacheKeyGroup{City: g.HomeCity, Code: g.CityCode, Headcount: g.Headcount})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
