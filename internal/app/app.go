package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/application/planner"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/application/service"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/config"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/ports"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/cities"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/db/postgres"
	cacheredis "github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/db/redis"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/schedules/csv"
	"go.uber.org/zap"
)

// App holds the planner service and the resources backing it.
type App struct {
	Service *service.PlannerService

	log     *zap.Logger
	closers []func()
}

// New wires the flight table, result cache, city table and engine from cfg.
// withCache false skips Redis entirely.
func New(ctx context.Context, log *zap.Logger, cfg *config.Config, withCache bool) (*App, error) {
	const op = "app.New"

	a := &App{log: log}

	table, err := a.flightTable(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cache ports.ResultCache
	if withCache && cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis client", zap.Error(err))
			}
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, result cache disabled", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
		} else {
			cache = cacheredis.NewResultCache(redisClient)
		}
	}

	engine := planner.NewEngine(log, planner.Options{
		TopK:            cfg.Planner.TopK,
		MaxCombinations: cfg.Planner.MaxCombinations,
		Workers:         cfg.Planner.Workers,
		ResultCount:     cfg.Planner.ResultCount,
		MinLayover:      cfg.Planner.MinLayover,
		MaxLayover:      cfg.Planner.MaxLayover,
	})

	a.Service = service.NewPlannerService(log, table, cache, cities.NewResolver(cfg.Cities), engine, service.Settings{
		CacheTTL: cfg.ResultCacheTTL,
		DefaultWeights: models.Weights{
			CO2:      cfg.Planner.DefaultWeightCO2,
			AvgVsStd: cfg.Planner.DefaultWeightAvgVsStd,
		},
	})

	return a, nil
}

func (a *App) flightTable(ctx context.Context, cfg *config.Config) (ports.FlightTable, error) {
	switch cfg.Schedules.Source {
	case config.SourcePostgres:
		repo, err := postgres.New(ctx, cfg.DB.DatabaseURL())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)

		if cfg.DB.Migrate {
			if err := repo.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		a.log.Info("flight table: postgres", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))
		return repo, nil
	default:
		a.log.Info("flight table: csv",
			zap.String("base_dir", cfg.Schedules.BaseDir),
			zap.String("emissions_file", cfg.Schedules.EmissionsFile),
		)
		return csv.NewSource(a.log, cfg.Schedules.BaseDir, cfg.Schedules.EmissionsFile), nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
