package ports

import (
	"context"
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

// FlightTable is the normalized view over schedule and emission records.
type FlightTable interface {
	ScanLegs(ctx context.Context, from, to time.Time) ([]models.FlightLeg, error)
	ScanEmissions(ctx context.Context) ([]models.EmissionFactor, error)
}

type ResultCache interface {
	Get(ctx context.Context, key string) ([]models.OptimizationResult, error)
	Set(ctx context.Context, key string, results []models.OptimizationResult, ttl time.Duration) error
}

type CityResolver interface {
	Resolve(name string) (string, bool)
}
