package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/schedules/mappers"
)

//go:embed schema.sql
var schema string

// FlightRepository serves schedule legs and emission factors from Postgres.
type FlightRepository struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*FlightRepository, error) {
	poolCfg, err := buildPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &FlightRepository{db: pool}, nil
}

func buildPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.StatementCacheCapacity = 0
	poolCfg.ConnConfig.DescriptionCacheCapacity = 0

	return poolCfg, nil
}

func (r *FlightRepository) Close() {
	r.db.Close()
}

func (r *FlightRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ScanLegs returns the operating passenger legs departing on the UTC days
// covering from..to.
func (r *FlightRepository) ScanLegs(ctx context.Context, from, to time.Time) ([]models.FlightLeg, error) {
	const query = `
		SELECT
			carrier,
			flight_number,
			departure_airport,
			arrival_airport,
			departure_city,
			arrival_city,
			elapsed_time,
			scheduled_departure_utc,
			scheduled_arrival_utc,
			stops,
			equipment_icao
		FROM flight_legs
		WHERE scheduled_departure_utc >= $1
		  AND scheduled_departure_utc < $2
		  AND service = 'J'
		  AND operating <> 'N'
		ORDER BY id ASC
	`

	start, end := dayRange(from, to)
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query flight legs: %v: %w", err, derr.ErrDataAccess)
	}
	defer rows.Close()

	legs := make([]models.FlightLeg, 0, 1024)
	for rows.Next() {
		var (
			leg       models.FlightLeg
			elapsed   int
			equipment string
		)
		if err := rows.Scan(
			&leg.Carrier,
			&leg.FlightNumber,
			&leg.DepartureAirport,
			&leg.ArrivalAirport,
			&leg.OriginCity,
			&leg.DestinationCity,
			&elapsed,
			&leg.DepartureUTC,
			&leg.ArrivalUTC,
			&leg.Stops,
			&equipment,
		); err != nil {
			return nil, fmt.Errorf("scan flight leg: %v: %w", err, derr.ErrDataAccess)
		}
		leg.DepartureUTC = leg.DepartureUTC.UTC()
		leg.ArrivalUTC = leg.ArrivalUTC.UTC()
		leg.TravelHours = models.ElapsedHours(elapsed)
		leg.AircraftType = mappers.AircraftType(equipment)
		legs = append(legs, leg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flight legs: %v: %w", err, derr.ErrDataAccess)
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("%s to %s: %w", start.Format(time.DateOnly), end.Format(time.DateOnly), derr.ErrDataUnavailable)
	}

	return legs, nil
}

func (r *FlightRepository) ScanEmissions(ctx context.Context) ([]models.EmissionFactor, error) {
	const query = `
		SELECT
			departure_airport,
			arrival_airport,
			aircraft_type,
			seats,
			estimated_co2_total_tonnes
		FROM emission_factors
		WHERE seats > 0
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query emission factors: %v: %w", err, derr.ErrDataAccess)
	}
	defer rows.Close()

	factors := make([]models.EmissionFactor, 0, 1024)
	for rows.Next() {
		var factor models.EmissionFactor
		if err := rows.Scan(
			&factor.Key.DepartureAirport,
			&factor.Key.ArrivalAirport,
			&factor.Key.AircraftType,
			&factor.Seats,
			&factor.TotalCO2Tonnes,
		); err != nil {
			return nil, fmt.Errorf("scan emission factor: %v: %w", err, derr.ErrDataAccess)
		}
		factors = append(factors, factor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emission factors: %v: %w", err, derr.ErrDataAccess)
	}

	return factors, nil
}

// dayRange widens from..to to whole UTC days: [day(from), day(to)+1).
func dayRange(from, to time.Time) (time.Time, time.Time) {
	from, to = from.UTC(), to.UTC()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return start, end
}
