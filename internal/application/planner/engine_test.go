package planner

import (
	"context"
	"testing"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngineRun_TwoGroupScenario(t *testing.T) {
	sc := fixtureScenario()
	engine := NewEngine(zap.NewNop(), DefaultOptions())

	results, err := engine.Run(context.Background(), fixtureDataset(), models.PlanRequest{
		Scenario:       sc,
		Weights:        models.Weights{CO2: 0.5, AvgVsStd: 1},
		IncludeOneStop: true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 3)
	for i, res := range results {
		assert.Equal(t, i+1, res.Rank)
		assert.GreaterOrEqual(t, res.TotalCO2, 0.0)
	}

	first := results[0]
	wantTickets := 0
	for _, group := range sc.Attendees {
		if group.CityCode != first.City {
			wantTickets += 2
		}
	}
	assert.Len(t, first.Itinerary, wantTickets)
}

func TestEngineRun_OnlyRankOneIsSpanOptimised(t *testing.T) {
	engine := NewEngine(zap.NewNop(), DefaultOptions())

	results, err := engine.Run(context.Background(), fixtureDataset(), models.PlanRequest{
		Scenario: fixtureScenario(),
		Weights:  models.Weights{CO2: 0.5, AvgVsStd: 1},
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "BBB", results[0].City)
	assert.Equal(t, 3.15, results[0].Phase1Score)
	assert.Equal(t, 68.0, results[0].SpanHours)
	assert.Equal(t, "MMM", results[1].City)
	assert.Equal(t, 57.0, results[1].SpanHours, "rank 2 keeps the lowest-CO2 choice")
	assert.Equal(t, map[string]float64{"Alpha": 6, "Bravo": 4}, results[1].AttendeeTravelHours)
}

func TestEngineRun_ResultCount(t *testing.T) {
	engine := NewEngine(zap.NewNop(), Options{ResultCount: 1})

	results, err := engine.Run(context.Background(), fixtureDataset(), models.PlanRequest{
		Scenario: fixtureScenario(),
		Weights:  models.Weights{CO2: 0.5, AvgVsStd: 1},
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestEngineRun_NoFeasibleCity(t *testing.T) {
	sc := fixtureScenario()
	sc.Attendees = append(sc.Attendees, models.AttendeeGroup{HomeCity: "Nowhere", CityCode: "QQQ", Headcount: 1})

	_, err := NewEngine(zap.NewNop(), DefaultOptions()).Run(context.Background(), fixtureDataset(), models.PlanRequest{
		Scenario: sc,
		Weights:  models.Weights{CO2: 0.5, AvgVsStd: 1},
	})
	assert.ErrorIs(t, err, derr.ErrNoFeasibleCity)
}

func TestEngineRun_InvalidWeights(t *testing.T) {
	_, err := NewEngine(nil, DefaultOptions()).Run(context.Background(), fixtureDataset(), models.PlanRequest{
		Scenario: fixtureScenario(),
		Weights:  models.Weights{CO2: 0.5, AvgVsStd: -1},
	})
	assert.ErrorIs(t, err, derr.ErrInvalidArgument)
}

func TestEngineRun_RunsAreIndependent(t *testing.T) {
	engine := NewEngine(zap.NewNop(), DefaultOptions())
	req := models.PlanRequest{Scenario: fixtureScenario(), Weights: models.Weights{CO2: 0.5, AvgVsStd: 1}}

	before, err := engine.Run(context.Background(), fixtureDataset(), req)
	require.NoError(t, err)
	require.Len(t, before, 2)

	var legs []models.FlightLeg
	for _, l := range fixtureLegs() {
		if l.Carrier == "XX" {
			continue
		}
		legs = append(legs, l)
	}
	after, err := engine.Run(context.Background(), NewDataset(legs, fixtureEmissions()), req)
	require.NoError(t, err)

	require.Len(t, after, 1)
	assert.Equal(t, "MMM", after[0].City)
}
