package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/application/planner"
	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/ports"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/cities"
	"go.uber.org/zap"
)

var base = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return base.Add(time.Duration(day*24+hour) * time.Hour)
}

func testLeg(number, dep, arr string, departure time.Time, hours float64) models.FlightLeg {
	return models.FlightLeg{
		Carrier:          "SQ",
		FlightNumber:     number,
		DepartureAirport: dep,
		ArrivalAirport:   arr,
		OriginCity:       dep,
		DestinationCity:  arr,
		DepartureUTC:     departure,
		ArrivalUTC:       departure.Add(time.Duration(hours * float64(time.Hour))),
		TravelHours:      hours,
		AircraftType:     "359",
	}
}

func testFactor(dep, arr string) models.EmissionFactor {
	return models.EmissionFactor{
		Key:            models.EmissionKey{DepartureAirport: dep, ArrivalAirport: arr, AircraftType: "359"},
		Seats:          300,
		TotalCO2Tonnes: 45,
	}
}

type testFlightTable struct {
	legs      []models.FlightLeg
	emissions []models.EmissionFactor
	err       error
	calls     int
	from, to  time.Time
}

func (f *testFlightTable) ScanLegs(ctx context.Context, from, to time.Time) ([]models.FlightLeg, error) {
	f.calls++
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	return f.legs, nil
}

func (f *testFlightTable) ScanEmissions(ctx context.Context) ([]models.EmissionFactor, error) {
	return f.emissions, nil
}

func newTestTable() *testFlightTable {
	return &testFlightTable{
		legs: []models.FlightLeg{
			testLeg("1", "BOM", "SIN", at(0, 8), 5.5),
			testLeg("2", "SIN", "BOM", at(2, 18), 5.5),
			testLeg("3", "HKG", "SIN", at(0, 10), 4),
			testLeg("4", "SIN", "HKG", at(2, 20), 4),
		},
		emissions: []models.EmissionFactor{
			testFactor("BOM", "SIN"),
			testFactor("SIN", "BOM"),
			testFactor("HKG", "SIN"),
			testFactor("SIN", "HKG"),
		},
	}
}

type testResultCache struct {
	stored   map[string][]models.OptimizationResult
	getErr   error
	setCalls int
	ttl      time.Duration
}

func newTestResultCache() *testResultCache {
	return &testResultCache{stored: make(map[string][]models.OptimizationResult)}
}

func (c *testResultCache) Get(ctx context.Context, key string) ([]models.OptimizationResult, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	results, ok := c.stored[key]
	if !ok {
		return nil, derr.ErrResultNotFound
	}
	return results, nil
}

func (c *testResultCache) Set(ctx context.Context, key string, results []models.OptimizationResult, ttl time.Duration) error {
	c.setCalls++
	c.ttl = ttl
	c.stored[key] = results
	return nil
}

func newTestService(table *testFlightTable, cache ports.ResultCache) *PlannerService {
	settings := DefaultSettings()
	settings.CacheTTL = 10 * time.Minute
	engine := planner.NewEngine(zap.NewNop(), planner.DefaultOptions())
	return NewPlannerService(zap.NewNop(), table, cache, cities.NewResolver(nil), engine, settings)
}

func validInput() models.ScenarioInput {
	return models.ScenarioInput{
		Attendees: []models.AttendeeInput{
			{City: "Mumbai", Headcount: 3},
			{City: "Hong Kong", Headcount: 2},
		},
		WindowStart: at(0, 0),
		WindowEnd:   at(4, 0),
		EventHours:  8,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestFindBestMeeting_RunsPlannerAndCachesResult(t *testing.T) {
	table := newTestTable()
	cache := newTestResultCache()
	svc := newTestService(table, cache)

	got, err := svc.FindBestMeeting(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].City != "SIN" || got[0].Rank != 1 {
		t.Fatalf("unexpected results: %+v", got)
	}
	if len(got[0].Itinerary) != 4 {
		t.Fatalf("unexpected ticket count: got %d want %d", len(got[0].Itinerary), 4)
	}
	if table.calls != 1 {
		t.Fatalf("unexpected flight table calls: got %d want 1", table.calls)
	}
	if !table.from.Equal(at(0, 0)) || !table.to.Equal(at(4, 0)) {
		t.Fatalf("unexpected scan window: %v..%v", table.from, table.to)
	}
	if cache.setCalls != 1 || cache.ttl != 10*time.Minute {
		t.Fatalf("unexpected cache writes: calls=%d ttl=%v", cache.setCalls, cache.ttl)
	}

	again, err := svc.FindBestMeeting(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error on cached call: %v", err)
	}
	if table.calls != 1 {
		t.Fatalf("flight table should not be scanned on cache hit, calls=%d", table.calls)
	}
	if len(again) != 1 || again[0].City != "SIN" {
		t.Fatalf("unexpected cached results: %+v", again)
	}
}

func TestFindBestMeeting_IgnoresCacheReadFailure(t *testing.T) {
	table := newTestTable()
	cache := newTestResultCache()
	cache.getErr = errors.New("connection refused")

	if _, err := newTestService(table, cache).FindBestMeeting(context.Background(), validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.calls != 1 {
		t.Fatalf("unexpected flight table calls: got %d want 1", table.calls)
	}
}

func TestFindBestMeeting_WorksWithoutCache(t *testing.T) {
	if _, err := newTestService(newTestTable(), nil).FindBestMeeting(context.Background(), validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindBestMeeting_InvalidInputSkipsScan(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.ScenarioInput)
		want   error
	}{
		{name: "no attendees", mutate: func(in *models.ScenarioInput) { in.Attendees = nil }, want: derr.ErrInvalidArgument},
		{name: "zero headcount", mutate: func(in *models.ScenarioInput) { in.Attendees[0].Headcount = 0 }, want: derr.ErrInvalidArgument},
		{name: "unknown city", mutate: func(in *models.ScenarioInput) { in.Attendees[1].City = "Atlantis" }, want: derr.ErrUnknownCity},
		{name: "missing window", mutate: func(in *models.ScenarioInput) { in.WindowEnd = time.Time{} }, want: derr.ErrInvalidArgument},
		{name: "inverted window", mutate: func(in *models.ScenarioInput) { in.WindowEnd = at(-1, 0) }, want: derr.ErrInvalidArgument},
		{name: "negative duration", mutate: func(in *models.ScenarioInput) { in.EventDays = -1 }, want: derr.ErrInvalidArgument},
		{name: "weight co2 out of range", mutate: func(in *models.ScenarioInput) { in.WeightCO2 = ptr(1.5) }, want: derr.ErrInvalidArgument},
		{name: "weight avg out of range", mutate: func(in *models.ScenarioInput) { in.WeightAvgVsStd = ptr(-0.5) }, want: derr.ErrInvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := newTestTable()
			in := validInput()
			tc.mutate(&in)

			_, err := newTestService(table, newTestResultCache()).FindBestMeeting(context.Background(), in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("unexpected error: got %v want %v", err, tc.want)
			}
			if table.calls != 0 {
				t.Fatalf("flight table should not be scanned, calls=%d", table.calls)
			}
		})
	}
}

func TestFindBestMeeting_DataUnavailable(t *testing.T) {
	table := newTestTable()
	table.err = derr.ErrDataUnavailable

	_, err := newTestService(table, newTestResultCache()).FindBestMeeting(context.Background(), validInput())
	if !errors.Is(err, derr.ErrDataUnavailable) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrDataUnavailable)
	}
}

func TestFindBestMeeting_NoFeasibleCityIsNotCached(t *testing.T) {
	table := newTestTable()
	table.legs = table.legs[:2]
	cache := newTestResultCache()

	_, err := newTestService(table, cache).FindBestMeeting(context.Background(), validInput())
	if !errors.Is(err, derr.ErrNoFeasibleCity) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrNoFeasibleCity)
	}
	if cache.setCalls != 0 {
		t.Fatalf("failed runs must not be cached, calls=%d", cache.setCalls)
	}
}

func TestBuildRequest_AppliesDefaults(t *testing.T) {
	in := validInput()
	in.EventDays = 1
	in.EventHours = 6
	in.WindowStart = time.Date(2025, 5, 1, 2, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))

	req, err := newTestService(newTestTable(), nil).BuildRequest(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Weights != (models.Weights{CO2: 0.5, AvgVsStd: 1.0}) {
		t.Fatalf("unexpected weights: %+v", req.Weights)
	}
	if !req.IncludeOneStop {
		t.Fatal("connecting flights must default to enabled")
	}
	if req.Scenario.EventDurationHours != 30 {
		t.Fatalf("unexpected duration: got %v want %v", req.Scenario.EventDurationHours, 30)
	}
	if !req.Scenario.Window.Start.Equal(at(0, 0)) {
		t.Fatalf("unexpected window start: got %v want %v", req.Scenario.Window.Start, at(0, 0))
	}
	if req.Scenario.Attendees[1].CityCode != "HKG" || req.Scenario.Attendees[1].HomeCity != "Hong Kong" {
		t.Fatalf("unexpected attendee: %+v", req.Scenario.Attendees[1])
	}
}

func TestBuildRequest_ExplicitOptions(t *testing.T) {
	in := validInput()
	in.WeightCO2 = ptr(0.0)
	in.WeightAvgVsStd = ptr(0.25)
	in.ConsiderConnectingFlights = ptr(false)

	req, err := newTestService(newTestTable(), nil).BuildRequest(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Weights != (models.Weights{CO2: 0, AvgVsStd: 0.25}) || req.IncludeOneStop {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestCacheKey_OrderAndOptionsMatter(t *testing.T) {
	svc := newTestService(newTestTable(), nil)
	req, err := svc.BuildRequest(validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key, _ := CacheKey(req)
	same, _ := CacheKey(req)
	if key != same || len(key) != 64 {
		t.Fatalf("unexpected key: %q vs %q", key, same)
	}

	swapped := req
	swapped.Scenario.Attendees = []models.AttendeeGroup{req.Scenario.Attendees[1], req.Scenario.Attendees[0]}
	if k, _ := CacheKey(swapped); k == key {
		t.Fatal("attendee order must change the key")
	}

	direct := req
	direct.IncludeOneStop = false
	if k, _ := CacheKey(direct); k == key {
		t.Fatal("one-stop flag must change the key")
	}
}
