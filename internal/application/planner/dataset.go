package planner

import (
	"sort"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

// Dataset is the read-only flight context of one run: direct legs joined to
// their emission factors and indexed for route search.
type Dataset struct {
	index        CompatibilityIndex
	byPair       map[cityPair][]models.RouteLeg
	byOrigin     map[string][]models.RouteLeg
	byArrival    map[string][]models.RouteLeg
	destinations map[string]map[string]struct{}
	legCount     int
	joinedCount  int
}

func NewDataset(legs []models.FlightLeg, emissions []models.EmissionFactor) *Dataset {
	factors := make(map[models.EmissionKey]float64, len(emissions))
	for _, factor := range emissions {
		if _, ok := factors[factor.Key]; ok {
			continue
		}
		perPerson, ok := factor.CO2PerPerson()
		if !ok {
			continue
		}
		factors[factor.Key] = perPerson
	}

	ds := &Dataset{
		index:        BuildCompatibilityIndex(legs),
		byPair:       make(map[cityPair][]models.RouteLeg),
		byOrigin:     make(map[string][]models.RouteLeg),
		byArrival:    make(map[string][]models.RouteLeg),
		destinations: make(map[string]map[string]struct{}),
		legCount:     len(legs),
	}

	for _, leg := range legs {
		if !leg.IsDirect() {
			continue
		}

		dests, ok := ds.destinations[leg.OriginCity]
		if !ok {
			dests = make(map[string]struct{})
			ds.destinations[leg.OriginCity] = dests
		}
		dests[leg.DestinationCity] = struct{}{}

		co2, ok := factors[models.EmissionKey{
			DepartureAirport: leg.DepartureAirport,
			ArrivalAirport:   leg.ArrivalAirport,
			AircraftType:     leg.AircraftType,
		}]
		if !ok {
			continue
		}

		route := models.RouteLeg{
			Type:             models.RouteDirect,
			Carrier:          leg.Carrier,
			FlightNumber:     leg.FlightNumber,
			DepartureAirport: leg.DepartureAirport,
			ArrivalAirport:   leg.ArrivalAirport,
			DepartureUTC:     leg.DepartureUTC,
			ArrivalUTC:       leg.ArrivalUTC,
			CO2PerPerson:     co2,
			TravelHours:      leg.TravelHours,
		}
		pair := cityPair{origin: leg.OriginCity, destination: leg.DestinationCity}
		ds.byPair[pair] = append(ds.byPair[pair], route)
		ds.byOrigin[leg.OriginCity] = append(ds.byOrigin[leg.OriginCity], route)
		ds.byArrival[leg.DestinationCity] = append(ds.byArrival[leg.DestinationCity], route)
		ds.joinedCount++
	}

	return ds
}

func (d *Dataset) Index() CompatibilityIndex {
	return d.index
}

func (d *Dataset) LegCount() int {
	return d.legCount
}

// JoinedCount is the number of direct legs that carry an emission factor.
func (d *Dataset) JoinedCount() int {
	return d.joinedCount
}

// CandidateCities returns every city reachable by a direct leg from any of the
// home cities, plus the home cities themselves, sorted by code.
func (d *Dataset) CandidateCities(homes []string) []string {
	set := make(map[string]struct{})
	for _, home := range homes {
		set[home] = struct{}{}
		for dest := range d.destinations[home] {
			set[dest] = struct{}{}
		}
	}

	cities := make([]string, 0, len(set))
	for city := range set {
		if city == "" {
			continue
		}
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}
