package planner

import (
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

// RouteFinder discovers direct and one-stop legs between two cities.
type RouteFinder struct {
	ds         *Dataset
	minLayover time.Duration
	maxLayover time.Duration
}

func NewRouteFinder(ds *Dataset, minLayover, maxLayover time.Duration) *RouteFinder {
	if minLayover <= 0 {
		minLayover = DefaultMinLayover
	}
	if maxLayover <= 0 {
		maxLayover = DefaultMaxLayover
	}
	return &RouteFinder{ds: ds, minLayover: minLayover, maxLayover: maxLayover}
}

// FindLegs returns direct legs departing at or after windowStart and arriving at
// or before windowEnd, followed by one-stop legs when includeOneStop is set.
// An empty result means no connection.
func (f *RouteFinder) FindLegs(origin, destination string, windowStart, windowEnd time.Time, includeOneStop bool) []models.RouteLeg {
	var legs []models.RouteLeg

	for _, leg := range f.ds.byPair[cityPair{origin: origin, destination: destination}] {
		if leg.DepartureUTC.Before(windowStart) || leg.ArrivalUTC.After(windowEnd) {
			continue
		}
		legs = append(legs, leg)
	}

	if !includeOneStop {
		return legs
	}

	return append(legs, f.oneStopLegs(origin, destination, windowStart, windowEnd)...)
}

func (f *RouteFinder) oneStopLegs(origin, destination string, windowStart, windowEnd time.Time) []models.RouteLeg {
	// second segments keyed by the airport they leave from
	seconds := make(map[string][]models.RouteLeg)
	for _, leg := range f.ds.byArrival[destination] {
		if leg.ArrivalUTC.After(windowEnd) {
			continue
		}
		seconds[leg.DepartureAirport] = append(seconds[leg.DepartureAirport], leg)
	}
	if len(seconds) == 0 {
		return nil
	}

	var legs []models.RouteLeg
	for _, first := range f.ds.byOrigin[origin] {
		if first.DepartureUTC.Before(windowStart) {
			continue
		}
		for _, second := range seconds[first.ArrivalAirport] {
			layover := second.DepartureUTC.Sub(first.ArrivalUTC)
			if layover <= f.minLayover || layover >= f.maxLayover {
				continue
			}
			layoverHours := layover.Hours()
			legs = append(legs, models.RouteLeg{
				Type:              models.RouteOneStop,
				Carrier:           first.Carrier,
				FlightNumber:      first.FlightNumber,
				DepartureAirport:  first.DepartureAirport,
				ArrivalAirport:    second.ArrivalAirport,
				ConnectionAirport: first.ArrivalAirport,
				DepartureUTC:      first.DepartureUTC,
				ArrivalUTC:        second.ArrivalUTC,
				CO2PerPerson:      first.CO2PerPerson + second.CO2PerPerson,
				TravelHours:       first.TravelHours + second.TravelHours + layoverHours,
				LayoverHours:      layoverHours,
			})
		}
	}

	return legs
}
