package planner

import (
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

// Cities: AAA (airport AAX), BBB (BBX), MMM (MMX) and the hub HHH (HHX).
var fixtureBase = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return fixtureBase.Add(time.Duration(day*24+hour) * time.Hour)
}

func fixtureWindow() models.Window {
	return models.Window{Start: at(0, 0), End: at(5, 0)}
}

func leg(carrier, number, dep, arr string, departure time.Time, hours float64) models.FlightLeg {
	return models.FlightLeg{
		Carrier:          carrier,
		FlightNumber:     number,
		DepartureAirport: dep,
		ArrivalAirport:   arr,
		OriginCity:       dep[:2] + dep[:1],
		DestinationCity:  arr[:2] + arr[:1],
		DepartureUTC:     departure,
		ArrivalUTC:       departure.Add(time.Duration(hours * float64(time.Hour))),
		TravelHours:      hours,
		AircraftType:     "320",
	}
}

func factor(dep, arr string, seats int, tonnes float64) models.EmissionFactor {
	return models.EmissionFactor{
		Key:            models.EmissionKey{DepartureAirport: dep, ArrivalAirport: arr, AircraftType: "320"},
		Seats:          seats,
		TotalCO2Tonnes: tonnes,
	}
}

func fixtureLegs() []models.FlightLeg {
	multiStop := leg("ZZ", "900", "AAX", "MMX", at(0, 5), 9)
	multiStop.DestinationCity = "ZZZ"
	multiStop.Stops = 1

	return []models.FlightLeg{
		leg("AA", "1", "AAX", "MMX", at(0, 8), 3),
		leg("AA", "2", "AAX", "MMX", at(1, 8), 3),
		leg("AA", "3", "MMX", "AAX", at(2, 18), 3),
		leg("AA", "4", "MMX", "AAX", at(3, 18), 3),
		leg("BB", "1", "BBX", "MMX", at(0, 10), 2),
		leg("BB", "2", "MMX", "BBX", at(2, 20), 2),
		leg("XX", "1", "AAX", "BBX", at(0, 6), 4),
		leg("XX", "2", "BBX", "AAX", at(3, 6), 4),
		leg("HH", "1", "AAX", "HHX", at(0, 7), 1),
		leg("HH", "2", "HHX", "MMX", at(0, 10), 1),
		leg("HH", "3", "MMX", "HHX", at(2, 17), 1),
		leg("HH", "4", "HHX", "AAX", at(2, 20), 1),
		multiStop,
	}
}

func fixtureEmissions() []models.EmissionFactor {
	return []models.EmissionFactor{
		factor("AAX", "MMX", 100, 30),
		factor("AAX", "MMX", 100, 90),
		factor("MMX", "AAX", 100, 30),
		factor("BBX", "MMX", 100, 20),
		factor("MMX", "BBX", 100, 20),
		factor("AAX", "BBX", 100, 25),
		factor("BBX", "AAX", 100, 25),
		factor("AAX", "HHX", 100, 5),
		factor("HHX", "MMX", 100, 5),
		factor("MMX", "HHX", 100, 5),
		factor("HHX", "AAX", 100, 5),
	}
}

func fixtureDataset() *Dataset {
	return NewDataset(fixtureLegs(), fixtureEmissions())
}

func fixtureScenario() models.Scenario {
	return models.Scenario{
		Attendees: []models.AttendeeGroup{
			{HomeCity: "Alpha", CityCode: "AAA", Headcount: 3},
			{HomeCity: "Bravo", CityCode: "BBB", Headcount: 2},
		},
		Window:             fixtureWindow(),
		EventDurationHours: 8,
	}
}

func query(origin, destination string, includeOneStop bool) TripQuery {
	w := fixtureWindow()
	return TripQuery{
		Origin:             origin,
		Destination:        destination,
		WindowStart:        w.Start,
		WindowEnd:          w.End,
		EventDurationHours: 8,
		IncludeOneStop:     includeOneStop,
	}
}

func route(l models.FlightLeg) models.RouteLeg {
	return models.RouteLeg{
		Type:             models.RouteDirect,
		Carrier:          l.Carrier,
		FlightNumber:     l.FlightNumber,
		DepartureAirport: l.DepartureAirport,
		ArrivalAirport:   l.ArrivalAirport,
		DepartureUTC:     l.DepartureUTC,
		ArrivalUTC:       l.ArrivalUTC,
		TravelHours:      l.TravelHours,
	}
}
