package planner

import (
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

// Measure derives the itinerary statistics. Every group's option counts once
// per attendee.
func Measure(it models.Itinerary, sc models.Scenario) models.ItineraryMetrics {
	var (
		m       models.ItineraryMetrics
		hours   []sample
		co2     []sample
		options []models.RoundTripOption
	)

	hoursByCity := make(map[string][]sample)
	for _, entry := range it.Entries {
		if entry.Group.Headcount < 1 {
			continue
		}
		options = append(options, entry.Option)
		hours = append(hours, sample{value: entry.Option.TravelHours, count: entry.Group.Headcount})
		co2 = append(co2, sample{value: entry.Option.TotalCO2, count: entry.Group.Headcount})
		hoursByCity[entry.Group.HomeCity] = append(hoursByCity[entry.Group.HomeCity],
			sample{value: entry.Option.TravelHours, count: entry.Group.Headcount})
	}

	m.TotalCO2 = weightedSum(co2)
	m.AverageCO2 = weightedMean(co2)
	m.AverageTravelHours = weightedMean(hours)
	m.MedianTravelHours = weightedMedian(hours)
	m.MinTravelHours, m.MaxTravelHours = weightedMinMax(hours)

	m.TravelHoursByCity = make(map[string]float64, len(hoursByCity))
	for city, values := range hoursByCity {
		m.TravelHoursByCity[city] = weightedMean(values)
	}

	first, last, ok := spanBounds(options)
	if ok {
		m.SpanStart = first
		m.SpanEnd = last
		m.SpanHours = last.Sub(first).Hours()
		m.MeetingStart = latestArrival(options)
	} else {
		m.SpanStart = sc.Window.Start
		m.SpanEnd = sc.Window.End
		m.MeetingStart = sc.Window.Start
	}
	m.MeetingEnd = m.MeetingStart.Add(sc.EventDuration())

	m.Tickets = tickets(it)
	return m
}

func latestArrival(trips []models.RoundTripOption) (latest time.Time) {
	for _, trip := range trips {
		if trip.FirstArrival != nil && trip.FirstArrival.After(latest) {
			latest = *trip.FirstArrival
		}
	}
	return latest
}

func tickets(it models.Itinerary) []models.Ticket {
	out := make([]models.Ticket, 0, 2*len(it.Entries))
	for _, entry := range it.Entries {
		opt := entry.Option
		if opt.Outbound.Type != models.RouteLocal {
			out = append(out, ticketFor(opt.Outbound, entry.Group.Headcount, models.DirectionOut))
		}
		if opt.Inbound.Type != models.RouteLocal {
			out = append(out, ticketFor(opt.Inbound, entry.Group.Headcount, models.DirectionIn))
		}
	}
	return out
}

func ticketFor(leg models.RouteLeg, headcount int, dir models.Direction) models.Ticket {
	return models.Ticket{
		DepartureAirport: leg.DepartureAirport,
		ArrivalAirport:   leg.ArrivalAirport,
		Carrier:          leg.Carrier,
		FlightNumber:     leg.FlightNumber,
		DepartureUTC:     leg.DepartureUTC,
		Headcount:        headcount,
		Direction:        dir,
		RouteType:        leg.Type,
	}
}

// BuildReport turns phase 2 metrics into a ranked result; display figures are
// rounded to two decimals.
func BuildReport(rank int, city string, phase1Score float64, m models.ItineraryMetrics) models.OptimizationResult {
	byCity := make(map[string]float64, len(m.TravelHoursByCity))
	for home, hours := range m.TravelHoursByCity {
		byCity[home] = round2(hours)
	}

	return models.OptimizationResult{
		Rank:                rank,
		City:                city,
		Phase1Score:         round2(phase1Score),
		EventStart:          m.MeetingStart,
		EventEnd:            m.MeetingEnd,
		SpanStart:           m.SpanStart,
		SpanEnd:             m.SpanEnd,
		SpanHours:           round2(m.SpanHours),
		TotalCO2:            round2(m.TotalCO2),
		AverageCO2PerPerson: round2(m.AverageCO2),
		AverageTravelHours:  round2(m.AverageTravelHours),
		MedianTravelHours:   round2(m.MedianTravelHours),
		MaxTravelHours:      round2(m.MaxTravelHours),
		MinTravelHours:      round2(m.MinTravelHours),
		AttendeeTravelHours: byCity,
		Itinerary:           m.Tickets,
	}
}
