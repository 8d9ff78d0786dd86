package dto

import (
	"encoding/json"
	"time"

	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

type Result struct {
	Rank                      int                `json:"rank"`
	EventLocation             string             `json:"event_location"`
	Phase1Score               float64            `json:"phase_1_score"`
	EventDates                Interval           `json:"event_dates"`
	EventSpan                 Span               `json:"event_span"`
	TotalCO2Tonnes            float64            `json:"total_co2_tonnes"`
	AverageCO2PerPersonTonnes float64            `json:"average_co2_per_person_tonnes"`
	AverageTravelHours        float64            `json:"average_travel_hours"`
	MedianTravelHours         float64            `json:"median_travel_hours"`
	MaxTravelHours            float64            `json:"max_travel_hours"`
	MinTravelHours            float64            `json:"min_travel_hours"`
	AttendeeTravelHours       map[string]float64 `json:"attendee_travel_hours"`
	Itinerary                 []Ticket           `json:"itinerary"`
}

type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Span struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	TotalHours float64 `json:"total_hours"`
}

// Ticket encodes as a positional array:
// [departure, arrival, carrier, flight number, departure instant, headcount, direction, route type].
type Ticket struct {
	DepartureAirport string
	ArrivalAirport   string
	Carrier          string
	FlightNumber     string
	DepartureUTC     string
	Headcount        int
	Direction        string
	RouteType        string
}

func (t Ticket) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		t.DepartureAirport,
		t.ArrivalAirport,
		t.Carrier,
		t.FlightNumber,
		t.DepartureUTC,
		t.Headcount,
		t.Direction,
		t.RouteType,
	})
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ToResults(results []models.OptimizationResult) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		out = append(out, ToResult(r))
	}
	return out
}

func ToResult(r models.OptimizationResult) Result {
	tickets := make([]Ticket, 0, len(r.Itinerary))
	for _, t := range r.Itinerary {
		tickets = append(tickets, Ticket{
			DepartureAirport: t.DepartureAirport,
			ArrivalAirport:   t.ArrivalAirport,
			Carrier:          t.Carrier,
			FlightNumber:     t.FlightNumber,
			DepartureUTC:     formatInstant(t.DepartureUTC),
			Headcount:        t.Headcount,
			Direction:        t.Direction.String(),
			RouteType:        t.RouteType.String(),
		})
	}

	hours := r.AttendeeTravelHours
	if hours == nil {
		hours = map[string]float64{}
	}

	return Result{
		Rank:                      r.Rank,
		EventLocation:             r.City,
		Phase1Score:               r.Phase1Score,
		EventDates:                Interval{Start: formatInstant(r.EventStart), End: formatInstant(r.EventEnd)},
		EventSpan:                 Span{Start: formatInstant(r.SpanStart), End: formatInstant(r.SpanEnd), TotalHours: r.SpanHours},
		TotalCO2Tonnes:            r.TotalCO2,
		AverageCO2PerPersonTonnes: r.AverageCO2PerPerson,
		AverageTravelHours:        r.AverageTravelHours,
		MedianTravelHours:         r.MedianTravelHours,
		MaxTravelHours:            r.MaxTravelHours,
		MinTravelHours:            r.MinTravelHours,
		AttendeeTravelHours:       hours,
		Itinerary:                 tickets,
	}
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
