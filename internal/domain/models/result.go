package models

import "time"

type CityScore struct {
	City  string
	Score float64
}

type Direction uint8

const (
	DirectionUnknown Direction = iota
	DirectionOut
	DirectionIn
)

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	default:
		return "unknown"
	}
}

type Ticket struct {
	DepartureAirport string
	ArrivalAirport   string
	Carrier          string
	FlightNumber     string
	DepartureUTC     time.Time
	Headcount        int
	Direction        Direction
	RouteType        RouteType
}

type ItineraryEntry struct {
	Group  AttendeeGroup
	Option RoundTripOption
}

// Itinerary is one chosen round trip per attendee group.
type Itinerary struct {
	City    string
	Entries []ItineraryEntry
}

type ItineraryMetrics struct {
	TotalCO2           float64
	AverageCO2         float64
	AverageTravelHours float64
	MedianTravelHours  float64
	MinTravelHours     float64
	MaxTravelHours     float64
	TravelHoursByCity  map[string]float64
	SpanStart          time.Time
	SpanEnd            time.Time
	SpanHours          float64
	MeetingStart       time.Time
	MeetingEnd         time.Time
	Tickets            []Ticket
}

type OptimizationResult struct {
	Rank                int
	City                string
	Phase1Score         float64
	EventStart          time.Time
	EventEnd            time.Time
	SpanStart           time.Time
	SpanEnd             time.Time
	SpanHours           float64
	TotalCO2            float64
	AverageCO2PerPerson float64
	AverageTravelHours  float64
	MedianTravelHours   float64
	MaxTravelHours      float64
	MinTravelHours      float64
	AttendeeTravelHours map[string]float64
	Itinerary           []Ticket
}
