package models

import "time"

type RouteType uint8

const (
	RouteUnknown RouteType = iota
	RouteDirect
	RouteOneStop
	RouteLocal
)

func (t RouteType) String() string {
	switch t {
	case RouteDirect:
		return "Direct"
	case RouteOneStop:
		return "1-Stop"
	case RouteLocal:
		return "Local"
	default:
		return "Unknown"
	}
}

// RouteLeg is a direct or one-stop journey in one direction with emissions attached.
// For one-stop legs carrier and flight number are those of the first segment and
// TravelHours already includes the layover.
type RouteLeg struct {
	Type              RouteType
	Carrier           string
	FlightNumber      string
	DepartureAirport  string
	ArrivalAirport    string
	ConnectionAirport string
	DepartureUTC      time.Time
	ArrivalUTC        time.Time
	CO2PerPerson      float64
	TravelHours       float64
	LayoverHours      float64
}

type RoundTripOption struct {
	Outbound      RouteLeg
	Inbound       RouteLeg
	TotalCO2      float64
	TravelHours   float64
	FirstArrival  *time.Time
	LastDeparture *time.Time
}

func (o RoundTripOption) IsLocal() bool {
	return o.Outbound.Type == RouteLocal
}

func LocalRoundTrip() RoundTripOption {
	return RoundTripOption{
		Outbound: RouteLeg{Type: RouteLocal},
		Inbound:  RouteLeg{Type: RouteLocal},
	}
}

func NewRoundTrip(outbound, inbound RouteLeg) RoundTripOption {
	arrival := outbound.ArrivalUTC
	departure := inbound.DepartureUTC
	return RoundTripOption{
		Outbound:      outbound,
		Inbound:       inbound,
		TotalCO2:      outbound.CO2PerPerson + inbound.CO2PerPerson,
		TravelHours:   outbound.TravelHours + inbound.TravelHours,
		FirstArrival:  &arrival,
		LastDeparture: &departure,
	}
}
