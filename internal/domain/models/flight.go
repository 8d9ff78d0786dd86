package models

import "time"

// FlightLeg is one scheduled segment as delivered by the flight table.
type FlightLeg struct {
	Carrier          string
	FlightNumber     string
	DepartureAirport string
	ArrivalAirport   string
	OriginCity       string
	DestinationCity  string
	DepartureUTC     time.Time
	ArrivalUTC       time.Time
	TravelHours      float64
	Stops            int
	AircraftType     string
}

func (l FlightLeg) IsDirect() bool {
	return l.Stops == 0
}

type EmissionKey struct {
	DepartureAirport string
	ArrivalAirport   string
	AircraftType     string
}

type EmissionFactor struct {
	Key            EmissionKey
	Seats          int
	TotalCO2Tonnes float64
}

// CO2PerPerson is undefined for factors without seats; callers drop those.
func (f EmissionFactor) CO2PerPerson() (float64, bool) {
	if f.Seats <= 0 {
		return 0, false
	}
	return f.TotalCO2Tonnes / float64(f.Seats), true
}

// ElapsedHours converts a packed HHMM duration into hours.
func ElapsedHours(packed int) float64 {
	return float64(packed/100) + float64(packed%100)/60
}
