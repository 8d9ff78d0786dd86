package models

import "time"

type AttendeeInput struct {
	City      string
	Headcount int
}

// ScenarioInput is a scenario as submitted by a caller, before city names are
// resolved and defaults applied. Nil optional fields take service defaults.
type ScenarioInput struct {
	Attendees                 []AttendeeInput
	WindowStart               time.Time
	WindowEnd                 time.Time
	EventDays                 float64
	EventHours                float64
	WeightCO2                 *float64
	WeightAvgVsStd            *float64
	ConsiderConnectingFlights *bool
}
