package models

import "time"

type AttendeeGroup struct {
	HomeCity  string
	CityCode  string
	Headcount int
}

type Window struct {
	Start time.Time
	End   time.Time
}

type Scenario struct {
	Attendees          []AttendeeGroup
	Window             Window
	EventDurationHours float64
}

func (s Scenario) EventDuration() time.Duration {
	return time.Duration(s.EventDurationHours * float64(time.Hour))
}

func (s Scenario) HomeCodes() []string {
	codes := make([]string, 0, len(s.Attendees))
	seen := make(map[string]struct{}, len(s.Attendees))
	for _, group := range s.Attendees {
		if _, ok := seen[group.CityCode]; ok {
			continue
		}
		seen[group.CityCode] = struct{}{}
		codes = append(codes, group.CityCode)
	}
	return codes
}

type Weights struct {
	CO2      float64
	AvgVsStd float64
}

// PlanRequest is everything one optimization run needs.
type PlanRequest struct {
	Scenario       Scenario
	Weights        Weights
	IncludeOneStop bool
}
