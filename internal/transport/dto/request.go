package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

type OptimizeRequest struct {
	Attendees                 Attendees      `json:"attendees"`
	AvailabilityWindow        *Window        `json:"availability_window"`
	EventDuration             *EventDuration `json:"event_duration"`
	WeightCO2                 *float64       `json:"weight_co2"`
	WeightAvgVsStd            *float64       `json:"weight_avg_vs_std"`
	ConsiderConnectingFlights *bool          `json:"consider_connecting_flights"`
}

type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type EventDuration struct {
	Days  float64 `json:"days"`
	Hours float64 `json:"hours"`
}

// Attendees keeps the order in which cities appear in the request. It decodes
// either an object of city name to headcount or a list of {"city", "count"}
// entries. A repeated city keeps its first position and its last count.
type Attendees []models.AttendeeInput

type attendeeEntry struct {
	City  string          `json:"city"`
	Count json.RawMessage `json:"count"`
}

func (a *Attendees) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var entries []attendeeEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		out := make(Attendees, 0, len(entries))
		for _, e := range entries {
			count, err := parseCount(e.City, e.Count)
			if err != nil {
				return err
			}
			out = out.with(e.City, count)
		}
		*a = out
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attendees must be an object or a list")
	}

	out := make(Attendees, 0, 8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		city := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		count, err := parseCount(city, raw)
		if err != nil {
			return err
		}
		out = out.with(city, count)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}

func (a Attendees) with(city string, count int) Attendees {
	for i := range a {
		if a[i].City == city {
			a[i].Headcount = count
			return a
		}
	}
	return append(a, models.AttendeeInput{City: city, Headcount: count})
}

func parseCount(city string, raw json.RawMessage) (int, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("attendee count for %q must be a number", city)
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("attendee count for %q must be a whole number", city)
	}
	if math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("attendee count for %q is too large", city)
	}
	return int(v), nil
}

// ToScenarioInput checks that the required sections are present and parses
// the window instants. Semantic validation is left to the service.
func (r OptimizeRequest) ToScenarioInput() (models.ScenarioInput, error) {
	if r.Attendees == nil {
		return models.ScenarioInput{}, fmt.Errorf("%w: missing 'attendees' field", derr.ErrInvalidArgument)
	}
	if r.AvailabilityWindow == nil {
		return models.ScenarioInput{}, fmt.Errorf("%w: missing 'availability_window' field", derr.ErrInvalidArgument)
	}
	if r.EventDuration == nil {
		return models.ScenarioInput{}, fmt.Errorf("%w: missing 'event_duration' field", derr.ErrInvalidArgument)
	}

	start, err := ParseInstant(r.AvailabilityWindow.Start)
	if err != nil {
		return models.ScenarioInput{}, fmt.Errorf("%w: availability_window.start: %v", derr.ErrInvalidArgument, err)
	}
	end, err := ParseInstant(r.AvailabilityWindow.End)
	if err != nil {
		return models.ScenarioInput{}, fmt.Errorf("%w: availability_window.end: %v", derr.ErrInvalidArgument, err)
	}

	return models.ScenarioInput{
		Attendees:                 []models.AttendeeInput(r.Attendees),
		WindowStart:               start,
		WindowEnd:                 end,
		EventDays:                 r.EventDuration.Days,
		EventHours:                r.EventDuration.Hours,
		WeightCO2:                 r.WeightCO2,
		WeightAvgVsStd:            r.WeightAvgVsStd,
		ConsiderConnectingFlights: r.ConsiderConnectingFlights,
	}, nil
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseInstant reads an ISO-8601 instant; values without an offset are UTC.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid instant %q", value)
}
