package mappers

import (
	"errors"
	"testing"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/schedules/dto"
)

func validRow() dto.ScheduleRow {
	return dto.ScheduleRow{
		Carrier:       "SQ",
		FlightNumber:  "423",
		DepAirport:    "BOM",
		ArrAirport:    "SIN",
		ElapsedTime:   "530",
		DepartureUTC:  "2025-05-01 23:40:00",
		ArrivalUTC:    "2025-05-02T05:10:00",
		Stops:         "0",
		EquipmentICAO: "A359",
		DepCity:       "BOM",
		ArrCity:       "SIN",
		Service:       "J",
		Operating:     "Y",
	}
}

func TestToFlightLeg_MapsValidRow(t *testing.T) {
	got, ok, err := ToFlightLeg(validRow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected row to be kept")
	}

	if got.AircraftType != "359" {
		t.Fatalf("unexpected aircraft type: got %q want %q", got.AircraftType, "359")
	}
	if got.TravelHours != 5.5 {
		t.Fatalf("unexpected travel hours: got %v want %v", got.TravelHours, 5.5)
	}
	wantDep := time.Date(2025, 5, 1, 23, 40, 0, 0, time.UTC)
	if !got.DepartureUTC.Equal(wantDep) || got.DepartureUTC.Location() != time.UTC {
		t.Fatalf("unexpected departure: got %v want %v", got.DepartureUTC, wantDep)
	}
	if got.OriginCity != "BOM" || got.DestinationCity != "SIN" || got.Stops != 0 {
		t.Fatalf("unexpected leg: %+v", got)
	}
}

func TestToFlightLeg_Filters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.ScheduleRow)
	}{
		{name: "cargo service", mutate: func(r *dto.ScheduleRow) { r.Service = "F" }},
		{name: "not operating", mutate: func(r *dto.ScheduleRow) { r.Operating = "N" }},
		{name: "operating flag missing", mutate: func(r *dto.ScheduleRow) { r.Operating = "" }},
		{name: "missing arrival", mutate: func(r *dto.ScheduleRow) { r.ArrivalUTC = " " }},
		{name: "missing city", mutate: func(r *dto.ScheduleRow) { r.ArrCity = "" }},
		{name: "missing equipment", mutate: func(r *dto.ScheduleRow) { r.EquipmentICAO = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(&row)
			_, ok, err := ToFlightLeg(row)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Fatal("expected row to be dropped")
			}
		})
	}
}

func TestToFlightLeg_MalformedValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.ScheduleRow)
	}{
		{name: "timestamp", mutate: func(r *dto.ScheduleRow) { r.DepartureUTC = "01/05/2025" }},
		{name: "stops", mutate: func(r *dto.ScheduleRow) { r.Stops = "one" }},
		{name: "elapsed", mutate: func(r *dto.ScheduleRow) { r.ElapsedTime = "5.5.0" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(&row)
			_, _, err := ToFlightLeg(row)
			if !errors.Is(err, derr.ErrDataAccess) {
				t.Fatalf("unexpected error: got %v want %v", err, derr.ErrDataAccess)
			}
		})
	}
}

func TestToEmissionFactor(t *testing.T) {
	row := dto.EmissionRow{
		DepartureAirport: "BOM",
		ArrivalAirport:   "SIN",
		AircraftType:     "359",
		Seats:            "300",
		TotalCO2Tonnes:   "45.0",
	}

	got, ok, err := ToEmissionFactor(row)
	if err != nil || !ok {
		t.Fatalf("unexpected result: ok=%v err=%v", ok, err)
	}
	perPerson, _ := got.CO2PerPerson()
	if perPerson != 0.15 {
		t.Fatalf("unexpected co2 per person: got %v want %v", perPerson, 0.15)
	}

	row.Seats = "0"
	if _, ok, err := ToEmissionFactor(row); ok || err != nil {
		t.Fatalf("expected zero-seat row to be dropped: ok=%v err=%v", ok, err)
	}

	row.Seats = "many"
	if _, _, err := ToEmissionFactor(row); !errors.Is(err, derr.ErrDataAccess) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrDataAccess)
	}
}

func TestParseTime_Layouts(t *testing.T) {
	want := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	for _, value := range []string{
		"2025-05-01T08:30:00Z",
		"2025-05-01T10:30:00+02:00",
		"2025-05-01T08:30:00",
		"2025-05-01 08:30:00",
		"2025-05-01T08:30",
		"2025-05-01 08:30",
	} {
		got, err := ParseTime(value)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", value, err)
		}
		if !got.Equal(want) {
			t.Fatalf("unexpected time for %q: got %v want %v", value, got, want)
		}
	}
}

func TestAircraftType(t *testing.T) {
	cases := map[string]string{"A359": "359", "B77W": "77W", "320": "320", "E9": "E9"}
	for in, want := range cases {
		if got := AircraftType(in); got != want {
			t.Fatalf("unexpected aircraft type for %q: got %q want %q", in, got, want)
		}
	}
}
