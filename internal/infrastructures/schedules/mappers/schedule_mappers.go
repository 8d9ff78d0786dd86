package mappers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/schedules/dto"
)

const (
	passengerService = "J"
	notOperating     = "N"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ToFlightLeg maps a schedule row. It reports false for rows that are not an
// operating passenger service or that miss a required value; malformed values
// are returned as ErrDataAccess.
func ToFlightLeg(row dto.ScheduleRow) (models.FlightLeg, bool, error) {
	if clean(row.Service) != passengerService {
		return models.FlightLeg{}, false, nil
	}
	if op := clean(row.Operating); op == "" || op == notOperating {
		return models.FlightLeg{}, false, nil
	}

	required := []string{
		row.DepAirport, row.ArrAirport, row.DepCity, row.ArrCity,
		row.DepartureUTC, row.ArrivalUTC, row.Stops, row.ElapsedTime, row.EquipmentICAO,
	}
	for _, v := range required {
		if clean(v) == "" {
			return models.FlightLeg{}, false, nil
		}
	}

	departure, err := ParseTime(row.DepartureUTC)
	if err != nil {
		return models.FlightLeg{}, false, fmt.Errorf("%w: SCHEDULED_DEPARTURE_DATE_TIME_UTC: %v", derr.ErrDataAccess, err)
	}
	arrival, err := ParseTime(row.ArrivalUTC)
	if err != nil {
		return models.FlightLeg{}, false, fmt.Errorf("%w: SCHEDULED_ARRIVAL_DATE_TIME_UTC: %v", derr.ErrDataAccess, err)
	}
	stops, err := parseInt(row.Stops)
	if err != nil {
		return models.FlightLeg{}, false, fmt.Errorf("%w: STOPS: %v", derr.ErrDataAccess, err)
	}
	elapsed, err := parseInt(row.ElapsedTime)
	if err != nil {
		return models.FlightLeg{}, false, fmt.Errorf("%w: ELPTIM: %v", derr.ErrDataAccess, err)
	}

	return models.FlightLeg{
		Carrier:          clean(row.Carrier),
		FlightNumber:     clean(row.FlightNumber),
		DepartureAirport: clean(row.DepAirport),
		ArrivalAirport:   clean(row.ArrAirport),
		OriginCity:       clean(row.DepCity),
		DestinationCity:  clean(row.ArrCity),
		DepartureUTC:     departure,
		ArrivalUTC:       arrival,
		TravelHours:      models.ElapsedHours(elapsed),
		Stops:            stops,
		AircraftType:     AircraftType(row.EquipmentICAO),
	}, true, nil
}

// ToEmissionFactor reports false for rows without seats or with a missing key
// value.
func ToEmissionFactor(row dto.EmissionRow) (models.EmissionFactor, bool, error) {
	key := models.EmissionKey{
		DepartureAirport: clean(row.DepartureAirport),
		ArrivalAirport:   clean(row.ArrivalAirport),
		AircraftType:     clean(row.AircraftType),
	}
	if key.DepartureAirport == "" || key.ArrivalAirport == "" || key.AircraftType == "" {
		return models.EmissionFactor{}, false, nil
	}
	if clean(row.Seats) == "" || clean(row.TotalCO2Tonnes) == "" {
		return models.EmissionFactor{}, false, nil
	}

	seats, err := parseInt(row.Seats)
	if err != nil {
		return models.EmissionFactor{}, false, fmt.Errorf("%w: SEATS: %v", derr.ErrDataAccess, err)
	}
	if seats <= 0 {
		return models.EmissionFactor{}, false, nil
	}
	total, err := strconv.ParseFloat(clean(row.TotalCO2Tonnes), 64)
	if err != nil {
		return models.EmissionFactor{}, false, fmt.Errorf("%w: ESTIMATED_CO2_TOTAL_TONNES: %v", derr.ErrDataAccess, err)
	}

	return models.EmissionFactor{Key: key, Seats: seats, TotalCO2Tonnes: total}, true, nil
}

// AircraftType keeps the last three characters of an ICAO equipment code.
func AircraftType(equipment string) string {
	equipment = clean(equipment)
	if len(equipment) <= 3 {
		return equipment
	}
	return equipment[len(equipment)-3:]
}

// ParseTime accepts RFC3339 and a few naive layouts; naive values are UTC.
func ParseTime(value string) (time.Time, error) {
	value = clean(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

// parseInt also accepts integral floats such as "130.0".
func parseInt(value string) (int, error) {
	value = clean(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", value)
	}
	return int(f), nil
}

func clean(value string) string {
	return strings.TrimSpace(value)
}
