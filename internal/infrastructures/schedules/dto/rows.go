package dto

// ScheduleRow is one line of a daily schedule file. Columns not listed here are
// ignored; values stay raw so the mapper can tell empty from malformed.
type ScheduleRow struct {
	Carrier       string `csv:"CARRIER"`
	FlightNumber  string `csv:"FLTNO"`
	DepAirport    string `csv:"DEPAPT"`
	ArrAirport    string `csv:"ARRAPT"`
	ElapsedTime   string `csv:"ELPTIM"`
	DepartureUTC  string `csv:"SCHEDULED_DEPARTURE_DATE_TIME_UTC"`
	ArrivalUTC    string `csv:"SCHEDULED_ARRIVAL_DATE_TIME_UTC"`
	Stops         string `csv:"STOPS"`
	EquipmentICAO string `csv:"EQUIPMENT_CD_ICAO"`
	DepCity       string `csv:"DEPCITY"`
	ArrCity       string `csv:"ARRCITY"`
	Service       string `csv:"SERVICE"`
	Operating     string `csv:"OPERATING"`
}

type EmissionRow struct {
	DepartureAirport string `csv:"DEPARTURE_AIRPORT"`
	ArrivalAirport   string `csv:"ARRIVAL_AIRPORT"`
	AircraftType     string `csv:"AIRCRAFT_TYPE"`
	Seats            string `csv:"SEATS"`
	TotalCO2Tonnes   string `csv:"ESTIMATED_CO2_TOTAL_TONNES"`
}
