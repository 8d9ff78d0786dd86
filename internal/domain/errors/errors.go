package errors

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownCity     = errors.New("unknown city")
	ErrDataUnavailable = errors.New("no schedule data for availability window")
	ErrNoFeasibleCity  = errors.New("no valid meeting locations found")
	ErrDataAccess      = errors.New("flight data access failure")
	ErrResultNotFound  = errors.New("result not found")
)
