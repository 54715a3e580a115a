package laptable

import "errors"

var (
	ErrMissingField   = errors.New("laptable: required field is missing")
	ErrEmptyInput     = errors.New("laptable: table has no lap times")
	ErrInvalidLapTime = errors.New("laptable: lap time is not convertible to seconds")
	ErrColumnLength   = errors.New("laptable: column length does not match table length")
	ErrUnknownColumn  = errors.New("laptable: unknown column")
)
