package hours

import "errors"

var (
	ErrInvalidTime      = errors.New("invalid time, expected HH:MM")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrZeroLengthShift  = errors.New("start time and end time must differ")
	ErrCapacityExceeded = errors.New("productive hours exceed the remaining capacity")
)
