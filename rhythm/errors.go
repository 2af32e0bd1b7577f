package rhythm

import "errors"

var (
	// ErrIndexOutOfRange is returned when a step index falls outside the measure.
	ErrIndexOutOfRange = errors.New("rhythm: index out of range")

	// ErrPatternTooLarge is returned when a measure holds more steps than a pattern can store.
	ErrPatternTooLarge = errors.New("rhythm: pattern too large")

	// ErrMalformedPattern is returned when a textual pattern can't be read.
	ErrMalformedPattern = errors.New("rhythm: malformed pattern")
)
