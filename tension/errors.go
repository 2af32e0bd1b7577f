package tension

import "errors"

var (
	// ErrInvalidCurve is returned when a tension curve can't be parsed or holds values outside [0, 1].
	ErrInvalidCurve = errors.New("tension: invalid curve")

	// ErrUnknownShape is returned for a curve shape name that isn't known.
	ErrUnknownShape = errors.New("tension: unknown shape")
)
