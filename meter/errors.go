package meter

import "errors"

var (
	// ErrInvalidMeter is returned when a time signature's denominator has no canonical beat unit.
	ErrInvalidMeter = errors.New("meter: invalid time signature")

	// ErrUnrepresentableMeter is returned when the step unit is coarser than the beat unit.
	ErrUnrepresentableMeter = errors.New("meter: time signature not representable in step unit")

	// ErrContextSensitiveMeter is returned for meters that can't be split into binary and
	// ternary subdivisions only (e.g. 5/4 or 7/8).
	ErrContextSensitiveMeter = errors.New("meter: context-sensitive meter")
)
