package meter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/pkg/errors"
)

// TimeSignature is an immutable meter such as 4/4 or 6/8. The zero value is not valid; use New,
// Parse or Default.
type TimeSignature struct {
	numerator   int
	denominator int
	beatUnit    unit.Unit
}

// New creates a time signature, failing with ErrInvalidMeter if the denominator doesn't map to a
// canonical unit.
func New(numerator, denominator int) (TimeSignature, error) {
	if numerator <= 0 {
		return TimeSignature{}, errors.Wrapf(ErrInvalidMeter, "illegal time signature numerator %d", numerator)
	}

	beatUnit, ok := unit.FromDenominator(denominator)
	if !ok {
		return TimeSignature{}, errors.Wrapf(ErrInvalidMeter, "illegal time signature denominator %d", denominator)
	}

	return TimeSignature{
		numerator:   numerator,
		denominator: denominator,
		beatUnit:    beatUnit,
	}, nil
}

// MustNew is like New but panics on an invalid meter. Meant for package-level values and tests.
func MustNew(numerator, denominator int) TimeSignature {
	ts, err := New(numerator, denominator)
	if err != nil {
		panic(err)
	}
	return ts
}

// Default returns 4/4.
func Default() TimeSignature {
	return MustNew(4, 4)
}

// Parse reads a time signature written as "6/8".
func Parse(s string) (TimeSignature, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return TimeSignature{}, errors.Wrapf(ErrInvalidMeter, "expected <numerator>/<denominator>, got %q", s)
	}

	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return TimeSignature{}, errors.Wrapf(ErrInvalidMeter, "bad numerator in %q", s)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return TimeSignature{}, errors.Wrapf(ErrInvalidMeter, "bad denominator in %q", s)
	}

	return New(n, d)
}

func (ts TimeSignature) Numerator() int      { return ts.numerator }
func (ts TimeSignature) Denominator() int    { return ts.denominator }
func (ts TimeSignature) BeatUnit() unit.Unit { return ts.beatUnit }

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.numerator, ts.denominator)
}

func (ts TimeSignature) Equal(other TimeSignature) bool {
	return ts.numerator == other.numerator && ts.denominator == other.denominator
}

// MeasureDuration returns the length of one measure expressed in u.
func (ts TimeSignature) MeasureDuration(u unit.Unit) float64 {
	return ts.beatUnit.Convert(float64(ts.numerator), u)
}

// ExactMeasureDuration returns the number of steps of size stepUnit in one measure.
func (ts TimeSignature) ExactMeasureDuration(stepUnit unit.Unit) int {
	return ts.beatUnit.ConvertExact(ts.numerator, stepUnit)
}

// StepsPerBeat returns how many steps of size stepUnit fit in one beat.
func (ts TimeSignature) StepsPerBeat(stepUnit unit.Unit) int {
	return ts.beatUnit.ConvertExact(1, stepUnit)
}

// CheckStepUnit fails with ErrUnrepresentableMeter if stepUnit is coarser than the beat unit.
func (ts TimeSignature) CheckStepUnit(stepUnit unit.Unit) error {
	if stepUnit.IsZero() || stepUnit.Greater(ts.beatUnit) {
		return errors.Wrapf(ErrUnrepresentableMeter, "%s meter not representable in %s", ts, stepUnit)
	}
	return nil
}
