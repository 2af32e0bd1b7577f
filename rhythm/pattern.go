package rhythm

import (
	"strings"

	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/pkg/errors"
)

// MaxSteps is the largest number of steps a single pattern can hold.
const MaxSteps = 64

const (
	onsetRune = 'x'
	restRune  = '-'
)

// PatternID encodes the onsets of a pattern. Bit i is set when step i holds an onset, so the
// least significant bit is the first step.
type PatternID uint64

// Pattern is a monophonic rhythm spanning one measure.
type Pattern struct {
	ts       meter.TimeSignature
	stepUnit unit.Unit
	steps    int
	bits     uint64
}

// NewPattern creates a pattern for one measure of ts at stepUnit resolution. Bits of id beyond
// the measure's step count are dropped.
func NewPattern(ts meter.TimeSignature, stepUnit unit.Unit, id PatternID) (*Pattern, error) {
	p := &Pattern{}
	if err := p.ResetTo(ts, stepUnit); err != nil {
		return nil, err
	}
	p.Update(id)
	return p, nil
}

// Parse reads a pattern written in x/- notation with the first step leftmost, e.g. "x--x---x".
func Parse(ts meter.TimeSignature, stepUnit unit.Unit, s string) (*Pattern, error) {
	p, err := NewPattern(ts, stepUnit, 0)
	if err != nil {
		return nil, err
	}

	s = strings.TrimSpace(s)
	if len(s) != p.steps {
		return nil, errors.Wrapf(ErrMalformedPattern, "%q has %d steps, %s in %s needs %d",
			s, len(s), ts, stepUnit, p.steps)
	}

	for i, r := range s {
		switch r {
		case onsetRune, 'X':
			p.bits |= 1 << uint(i)
		case restRune, '.':
		default:
			return nil, errors.Wrapf(ErrMalformedPattern, "unexpected %q at step %d", r, i)
		}
	}

	return p, nil
}

// StepCount returns the number of steps in one measure of ts at stepUnit resolution, failing if
// the meter can't be represented or doesn't fit in a pattern.
func StepCount(ts meter.TimeSignature, stepUnit unit.Unit) (int, error) {
	if err := ts.CheckStepUnit(stepUnit); err != nil {
		return 0, err
	}

	n := ts.ExactMeasureDuration(stepUnit)
	if n > MaxSteps {
		return 0, errors.Wrapf(ErrPatternTooLarge, "%d steps exceeds maximum of %d", n, MaxSteps)
	}
	return n, nil
}

func (p *Pattern) TimeSignature() meter.TimeSignature { return p.ts }
func (p *Pattern) StepUnit() unit.Unit                { return p.stepUnit }
func (p *Pattern) Steps() int                         { return p.steps }

// ID returns the pattern id of the current onsets.
func (p *Pattern) ID() PatternID { return PatternID(p.bits) }

// Update replaces all onsets with the ones encoded in id.
func (p *Pattern) Update(id PatternID) {
	p.bits = uint64(id) & p.mask()
}

// Step reports whether step i holds an onset.
func (p *Pattern) Step(i int) (bool, error) {
	if err := p.checkIndex(i); err != nil {
		return false, err
	}
	return p.bits&(1<<uint(i)) != 0, nil
}

// Set places (onset true) or clears an onset on step i.
func (p *Pattern) Set(i int, onset bool) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}

	if onset {
		p.bits |= 1 << uint(i)
	} else {
		p.bits &^= 1 << uint(i)
	}
	return nil
}

// Toggle turns an onset on step i into a rest and vice versa.
func (p *Pattern) Toggle(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	p.bits ^= 1 << uint(i)
	return nil
}

// Reset clears all onsets.
func (p *Pattern) Reset() {
	p.bits = 0
}

// ResetTo switches the pattern to another meter and step unit and clears all onsets. The pattern
// is left untouched on error.
func (p *Pattern) ResetTo(ts meter.TimeSignature, stepUnit unit.Unit) error {
	n, err := StepCount(ts, stepUnit)
	if err != nil {
		return err
	}

	p.ts = ts
	p.stepUnit = stepUnit
	p.steps = n
	p.bits = 0
	return nil
}

// Onsets returns the number of steps holding an onset.
func (p *Pattern) Onsets() int {
	count := 0
	for b := p.bits; b != 0; b &= b - 1 {
		count++
	}
	return count
}

// Equal reports whether both patterns share meter, step unit and onsets.
func (p *Pattern) Equal(other *Pattern) bool {
	if other == nil {
		return false
	}
	return p.ts.Equal(other.ts) && p.stepUnit.Equal(other.stepUnit) && p.bits == other.bits
}

// Clone returns an independent copy of the pattern.
func (p *Pattern) Clone() *Pattern {
	c := *p
	return &c
}

func (p *Pattern) String() string {
	var sb strings.Builder
	sb.Grow(p.steps)
	for i := 0; i < p.steps; i++ {
		if p.bits&(1<<uint(i)) != 0 {
			sb.WriteByte(onsetRune)
		} else {
			sb.WriteByte(restRune)
		}
	}
	return sb.String()
}

// MusicalEvents segments the pattern into notes, rests and tied notes. See Segmenter.
func (p *Pattern) MusicalEvents(cyclic, trimToBeat bool) ([]MusicalEvent, error) {
	seg, err := NewSegmenter(p.ts, p.stepUnit, trimToBeat)
	if err != nil {
		return nil, err
	}
	return seg.Events(p.ID(), cyclic), nil
}

func (p *Pattern) mask() uint64 {
	if p.steps >= MaxSteps {
		return ^uint64(0)
	}
	return 1<<uint(p.steps) - 1
}

func (p *Pattern) checkIndex(i int) error {
	if i < 0 || i >= p.steps {
		return errors.Wrapf(ErrIndexOutOfRange, "expected index in range [0, %d) but got %d", p.steps, i)
	}
	return nil
}
