package unit

import (
	"fmt"
	"strconv"
	"strings"
)

// AtomsPerWhole is the resolution every unit is normalized to. Denominators must divide it evenly.
const AtomsPerWhole = 128

// Unit is a note duration expressed as numerator/denominator of a whole note.
type Unit struct {
	numerator   int
	denominator int
	atoms       int
	name        string
}

var (
	Sixteenth = newUnit(16, "sixteenth")
	Eighth    = newUnit(8, "eighth")
	Quarter   = newUnit(4, "quarter")
	Half      = newUnit(2, "half")
	Whole     = newUnit(1, "whole")
)

// ordered from shortest to longest
var all = []Unit{Sixteenth, Eighth, Quarter, Half, Whole}

func newUnit(denominator int, name string) Unit {
	if AtomsPerWhole%denominator != 0 {
		panic(fmt.Sprintf("unit denominator %d does not divide %d atoms", denominator, AtomsPerWhole))
	}

	return Unit{
		numerator:   1,
		denominator: denominator,
		atoms:       AtomsPerWhole / denominator,
		name:        name,
	}
}

// All returns the canonical units from shortest to longest.
func All() []Unit {
	out := make([]Unit, len(all))
	copy(out, all)
	return out
}

// Get returns the canonical unit for numerator/denominator. Only numerator 1 with a
// denominator of 1, 2, 4, 8 or 16 is representable.
func Get(numerator, denominator int) (Unit, bool) {
	if numerator != 1 || denominator <= 0 || denominator > AtomsPerWhole {
		return Unit{}, false
	}

	for _, u := range all {
		if u.denominator == denominator {
			return u, true
		}
	}

	return Unit{}, false
}

// FromDenominator is shorthand for Get(1, denominator).
func FromDenominator(denominator int) (Unit, bool) {
	return Get(1, denominator)
}

// Parse accepts a unit name ("eighth") or a fraction ("1/8").
func Parse(s string) (Unit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, u := range all {
		if u.name == s {
			return u, true
		}
	}

	num, den, found := strings.Cut(s, "/")
	if !found {
		return Unit{}, false
	}

	n, err := strconv.Atoi(num)
	if err != nil {
		return Unit{}, false
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return Unit{}, false
	}

	return Get(n, d)
}

func (u Unit) Numerator() int   { return u.numerator }
func (u Unit) Denominator() int { return u.denominator }
func (u Unit) Atoms() int       { return u.atoms }

// Name returns the note-value name, e.g. "quarter".
func (u Unit) Name() string { return u.name }

// IsZero reports whether u is the zero value rather than a canonical unit.
func (u Unit) IsZero() bool { return u.atoms == 0 }

func (u Unit) String() string {
	return fmt.Sprintf("%d/%d", u.numerator, u.denominator)
}

// Convert expresses value (in u) in the unit to.
func (u Unit) Convert(value float64, to Unit) float64 {
	return value * float64(u.atoms) / float64(to.atoms)
}

// ConvertExact is Convert with integer truncation. Only use it where the ratio is known to be exact.
func (u Unit) ConvertExact(value int, to Unit) int {
	return value * u.atoms / to.atoms
}

// Compare orders units by duration: -1 if u is shorter than other, 1 if longer, 0 if equal.
func (u Unit) Compare(other Unit) int {
	switch {
	case u.atoms < other.atoms:
		return -1
	case u.atoms > other.atoms:
		return 1
	default:
		return 0
	}
}

func (u Unit) Equal(other Unit) bool   { return u.atoms == other.atoms }
func (u Unit) Less(other Unit) bool    { return u.atoms < other.atoms }
func (u Unit) Greater(other Unit) bool { return u.atoms > other.atoms }
