package tension

import (
	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

// Clamp limits t to [min, max]. The bounds may be given in any order.
func Clamp[T number](t, min, max T) T {
	if min > max {
		min, max = max, min
	}
	if t < min {
		return min
	}
	if t > max {
		return max
	}
	return t
}

// ToUnitClamp maps [rMin, rMax] linearly onto [0, 1], clamping values outside the interval.
// An empty interval maps everything to 0.
func ToUnitClamp(rMin, rMax float64) func(m float64) float64 {
	return func(m float64) float64 {
		if rMax == rMin {
			return 0
		}
		return Clamp((m-rMin)/(rMax-rMin), 0, 1)
	}
}

// ClampCurve returns a copy of curve with every value clamped to [0, 1].
func ClampCurve(curve []float64) []float64 {
	out := make([]float64, len(curve))
	for i, v := range curve {
		out[i] = Clamp(v, 0, 1)
	}
	return out
}

// Resample stretches or squeezes a cyclic curve to n values by linear interpolation, so that a
// drawn envelope survives a change of step count. The last value interpolates towards the first
// value of the next measure. An empty curve resamples to zeros.
func Resample(curve []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}

	out := make([]float64, n)
	oldN := len(curve)
	if oldN == 0 {
		return out
	}

	for i := range out {
		pos := float64(i) / float64(n) * float64(oldN)
		lo := int(pos)
		hi := (lo + 1) % oldN
		ratio := pos - float64(lo)
		out[i] = curve[lo] + (curve[hi]-curve[lo])*ratio
	}
	return out
}
