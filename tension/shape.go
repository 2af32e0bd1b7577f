package tension

import (
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/ease"
	"github.com/pkg/errors"
)

const twoPi = 2 * math.Pi

// Shape names a preset tension curve.
type Shape string

const (
	ShapeLinear     Shape = "linear"
	ShapeInQuad     Shape = "in-quad"
	ShapeOutQuad    Shape = "out-quad"
	ShapeInOutQuad  Shape = "in-out-quad"
	ShapeInOutCubic Shape = "in-out-cubic"
	ShapeInOutSine  Shape = "in-out-sine"
	ShapeSawtooth   Shape = "sawtooth"
	ShapeSine       Shape = "sine"
)

var shapes = map[Shape]func(t float64) float64{
	ShapeLinear:     ease.Linear,
	ShapeInQuad:     ease.InQuad,
	ShapeOutQuad:    ease.OutQuad,
	ShapeInOutQuad:  ease.InOutQuad,
	ShapeInOutCubic: ease.InOutCubic,
	ShapeInOutSine:  ease.InOutSine,
	ShapeSawtooth:   sawtooth,
	ShapeSine:       sineWave,
}

// Shapes lists the known shape names.
func Shapes() []Shape {
	return []Shape{
		ShapeLinear, ShapeInQuad, ShapeOutQuad, ShapeInOutQuad,
		ShapeInOutCubic, ShapeInOutSine, ShapeSawtooth, ShapeSine,
	}
}

// ParseShape looks up a shape by name.
func ParseShape(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := shapes[s]; !ok {
		return "", errors.Wrapf(ErrUnknownShape, "%q", name)
	}
	return s, nil
}

// FromShape samples shape at n evenly spaced phases of one measure. The easing shapes run from
// 0 on the downbeat to 1 on the last step.
func FromShape(shape Shape, n int) ([]float64, error) {
	fn, ok := shapes[shape]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownShape, "%q", shape)
	}
	if n <= 0 {
		return []float64{}, nil
	}

	out := make([]float64, n)
	for i := range out {
		phase := 0.0
		if n > 1 {
			phase = float64(i) / float64(n-1)
		}
		if shape == ShapeSawtooth || shape == ShapeSine {
			// periodic shapes don't repeat the downbeat at the end of the measure
			phase = float64(i) / float64(n)
		}
		out[i] = Clamp(fn(phase), 0, 1)
	}
	return out, nil
}

// Parse reads a comma or space separated list of tension values in [0, 1].
func Parse(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, errors.Wrap(ErrInvalidCurve, "empty curve")
	}

	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidCurve, "value %d: %q is not a number", i, f)
		}
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, errors.Wrapf(ErrInvalidCurve, "value %d: %v outside [0, 1]", i, v)
		}
		out[i] = v
	}
	return out, nil
}

// sawtooth rises from 0 to 1 over one period.
func sawtooth(t float64) float64 {
	phase := 0.0
	if math.Mod(t, 1) != 0.0 {
		phase = math.Mod(t*twoPi, twoPi)
	}
	if phase < 0 {
		phase += twoPi
	}
	return phase / twoPi
}

// sineWave starts and ends a period at 0 and peaks at 1 halfway.
func sineWave(t float64) float64 {
	return 0.5 - 0.5*math.Cos(twoPi*t)
}
