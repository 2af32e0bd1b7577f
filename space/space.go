package space

import (
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/rhythm"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultMaxDimensions bounds the fill to 2^20 patterns.
	DefaultMaxDimensions = 20

	// HardMaxDimensions is the largest space that can be built regardless of options.
	HardMaxDimensions = 30

	// salience of the measure's downbeat. Every other level weighs less, so the downbeat is the
	// profile maximum.
	rootWeight = 0
)

// ProgressFunc receives the fraction of patterns computed so far, in (0, 1].
type ProgressFunc func(done float64)

type options struct {
	seed          uint64
	seeded        bool
	maxDimensions int
}

// Option configures a Space.
type Option func(*options)

// WithSeed makes random queries deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithMaxDimensions overrides DefaultMaxDimensions. Values above HardMaxDimensions are capped.
func WithMaxDimensions(n int) Option {
	return func(o *options) {
		o.maxDimensions = n
	}
}

// Space holds the metrical tension vector of every pattern of one meter and step unit. It is
// empty until Fill returns and immutable afterwards, except for the distance cache kept by the
// closest and random queries. Queries are not safe for concurrent use.
type Space struct {
	ts       meter.TimeSignature
	stepUnit unit.Unit
	dims     int
	count    int

	profile  []int
	salience meter.SalienceRange
	seg      *rhythm.Segmenter

	// count x dims tension values, row i holds the vector of pattern id i
	points []float64
	ready  atomic.Bool

	cache     []cacheEntry
	target    []float64
	hasTarget bool

	rnd *rand.Rand
	src rand.Source
}

// New creates an empty space for ts at stepUnit resolution. Construction is cheap, the vectors
// are computed by Fill.
func New(ts meter.TimeSignature, stepUnit unit.Unit, opts ...Option) (*Space, error) {
	o := options{maxDimensions: DefaultMaxDimensions}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDimensions <= 0 || o.maxDimensions > HardMaxDimensions {
		o.maxDimensions = HardMaxDimensions
	}

	dims, err := rhythm.StepCount(ts, stepUnit)
	if err != nil {
		return nil, err
	}
	if dims > o.maxDimensions {
		return nil, errors.Wrapf(rhythm.ErrPatternTooLarge,
			"%s in %s has %d dimensions, limit is %d", ts, stepUnit, dims, o.maxDimensions)
	}

	profile, err := ts.MetricalSalienceProfile(stepUnit, rootWeight)
	if err != nil {
		return nil, err
	}

	seg, err := rhythm.NewSegmenter(ts, stepUnit, false)
	if err != nil {
		return nil, err
	}

	if !o.seeded {
		o.seed = rand.Uint64()
	}
	src := rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15)

	return &Space{
		ts:       ts,
		stepUnit: stepUnit,
		dims:     dims,
		count:    1 << uint(dims),
		profile:  profile,
		salience: meter.RangeOf(profile),
		seg:      seg,
		src:      src,
		rnd:      rand.New(src),
	}, nil
}

func (s *Space) TimeSignature() meter.TimeSignature { return s.ts }
func (s *Space) StepUnit() unit.Unit                { return s.stepUnit }

// Dimensions returns the number of steps, which is the length of every tension vector.
func (s *Space) Dimensions() int { return s.dims }

// PatternCount returns 2^Dimensions.
func (s *Space) PatternCount() int { return s.count }

// Ready reports whether Fill has completed.
func (s *Space) Ready() bool { return s.ready.Load() }

// SalienceProfile returns a copy of the profile the vectors were computed from.
func (s *Space) SalienceProfile() []int {
	out := make([]int, len(s.profile))
	copy(out, s.profile)
	return out
}

// Fill computes the tension vector of every pattern in increasing id order, calling progress
// (if not nil) after each one. It is a no-op once the space is ready. Concurrent calls must be
// prevented by the caller.
func (s *Space) Fill(progress ProgressFunc) {
	if s.Ready() {
		return
	}

	points := make([]float64, s.count*s.dims)
	events := make([]rhythm.MusicalEvent, 0, s.dims)
	total := float64(s.count)

	for id := 0; id < s.count; id++ {
		events = s.seg.AppendEvents(events[:0], rhythm.PatternID(id), false)
		computeMTV(events, s.profile, s.salience, points[id*s.dims:(id+1)*s.dims])

		if progress != nil {
			progress(float64(id+1) / total)
		}
	}

	s.points = points
	s.ready.Store(true)
}

// MTV returns a copy of the tension vector of id.
func (s *Space) MTV(id rhythm.PatternID) ([]float64, error) {
	if err := s.checkReady(); err != nil {
		return nil, err
	}
	if uint64(id) >= uint64(s.count) {
		return nil, errors.Wrapf(rhythm.ErrIndexOutOfRange, "pattern %d not in space of %d patterns", id, s.count)
	}

	out := make([]float64, s.dims)
	copy(out, s.point(int(id)))
	return out, nil
}

// Distance returns the Euclidean distance between a and b divided by the square root of their
// length, which keeps distances between tension vectors in [0, 1].
func (s *Space) Distance(a, b []float64) (float64, error) {
	if len(a) != s.dims || len(b) != s.dims {
		return 0, errors.Wrapf(ErrDimensionMismatch, "expected %d dimensions, got %d and %d", s.dims, len(a), len(b))
	}
	if err := checkFinite(a); err != nil {
		return 0, err
	}
	if err := checkFinite(b); err != nil {
		return 0, err
	}
	return distance(a, b), nil
}

// ClosestPattern returns the pattern whose vector is nearest to target, preferring the lowest id
// among equally distant patterns.
func (s *Space) ClosestPattern(target []float64) (rhythm.PatternID, error) {
	if err := s.ensureCache(target); err != nil {
		return 0, err
	}
	return s.cache[0].id, nil
}

// RandomPatternCloseTo draws a pattern whose distance to target is close to |N(0, sd)|. Patterns
// at the same distance are equally likely.
func (s *Space) RandomPatternCloseTo(target []float64, sd float64) (rhythm.PatternID, error) {
	if sd < 0 || math.IsNaN(sd) {
		return 0, errors.Wrapf(ErrNegativeSpread, "got %v", sd)
	}
	if err := s.ensureCache(target); err != nil {
		return 0, err
	}

	r := math.Min(math.Abs(s.normal(sd)), 1)
	lo, hi := s.clusterNear(r)
	return s.cache[lo+s.rnd.IntN(hi-lo)].id, nil
}

func (s *Space) point(id int) []float64 {
	return s.points[id*s.dims : (id+1)*s.dims]
}

func (s *Space) checkReady() error {
	if !s.Ready() {
		return errors.Wrapf(ErrNotReady, "%s in %s", s.ts, s.stepUnit)
	}
	return nil
}

func (s *Space) checkVector(v []float64) error {
	if len(v) != s.dims {
		return errors.Wrapf(ErrDimensionMismatch, "expected %d dimensions, got %d", s.dims, len(v))
	}
	return checkFinite(v)
}

func checkFinite(v []float64) error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errors.Wrapf(ErrNonFinite, "value %d is %v", i, x)
		}
	}
	return nil
}

func distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2) / math.Sqrt(float64(len(a)))
}
