package session

import (
	"context"
	"sync"
	"time"

	"github.com/Tomasito665/mtv-rhythm-generator/logger"
	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/rhythm"
	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"github.com/Tomasito665/mtv-rhythm-generator/tension"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// Options tune every space a session builds.
type Options struct {
	// Seed for random queries, 0 leaves every space unseeded
	Seed uint64

	MaxDimensions int

	// Spread used by RandomClose
	DistanceSD float64

	// Minimum time between two progress reports
	ProgressInterval time.Duration
}

// Manager is the query surface a session offers to front ends.
type Manager interface {
	Reset(ts meter.TimeSignature, stepUnit unit.Unit, progress space.ProgressFunc) (*Fill, error)
	Wait(ctx context.Context) (*space.Space, error)
	Space() *space.Space
	Closest(curve []float64) (*rhythm.Pattern, error)
	RandomClose(curve []float64, sd float64) (*rhythm.Pattern, error)
	MTV(id rhythm.PatternID) ([]float64, error)
	Distance(curve []float64, id rhythm.PatternID) (float64, error)
	DistanceSD() float64
}

var _ Manager = (*Session)(nil)

// Fill is a space being filled in the background. Done is closed once Space is ready.
type Fill struct {
	TimeSignature meter.TimeSignature
	StepUnit      unit.Unit

	space *space.Space
	done  chan struct{}
}

func (f *Fill) Done() <-chan struct{} { return f.done }

// Space returns the filled space, or nil while the fill is running.
func (f *Fill) Space() *space.Space {
	select {
	case <-f.done:
		return f.space
	default:
		return nil
	}
}

// Session owns the space of the current meter and replaces it when the meter changes. The
// previous space keeps serving queries until its replacement is ready.
type Session struct {
	clock clock.Clock
	opts  Options

	mu      sync.Mutex
	current *space.Space
	pending *Fill

	// the distance cache of a space is not safe for concurrent queries
	queryMu sync.Mutex
}

// New creates a session without a space. Call Reset to build the first one.
func New(clk clock.Clock, opts Options) *Session {
	if opts.MaxDimensions <= 0 {
		opts.MaxDimensions = space.DefaultMaxDimensions
	}
	return &Session{
		clock: clk,
		opts:  opts,
	}
}

// Reset starts filling a space for ts at stepUnit resolution on a background goroutine. progress
// may be nil and is called from that goroutine. A meter the space can't represent fails right
// away, and so does a Reset issued before the previous fill has finished.
func (s *Session) Reset(ts meter.TimeSignature, stepUnit unit.Unit, progress space.ProgressFunc) (*Fill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return nil, errors.Wrapf(ErrFillInProgress, "%s in %s still filling", s.pending.TimeSignature, s.pending.StepUnit)
	}

	opts := []space.Option{space.WithMaxDimensions(s.opts.MaxDimensions)}
	if s.opts.Seed != 0 {
		opts = append(opts, space.WithSeed(s.opts.Seed))
	}

	sp, err := space.New(ts, stepUnit, opts...)
	if err != nil {
		return nil, err
	}

	f := &Fill{
		TimeSignature: ts,
		StepUnit:      stepUnit,
		space:         sp,
		done:          make(chan struct{}),
	}
	s.pending = f

	go s.fill(f, newThrottle(s.clock, s.opts.ProgressInterval, progress))
	return f, nil
}

func (s *Session) fill(f *Fill, t *throttle) {
	logger := logger.GetProjectLogger()
	fields := logrus.Fields{
		"meter":     f.TimeSignature.String(),
		"step_unit": f.StepUnit.Name(),
		"patterns":  f.space.PatternCount(),
	}
	logger.WithFields(fields).Info("Filling rhythm space...")

	start := s.clock.Now()
	f.space.Fill(t.report)

	s.mu.Lock()
	s.current = f.space
	s.pending = nil
	s.mu.Unlock()
	close(f.done)

	fields["dimensions"] = f.space.Dimensions()
	fields["duration"] = s.clock.Since(start).String()
	logger.WithFields(fields).Info("Rhythm space ready")
}

// Wait blocks until the pending fill (if any) has finished and returns the current space.
func (s *Session) Wait(ctx context.Context) (*space.Space, error) {
	s.mu.Lock()
	f := s.pending
	current := s.current
	s.mu.Unlock()

	if f == nil {
		if current == nil {
			return nil, errors.Wrap(space.ErrNotReady, "no space requested")
		}
		return current, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.space, nil
	}
}

// Space returns the ready space queries are served from, or nil before the first fill completes.
func (s *Session) Space() *space.Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Filling reports whether a fill is running.
func (s *Session) Filling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Session) DistanceSD() float64 { return s.opts.DistanceSD }

// Closest returns the pattern nearest to a drawn tension curve. Curves of another length than
// the space's dimensions are resampled first.
func (s *Session) Closest(curve []float64) (*rhythm.Pattern, error) {
	return s.query(curve, func(sp *space.Space, target []float64) (rhythm.PatternID, error) {
		return sp.ClosestPattern(target)
	})
}

// RandomClose draws a pattern near a drawn tension curve. A negative sd uses the session's
// configured spread.
func (s *Session) RandomClose(curve []float64, sd float64) (*rhythm.Pattern, error) {
	if sd < 0 {
		sd = s.opts.DistanceSD
	}
	return s.query(curve, func(sp *space.Space, target []float64) (rhythm.PatternID, error) {
		return sp.RandomPatternCloseTo(target, sd)
	})
}

// MTV returns the tension vector of a pattern in the current space.
func (s *Session) MTV(id rhythm.PatternID) ([]float64, error) {
	sp, err := s.ready()
	if err != nil {
		return nil, err
	}
	return sp.MTV(id)
}

// Distance compares a drawn curve with the tension vector of a pattern.
func (s *Session) Distance(curve []float64, id rhythm.PatternID) (float64, error) {
	sp, err := s.ready()
	if err != nil {
		return 0, err
	}

	mtv, err := sp.MTV(id)
	if err != nil {
		return 0, err
	}
	return sp.Distance(s.fit(sp, curve), mtv)
}

func (s *Session) query(curve []float64, q func(*space.Space, []float64) (rhythm.PatternID, error)) (*rhythm.Pattern, error) {
	sp, err := s.ready()
	if err != nil {
		return nil, err
	}

	id, err := func() (rhythm.PatternID, error) {
		s.queryMu.Lock()
		defer s.queryMu.Unlock()
		return q(sp, s.fit(sp, curve))
	}()
	if err != nil {
		return nil, err
	}

	return rhythm.NewPattern(sp.TimeSignature(), sp.StepUnit(), id)
}

func (s *Session) ready() (*space.Space, error) {
	sp := s.Space()
	if sp == nil {
		return nil, errors.Wrap(space.ErrNotReady, "no space filled yet")
	}
	return sp, nil
}

func (s *Session) fit(sp *space.Space, curve []float64) []float64 {
	if len(curve) == sp.Dimensions() {
		return tension.ClampCurve(curve)
	}
	return tension.ClampCurve(tension.Resample(curve, sp.Dimensions()))
}
