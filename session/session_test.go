package session

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/rhythm"
	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"
)

func newSession() *Session {
	return New(clock.RealClock{}, Options{Seed: 3, DistanceSD: 0.1})
}

func waitReady(t *testing.T, s *Session) *space.Space {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sp, err := s.Wait(ctx)
	require.NoError(t, err)
	require.True(t, sp.Ready())
	return sp
}

func TestQueriesBeforeFirstFill(t *testing.T) {
	t.Parallel()

	s := newSession()
	assert.Nil(t, s.Space())
	assert.False(t, s.Filling())

	_, err := s.Closest([]float64{0, 0})
	assert.ErrorIs(t, err, space.ErrNotReady)

	_, err = s.MTV(0)
	assert.ErrorIs(t, err, space.ErrNotReady)

	_, err = s.Wait(context.Background())
	assert.ErrorIs(t, err, space.ErrNotReady)
}

func TestResetFillsInBackground(t *testing.T) {
	t.Parallel()

	s := newSession()
	f, err := s.Reset(meter.MustNew(3, 4), unit.Eighth, nil)
	require.NoError(t, err)

	sp := waitReady(t, s)
	<-f.Done()
	assert.Same(t, sp, f.Space())
	assert.Same(t, sp, s.Space())
	assert.Equal(t, 6, sp.Dimensions())
	assert.False(t, s.Filling())

	p, err := s.Closest([]float64{0, 1, 0.5, 1, 0.5, 1})
	require.NoError(t, err)
	assert.Equal(t, 6, p.Steps())

	mtv, err := s.MTV(p.ID())
	require.NoError(t, err)
	d, err := s.Distance([]float64{0, 1, 0.5, 1, 0.5, 1}, p.ID())
	require.NoError(t, err)
	best, err := sp.Distance([]float64{0, 1, 0.5, 1, 0.5, 1}, mtv)
	require.NoError(t, err)
	assert.Equal(t, best, d)
}

func TestResetRejectsUnrepresentableMeter(t *testing.T) {
	t.Parallel()

	s := newSession()
	_, err := s.Reset(meter.MustNew(7, 8), unit.Sixteenth, nil)
	assert.ErrorIs(t, err, meter.ErrContextSensitiveMeter)
	assert.False(t, s.Filling())

	_, err = s.Reset(meter.MustNew(16, 4), unit.Eighth, nil)
	assert.ErrorIs(t, err, rhythm.ErrPatternTooLarge)
}

func TestResetWhileFilling(t *testing.T) {
	t.Parallel()

	s := newSession()
	_, err := s.Reset(meter.MustNew(2, 4), unit.Quarter, nil)
	require.NoError(t, err)
	previous := waitReady(t, s)

	release := make(chan struct{})
	blocked := make(chan struct{})
	f, err := s.Reset(meter.MustNew(3, 4), unit.Eighth, func(done float64) {
		if done < 1 {
			return
		}
		close(blocked)
		<-release
	})
	require.NoError(t, err)
	<-blocked

	assert.True(t, s.Filling())
	assert.Nil(t, f.Space())
	_, err = s.Reset(meter.Default(), unit.Eighth, nil)
	assert.ErrorIs(t, err, ErrFillInProgress)

	// the previous space keeps serving queries
	assert.Same(t, previous, s.Space())
	p, err := s.Closest([]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Steps())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	sp := waitReady(t, s)
	assert.Equal(t, 6, sp.Dimensions())
	assert.Same(t, sp, s.Space())
}

func TestQueriesResampleCurves(t *testing.T) {
	t.Parallel()

	s := newSession()
	_, err := s.Reset(meter.Default(), unit.Quarter, nil)
	require.NoError(t, err)
	sp := waitReady(t, s)

	// [0 1] stretches to [0 0.5 1 0.5]
	p, err := s.Closest([]float64{0, 1})
	require.NoError(t, err)
	expected, err := sp.ClosestPattern([]float64{0, 0.5, 1, 0.5})
	require.NoError(t, err)
	assert.Equal(t, expected, p.ID())

	// out of range values are clamped
	p, err = s.Closest([]float64{-3, 2, 7, 0.5})
	require.NoError(t, err)
	expected, err = sp.ClosestPattern([]float64{0, 1, 1, 0.5})
	require.NoError(t, err)
	assert.Equal(t, expected, p.ID())
}

func TestQueriesRejectNaNCurves(t *testing.T) {
	t.Parallel()

	s := newSession()
	_, err := s.Reset(meter.MustNew(2, 4), unit.Quarter, nil)
	require.NoError(t, err)
	waitReady(t, s)

	_, err = s.RandomClose([]float64{math.NaN(), 0}, 0.1)
	assert.ErrorIs(t, err, space.ErrNonFinite)

	_, err = s.Closest([]float64{0.5, math.NaN(), 0, 1})
	assert.ErrorIs(t, err, space.ErrNonFinite)

	_, err = s.Distance([]float64{math.NaN(), 0}, 1)
	assert.ErrorIs(t, err, space.ErrNonFinite)
}

func TestQueryReleasesLockAfterPanic(t *testing.T) {
	t.Parallel()

	s := newSession()
	_, err := s.Reset(meter.MustNew(2, 4), unit.Quarter, nil)
	require.NoError(t, err)
	waitReady(t, s)

	assert.Panics(t, func() {
		_, _ = s.query([]float64{0, 1}, func(*space.Space, []float64) (rhythm.PatternID, error) {
			panic("query failed")
		})
	})

	done := make(chan error, 1)
	go func() {
		_, err := s.Closest([]float64{0, 1})
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("query lock still held")
	}
}

func TestRandomCloseUsesConfiguredSpread(t *testing.T) {
	t.Parallel()

	s := New(clock.RealClock{}, Options{Seed: 3, DistanceSD: 0})
	assert.Equal(t, 0.0, s.DistanceSD())
	_, err := s.Reset(meter.MustNew(2, 4), unit.Quarter, nil)
	require.NoError(t, err)
	waitReady(t, s)

	// [0 1] is shared by patterns 2 and 3
	for i := 0; i < 20; i++ {
		p, err := s.RandomClose([]float64{0, 1}, -1)
		require.NoError(t, err)
		assert.Contains(t, []rhythm.PatternID{2, 3}, p.ID())
	}
}

func TestThrottle(t *testing.T) {
	t.Parallel()

	fakeClock := testingclock.NewFakeClock(time.Unix(0, 0))
	var reports []float64
	th := newThrottle(fakeClock, 50*time.Millisecond, func(done float64) {
		reports = append(reports, done)
	})

	th.report(0.1)
	th.report(0.2)
	fakeClock.Step(49 * time.Millisecond)
	th.report(0.3)
	fakeClock.Step(time.Millisecond)
	th.report(0.4)
	th.report(0.5)
	th.report(1)

	assert.Equal(t, []float64{0.1, 0.4, 1}, reports)

	// a nil callback is ignored
	newThrottle(fakeClock, time.Second, nil).report(0.5)
}

func TestProgressReachesOne(t *testing.T) {
	t.Parallel()

	s := New(clock.RealClock{}, Options{ProgressInterval: time.Hour})
	reports := make(chan float64, 64)
	_, err := s.Reset(meter.MustNew(3, 4), unit.Eighth, func(done float64) {
		reports <- done
	})
	require.NoError(t, err)
	waitReady(t, s)
	close(reports)

	var got []float64
	for r := range reports {
		got = append(got, r)
	}
	assert.Equal(t, []float64{1.0 / 64, 1}, got)
}
