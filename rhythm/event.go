package rhythm

import (
	"fmt"

	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
)

// EventType classifies a musical event.
type EventType int

const (
	Rest EventType = iota
	Note
	TiedNote
)

func (t EventType) String() string {
	switch t {
	case Note:
		return "note"
	case TiedNote:
		return "tied-note"
	case Rest:
		return "rest"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// MusicalEvent is a note, rest or tied note covering Duration steps from Position.
type MusicalEvent struct {
	Type     EventType
	Position int
	Duration int
}

// End returns the last step covered by the event.
func (e MusicalEvent) End() int {
	return e.Position + e.Duration - 1
}

func (e MusicalEvent) String() string {
	return fmt.Sprintf("%s@%dx%d", e.Type, e.Position, e.Duration)
}

// Segmenter turns pattern ids of one meter and step unit into musical events. It caches the
// natural duration map so that segmenting many patterns only walks the meter tree once.
type Segmenter struct {
	steps     int
	durations []int
	pool      []int
}

// NewSegmenter prepares a segmenter for patterns of ts at stepUnit resolution. With trimToBeat no
// event is longer than one beat.
func NewSegmenter(ts meter.TimeSignature, stepUnit unit.Unit, trimToBeat bool) (*Segmenter, error) {
	n, err := StepCount(ts, stepUnit)
	if err != nil {
		return nil, err
	}

	durations, pool, err := ts.NaturalDurations(stepUnit, trimToBeat)
	if err != nil {
		return nil, err
	}

	return &Segmenter{
		steps:     n,
		durations: durations,
		pool:      pool,
	}, nil
}

func (s *Segmenter) Steps() int { return s.steps }

// Events segments id into events that exactly tile the measure.
//
// Starting from the first uncovered step, an event grows to the longest pooled duration that
// fits the step's natural duration without running over an onset. It is a note when it starts
// on an onset, a tied note when it follows a note and a rest otherwise. With cyclic set, a
// leading rest becomes a tied note if the measure doesn't end on a rest, since the last sound
// carries over into the next repetition.
func (s *Segmenter) Events(id PatternID, cyclic bool) []MusicalEvent {
	return s.AppendEvents(make([]MusicalEvent, 0, s.steps), id, cyclic)
}

// AppendEvents is like Events but appends to dst.
func (s *Segmenter) AppendEvents(dst []MusicalEvent, id PatternID, cyclic bool) []MusicalEvent {
	bits := uint64(id)
	onset := func(step int) bool {
		return bits&(1<<uint(step%s.steps)) != 0
	}

	first := len(dst)
	prev := Rest
	lo, hi := 0, 0

	for lo < s.steps {
		// pool is longest first, walk it from the finest duration upwards
		k := len(s.pool) - 1
		maxEnd := lo + s.durations[lo]

		for tmpHi := lo + 1; tmpHi <= maxEnd; tmpHi++ {
			if k >= 0 && tmpHi-lo == s.pool[k] {
				hi = tmpHi
				k--
			}
			if onset(tmpHi) {
				break
			}
		}

		var curr EventType
		switch {
		case onset(lo):
			curr = Note
		case prev == Note:
			curr = TiedNote
		default:
			curr = Rest
		}

		dst = append(dst, MusicalEvent{Type: curr, Position: lo, Duration: hi - lo})
		prev = curr
		lo = hi
	}

	if cyclic && len(dst) > first {
		head, last := &dst[first], dst[len(dst)-1]
		if head.Type == Rest && last.Type != Rest {
			head.Type = TiedNote
		}
	}

	return dst
}
