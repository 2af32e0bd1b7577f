package meter

import (
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// SalienceRange holds the lowest and highest weight found in a salience profile.
type SalienceRange struct {
	Min int
	Max int
}

// RangeOf returns the salience range of a non-empty profile.
func RangeOf(profile []int) SalienceRange {
	if len(profile) == 0 {
		return SalienceRange{}
	}

	r := SalienceRange{Min: profile[0], Max: profile[0]}
	for _, s := range profile[1:] {
		if s < r.Min {
			r.Min = s
		}
		if s > r.Max {
			r.Max = s
		}
	}
	return r
}

// treeNode describes one level of the meter's subdivision tree.
type treeNode struct {
	depth        int
	siblings     int
	nodesOnLevel int
	treeWidth    int
	treeHeight   int
}

// HierarchicalSubdivisions splits the measure into nested binary or ternary groups, from the
// measure down to single steps. 6/8 in sixteenths gives [2 3 2].
func (ts TimeSignature) HierarchicalSubdivisions(stepUnit unit.Unit) ([]int, error) {
	if err := ts.CheckStepUnit(stepUnit); err != nil {
		return nil, err
	}

	subdivisions := make([]int, 0)
	n := ts.ExactMeasureDuration(stepUnit)

	for n > 1 {
		// divisibility is decided on the remaining span in beats, so a compound meter is split
		// into its beat groups before the beats themselves are divided
		determiner := stepUnit.ConvertExact(n, ts.beatUnit)
		if determiner <= 1 {
			determiner = n
		}

		var sub int
		switch {
		case determiner%2 == 0:
			sub = 2
		case determiner%3 == 0:
			sub = 3
		default:
			return nil, errors.Wrapf(ErrContextSensitiveMeter,
				"can't create hierarchical subdivisions for %s", ts)
		}

		subdivisions = append(subdivisions, sub)
		n /= sub
	}

	return subdivisions, nil
}

// MetricalSalienceProfile assigns every step the weight of the shallowest tree level that starts
// on it. The root weighs rootWeight and every level below it weighs one less.
func (ts TimeSignature) MetricalSalienceProfile(stepUnit unit.Unit, rootWeight int) ([]int, error) {
	profile, _, err := ts.meterMap(stepUnit, func(node treeNode) int {
		return rootWeight - node.depth
	})
	return profile, err
}

// NaturalDurations returns, per step, the longest duration (in steps) that can start there without
// crossing a grid boundary of equal or higher level, plus the pool of durations per tree level
// (longest first, always ending in 1). With trimToBeat no duration exceeds one beat and duplicate
// pool entries are dropped.
func (ts TimeSignature) NaturalDurations(stepUnit unit.Unit, trimToBeat bool) (durations []int, pool []int, err error) {
	stepsPerBeat := ts.StepsPerBeat(stepUnit)

	durations, pool, err = ts.meterMap(stepUnit, func(node treeNode) int {
		d := node.treeWidth / node.nodesOnLevel
		if trimToBeat && d > stepsPerBeat {
			return stepsPerBeat
		}
		return d
	})
	if err != nil {
		return nil, nil, err
	}

	if trimToBeat {
		pool = slices.Compact(pool)
	}

	return durations, pool, nil
}

// meterMap walks the subdivision tree top-down and writes value(node) to every step a level starts
// on, unless a shallower level already claimed it. It also returns the value of every level.
func (ts TimeSignature) meterMap(stepUnit unit.Unit, value func(node treeNode) int) ([]int, []int, error) {
	subdivisions, err := ts.HierarchicalSubdivisions(stepUnit)
	if err != nil {
		return nil, nil, err
	}

	nSteps := ts.ExactMeasureDuration(stepUnit)
	nLevels := len(subdivisions) + 1

	stepValues := make([]int, nSteps)
	levelValues := make([]int, nLevels)
	claimed := make([]bool, nSteps)

	node := treeNode{
		depth:        0,
		siblings:     1,
		nodesOnLevel: 1,
		treeWidth:    nSteps,
		treeHeight:   nLevels,
	}
	stepValues[0] = value(node)
	levelValues[0] = stepValues[0]
	claimed[0] = true

	for _, sub := range subdivisions {
		node.depth++
		node.siblings = sub
		node.nodesOnLevel *= sub

		period := nSteps / node.nodesOnLevel
		v := value(node)
		levelValues[node.depth] = v

		for step := period; step < nSteps; step += period {
			if claimed[step] {
				continue
			}
			stepValues[step] = v
			claimed[step] = true
		}
	}

	return stepValues, levelValues, nil
}
