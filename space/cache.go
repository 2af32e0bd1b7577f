package space

import (
	"sort"

	"github.com/Tomasito665/mtv-rhythm-generator/rhythm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

type cacheEntry struct {
	distance float64
	id       rhythm.PatternID
}

// ensureCache rebuilds the distance cache unless it was built for an identical target.
func (s *Space) ensureCache(target []float64) error {
	if err := s.checkReady(); err != nil {
		return err
	}
	if err := s.checkVector(target); err != nil {
		return err
	}

	if s.hasTarget && floats.Equal(s.target, target) {
		return nil
	}
	s.updateDistanceCache(target)
	return nil
}

// updateDistanceCache stores the distance of every pattern to target, sorted by distance and
// then by id.
func (s *Space) updateDistanceCache(target []float64) {
	if cap(s.cache) < s.count {
		s.cache = make([]cacheEntry, s.count)
	}
	s.cache = s.cache[:s.count]

	for id := 0; id < s.count; id++ {
		s.cache[id] = cacheEntry{
			distance: distance(s.point(id), target),
			id:       rhythm.PatternID(id),
		}
	}

	sort.Slice(s.cache, func(i, j int) bool {
		if s.cache[i].distance != s.cache[j].distance {
			return s.cache[i].distance < s.cache[j].distance
		}
		return s.cache[i].id < s.cache[j].id
	})

	if cap(s.target) < s.dims {
		s.target = make([]float64, s.dims)
	}
	s.target = s.target[:s.dims]
	copy(s.target, target)
	s.hasTarget = true
}

// clusterNear returns the bounds [lo, hi) of the run of equally distant cache entries to pick
// from for a drawn distance r. The run found by a lower-bound search competes with the run just
// before it and the one whose distance is nearer to r wins, the found run on a tie.
func (s *Space) clusterNear(r float64) (lo, hi int) {
	n := len(s.cache)
	i := sort.Search(n, func(k int) bool {
		return s.cache[k].distance >= r
	})
	if i == n {
		i = n - 1
	}

	if i > 0 {
		found, prev := s.cache[i].distance, s.cache[i-1].distance
		if r-prev < found-r {
			i--
		}
	}

	d := s.cache[i].distance
	lo = sort.Search(n, func(k int) bool {
		return s.cache[k].distance >= d
	})
	hi = sort.Search(n, func(k int) bool {
		return s.cache[k].distance > d
	})
	if hi <= lo {
		// an unordered distance (NaN) matches no run, fall back to the closest one
		return s.clusterAt(0)
	}
	return lo, hi
}

// clusterAt returns the bounds of the run of entries sharing the distance of entry i.
func (s *Space) clusterAt(i int) (lo, hi int) {
	lo, hi = i, i+1
	for hi < len(s.cache) && s.cache[hi].distance == s.cache[i].distance {
		hi++
	}
	return lo, hi
}

func (s *Space) normal(sd float64) float64 {
	n := distuv.Normal{Mu: 0, Sigma: sd, Src: s.src}
	return n.Rand()
}
