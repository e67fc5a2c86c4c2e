package spectrum

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerStats summarises the power levels of a sweep, in dBm.
type PowerStats struct {
	Max   float64
	Min   float64
	Avg   float64
	Count int // number of valid points the stats were computed from
}

// Stats computes the maximum, minimum and average power over the valid points
// of the sweep. It returns false when the sweep has no valid points.
func (s *Sweep) Stats() (PowerStats, bool) {
	_, powers := s.XY()
	if len(powers) == 0 {
		return PowerStats{}, false
	}

	return PowerStats{
		Max:   floats.Max(powers),
		Min:   floats.Min(powers),
		Avg:   stat.Mean(powers, nil),
		Count: len(powers),
	}, true
}
