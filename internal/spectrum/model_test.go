package spectrum

import (
	"math"
	"testing"
	"time"
)

func newSweep(pairs ...[2]float64) *Sweep {
	s := &Sweep{Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	for _, p := range pairs {
		s.Points = append(s.Points, Point{Frequency: p[0], Power: Dbm(p[1])})
	}
	return s
}

func TestSweep_Stats(t *testing.T) {
	s := newSweep([2]float64{100, -50}, [2]float64{200, -10}, [2]float64{300, -90})

	stats, ok := s.Stats()
	if !ok {
		t.Fatal("expected stats for a non-empty sweep")
	}
	if stats.Max != -10 {
		t.Errorf("Max = %v, want -10", stats.Max)
	}
	if stats.Min != -90 {
		t.Errorf("Min = %v, want -90", stats.Min)
	}
	if math.Abs(stats.Avg-(-50)) > 1e-9 {
		t.Errorf("Avg = %v, want -50", stats.Avg)
	}
	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
}

func TestSweep_StatsSkipsInvalidPoints(t *testing.T) {
	s := newSweep([2]float64{100, -40}, [2]float64{300, -60})
	s.Points = append(s.Points, Point{Frequency: 200})

	stats, ok := s.Stats()
	if !ok {
		t.Fatal("expected stats")
	}
	if stats.Count != 2 || stats.Avg != -50 {
		t.Errorf("got %+v, want 2 valid points averaging -50", stats)
	}
}

func TestSweep_StatsEmpty(t *testing.T) {
	if _, ok := (&Sweep{}).Stats(); ok {
		t.Error("expected no stats for an empty sweep")
	}

	invalid := &Sweep{Points: []Point{{Frequency: 1}, {Frequency: 2}}}
	if _, ok := invalid.Stats(); ok {
		t.Error("expected no stats for a sweep without valid readings")
	}
}

func TestSweep_XY(t *testing.T) {
	s := newSweep([2]float64{100, -50}, [2]float64{200, -10})
	s.Points = append(s.Points, Point{Frequency: 300})

	xs, ys := s.XY()
	if len(xs) != 2 || len(ys) != 2 {
		t.Fatalf("got %d/%d values, want 2/2", len(xs), len(ys))
	}
	if xs[1] != 200 || ys[1] != -10 {
		t.Errorf("second sample = (%v, %v), want (200, -10)", xs[1], ys[1])
	}
}

func TestSweep_Bounds(t *testing.T) {
	s := newSweep([2]float64{300, -1}, [2]float64{100, -1}, [2]float64{200, -1})
	r, ok := s.Bounds()
	if !ok || r.Min != 100 || r.Max != 300 {
		t.Errorf("Bounds() = %+v, %v; want [100, 300]", r, ok)
	}

	s.FrequencyStart, s.FrequencyEnd = 50, 350
	r, _ = s.Bounds()
	if r.Min != 50 || r.Max != 350 {
		t.Errorf("Bounds() = %+v, want declared [50, 350]", r)
	}

	if _, ok := (&Sweep{}).Bounds(); ok {
		t.Error("expected no bounds for an empty sweep")
	}
}

func TestRange(t *testing.T) {
	r := Range{Min: 100, Max: 300}
	if r.Span() != 200 || r.Center() != 200 {
		t.Errorf("Span/Center = %v/%v, want 200/200", r.Span(), r.Center())
	}
	if got := r.Extend(50).Union(Range{Min: 250, Max: 400}); got != (Range{Min: 50, Max: 400}) {
		t.Errorf("Extend+Union = %+v, want [50, 400]", got)
	}
}
