package plot

import (
	"math"
	"testing"
)

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-6 {
			return false
		}
	}
	return true
}

func TestScale_Ticks(t *testing.T) {
	tests := []struct {
		name  string
		scale Scale
		want  []float64
	}{
		{"power axis", Scale{Min: -135, Max: 20, Step: 10}, []float64{-130, -120, -110, -100, -90, -80, -70, -60, -50, -40, -30, -20, -10, 0, 10, 20}},
		{"frequency fifths", Scale{Min: 100e6, Max: 200e6, Step: 20e6}, []float64{100e6, 120e6, 140e6, 160e6, 180e6, 200e6}},
		{"zero step", Scale{Min: 1, Max: 2}, []float64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scale.Ticks(); !equalFloats(got, tt.want) {
				t.Errorf("Ticks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScale_TicksBounded(t *testing.T) {
	s := Scale{Min: 0, Max: 1e9, Step: 1}
	if n := len(s.Ticks()); n > maxTicks+1 {
		t.Errorf("got %d ticks, want at most %d", n, maxTicks+1)
	}
}

func TestScale_MinorTicks(t *testing.T) {
	s := Scale{Min: 0, Max: 20, Step: 10}
	want := []float64{2, 4, 6, 8, 12, 14, 16, 18}
	if got := s.MinorTicks(5); !equalFloats(got, want) {
		t.Errorf("MinorTicks(5) = %v, want %v", got, want)
	}
	if got := s.MinorTicks(1); got != nil {
		t.Errorf("MinorTicks(1) = %v, want nil", got)
	}
}

func TestRect(t *testing.T) {
	r := Rect{XMin: 200, XMax: 100, YMin: 20, YMax: -135}.Normalize()
	if r != (Rect{XMin: 100, XMax: 200, YMin: -135, YMax: 20}) {
		t.Fatalf("Normalize() = %+v", r)
	}
	if !r.Valid() {
		t.Error("expected a valid rectangle")
	}

	half := r.Scaled(0.5, 150, -57.5)
	if half.Width() != 50 || half.Height() != 77.5 {
		t.Errorf("Scaled(0.5) size = %vx%v, want 50x77.5", half.Width(), half.Height())
	}

	moved := r.Translated(10, -5)
	if moved.XMin != 110 || moved.YMax != 15 {
		t.Errorf("Translated() = %+v", moved)
	}

	if (Rect{XMin: 1, XMax: 1, YMin: 0, YMax: 1}).Valid() {
		t.Error("zero width rectangle reported valid")
	}
}
