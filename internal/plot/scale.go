package plot

import (
	"math"
)

const maxTicks = 1000

// Axis identifies one of the plot axes.
type Axis int

const (
	XBottom Axis = iota
	YLeft
)

func (a Axis) String() string {
	switch a {
	case XBottom:
		return "xBottom"
	case YLeft:
		return "yLeft"
	default:
		return "unknown"
	}
}

// Scale is the visible interval of an axis and its major tick step.
type Scale struct {
	Min  float64
	Max  float64
	Step float64
}

// Span returns Max - Min.
func (s Scale) Span() float64 {
	return s.Max - s.Min
}

// Ticks returns the major tick positions within [Min, Max], aligned on
// multiples of Step.
func (s Scale) Ticks() []float64 {
	return ticks(s.Min, s.Max, s.Step)
}

// MinorTicks returns tick positions dividing every major step into n parts,
// major positions excluded.
func (s Scale) MinorTicks(n int) []float64 {
	if n < 2 || s.Step <= 0 {
		return nil
	}

	minor := s.Step / float64(n)
	var out []float64
	for _, v := range ticks(s.Min, s.Max, minor) {
		if isMultiple(v, s.Step) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func ticks(lo, hi, step float64) []float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) || hi == lo {
		return []float64{lo, hi}
	}
	if (hi-lo)/step > maxTicks {
		step = (hi - lo) / maxTicks
	}

	eps := step * 1e-9
	first := math.Ceil((lo-eps)/step) * step

	var out []float64
	for i := 0; ; i++ {
		v := first + float64(i)*step
		if v > hi+eps {
			break
		}
		out = append(out, v)
	}
	return out
}

func isMultiple(v, step float64) bool {
	q := v / step
	return math.Abs(q-math.Round(q)) < 1e-6
}

// Rect is an axis-aligned rectangle in data coordinates.
type Rect struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Normalize returns the rectangle with min/max ordered on both axes.
func (r Rect) Normalize() Rect {
	if r.XMin > r.XMax {
		r.XMin, r.XMax = r.XMax, r.XMin
	}
	if r.YMin > r.YMax {
		r.YMin, r.YMax = r.YMax, r.YMin
	}
	return r
}

func (r Rect) Width() float64 {
	return r.XMax - r.XMin
}

func (r Rect) Height() float64 {
	return r.YMax - r.YMin
}

// Center returns the rectangle midpoint.
func (r Rect) Center() (x, y float64) {
	return r.XMin + r.Width()/2, r.YMin + r.Height()/2
}

// Valid reports whether the rectangle has a positive area.
func (r Rect) Valid() bool {
	n := r.Normalize()
	return n.Width() > 0 && n.Height() > 0
}

// Scaled returns the rectangle scaled by factor around (cx, cy).
func (r Rect) Scaled(factor, cx, cy float64) Rect {
	return Rect{
		XMin: cx - (cx-r.XMin)*factor,
		XMax: cx + (r.XMax-cx)*factor,
		YMin: cy - (cy-r.YMin)*factor,
		YMax: cy + (r.YMax-cy)*factor,
	}
}

// Translated returns the rectangle moved by (dx, dy).
func (r Rect) Translated(dx, dy float64) Rect {
	return Rect{XMin: r.XMin + dx, XMax: r.XMax + dx, YMin: r.YMin + dy, YMax: r.YMax + dy}
}
