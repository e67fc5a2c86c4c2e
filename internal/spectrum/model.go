package spectrum

import (
	"time"
)

// ScanSession represents a single spectrum scanning session with a specific device.
// Each session captures metadata about when and how the scanning was performed.
type ScanSession struct {
	ID         int64     `json:"ID"`                      // Unique identifier for the session
	StartTime  time.Time `json:"startTime"`               // When the scanning session began
	DeviceType string    `json:"deviceType"`              // Type of SDR device used (e.g., "rtl-sdr", "hackrf")
	DeviceID   string    `json:"deviceID"`                // Unique identifier of the specific device (e.g., serial number)
	Config     *string   `json:"config,string,omitempty"` // Optional device configuration in JSON format
}

// Point represents a single measurement at a specific frequency.
type Point struct {
	Frequency  float64  `json:"frequency"`       // Center frequency in Hz
	Power      *float64 `json:"power,omitempty"` // Measured power level in dBm (nil if measurement invalid)
	BinWidth   float64  `json:"binWidth"`        // Frequency bin width in Hz
	NumSamples int      `json:"numSamples"`      // Number of samples used for this measurement
}

// Valid reports whether the point carries a power reading.
func (p Point) Valid() bool {
	return p.Power != nil
}

// Sweep is one full scan across a frequency range at a point in time: an
// ordered sequence of (frequency, power) measurements.
type Sweep struct {
	Timestamp      time.Time `json:"timestamp"`        // When this sweep was taken
	FrequencyStart float64   `json:"frequencyStart"`   // Start frequency of the sweep in Hz
	FrequencyEnd   float64   `json:"frequencyEnd"`     // End frequency of the sweep in Hz
	Points         []Point   `json:"points,omitempty"` // Ordered by frequency
}

// XY returns the frequencies and powers of the valid points, in sweep order.
func (s *Sweep) XY() (xs, ys []float64) {
	xs = make([]float64, 0, len(s.Points))
	ys = make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Power == nil {
			continue
		}
		xs = append(xs, p.Frequency)
		ys = append(ys, *p.Power)
	}
	return xs, ys
}

// Bounds returns the frequency range covered by the sweep. The declared
// start/end frequencies win over the point frequencies when they are set.
func (s *Sweep) Bounds() (Range, bool) {
	if s.FrequencyStart != 0 || s.FrequencyEnd != 0 {
		return Range{Min: min(s.FrequencyStart, s.FrequencyEnd), Max: max(s.FrequencyStart, s.FrequencyEnd)}, true
	}
	if len(s.Points) == 0 {
		return Range{}, false
	}

	r := Range{Min: s.Points[0].Frequency, Max: s.Points[0].Frequency}
	for _, p := range s.Points[1:] {
		r = r.Extend(p.Frequency)
	}
	return r, true
}

// Range is a closed [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Center returns the midpoint of the range.
func (r Range) Center() float64 {
	return r.Min + r.Span()/2
}

// Extend grows the range to include v.
func (r Range) Extend(v float64) Range {
	return Range{Min: min(r.Min, v), Max: max(r.Max, v)}
}

// Union returns the smallest range containing both r and o.
func (r Range) Union(o Range) Range {
	return Range{Min: min(r.Min, o.Min), Max: max(r.Max, o.Max)}
}

// Dbm returns a pointer to the given power value, for building points.
func Dbm(v float64) *float64 {
	return &v
}
