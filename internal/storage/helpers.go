package storage

import (
	"database/sql"
	"math"

	"github.com/roman-kulish/sweep-inspector/internal/sdr"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil && cErr != sql.ErrTxDone {
		*err = cErr
	}
}

func toSampleData(sessionID int64, r sdr.PowerReading, sr *sdr.SweepResult) *sampleData {
	var power sql.NullFloat64
	if r.IsValid {
		power.Float64 = r.Power
		power.Valid = true
	}

	return &sampleData{
		SessionID:  sessionID,
		Timestamp:  sr.Timestamp.UTC(),
		Frequency:  r.Frequency,
		BinWidth:   sr.BinWidth,
		Power:      power,
		NumSamples: sr.NumSamples,
	}
}

func toPoint(s *sampleData) spectrum.Point {
	var power *float64
	if s.Power.Valid {
		power = spectrum.Dbm(s.Power.Float64)
	}

	return spectrum.Point{
		Frequency:  s.Frequency,
		Power:      power,
		BinWidth:   s.BinWidth,
		NumSamples: s.NumSamples,
	}
}

func toScanSession(s *sessionData) *spectrum.ScanSession {
	sess := spectrum.ScanSession{
		ID:         s.ID,
		StartTime:  s.StartTime,
		DeviceType: s.DeviceType,
		DeviceID:   s.DeviceID,
	}
	if s.Config.Valid {
		sess.Config = &s.Config.String
	}
	return &sess
}

// freqCompare helps compare frequencies using bin width-based tolerance.
// Returns:
//
//	-1 if a < b
//	 0 if a ≈ b (within tolerance)
//	+1 if a > b
func freqCompare(a, b, binWidth float64) int {
	// Use small fraction of bin width as tolerance
	tolerance := binWidth * 0.01 // 1% of bin width

	diff := a - b
	if math.Abs(diff) <= tolerance {
		return 0
	}
	if diff < 0 {
		return -1
	}
	return 1
}

// freqLess returns true if a is less than b with bin width-based tolerance
func freqLess(a, b, binWidth float64) bool {
	return freqCompare(a, b, binWidth) < 0
}

// freqGreater returns true if a is greater than b with bin width-based tolerance
func freqGreater(a, b, binWidth float64) bool {
	return freqCompare(a, b, binWidth) > 0
}
