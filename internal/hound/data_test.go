package hound

import (
	"errors"
	"testing"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sweepAt(ts time.Time, start, end float64) *spectrum.Sweep {
	return &spectrum.Sweep{
		Timestamp:      ts,
		FrequencyStart: start,
		FrequencyEnd:   end,
		Points:         []spectrum.Point{{Frequency: start, Power: spectrum.Dbm(-50)}},
	}
}

func TestData_Append(t *testing.T) {
	d := New(WithLocation(time.UTC), WithTimeFormat("15:04:05.000"))

	var notified []int
	d.OnAppend(func(n int) { notified = append(notified, n) })

	d.Append(sweepAt(t0, 100, 200), nil)
	d.Append(sweepAt(t0.Add(1500*time.Millisecond), 50, 150), sweepAt(t0.Add(3*time.Second), 120, 300))
	d.Append()

	if d.Len() != 3 || d.NumSweeps() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	if got := d.FrequencyLimits(); got != (spectrum.Range{Min: 50, Max: 300}) {
		t.Errorf("FrequencyLimits() = %+v", got)
	}
	if len(notified) != 2 || notified[0] != 1 || notified[1] != 3 {
		t.Errorf("listener calls = %v, want [1 3]", notified)
	}

	if got := d.TimestampLabel(1); got != "12:00:01.500" {
		t.Errorf("TimestampLabel(1) = %q", got)
	}
	if got := d.TimestampLabel(3); got != "" {
		t.Errorf("TimestampLabel(3) = %q, want empty", got)
	}

	if s, err := d.Sweep(2); err != nil || s.FrequencyEnd != 300 {
		t.Errorf("Sweep(2) = %+v, %v", s, err)
	}
	if _, err := d.Sweep(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Sweep(-1) error = %v, want ErrIndexOutOfRange", err)
	}

	start, end, err := d.TimeRange()
	if err != nil || !start.Equal(t0) || !end.Equal(t0.Add(3*time.Second)) {
		t.Errorf("TimeRange() = %v, %v, %v", start, end, err)
	}
}

func TestData_Empty(t *testing.T) {
	d := New()

	if _, _, err := d.TimeRange(); !errors.Is(err, ErrEmpty) {
		t.Errorf("TimeRange() error = %v, want ErrEmpty", err)
	}
	if got := d.FrequencyLimits(); got != (spectrum.Range{}) {
		t.Errorf("FrequencyLimits() = %+v, want zero", got)
	}
}

func TestData_DefaultLabelFormat(t *testing.T) {
	d := New(WithLocation(time.UTC))
	d.Append(sweepAt(t0.Add(250*time.Millisecond), 1, 2))

	if got := d.TimestampLabel(0); got != "2024-05-01 12:00:00.250" {
		t.Errorf("TimestampLabel(0) = %q", got)
	}
}
