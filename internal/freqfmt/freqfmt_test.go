package freqfmt

import (
	"math"
	"testing"
)

func TestFormat_Examples(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1320, "1.32 kHz"},
		{15012402, "15.01 MHz"},
		{45, "45.00 Hz"},
		{1, "1.00 Hz"},
		{999, "999.00 Hz"},
		{1000, "1.00 kHz"},
		{999_999, "1000.00 kHz"},
		{1_000_000, "1.00 MHz"},
		{433_920_000, "433.92 MHz"},
		{1_000_000_000, "1.00 GHz"},
		{2_450_000_000, "2.45 GHz"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat_UnitByDecade(t *testing.T) {
	tests := []struct {
		lo, hi float64
		suffix string
	}{
		{1, 1e3, " Hz"},
		{1e3, 1e6, " kHz"},
		{1e6, 1e9, " MHz"},
		{1e9, 1e10, " GHz"},
	}

	for _, tt := range tests {
		for _, f := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
			v := tt.lo + (tt.hi-tt.lo)*f
			got := Format(v)
			if len(got) < len(tt.suffix) || got[len(got)-len(tt.suffix):] != tt.suffix {
				t.Errorf("Format(%v) = %q, want suffix %q", v, got, tt.suffix)
			}
		}
	}
}

func TestFormat_ClampedRange(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{25e9, "25.00 GHz"},
		{0.5, "0.50 Hz"},
		{0, "0.00 Hz"},
		{-1320, "-1.32 kHz"},
		{-0.25, "-0.25 Hz"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat_NotANumber(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := Format(v); got != "" {
			t.Errorf("Format(%v) = %q, want empty label", v, got)
		}
	}
}

func TestFormat_Idempotent(t *testing.T) {
	for _, v := range []float64{45, 1320, 15012402, 2.4e9} {
		first := Format(v)
		for i := 0; i < 3; i++ {
			if got := Format(v); got != first {
				t.Fatalf("Format(%v) changed between calls: %q then %q", v, first, got)
			}
		}
	}
}

func TestFormatRange(t *testing.T) {
	if got, want := FormatRange(88e6, 108e6), "88.00 MHz - 108.00 MHz"; got != want {
		t.Errorf("FormatRange() = %q, want %q", got, want)
	}
}
