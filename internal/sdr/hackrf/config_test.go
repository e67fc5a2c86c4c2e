package hackrf

import (
	"slices"
	"testing"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

func intPtr(v int) *int { return &v }

func TestConfig_Args(t *testing.T) {
	c := Config{
		FrequencyStart: 2_400_000_000,
		FrequencyEnd:   2_500_000_000,
		BinWidth:       100_000,
		LNAGain:        intPtr(16),
		VGAGain:        intPtr(20),
		NumSamples:     16384,
		EnableAmp:      true,
	}

	args, err := c.Args("0000000000000000457863dc2b1d1c1f")
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}

	want := []string{
		"-f", "2400:2500",
		"-d", "0000000000000000457863dc2b1d1c1f",
		"-w", "100000",
		"-l", "16",
		"-g", "20",
		"-n", "16384",
		"-a", "1",
	}
	if !slices.Equal(args, want) {
		t.Errorf("Args() = %v, want %v", args, want)
	}
	if span := c.Span(); span != (spectrum.Range{Min: 2.4e9, Max: 2.5e9}) {
		t.Errorf("Span() = %+v", span)
	}

	if got := c.String(); got != "hackrf_sweep -f 2400:2500 -w 100000 -l 16 -g 20 -n 16384 -a 1" {
		t.Errorf("String() = %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		c    Config
	}{
		{"inverted range", Config{FrequencyStart: 2e9, FrequencyEnd: 1e9}},
		{"LNA gain too high", Config{FrequencyEnd: 1e9, LNAGain: intPtr(48)}},
		{"LNA gain step", Config{FrequencyEnd: 1e9, LNAGain: intPtr(12)}},
		{"VGA gain step", Config{FrequencyEnd: 1e9, VGAGain: intPtr(3)}},
		{"too few samples", Config{FrequencyEnd: 1e9, NumSamples: 100}},
		{"negative sweeps", Config{FrequencyEnd: 1e9, NumSweeps: -1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.c.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	ok := Config{FrequencyStart: 1e6, FrequencyEnd: 6e9}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestHandler_Parse(t *testing.T) {
	h := handler{}
	r, err := h.Parse("2024-05-01, 12:30:15.123456, 2400000000, 2405000000, 1000000.00, 20, -64.72, -60.1", "sn")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if r.Device != Device || r.DeviceID != "sn" || len(r.Readings) != 2 {
		t.Errorf("Parse() = %+v", r)
	}
	if r.Timestamp.Location() != time.Local {
		t.Errorf("timestamp location = %v, want local time", r.Timestamp.Location())
	}
}
