package rtl

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

func TestConfig_YAML(t *testing.T) {
	src := `
frequencyStart: 88000000
frequencyEnd: 108000000
binWidth: 125000
interval: 15m
deviceIndex: 1
gain: 30
smoothing: iir
crop: 0.2
`
	var c Config
	if err := yaml.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if time.Duration(c.Interval) != 15*time.Minute {
		t.Errorf("Interval = %v, want 15m", time.Duration(c.Interval))
	}

	args, err := c.Args()
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}
	want := []string{
		"-f", "88000000:108000000:125000",
		"-i", "15m",
		"-d", "1",
		"-g", "30",
		"-s", "iir",
		"-c", "0.20",
		"-",
	}
	if !slices.Equal(args, want) {
		t.Errorf("Args() = %v, want %v", args, want)
	}
	if c.DeviceID() != "1" {
		t.Errorf("DeviceID() = %q", c.DeviceID())
	}
	if span := c.Span(); span != (spectrum.Range{Min: 88e6, Max: 108e6}) {
		t.Errorf("Span() = %+v", span)
	}
}

func TestConfig_SessionJSON(t *testing.T) {
	c := Config{FrequencyStart: 1e6, FrequencyEnd: 2e6, BinWidth: 1000, Interval: Interval(90 * time.Second)}

	b, err := json.Marshal(&c)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var got map[string]any
	if err = json.Unmarshal(b, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got["interval"] != "1m30s" {
		t.Errorf("interval = %v, want 1m30s", got["interval"])
	}
}

func TestInterval_Arg(t *testing.T) {
	tests := map[time.Duration]string{
		2 * time.Hour:    "2h",
		15 * time.Minute: "15m",
		90 * time.Second: "90s",
	}
	for d, want := range tests {
		if got := Interval(d).Arg(); got != want {
			t.Errorf("Interval(%v).Arg() = %q, want %q", d, got, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		c    Config
	}{
		{"missing start", Config{FrequencyEnd: 1e6, BinWidth: 1000}},
		{"inverted range", Config{FrequencyStart: 2e6, FrequencyEnd: 1e6, BinWidth: 1000}},
		{"bin width too wide", Config{FrequencyStart: 1e6, FrequencyEnd: 2e6, BinWidth: 3_000_000}},
		{"short interval", Config{FrequencyStart: 1e6, FrequencyEnd: 2e6, BinWidth: 1000, Interval: Interval(time.Millisecond)}},
		{"bad smoothing", Config{FrequencyStart: 1e6, FrequencyEnd: 2e6, BinWidth: 1000, Smoothing: "median"}},
		{"negative gain", Config{FrequencyStart: 1e6, FrequencyEnd: 2e6, BinWidth: 1000, Gain: -1}},
		{"bad crop", Config{FrequencyStart: 1e6, FrequencyEnd: 2e6, BinWidth: 1000, Crop: 1.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.c.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestInterval_Invalid(t *testing.T) {
	var c Config
	if err := yaml.Unmarshal([]byte("interval: soon"), &c); err == nil {
		t.Error("expected a parse error")
	}
}
