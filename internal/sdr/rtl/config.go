package rtl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

const (
	BinWidthMin = 1
	BinWidthMax = 2_800_000

	SmoothingAvg Smoothing = "avg" // default
	SmoothingIIR Smoothing = "iir"
)

type Smoothing string

// Interval is the rtl_power integration interval. It is written as a
// duration ("5s", "15m") in the YAML capture section and session metadata.
type Interval time.Duration

func (i *Interval) UnmarshalYAML(value *yaml.Node) error {
	d, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("rtl.Interval: %w", err)
	}
	*i = Interval(d)
	return nil
}

func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(i).String())
}

// Arg formats the interval as rtl_power expects it: whole hours, minutes or
// seconds with a unit suffix.
func (i Interval) Arg() string {
	d := time.Duration(i)
	switch {
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	case d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	default:
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
}

// Config selects what `rtl_power` samples for a live capture.
// See https://manpages.debian.org/bookworm/rtl-sdr/rtl_power.1.en.html
//
//	capture:
//	  rtl:
//	    frequencyStart: 88000000
//	    frequencyEnd: 108000000
//	    binWidth: 125000
//	    interval: 5s
type Config struct {
	FrequencyStart int64 `yaml:"frequencyStart" json:"frequencyStart"` // -f lower, Hz
	FrequencyEnd   int64 `yaml:"frequencyEnd" json:"frequencyEnd"`     // -f upper, Hz
	BinWidth       int64 `yaml:"binWidth" json:"binWidth"`             // -f bin size, 1 Hz to 2.8 MHz

	Interval    Interval `yaml:"interval" json:"interval"`       // -i, rtl_power defaults to 10s
	DeviceIndex int      `yaml:"deviceIndex" json:"deviceIndex"` // -d

	Gain      int       `yaml:"gain" json:"gain"`           // -g tuner gain in dB, 0 is automatic
	PPMError  int       `yaml:"ppmError" json:"ppmError"`   // -p
	Smoothing Smoothing `yaml:"smoothing" json:"smoothing"` // -s
	Crop      float32   `yaml:"crop" json:"crop"`           // -c fraction of each hop to discard
}

// Span is the frequency range the capture covers.
func (c *Config) Span() spectrum.Range {
	return spectrum.Range{Min: float64(c.FrequencyStart), Max: float64(c.FrequencyEnd)}
}

// DeviceID returns the device index in the form used for session metadata.
func (c *Config) DeviceID() string {
	return strconv.Itoa(c.DeviceIndex)
}

func (c *Config) Validate() error {
	if c.FrequencyStart <= 0 {
		return fmt.Errorf("rtl.Config: frequency start must be positive: %d", c.FrequencyStart)
	}
	if c.FrequencyEnd <= c.FrequencyStart {
		return fmt.Errorf("rtl.Config: frequency end must be greater than start: %d <= %d", c.FrequencyEnd, c.FrequencyStart)
	}
	if c.BinWidth < BinWidthMin || c.BinWidth > BinWidthMax {
		return fmt.Errorf("rtl.Config: invalid bin width: %d, must be between %d and %d Hz", c.BinWidth, BinWidthMin, BinWidthMax)
	}

	// rtl_power counts the interval in whole seconds.
	if d := time.Duration(c.Interval); d < 0 || (d > 0 && d < time.Second) {
		return fmt.Errorf("rtl.Config: interval must be at least 1 second: %s given", d)
	}

	switch c.Smoothing {
	case "", SmoothingAvg, SmoothingIIR:
	default:
		return fmt.Errorf("rtl.Config: invalid smoothing method: %s", c.Smoothing)
	}

	if c.Gain < 0 {
		return fmt.Errorf("rtl.Config: gain must not be negative: %d given", c.Gain)
	}
	if c.Crop < 0 || c.Crop > 1 {
		return fmt.Errorf("rtl.Config: crop must be between 0 and 1: %0.2f given", c.Crop)
	}

	return nil
}

// Args returns the command line arguments for `rtl_power`, writing to stdout.
func (c *Config) Args() ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"-f", fmt.Sprintf("%d:%d:%d", c.FrequencyStart, c.FrequencyEnd, c.BinWidth),
	}
	if c.Interval > 0 {
		args = append(args, "-i", c.Interval.Arg())
	}
	args = append(args, "-d", strconv.Itoa(c.DeviceIndex))

	if c.Gain > 0 {
		args = append(args, "-g", strconv.Itoa(c.Gain))
	}
	if c.PPMError != 0 {
		args = append(args, "-p", strconv.Itoa(c.PPMError))
	}
	if c.Smoothing != "" {
		args = append(args, "-s", string(c.Smoothing))
	}
	if c.Crop > 0 {
		args = append(args, "-c", strconv.FormatFloat(float64(c.Crop), 'f', 2, 32))
	}

	return append(args, "-"), nil
}

func (c *Config) String() string {
	args, err := c.Args()
	if err != nil {
		return fmt.Sprintf("rtl.Config: failed to build args: %s", err)
	}
	return fmt.Sprintf("%s %s", Runtime, strings.Join(args, " "))
}
