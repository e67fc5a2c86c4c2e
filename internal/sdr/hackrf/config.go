package hackrf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

const (
	MinNumSamples = 8192
	MaxLNAGain    = 40
	MaxVGAGain    = 62
	LNAGainStep   = 8
	VGAGainStep   = 2
)

// Config is a struct for configuring the `hackrf_sweep` tool.
// See https://manpages.debian.org/bookworm/hackrf/hackrf_sweep.1.en.html
//
//	hackrf.Config{
//	    FrequencyStart: 824_000_000,
//	    FrequencyEnd:   849_000_000,
//	    BinWidth:       100_000,
//	}
//	// hackrf_sweep -f 824:849 -w 100000
type Config struct {
	FrequencyStart int64 `yaml:"frequencyStart" json:"frequencyStart"` // -f freq_min, Hz (passed to the tool in MHz)
	FrequencyEnd   int64 `yaml:"frequencyEnd" json:"frequencyEnd"`     // -f freq_max, Hz (passed to the tool in MHz)

	LNAGain    *int  `yaml:"lnaGain" json:"lnaGain"`       // -l LNA (IF) gain, 0-40dB, 8dB steps
	VGAGain    *int  `yaml:"vgaGain" json:"vgaGain"`       // -g VGA (baseband) gain, 0-62dB, 2dB steps
	BinWidth   int64 `yaml:"binWidth" json:"binWidth"`     // -w FFT bin width in Hz
	NumSamples int64 `yaml:"numSamples" json:"numSamples"` // -n samples per frequency, 8192-4294967296

	EnableAmp    bool `yaml:"enableAmp" json:"enableAmp"`       // -a RX RF amplifier
	AntennaPower bool `yaml:"antennaPower" json:"antennaPower"` // -p antenna port power

	NumSweeps int `yaml:"numSweeps" json:"numSweeps"` // -N number of sweeps, 0 runs until stopped
}

// Span is the frequency range the capture covers.
func (c *Config) Span() spectrum.Range {
	return spectrum.Range{Min: float64(c.FrequencyStart), Max: float64(c.FrequencyEnd)}
}

func (c *Config) Validate() error {
	if c.FrequencyStart < 0 {
		return fmt.Errorf("hackrf.Config: frequency start must not be negative: %d", c.FrequencyStart)
	}
	if c.FrequencyStart >= c.FrequencyEnd {
		return errors.New("hackrf.Config: frequency end must be greater than frequency start")
	}

	if c.LNAGain != nil {
		if *c.LNAGain < 0 || *c.LNAGain > MaxLNAGain {
			return fmt.Errorf("hackrf.Config: LNA gain must be between 0 and %d dB: %d given", MaxLNAGain, *c.LNAGain)
		}
		if *c.LNAGain%LNAGainStep != 0 {
			return fmt.Errorf("hackrf.Config: LNA gain must be a multiple of %d dB", LNAGainStep)
		}
	}

	if c.VGAGain != nil {
		if *c.VGAGain < 0 || *c.VGAGain > MaxVGAGain {
			return fmt.Errorf("hackrf.Config: VGA gain must be between 0 and %d dB: %d given", MaxVGAGain, *c.VGAGain)
		}
		if *c.VGAGain%VGAGainStep != 0 {
			return fmt.Errorf("hackrf.Config: VGA gain must be a multiple of %d dB", VGAGainStep)
		}
	}

	if c.BinWidth < 0 {
		return fmt.Errorf("hackrf.Config: bin width must not be negative: %d given", c.BinWidth)
	}

	if c.NumSamples > 0 && c.NumSamples < MinNumSamples {
		return fmt.Errorf("hackrf.Config: number of samples must be at least %d: %d given", MinNumSamples, c.NumSamples)
	}

	if c.NumSweeps < 0 {
		return fmt.Errorf("hackrf.Config: number of sweeps cannot be negative: %d given", c.NumSweeps)
	}

	return nil
}

// Args builds the command line arguments for `hackrf_sweep`. An empty
// serialNumber selects the first device.
func (c *Config) Args(serialNumber string) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"-f", fmt.Sprintf("%d:%d", c.FrequencyStart/1e6, c.FrequencyEnd/1e6),
	}

	if serialNumber != "" {
		args = append(args, "-d", serialNumber)
	}

	if c.BinWidth > 0 {
		args = append(args, "-w", strconv.FormatInt(c.BinWidth, 10))
	}

	if c.LNAGain != nil {
		args = append(args, "-l", strconv.Itoa(*c.LNAGain))
	}

	if c.VGAGain != nil {
		args = append(args, "-g", strconv.Itoa(*c.VGAGain))
	}

	if c.NumSamples >= MinNumSamples {
		args = append(args, "-n", strconv.FormatInt(c.NumSamples, 10))
	}

	if c.EnableAmp {
		args = append(args, "-a", "1")
	}

	if c.AntennaPower {
		args = append(args, "-p", "1")
	}

	if c.NumSweeps > 0 {
		args = append(args, "-N", strconv.Itoa(c.NumSweeps))
	}

	return args, nil
}

func (c *Config) String() string {
	args, err := c.Args("")
	if err != nil {
		return fmt.Sprintf("hackrf.Config: failed to build args: %s", err)
	}
	return fmt.Sprintf("%s %s", Runtime, strings.Join(args, " "))
}
