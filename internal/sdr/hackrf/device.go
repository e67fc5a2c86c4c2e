package hackrf

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/sdr"
)

const (
	Runtime = "hackrf_sweep"
	Device  = "HackRF"
)

// handler runs `hackrf_sweep` and parses its CSV output.
type handler struct {
	binPath string
	args    []string
}

// New creates a new HackRF handler for the device with the given serial
// number, or the first device when serialNumber is empty.
func New(serialNumber string, config *Config) (sdr.Handler, error) {
	binPath, err := sdr.FindRuntime(Runtime)
	if err != nil {
		return nil, fmt.Errorf("error finding runtime: %w", err)
	}

	args, err := config.Args(serialNumber)
	if err != nil {
		return nil, fmt.Errorf("error creating args: %w", err)
	}

	return &handler{binPath, args}, nil
}

// Cmd returns an exec.Cmd for the HackRF handler
func (h handler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.args...)
}

// Parse parses a line of `hackrf_sweep` output. The tool prints local time.
func (h handler) Parse(line string, deviceID string) (*sdr.SweepResult, error) {
	return sdr.ParseLine(line, time.Local, Device, deviceID)
}

// Device returns the device type
func (h handler) Device() string {
	return Device
}
