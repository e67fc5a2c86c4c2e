package rtl

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/sdr"
)

const (
	Runtime = "rtl_power"
	Device  = "RTL-SDR"
)

// handler runs `rtl_power` and parses its CSV output.
type handler struct {
	binPath string
	args    []string
}

// New creates a new RTL-SDR handler. The device is selected by
// config.DeviceIndex.
func New(config *Config) (sdr.Handler, error) {
	binPath, err := sdr.FindRuntime(Runtime)
	if err != nil {
		return nil, fmt.Errorf("error finding runtime: %w", err)
	}

	args, err := config.Args()
	if err != nil {
		return nil, fmt.Errorf("error creating args: %w", err)
	}

	return &handler{binPath, args}, nil
}

// Cmd returns an exec.Cmd for the RTL-SDR handler
func (h handler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.args...)
}

// Parse parses a line of `rtl_power` output. The tool prints local time
// with whole seconds.
func (h handler) Parse(line string, deviceID string) (*sdr.SweepResult, error) {
	return sdr.ParseLine(line, time.Local, Device, deviceID)
}

func (h handler) Device() string {
	return Device
}
