package sdr

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	// ParseErrorsThreshold defines the number of consecutive parse errors allowed
	ParseErrorsThreshold = 5
)

var (
	// ErrTooManyParseErrors is returned when the number of consecutive parse errors exceeds the threshold
	ErrTooManyParseErrors = errors.New("too many consecutive parse errors")

	// ErrBrokenPipe is returned when there's an error reading from stdout or stderr
	ErrBrokenPipe = errors.New("broken pipe")

	// ErrAlreadySampling is returned by BeginSampling while a previous run is active
	ErrAlreadySampling = errors.New("device is already running")
)

// Handler interface defines the methods required for handling a device
type Handler interface {
	// Cmd returns the sweep tool command bound to ctx.
	Cmd(ctx context.Context) *exec.Cmd

	// Parse converts one line of tool output into a sweep result.
	Parse(line string, deviceID string) (*SweepResult, error)

	// Device returns the device type.
	Device() string
}

// WithLogger sets the logger for the device
func WithLogger(logger *slog.Logger) func(d *Device) {
	return func(d *Device) {
		d.logger = logger.With(
			slog.String("device", d.handler.Device()),
			slog.String("deviceID", d.deviceID),
		)
	}
}

// WithParseErrorsThreshold sets the threshold for consecutive parse errors
func WithParseErrorsThreshold(threshold uint8) func(d *Device) {
	return func(d *Device) {
		d.parseErrorsThreshold = threshold
	}
}

// Device runs a sweep tool as a subprocess and streams its parsed output.
type Device struct {
	deviceID string
	handler  Handler

	isSampling atomic.Bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	parseErrorsThreshold uint8
	logger               *slog.Logger
}

// NewDevice creates a new Device instance with a discard logger
func NewDevice(deviceID string, h Handler, options ...func(d *Device)) *Device {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	d := Device{
		deviceID:             deviceID,
		handler:              h,
		logger:               logger,
		parseErrorsThreshold: ParseErrorsThreshold,
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// ID returns the device identifier passed to NewDevice.
func (d *Device) ID() string {
	return d.deviceID
}

// Type returns the device type reported by the handler.
func (d *Device) Type() string {
	return d.handler.Device()
}

// BeginSampling starts the sweep tool and sends every parsed line to results.
// The returned channel is closed once sampling stops; it carries the reason
// when sampling stopped on an error rather than on cancellation or tool exit.
func (d *Device) BeginSampling(ctx context.Context, results chan<- *SweepResult) (<-chan error, error) {
	if !d.isSampling.CompareAndSwap(false, true) {
		return nil, ErrAlreadySampling
	}

	ctx, d.cancel = context.WithCancel(ctx)
	cmd := d.handler.Cmd(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.cancel()
		d.isSampling.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		d.cancel()
		d.isSampling.Store(false)
		return nil, fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		d.cancel()
		d.isSampling.Store(false)
		return nil, fmt.Errorf("error starting command: %w", err)
	}

	samplingStopped := make(chan error, 1)

	d.wg.Add(1)
	go func() {
		defer close(samplingStopped)
		defer d.wg.Done()
		defer d.isSampling.Store(false)

		d.logger.Info("starting samples collection...")

		done := make(chan error, 2) // stdout and stderr readers

		go d.handleStdout(ctx, stdout, results, done)
		go d.handleStderr(stderr, done)

		var errs []error
		for i := 0; i < cap(done); i++ {
			if err := <-done; err != nil {
				d.cancel() // cancel context on error
				d.logger.Error(err.Error())

				errs = append(errs, err)
			}
		}

		// pipes must be drained before Wait closes them
		if err := d.handleCmdWait(ctx, cmd); err != nil {
			d.logger.Error(err.Error())
			errs = append(errs, err)
		}
		d.cancel()

		d.logger.Info("samples collection stopped")

		if len(errs) > 0 {
			samplingStopped <- errors.Join(errs...)
		}
	}()

	return samplingStopped, nil
}

// Stop terminates the sweep tool and waits for the readers to finish.
func (d *Device) Stop() {
	if !d.isSampling.Load() {
		return // already stopped
	}

	d.cancel()
	d.wg.Wait()
}

// IsSampling returns true if the device is running
func (d *Device) IsSampling() bool {
	return d.isSampling.Load()
}

// handleStdout reads from stdout, parses lines and sends results to the results channel.
func (d *Device) handleStdout(ctx context.Context, stdout io.Reader, results chan<- *SweepResult, done chan<- error) {
	var parseErrors uint8

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) // wide sweeps print long lines

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		result, err := d.handler.Parse(line, d.deviceID)
		if err != nil {
			parseErrors++
			d.logger.Warn(fmt.Sprintf("error parsing samples: %s", err.Error()), slog.String("line", line))

			if parseErrors >= d.parseErrorsThreshold {
				done <- ErrTooManyParseErrors
				return
			}

			continue
		}

		parseErrors = 0 // reset counter

		select {
		case results <- result:
		case <-ctx.Done():
			done <- nil
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- fmt.Errorf("%w: error reading stdout: %w", ErrBrokenPipe, err)
		return
	}

	done <- nil
}

// handleStderr reads from stderr and logs errors.
func (d *Device) handleStderr(stderr io.Reader, done chan<- error) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		d.logger.Warn(fmt.Sprintf("%s >> %s", d.handler.Device(), line)) // simple logging here
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- fmt.Errorf("%w: error reading stderr: %w", ErrBrokenPipe, err)
		return
	}

	done <- nil
}

// handleCmdWait waits for the command to exit. A process killed through
// cancellation is not an error.
func (d *Device) handleCmdWait(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("command exited with error: %w", err)
	}
	return nil
}
