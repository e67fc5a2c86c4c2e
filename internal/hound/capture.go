package hound

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/sweep-inspector/internal/sdr"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

// progressEvery is the number of sweeps between progress log lines.
const progressEvery = 100

// Sampler is a sweep source such as *sdr.Device.
type Sampler interface {
	BeginSampling(ctx context.Context, results chan<- *sdr.SweepResult) (<-chan error, error)
	Stop()
}

// Recorder persists raw sweep chunks; storage.Store is one.
type Recorder interface {
	StoreSweepResult(ctx context.Context, sessionID int64, result *sdr.SweepResult) error
}

// WithRecorder stores every chunk under sessionID while capturing.
func WithRecorder(r Recorder, sessionID int64) func(c *Capture) {
	return func(c *Capture) {
		c.recorder = r
		c.sessionID = sessionID
	}
}

// WithCaptureLogger sets the logger for the capture
func WithCaptureLogger(logger *slog.Logger) func(c *Capture) {
	return func(c *Capture) {
		c.logger = logger.With(slog.String("component", "capture"))
	}
}

// Capture feeds a live sweep source into Data.
type Capture struct {
	sampler   Sampler
	data      *Data
	assembler *Assembler

	recorder  Recorder
	sessionID int64

	chunks int64
	logger *slog.Logger
}

// NewCapture returns a capture of sweeps across span into data.
func NewCapture(sampler Sampler, span spectrum.Range, data *Data, options ...func(c *Capture)) (*Capture, error) {
	assembler, err := NewAssembler(span)
	if err != nil {
		return nil, err
	}

	c := Capture{
		sampler:   sampler,
		data:      data,
		assembler: assembler,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&c)
	}

	return &c, nil
}

// Run samples until ctx is cancelled or the source stops. Sweeps still being
// assembled are flushed into Data before Run returns. The error is the one
// the source stopped with, or a recording failure.
func (c *Capture) Run(ctx context.Context) (err error) {
	results := make(chan *sdr.SweepResult, maxWindow)

	stopped, err := c.sampler.BeginSampling(ctx, results)
	if err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}
	defer c.sampler.Stop()
	defer c.flush()

	c.logger.Info("capture started")

	for {
		select {
		case r := <-results:
			if err = c.handle(ctx, r); err != nil {
				return err
			}

		case err = <-stopped:
			for {
				select {
				case r := <-results:
					if hErr := c.handle(ctx, r); hErr != nil && err == nil {
						err = hErr
					}
				default:
					c.logger.Info("capture stopped", slog.String("chunks", humanize.Comma(c.chunks)))
					return err
				}
			}
		}
	}
}

func (c *Capture) handle(ctx context.Context, r *sdr.SweepResult) error {
	c.chunks++

	if c.recorder != nil {
		if err := c.recorder.StoreSweepResult(ctx, c.sessionID, r); err != nil {
			return fmt.Errorf("recording sweep: %w", err)
		}
	}

	sweeps, err := c.assembler.Push(r)
	if err != nil {
		return err
	}
	if len(sweeps) == 0 {
		return nil
	}

	before := c.data.Len()
	c.data.Append(sweeps...)
	if after := c.data.Len(); after/progressEvery != before/progressEvery {
		c.logger.Info("capture progress",
			slog.String("sweeps", humanize.Comma(int64(after))),
			slog.String("chunks", humanize.Comma(c.chunks)),
		)
	}
	return nil
}

func (c *Capture) flush() {
	c.data.Append(c.assembler.Flush()...)
}
