package hound

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/sdr"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

var errDevice = errors.New("device unplugged")

// fakeSampler replays parsed CSV lines and then stops with err.
type fakeSampler struct {
	lines []string
	err   error

	mu      sync.Mutex
	stopped bool
}

func (f *fakeSampler) BeginSampling(ctx context.Context, results chan<- *sdr.SweepResult) (<-chan error, error) {
	stopped := make(chan error, 1)
	go func() {
		defer close(stopped)
		for _, line := range f.lines {
			r, err := sdr.ParseLine(line, time.UTC, "fake", "0")
			if err != nil {
				stopped <- err
				return
			}
			select {
			case results <- r:
			case <-ctx.Done():
				return
			}
		}
		if f.err != nil {
			stopped <- f.err
		}
	}()
	return stopped, nil
}

func (f *fakeSampler) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

type fakeRecorder struct {
	stored int
	fail   bool
}

func (r *fakeRecorder) StoreSweepResult(_ context.Context, sessionID int64, _ *sdr.SweepResult) error {
	if r.fail {
		return errors.New("disk full")
	}
	if sessionID != 7 {
		return errors.New("wrong session")
	}
	r.stored++
	return nil
}

func captureLines(sweeps int) []string {
	var lines []string
	for _, l := range strings.Split(captureCSV(sweeps), "\n") {
		if l != "" && !strings.HasPrefix(l, "#") {
			lines = append(lines, l)
		}
	}
	return lines
}

var captureSpan = spectrum.Range{Min: chunkBase, Max: chunkBase + chunkCount*chunkWidth}

func TestCapture_Run(t *testing.T) {
	lines := captureLines(3)
	sampler := &fakeSampler{lines: lines}
	recorder := &fakeRecorder{}
	data := New()

	var appended int
	data.OnAppend(func(n int) { appended = n })

	c, err := NewCapture(sampler, captureSpan, data, WithRecorder(recorder, 7))
	if err != nil {
		t.Fatalf("NewCapture() error = %v", err)
	}
	if err = c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if data.Len() != 3 || appended != 3 {
		t.Errorf("captured %d sweeps (last notification %d), want 3", data.Len(), appended)
	}
	if recorder.stored != len(lines) {
		t.Errorf("recorded %d chunks, want %d", recorder.stored, len(lines))
	}
	if !sampler.stopped {
		t.Error("sampler was not stopped")
	}
}

func TestCapture_SourceError(t *testing.T) {
	data := New()
	c, err := NewCapture(&fakeSampler{lines: captureLines(1), err: errDevice}, captureSpan, data)
	if err != nil {
		t.Fatalf("NewCapture() error = %v", err)
	}

	if err = c.Run(context.Background()); !errors.Is(err, errDevice) {
		t.Errorf("Run() error = %v, want errDevice", err)
	}
	if data.Len() != 1 {
		t.Errorf("captured %d sweeps, want the partial capture flushed", data.Len())
	}
}

func TestCapture_RecorderError(t *testing.T) {
	c, err := NewCapture(&fakeSampler{lines: captureLines(1)}, captureSpan, New(), WithRecorder(&fakeRecorder{fail: true}, 7))
	if err != nil {
		t.Fatalf("NewCapture() error = %v", err)
	}
	if err = c.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Run() error = %v, want the recording failure", err)
	}
}

func TestNewCapture_InvalidSpan(t *testing.T) {
	if _, err := NewCapture(&fakeSampler{}, spectrum.Range{Min: 5, Max: 5}, New()); err == nil {
		t.Error("NewCapture with an empty span should fail")
	}
}
