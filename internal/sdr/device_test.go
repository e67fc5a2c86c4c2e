//go:build !windows

package sdr

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

type scriptHandler struct {
	script string
}

func (h scriptHandler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", h.script)
}

func (h scriptHandler) Parse(line string, deviceID string) (*SweepResult, error) {
	return ParseLine(line, time.UTC, h.Device(), deviceID)
}

func (h scriptHandler) Device() string {
	return "script"
}

func waitStopped(t *testing.T, stopped <-chan error) error {
	t.Helper()
	select {
	case err := <-stopped:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("sampling did not stop")
		return nil
	}
}

func TestDevice_BeginSampling(t *testing.T) {
	h := scriptHandler{script: `
echo "2024-05-01, 12:00:00, 100, 300, 100, 4, -10, -20"
echo ""
echo "2024-05-01, 12:00:01, 100, 300, 100, 4, -11, -21"
echo "warming up" >&2`}
	d := NewDevice("dev0", h)

	results := make(chan *SweepResult, 8)
	stopped, err := d.BeginSampling(context.Background(), results)
	if err != nil {
		t.Fatalf("BeginSampling() error = %v", err)
	}
	if err = waitStopped(t, stopped); err != nil {
		t.Errorf("sampling stopped with %v", err)
	}
	if d.IsSampling() {
		t.Error("IsSampling() = true after the tool exited")
	}

	close(results)
	var got []*SweepResult
	for r := range results {
		got = append(got, r)
	}
	if len(got) != 2 {
		t.Fatalf("received %d results, want 2", len(got))
	}
	if got[0].DeviceID != "dev0" || got[1].Readings[1].Power != -21 {
		t.Errorf("unexpected results %+v %+v", got[0], got[1])
	}
}

func TestDevice_TooManyParseErrors(t *testing.T) {
	h := scriptHandler{script: `for i in 1 2 3 4 5; do echo garbage; done`}
	d := NewDevice("dev0", h, WithParseErrorsThreshold(3))

	stopped, err := d.BeginSampling(context.Background(), make(chan *SweepResult, 1))
	if err != nil {
		t.Fatalf("BeginSampling() error = %v", err)
	}
	if err = waitStopped(t, stopped); !errors.Is(err, ErrTooManyParseErrors) {
		t.Errorf("sampling stopped with %v, want ErrTooManyParseErrors", err)
	}
}

func TestDevice_Stop(t *testing.T) {
	d := NewDevice("dev0", scriptHandler{script: "exec sleep 30"})

	stopped, err := d.BeginSampling(context.Background(), make(chan *SweepResult))
	if err != nil {
		t.Fatalf("BeginSampling() error = %v", err)
	}
	if _, err = d.BeginSampling(context.Background(), make(chan *SweepResult)); !errors.Is(err, ErrAlreadySampling) {
		t.Errorf("second BeginSampling() error = %v, want ErrAlreadySampling", err)
	}

	d.Stop()

	if err = waitStopped(t, stopped); err != nil {
		t.Errorf("stopping reported %v", err)
	}
	if d.IsSampling() {
		t.Error("IsSampling() = true after Stop")
	}
}
