//go:build !windows

package sdr

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrRuntimeNotFound is returned when a sweep tool binary cannot be located.
var ErrRuntimeNotFound = errors.New("runtime not found")

// FindRuntime looks the sweep tool up in PATH.
func FindRuntime(runtime string) (string, error) {
	binPath, err := exec.LookPath(runtime)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: `%s` not found in PATH", ErrRuntimeNotFound, runtime)
		}
		return "", fmt.Errorf("locating `%s`: %w", runtime, err)
	}
	return binPath, nil
}
