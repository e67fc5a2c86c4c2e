//go:build windows

package sdr

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrRuntimeNotFound is returned when a sweep tool binary cannot be located.
var ErrRuntimeNotFound = errors.New("runtime not found")

// FindRuntime looks for the sweep tool in the bundled bin/<tool>/windows/x64
// directories next to the executable and the working directory, then in PATH.
func FindRuntime(runtime string) (string, error) {
	var lookup []string

	if exePath, err := os.Executable(); err == nil {
		lookup = append(lookup, filepath.Dir(exePath))
	}
	if wd, err := os.Getwd(); err == nil {
		lookup = append(lookup, wd)
	}

	for _, exeDir := range lookup {
		matches, err := filepath.Glob(filepath.Join(exeDir, "bin", "*", "windows", "x64", fmt.Sprintf("%s.exe", runtime)))
		if err != nil || len(matches) == 0 {
			continue // continue to next directory
		}

		binPath := matches[0]
		if _, err = os.Stat(binPath); err != nil {
			continue
		}

		return binPath, nil
	}

	if binPath, err := exec.LookPath(runtime); err == nil {
		return binPath, nil
	}

	return "", fmt.Errorf("%w: '%s'", ErrRuntimeNotFound, runtime)
}
