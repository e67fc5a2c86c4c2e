package hound

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/sdr"
	"github.com/roman-kulish/sweep-inspector/internal/sdr/hackrf"
	"github.com/roman-kulish/sweep-inspector/internal/sdr/rtl"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

// Format names the tool that produced a CSV capture.
type Format string

const (
	FormatHackRF Format = "hackrf"
	FormatRTL    Format = "rtl"
)

// ErrUnknownFormat is returned for a CSV format other than hackrf or rtl.
var ErrUnknownFormat = errors.New("unknown CSV format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHackRF, FormatRTL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Device returns the device type recorded for sweeps in this format.
func (f Format) Device() string {
	if f == FormatRTL {
		return rtl.Device
	}
	return hackrf.Device
}

// ReadCSV reads a `hackrf_sweep` or `rtl_power` CSV capture and assembles its
// lines into sweeps. Timestamps are read in loc; the tools print local time.
// Blank lines and lines starting with '#' are skipped.
func ReadCSV(r io.Reader, format Format, loc *time.Location) ([]*spectrum.Sweep, error) {
	if loc == nil {
		loc = time.Local
	}

	var chunks []*sdr.SweepResult
	var span spectrum.Range

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		chunk, err := sdr.ParseLine(line, loc, format.Device(), "")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if len(chunks) == 0 {
			span = spectrum.Range{Min: chunk.StartFrequency, Max: chunk.EndFrequency}
		}
		span = span.Extend(chunk.StartFrequency).Extend(chunk.EndFrequency)
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(chunks) == 0 {
		return nil, ErrEmpty
	}

	assembler, err := NewAssembler(span)
	if err != nil {
		return nil, err
	}

	var sweeps []*spectrum.Sweep
	for _, c := range chunks {
		done, err := assembler.Push(c)
		if err != nil {
			return nil, err
		}
		sweeps = append(sweeps, done...)
	}
	return append(sweeps, assembler.Flush()...), nil
}

// LoadCSV reads the CSV capture at path into a new Data.
func LoadCSV(path string, format Format, options ...func(d *Data)) (_ *Data, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	sweeps, err := ReadCSV(f, format, time.Local)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	d := New(append([]func(*Data){WithCapacity(len(sweeps))}, options...)...)
	d.Append(sweeps...)
	return d, nil
}
