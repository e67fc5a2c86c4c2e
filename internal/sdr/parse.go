package sdr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the date and time layout of the first two CSV fields
// printed by `hackrf_sweep` and `rtl_power`. Fractional seconds, printed by
// `hackrf_sweep` only, are accepted on parse.
const TimestampLayout = "2006-01-02 15:04:05"

// csvFixedFields is the number of fields before the power readings:
// date, time, Hz low, Hz high, Hz bin width, number of samples.
const csvFixedFields = 6

// ErrMalformedLine is returned for lines that are not sweep tool output.
var ErrMalformedLine = errors.New("malformed sweep line")

// ParseLine parses one line of sweep tool CSV output into a SweepResult. Each
// power reading is placed at the center of its bin. Readings that are not
// numbers (e.g. "nan", "-inf") are kept as invalid readings.
//
// Timestamps are interpreted in loc, which is time.Local for live captures.
func ParseLine(line string, loc *time.Location, device, deviceID string) (*SweepResult, error) {
	fields := strings.Split(line, ",")
	if len(fields) <= csvFixedFields {
		return nil, fmt.Errorf("%w: %d fields", ErrMalformedLine, len(fields))
	}

	var err error

	result := SweepResult{
		Device:   device,
		DeviceID: deviceID,
	}

	dateTime := strings.TrimSpace(fields[0]) + " " + strings.TrimSpace(fields[1])
	if result.Timestamp, err = time.ParseInLocation(TimestampLayout, dateTime, loc); err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}

	if result.StartFrequency, err = parseFloat(fields[2]); err != nil {
		return nil, fmt.Errorf("invalid start frequency: %w", err)
	}

	if result.EndFrequency, err = parseFloat(fields[3]); err != nil {
		return nil, fmt.Errorf("invalid end frequency: %w", err)
	}

	if result.BinWidth, err = parseFloat(fields[4]); err != nil {
		return nil, fmt.Errorf("invalid bin width: %w", err)
	}
	if result.BinWidth <= 0 {
		return nil, fmt.Errorf("%w: bin width %v", ErrMalformedLine, result.BinWidth)
	}

	if result.NumSamples, err = strconv.Atoi(strings.TrimSpace(fields[5])); err != nil {
		return nil, fmt.Errorf("invalid number of samples: %w", err)
	}

	result.Readings = make([]PowerReading, 0, len(fields)-csvFixedFields)
	for i, field := range fields[csvFixedFields:] {
		reading := PowerReading{
			Frequency: result.StartFrequency + (float64(i) * result.BinWidth) + (result.BinWidth / 2),
		}

		if power, err := parseFloat(field); err == nil {
			reading.Power = power
			reading.IsValid = true
		}

		result.Readings = append(result.Readings, reading)
	}

	return &result, nil
}

// parseFloat rejects NaN and infinities, which the tools print for empty bins.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", strings.TrimSpace(s))
	}
	return v, nil
}
