// Package hound holds the sweeps shown by the inspector and the loaders that
// fill it from SQLite captures, sweep tool CSV files and live devices.
package hound

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

// DefaultTimeFormat is the layout of sweep timestamp labels.
const DefaultTimeFormat = "2006-01-02 15:04:05.000"

var (
	// ErrIndexOutOfRange is returned for a sweep index outside [0, NumSweeps).
	ErrIndexOutOfRange = errors.New("sweep index out of range")

	// ErrEmpty is returned when an operation needs at least one sweep.
	ErrEmpty = errors.New("no sweeps")
)

// WithTimeFormat sets the layout of timestamp labels.
func WithTimeFormat(layout string) func(d *Data) {
	return func(d *Data) {
		if layout != "" {
			d.timeFormat = layout
		}
	}
}

// WithLocation sets the time zone timestamp labels are shown in.
func WithLocation(loc *time.Location) func(d *Data) {
	return func(d *Data) {
		if loc != nil {
			d.location = loc
		}
	}
}

// WithCapacity preallocates room for n sweeps.
func WithCapacity(n int) func(d *Data) {
	return func(d *Data) {
		if n > 0 {
			d.sweeps = make([]*spectrum.Sweep, 0, n)
		}
	}
}

// Data is an append-only, time ordered collection of sweeps. It is safe for
// concurrent use: a capture goroutine may append while the UI reads.
type Data struct {
	mu        sync.RWMutex
	sweeps    []*spectrum.Sweep
	limits    spectrum.Range
	hasLimits bool
	listeners []func(n int)

	timeFormat string
	location   *time.Location
}

// New returns an empty collection labelling timestamps in local time.
func New(options ...func(d *Data)) *Data {
	d := Data{
		timeFormat: DefaultTimeFormat,
		location:   time.Local,
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// Append adds sweeps in order and widens the frequency limits to cover them.
// Nil sweeps are skipped. Listeners registered with OnAppend are called with
// the new sweep count after the lock is released.
func (d *Data) Append(sweeps ...*spectrum.Sweep) {
	d.mu.Lock()
	added := 0
	for _, s := range sweeps {
		if s == nil {
			continue
		}
		d.sweeps = append(d.sweeps, s)
		added++

		if b, ok := s.Bounds(); ok {
			if d.hasLimits {
				d.limits = d.limits.Union(b)
			} else {
				d.limits, d.hasLimits = b, true
			}
		}
	}
	n := len(d.sweeps)
	listeners := d.listeners
	d.mu.Unlock()

	if added == 0 {
		return
	}
	for _, fn := range listeners {
		fn(n)
	}
}

// OnAppend registers fn to be called after every Append that added sweeps.
func (d *Data) OnAppend(fn func(n int)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners = append(d.listeners[:len(d.listeners):len(d.listeners)], fn)
}

// Len returns the number of sweeps.
func (d *Data) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sweeps)
}

// NumSweeps is Len; it satisfies inspector.DataSource.
func (d *Data) NumSweeps() int {
	return d.Len()
}

// Sweep returns the sweep at index i.
func (d *Data) Sweep(i int) (*spectrum.Sweep, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if i < 0 || i >= len(d.sweeps) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(d.sweeps))
	}
	return d.sweeps[i], nil
}

// TimestampLabel formats the timestamp of sweep i, or returns "" when i is
// out of range.
func (d *Data) TimestampLabel(i int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if i < 0 || i >= len(d.sweeps) {
		return ""
	}
	return d.sweeps[i].Timestamp.In(d.location).Format(d.timeFormat)
}

// FrequencyLimits returns the frequency range covered by all sweeps.
func (d *Data) FrequencyLimits() spectrum.Range {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.limits
}

// TimeRange returns the timestamps of the first and the last sweep.
func (d *Data) TimeRange() (start, end time.Time, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.sweeps) == 0 {
		return time.Time{}, time.Time{}, ErrEmpty
	}
	return d.sweeps[0].Timestamp, d.sweeps[len(d.sweeps)-1].Timestamp, nil
}
