package hound

import (
	"fmt"

	"github.com/roman-kulish/sweep-inspector/internal/sdr"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

// maxWindow bounds the reordering window of the assembler, in chunks.
const maxWindow = 64

// Assembler turns the chunks printed by a sweep tool into whole sweeps.
// Chunks pass through a reordering window first; a sweep ends when the next
// chunk does not start above the previous one.
type Assembler struct {
	span   spectrum.Range
	buffer *sdr.FrequencyBuffer

	current   *spectrum.Sweep
	lastStart float64
}

// NewAssembler returns an assembler for sweeps across span.
func NewAssembler(span spectrum.Range) (*Assembler, error) {
	if !(span.Span() > 0) {
		return nil, fmt.Errorf("invalid sweep range: %v - %v", span.Min, span.Max)
	}
	return &Assembler{span: span}, nil
}

// Push adds a chunk and returns the sweeps it completed, if any.
func (a *Assembler) Push(r *sdr.SweepResult) ([]*spectrum.Sweep, error) {
	if a.buffer == nil {
		if err := a.initBuffer(r); err != nil {
			return nil, err
		}
	}

	chunks, err := a.buffer.Push(r)
	if err != nil {
		return nil, err
	}
	return a.assemble(chunks), nil
}

// Flush drains the reordering window and returns every remaining sweep,
// including the one still being built.
func (a *Assembler) Flush() []*spectrum.Sweep {
	var sweeps []*spectrum.Sweep
	if a.buffer != nil {
		sweeps = a.assemble(a.buffer.DrainAll())
	}
	if a.current != nil {
		sweeps = append(sweeps, a.current)
		a.current = nil
	}
	return sweeps
}

// initBuffer sizes the window to a quarter of a sweep, so that the window
// never holds chunks from both ends of the same sweep.
func (a *Assembler) initBuffer(first *sdr.SweepResult) error {
	if first == nil {
		return sdr.ErrNilSweep
	}

	width := first.EndFrequency - first.StartFrequency
	if width <= 0 {
		width = first.BinWidth * float64(len(first.Readings))
	}

	capacity := 1
	if width > 0 {
		capacity = min(max(int(a.span.Span()/width/4), 1), maxWindow)
	}

	buffer, err := sdr.NewFrequencyBuffer(a.span.Min, a.span.Max, capacity, max(capacity/2, 1))
	if err != nil {
		return err
	}
	a.buffer = buffer
	return nil
}

func (a *Assembler) assemble(chunks []*sdr.SweepResult) []*spectrum.Sweep {
	var done []*spectrum.Sweep

	for _, c := range chunks {
		if a.current != nil && c.StartFrequency <= a.lastStart {
			done = append(done, a.current)
			a.current = nil
		}

		if a.current == nil {
			a.current = &spectrum.Sweep{
				Timestamp:      c.Timestamp,
				FrequencyStart: c.StartFrequency,
				FrequencyEnd:   c.EndFrequency,
			}
		}

		a.current.Points = append(a.current.Points, c.Points()...)
		a.current.FrequencyEnd = max(a.current.FrequencyEnd, c.EndFrequency)
		a.lastStart = c.StartFrequency
	}

	return done
}
