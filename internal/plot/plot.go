// Package plot is a small 2D plotting surface: axes with explicit scales,
// attachable curves, markers and grids, zoom/pan/cursor tools and a renderer
// that turns the whole thing into PNG, SVG, JPEG or PDF.
//
// Items are registered with a Plot through Attach and removed with Detach.
// The plot never frees or mutates an item; whoever created it owns it.
package plot

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

var (
	// ErrAlreadyAttached is returned when attaching an item that is registered with a plot.
	ErrAlreadyAttached = errors.New("item is already attached to a plot")

	// ErrNilItem is returned when attaching a nil item.
	ErrNilItem = errors.New("nil item")
)

// Labeler converts an axis value into a tick label.
type Labeler func(float64) string

// Scaler is the part of a plot the interactive tools operate on.
type Scaler interface {
	AxisScale(Axis) Scale
	SetAxisScale(a Axis, min, max, step float64)
	AxisLabel(a Axis, v float64) string
	Replot()
}

// Plot holds everything needed to draw a chart.
type Plot struct {
	mu sync.RWMutex

	title      string
	axisTitles map[Axis]string
	scales     map[Axis]Scale
	labelers   map[Axis]Labeler
	items      []Item

	revision  uint64
	listeners []func()
}

// New creates an empty plot with both axes scaled to [0, 1000].
func New(title string) *Plot {
	return &Plot{
		title:      title,
		axisTitles: make(map[Axis]string),
		scales: map[Axis]Scale{
			XBottom: {Min: 0, Max: 1000, Step: 200},
			YLeft:   {Min: 0, Max: 1000, Step: 200},
		},
		labelers: make(map[Axis]Labeler),
	}
}

func (p *Plot) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

func (p *Plot) Title() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.title
}

func (p *Plot) SetAxisTitle(a Axis, title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.axisTitles[a] = title
}

func (p *Plot) AxisTitle(a Axis) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.axisTitles[a]
}

// SetAxisScale sets the visible interval of an axis and its major tick step.
func (p *Plot) SetAxisScale(a Axis, min, max, step float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scales[a] = Scale{Min: min, Max: max, Step: step}
}

func (p *Plot) AxisScale(a Axis) Scale {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scales[a]
}

// SetAxisLabeler installs a tick label formatter for an axis. A nil labeler
// restores the default decimal formatting.
func (p *Plot) SetAxisLabeler(a Axis, fn Labeler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fn == nil {
		delete(p.labelers, a)
		return
	}
	p.labelers[a] = fn
}

// AxisLabel formats v with the axis labeler.
func (p *Plot) AxisLabel(a Axis, v float64) string {
	p.mu.RLock()
	fn := p.labelers[a]
	p.mu.RUnlock()

	if fn == nil {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
	return fn(v)
}

// Attach registers an item with the plot. Items are drawn in attach order.
func (p *Plot) Attach(it Item) error {
	if it == nil {
		return ErrNilItem
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a := it.attached()
	if a.plot != nil {
		return fmt.Errorf("attaching %q: %w", it.Title(), ErrAlreadyAttached)
	}
	a.plot = p
	p.items = append(p.items, it)
	return nil
}

// Detach removes an item from the plot. It returns false if the item was not
// attached to this plot.
func (p *Plot) Detach(it Item) bool {
	if it == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a := it.attached()
	if a.plot != p {
		return false
	}
	for i, item := range p.items {
		if item == it {
			p.items = append(p.items[:i], p.items[i+1:]...)
			break
		}
	}
	a.plot = nil
	return true
}

// DetachAll removes every item from the plot.
func (p *Plot) DetachAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, it := range p.items {
		it.attached().plot = nil
	}
	p.items = nil
}

// Items returns the attached items in attach order.
func (p *Plot) Items() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Item(nil), p.items...)
}

// ItemsOf returns the attached items of type T, in attach order.
func ItemsOf[T Item](p *Plot) []T {
	var out []T
	for _, it := range p.Items() {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// OnReplot registers a callback run after every Replot.
func (p *Plot) OnReplot(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Replot marks the plot as changed and notifies listeners.
func (p *Plot) Replot() {
	p.mu.Lock()
	p.revision++
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Revision is incremented by every Replot. Views use it to skip redundant redraws.
func (p *Plot) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// Export renders the plot to path; see Export.
func (p *Plot) Export(path string, opts ExportOptions) error {
	return Export(p, path, opts)
}

// snapshot is a consistent copy of the plot state used while rendering.
type snapshot struct {
	title      string
	axisTitles map[Axis]string
	scales     map[Axis]Scale
	labelers   map[Axis]Labeler
	items      []Item
}

func (p *Plot) snapshot() snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := snapshot{
		title:      p.title,
		axisTitles: make(map[Axis]string, len(p.axisTitles)),
		scales:     make(map[Axis]Scale, len(p.scales)),
		labelers:   make(map[Axis]Labeler, len(p.labelers)),
		items:      append([]Item(nil), p.items...),
	}
	for k, v := range p.axisTitles {
		s.axisTitles[k] = v
	}
	for k, v := range p.scales {
		s.scales[k] = v
	}
	for k, v := range p.labelers {
		s.labelers[k] = v
	}
	return s
}

func (s snapshot) label(a Axis, v float64) string {
	if fn := s.labelers[a]; fn != nil {
		return fn(v)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
