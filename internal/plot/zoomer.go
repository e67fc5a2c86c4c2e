package plot

import (
	"math"
	"sync"
)

const minZoomFraction = 1e-9

// Zoomer keeps a stack of visible rectangles. The bottom of the stack is the
// zoom base, the fully zoomed out view.
type Zoomer struct {
	mu sync.Mutex

	plot      Scaler
	stack     []Rect
	index     int
	baseStepX float64
	baseStepY float64
}

// NewZoomer creates a zoomer whose base is the current plot view.
func NewZoomer(p Scaler) *Zoomer {
	z := &Zoomer{plot: p}
	x, y := p.AxisScale(XBottom), p.AxisScale(YLeft)
	z.stack = []Rect{{XMin: x.Min, XMax: x.Max, YMin: y.Min, YMax: y.Max}}
	z.baseStepX, z.baseStepY = x.Step, y.Step
	return z
}

// SetZoomBase replaces the zoom base and clears the zoom stack. The tick steps
// of the base are taken from the plot's current scales. The view is not
// changed until ZoomBase is called.
func (z *Zoomer) SetZoomBase(r Rect) {
	z.mu.Lock()
	defer z.mu.Unlock()

	r = r.Normalize()
	z.stack = []Rect{r}
	z.index = 0
	z.baseStepX = z.plot.AxisScale(XBottom).Step
	z.baseStepY = z.plot.AxisScale(YLeft).Step
}

// Base returns the zoom base rectangle.
func (z *Zoomer) Base() Rect {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.stack[0]
}

// ZoomBase zooms out to the base rectangle. The stack is kept, so ZoomIn can
// walk back up.
func (z *Zoomer) ZoomBase() {
	z.mu.Lock()
	defer z.mu.Unlock()

	z.index = 0
	z.apply(z.stack[0])
}

// ZoomTo shows r and pushes it on the stack, dropping any rectangles above
// the current position. Degenerate rectangles are ignored.
func (z *Zoomer) ZoomTo(r Rect) bool {
	z.mu.Lock()
	defer z.mu.Unlock()

	r = r.Normalize()
	if !z.acceptable(r) {
		return false
	}

	z.stack = append(z.stack[:z.index+1], r)
	z.index++
	z.apply(r)
	return true
}

// ZoomBy scales the visible rectangle by factor around (cx, cy). Factors
// below 1 zoom in.
func (z *Zoomer) ZoomBy(factor, cx, cy float64) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	return z.ZoomTo(z.visible().Scaled(factor, cx, cy))
}

// ZoomOut steps one level down the stack.
func (z *Zoomer) ZoomOut() bool {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.index == 0 {
		return false
	}
	z.index--
	z.apply(z.stack[z.index])
	return true
}

// ZoomIn steps one level up the stack, undoing a ZoomOut.
func (z *Zoomer) ZoomIn() bool {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.index+1 >= len(z.stack) {
		return false
	}
	z.index++
	z.apply(z.stack[z.index])
	return true
}

// Depth returns the current position in the zoom stack; 0 is the base.
func (z *Zoomer) Depth() int {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.index
}

func (z *Zoomer) visible() Rect {
	x, y := z.plot.AxisScale(XBottom), z.plot.AxisScale(YLeft)
	return Rect{XMin: x.Min, XMax: x.Max, YMin: y.Min, YMax: y.Max}
}

func (z *Zoomer) acceptable(r Rect) bool {
	if !r.Valid() {
		return false
	}
	base := z.stack[0]
	return r.Width() >= base.Width()*minZoomFraction && r.Height() >= base.Height()*minZoomFraction
}

// apply sets the plot scales to r. Tick steps shrink with the rectangle so
// the number of grid lines stays the same as in the base view.
func (z *Zoomer) apply(r Rect) {
	base := z.stack[0]
	z.plot.SetAxisScale(XBottom, r.XMin, r.XMax, scaledStep(z.baseStepX, r.Width(), base.Width()))
	z.plot.SetAxisScale(YLeft, r.YMin, r.YMax, scaledStep(z.baseStepY, r.Height(), base.Height()))
	z.plot.Replot()
}

func scaledStep(step, span, baseSpan float64) float64 {
	if baseSpan <= 0 || step <= 0 {
		return step
	}
	return step * span / baseSpan
}
