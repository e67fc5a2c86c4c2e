package plot

import (
	"sync"
)

// Picker tracks the cursor in data coordinates and produces the readout text
// shown next to it.
type Picker struct {
	mu sync.Mutex

	plot    Scaler
	text    func(x, y float64) string
	visible bool
	x, y    float64
}

func NewPicker(p Scaler) *Picker {
	return &Picker{plot: p}
}

// SetTextFunc overrides the readout format. The default joins both axis labels.
func (p *Picker) SetTextFunc(fn func(x, y float64) string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text = fn
}

// Track moves the cursor to (x, y) and returns the readout for that position.
func (p *Picker) Track(x, y float64) string {
	p.mu.Lock()
	p.x, p.y, p.visible = x, y, true
	fn := p.text
	p.mu.Unlock()

	if fn != nil {
		return fn(x, y)
	}
	return p.plot.AxisLabel(XBottom, x) + ", " + p.plot.AxisLabel(YLeft, y)
}

// TrackPixel is Track for a pixel position on frame. It hides the cursor and
// returns false when the pixel is off the canvas.
func (p *Picker) TrackPixel(f Frame, px, py float64) (string, bool) {
	if !f.Contains(px, py) {
		p.Hide()
		return "", false
	}
	return p.Track(f.ToData(px, py)), true
}

func (p *Picker) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

// Position returns the tracked position; ok is false while the cursor is hidden.
func (p *Picker) Position() (x, y float64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x, p.y, p.visible
}
