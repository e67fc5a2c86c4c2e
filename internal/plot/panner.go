package plot

// Panner moves the visible rectangle without changing its size.
type Panner struct {
	plot Scaler
}

func NewPanner(p Scaler) *Panner {
	return &Panner{plot: p}
}

// PanBy shifts both axes by (dx, dy) data units and replots.
func (p *Panner) PanBy(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}

	x, y := p.plot.AxisScale(XBottom), p.plot.AxisScale(YLeft)
	p.plot.SetAxisScale(XBottom, x.Min+dx, x.Max+dx, x.Step)
	p.plot.SetAxisScale(YLeft, y.Min+dy, y.Max+dy, y.Step)
	p.plot.Replot()
}

// PanPixels pans by a pixel displacement measured on frame. Dragging the
// content right moves the view left.
func (p *Panner) PanPixels(f Frame, dx, dy float64) {
	x, y := f.PixelDelta(dx, dy)
	p.PanBy(-x, -y)
}
