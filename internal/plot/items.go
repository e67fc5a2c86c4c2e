package plot

import (
	"image/color"
)

// Item is something that can be attached to a Plot and rendered on its
// canvas: a *Curve, a *Marker or a *Grid.
type Item interface {
	Title() string
	attached() *attachment
}

// attachment records which plot an item is registered with.
type attachment struct {
	plot *Plot
}

func (a *attachment) attached() *attachment {
	return a
}

// IsAttached reports whether the item is currently registered with a plot.
func (a *attachment) IsAttached() bool {
	return a.plot != nil
}

// Pen describes how lines are stroked.
type Pen struct {
	Color color.RGBA
	Width float64
	Dash  []float64 // nil for a solid line
}

// HAlign is the horizontal alignment of marker text relative to its position.
type HAlign int

const (
	AlignHCenter HAlign = iota
	AlignLeft           // text ends at the anchor
	AlignRight          // text starts at the anchor
)

// VAlign is the vertical alignment of marker text relative to its position.
type VAlign int

const (
	AlignVCenter VAlign = iota
	AlignTop            // text hangs below the anchor
	AlignBottom         // text rests on the anchor
)

// Text is a styled label.
type Text struct {
	Text     string
	Color    color.RGBA
	FontSize float64 // points; 0 uses the renderer default
	Bold     bool
	HAlign   HAlign
	VAlign   VAlign
}

// Curve is a polyline through (x, y) samples.
type Curve struct {
	attachment

	title  string
	pen    Pen
	xs, ys []float64
}

// NewCurve creates an empty curve.
func NewCurve(title string) *Curve {
	return &Curve{title: title, pen: Pen{Color: color.RGBA{A: 0xff}, Width: 1}}
}

func (c *Curve) Title() string { return c.title }

func (c *Curve) SetPen(p Pen) { c.pen = p }

func (c *Curve) Pen() Pen { return c.pen }

// SetSamples copies the sample coordinates into the curve. Extra values of
// the longer slice are ignored.
func (c *Curve) SetSamples(xs, ys []float64) {
	n := min(len(xs), len(ys))
	c.xs = append(make([]float64, 0, n), xs[:n]...)
	c.ys = append(make([]float64, 0, n), ys[:n]...)
}

// Samples returns copies of the sample coordinates.
func (c *Curve) Samples() (xs, ys []float64) {
	return append([]float64(nil), c.xs...), append([]float64(nil), c.ys...)
}

// Len returns the number of samples.
func (c *Curve) Len() int {
	return len(c.xs)
}

// Marker is a text label anchored at a fixed plot coordinate.
type Marker struct {
	attachment

	label Text
	x, y  float64
}

// NewMarker creates a marker showing label.
func NewMarker(label Text) *Marker {
	return &Marker{label: label}
}

func (m *Marker) Title() string { return m.label.Text }

func (m *Marker) SetLabel(t Text) { m.label = t }

func (m *Marker) Label() Text { return m.label }

// SetValue moves the marker anchor to (x, y) in data coordinates.
func (m *Marker) SetValue(x, y float64) {
	m.x, m.y = x, y
}

// Value returns the marker anchor.
func (m *Marker) Value() (x, y float64) {
	return m.x, m.y
}

// Grid draws lines at the major (and optionally minor) ticks of both axes.
type Grid struct {
	attachment

	majorPen Pen
	minorPen Pen
	xMinor   bool
	yMinor   bool
}

// NewGrid creates a grid with major lines only.
func NewGrid() *Grid {
	gray := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	return &Grid{
		majorPen: Pen{Color: gray, Width: 1},
		minorPen: Pen{Color: gray, Width: 1},
	}
}

func (g *Grid) Title() string { return "Grid" }

func (g *Grid) EnableXMin(on bool) { g.xMinor = on }

func (g *Grid) EnableYMin(on bool) { g.yMinor = on }

func (g *Grid) SetMajorPen(p Pen) { g.majorPen = p }

func (g *Grid) SetMinorPen(p Pen) { g.minorPen = p }

func (g *Grid) MajorPen() Pen { return g.majorPen }

func (g *Grid) MinorPen() Pen { return g.minorPen }

// MinorEnabled reports whether minor lines are drawn for the given axis.
func (g *Grid) MinorEnabled(a Axis) bool {
	if a == XBottom {
		return g.xMinor
	}
	return g.yMinor
}
