package plot

import (
	"image"
	"math"
)

// Padding is the space, in pixels, between the image border and the canvas
// where curves are drawn. Titles, tick labels and axis names live in it.
type Padding struct {
	Top, Left, Right, Bottom int
}

// DefaultPadding leaves room for the title, the y tick labels and the axis names.
var DefaultPadding = Padding{Top: 36, Left: 78, Right: 28, Bottom: 56}

const (
	minImageWidth  = 160
	minImageHeight = 120
)

// Frame maps between data coordinates and image pixels for one rendering.
type Frame struct {
	Width, Height int             // image size
	Canvas        image.Rectangle // data area in pixels
	X, Y          Scale           // visible data interval
}

func newFrame(width, height int, pad Padding, x, y Scale) Frame {
	width = max(width, minImageWidth)
	height = max(height, minImageHeight)
	return Frame{
		Width:  width,
		Height: height,
		Canvas: image.Rect(pad.Left, pad.Top, width-pad.Right, height-pad.Bottom),
		X:      x,
		Y:      y,
	}
}

// ToPixel converts data coordinates into image pixels.
func (f Frame) ToPixel(x, y float64) (px, py float64) {
	px = float64(f.Canvas.Min.X) + ratio(x, f.X)*float64(f.Canvas.Dx())
	py = float64(f.Canvas.Max.Y) - ratio(y, f.Y)*float64(f.Canvas.Dy())
	return px, py
}

// ToData converts image pixels into data coordinates.
func (f Frame) ToData(px, py float64) (x, y float64) {
	x = f.X.Min
	if w := float64(f.Canvas.Dx()); w > 0 {
		x += (px - float64(f.Canvas.Min.X)) / w * f.X.Span()
	}
	y = f.Y.Min
	if h := float64(f.Canvas.Dy()); h > 0 {
		y += (float64(f.Canvas.Max.Y) - py) / h * f.Y.Span()
	}
	return x, y
}

// Contains reports whether the pixel lies on the canvas.
func (f Frame) Contains(px, py float64) bool {
	return px >= float64(f.Canvas.Min.X) && px <= float64(f.Canvas.Max.X) &&
		py >= float64(f.Canvas.Min.Y) && py <= float64(f.Canvas.Max.Y)
}

// PixelDelta converts a pixel displacement into a data displacement.
func (f Frame) PixelDelta(dx, dy float64) (x, y float64) {
	if w := float64(f.Canvas.Dx()); w > 0 {
		x = dx / w * f.X.Span()
	}
	if h := float64(f.Canvas.Dy()); h > 0 {
		y = -dy / h * f.Y.Span()
	}
	return x, y
}

func ratio(v float64, s Scale) float64 {
	span := s.Span()
	if span == 0 || math.IsNaN(span) {
		return 0
	}
	return (v - s.Min) / span
}
