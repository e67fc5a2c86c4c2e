package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	overlayDPI      float64 = 72
	overlayFontSize float64 = 12
	overlayMargin           = 6
)

var (
	TrackerColor    = color.RGBA{G: 0xff, B: 0xff, A: 0xff} // cyan
	RubberBandColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// OverlayState is what the interactive widget draws on top of a rendered plot.
type OverlayState struct {
	Cursor     image.Point // crosshair position in pixels
	ShowCursor bool
	Text       string           // readout next to the crosshair
	RubberBand *image.Rectangle // zoom selection in pixels
}

// Overlay draws the cursor crosshair, its readout and the zoom rubber band.
type Overlay struct {
	context *freetype.Context
	face    font.Face
}

func NewOverlay() (*Overlay, error) {
	regular, _, err := fonts()
	if err != nil {
		return nil, fmt.Errorf("loading overlay font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(overlayDPI)
	context.SetFont(regular)
	context.SetFontSize(overlayFontSize)
	context.SetHinting(font.HintingFull)

	face := truetype.NewFace(regular, &truetype.Options{
		Size:    overlayFontSize,
		DPI:     overlayDPI,
		Hinting: font.HintingFull,
	})

	return &Overlay{context: context, face: face}, nil
}

// Draw copies src into a new image and paints the overlay on it, clipped to
// the canvas of frame.
func (o *Overlay) Draw(src image.Image, frame Frame, st OverlayState) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)

	canvas := frame.Canvas.Intersect(dst.Bounds())

	if st.RubberBand != nil {
		outline(dst, st.RubberBand.Canon().Intersect(canvas), RubberBandColor)
	}

	if !st.ShowCursor || !st.Cursor.In(canvas) {
		return dst
	}

	for x := canvas.Min.X; x < canvas.Max.X; x++ {
		dst.SetRGBA(x, st.Cursor.Y, TrackerColor)
	}
	for y := canvas.Min.Y; y < canvas.Max.Y; y++ {
		dst.SetRGBA(st.Cursor.X, y, TrackerColor)
	}

	if st.Text != "" {
		o.drawText(dst, canvas, st.Cursor, st.Text)
	}
	return dst
}

func (o *Overlay) drawText(dst *image.RGBA, canvas image.Rectangle, at image.Point, text string) {
	o.context.SetDst(dst)
	o.context.SetClip(canvas)
	o.context.SetSrc(image.NewUniform(TrackerColor))

	height := o.context.PointToFixed(overlayFontSize).Ceil()
	width := font.MeasureString(o.face, text).Ceil()

	// flip to the other side of the crosshair near the canvas edges
	x := at.X + overlayMargin
	if x+width > canvas.Max.X {
		x = at.X - overlayMargin - width
	}
	y := at.Y - overlayMargin
	if y-height < canvas.Min.Y {
		y = at.Y + overlayMargin + height
	}

	_, _ = o.context.DrawString(text, freetype.Pt(x, y))
}

func outline(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}
