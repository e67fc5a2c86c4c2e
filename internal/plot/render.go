package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"slices"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an encoding the chart renderer can produce directly.
type Format int

const (
	FormatPNG Format = iota
	FormatSVG
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatSVG:
		return "svg"
	default:
		return "unknown"
	}
}

const (
	titleFontSize     = 13
	axisTitleFontSize = 10
	tickFontSize      = 9
	markerFontSize    = 10

	tickLength     = 5
	labelGap       = 4
	minorDivisions = 5
)

var (
	backgroundColor = drawing.Color{R: 0xef, G: 0xef, B: 0xef, A: 0xff}
	canvasColor     = drawing.ColorBlack
	axisColor       = drawing.Color{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

var errUnknownFormat = errors.New("unknown render format")

// Render draws the plot into w as a width x height image and returns the
// pixel frame it used.
func Render(p *Plot, w io.Writer, format Format, width, height int) (Frame, error) {
	var provider chart.RendererProvider
	switch format {
	case FormatPNG:
		provider = chart.PNG
	case FormatSVG:
		provider = chart.SVG
	default:
		return Frame{}, fmt.Errorf("rendering %s: %w", format, errUnknownFormat)
	}

	regular, bold, err := fonts()
	if err != nil {
		return Frame{}, err
	}

	snap := p.snapshot()
	frame := newFrame(width, height, DefaultPadding, visible(snap.scales[XBottom]), visible(snap.scales[YLeft]))
	d := &decorator{snap: snap, frame: &frame, regular: regular, bold: bold}

	c := chart.Chart{
		Width:  frame.Width,
		Height: frame.Height,
		Font:   regular,
		Background: chart.Style{
			FillColor: backgroundColor,
			Padding: chart.Box{
				Top:    DefaultPadding.Top,
				Left:   DefaultPadding.Left,
				Right:  DefaultPadding.Right,
				Bottom: DefaultPadding.Bottom,
			},
		},
		Canvas: chart.Style{FillColor: canvasColor},
		XAxis: chart.XAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: frame.X.Min, Max: frame.X.Max},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: frame.Y.Min, Max: frame.Y.Max},
		},
		YAxisSecondary: chart.YAxis{Style: chart.Style{Hidden: true}},
		Series:         d.series(),
		Elements:       []chart.Renderable{d.decorate},
	}

	if err := c.Render(provider, w); err != nil {
		return Frame{}, fmt.Errorf("rendering %s chart: %w", format, err)
	}
	return frame, nil
}

// RenderImage renders the plot as a PNG and decodes it.
func RenderImage(p *Plot, width, height int) (image.Image, Frame, error) {
	var buf bytes.Buffer
	frame, err := Render(p, &buf, FormatPNG, width, height)
	if err != nil {
		return nil, Frame{}, err
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, Frame{}, fmt.Errorf("decoding rendered chart: %w", err)
	}
	return img, frame, nil
}

// visible returns a drawable scale: degenerate intervals are widened so the
// chart never sees a zero range.
func visible(s Scale) Scale {
	if s.Min > s.Max {
		s.Min, s.Max = s.Max, s.Min
	}
	if s.Max-s.Min == 0 || math.IsNaN(s.Max-s.Min) {
		s.Min -= 0.5
		s.Max += 0.5
	}
	return s
}

// decorator turns the plot snapshot into chart series and draws everything
// go-chart does not know about: grid, markers, ticks and titles.
type decorator struct {
	snap    snapshot
	frame   *Frame
	regular *truetype.Font
	bold    *truetype.Font
}

func (d *decorator) series() []chart.Series {
	out := []chart.Series{&gridSeries{d: d}}

	for _, it := range d.snap.items {
		c, ok := it.(*Curve)
		if !ok {
			continue
		}
		xs, ys := clip(c.xs, c.ys, d.frame.X.Min, d.frame.X.Max)
		if len(xs) == 0 {
			continue
		}

		pen := c.Pen()
		out = append(out, chart.ContinuousSeries{
			Name: c.Title(),
			Style: chart.Style{
				StrokeColor:     toDrawing(pen.Color),
				StrokeWidth:     pen.Width,
				StrokeDashArray: pen.Dash,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	return out
}

// clip keeps the samples inside [lo, hi] plus one neighbour on each side so
// lines still reach the canvas edges. Unsorted input is returned as is.
func clip(xs, ys []float64, lo, hi float64) ([]float64, []float64) {
	if len(xs) == 0 || !slices.IsSorted(xs) {
		return xs, ys
	}

	first, _ := slices.BinarySearch(xs, lo)
	last, found := slices.BinarySearch(xs, hi)
	if found {
		last++
	}
	first = max(first-1, 0)
	last = min(last+1, len(xs))
	if first >= last {
		return nil, nil
	}
	return xs[first:last], ys[first:last]
}

func (d *decorator) decorate(r chart.Renderer, cb chart.Box, _ chart.Style) {
	d.frame.Canvas = image.Rect(cb.Left, cb.Top, cb.Right, cb.Bottom)

	d.drawMarkers(r)

	// padding bands hide whatever the series drew outside the canvas
	w, h := d.frame.Width, d.frame.Height
	fillRect(r, 0, 0, w, cb.Top, backgroundColor)
	fillRect(r, 0, cb.Bottom, w, h, backgroundColor)
	fillRect(r, 0, 0, cb.Left, h, backgroundColor)
	fillRect(r, cb.Right, 0, w, h, backgroundColor)
	strokeRect(r, cb.Left, cb.Top, cb.Right, cb.Bottom, axisColor)

	d.drawXAxis(r, cb)
	d.drawYAxis(r, cb)
	d.drawTitle(r, cb)
}

func (d *decorator) drawMarkers(r chart.Renderer) {
	for _, it := range d.snap.items {
		m, ok := it.(*Marker)
		if !ok || m.label.Text == "" {
			continue
		}

		px, py := d.frame.ToPixel(m.x, m.y)
		if !d.frame.Contains(px, py) {
			continue
		}

		t := m.label
		f := d.regular
		if t.Bold {
			f = d.bold
		}
		size := t.FontSize
		if size <= 0 {
			size = markerFontSize
		}
		setText(r, f, size, toDrawing(t.Color))
		tb := r.MeasureText(t.Text)

		x := int(math.Round(px))
		switch t.HAlign {
		case AlignHCenter:
			x -= tb.Width() / 2
		case AlignLeft:
			x -= tb.Width()
		}

		// y is the text baseline
		y := int(math.Round(py))
		switch t.VAlign {
		case AlignVCenter:
			y += tb.Height() / 2
		case AlignTop:
			y += tb.Height()
		case AlignBottom:
			y -= labelGap
		}
		r.Text(t.Text, x, y)
	}
}

func (d *decorator) drawXAxis(r chart.Renderer, cb chart.Box) {
	labelBottom := cb.Bottom
	for _, v := range d.frame.X.Ticks() {
		px, _ := d.frame.ToPixel(v, d.frame.Y.Min)
		x := int(math.Round(px))
		line(r, x, cb.Bottom, x, cb.Bottom+tickLength, axisColor, 1, nil)

		label := d.snap.label(XBottom, v)
		setText(r, d.regular, tickFontSize, axisColor)
		tb := r.MeasureText(label)
		y := cb.Bottom + tickLength + labelGap + tb.Height()
		r.Text(label, x-tb.Width()/2, y)
		labelBottom = max(labelBottom, y)
	}

	if name := d.snap.axisTitles[XBottom]; name != "" {
		setText(r, d.bold, axisTitleFontSize, axisColor)
		tb := r.MeasureText(name)
		x := cb.Left + (cb.Width()-tb.Width())/2
		r.Text(name, x, labelBottom+labelGap*2+tb.Height())
	}
}

func (d *decorator) drawYAxis(r chart.Renderer, cb chart.Box) {
	labelLeft := cb.Left
	for _, v := range d.frame.Y.Ticks() {
		_, py := d.frame.ToPixel(d.frame.X.Min, v)
		y := int(math.Round(py))
		line(r, cb.Left-tickLength, y, cb.Left, y, axisColor, 1, nil)

		label := d.snap.label(YLeft, v)
		setText(r, d.regular, tickFontSize, axisColor)
		tb := r.MeasureText(label)
		x := cb.Left - tickLength - labelGap - tb.Width()
		r.Text(label, x, y+tb.Height()/2)
		labelLeft = min(labelLeft, x)
	}

	if name := d.snap.axisTitles[YLeft]; name != "" {
		setText(r, d.bold, axisTitleFontSize, axisColor)
		tb := r.MeasureText(name)
		x := max(labelLeft-labelGap*2, tb.Height())
		y := cb.Top + (cb.Height()+tb.Width())/2

		r.SetTextRotation(3 * math.Pi / 2)
		r.Text(name, x, y)
		r.ClearTextRotation()
	}
}

func (d *decorator) drawTitle(r chart.Renderer, cb chart.Box) {
	if d.snap.title == "" {
		return
	}

	setText(r, d.bold, titleFontSize, axisColor)
	tb := r.MeasureText(d.snap.title)
	x := cb.Left + (cb.Width()-tb.Width())/2
	y := (cb.Top + tb.Height()) / 2
	r.Text(d.snap.title, max(x, 0), y)
}

// gridSeries draws the lines of every attached Grid. It goes first so the
// curves are painted on top of it.
type gridSeries struct {
	d *decorator
}

func (g *gridSeries) GetName() string { return "grid" }

func (g *gridSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (g *gridSeries) GetStyle() chart.Style { return chart.Style{} }

func (g *gridSeries) Validate() error { return nil }

func (g *gridSeries) Render(r chart.Renderer, cb chart.Box, _, _ chart.Range, _ chart.Style) {
	f := g.d.frame
	f.Canvas = image.Rect(cb.Left, cb.Top, cb.Right, cb.Bottom)

	for _, it := range g.d.snap.items {
		grid, ok := it.(*Grid)
		if !ok {
			continue
		}

		if grid.MinorEnabled(XBottom) {
			g.vertical(r, f.X.MinorTicks(minorDivisions), grid.minorPen)
		}
		if grid.MinorEnabled(YLeft) {
			g.horizontal(r, f.Y.MinorTicks(minorDivisions), grid.minorPen)
		}
		g.vertical(r, f.X.Ticks(), grid.majorPen)
		g.horizontal(r, f.Y.Ticks(), grid.majorPen)
	}
}

func (g *gridSeries) vertical(r chart.Renderer, ticks []float64, pen Pen) {
	f := g.d.frame
	for _, v := range ticks {
		px, _ := f.ToPixel(v, f.Y.Min)
		x := int(math.Round(px))
		line(r, x, f.Canvas.Min.Y, x, f.Canvas.Max.Y, toDrawing(pen.Color), pen.Width, pen.Dash)
	}
}

func (g *gridSeries) horizontal(r chart.Renderer, ticks []float64, pen Pen) {
	f := g.d.frame
	for _, v := range ticks {
		_, py := f.ToPixel(f.X.Min, v)
		y := int(math.Round(py))
		line(r, f.Canvas.Min.X, y, f.Canvas.Max.X, y, toDrawing(pen.Color), pen.Width, pen.Dash)
	}
}

func setText(r chart.Renderer, f *truetype.Font, size float64, c drawing.Color) {
	r.SetFont(f)
	r.SetFontSize(size)
	r.SetFontColor(c)
}

func line(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color, width float64, dash []float64) {
	r.ResetStyle()
	r.SetStrokeColor(c)
	r.SetStrokeWidth(width)
	r.SetStrokeDashArray(dash)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	if x1 <= x0 || y1 <= y0 {
		return
	}
	r.ResetStyle()
	r.SetFillColor(c)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}

func strokeRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.ResetStyle()
	r.SetStrokeColor(c)
	r.SetStrokeWidth(1)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Stroke()
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
