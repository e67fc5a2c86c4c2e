package app

import (
	"image"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"github.com/roman-kulish/sweep-inspector/internal/hound"
	"github.com/roman-kulish/sweep-inspector/internal/inspector"
	"github.com/roman-kulish/sweep-inspector/internal/plot"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testSweep() *spectrum.Sweep {
	s := &spectrum.Sweep{
		Timestamp:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FrequencyStart: 100e6,
		FrequencyEnd:   500e6,
	}
	for f := 100e6; f <= 500e6; f += 10e6 {
		s.Points = append(s.Points, spectrum.Point{Frequency: f, Power: spectrum.Dbm(-80 + 40*math.Sin(f/50e6))})
	}
	return s
}

// newTestView returns a 600x400 view of one loaded sweep, rendered once.
func newTestView(t *testing.T) (*plotView, *plot.Plot, *inspector.Inspector) {
	t.Helper()
	test.NewApp()

	p := plot.New(inspector.Title)
	in, err := inspector.New(p)
	if err != nil {
		t.Fatalf("inspector.New() error = %v", err)
	}
	t.Cleanup(in.Close)

	data := hound.New(hound.WithLocation(time.UTC))
	data.Append(testSweep())
	in.Bind(data)
	if err = in.LoadSweep(0); err != nil {
		t.Fatalf("LoadSweep() error = %v", err)
	}

	v, err := newPlotView(p, in, discard)
	if err != nil {
		t.Fatalf("newPlotView() error = %v", err)
	}
	v.Resize(fyne.NewSize(600, 400))
	if img := v.draw(600, 400); img.Bounds().Dx() != 600 {
		t.Fatalf("draw() bounds = %v", img.Bounds())
	}
	return v, p, in
}

func pointAt(x, y float32) fyne.PointEvent {
	return fyne.PointEvent{Position: fyne.NewPos(x, y)}
}

func TestPlotView_WheelZoom(t *testing.T) {
	v, p, in := newTestView(t)

	v.Scrolled(&fyne.ScrollEvent{PointEvent: pointAt(325, 190), Scrolled: fyne.NewDelta(0, 10)})
	if in.Zoomer().Depth() != 1 {
		t.Fatalf("Depth() = %d after zooming in", in.Zoomer().Depth())
	}
	if span := p.AxisScale(plot.XBottom).Span(); math.Abs(span-0.8*400e6) > 1 {
		t.Errorf("x span = %v, want %v", span, 0.8*400e6)
	}

	v.TappedSecondary(&fyne.PointEvent{})
	if in.Zoomer().Depth() != 0 {
		t.Errorf("Depth() = %d after zooming out", in.Zoomer().Depth())
	}
	if x := p.AxisScale(plot.XBottom); x.Min != 100e6 || x.Max != 500e6 {
		t.Errorf("x scale = %+v, want the zoom base", x)
	}
}

func TestPlotView_DragPans(t *testing.T) {
	v, p, in := newTestView(t)

	v.MouseDown(&desktop.MouseEvent{PointEvent: pointAt(300, 200)})
	v.Dragged(&fyne.DragEvent{PointEvent: pointAt(350, 200), Dragged: fyne.NewDelta(50, 0)})
	v.DragEnd()

	x := p.AxisScale(plot.XBottom)
	if x.Min >= 100e6 || math.Abs(x.Span()-400e6) > 1 {
		t.Errorf("x scale after pan = %+v", x)
	}
	if in.Zoomer().Depth() != 0 {
		t.Errorf("panning changed the zoom depth to %d", in.Zoomer().Depth())
	}
}

func TestPlotView_RubberBand(t *testing.T) {
	v, p, in := newTestView(t)

	v.MouseDown(&desktop.MouseEvent{PointEvent: pointAt(140, 90), Modifier: fyne.KeyModifierShift})
	v.Dragged(&fyne.DragEvent{PointEvent: pointAt(150, 100), Dragged: fyne.NewDelta(10, 10)})
	v.Dragged(&fyne.DragEvent{PointEvent: pointAt(400, 300), Dragged: fyne.NewDelta(250, 200)})
	if v.band == nil || v.band.Min != image.Pt(140, 90) {
		t.Fatalf("rubber band = %v", v.band)
	}
	v.DragEnd()

	if in.Zoomer().Depth() != 1 {
		t.Fatalf("Depth() = %d after rubber band zoom", in.Zoomer().Depth())
	}
	x, y := p.AxisScale(plot.XBottom), p.AxisScale(plot.YLeft)
	if x.Min <= 100e6 || x.Max >= 500e6 || y.Min <= inspector.PowerMin || y.Max >= inspector.PowerMax {
		t.Errorf("zoomed scales = %+v, %+v", x, y)
	}
	if v.band != nil {
		t.Error("rubber band still shown after the drag ended")
	}

	v.DoubleTapped(&fyne.PointEvent{})
	if x := p.AxisScale(plot.XBottom); x.Min != 100e6 || x.Max != 500e6 {
		t.Errorf("x scale after double tap = %+v, want the zoom base", x)
	}
}

func TestPlotView_TinyRubberBandIgnored(t *testing.T) {
	v, _, in := newTestView(t)

	v.MouseDown(&desktop.MouseEvent{PointEvent: pointAt(200, 200), Modifier: fyne.KeyModifierShift})
	v.Dragged(&fyne.DragEvent{PointEvent: pointAt(202, 201), Dragged: fyne.NewDelta(2, 1)})
	v.DragEnd()

	if in.Zoomer().Depth() != 0 {
		t.Errorf("Depth() = %d, a tiny band must not zoom", in.Zoomer().Depth())
	}
}

func TestPlotView_Hover(t *testing.T) {
	v, _, in := newTestView(t)

	v.MouseMoved(&desktop.MouseEvent{PointEvent: pointAt(325, 190)})
	if _, _, ok := in.Picker().Position(); !ok || !v.showCursor || v.readout == "" {
		t.Fatalf("cursor not tracked, readout %q", v.readout)
	}
	v.draw(600, 400)

	v.MouseMoved(&desktop.MouseEvent{PointEvent: pointAt(5, 5)})
	if v.showCursor {
		t.Error("cursor shown outside the canvas")
	}

	v.MouseIn(&desktop.MouseEvent{PointEvent: pointAt(325, 190)})
	v.MouseOut()
	if _, _, ok := in.Picker().Position(); ok || v.showCursor {
		t.Error("cursor still shown after the mouse left")
	}
}

func TestPlotView_ClosedInspector(t *testing.T) {
	v, p, in := newTestView(t)
	in.Close()

	before := p.AxisScale(plot.XBottom)
	v.Scrolled(&fyne.ScrollEvent{PointEvent: pointAt(325, 190), Scrolled: fyne.NewDelta(0, 10)})
	v.Dragged(&fyne.DragEvent{PointEvent: pointAt(350, 200), Dragged: fyne.NewDelta(50, 0)})
	v.DragEnd()
	v.TappedSecondary(&fyne.PointEvent{})
	v.DoubleTapped(&fyne.PointEvent{})
	v.MouseMoved(&desktop.MouseEvent{PointEvent: pointAt(325, 190)})
	v.MouseOut()

	if after := p.AxisScale(plot.XBottom); after != before {
		t.Errorf("x scale changed after Close: %+v -> %+v", before, after)
	}
}
