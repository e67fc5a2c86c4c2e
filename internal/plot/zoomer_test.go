package plot

import (
	"math"
	"testing"
)

func newZoomPlot() *Plot {
	p := New("")
	p.SetAxisScale(XBottom, 100, 200, 20)
	p.SetAxisScale(YLeft, -135, 20, 10)
	return p
}

func TestZoomer_ZoomToAndBase(t *testing.T) {
	p := newZoomPlot()
	z := NewZoomer(p)
	z.SetZoomBase(Rect{XMin: 100, XMax: 200, YMin: 20, YMax: -135})

	if !z.ZoomTo(Rect{XMin: 125, XMax: 150, YMin: -100, YMax: -22.5}) {
		t.Fatal("ZoomTo rejected a valid rectangle")
	}
	x := p.AxisScale(XBottom)
	if x.Min != 125 || x.Max != 150 || math.Abs(x.Step-5) > 1e-9 {
		t.Errorf("x scale after zoom = %+v, want [125, 150] step 5", x)
	}
	y := p.AxisScale(YLeft)
	if math.Abs(y.Step-5) > 1e-9 {
		t.Errorf("y step after zoom = %v, want 5", y.Step)
	}
	if z.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", z.Depth())
	}

	z.ZoomBase()
	x, y = p.AxisScale(XBottom), p.AxisScale(YLeft)
	if x != (Scale{Min: 100, Max: 200, Step: 20}) || y != (Scale{Min: -135, Max: 20, Step: 10}) {
		t.Errorf("scales after ZoomBase = %+v / %+v", x, y)
	}
	if z.Depth() != 0 {
		t.Errorf("Depth() = %d after ZoomBase, want 0", z.Depth())
	}

	if !z.ZoomIn() {
		t.Error("ZoomIn should walk back to the zoomed rectangle")
	}
	if p.AxisScale(XBottom).Min != 125 {
		t.Errorf("x min after ZoomIn = %v, want 125", p.AxisScale(XBottom).Min)
	}
}

func TestZoomer_ZoomOut(t *testing.T) {
	p := newZoomPlot()
	z := NewZoomer(p)

	z.ZoomTo(Rect{XMin: 110, XMax: 190, YMin: -100, YMax: 0})
	z.ZoomTo(Rect{XMin: 120, XMax: 180, YMin: -90, YMax: -10})

	if !z.ZoomOut() {
		t.Fatal("ZoomOut() = false at depth 2")
	}
	if x := p.AxisScale(XBottom); x.Min != 110 || x.Max != 190 {
		t.Errorf("x scale = %+v, want [110, 190]", x)
	}
	z.ZoomOut()
	if z.ZoomOut() {
		t.Error("ZoomOut() = true at the base")
	}
}

func TestZoomer_RejectsDegenerate(t *testing.T) {
	p := newZoomPlot()
	z := NewZoomer(p)

	if z.ZoomTo(Rect{XMin: 150, XMax: 150, YMin: -10, YMax: 0}) {
		t.Error("zero-width rectangle accepted")
	}
	if z.ZoomBy(0, 150, -50) {
		t.Error("zero factor accepted")
	}
	if p.Revision() != 0 {
		t.Error("rejected zoom replotted the plot")
	}
}

func TestZoomer_ZoomBy(t *testing.T) {
	p := newZoomPlot()
	z := NewZoomer(p)

	if !z.ZoomBy(0.5, 150, -57.5) {
		t.Fatal("ZoomBy rejected")
	}
	x := p.AxisScale(XBottom)
	if x.Min != 125 || x.Max != 175 {
		t.Errorf("x scale = %+v, want [125, 175]", x)
	}
}

func TestPanner_PanBy(t *testing.T) {
	p := newZoomPlot()
	NewPanner(p).PanBy(10, -5)

	if x := p.AxisScale(XBottom); x != (Scale{Min: 110, Max: 210, Step: 20}) {
		t.Errorf("x scale = %+v", x)
	}
	if y := p.AxisScale(YLeft); y != (Scale{Min: -140, Max: 15, Step: 10}) {
		t.Errorf("y scale = %+v", y)
	}
	if p.Revision() != 1 {
		t.Errorf("Revision() = %d, want 1", p.Revision())
	}
}

func TestPicker_Track(t *testing.T) {
	p := newZoomPlot()
	pk := NewPicker(p)

	if _, _, ok := pk.Position(); ok {
		t.Error("picker visible before tracking")
	}
	if got := pk.Track(150, -42); got != "150, -42" {
		t.Errorf("Track() = %q, want %q", got, "150, -42")
	}

	pk.SetTextFunc(func(x, y float64) string { return "custom" })
	if got := pk.Track(1, 2); got != "custom" {
		t.Errorf("Track() = %q, want custom", got)
	}

	pk.Hide()
	if _, _, ok := pk.Position(); ok {
		t.Error("picker visible after Hide")
	}
}
