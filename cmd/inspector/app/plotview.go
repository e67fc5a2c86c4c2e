package app

import (
	"image"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/roman-kulish/sweep-inspector/internal/plot"
)

const (
	wheelZoomIn  = 0.8
	wheelZoomOut = 1.25

	// minBandSize is the smallest rubber band, in pixels, that zooms.
	minBandSize = 4
)

// plotTools are the interactive tools of the plot; *inspector.Inspector
// provides them and returns nil once closed.
type plotTools interface {
	Zoomer() *plot.Zoomer
	Panner() *plot.Panner
	Picker() *plot.Picker
}

// plotView renders a plot into a raster and maps pointer gestures onto the
// plot tools: drag pans, shift+drag zooms into a rubber band, the wheel
// zooms around the pointer, a secondary tap zooms out one level, a double
// tap returns to the zoom base and hovering shows the cursor readout.
type plotView struct {
	widget.BaseWidget

	plot    *plot.Plot
	tools   plotTools
	overlay *plot.Overlay
	raster  *canvas.Raster
	logger  *slog.Logger

	mu sync.Mutex

	// last rendering
	image    image.Image
	frame    plot.Frame
	width    int
	height   int
	revision uint64
	scale    float32 // raster pixels per widget unit

	cursor     image.Point
	showCursor bool
	readout    string

	shift     bool
	dragging  bool
	banding   bool
	dragStart image.Point
	band      *image.Rectangle
}

var (
	_ fyne.Draggable         = (*plotView)(nil)
	_ fyne.Scrollable        = (*plotView)(nil)
	_ fyne.SecondaryTappable = (*plotView)(nil)
	_ fyne.DoubleTappable    = (*plotView)(nil)
	_ desktop.Hoverable      = (*plotView)(nil)
	_ desktop.Mouseable      = (*plotView)(nil)
)

func newPlotView(p *plot.Plot, tools plotTools, logger *slog.Logger) (*plotView, error) {
	overlay, err := plot.NewOverlay()
	if err != nil {
		return nil, err
	}

	v := &plotView{
		plot:    p,
		tools:   tools,
		overlay: overlay,
		logger:  logger,
		scale:   1,
	}
	v.raster = canvas.NewRaster(v.draw)
	v.raster.SetMinSize(fyne.NewSize(320, 240))
	v.ExtendBaseWidget(v)

	p.OnReplot(v.raster.Refresh)

	return v, nil
}

func (v *plotView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// draw is the raster generator. The plot is only rendered again when it
// changed or the raster was resized; the overlay is painted every time.
func (v *plotView) draw(w, h int) image.Image {
	revision := v.plot.Revision()

	v.mu.Lock()
	defer v.mu.Unlock()

	if size := v.Size(); size.Width > 0 {
		v.scale = float32(w) / size.Width
	}

	if v.image == nil || v.revision != revision || v.width != w || v.height != h {
		img, frame, err := plot.RenderImage(v.plot, w, h)
		if err != nil {
			v.logger.Error("rendering plot", slog.String("error", err.Error()))
			return image.NewRGBA(image.Rect(0, 0, w, h))
		}
		v.image, v.frame, v.revision = img, frame, revision
		v.width, v.height = w, h
	}

	return v.overlay.Draw(v.image, v.frame, plot.OverlayState{
		Cursor:     v.cursor,
		ShowCursor: v.showCursor,
		Text:       v.readout,
		RubberBand: v.band,
	})
}

// pixel converts a widget position into raster pixels.
func (v *plotView) pixel(pos fyne.Position) image.Point {
	return image.Pt(int(pos.X*v.scale), int(pos.Y*v.scale))
}

func (v *plotView) MouseDown(ev *desktop.MouseEvent) {
	v.mu.Lock()
	v.shift = ev.Modifier&fyne.KeyModifierShift != 0
	v.mu.Unlock()
}

func (v *plotView) MouseUp(*desktop.MouseEvent) {}

func (v *plotView) Dragged(ev *fyne.DragEvent) {
	v.mu.Lock()
	at := v.pixel(ev.Position)
	if !v.dragging {
		v.dragging = true
		v.banding = v.shift
		v.dragStart = v.pixel(ev.Position.Subtract(ev.Dragged))
	}

	if v.banding {
		band := image.Rectangle{Min: v.dragStart, Max: at}.Canon()
		v.band = &band
		v.mu.Unlock()
		v.raster.Refresh()
		return
	}

	frame, scale := v.frame, v.scale
	v.mu.Unlock()

	if panner := v.tools.Panner(); panner != nil {
		panner.PanPixels(frame, float64(ev.Dragged.DX*scale), float64(ev.Dragged.DY*scale))
	}
}

func (v *plotView) DragEnd() {
	v.mu.Lock()
	band, banding, frame := v.band, v.banding, v.frame
	v.dragging, v.banding, v.band = false, false, nil
	v.mu.Unlock()

	if !banding || band == nil {
		return
	}
	if band.Dx() < minBandSize || band.Dy() < minBandSize {
		v.raster.Refresh()
		return
	}

	x0, y0 := frame.ToData(float64(band.Min.X), float64(band.Min.Y))
	x1, y1 := frame.ToData(float64(band.Max.X), float64(band.Max.Y))
	zoomer := v.tools.Zoomer()
	if zoomer == nil || !zoomer.ZoomTo(plot.Rect{XMin: x0, XMax: x1, YMin: y0, YMax: y1}) {
		v.raster.Refresh()
	}
}

func (v *plotView) Scrolled(ev *fyne.ScrollEvent) {
	zoomer := v.tools.Zoomer()
	if zoomer == nil || ev.Scrolled.DY == 0 {
		return
	}

	v.mu.Lock()
	at, frame := v.pixel(ev.Position), v.frame
	v.mu.Unlock()

	factor := wheelZoomOut
	if ev.Scrolled.DY > 0 {
		factor = wheelZoomIn
	}
	cx, cy := frame.ToData(float64(at.X), float64(at.Y))
	zoomer.ZoomBy(factor, cx, cy)
}

func (v *plotView) TappedSecondary(*fyne.PointEvent) {
	if zoomer := v.tools.Zoomer(); zoomer != nil {
		zoomer.ZoomOut()
	}
}

func (v *plotView) DoubleTapped(*fyne.PointEvent) {
	if zoomer := v.tools.Zoomer(); zoomer != nil {
		zoomer.ZoomBase()
	}
}

func (v *plotView) MouseIn(ev *desktop.MouseEvent) {
	v.MouseMoved(ev)
}

func (v *plotView) MouseMoved(ev *desktop.MouseEvent) {
	picker := v.tools.Picker()
	if picker == nil {
		return
	}

	v.mu.Lock()
	at, frame := v.pixel(ev.Position), v.frame
	v.mu.Unlock()

	text, ok := picker.TrackPixel(frame, float64(at.X), float64(at.Y))

	v.mu.Lock()
	v.cursor, v.showCursor, v.readout = at, ok, text
	v.mu.Unlock()

	v.raster.Refresh()
}

func (v *plotView) MouseOut() {
	if picker := v.tools.Picker(); picker != nil {
		picker.Hide()
	}

	v.mu.Lock()
	v.showCursor, v.readout = false, ""
	v.mu.Unlock()

	v.raster.Refresh()
}
