// Package inspector drives a plot surface from a sequence of spectrum
// sweeps: one curve and one power summary at a time, selected by index.
package inspector

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/sweep-inspector/internal/freqfmt"
	"github.com/roman-kulish/sweep-inspector/internal/plot"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

const (
	// PowerMin and PowerMax bound the power axis, in dBm.
	PowerMin  = -135.0
	PowerMax  = 20.0
	PowerStep = 10.0

	// FrequencyDivisions is the number of major steps across the frequency axis.
	FrequencyDivisions = 5

	Title          = "RF Sweep"
	FrequencyTitle = "Frequency"
	PowerTitle     = "Power Level (dBm)"
)

// ErrIndexOutOfRange is returned by LoadSweep for an index outside [0, MaxIndex].
var ErrIndexOutOfRange = errors.New("sweep index out of range")

var (
	CurvePen = plot.Pen{Color: color.RGBA{R: 0xff, G: 0xff, A: 0xff}, Width: 2}
	GridPen  = plot.Pen{Color: color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}, Width: 1, Dash: []float64{1, 3}}

	annotationColor = color.RGBA{G: 0xff, A: 0xff}
)

// DataSource supplies the sweeps the inspector shows.
type DataSource interface {
	NumSweeps() int
	Sweep(index int) (*spectrum.Sweep, error)
	TimestampLabel(index int) string
	FrequencyLimits() spectrum.Range
}

// Surface is the drawable the inspector renders onto. *plot.Plot implements it.
type Surface interface {
	plot.Scaler
	Attach(plot.Item) error
	Detach(plot.Item) bool
	SetTitle(string)
	SetAxisTitle(plot.Axis, string)
	SetAxisLabeler(plot.Axis, plot.Labeler)
	Export(path string, opts plot.ExportOptions) error
}

// IndexControl is the slider selecting the sweep index.
type IndexControl interface {
	SetMax(max int)
	SetValue(index int)
}

// TextDisplay shows the timestamp of the selected sweep.
type TextDisplay interface {
	SetText(string)
}

// WithLogger sets the logger for the inspector
func WithLogger(logger *slog.Logger) func(in *Inspector) {
	return func(in *Inspector) {
		in.logger = logger.With(slog.String("component", "inspector"))
	}
}

// WithIndexControl connects the slider updated by Bind and SyncRange.
func WithIndexControl(c IndexControl) func(in *Inspector) {
	return func(in *Inspector) {
		in.indexControl = c
	}
}

// WithTimestampDisplay connects the label showing the selected timestamp.
func WithTimestampDisplay(d TextDisplay) func(in *Inspector) {
	return func(in *Inspector) {
		in.timestampDisplay = d
	}
}

// WithExportOptions sets the image size and quality used by Export.
func WithExportOptions(opts plot.ExportOptions) func(in *Inspector) {
	return func(in *Inspector) {
		in.exportOptions = opts
	}
}

// Inspector is the sweep view controller. It is Empty until a DataSource is
// bound, and every update request in that state is a no-op.
//
// The inspector owns the grid, the interactive tools, the current curve and
// the current marker. Methods are safe for concurrent use; the view hooks are
// called without holding the inspector lock.
type Inspector struct {
	mu sync.Mutex

	surface          Surface
	indexControl     IndexControl
	timestampDisplay TextDisplay
	exportOptions    plot.ExportOptions
	logger           *slog.Logger

	grid   *plot.Grid
	zoomer *plot.Zoomer
	panner *plot.Panner
	picker *plot.Picker

	data      DataSource
	maxIndex  int
	index     int
	timestamp string
	curve     *plot.Curve
	marker    *plot.Marker
	stats     spectrum.PowerStats
	hasStats  bool
	closed    bool
}

// New sets up the surface titles, the frequency labeler, the grid and the
// zoom, pan and cursor tools.
func New(surface Surface, options ...func(in *Inspector)) (*Inspector, error) {
	in := &Inspector{
		surface:  surface,
		maxIndex: -1,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(in)
	}

	surface.SetTitle(Title)
	surface.SetAxisTitle(plot.XBottom, FrequencyTitle)
	surface.SetAxisTitle(plot.YLeft, PowerTitle)
	surface.SetAxisLabeler(plot.XBottom, freqfmt.Format)

	in.zoomer = plot.NewZoomer(surface)
	in.panner = plot.NewPanner(surface)
	in.picker = plot.NewPicker(surface)
	in.picker.SetTextFunc(readout)

	in.grid = plot.NewGrid()
	in.grid.EnableXMin(true)
	in.grid.EnableYMin(true)
	in.grid.SetMajorPen(GridPen)
	in.grid.SetMinorPen(GridPen)
	if err := surface.Attach(in.grid); err != nil {
		return nil, fmt.Errorf("attaching grid: %w", err)
	}

	return in, nil
}

func readout(x, y float64) string {
	return freqfmt.Format(x) + ", " + strconv.FormatFloat(y, 'f', 1, 64) + " dBm"
}

// Bind attaches a data source, or detaches it when ds is nil. The index
// control is reset to 0 and its maximum set to the last sweep index, which is
// -1 for a source without sweeps. Binding does not redraw the plot; call
// LoadSweep for that.
func (in *Inspector) Bind(ds DataSource) {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}

	in.data = ds
	in.index = 0
	in.maxIndex = -1
	if ds != nil {
		in.maxIndex = ds.NumSweeps() - 1
	} else {
		in.release()
		in.timestamp = ""
	}
	maxIndex := in.maxIndex
	in.mu.Unlock()

	in.logger.Debug("data source bound", slog.Bool("empty", ds == nil), slog.Int("maxIndex", maxIndex))

	if in.indexControl != nil {
		in.indexControl.SetMax(maxIndex)
		in.indexControl.SetValue(0)
	}
	if ds == nil {
		in.showTimestamp("")
		in.surface.Replot()
	}
}

// SyncRange re-reads the number of sweeps after the data source has grown
// and updates the index control maximum. The shown sweep is not changed. It
// returns the new maximum index, or -1 while unbound.
func (in *Inspector) SyncRange() int {
	in.mu.Lock()
	if in.data == nil || in.closed {
		in.mu.Unlock()
		return -1
	}
	in.maxIndex = in.data.NumSweeps() - 1
	maxIndex := in.maxIndex
	in.mu.Unlock()

	if in.indexControl != nil {
		in.indexControl.SetMax(maxIndex)
	}
	return maxIndex
}

// SliderPreview shows the timestamp of index without redrawing the plot. The
// text is empty while no data source is bound.
func (in *Inspector) SliderPreview(index int) {
	var text string

	in.mu.Lock()
	if in.data != nil && !in.closed && index >= 0 && index <= in.maxIndex {
		text = in.data.TimestampLabel(index)
	}
	in.mu.Unlock()

	in.showTimestamp(text)
}

// LoadSweep replaces the shown sweep with sweep index: the previous curve and
// marker are detached, the new curve is attached, the axes are rescaled to
// the data source frequency limits and the fixed power range, the zoom base
// is reset and the power summary is attached as a marker.
//
// If the sweep cannot be fetched the previous rendering stays in place.
func (in *Inspector) LoadSweep(index int) error {
	in.mu.Lock()
	if in.data == nil || in.closed {
		in.mu.Unlock()
		return nil
	}
	if index < 0 || index > in.maxIndex {
		count := in.maxIndex + 1
		in.mu.Unlock()
		return fmt.Errorf("loading sweep %d of %d: %w", index, count, ErrIndexOutOfRange)
	}

	timestamp := in.data.TimestampLabel(index)
	sweep, err := in.data.Sweep(index)
	if err != nil {
		in.mu.Unlock()
		return fmt.Errorf("loading sweep %d: %w", index, err)
	}

	err = in.render(index, timestamp, sweep)
	in.mu.Unlock()

	in.showTimestamp(timestamp)
	in.surface.Replot()

	return err
}

// render must be called with the lock held.
func (in *Inspector) render(index int, timestamp string, sweep *spectrum.Sweep) error {
	in.index = index
	in.timestamp = timestamp

	in.release()

	xs, ys := sweep.XY()
	curve := plot.NewCurve(timestamp)
	curve.SetPen(CurvePen)
	curve.SetSamples(xs, ys)
	if err := in.surface.Attach(curve); err != nil {
		return fmt.Errorf("attaching curve: %w", err)
	}
	in.curve = curve

	bounds := in.data.FrequencyLimits()
	in.surface.SetAxisScale(plot.XBottom, bounds.Min, bounds.Max, bounds.Span()/FrequencyDivisions)
	in.surface.SetAxisScale(plot.YLeft, PowerMin, PowerMax, PowerStep)
	in.surface.SetTitle(fmt.Sprintf("%s @ %s", Title, timestamp))

	in.zoomer.SetZoomBase(plot.Rect{XMin: bounds.Min, XMax: bounds.Max, YMin: PowerMax, YMax: PowerMin})
	in.zoomer.ZoomBase()

	stats, ok := sweep.Stats()
	if !ok {
		in.logger.Warn("sweep has no valid readings, skipping power summary",
			slog.Int("index", index),
			slog.String("timestamp", timestamp),
		)
		return nil
	}
	in.stats, in.hasStats = stats, true

	marker := plot.NewMarker(plot.Text{
		Text:   Summary(stats),
		Color:  annotationColor,
		Bold:   true,
		HAlign: plot.AlignHCenter,
		VAlign: plot.AlignBottom,
	})
	marker.SetValue(bounds.Center(), PowerMin)
	if err := in.surface.Attach(marker); err != nil {
		return fmt.Errorf("attaching power summary: %w", err)
	}
	in.marker = marker

	in.logger.Debug("sweep loaded",
		slog.Int("index", index),
		slog.String("points", humanize.Comma(int64(len(xs)))),
		slog.Group("power", slog.Float64("max", stats.Max), slog.Float64("min", stats.Min), slog.Float64("avg", stats.Avg)),
	)
	return nil
}

// Summary formats the power statistics shown on the plot.
func Summary(s spectrum.PowerStats) string {
	return "Max: " + formatPower(s.Max) + " dBm   Min: " + formatPower(s.Min) + " dBm   Avg: " + formatPower(s.Avg) + " dBm"
}

func formatPower(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// release detaches the current curve and marker. Must be called with the lock held.
func (in *Inspector) release() {
	if in.marker != nil {
		in.surface.Detach(in.marker)
		in.marker = nil
	}
	if in.curve != nil {
		in.surface.Detach(in.curve)
		in.curve = nil
	}
	in.stats, in.hasStats = spectrum.PowerStats{}, false
}

func (in *Inspector) showTimestamp(text string) {
	if in.timestampDisplay != nil {
		in.timestampDisplay.SetText(text)
	}
}

// Export renders the surface into path; the format follows the extension.
func (in *Inspector) Export(path string) error {
	in.mu.Lock()
	opts := in.exportOptions
	in.mu.Unlock()

	if err := in.surface.Export(path, opts); err != nil {
		return fmt.Errorf("exporting plot: %w", err)
	}

	attrs := []any{slog.String("path", path)}
	if fi, err := os.Stat(path); err == nil {
		attrs = append(attrs, slog.String("size", humanize.Bytes(uint64(fi.Size()))))
	}
	in.logger.Info("plot exported", attrs...)

	return nil
}

// Close detaches everything the inspector attached, in reverse order of
// creation. The inspector ignores all requests afterwards.
func (in *Inspector) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return
	}
	in.closed = true

	in.release()
	in.picker.Hide()
	in.picker, in.panner, in.zoomer = nil, nil, nil
	in.surface.Detach(in.grid)
	in.grid = nil
	in.data = nil
}

// MaxIndex returns the largest valid sweep index, -1 while there is none.
func (in *Inspector) MaxIndex() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.maxIndex
}

// Index returns the index of the shown sweep.
func (in *Inspector) Index() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.index
}

// Timestamp returns the timestamp label of the shown sweep.
func (in *Inspector) Timestamp() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.timestamp
}

// Bound reports whether a data source is bound.
func (in *Inspector) Bound() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.data != nil
}

func (in *Inspector) Curve() *plot.Curve {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.curve
}

func (in *Inspector) Marker() *plot.Marker {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.marker
}

// Stats returns the power summary of the shown sweep; false when no summary is shown.
func (in *Inspector) Stats() (spectrum.PowerStats, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stats, in.hasStats
}

// Zoomer, Panner and Picker return the interactive tools; nil after Close.
func (in *Inspector) Zoomer() *plot.Zoomer {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.zoomer
}

func (in *Inspector) Panner() *plot.Panner {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.panner
}

func (in *Inspector) Picker() *plot.Picker {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.picker
}
