package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/roman-kulish/sweep-inspector/internal/hound"
	"github.com/roman-kulish/sweep-inspector/internal/inspector"
	"github.com/roman-kulish/sweep-inspector/internal/plot"
)

const (
	appID       = "io.github.roman-kulish.sweep-inspector"
	windowTitle = "Sweep Inspector"
)

// sliderControl adapts the time slider to inspector.IndexControl. A slider
// cannot have an empty range, so it is hidden while there is at most one sweep.
type sliderControl struct {
	slider *widget.Slider
}

func (s sliderControl) SetMax(max int) {
	if max <= 0 {
		s.slider.Max = 1
		s.slider.Hide()
		return
	}
	s.slider.Max = float64(max)
	s.slider.Show()
	s.slider.Refresh()
}

func (s sliderControl) SetValue(index int) {
	s.slider.SetValue(float64(index))
}

// viewer is the main window: plot, time slider and toolbar around one inspector.
type viewer struct {
	window    fyne.Window
	inspector *inspector.Inspector
	view      *plotView
	slider    *widget.Slider
	timestamp *widget.Label
	logger    *slog.Logger
}

func newViewer(a fyne.App, config *Config, logger *slog.Logger) (*viewer, error) {
	v := &viewer{
		window:    a.NewWindow(windowTitle),
		slider:    widget.NewSlider(0, 1),
		timestamp: widget.NewLabel(""),
		logger:    logger,
	}
	v.slider.Step = 1

	p := plot.New(inspector.Title)

	var err error
	v.inspector, err = inspector.New(p,
		inspector.WithLogger(logger),
		inspector.WithIndexControl(sliderControl{v.slider}),
		inspector.WithTimestampDisplay(v.timestamp),
		inspector.WithExportOptions(config.ExportOptions()),
	)
	if err != nil {
		return nil, err
	}

	if v.view, err = newPlotView(p, v.inspector, logger); err != nil {
		v.inspector.Close()
		return nil, err
	}

	v.slider.OnChanged = func(value float64) {
		v.inspector.SliderPreview(int(value))
	}
	v.slider.OnChangeEnded = func(value float64) {
		v.load(int(value))
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() {
			if z := v.inspector.Zoomer(); z != nil {
				z.ZoomBase()
			}
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), v.showExportDialog),
	)

	v.window.SetContent(container.NewBorder(
		toolbar,
		container.NewBorder(nil, nil, nil, v.timestamp, v.slider),
		nil, nil,
		v.view,
	))
	v.window.Resize(fyne.NewSize(config.WindowSize()))

	return v, nil
}

func (v *viewer) load(index int) {
	if err := v.inspector.LoadSweep(index); err != nil {
		v.logger.Error("loading sweep", slog.Int("index", index), slog.String("error", err.Error()))
	}
}

// bind shows data starting with the first sweep.
func (v *viewer) bind(data *hound.Data) {
	v.inspector.Bind(data)
	if data.Len() > 0 {
		v.load(0)
	}
}

// follow keeps the range of the slider in step with a growing data set. The
// newest sweep is loaded while the slider sits at the end of the range.
func (v *viewer) follow(data *hound.Data) {
	var mu sync.Mutex

	data.OnAppend(func(int) {
		mu.Lock()
		defer mu.Unlock()

		atEnd := v.inspector.Curve() == nil || v.inspector.Index() == v.inspector.MaxIndex()
		last := v.inspector.SyncRange()
		if atEnd {
			v.slider.SetValue(float64(last))
			v.load(last)
		}
	})
}

func (v *viewer) showExportDialog() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if wc == nil {
			return
		}

		path := wc.URI().Path()
		if err = wc.Close(); err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if err = v.inspector.Export(path); err != nil {
			v.logger.Error("export failed", slog.String("path", path), slog.String("error", err.Error()))
			dialog.ShowError(err, v.window)
		}
	}, v.window)
	d.SetFileName("sweep.png")
	d.SetFilter(fynestorage.NewExtensionFileFilter(plot.SupportedExtensions()))
	d.Show()
}

// runWindow shows data until the window is closed or ctx is cancelled. With a
// capture, sampling runs in the background and stops with the window.
func runWindow(ctx context.Context, config *Config, data *hound.Data, capture *hound.Capture, logger *slog.Logger) error {
	a := fyneapp.NewWithID(appID)

	v, err := newViewer(a, config, logger)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer v.inspector.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var captureErr error
	var wg sync.WaitGroup
	if capture != nil {
		v.follow(data)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if captureErr = capture.Run(ctx); captureErr != nil && ctx.Err() == nil {
				logger.Error("capture stopped", slog.String("error", captureErr.Error()))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		a.Quit()
	}()

	v.bind(data)
	v.window.ShowAndRun()

	cancel()
	wg.Wait()

	if captureErr != nil && !errors.Is(captureErr, context.Canceled) {
		return captureErr
	}
	return nil
}
