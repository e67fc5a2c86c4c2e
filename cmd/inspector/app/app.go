package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/sweep-inspector/internal/freqfmt"
	"github.com/roman-kulish/sweep-inspector/internal/hound"
	"github.com/roman-kulish/sweep-inspector/internal/inspector"
	"github.com/roman-kulish/sweep-inspector/internal/plot"
	"github.com/roman-kulish/sweep-inspector/internal/sdr"
	"github.com/roman-kulish/sweep-inspector/internal/sdr/hackrf"
	"github.com/roman-kulish/sweep-inspector/internal/sdr/rtl"
	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
	"github.com/roman-kulish/sweep-inspector/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	switch config.Source {
	case SourceSqlite:
		data, err := loadSqlite(ctx, config, logger)
		if err != nil {
			return err
		}
		return show(ctx, config, data, nil, logger)

	case SourceCSV:
		data, err := loadCSV(config, logger)
		if err != nil {
			return err
		}
		return show(ctx, config, data, nil, logger)

	case SourceCapture:
		return runCapture(ctx, config, logger)

	default:
		return fmt.Errorf("unknown source: %s", config.Source)
	}
}

// show exports the selected sweep when an export path is set and opens the
// window otherwise.
func show(ctx context.Context, config *Config, data *hound.Data, capture *hound.Capture, logger *slog.Logger) error {
	if config.ExportPath != "" {
		return export(config, data, logger)
	}
	return runWindow(ctx, config, data, capture, logger)
}

func dataOptions(config *Config) []func(*hound.Data) {
	opts := []func(*hound.Data){hound.WithLocation(config.Location())}
	if config.File.Timestamp.Format != "" {
		opts = append(opts, hound.WithTimeFormat(config.File.Timestamp.Format))
	}
	return opts
}

func loadSqlite(ctx context.Context, config *Config, logger *slog.Logger) (*hound.Data, error) {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return nil, fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return nil, fmt.Errorf("reading session %d: %w", config.SessionID, err)
	}
	logger.Info("session",
		slog.Int64("id", session.ID),
		slog.String("device", session.DeviceType),
		slog.String("deviceID", session.DeviceID),
		slog.String("started", humanize.Time(session.StartTime)),
	)

	opts := readerOptions(config, logger)

	logger.Info("reading sweeps, hold on tight, it may take a while")

	start := time.Now()
	data, err := hound.LoadSqlite(ctx, store, config.SessionID, opts, dataOptions(config)...)
	if err != nil {
		return nil, err
	}
	logLoaded(logger, data, start)

	return data, nil
}

func readerOptions(config *Config, logger *slog.Logger) []storage.ReaderOption {
	var opts []storage.ReaderOption
	var filters []any
	switch {
	case config.MinFrequency != nil && config.MaxFrequency != nil:
		opts = append(opts, storage.WithFreqRange(*config.MinFrequency, *config.MaxFrequency))

		filters = append(filters,
			slog.String("minFreq", freqfmt.Format(*config.MinFrequency)),
			slog.String("maxFreq", freqfmt.Format(*config.MaxFrequency)))

	case config.MinFrequency != nil:
		opts = append(opts, storage.WithMinFreq(*config.MinFrequency))
		filters = append(filters, slog.String("minFreq", freqfmt.Format(*config.MinFrequency)))

	case config.MaxFrequency != nil:
		opts = append(opts, storage.WithMaxFreq(*config.MaxFrequency))
		filters = append(filters, slog.String("maxFreq", freqfmt.Format(*config.MaxFrequency)))
	}

	switch {
	case config.MinTimestamp != nil && config.MaxTimestamp != nil:
		opts = append(opts, storage.WithTimeRange(*config.MinTimestamp, *config.MaxTimestamp))

		filters = append(filters,
			slog.String("minTimestamp", config.MinTimestamp.UTC().Format(time.DateTime)),
			slog.String("maxTimestamp", config.MaxTimestamp.UTC().Format(time.DateTime)))

	case config.MinTimestamp != nil:
		opts = append(opts, storage.WithStartTime(*config.MinTimestamp))
		filters = append(filters, slog.String("minTimestamp", config.MinTimestamp.UTC().Format(time.DateTime)))

	case config.MaxTimestamp != nil:
		opts = append(opts, storage.WithEndTime(*config.MaxTimestamp))
		filters = append(filters, slog.String("maxTimestamp", config.MaxTimestamp.UTC().Format(time.DateTime)))
	}

	if len(filters) > 0 {
		logger.Info("reader configuration", filters...)
	}
	return opts
}

func loadCSV(config *Config, logger *slog.Logger) (*hound.Data, error) {
	start := time.Now()
	data, err := hound.LoadCSV(config.CSVPath, config.CSVFormat, dataOptions(config)...)
	if err != nil {
		return nil, err
	}
	logLoaded(logger, data, start)

	return data, nil
}

func logLoaded(logger *slog.Logger, data *hound.Data, start time.Time) {
	limits := data.FrequencyLimits()
	attrs := []any{
		slog.String("sweeps", humanize.Comma(int64(data.Len()))),
		slog.String("range", freqfmt.FormatRange(limits.Min, limits.Max)),
		slog.Duration("took", time.Since(start)),
	}
	if first, last, err := data.TimeRange(); err == nil {
		attrs = append(attrs, slog.Duration("duration", last.Sub(first)))
	}
	logger.Info("sweeps loaded", attrs...)
}

// export renders sweep config.Index into config.ExportPath without a window.
func export(config *Config, data *hound.Data, logger *slog.Logger) error {
	p := plot.New(inspector.Title)

	in, err := inspector.New(p,
		inspector.WithLogger(logger),
		inspector.WithExportOptions(config.ExportOptions()),
	)
	if err != nil {
		return err
	}
	defer in.Close()

	in.Bind(data)
	if err = in.LoadSweep(config.Index); err != nil {
		return err
	}
	return in.Export(config.ExportPath)
}

// runCapture samples the configured device into a live data set, optionally
// recording every chunk into a new session.
func runCapture(ctx context.Context, config *Config, logger *slog.Logger) (err error) {
	device, span, sessionConfig, err := createDevice(config, logger)
	if err != nil {
		return err
	}

	data := hound.New(dataOptions(config)...)
	opts := []func(*hound.Capture){hound.WithCaptureLogger(logger)}

	if config.RecordPath != "" {
		store := storage.NewSqliteStore(config.RecordPath)
		defer func() {
			err = errors.Join(err, store.Close())
		}()

		var sessionID int64
		if sessionID, err = store.CreateSession(ctx, device.Type(), device.ID(), sessionConfig); err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		logger.Info("recording capture", slog.String("path", config.RecordPath), slog.Int64("session", sessionID))

		opts = append(opts, hound.WithRecorder(store, sessionID))
	}

	capture, err := hound.NewCapture(device, span, data, opts...)
	if err != nil {
		return fmt.Errorf("creating capture: %w", err)
	}

	return runWindow(ctx, config, data, capture, logger)
}

func createDevice(config *Config, logger *slog.Logger) (*sdr.Device, spectrum.Range, any, error) {
	var handler sdr.Handler
	var deviceID string
	var span spectrum.Range
	var sessionConfig any
	var err error

	switch config.CaptureDevice {
	case DeviceRTLSDR:
		c := config.File.Capture.RTL
		if handler, err = rtl.New(c); err != nil {
			return nil, span, nil, fmt.Errorf("creating RTL-SDR device: %w", err)
		}
		deviceID = c.DeviceID()
		span = c.Span()
		sessionConfig = c

	case DeviceHackRF:
		c := config.File.Capture.HackRF
		if handler, err = hackrf.New(c.SerialNumber, &c.Config); err != nil {
			return nil, span, nil, fmt.Errorf("creating HackRF device: %w", err)
		}
		deviceID = c.SerialNumber
		span = c.Span()
		sessionConfig = c

	default:
		return nil, span, nil, fmt.Errorf("creating device: unknown type '%s'", config.CaptureDevice)
	}

	logger.Info("capture device",
		slog.String("device", handler.Device()),
		slog.String("range", freqfmt.FormatRange(span.Min, span.Max)),
	)

	return sdr.NewDevice(deviceID, handler, sdr.WithLogger(logger)), span, sessionConfig, nil
}
