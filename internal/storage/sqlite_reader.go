package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
)

var (
	// ErrNoData indicates that no spectrum data exists for the given session.
	ErrNoData = errors.New("no data available")

	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
)

// maxGapPoints bounds the number of synthetic points inserted into one gap.
const maxGapPoints = 1 << 20

// ReaderOption configures a SqliteSpectrumReader with specific filtering criteria.
type ReaderOption func(*SqliteSpectrumReader)

// WithMinFreq sets the minimum frequency filter for the spectrum reader.
// Spectrum points with frequencies below this value will be excluded.
func WithMinFreq(f float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.minFreq = &f
	}
}

// WithMaxFreq sets the maximum frequency filter for the spectrum reader.
// Spectrum points with frequencies above this value will be excluded.
func WithMaxFreq(f float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.maxFreq = &f
	}
}

// WithFreqRange sets both minimum and maximum frequency filters.
func WithFreqRange(minFreq, maxFreq float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.minFreq = &minFreq
		r.maxFreq = &maxFreq
	}
}

// WithStartTime sets the start time filter for the spectrum reader.
// Spectrum points with timestamps before this time will be excluded.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.startTime = &t
	}
}

// WithEndTime sets the end time filter for the spectrum reader.
// Spectrum points with timestamps after this time will be excluded.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

// SqliteSpectrumReader implements SpectrumReader for SQLite database backend.
//
// Samples are stored row by row; the reader groups them back into sweeps by
// watching for the frequency to stop increasing. Frequency gaps inside the
// filtered range are filled with points that carry no power reading.
type SqliteSpectrumReader struct {
	db *sql.DB

	sessionID int64
	session   *spectrum.ScanSession
	numChunks int

	startTime *time.Time // Optional start of time range filter
	endTime   *time.Time // Optional end of time range filter
	minFreq   *float64   // Optional minimum frequency filter
	maxFreq   *float64   // Optional maximum frequency filter

	current   *spectrum.Sweep
	pending   spectrum.Point // First point of the next sweep
	pendingTS time.Time
	hasNext   bool
	rows      *sql.Rows
	err       error
}

var _ SpectrumReader = (*SqliteSpectrumReader)(nil)

func newSqliteSpectrumReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteSpectrumReader, error) {
	sr := &SqliteSpectrumReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(sr)
	}
	if err := sr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return sr, nil
}

func (sr *SqliteSpectrumReader) init(ctx context.Context) error {
	if sr.db == nil {
		return errors.New("database connection required")
	}
	if sr.sessionID <= 0 {
		return errors.New("session ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading session", fn: sr.loadSession},
		{msg: "initializing filters", fn: sr.initFilters},
		{msg: "initializing query", fn: sr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (sr *SqliteSpectrumReader) loadSession(ctx context.Context) (err error) {
	sr.session, err = querySession(ctx, sr.db, sr.sessionID)
	return err
}

func (sr *SqliteSpectrumReader) initFilters(ctx context.Context) (err error) {
	if sr.startTime != nil && sr.endTime != nil && sr.startTime.After(*sr.endTime) {
		return fmt.Errorf("start time %s is after end time %s", sr.startTime, sr.endTime)
	}
	if sr.minFreq != nil && sr.maxFreq != nil && *sr.minFreq > *sr.maxFreq {
		return fmt.Errorf("min frequency %f is greater than max frequency %f", *sr.minFreq, *sr.maxFreq)
	}

	stmt, err := sr.db.PrepareContext(ctx, selectFilterValuesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var minFreq, maxFreq sql.NullFloat64
	var startTime, endTime sqliteDatetime
	if err = stmt.QueryRowContext(ctx, sr.sessionID).Scan(&minFreq, &maxFreq, &startTime, &endTime); err != nil {
		return fmt.Errorf("scanning filters data: %w", err)
	}
	if !minFreq.Valid || !maxFreq.Valid || !startTime.Valid || !endTime.Valid {
		return ErrNoData
	}

	if sr.minFreq == nil {
		sr.minFreq = &minFreq.Float64
	}
	if sr.maxFreq == nil {
		sr.maxFreq = &maxFreq.Float64
	}
	if sr.startTime == nil {
		sr.startTime = &startTime.Datetime
	}
	if sr.endTime == nil {
		sr.endTime = &endTime.Datetime
	}

	// timestamps are stored in UTC text form and compared as text
	start, end := sr.startTime.UTC(), sr.endTime.UTC()
	sr.startTime, sr.endTime = &start, &end

	return nil
}

func (sr *SqliteSpectrumReader) initQuery(ctx context.Context) (err error) {
	stmt, err := sr.db.PrepareContext(ctx, selectSamplesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if sr.rows, err = stmt.QueryContext(ctx, sr.sessionID, *sr.startTime, *sr.endTime, *sr.minFreq, *sr.maxFreq); err != nil {
		return err
	}
	return nil
}

func (sr *SqliteSpectrumReader) scanSample() (time.Time, spectrum.Point, error) {
	var sample sampleData
	var timestamp sqliteDatetime

	if err := sr.rows.Scan(&timestamp, &sample.Frequency, &sample.Power, &sample.BinWidth, &sample.NumSamples); err != nil {
		return time.Time{}, spectrum.Point{}, fmt.Errorf("scanning sample: %w", err)
	}
	return timestamp.Datetime, toPoint(&sample), nil
}

// fillFrequencyRange returns points without a power reading, one bin width
// apart, starting at start and running up to end. The end frequency itself is
// only included when inclusive is set.
func fillFrequencyRange(start, end float64, template spectrum.Point, inclusive bool) []spectrum.Point {
	binWidth := template.BinWidth
	if binWidth <= 0 {
		return nil
	}

	var points []spectrum.Point
	for i := 0; i < maxGapPoints; i++ {
		freq := start + float64(i)*binWidth
		if inclusive && freqGreater(freq, end, binWidth) {
			break
		}
		if !inclusive && !freqLess(freq, end, binWidth) {
			break
		}
		points = append(points, spectrum.Point{
			Frequency:  freq,
			BinWidth:   binWidth,
			NumSamples: template.NumSamples,
		})
	}
	return points
}

func (sr *SqliteSpectrumReader) beginSweep(timestamp time.Time, first spectrum.Point) *spectrum.Sweep {
	if sr.numChunks == 0 && first.BinWidth > 0 {
		n := (*sr.maxFreq - *sr.minFreq) / first.BinWidth
		sr.numChunks = int(n*1.1) + 1 // bin widths vary slightly between sweeps
	}

	sweep := &spectrum.Sweep{
		Timestamp:      timestamp,
		FrequencyStart: first.Frequency,
		Points:         make([]spectrum.Point, 0, sr.numChunks),
	}

	if freqGreater(first.Frequency, *sr.minFreq, first.BinWidth) {
		sweep.Points = append(sweep.Points, fillFrequencyRange(*sr.minFreq, first.Frequency, first, false)...)
		sweep.FrequencyStart = *sr.minFreq
	}
	sweep.Points = append(sweep.Points, first)
	return sweep
}

func (sr *SqliteSpectrumReader) finishSweep(sweep *spectrum.Sweep) {
	last := sweep.Points[len(sweep.Points)-1]
	sweep.FrequencyEnd = last.Frequency

	if freqLess(last.Frequency, *sr.maxFreq, last.BinWidth) {
		sweep.Points = append(sweep.Points, fillFrequencyRange(last.Frequency+last.BinWidth, *sr.maxFreq, last, true)...)
		sweep.FrequencyEnd = *sr.maxFreq
	}
}

func (sr *SqliteSpectrumReader) Session() *spectrum.ScanSession {
	return sr.session
}

// FrequencyRange returns the frequency filter in effect.
func (sr *SqliteSpectrumReader) FrequencyRange() spectrum.Range {
	return spectrum.Range{Min: *sr.minFreq, Max: *sr.maxFreq}
}

// TimeRange returns the time filter in effect.
func (sr *SqliteSpectrumReader) TimeRange() (start, end time.Time) {
	return *sr.startTime, *sr.endTime
}

func (sr *SqliteSpectrumReader) Next(ctx context.Context) bool {
	if sr.err != nil || sr.rows == nil {
		return false
	}

	var sweep *spectrum.Sweep
	if sr.hasNext {
		sweep = sr.beginSweep(sr.pendingTS, sr.pending)
		sr.hasNext = false
	}

	for {
		select {
		case <-ctx.Done():
			sr.err = ctx.Err()
			return false
		default:
		}

		if !sr.rows.Next() {
			if err := sr.rows.Err(); err != nil {
				sr.err = err
				return false
			}
			if sweep == nil {
				sr.current = nil
				return false
			}
			sr.finishSweep(sweep)
			sr.current = sweep
			return true
		}

		timestamp, point, err := sr.scanSample()
		if err != nil {
			sr.err = err
			return false
		}

		if sweep == nil {
			sweep = sr.beginSweep(timestamp, point)
			continue
		}

		last := sweep.Points[len(sweep.Points)-1]
		if !freqGreater(point.Frequency, last.Frequency, last.BinWidth) {
			// frequency rolled over: the point opens the next sweep
			sr.finishSweep(sweep)
			sr.pending, sr.pendingTS, sr.hasNext = point, timestamp, true
			sr.current = sweep
			return true
		}

		if freqLess(last.Frequency+last.BinWidth, point.Frequency, last.BinWidth) {
			sweep.Points = append(sweep.Points, fillFrequencyRange(last.Frequency+last.BinWidth, point.Frequency, last, false)...)
		}
		sweep.Points = append(sweep.Points, point)
	}
}

func (sr *SqliteSpectrumReader) Current() *spectrum.Sweep {
	return sr.current
}

func (sr *SqliteSpectrumReader) Error() error {
	return sr.err
}

func (sr *SqliteSpectrumReader) Close() error {
	if sr.rows != nil {
		err := sr.rows.Close()
		sr.current = nil
		sr.hasNext = false
		sr.rows = nil
		return err
	}
	return nil
}
