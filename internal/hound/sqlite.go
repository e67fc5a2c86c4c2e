package hound

import (
	"context"
	"fmt"

	"github.com/roman-kulish/sweep-inspector/internal/spectrum"
	"github.com/roman-kulish/sweep-inspector/internal/storage"
)

// SweepIterator yields sweeps one at a time; storage.SpectrumReader is one.
type SweepIterator interface {
	Next(context.Context) bool
	Current() *spectrum.Sweep
	Error() error
}

// ReadSweeps appends every sweep of it to d and returns how many were read.
func ReadSweeps(ctx context.Context, it SweepIterator, d *Data) (int, error) {
	const batch = 256

	n := 0
	pending := make([]*spectrum.Sweep, 0, batch)
	for it.Next(ctx) {
		pending = append(pending, it.Current())
		if len(pending) == batch {
			d.Append(pending...)
			n += len(pending)
			pending = pending[:0]
		}
	}
	d.Append(pending...)
	n += len(pending)

	if err := it.Error(); err != nil {
		return n, err
	}
	return n, nil
}

// LoadSqlite reads every sweep of a stored session into a new Data. Reader
// options narrow the frequency and time range.
func LoadSqlite(ctx context.Context, store *storage.SqliteStore, sessionID int64, readerOpts []storage.ReaderOption, options ...func(d *Data)) (_ *Data, err error) {
	reader, err := store.ReadSpectrum(ctx, sessionID, readerOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening session %d: %w", sessionID, err)
	}
	defer func() {
		if cErr := reader.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	d := New(options...)
	if _, err = ReadSweeps(ctx, reader, d); err != nil {
		return nil, fmt.Errorf("reading session %d: %w", sessionID, err)
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrEmpty)
	}
	return d, nil
}
