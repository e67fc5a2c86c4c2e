package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

type sampleData struct {
	SessionID  int64
	Timestamp  time.Time
	Frequency  float64
	BinWidth   float64
	Power      sql.NullFloat64
	NumSamples int
}

type sessionData struct {
	ID         int64
	StartTime  time.Time
	DeviceType string
	DeviceID   string
	Config     sql.NullString
}

// sqliteDatetime scans DATETIME values that reach the driver as text. SQLite
// drops the declared column type for aggregates such as MIN(timestamp), so
// the driver cannot convert them to time.Time on its own.
type sqliteDatetime struct {
	Datetime time.Time
	Valid    bool
}

func (d *sqliteDatetime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.Datetime, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Datetime, d.Valid = v, true
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported datetime value %T", value)
	}
}

func (d *sqliteDatetime) parse(s string) error {
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			d.Datetime, d.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("parsing datetime %q", s)
}
