package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/sweep-inspector/internal/hound"
	"github.com/roman-kulish/sweep-inspector/internal/plot"
	"github.com/roman-kulish/sweep-inspector/internal/sdr/hackrf"
	"github.com/roman-kulish/sweep-inspector/internal/sdr/rtl"
)

const (
	DeviceHackRF = "hackrf"
	DeviceRTLSDR = "rtl"

	DefaultWindowWidth  = 1024
	DefaultWindowHeight = 640
)

// Source is where the sweeps come from.
type Source int

const (
	SourceSqlite Source = iota
	SourceCSV
	SourceCapture
)

func (s Source) String() string {
	switch s {
	case SourceSqlite:
		return "sqlite"
	case SourceCSV:
		return "csv"
	case SourceCapture:
		return "capture"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Config is the command line configuration merged with the optional
// configuration file.
type Config struct {
	Source Source

	DBPath    string
	SessionID int64

	CSVPath   string
	CSVFormat hound.Format

	CaptureDevice string
	RecordPath    string

	ConfigPath string
	ExportPath string
	Index      int

	MinFrequency *float64
	MaxFrequency *float64
	MinTimestamp *time.Time
	MaxTimestamp *time.Time

	File FileConfig
}

// FileConfig is the YAML configuration file.
//
//	settings:
//	  logLevel: debug
//	window:
//	  width: 1280
//	  height: 720
//	export:
//	  width: 1600
//	  height: 900
//	  jpegQuality: 90
//	timestamp:
//	  format: "15:04:05.000"
//	  location: UTC
//	capture:
//	  hackrf:
//	    serialNumber: 0000000000000000457863c8234e0c1f
//	    frequencyStart: 2400000000
//	    frequencyEnd: 2500000000
//	    binWidth: 500000
type FileConfig struct {
	Settings  Settings        `yaml:"settings"`
	Window    WindowConfig    `yaml:"window"`
	Export    ExportConfig    `yaml:"export"`
	Timestamp TimestampConfig `yaml:"timestamp"`
	Capture   CaptureConfig   `yaml:"capture"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

type WindowConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

type ExportConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	JPEGQuality int `yaml:"jpegQuality"`
}

// TimestampConfig controls the sweep timestamp labels.
type TimestampConfig struct {
	Format   string `yaml:"format"`
	Location string `yaml:"location"` // IANA name, empty for local time
}

// CaptureConfig holds the settings of the devices available for live capture.
type CaptureConfig struct {
	HackRF *HackRFConfig `yaml:"hackrf"`
	RTL    *rtl.Config   `yaml:"rtl"`
}

type HackRFConfig struct {
	SerialNumber  string `yaml:"serialNumber"`
	hackrf.Config `yaml:",inline"`
}

// LoadConfig reads the YAML configuration file at path.
func LoadConfig(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeConfig(f)
}

func decodeConfig(r io.Reader) (*FileConfig, error) {
	var c FileConfig
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return &c, nil
}

// LogLevel returns the configured log level, info by default.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if c.File.Settings.LogLevel == "" {
		return slog.LevelInfo
	}
	if err := level.UnmarshalText([]byte(c.File.Settings.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Location returns the time zone of the timestamp labels.
func (c *Config) Location() *time.Location {
	if c.File.Timestamp.Location == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.File.Timestamp.Location)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) ExportOptions() plot.ExportOptions {
	return plot.ExportOptions{
		Width:       c.File.Export.Width,
		Height:      c.File.Export.Height,
		JPEGQuality: c.File.Export.JPEGQuality,
	}
}

func (c *Config) WindowSize() (width, height float32) {
	width, height = c.File.Window.Width, c.File.Window.Height
	if width <= 0 {
		width = DefaultWindowWidth
	}
	if height <= 0 {
		height = DefaultWindowHeight
	}
	return width, height
}

func NewConfig() *Config {
	return &Config{
		CSVFormat: hound.FormatHackRF,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

func parseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var csvFormat, from, to string
	var minFreq, maxFreq float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.StringVar(&c.CSVPath, "csv", "", "Path to a hackrf_sweep or rtl_power CSV capture")
	fs.StringVar(&csvFormat, "csv-format", string(hound.FormatHackRF), "CSV capture format. [hackrf, rtl]")
	fs.StringVar(&c.CaptureDevice, "capture", "", "Capture live from a device configured in the configuration file. [hackrf, rtl]")
	fs.StringVar(&c.RecordPath, "record", "", "Record the live capture into this database file")
	fs.StringVar(&c.ConfigPath, "config", "", "Path to the configuration file")
	fs.StringVar(&c.ExportPath, "export", "", "Render a sweep into this file and exit. [.png, .svg, .jpg, .pdf]")
	fs.IntVar(&c.Index, "index", 0, "Index of the sweep to export")
	fs.Float64Var(&minFreq, "min-freq", 0, "Minimum frequency to read from the database, Hz")
	fs.Float64Var(&maxFreq, "max-freq", 0, "Maximum frequency to read from the database, Hz")
	fs.StringVar(&from, "from", "", "Read sweeps captured at or after this time (YYYY-MM-DD HH:MM:SS, UTC)")
	fs.StringVar(&to, "to", "", "Read sweeps captured at or before this time (YYYY-MM-DD HH:MM:SS, UTC)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-freq":
			c.MinFrequency = &minFreq
		case "max-freq":
			c.MaxFrequency = &maxFreq
		case "from":
			c.MinTimestamp, err = parseTimestamp(from)
		case "to":
			if t, tErr := parseTimestamp(to); tErr != nil {
				err = errors.Join(err, tErr)
			} else {
				c.MaxTimestamp = t
			}
		}
	})
	if err != nil {
		return nil, err
	}

	if c.ConfigPath != "" {
		file, err := LoadConfig(c.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading configuration file '%s': %w", c.ConfigPath, err)
		}
		c.File = *file
	}

	if c.CSVFormat, err = hound.ParseFormat(csvFormat); err != nil {
		return nil, err
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseTimestamp(s string) (*time.Time, error) {
	t, err := time.ParseInLocation(time.DateTime, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp '%s': %w", s, err)
	}
	return &t, nil
}

// Validate selects the sweep source and checks the options that go with it.
func (c *Config) Validate() error {
	var sources int
	if c.DBPath != "" {
		c.Source = SourceSqlite
		sources++
	}
	if c.CSVPath != "" {
		c.Source = SourceCSV
		sources++
	}
	if c.CaptureDevice != "" {
		c.Source = SourceCapture
		sources++
	}

	switch {
	case sources == 0:
		return errors.New("one of -db, -csv or -capture is required")
	case sources > 1:
		return errors.New("-db, -csv and -capture are mutually exclusive")
	case c.Source == SourceSqlite && c.SessionID <= 0:
		return errors.New("session id is required")
	case c.Source != SourceCapture && c.RecordPath != "":
		return errors.New("-record is only valid with -capture")
	case c.Source == SourceCapture && c.ExportPath != "":
		return errors.New("-export needs a recorded source, -db or -csv")
	case c.Index < 0:
		return fmt.Errorf("invalid sweep index: %d", c.Index)
	case c.MinFrequency != nil && c.MaxFrequency != nil && *c.MinFrequency >= *c.MaxFrequency:
		return fmt.Errorf("min frequency %.0f must be below max frequency %.0f", *c.MinFrequency, *c.MaxFrequency)
	case c.MinTimestamp != nil && c.MaxTimestamp != nil && c.MaxTimestamp.Before(*c.MinTimestamp):
		return errors.New("-to must not be before -from")
	}

	if c.Source != SourceSqlite && (c.MinFrequency != nil || c.MaxFrequency != nil || c.MinTimestamp != nil || c.MaxTimestamp != nil) {
		return errors.New("frequency and time filters are only valid with -db")
	}

	if c.File.Timestamp.Location != "" {
		if _, err := time.LoadLocation(c.File.Timestamp.Location); err != nil {
			return fmt.Errorf("invalid timestamp location: %w", err)
		}
	}

	if c.Source == SourceCapture {
		switch c.CaptureDevice {
		case DeviceHackRF:
			if c.File.Capture.HackRF == nil {
				return errors.New("capture.hackrf section is missing from the configuration file")
			}
			return c.File.Capture.HackRF.Validate()
		case DeviceRTLSDR:
			if c.File.Capture.RTL == nil {
				return errors.New("capture.rtl section is missing from the configuration file")
			}
			return c.File.Capture.RTL.Validate()
		default:
			return fmt.Errorf("unknown capture device: %s", c.CaptureDevice)
		}
	}
	return nil
}
