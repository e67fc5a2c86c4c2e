package app

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/sweep-inspector/internal/hound"
	"github.com/roman-kulish/sweep-inspector/internal/sdr/rtl"
)

func parseArgs(args ...string) (*Config, error) {
	fs := flag.NewFlagSet("inspector", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return parseConfig(fs, args)
}

const testConfigYAML = `
settings:
  logLevel: debug
window:
  width: 1280
export:
  width: 1600
  height: 900
  jpegQuality: 90
timestamp:
  format: "15:04:05"
  location: UTC
capture:
  hackrf:
    serialNumber: "0000000000000000457863c8234e0c1f"
    frequencyStart: 2400000000
    frequencyEnd: 2500000000
    binWidth: 500000
  rtl:
    frequencyStart: 88000000
    frequencyEnd: 108000000
    binWidth: 10000
    interval: 5s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inspector.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfig_Sqlite(t *testing.T) {
	c, err := parseArgs("-db", "capture.db", "-s", "3", "-min-freq", "100e6", "-from", "2024-05-01 12:00:00")
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}

	if c.Source != SourceSqlite || c.SessionID != 3 {
		t.Errorf("source = %v, session = %d", c.Source, c.SessionID)
	}
	if c.MinFrequency == nil || *c.MinFrequency != 100e6 || c.MaxFrequency != nil {
		t.Errorf("frequency filters = %v, %v", c.MinFrequency, c.MaxFrequency)
	}
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if c.MinTimestamp == nil || !c.MinTimestamp.Equal(want) || c.MaxTimestamp != nil {
		t.Errorf("time filters = %v, %v", c.MinTimestamp, c.MaxTimestamp)
	}
	if c.LogLevel() != slog.LevelInfo {
		t.Errorf("LogLevel() = %v, want info", c.LogLevel())
	}
	if w, h := c.WindowSize(); w != DefaultWindowWidth || h != DefaultWindowHeight {
		t.Errorf("WindowSize() = %v x %v", w, h)
	}
}

func TestParseConfig_CSVWithFile(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	c, err := parseArgs("-csv", "capture.csv", "-csv-format", "rtl", "-config", path, "-export", "out.png", "-index", "4")
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}

	if c.Source != SourceCSV || c.CSVFormat != hound.FormatRTL {
		t.Errorf("source = %v, format = %q", c.Source, c.CSVFormat)
	}
	if c.ExportPath != "out.png" || c.Index != 4 {
		t.Errorf("export = %q, index = %d", c.ExportPath, c.Index)
	}
	if c.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", c.LogLevel())
	}
	if c.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", c.Location())
	}
	if w, h := c.WindowSize(); w != 1280 || h != DefaultWindowHeight {
		t.Errorf("WindowSize() = %v x %v", w, h)
	}
	if o := c.ExportOptions(); o.Width != 1600 || o.Height != 900 || o.JPEGQuality != 90 {
		t.Errorf("ExportOptions() = %+v", o)
	}

	hackrfConfig := c.File.Capture.HackRF
	if hackrfConfig == nil || hackrfConfig.SerialNumber != "0000000000000000457863c8234e0c1f" || hackrfConfig.FrequencyEnd != 2_500_000_000 {
		t.Errorf("capture.hackrf = %+v", hackrfConfig)
	}
	if rtlConfig := c.File.Capture.RTL; rtlConfig == nil || rtlConfig.Interval != rtl.Interval(5*time.Second) {
		t.Errorf("capture.rtl = %+v", rtlConfig)
	}
}

func TestParseConfig_Capture(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	c, err := parseArgs("-capture", "rtl", "-config", path, "-record", "live.db")
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if c.Source != SourceCapture || c.CaptureDevice != DeviceRTLSDR || c.RecordPath != "live.db" {
		t.Errorf("config = %+v", c)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	path := writeConfig(t, testConfigYAML)
	empty := writeConfig(t, "settings:\n  logLevel: warn\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", nil, "is required"},
		{"two sources", []string{"-db", "a.db", "-csv", "a.csv"}, "mutually exclusive"},
		{"no session", []string{"-db", "a.db", "-s", "0"}, "session id"},
		{"record without capture", []string{"-db", "a.db", "-record", "b.db"}, "-record"},
		{"export live", []string{"-capture", "hackrf", "-config", path, "-export", "a.png"}, "-export"},
		{"negative index", []string{"-csv", "a.csv", "-index", "-1"}, "index"},
		{"frequency order", []string{"-db", "a.db", "-min-freq", "200", "-max-freq", "100"}, "below"},
		{"time order", []string{"-db", "a.db", "-from", "2024-05-02 00:00:00", "-to", "2024-05-01 00:00:00"}, "-to"},
		{"bad timestamp", []string{"-db", "a.db", "-from", "yesterday"}, "invalid timestamp"},
		{"filter on csv", []string{"-csv", "a.csv", "-max-freq", "100"}, "only valid with -db"},
		{"csv format", []string{"-csv", "a.csv", "-csv-format", "airspy"}, "unknown CSV format"},
		{"device section", []string{"-capture", "hackrf", "-config", empty}, "capture.hackrf"},
		{"device type", []string{"-capture", "airspy", "-config", path}, "unknown capture device"},
		{"missing file", []string{"-db", "a.db", "-config", filepath.Join(t.TempDir(), "none.yaml")}, "loading configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("parseConfig(%v) error = %v, want %q", tt.args, err, tt.want)
			}
		})
	}
}
