package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/rescount/config"
)

// csvLog is an append-only CSV file whose header is written with the first row.
type csvLog struct {
	name   string
	f      *os.File
	header bool
}

func createLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, f: f}, nil
}

// append writes records, a slice of csv-tagged structs.
func (l *csvLog) append(records any) error {
	var err error
	if l.header {
		err = gocsv.MarshalWithoutHeaders(records, l.f)
	} else {
		err = gocsv.Marshal(records, l.f)
		l.header = err == nil
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	return nil
}

// OutputManager writes a run's CSV logs and config snapshot into one
// directory. A nil manager discards everything.
type OutputManager struct {
	dir       string
	telemetry *csvLog
	perf      *csvLog
	bookmarks *csvLog
}

// NewOutputManager creates dir and its CSV logs.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, l := range []struct {
		dst  **csvLog
		name string
	}{
		{&om.telemetry, "telemetry.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
	} {
		log, err := createLog(dir, l.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*l.dst = log
	}
	return om, nil
}

// WriteConfig saves the effective configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.append([]WindowStats{stats})
}

// WritePerf appends step timing for the window ending at windowEnd to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.append([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.append([]Bookmark{b})
}

// CellAmount is one row of a grid snapshot.
type CellAmount struct {
	ID     int     `csv:"cell_id"`
	X      int     `csv:"x"`
	Y      int     `csv:"y"`
	Amount float64 `csv:"amount"`
}

// WriteSnapshot saves per-cell amounts of a world with the given width to
// name (relative to the output directory) as CSV.
func (om *OutputManager) WriteSnapshot(name string, amounts []float64, width int) error {
	if om == nil {
		return nil
	}
	if width < 1 {
		return fmt.Errorf("writing %s: invalid width %d", name, width)
	}

	rows := make([]CellAmount, len(amounts))
	for i, a := range amounts {
		rows[i] = CellAmount{ID: i, X: i % width, Y: i / width, Amount: a}
	}

	l, err := createLog(om.dir, name)
	if err != nil {
		return err
	}
	defer l.f.Close()
	return l.append(rows)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open log and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, l := range []*csvLog{om.telemetry, om.perf, om.bookmarks} {
		if l == nil {
			continue
		}
		if err := l.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
