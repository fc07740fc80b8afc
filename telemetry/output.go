package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/polygons/config"
)

// csvSink appends gocsv records to one file, writing the header once.
type csvSink struct {
	name   string
	file   *os.File
	header bool
}

func openSink(dir, name string) (*csvSink, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvSink{name: name, file: f}, nil
}

// append writes records, which must be a slice of csv-tagged structs.
func (c *csvSink) append(records any) error {
	var err error
	if c.header {
		err = gocsv.MarshalWithoutHeaders(records, c.file)
	} else {
		err = gocsv.Marshal(records, c.file)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	c.header = true
	return nil
}

// OutputManager writes run artifacts into one directory: contacts.csv,
// perf.csv, config.yaml and snapshots. A nil manager discards everything.
type OutputManager struct {
	dir      string
	contacts *csvSink
	perf     *csvSink
}

// NewOutputManager creates dir and opens the CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	contacts, err := openSink(dir, "contacts.csv")
	if err != nil {
		return nil, err
	}
	perf, err := openSink(dir, "perf.csv")
	if err != nil {
		contacts.file.Close()
		return nil, err
	}

	return &OutputManager{dir: dir, contacts: contacts, perf: perf}, nil
}

// WriteConfig saves the configuration the run used.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a contact stats window.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.contacts.append([]WindowStats{stats})
}

// WritePerf appends a timing row for the window ending at windowEnd.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.append([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteSnapshot saves a body snapshot into the output directory.
func (om *OutputManager) WriteSnapshot(snapshot *Snapshot) (string, error) {
	if om == nil || snapshot == nil {
		return "", nil
	}
	return SaveSnapshot(snapshot, om.dir)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both CSV files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	err := om.contacts.file.Close()
	if perr := om.perf.file.Close(); err == nil {
		err = perr
	}
	return err
}
