package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// timestampLayout renders parsed order timestamps in artifacts
const timestampLayout = "2006-01-02 15:04:05"

// Exporter writes run artifacts into one output directory. Every artifact of
// a run shares the same timestamp suffix so one run's files sort together.
type Exporter struct {
	dir    string
	stamp  string
	logger *zap.Logger
}

// NewExporter creates a new Exporter. runTime fixes the shared filename
// suffix for every artifact of the run.
func NewExporter(dir string, runTime time.Time, logger *zap.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		stamp:  runTime.Format("20060102_150405"),
		logger: logger,
	}
}

func (e *Exporter) filename(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, e.stamp, ext)
}

// createFile ensures the output directory exists and opens the artifact for
// writing. Creation is lazy so a bad directory fails one artifact at a time
// instead of the whole run.
func (e *Exporter) createFile(name string) (string, *os.File, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create output directory %s: %w", e.dir, err)
	}
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("create %s: %w", name, err)
	}
	return path, f, nil
}

func (e *Exporter) writeCSV(name string, header []string, rows [][]string) (string, error) {
	path, f, err := e.createFile(name)
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s header: %w", name, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s row: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("flush %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	e.logger.Info("artifact written",
		zap.String("path", path),
		zap.Int("rows", len(rows)))

	return path, nil
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}
