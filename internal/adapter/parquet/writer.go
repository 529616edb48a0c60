// Package parquet exports index reports as Parquet files, one row per year.
package parquet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	parquetgo "github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// FileName is the name of the file written under the output directory.
const FileName = "aha_index.parquet"

// Row is the on-disk schema.
type Row struct {
	RunID        string  `parquet:"run_id"`
	Year         int32   `parquet:"year"`
	AHAKm2       float64 `parquet:"aha_km2"`
	Extreme      bool    `parquet:"extreme"`
	RollingCount *int32  `parquet:"rolling_count,optional"`
	Truncated    bool    `parquet:"truncated_window"`
	Norm         string  `parquet:"norm"`
	Cutoff       float64 `parquet:"cutoff_percentile"`
	Window       int32   `parquet:"window"`
}

// Writer writes the latest report to a Parquet file.
// It implements pipeline.Publisher.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer targeting dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "parquet" }

// Path returns the file the writer produces.
func (w *Writer) Path() string { return filepath.Join(w.dir, FileName) }

// Publish replaces the output file with the rows of report. The file is
// written to a temporary name first and renamed into place.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rows := toRows(report)
	tmp := w.Path() + ".tmp"
	if err := writeRows(tmp, rows); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, w.Path()); err != nil {
		return fmt.Errorf("rename parquet output: %w", err)
	}
	w.logger.Debug("parquet written", "path", w.Path(), "rows", len(rows))
	return nil
}

func writeRows(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	pw := parquetgo.NewGenericWriter[Row](f)
	if _, err := pw.Write(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush parquet: %w", err)
	}
	return f.Close()
}

func toRows(report domain.Report) []Row {
	recs := report.Records()
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		rows[i] = Row{
			RunID:     rec.RunID,
			Year:      int32(rec.Year),
			AHAKm2:    rec.AHAKm2,
			Extreme:   rec.Extreme,
			Truncated: rec.Truncated,
			Norm:      report.Params.Norm.String(),
			Cutoff:    report.Params.CutoffPercentile,
			Window:    int32(report.Params.Window),
		}
		if rec.RollingCount != nil {
			c := int32(*rec.RollingCount)
			rows[i].RollingCount = &c
		}
	}
	return rows
}
