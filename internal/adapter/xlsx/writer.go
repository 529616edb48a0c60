// Package xlsx exports index reports as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

const (
	// FileName is the name of the workbook written under the output directory.
	FileName = "aha_index.xlsx"

	SheetIndex    = "aha"
	SheetExtremes = "extremes"
	SheetSummary  = "summary"
)

// Writer writes the latest report to a workbook.
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
func (w *Writer) Name() string { return "xlsx" }

// Path returns the file the writer produces.
func (w *Writer) Path() string { return filepath.Join(w.dir, FileName) }

// Publish writes the index, rolling counts and summary to separate sheets.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed rather than left empty.
	if err := f.SetSheetName("Sheet1", SheetIndex); err != nil {
		return err
	}

	index := [][]any{}
	for _, rec := range report.Records() {
		index = append(index, []any{rec.Year, rec.AHAKm2, rec.Extreme})
	}
	if err := writeSheet(f, SheetIndex, []string{"year", "aha_km2", "extreme"}, index); err != nil {
		return err
	}

	extremes := make([][]any, report.Extremes.Len())
	for k, year := range report.Extremes.Time {
		extremes[k] = []any{year, report.Extremes.Counts[k]}
	}
	if err := writeSheet(f, SheetExtremes, []string{"year", "rolling_count"}, extremes); err != nil {
		return err
	}

	s := report.Summary
	summary := [][]any{
		{"run_id", report.RunID},
		{"source", report.Source},
		{"computed_at", report.ComputedAt.Format("2006-01-02T15:04:05Z07:00")},
		{"norm", report.Params.Norm.String()},
		{"cutoff_percentile", report.Params.CutoffPercentile},
		{"window", report.Params.Window},
		{"threshold_km2", report.Threshold},
		{"mean_km2", s.Mean},
		{"std_dev_km2", s.StdDev},
		{"min_km2", s.Min},
		{"max_km2", s.Max},
		{"median_km2", s.Median},
		{"p90_km2", s.P90},
	}
	if err := writeSheet(f, SheetSummary, []string{"field", "value"}, summary); err != nil {
		return err
	}

	if err := f.SaveAs(w.Path()); err != nil {
		return fmt.Errorf("save %s: %w", w.Path(), err)
	}
	w.logger.Debug("workbook written", "path", w.Path(), "years", len(index))
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
