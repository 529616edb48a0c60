package xlsx

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

func TestWriter_Publish(t *testing.T) {
	w := NewWriter(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	report := domain.Report{
		RunID:     "run-1",
		Source:    "psl.nc",
		Params:    domain.Params{Norm: domain.NormGlobalMean, CutoffPercentile: 90, Window: 3},
		AHA:       domain.Series{Time: []int{2000, 2001, 2002}, Values: []float64{1.5, 9, 2}},
		Threshold: 5,
		Extremes:  domain.CountSeries{Time: []int{2001}, Counts: []int{1}},
		Summary:   domain.Summary{Mean: 4.1666},
	}

	require.NoError(t, w.Publish(context.Background(), report))

	f, err := excelize.OpenFile(w.Path())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetIndex, SheetExtremes, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetIndex)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "aha_km2", "extreme"},
		{"2000", "1.5", "FALSE"},
		{"2001", "9", "TRUE"},
		{"2002", "2", "FALSE"},
	}, rows)

	rows, err = f.GetRows(SheetExtremes)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"year", "rolling_count"}, {"2001", "1"}}, rows)

	rows, err = f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"norm", "global_mean"})
	assert.Contains(t, rows, []string{"run_id", "run-1"})
}
