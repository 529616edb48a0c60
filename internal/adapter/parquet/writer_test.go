package parquet

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	parquetgo "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

func testReport() domain.Report {
	return domain.Report{
		RunID:     "run-1",
		Params:    domain.Params{Norm: domain.NormDetrend, CutoffPercentile: 90, Window: 3},
		AHA:       domain.Series{Time: []int{2000, 2001, 2002}, Values: []float64{1, 9, 2}},
		Threshold: 5,
		Extremes:  domain.CountSeries{Time: []int{2001}, Counts: []int{1}},
	}
}

func TestWriter_Publish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	w := NewWriter(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, w.Publish(context.Background(), testReport()))

	rows, err := parquetgo.ReadFile[Row](w.Path())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "parquet", w.Name())
	assert.Equal(t, int32(2000), rows[0].Year)
	assert.Nil(t, rows[0].RollingCount)
	assert.Equal(t, int32(2001), rows[1].Year)
	assert.True(t, rows[1].Extreme)
	require.NotNil(t, rows[1].RollingCount)
	assert.Equal(t, int32(1), *rows[1].RollingCount)
	assert.Equal(t, "detrend", rows[2].Norm)
	assert.Equal(t, int32(3), rows[2].Window)

	_, err = os.Stat(w.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")
}

func TestWriter_PublishReplacesFile(t *testing.T) {
	w := NewWriter(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, w.Publish(context.Background(), testReport()))

	short := testReport()
	short.AHA = domain.Series{Time: []int{2000}, Values: []float64{1}}
	short.Extremes = domain.CountSeries{}
	require.NoError(t, w.Publish(context.Background(), short))

	rows, err := parquetgo.ReadFile[Row](w.Path())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWriter(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorIs(t, w.Publish(ctx, testReport()), context.Canceled)
}
