package netcdf

import (
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

var testNames = Config{SLPVar: "PSL", LatVar: "lat", LonVar: "lon", TimeVar: "time"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFixture writes a 3-year monthly field on a 3x4 grid where each value
// encodes its month index, with one missing cell.
func writeFixture(t *testing.T) (string, domain.MonthlyField) {
	t.Helper()
	var months []domain.YearMonth
	for y := 2000; y <= 2002; y++ {
		for m := time.January; m <= time.December; m++ {
			months = append(months, domain.YearMonth{Year: y, Month: m})
		}
	}
	lat := []float64{-30, 0, 30}
	lon := []float64{0, 90, 180, 270}
	values := make([]float64, len(months)*len(lat)*len(lon))
	for k := range values {
		values[k] = 100000 + float64(k/12)
	}
	values[5] = math.NaN()

	f, err := domain.NewMonthlyField(months, lat, lon, values)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "psl.nc")
	require.NoError(t, WriteMonthly(path, f, testNames))
	return path, f
}

func loaderFor(path string) *Loader {
	cfg := testNames
	cfg.Path = path
	return NewLoader(cfg, testLogger())
}

func TestReadMonthly_RoundTrip(t *testing.T) {
	path, want := writeFixture(t)

	got, err := loaderFor(path).ReadMonthly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want.Months, got.Months)
	assert.Equal(t, want.Lat, got.Lat)
	assert.Equal(t, want.Lon, got.Lon)
	require.Len(t, got.Values, len(want.Values))
	assert.True(t, math.IsNaN(got.Values[5]), "fill value decodes to NaN")
	for k, v := range want.Values {
		if k == 5 {
			continue
		}
		assert.InDelta(t, v, got.Values[k], 0.01, "value %d", k)
	}
}

func TestLoad_PreparesDataset(t *testing.T) {
	path, _ := writeFixture(t)
	l := loaderFor(path)

	ds, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, path, l.Source())
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, []int{2001, 2002}, ds.SLP.Time)
	assert.Equal(t, []float64{-90, 0, 90, 180}, ds.SLP.Lon)
	assert.Len(t, ds.GlobalMean.Values, 2)
	// DJF 2001 averages month indices 11, 12 and 13.
	assert.InDelta(t, 100012, ds.SLP.Values[0], 0.01)
}

func TestReadMonthly_Errors(t *testing.T) {
	path, _ := writeFixture(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := loaderFor(filepath.Join(t.TempDir(), "absent.nc")).ReadMonthly(context.Background())
		require.Error(t, err)
	})

	t.Run("missing variable", func(t *testing.T) {
		cfg := testNames
		cfg.Path = path
		cfg.SLPVar = "slp"
		_, err := NewLoader(cfg, testLogger()).ReadMonthly(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"slp"`)
	})

	t.Run("dimension order", func(t *testing.T) {
		cfg := testNames
		cfg.Path = path
		cfg.LatVar, cfg.LonVar = "lon", "lat"
		_, err := NewLoader(cfg, testLogger()).ReadMonthly(context.Background())
		require.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := loaderFor(path).ReadMonthly(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestWriteMonthly_ShapeMismatch(t *testing.T) {
	f := domain.MonthlyField{
		Grid:   domain.Grid{Lat: []float64{0}, Lon: []float64{0, 1}},
		Months: []domain.YearMonth{{Year: 2000, Month: time.January}},
		Values: []float64{1},
	}
	err := WriteMonthly(filepath.Join(t.TempDir(), "bad.nc"), f, testNames)
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestUnpack(t *testing.T) {
	attrs := mapAttrs{"scale_factor": float32(2), "add_offset": 100.0, "missing_value": []int16{-999}}
	values := []float64{1, -999, 3}

	unpack(values, attrs)

	assert.Equal(t, 102.0, values[0])
	assert.True(t, math.IsNaN(values[1]))
	assert.Equal(t, 106.0, values[2])
}

type mapAttrs map[string]any

func (m mapAttrs) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (m mapAttrs) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapAttrs) GetType(string) (string, bool) { return "", false }

func (m mapAttrs) GetGoType(string) (string, bool) { return "", false }
