package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExceedanceMask_ZeroVarianceIsAllFalse(t *testing.T) {
	tests := []struct {
		name  string
		steps int
		value float64
	}{
		{"representable constant", 5, 101325},
		{"inexact constant over 7 steps", 7, 101712.7},
		{"inexact constant over 30 steps", 30, 101712.7},
		{"inexact small constant", 11, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := constField(t, years(2000, tt.steps), axis(20, 2, 3), axis(-30, 2, 4), tt.value)

			thresholds, err := CellThresholds(f)
			require.NoError(t, err)
			for _, th := range thresholds {
				assert.Equal(t, tt.value, th)
			}

			m, err := ExceedanceMask(f)
			require.NoError(t, err)
			require.Len(t, m.Values, len(f.Values))
			assert.NotContains(t, m.Values, true)
		})
	}
}

func TestCellThresholds_RefinedMean(t *testing.T) {
	f := constField(t, years(2000, 7), []float64{0}, []float64{0}, 101712.7)
	set(f, 3, 0, 0, 101712.8)

	thresholds, err := CellThresholds(f)
	require.NoError(t, err)

	mean := (6*101712.7 + 101712.8) / 7
	std := math.Sqrt((6*math.Pow(101712.7-mean, 2) + math.Pow(101712.8-mean, 2)) / 7)
	assert.InDelta(t, mean+ThresholdStdFactor*std, thresholds[0], 1e-9)
}

func TestCellThresholds_PopulationStd(t *testing.T) {
	f := constField(t, years(2000, 4), []float64{0, 1}, []float64{0, 1}, 0)
	// cell (0, 1): 2, 4, 4, 6 -> mean 4, population std sqrt(2)
	for ti, v := range []float64{2, 4, 4, 6} {
		set(f, ti, 0, 1, v)
	}

	thresholds, err := CellThresholds(f)
	require.NoError(t, err)

	assert.InDelta(t, 4+0.5*math.Sqrt2, thresholds[1], 1e-12)
	assert.Equal(t, 0.0, thresholds[0])
}

func TestExceedanceMask_FlagsPerturbedCell(t *testing.T) {
	f := constField(t, years(2000, 3), axis(20, 2, 4), axis(-40, 2, 4), 1000)
	set(f, 1, 1, 2, 1010)

	m, err := ExceedanceMask(f)
	require.NoError(t, err)

	for ti := range f.Time {
		for i := range f.Lat {
			for j := range f.Lon {
				want := ti == 1 && i == 1 && j == 2
				assert.Equal(t, want, m.At(ti, i, j), "t=%d lat=%d lon=%d", ti, i, j)
			}
		}
	}
}

func TestExceedanceMask_NaN(t *testing.T) {
	f := constField(t, years(2000, 3), []float64{0, 1}, []float64{0, 1}, 1)
	set(f, 0, 0, 0, math.NaN())
	set(f, 2, 0, 0, 5)
	for ti := range f.Time {
		set(f, ti, 1, 1, math.NaN())
	}

	m, err := ExceedanceMask(f)
	require.NoError(t, err)

	assert.False(t, m.At(0, 0, 0), "NaN never exceeds")
	assert.True(t, m.At(2, 0, 0), "threshold skips NaN samples")
	for ti := range f.Time {
		assert.False(t, m.At(ti, 1, 1), "all-NaN cell never exceeds")
	}
}

func TestExceedanceMask_NoTimeSteps(t *testing.T) {
	_, err := ExceedanceMask(Field{Grid: Grid{Lat: []float64{0}, Lon: []float64{0}}})
	require.ErrorIs(t, err, ErrPreconditionViolation)
}
