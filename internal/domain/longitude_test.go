package domain

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLongitude(t *testing.T) {
	in := []float64{0, 90, 180, 180.5, 270, 359}

	out := ConvertLongitude(in)

	assert.Equal(t, []float64{0, 90, 180, -179.5, -90, -1}, out)
	assert.Equal(t, 359.0, in[5], "input is not modified")
}

func TestConvertLongitude_IdempotentAfterSort(t *testing.T) {
	once := ConvertLongitude(axis(0, 30, 12))
	slices.Sort(once)

	twice := ConvertLongitude(once)
	slices.Sort(twice)

	assert.Equal(t, once, twice)
}

func TestSwitchLongitudeRange(t *testing.T) {
	lon := []float64{0, 90, 180, 270}
	f := constField(t, years(2000, 2), []float64{-10, 10}, lon, 0)
	for ti := range f.Time {
		for i := range f.Lat {
			for j, l := range lon {
				set(f, ti, i, j, l+float64(100*ti))
			}
		}
	}

	out := SwitchLongitudeRange(f)

	assert.Equal(t, []float64{-90, 0, 90, 180}, out.Lon)
	assert.Equal(t, []float64{270, 0, 90, 180}, out.Step(0)[:4])
	assert.Equal(t, []float64{370, 100, 190, 280}, out.Step(1)[4:])
	assert.Equal(t, out, SwitchLongitudeRange(out))
}

func TestSwitchLongitudeRangeMonthly(t *testing.T) {
	f, err := NewMonthlyField([]YearMonth{{Year: 2000, Month: 1}}, []float64{0}, []float64{10, 350}, []float64{1, 2})
	require.NoError(t, err)

	out := SwitchLongitudeRangeMonthly(f)

	assert.Equal(t, []float64{-10, 10}, out.Lon)
	assert.Equal(t, []float64{2, 1}, out.Values)
}

func TestReverseLatitude(t *testing.T) {
	f := constField(t, years(2000, 1), []float64{-90, 0, 90}, []float64{0, 1}, 0)
	copy(f.Values, []float64{1, 2, 3, 4, 5, 6})

	out := ReverseLatitude(f)

	assert.Equal(t, []float64{90, 0, -90}, out.Lat)
	assert.Equal(t, []float64{5, 6, 3, 4, 1, 2}, out.Values)
	assert.Equal(t, f, ReverseLatitude(out))
}
