package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func globalField(t *testing.T) Field {
	t.Helper()
	lat := axis(-90, 2.5, 73)
	lon := axis(-180, 2.5, 144)
	f := constField(t, years(2000, 2), lat, lon, 0)
	for k := range f.Values {
		f.Values[k] = float64(k)
	}
	return f
}

func TestTrim_Azores(t *testing.T) {
	f := globalField(t)

	out, err := TrimToAzores(f)
	require.NoError(t, err)

	assert.Equal(t, axis(10, 2.5, 17), out.Lat)
	assert.Equal(t, axis(-60, 2.5, 29), out.Lon)
	assert.Equal(t, f.Time, out.Time)
	require.Len(t, out.Values, 2*17*29)

	for _, lat := range out.Lat {
		assert.True(t, lat >= Azores.LatMin && lat <= Azores.LatMax)
	}
	for _, lon := range out.Lon {
		assert.True(t, lon >= Azores.LonMin && lon <= Azores.LonMax)
	}

	// (lat 10, lon -60) sits at lat index 40, lon index 48 of the global grid.
	assert.Equal(t, f.At(1, 40, 48), out.At(1, 0, 0))
}

func TestTrim_NorthAtlantic(t *testing.T) {
	out, err := TrimToNorthAtlantic(globalField(t))
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.Lat[0])
	assert.Equal(t, 70.0, out.Lat[len(out.Lat)-1])
	assert.Equal(t, -70.0, out.Lon[0])
	assert.Equal(t, 15.0, out.Lon[len(out.Lon)-1])
}

func TestTrim_Idempotent(t *testing.T) {
	once, err := TrimToAzores(globalField(t))
	require.NoError(t, err)
	twice, err := TrimToAzores(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestTrim_PreservesDescendingLatitude(t *testing.T) {
	f := ReverseLatitude(globalField(t))

	out, err := TrimToAzores(f)
	require.NoError(t, err)

	assert.Equal(t, 50.0, out.Lat[0])
	assert.Equal(t, 10.0, out.Lat[len(out.Lat)-1])
}

func TestTrim_Errors(t *testing.T) {
	t.Run("no coordinates", func(t *testing.T) {
		_, err := TrimToAzores(Field{Time: []int{2000}})
		require.ErrorIs(t, err, ErrPreconditionViolation)
	})

	t.Run("region outside grid", func(t *testing.T) {
		f := constField(t, years(2000, 1), axis(-80, 1, 5), axis(100, 1, 5), 1)
		_, err := TrimToAzores(f)
		require.ErrorIs(t, err, ErrPreconditionViolation)
	})
}

func TestTrimMonthly(t *testing.T) {
	lat := axis(0, 10, 7)
	lon := axis(-90, 10, 19)
	values := make([]float64, 2*len(lat)*len(lon))
	for k := range values {
		values[k] = float64(k)
	}
	f, err := NewMonthlyField([]YearMonth{{2000, 1}, {2000, 2}}, lat, lon, values)
	require.NoError(t, err)

	out, err := TrimMonthly(f, Azores)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20, 30, 40, 50}, out.Lat)
	assert.Equal(t, axis(-60, 10, 8), out.Lon)
	require.Len(t, out.Values, 2*5*8)
	// first value: month 1, lat index 1, lon index 3
	assert.Equal(t, float64(len(lat)*len(lon)+1*len(lon)+3), out.Values[5*8])
}

func TestRegion_Contains(t *testing.T) {
	assert.True(t, Azores.Contains(-60, 10))
	assert.True(t, Azores.Contains(10, 52))
	assert.False(t, Azores.Contains(10.1, 30))
	assert.False(t, Azores.Contains(0, 9.9))
}
