package domain

import "testing"

// axis returns n evenly spaced coordinates starting at start.
func axis(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func years(first, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}

// constField builds a field holding v everywhere.
func constField(t *testing.T, times []int, lat, lon []float64, v float64) Field {
	t.Helper()
	values := make([]float64, len(times)*len(lat)*len(lon))
	for i := range values {
		values[i] = v
	}
	f, err := NewField(times, lat, lon, values)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	return f
}

// set writes v at (t, i, j).
func set(f Field, t, i, j int, v float64) {
	f.Values[(t*len(f.Lat)+i)*len(f.Lon)+j] = v
}
