package domain

import (
	"fmt"
	"math"
	"slices"
)

// Snapshot is one year of normalized SLP anomaly over a region, relative to
// each cell's mean over the record.
type Snapshot struct {
	Grid
	Region string    `json:"region"`
	Year   int       `json:"year"`
	Values []float64 `json:"values"`
}

// At returns the anomaly at (lat, lon) index (i, j).
func (s Snapshot) At(i, j int) float64 { return s.Values[i*len(s.Lon)+j] }

// AnomalySnapshot trims ds to region, normalizes it with mode and returns the
// departure of year from each cell's temporal mean.
func AnomalySnapshot(ds Dataset, mode NormMode, region Region, year int) (Snapshot, error) {
	t := slices.Index(ds.SLP.Time, year)
	if t < 0 {
		return Snapshot{}, fmt.Errorf("%w: year %d not in dataset", ErrInvalidArgument, year)
	}
	sub, err := Trim(ds.SLP, region)
	if err != nil {
		return Snapshot{}, err
	}
	norm, err := Normalize(sub, ds.GlobalMean, mode)
	if err != nil {
		return Snapshot{}, err
	}

	cells := norm.Cells()
	out := Snapshot{Grid: norm.Grid.clone(), Region: region.Name, Year: year, Values: make([]float64, cells)}
	step := norm.Step(t)
	for k := range out.Values {
		sum, n := 0.0, 0
		for ti := range norm.Time {
			if v := norm.Values[ti*cells+k]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out.Values[k] = math.NaN()
			continue
		}
		out.Values[k] = step[k] - sum/float64(n)
	}
	return out, nil
}

// PeakYear returns the year with the largest finite value of s.
func PeakYear(s Series) (int, bool) {
	best, found := 0, false
	for k, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if !found || v > s.Values[best] {
			best, found = k, true
		}
	}
	if !found {
		return 0, false
	}
	return s.Time[best], true
}
