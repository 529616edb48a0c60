package domain

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CellThresholds returns the per-cell mean + ThresholdStdFactor*std over time,
// laid out as one (lat, lon) slab. NaN samples are skipped; a cell with no
// finite samples gets a NaN threshold, and a cell whose samples are all equal
// gets exactly that value so none of them exceed it.
func CellThresholds(f Field) ([]float64, error) {
	if len(f.Time) == 0 {
		return nil, fmt.Errorf("%w: threshold needs at least one time step", ErrPreconditionViolation)
	}
	cells := f.Cells()
	thresholds := make([]float64, cells)
	samples := make([]float64, 0, len(f.Time))
	for k := 0; k < cells; k++ {
		samples = samples[:0]
		for t := range f.Time {
			if v := f.Values[t*cells+k]; !math.IsNaN(v) {
				samples = append(samples, v)
			}
		}
		if len(samples) == 0 {
			thresholds[k] = math.NaN()
			continue
		}
		if lo := floats.Min(samples); lo == floats.Max(samples) {
			thresholds[k] = lo
			continue
		}
		mean, std := stat.PopMeanStdDev(samples, nil)
		thresholds[k] = refineMean(samples, mean) + ThresholdStdFactor*std
	}
	return thresholds, nil
}

// refineMean applies one correction pass to a summed mean, recovering the
// rounding error of the first pass.
func refineMean(samples []float64, mean float64) float64 {
	var residual float64
	for _, v := range samples {
		residual += v - mean
	}
	return mean + residual/float64(len(samples))
}

// ExceedanceMask flags every (time, lat, lon) value strictly greater than its
// cell's threshold.
func ExceedanceMask(f Field) (Mask, error) {
	thresholds, err := CellThresholds(f)
	if err != nil {
		return Mask{}, err
	}
	cells := f.Cells()
	m := Mask{Grid: f.Grid.clone(), Time: slices.Clone(f.Time), Values: make([]bool, len(f.Values))}
	for k, v := range f.Values {
		// NaN compares false on either side.
		m.Values[k] = v > thresholds[k%cells]
	}
	return m, nil
}
