package domain

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/montanaflynn/stats"
)

// clock stamps Report.ComputedAt. nil means the real clock.
var clock atomic.Pointer[clockwork.Clock]

// SetClock replaces the clock that stamps reports. nil restores the real
// clock. It is safe to call while reports are being built.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock.Store(nil)
		return
	}
	clock.Store(&c)
}

func now() time.Time {
	if c := clock.Load(); c != nil {
		return (*c).Now()
	}
	return time.Now()
}

// Summary describes the distribution of an AHA series, in km².
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Report is the result of one AHA run, handed to the output sinks.
type Report struct {
	RunID      string      `json:"run_id"`
	ComputedAt time.Time   `json:"computed_at"`
	Source     string      `json:"source"`
	Params     Params      `json:"params"`
	AHA        Series      `json:"aha_km2"`
	Threshold  float64     `json:"extreme_threshold_km2"`
	Extremes   CountSeries `json:"extreme_counts"`
	Summary    Summary     `json:"summary"`
	// Peak is the North Atlantic anomaly in the year of largest AHA, nil when
	// the grid does not cover that region.
	Peak *Snapshot `json:"-"`
}

// Calculator produces AHA reports for a set of parameters.
type Calculator interface {
	Compute(ctx context.Context, p Params) (Report, error)
}

// Summarize computes descriptive statistics of s, skipping NaN values. The
// standard deviation is the population one, like the cell thresholds.
func Summarize(s Series) (Summary, error) {
	data := make(stats.Float64Data, 0, s.Len())
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return Summary{}, fmt.Errorf("%w: summary of an empty series", ErrPreconditionViolation)
	}

	var (
		sum Summary
		err error
	)
	if sum.Mean, err = data.Mean(); err != nil {
		return Summary{}, fmt.Errorf("summary mean: %w", err)
	}
	if sum.StdDev, err = data.StandardDeviation(); err != nil {
		return Summary{}, fmt.Errorf("summary std: %w", err)
	}
	if sum.Min, err = data.Min(); err != nil {
		return Summary{}, fmt.Errorf("summary min: %w", err)
	}
	if sum.Max, err = data.Max(); err != nil {
		return Summary{}, fmt.Errorf("summary max: %w", err)
	}
	if sum.Median, err = data.Median(); err != nil {
		return Summary{}, fmt.Errorf("summary median: %w", err)
	}
	if sum.P90, err = Quantile(data, 0.9); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// BuildReport runs the full AHA computation on ds with p.
func BuildReport(ds Dataset, p Params) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	aha, err := ComputeAHA(ds.SLP, ds.GlobalMean, p.Norm)
	if err != nil {
		return Report{}, fmt.Errorf("compute aha: %w", err)
	}
	extremes, err := CountExtremes(aha, p.CutoffPercentile, p.Window)
	if err != nil {
		return Report{}, fmt.Errorf("count extremes: %w", err)
	}
	threshold, err := Quantile(aha.Values, p.CutoffPercentile/100)
	if err != nil {
		return Report{}, err
	}
	summary, err := Summarize(aha)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		RunID:      newRunID(),
		ComputedAt: now().UTC(),
		Source:     ds.Source,
		Params:     p,
		AHA:        aha,
		Threshold:  threshold,
		Extremes:   extremes,
		Summary:    summary,
	}
	if year, ok := PeakYear(aha); ok {
		if snap, err := AnomalySnapshot(ds, p.Norm, NorthAtlantic, year); err == nil {
			r.Peak = &snap
		}
	}
	return r, nil
}

// newRunID returns a time-ordered UUID v7, falling back to v4.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
