package domain

import "slices"

// IndexRecord is one year of a report, flattened for row-oriented sinks.
type IndexRecord struct {
	RunID   string  `json:"run_id"`
	Year    int     `json:"year"`
	AHAKm2  float64 `json:"aha_km2"`
	Extreme bool    `json:"extreme"`
	// RollingCount is nil for years dropped by edge trimming.
	RollingCount *int `json:"rolling_count"`
	Truncated    bool `json:"truncated_window,omitempty"`
}

// Records flattens r into one record per AHA year in time order.
func (r Report) Records() []IndexRecord {
	counts := make(map[int]int, r.Extremes.Len())
	for k, year := range r.Extremes.Time {
		counts[year] = r.Extremes.Counts[k]
	}

	out := make([]IndexRecord, r.AHA.Len())
	for k, year := range r.AHA.Time {
		v := r.AHA.Values[k]
		rec := IndexRecord{
			RunID:     r.RunID,
			Year:      year,
			AHAKm2:    v,
			Extreme:   v > r.Threshold,
			Truncated: slices.Contains(r.Extremes.Truncated, year),
		}
		if c, ok := counts[year]; ok {
			rec.RollingCount = &c
		}
		out[k] = rec
	}
	return out
}
