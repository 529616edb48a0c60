package domain

import (
	"fmt"
)

// Dataset is the seasonal input to the AHA computation: DJF-mean SLP with
// longitude in (-180, 180] and its global-mean series.
type Dataset struct {
	SLP        Field
	GlobalMean Series
	Source     string
}

// PrepareDataset reduces monthly SLP to DJF means, moves longitude to
// (-180, 180] and computes the global mean over the full grid.
func PrepareDataset(monthly MonthlyField, source string) (Dataset, error) {
	djf, err := DJFAverage(monthly)
	if err != nil {
		return Dataset{}, fmt.Errorf("djf average: %w", err)
	}
	djf = SwitchLongitudeRange(djf)

	global, err := GlobalMean(djf)
	if err != nil {
		return Dataset{}, fmt.Errorf("global mean: %w", err)
	}
	return Dataset{SLP: djf, GlobalMean: global, Source: source}, nil
}

// ComputeAHA returns the Azores High Area index in km² for each year of slp:
// the area of Azores cells whose normalized SLP exceeds their own
// mean + 0.5 std threshold.
func ComputeAHA(slp Field, globalMean Series, mode NormMode) (Series, error) {
	azores, err := TrimToAzores(slp)
	if err != nil {
		return Series{}, err
	}
	norm, err := Normalize(azores, globalMean, mode)
	if err != nil {
		return Series{}, err
	}
	mask, err := ExceedanceMask(norm)
	if err != nil {
		return Series{}, err
	}
	area, err := MaskArea(mask)
	if err != nil {
		return Series{}, err
	}

	const m2PerKm2 = MetersPerKm * MetersPerKm
	for i := range area.Values {
		area.Values[i] /= m2PerKm2
	}
	return area, nil
}

// CountExtremesFromDataset computes the AHA index of ds under p and returns
// the rolling count of its extreme years.
func CountExtremesFromDataset(ds Dataset, p Params) (CountSeries, error) {
	if err := p.Validate(); err != nil {
		return CountSeries{}, err
	}
	aha, err := ComputeAHA(ds.SLP, ds.GlobalMean, p.Norm)
	if err != nil {
		return CountSeries{}, err
	}
	return CountExtremes(aha, p.CutoffPercentile, p.Window)
}
