package domain

import "math"

// Physical constants.
const (
	RadPerDeg   = 2 * math.Pi / 360 // radians per degree
	EarthRadius = 6.371e6           // m
	MetersPerKm = 1000
)

// ThresholdStdFactor scales the per-cell standard deviation added to the mean
// to form the exceedance threshold.
const ThresholdStdFactor = 0.5

// Defaults for the extreme-event counter.
const (
	DefaultCutoffPercentile = 90.0
	DefaultWindow           = 25
)
