// Package domain computes the Azores High Area (AHA) index and its derived
// extreme-event counts from gridded sea-level pressure (SLP).
//
// # Data Source
//
// Input is monthly SLP on a regular latitude/longitude grid, typically CMIP or
// CESM model output ("PSL", Pa) loaded from NetCDF by the netcdf adapter. The
// package itself performs no I/O; every function takes in-memory values and
// returns newly allocated ones.
//
// # Grid Conventions
//
// Values are stored row-major in (time, lat, lon) order:
//
//	index = (t*len(Lat) + i)*len(Lon) + j
//
// Coordinates are carried alongside the values as explicit arrays ([Grid]),
// and every element-wise operation between two objects validates that their
// time labels agree before touching any value ([ErrDimensionMismatch]).
//
// Longitude may arrive in [0, 360); [SwitchLongitudeRange] moves it to
// (-180, 180] and sorts it ascending so that the fixed regions below can be
// selected by label.
//
// Seasonal aggregation ([DJFAverage]) replaces monthly timestamps with the
// integer calendar year of the January in each Dec-Jan-Feb season.
//
// # Regions
//
//	Azores:         lon [-60, 10], lat [10, 52]
//	North Atlantic: lon [-70, 15], lat [0, 70]
//
// Bounds are inclusive; selection keeps the grid points whose labels fall
// inside the rectangle and never interpolates.
//
// # AHA Index
//
// For each grid cell of the Azores region the normalized SLP is compared
// against the cell's own threshold:
//
//	tau(lat, lon) = mean_t(slp) + 0.5 * std_t(slp)
//
// where std is the population standard deviation (ddof = 0). The AHA value for
// a year is the spherical area, in km², of the cells exceeding tau:
//
//	dA(lat) = R² * cos(phi) * dphi * dtheta
//
// Normalization ([NormMode]) subtracts the global mean SLP, its linear trend,
// or nothing.
//
// # Extreme Counts
//
// An extreme year is one whose AHA exceeds the cutoff percentile (linear
// interpolation between order statistics) of the whole series. [CountExtremes]
// reports the centered rolling count of extreme years and drops
// round((W-1)/2) points from each end of the series.
package domain
