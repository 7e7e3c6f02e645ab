// Package domain models daily gridded weather data for a fixed set of
// Norwegian cities and the statistics derived from it.
//
// # Data Source
//
// Input is a seNorge-style archive: one NetCDF file per variable per year,
// laid out as
//
//	{data_dir}/{var}/{var}_{year}.nc   e.g. rr/rr_2024.nc
//
// Each file holds a (time, Y, X) field on a projected grid together with 2-D
// lat(Y,X) and lon(Y,X) coordinate variables. Cells outside the land mask are
// filled and decode to NaN.
//
// # Variables
//
//	tg  daily mean temperature (°C)
//	tn  daily minimum temperature (°C)
//	rr  daily accumulated precipitation (mm)
//
// # Spatial Subsetting
//
// A city is represented by a lat/lon bounding box, inclusive on all four
// edges. Every grid cell whose centre falls inside the box contributes to
// the city value for a day; the city value is the plain arithmetic mean of
// the finite contributing cells. A cos(lat)-weighted mean is available but is
// not used by the statistics table.
//
// # Monthly Statistics
//
// For a city, a calendar month and a target year:
//
//	percent_days_precipitation          rr > 0
//	percent_days_extreme_precipitation  rr > P90 of the climatology
//	percent_days_below_zero_degree      tn < 0
//	min/max/median daily mean temperature, mean temperature (tg)
//
// Percentages count over every day of the month, so days with no finite data
// stay in the denominator. All values are rounded to one decimal.
//
// # Climatology
//
// The extreme-precipitation threshold is the 90th percentile of the daily city
// precipitation for the same month over the climatology window, the
// window_years years immediately preceding the target year:
//
//	target 2024, window 20  →  2004 … 2023
//
// The quantile interpolates linearly between closest ranks, h = (n-1)·q.
package domain
