// Package domain models surf forecast data and user surf sessions.
//
// # Data Source
//
// Forecast documents come from a remote document store partitioned by region.
// Each beach owns a collection of hourly documents ordered by a unix
// "timestamp" field, plus one reserved "_metadata" marker document describing
// the beach (see [MetadataDocID]). Documents blend two upstreams: a national
// weather feed (wind, air temperature, humidity, sky and precipitation
// fields) and a secondary marine model whose fields carry an "om_" prefix
// (wave height and direction, sea surface temperature).
//
// # Field Conventions
//
// Sentinel values:
//
//	Wave height readings outside [-900, 900) are "no reading" placeholders
//	(the feed uses ±900-series codes for missing sensors). [FilterSentinel]
//	maps them to nil; a Chart's WaveHeight is the only optional scalar.
//
// Sky condition codes:
//
//	1 = clear, 3 = partly cloudy, 4 = overcast. Other values are unknown.
//
// Precipitation type codes:
//
//	0 = none, 1/4 = rain (incl. showers), 2/3 = snow and sleet.
//	A non-zero precipitation type always overrides the sky condition.
//
// Fog:
//
//	Humidity ≥ 95% with wind ≤ 2.0 m/s classifies as fog before any sky rule
//	applies. Missing humidity or wind biases toward "not fog".
//
// Wave period:
//
//	The feed carries no measured period. [EstimateWavePeriod] derives one
//	from wind speed (0.83 s per m/s, clamped to 2–18 s); it is a heuristic,
//	not a reading.
//
// # Sessions
//
// A [Session] is a user-authored surf outing with a rating, memo, pin flag,
// and embedded [ChartSnapshot] children inherited from the forecast at the
// time of the outing. Snapshots persist the stable condition code (see
// [Condition.Code]); icon names are a presentation concern derived on read.
//
// The history pipeline ([TransformSessions], [GroupChartsByDay],
// [AverageCharts]) is pure and safe to call from any goroutine.
package domain
