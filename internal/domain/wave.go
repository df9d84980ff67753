package domain

import "math"

const (
	// Sentinel band for wave height readings. Values outside [-900, 900)
	// are "no reading" placeholders from the upstream feed.
	sentinelMin = -900.0
	sentinelMax = 900.0

	// Wave period estimation bounds in seconds.
	minWavePeriod = 2.0
	maxWavePeriod = 18.0

	// Beaufort-like ratio between wind speed (m/s) and wave period (s).
	windToPeriodRatio = 0.83
)

// FilterSentinel drops out-of-range sensor values. A reading inside the
// sentinel band passes through; anything else becomes nil.
func FilterSentinel(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if *v < sentinelMin || *v >= sentinelMax {
		return nil
	}
	return v
}

// EstimateWavePeriod derives a rough wave period from wind speed, clamped to
// [2.0, 18.0] seconds. Returns nil when wind speed is absent, non-finite, or
// not positive. The result is a heuristic, used only when the feed carries no
// measured period.
func EstimateWavePeriod(windSpeed *float64) *float64 {
	if windSpeed == nil {
		return nil
	}
	w := *windSpeed
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return nil
	}

	period := windToPeriodRatio * w
	if period < minWavePeriod {
		period = minWavePeriod
	}
	if period > maxWavePeriod {
		period = maxWavePeriod
	}
	return &period
}
