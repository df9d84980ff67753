package domain

import "math"

// resultantEpsilon is the magnitude below which a circular mean is considered
// undefined: the direction vectors cancel out.
const resultantEpsilon = 1e-6

// Summary is a cross-beach rollup of the latest chart per beach. Directional
// fields are circular means and are nil when the constituent directions
// cancel out; WaveHeight averages only the beaches with a defined reading.
type Summary struct {
	Count            int      `json:"count"`
	WindSpeed        float64  `json:"wind_speed"`
	WaveHeight       *float64 `json:"wave_height,omitempty"`
	WavePeriod       float64  `json:"wave_period"`
	WindDirection    *float64 `json:"wind_direction,omitempty"`
	WaveDirection    *float64 `json:"wave_direction,omitempty"`
}

// AverageCharts computes a Summary over one latest chart per beach.
// Scalars use arithmetic means; directions use circular means.
func AverageCharts(charts []Chart) Summary {
	summary := Summary{Count: len(charts)}
	if len(charts) == 0 {
		return summary
	}

	var sumWind, sumPeriod, sumHeight float64
	var heightCount int
	windDirs := make([]float64, 0, len(charts))
	waveDirs := make([]float64, 0, len(charts))

	for _, c := range charts {
		sumWind += c.WindSpeed
		sumPeriod += c.WavePeriod
		if c.WaveHeight != nil {
			sumHeight += *c.WaveHeight
			heightCount++
		}
		windDirs = append(windDirs, c.WindDirection)
		waveDirs = append(waveDirs, c.WaveDirection)
	}

	n := float64(len(charts))
	summary.WindSpeed = sumWind / n
	summary.WavePeriod = sumPeriod / n
	if heightCount > 0 {
		h := sumHeight / float64(heightCount)
		summary.WaveHeight = &h
	}
	summary.WindDirection = CircularMean(windDirs)
	summary.WaveDirection = CircularMean(waveDirs)

	return summary
}

// CircularMean averages angular data in degrees. 359 and 1 average to 0, not
// 180. Returns nil for empty input or when the summed unit vectors nearly
// cancel, meaning no direction is defined.
func CircularMean(degrees []float64) *float64 {
	if len(degrees) == 0 {
		return nil
	}

	var sumSin, sumCos float64
	for _, d := range degrees {
		rad := d * math.Pi / 180
		sumSin += math.Sin(rad)
		sumCos += math.Cos(rad)
	}

	magnitude := math.Hypot(sumSin, sumCos) / float64(len(degrees))
	if magnitude < resultantEpsilon {
		return nil
	}

	deg := math.Atan2(sumSin, sumCos) * 180 / math.Pi
	deg = math.Mod(deg+360, 360)
	return &deg
}
