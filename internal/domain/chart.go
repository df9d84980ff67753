package domain

import (
	"sort"
	"time"
)

// MetadataDocID is the reserved document id for per-location metadata markers
// in the remote store. Marker documents carry no forecast payload and are
// skipped during normalization.
const MetadataDocID = "_metadata"

// Chart is one normalized forecast sample at a point in time for a beach.
// WaveHeight is nil when the raw reading fell in the sentinel band; all other
// scalars default to zero when the source field is absent.
type Chart struct {
	BeachID          int64     `json:"beach_id"`
	Time             time.Time `json:"time"`
	WindSpeed        float64   `json:"wind_speed"`
	WindDirection    float64   `json:"wind_direction"`
	WaveHeight       *float64  `json:"wave_height,omitempty"`
	WavePeriod       float64   `json:"wave_period"`
	WaveDirection    float64   `json:"wave_direction"`
	AirTemperature   float64   `json:"air_temperature"`
	WaterTemperature float64   `json:"water_temperature"`
	Weather          Condition `json:"weather"`
}

// RawForecast is one forecast document as stored remotely. All payload fields
// are optional; the feed frequently omits whole groups of sensors. The om_*
// fields come from a secondary marine model blended into the same document.
type RawForecast struct {
	DocumentID string `json:"-"`

	BeachID           *int64   `json:"beach_id"`
	Region            *string  `json:"region"`
	Beach             *string  `json:"beach"`
	Datetime          *string  `json:"datetime"`
	Timestamp         *int64   `json:"timestamp"`
	WindSpeed         *float64 `json:"wind_speed"`
	WindDirection     *float64 `json:"wind_direction"`
	WaveHeight        *float64 `json:"wave_height"`
	AirTemperature    *float64 `json:"air_temperature"`
	PrecipProbability *float64 `json:"precipitation_probability"`
	PrecipType        *int     `json:"precipitation_type"`
	SkyCondition      *int     `json:"sky_condition"`
	Humidity          *float64 `json:"humidity"`
	Precipitation     *float64 `json:"precipitation"`
	Snow              *float64 `json:"snow"`
	OMWaveHeight      *float64 `json:"om_wave_height"`
	OMWaveDirection   *float64 `json:"om_wave_direction"`
	OMSeaSurfaceTemp  *float64 `json:"om_sea_surface_temperature"`
}

// NormalizeStats reports what normalization discarded or zero-filled.
type NormalizeStats struct {
	Skipped int // metadata markers, rows without a timestamp, rows before since
	Sparse  int // rows normalized with no numeric sensor payload at all
}

// NormalizeForecasts turns raw remote documents into canonical Charts ordered
// by time ascending. Metadata markers and rows without a timestamp are
// skipped; rows before since are dropped. Missing scalar fields default to
// zero rather than failing the batch, and entirely sensor-less rows are
// counted as sparse so callers can surface them.
func NormalizeForecasts(rows []RawForecast, beachID int64, since time.Time) ([]Chart, NormalizeStats) {
	charts := make([]Chart, 0, len(rows))
	var stats NormalizeStats

	for _, row := range rows {
		if row.DocumentID == MetadataDocID || row.Timestamp == nil {
			stats.Skipped++
			continue
		}
		t := time.Unix(*row.Timestamp, 0).UTC()
		if !since.IsZero() && t.Before(since) {
			stats.Skipped++
			continue
		}

		if isSparse(row) {
			stats.Sparse++
		}

		charts = append(charts, normalizeRow(row, beachID, t))
	}

	sort.SliceStable(charts, func(i, j int) bool {
		return charts[i].Time.Before(charts[j].Time)
	})

	return charts, stats
}

func normalizeRow(row RawForecast, beachID int64, t time.Time) Chart {
	chart := Chart{
		BeachID:          beachID,
		Time:             t,
		WindSpeed:        deref(row.WindSpeed),
		WindDirection:    deref(row.WindDirection),
		WaveDirection:    deref(row.OMWaveDirection),
		AirTemperature:   deref(row.AirTemperature),
		WaterTemperature: deref(row.OMSeaSurfaceTemp),
	}

	// Primary wave height sensor first; the secondary marine model fills in
	// when the primary reading is absent or sentinel-valued.
	chart.WaveHeight = FilterSentinel(row.WaveHeight)
	if chart.WaveHeight == nil {
		chart.WaveHeight = FilterSentinel(row.OMWaveHeight)
	}

	// The feed carries no measured wave period, so the wind-derived estimate
	// is the only source. Zero means no estimate was possible.
	if period := EstimateWavePeriod(row.WindSpeed); period != nil {
		chart.WavePeriod = *period
	}

	chart.Weather = Classify(
		derefInt(row.SkyCondition),
		derefInt(row.PrecipType),
		row.Humidity,
		row.WindSpeed,
		row.PrecipProbability,
	)

	return chart
}

// isSparse reports whether a row carries no numeric sensor payload at all.
// Such rows normalize into plausible-looking all-zero charts, so they are
// counted for observability.
func isSparse(row RawForecast) bool {
	return row.WindSpeed == nil &&
		row.WindDirection == nil &&
		row.WaveHeight == nil &&
		row.AirTemperature == nil &&
		row.OMWaveHeight == nil &&
		row.OMWaveDirection == nil &&
		row.OMSeaSurfaceTemp == nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
