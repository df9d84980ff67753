package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int       { return &v }
func i64p(v int64) *int64 { return &v }

func rawRow(unix int64) RawForecast {
	return RawForecast{
		DocumentID: "1700000000",
		Timestamp:  i64p(unix),
	}
}

func TestNormalizeForecasts_SkipsMetadataMarker(t *testing.T) {
	rows := []RawForecast{
		{DocumentID: MetadataDocID, Timestamp: i64p(1700000000)},
		rawRow(1700003600),
	}

	charts, stats := NormalizeForecasts(rows, 7, time.Time{})
	assert.Len(t, charts, 1)
	assert.Equal(t, 1, stats.Skipped)
}

func TestNormalizeForecasts_SkipsRowsWithoutTimestamp(t *testing.T) {
	rows := []RawForecast{
		{DocumentID: "broken", WindSpeed: fp(3)},
		rawRow(1700000000),
	}

	charts, stats := NormalizeForecasts(rows, 7, time.Time{})
	assert.Len(t, charts, 1)
	assert.Equal(t, 1, stats.Skipped)
}

func TestNormalizeForecasts_SinceCutoff(t *testing.T) {
	rows := []RawForecast{
		rawRow(1700000000),
		rawRow(1700003600),
		rawRow(1700007200),
	}
	since := time.Unix(1700003600, 0).UTC()

	charts, stats := NormalizeForecasts(rows, 7, since)
	require.Len(t, charts, 2)
	assert.Equal(t, since, charts[0].Time)
	assert.Equal(t, 1, stats.Skipped)
}

func TestNormalizeForecasts_OrderedByTimeAscending(t *testing.T) {
	rows := []RawForecast{
		rawRow(1700007200),
		rawRow(1700000000),
		rawRow(1700003600),
	}

	charts, _ := NormalizeForecasts(rows, 7, time.Time{})
	require.Len(t, charts, 3)
	for i := 1; i < len(charts); i++ {
		assert.True(t, charts[i-1].Time.Before(charts[i].Time))
	}
}

func TestNormalizeForecasts_FullRow(t *testing.T) {
	row := RawForecast{
		DocumentID:        "1700000000",
		Timestamp:         i64p(1700000000),
		WindSpeed:         fp(6.0),
		WindDirection:     fp(210),
		WaveHeight:        fp(1.2),
		AirTemperature:    fp(18.5),
		PrecipProbability: fp(10),
		PrecipType:        ip(0),
		SkyCondition:      ip(1),
		Humidity:          fp(60),
		OMWaveHeight:      fp(1.4),
		OMWaveDirection:   fp(95),
		OMSeaSurfaceTemp:  fp(16.2),
	}

	charts, stats := NormalizeForecasts([]RawForecast{row}, 7, time.Time{})
	require.Len(t, charts, 1)
	c := charts[0]

	assert.Equal(t, int64(7), c.BeachID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), c.Time)
	assert.Equal(t, 6.0, c.WindSpeed)
	assert.Equal(t, 210.0, c.WindDirection)
	require.NotNil(t, c.WaveHeight)
	assert.Equal(t, 1.2, *c.WaveHeight, "primary sensor preferred over om")
	assert.InDelta(t, 4.98, c.WavePeriod, 1e-9)
	assert.Equal(t, 95.0, c.WaveDirection)
	assert.Equal(t, 18.5, c.AirTemperature)
	assert.Equal(t, 16.2, c.WaterTemperature)
	assert.Equal(t, ConditionClear, c.Weather)
	assert.Equal(t, 0, stats.Sparse)
}

func TestNormalizeForecasts_SentinelWaveHeight(t *testing.T) {
	t.Run("sentinel primary falls back to om", func(t *testing.T) {
		row := rawRow(1700000000)
		row.WaveHeight = fp(-950)
		row.OMWaveHeight = fp(0.8)

		charts, _ := NormalizeForecasts([]RawForecast{row}, 7, time.Time{})
		require.Len(t, charts, 1)
		require.NotNil(t, charts[0].WaveHeight)
		assert.Equal(t, 0.8, *charts[0].WaveHeight)
	})

	t.Run("both sentinel yields nil", func(t *testing.T) {
		row := rawRow(1700000000)
		row.WaveHeight = fp(950)
		row.OMWaveHeight = fp(-999)

		charts, _ := NormalizeForecasts([]RawForecast{row}, 7, time.Time{})
		require.Len(t, charts, 1)
		assert.Nil(t, charts[0].WaveHeight)
	})
}

func TestNormalizeForecasts_SparseRowDefaultsToZero(t *testing.T) {
	charts, stats := NormalizeForecasts([]RawForecast{rawRow(1700000000)}, 7, time.Time{})
	require.Len(t, charts, 1)
	c := charts[0]

	assert.Zero(t, c.WindSpeed)
	assert.Zero(t, c.WindDirection)
	assert.Nil(t, c.WaveHeight)
	assert.Zero(t, c.WavePeriod, "no wind means no period estimate")
	assert.Zero(t, c.AirTemperature)
	assert.Equal(t, ConditionUnknown, c.Weather)
	assert.Equal(t, 1, stats.Sparse)
}
