package domain

import (
	"errors"
	"fmt"
	"time"
)

// Session is a user-logged surf outing. ID is the opaque store handle,
// empty until the session is first persisted. Charts are the forecast
// snapshots covering the outing, ordered by time ascending.
type Session struct {
	ID        string          `json:"id,omitempty"`
	BeachID   int64           `json:"beach_id"`
	Date      time.Time       `json:"date"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Rating    int             `json:"rating"`
	Memo      string          `json:"memo,omitempty"`
	Pinned    bool            `json:"pinned"`
	Charts    []ChartSnapshot `json:"charts,omitempty"`
}

// ChartSnapshot is the embedded, persisted form of a Chart inside a Session.
// The beach id is inherited from the owning session.
type ChartSnapshot struct {
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

// Snapshot converts a Chart into its embeddable session form.
func (c Chart) Snapshot() ChartSnapshot {
	return ChartSnapshot{
		Time:             c.Time,
		WindSpeed:        c.WindSpeed,
		WindDirection:    c.WindDirection,
		WaveHeight:       c.WaveHeight,
		WavePeriod:       c.WavePeriod,
		WaveDirection:    c.WaveDirection,
		AirTemperature:   c.AirTemperature,
		WaterTemperature: c.WaterTemperature,
		Weather:          c.Weather,
	}
}

// Chart reconstructs a full Chart from a snapshot and the owning session's
// beach id.
func (cs ChartSnapshot) Chart(beachID int64) Chart {
	return Chart{
		BeachID:          beachID,
		Time:             cs.Time,
		WindSpeed:        cs.WindSpeed,
		WindDirection:    cs.WindDirection,
		WaveHeight:       cs.WaveHeight,
		WavePeriod:       cs.WavePeriod,
		WaveDirection:    cs.WaveDirection,
		AirTemperature:   cs.AirTemperature,
		WaterTemperature: cs.WaterTemperature,
		Weather:          cs.Weather,
	}
}

// Validate checks the session's own invariants. The store does not call this;
// enforcement stays with the write surface so legacy rows remain readable.
func (s *Session) Validate() error {
	if s.EndTime.Before(s.StartTime) {
		return errors.New("session end time precedes start time")
	}
	if s.Rating < 1 || s.Rating > 5 {
		return fmt.Errorf("session rating %d outside [1,5]", s.Rating)
	}
	return nil
}
