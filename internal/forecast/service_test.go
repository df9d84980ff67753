package forecast_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/surfcast/internal/domain"
	"github.com/couchcryptid/surfcast/internal/forecast"
	"github.com/couchcryptid/surfcast/internal/observability"
)

// --- mocks ---

// mockSource routes probes and fetches by region name. Probe delays let
// tests race the fan-out deliberately.
type mockSource struct {
	holds      map[string]bool          // region -> probe confirms
	probeErr   map[string]error         // region -> probe failure
	probeDelay map[string]time.Duration // region -> artificial latency
	rows       []domain.RawForecast
	fetchErr   error
	probeCalls atomic.Int64
}

func (m *mockSource) ProbeMetadata(ctx context.Context, region string, beachID int64) (*domain.RegionMetadata, error) {
	m.probeCalls.Add(1)
	if d := m.probeDelay[region]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.probeErr[region]; err != nil {
		return nil, err
	}
	if !m.holds[region] {
		return nil, nil
	}
	return &domain.RegionMetadata{BeachID: beachID, Region: region}, nil
}

func (m *mockSource) ForecastDocuments(_ context.Context, region string, beachID int64, _ time.Time) ([]domain.RawForecast, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.rows, nil
}

func (m *mockSource) BeachDirectory(context.Context) ([]domain.Beach, error) {
	return []domain.Beach{{ID: 1, Region: "jeju", Name: "Jungmun"}}, nil
}

var testRegions = []string{"jeju", "busan", "gangwon"}

func newService(src domain.ForecastSource) *forecast.Service {
	return forecast.New(src, testRegions, slog.Default(), observability.NewMetricsForTesting())
}

func i64p(v int64) *int64 { return &v }

func rawRows(unix ...int64) []domain.RawForecast {
	rows := make([]domain.RawForecast, len(unix))
	for i, u := range unix {
		rows[i] = domain.RawForecast{DocumentID: "doc", Timestamp: i64p(u)}
	}
	return rows
}

// --- LocateRegion ---

func TestLocateRegion_FirstByInputOrderNotArrival(t *testing.T) {
	// jeju and gangwon both hold the beach, but jeju answers last.
	src := &mockSource{
		holds:      map[string]bool{"jeju": true, "gangwon": true},
		probeDelay: map[string]time.Duration{"jeju": 50 * time.Millisecond},
	}

	region, err := newService(src).LocateRegion(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "jeju", region)
	assert.Equal(t, int64(3), src.probeCalls.Load(), "all candidates probed")
}

func TestLocateRegion_ErrorIgnoredWhenAnotherRegionConfirms(t *testing.T) {
	src := &mockSource{
		holds:    map[string]bool{"busan": true},
		probeErr: map[string]error{"jeju": errors.New("connection reset")},
	}

	region, err := newService(src).LocateRegion(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "busan", region)
}

func TestLocateRegion_FirstErrorWhenNoneConfirm(t *testing.T) {
	probeErr := errors.New("connection reset")
	src := &mockSource{
		probeErr: map[string]error{"busan": probeErr},
	}

	region, err := newService(src).LocateRegion(context.Background(), 7)
	require.ErrorIs(t, err, probeErr)
	assert.Empty(t, region)
}

func TestLocateRegion_DefinitivelyAbsent(t *testing.T) {
	src := &mockSource{}

	region, err := newService(src).LocateRegion(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, region)
}

// --- ChartsForBeach ---

func TestChartsForBeach_HappyPath(t *testing.T) {
	src := &mockSource{
		holds: map[string]bool{"busan": true},
		rows:  rawRows(1700007200, 1700000000, 1700003600),
	}

	charts, err := newService(src).ChartsForBeach(context.Background(), 7, time.Time{})
	require.NoError(t, err)
	require.Len(t, charts, 3)
	assert.Equal(t, int64(7), charts[0].BeachID)
	for i := 1; i < len(charts); i++ {
		assert.True(t, charts[i-1].Time.Before(charts[i].Time))
	}
}

func TestChartsForBeach_BeachNotFound(t *testing.T) {
	src := &mockSource{}

	_, err := newService(src).ChartsForBeach(context.Background(), 7, time.Time{})
	require.ErrorIs(t, err, forecast.ErrBeachNotFound)
}

func TestChartsForBeach_FetchFailureIsTerminal(t *testing.T) {
	fetchErr := errors.New("remote unavailable")
	src := &mockSource{
		holds:    map[string]bool{"jeju": true},
		fetchErr: fetchErr,
	}

	charts, err := newService(src).ChartsForBeach(context.Background(), 7, time.Time{})
	require.ErrorIs(t, err, fetchErr)
	assert.Nil(t, charts, "no partial result alongside an error")
}

// --- LatestChart / Summary ---

func TestLatestChart(t *testing.T) {
	src := &mockSource{
		holds: map[string]bool{"jeju": true},
		rows:  rawRows(1700000000, 1700007200),
	}

	latest, err := newService(src).LatestChart(context.Background(), 7, time.Time{})
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, time.Unix(1700007200, 0).UTC(), latest.Time)
}

func TestLatestChart_NoForecasts(t *testing.T) {
	src := &mockSource{holds: map[string]bool{"jeju": true}}

	latest, err := newService(src).LatestChart(context.Background(), 7, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestSummary(t *testing.T) {
	wind := 4.0
	rows := rawRows(1700000000)
	rows[0].WindSpeed = &wind
	src := &mockSource{
		holds: map[string]bool{"jeju": true},
		rows:  rows,
	}

	summary, err := newService(src).Summary(context.Background(), []int64{1, 2}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.0, summary.WindSpeed, 1e-9)
}

func TestSummary_PropagatesFailure(t *testing.T) {
	src := &mockSource{} // no region holds any beach

	_, err := newService(src).Summary(context.Background(), []int64{1}, time.Time{})
	require.ErrorIs(t, err, forecast.ErrBeachNotFound)
}
