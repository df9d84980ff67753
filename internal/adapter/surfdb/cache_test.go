package surfdb

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/surfcast/internal/domain"
	"github.com/couchcryptid/surfcast/internal/observability"
)

// countingSource counts calls per method.
type countingSource struct {
	directoryCalls int
	probeCalls     int
	fetchCalls     int
	beaches        []domain.Beach
}

func (m *countingSource) BeachDirectory(context.Context) ([]domain.Beach, error) {
	m.directoryCalls++
	return m.beaches, nil
}

func (m *countingSource) ProbeMetadata(_ context.Context, region string, beachID int64) (*domain.RegionMetadata, error) {
	m.probeCalls++
	return &domain.RegionMetadata{Region: region, BeachID: beachID}, nil
}

func (m *countingSource) ForecastDocuments(context.Context, string, int64, time.Time) ([]domain.RawForecast, error) {
	m.fetchCalls++
	return nil, nil
}

func TestCachedSource_DirectoryHit(t *testing.T) {
	inner := &countingSource{beaches: []domain.Beach{{ID: 1, Region: "jeju", Name: "Jungmun"}}}
	cached := NewCachedSource(inner, time.Minute, observability.NewMetricsForTesting())

	d1, err := cached.BeachDirectory(context.Background())
	require.NoError(t, err)
	d2, err := cached.BeachDirectory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, inner.directoryCalls, "second call served from cache")
}

func TestCachedSource_DirectoryExpires(t *testing.T) {
	inner := &countingSource{beaches: []domain.Beach{{ID: 1, Region: "jeju", Name: "Jungmun"}}}
	cached := NewCachedSource(inner, time.Minute, observability.NewMetricsForTesting())

	clock := clockwork.NewFakeClock()
	cached.SetClock(clock)

	_, err := cached.BeachDirectory(context.Background())
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	_, err = cached.BeachDirectory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.directoryCalls)
}

func TestCachedSource_EmptyDirectoryNotCached(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, time.Minute, observability.NewMetricsForTesting())

	_, err := cached.BeachDirectory(context.Background())
	require.NoError(t, err)
	_, err = cached.BeachDirectory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.directoryCalls)
}

func TestCachedSource_ProbesAndFetchesPassThrough(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, time.Minute, observability.NewMetricsForTesting())

	for range 3 {
		_, err := cached.ProbeMetadata(context.Background(), "jeju", 7)
		require.NoError(t, err)
		_, err = cached.ForecastDocuments(context.Background(), "jeju", 7, time.Time{})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, inner.probeCalls, "metadata is refreshed on every fetch")
	assert.Equal(t, 3, inner.fetchCalls, "forecast listings are never cached")
}
