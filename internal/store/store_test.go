package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/surfcast/internal/domain"
	"github.com/couchcryptid/surfcast/internal/observability"
)

func openTestStore(t *testing.T, dbPath string) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(dbPath, logger, observability.NewMetricsForTesting())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return openTestStore(t, filepath.Join(t.TempDir(), "sessions.db"))
}

func testSession(beachID int64, date time.Time) *domain.Session {
	height := 1.4
	return &domain.Session{
		BeachID:   beachID,
		Date:      date,
		StartTime: date.Add(6 * time.Hour),
		EndTime:   date.Add(8 * time.Hour),
		Rating:    4,
		Memo:      "clean lines at dawn",
		Pinned:    true,
		Charts: []domain.ChartSnapshot{
			{
				Time:             date.Add(6 * time.Hour),
				WindSpeed:        4.2,
				WindDirection:    180,
				WaveHeight:       &height,
				WavePeriod:       3.5,
				WaveDirection:    170,
				AirTemperature:   21.5,
				WaterTemperature: 19.0,
				Weather:          domain.ConditionClear,
			},
			{
				Time:          date.Add(7 * time.Hour),
				WindSpeed:     5.0,
				WindDirection: 190,
				WavePeriod:    4.15,
				Weather:       domain.ConditionRain,
			},
		},
	}
}

func TestSaveAssignsHandleAndRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	date := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	session := testSession(2001, date)

	require.NoError(t, s.Save(ctx, session))
	require.NotEmpty(t, session.ID, "save should assign a handle")

	got, err := s.FetchByID(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, int64(2001), got.BeachID)
	assert.True(t, got.Date.Equal(date))
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "clean lines at dawn", got.Memo)
	assert.True(t, got.Pinned)

	require.Len(t, got.Charts, 2)
	require.NotNil(t, got.Charts[0].WaveHeight)
	assert.InDelta(t, 1.4, *got.Charts[0].WaveHeight, 1e-9)
	assert.Equal(t, domain.ConditionClear, got.Charts[0].Weather)
	assert.Nil(t, got.Charts[1].WaveHeight, "absent wave height survives the round trip")
	assert.Equal(t, domain.ConditionRain, got.Charts[1].Weather)
}

func TestFetchByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FetchByID(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchAllNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := testSession(2001, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	newer := testSession(2002, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	sessions, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)
}

func TestFetchByBeach(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	jeju := testSession(2001, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	busan := testSession(3001, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, jeju))
	require.NoError(t, s.Save(ctx, busan))

	sessions, err := s.FetchByBeach(ctx, 3001)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, busan.ID, sessions[0].ID)
}

func TestUpdateReplacesChartsWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := testSession(2001, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, session))

	session.Rating = 2
	session.Memo = "blown out by noon"
	session.Charts = session.Charts[:1]
	require.NoError(t, s.Update(ctx, session))

	got, err := s.FetchByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, "blown out by noon", got.Memo)
	assert.Len(t, got.Charts, 1, "removed charts must not linger")
}

func TestUpdateRequiresHandle(t *testing.T) {
	s := newTestStore(t)

	session := testSession(2001, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC))
	err := s.Update(context.Background(), session)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestUpdateUnknownHandle(t *testing.T) {
	s := newTestStore(t)

	session := testSession(2001, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC))
	session.ID = "ghost"
	err := s.Update(context.Background(), session)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := testSession(2001, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, session))

	require.NoError(t, s.Delete(ctx, session.ID))

	_, err := s.FetchByID(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, session.ID), ErrNotFound)
}

// seedLegacyDB creates a database with the given sessions DDL and rows,
// simulating a file written by an older release.
func seedLegacyDB(t *testing.T, dbPath, ddl string, inserts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(ddl)
	require.NoError(t, err)
	for _, stmt := range inserts {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
}

func TestLegacyBeachColumnName(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	seedLegacyDB(t, dbPath, `
		CREATE TABLE sessions (
			id         TEXT PRIMARY KEY,
			beachID    INTEGER,
			surf_date  INTEGER NOT NULL,
			start_time INTEGER NOT NULL,
			end_time   INTEGER NOT NULL,
			rating     INTEGER NOT NULL,
			memo       TEXT NOT NULL DEFAULT '',
			is_pinned  INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT INTO sessions (id, beachID, surf_date, start_time, end_time, rating, memo, is_pinned)
		 VALUES ('legacy-1', 3001, 1755129600, 1755151200, 1755158400, 5, 'old install', 1)`,
	)

	s := openTestStore(t, dbPath)
	ctx := context.Background()

	assert.Equal(t, "beachID", s.beachColumn)

	sessions, err := s.FetchByBeach(ctx, 3001)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "legacy-1", sessions[0].ID)
	assert.Equal(t, int64(3001), sessions[0].BeachID)

	// New writes keep using the legacy column.
	fresh := testSession(3001, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, fresh))

	sessions, err = s.FetchByBeach(ctx, 3001)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestMissingBeachColumn(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "no-beach.db")
	seedLegacyDB(t, dbPath, `
		CREATE TABLE sessions (
			id         TEXT PRIMARY KEY,
			surf_date  INTEGER NOT NULL,
			start_time INTEGER NOT NULL,
			end_time   INTEGER NOT NULL,
			rating     INTEGER NOT NULL,
			memo       TEXT NOT NULL DEFAULT '',
			is_pinned  INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT INTO sessions (id, surf_date, start_time, end_time, rating, memo, is_pinned)
		 VALUES ('no-beach-1', 1755129600, 1755151200, 1755158400, 3, '', 0)`,
	)

	s := openTestStore(t, dbPath)
	ctx := context.Background()

	assert.Equal(t, "", s.beachColumn)

	// Saves succeed without a beach id, and beach filtering degrades to a
	// full listing rather than failing.
	fresh := testSession(2001, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, fresh))

	sessions, err := s.FetchByBeach(ctx, 2001)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	got, err := s.FetchByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.BeachID, "beach id is not persisted without a column")
}
