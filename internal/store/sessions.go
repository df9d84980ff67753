package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/surfcast/internal/domain"
)

// chartColumns is the session_charts column list shared by insert and select.
const chartColumns = "time, wind_speed, wind_direction, wave_height, wave_period, wave_direction, air_temperature, water_temperature, weather"

// Save persists a new session. A fresh handle is assigned when the session
// has none; the header row and all chart snapshots are written in one
// transaction.
func (s *Store) Save(ctx context.Context, session *domain.Session) (err error) {
	defer s.observe("save", time.Now())(&err)

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertHeader(ctx, tx, session); err != nil {
		return fmt.Errorf("inserting session %s: %w", session.ID, err)
	}
	if err := insertCharts(ctx, tx, session.ID, session.Charts); err != nil {
		return fmt.Errorf("inserting charts for session %s: %w", session.ID, err)
	}
	return tx.Commit()
}

// Update rewrites a previously saved session in place. Chart snapshots are
// replaced wholesale so removed charts do not linger.
func (s *Store) Update(ctx context.Context, session *domain.Session) (err error) {
	defer s.observe("update", time.Now())(&err)

	if session.ID == "" {
		return ErrInvalidHandle
	}

	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE sessions SET surf_date = ?, start_time = ?, end_time = ?, rating = ?, memo = ?, is_pinned = ?`
	args := []any{
		session.Date.Unix(),
		session.StartTime.Unix(),
		session.EndTime.Unix(),
		session.Rating,
		session.Memo,
		session.Pinned,
	}
	if s.beachColumn != "" {
		query += fmt.Sprintf(", %s = ?", s.beachColumn)
		args = append(args, session.BeachID)
	}
	query += ` WHERE id = ?`
	args = append(args, session.ID)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", session.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_charts WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clearing charts for session %s: %w", session.ID, err)
	}
	if err := insertCharts(ctx, tx, session.ID, session.Charts); err != nil {
		return fmt.Errorf("inserting charts for session %s: %w", session.ID, err)
	}
	return tx.Commit()
}

// Delete removes a session and its chart snapshots.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer s.observe("delete", time.Now())(&err)

	if id == "" {
		return ErrInvalidHandle
	}

	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_charts WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("deleting charts for session %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// FetchByID loads one session with its chart snapshots.
func (s *Store) FetchByID(ctx context.Context, id string) (_ *domain.Session, err error) {
	defer s.observe("fetch_by_id", time.Now())(&err)

	row := s.readDB.QueryRowContext(ctx, s.selectSessionsSQL()+` WHERE id = ?`, id)
	session, err := scanSession(row, s.beachColumn != "")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching session %s: %w", id, err)
	}
	if err := s.loadCharts(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// FetchAll loads every session, newest surf date first.
func (s *Store) FetchAll(ctx context.Context) (_ []domain.Session, err error) {
	defer s.observe("fetch_all", time.Now())(&err)
	return s.fetchSessions(ctx, s.selectSessionsSQL()+` ORDER BY surf_date DESC, id`)
}

// FetchByBeach loads sessions for one beach, newest surf date first. When the
// schema carries no beach column the filter cannot be applied and every
// session is returned.
func (s *Store) FetchByBeach(ctx context.Context, beachID int64) (_ []domain.Session, err error) {
	defer s.observe("fetch_by_beach", time.Now())(&err)

	if s.beachColumn == "" {
		s.logger.Debug("no beach column; returning all sessions", "beach_id", beachID)
		return s.fetchSessions(ctx, s.selectSessionsSQL()+` ORDER BY surf_date DESC, id`)
	}
	query := fmt.Sprintf(`%s WHERE %s = ? ORDER BY surf_date DESC, id`, s.selectSessionsSQL(), s.beachColumn)
	return s.fetchSessions(ctx, query, beachID)
}

func (s *Store) fetchSessions(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows, s.beachColumn != "")
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		if err := s.loadCharts(ctx, &sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// selectSessionsSQL builds the header select for the resolved schema. Without
// a beach column the beach id scans as zero.
func (s *Store) selectSessionsSQL() string {
	columns := []string{"id"}
	if s.beachColumn != "" {
		columns = append(columns, s.beachColumn)
	}
	columns = append(columns, "surf_date", "start_time", "end_time", "rating", "memo", "is_pinned")
	return "SELECT " + strings.Join(columns, ", ") + " FROM sessions"
}

func (s *Store) insertHeader(ctx context.Context, tx *sql.Tx, session *domain.Session) error {
	columns := []string{"id", "surf_date", "start_time", "end_time", "rating", "memo", "is_pinned"}
	args := []any{
		session.ID,
		session.Date.Unix(),
		session.StartTime.Unix(),
		session.EndTime.Unix(),
		session.Rating,
		session.Memo,
		session.Pinned,
	}
	if s.beachColumn != "" {
		columns = append(columns, s.beachColumn)
		args = append(args, session.BeachID)
	}

	query := fmt.Sprintf(
		`INSERT INTO sessions (%s) VALUES (%s)`,
		strings.Join(columns, ", "),
		placeholders(len(columns)),
	)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func insertCharts(ctx context.Context, tx *sql.Tx, sessionID string, charts []domain.ChartSnapshot) error {
	if len(charts) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO session_charts (session_id, %s) VALUES (%s)`,
		chartColumns,
		placeholders(10),
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chart := range charts {
		var waveHeight sql.NullFloat64
		if chart.WaveHeight != nil {
			waveHeight = sql.NullFloat64{Float64: *chart.WaveHeight, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			sessionID,
			chart.Time.Unix(),
			chart.WindSpeed,
			chart.WindDirection,
			waveHeight,
			chart.WavePeriod,
			chart.WaveDirection,
			chart.AirTemperature,
			chart.WaterTemperature,
			chart.Weather.Code(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadCharts(ctx context.Context, session *domain.Session) error {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT `+chartColumns+` FROM session_charts WHERE session_id = ? ORDER BY time, id`,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("querying charts for session %s: %w", session.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			snapshot   domain.ChartSnapshot
			ts         int64
			waveHeight sql.NullFloat64
			weather    string
		)
		err := rows.Scan(
			&ts,
			&snapshot.WindSpeed,
			&snapshot.WindDirection,
			&waveHeight,
			&snapshot.WavePeriod,
			&snapshot.WaveDirection,
			&snapshot.AirTemperature,
			&snapshot.WaterTemperature,
			&weather,
		)
		if err != nil {
			return fmt.Errorf("scanning chart for session %s: %w", session.ID, err)
		}
		snapshot.Time = time.Unix(ts, 0).UTC()
		if waveHeight.Valid {
			snapshot.WaveHeight = &waveHeight.Float64
		}
		snapshot.Weather = domain.ConditionFromCode(weather)
		session.Charts = append(session.Charts, snapshot)
	}
	return rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner, hasBeach bool) (*domain.Session, error) {
	var (
		session          domain.Session
		date, start, end int64
	)

	dest := []any{&session.ID}
	if hasBeach {
		dest = append(dest, &session.BeachID)
	}
	dest = append(dest, &date, &start, &end, &session.Rating, &session.Memo, &session.Pinned)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	session.Date = time.Unix(date, 0).UTC()
	session.StartTime = time.Unix(start, 0).UTC()
	session.EndTime = time.Unix(end, 0).UTC()
	return &session, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// observe times a store operation and records its outcome once the wrapped
// call returns.
func (s *Store) observe(op string, start time.Time) func(*error) {
	return func(err *error) {
		outcome := "success"
		if *err != nil {
			outcome = "error"
		}
		s.metrics.StoreOps.WithLabelValues(op, outcome).Inc()
		s.metrics.StoreOpSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
