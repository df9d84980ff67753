// Package store persists user surf sessions in a local SQLite database.
//
// The store owns two connections: a single-connection WAL writer that
// serializes all mutations, and a shared read-only connection for queries.
// Session rows from older installs may carry the beach column under a legacy
// name, or not at all; the column is resolved once at open and every query
// adapts to it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/surfcast/internal/observability"
)

var (
	// ErrNotFound reports that no session exists for a handle.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidHandle reports an operation that requires a persisted
	// session on one that was never saved.
	ErrInvalidHandle = errors.New("session has no handle")
)

// beachColumnAliases are the column names the beach id may live under,
// newest first.
var beachColumnAliases = []string{"beach_id", "beachID"}

// Store is the local session store. All mutations go through its serialized
// write connection; no other component mutates session data.
type Store struct {
	writeDB *sql.DB
	readDB  *sql.DB
	logger  *slog.Logger
	metrics *observability.Metrics

	// beachColumn is the resolved beach id column name, empty when the
	// schema carries none.
	beachColumn string
}

// Open opens (creating if necessary) the session database at dbPath.
func Open(dbPath string, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	writeDB, err := sql.Open("sqlite", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write connection: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := writeDB.Exec(pragma); err != nil {
			writeDB.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if err := initSchema(writeDB); err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	beachColumn, err := resolveBeachColumn(writeDB)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("resolving beach column: %w", err)
	}
	if beachColumn == "" {
		logger.Warn("sessions schema has no beach column; beach filtering degraded", "db_path", dbPath)
	}

	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read connection: %w", err)
	}

	return &Store{
		writeDB:     writeDB,
		readDB:      readDB,
		logger:      logger,
		metrics:     metrics,
		beachColumn: beachColumn,
	}, nil
}

// Ping verifies the read connection is usable, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.readDB.PingContext(ctx)
}

// Close releases both database handles.
func (s *Store) Close() error {
	writeErr := s.writeDB.Close()
	readErr := s.readDB.Close()
	return errors.Join(writeErr, readErr)
}

// initSchema creates the session tables when absent. An existing sessions
// table is left untouched so legacy column layouts survive.
func initSchema(db *sql.DB) error {
	var exists int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sessions'`,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking for sessions table: %w", err)
	}
	if exists > 0 {
		// Child table may still be missing on very old installs.
		_, err = db.Exec(createChartsSQL)
		return err
	}

	_, err = db.Exec(createSchemaSQL)
	return err
}

// resolveBeachColumn inspects the live sessions schema once and picks the
// column the beach id lives under, if any.
func resolveBeachColumn(db *sql.DB) (string, error) {
	rows, err := db.Query(`PRAGMA table_info(sessions)`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return "", err
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for _, alias := range beachColumnAliases {
		if columns[alias] {
			return alias, nil
		}
	}
	return "", nil
}

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    beach_id   INTEGER,
    surf_date  INTEGER NOT NULL,
    start_time INTEGER NOT NULL,
    end_time   INTEGER NOT NULL,
    rating     INTEGER NOT NULL,
    memo       TEXT NOT NULL DEFAULT '',
    is_pinned  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_surf_date ON sessions(surf_date DESC);
` + createChartsSQL

const createChartsSQL = `
CREATE TABLE IF NOT EXISTS session_charts (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id        TEXT NOT NULL REFERENCES sessions(id),
    time              INTEGER NOT NULL,
    wind_speed        REAL NOT NULL DEFAULT 0,
    wind_direction    REAL NOT NULL DEFAULT 0,
    wave_height       REAL,
    wave_period       REAL NOT NULL DEFAULT 0,
    wave_direction    REAL NOT NULL DEFAULT 0,
    air_temperature   REAL NOT NULL DEFAULT 0,
    water_temperature REAL NOT NULL DEFAULT 0,
    weather           TEXT NOT NULL DEFAULT 'unknown'
);
CREATE INDEX IF NOT EXISTS idx_session_charts_session ON session_charts(session_id, time);
`
