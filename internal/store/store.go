package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/ivlev/screencam/internal/events"
)

// Store persists recordings and their input telemetry in a SQLite database.
type Store struct {
	db *sql.DB
}

// Event kinds accepted by the events table.
const (
	kindMove   = "move"
	kindClick  = "click"
	kindKey    = "key"
	kindScroll = "scroll"
)

// Open opens (and if needed initializes) a telemetry database.
func Open(path string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS recordings(
	  id          TEXT PRIMARY KEY,
	  width       REAL NOT NULL,
	  height      REAL NOT NULL,
	  duration_ms REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS events(
	  id           INTEGER PRIMARY KEY,
	  recording_id TEXT NOT NULL REFERENCES recordings(id),
	  ts_ms        REAL NOT NULL,
	  kind         TEXT NOT NULL CHECK (kind IN ('move','click','key','scroll')),
	  x            REAL,
	  y            REAL,
	  button       TEXT,
	  key          TEXT,
	  delta_x      REAL,
	  delta_y      REAL,
	  screen_w     REAL,
	  screen_h     REAL
	);
	CREATE INDEX IF NOT EXISTS idx_events_rec_ts ON events(recording_id, ts_ms);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecording inserts a recording and all of its events in one
// transaction. A recording without an ID gets a fresh one; the (possibly
// assigned) ID is returned.
func (s *Store) SaveRecording(rec *events.Recording) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("recording is nil")
	}
	if rec.DurationMs <= 0 {
		return "", fmt.Errorf("recording duration must be positive")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO recordings(id, width, height, duration_ms) VALUES(?,?,?,?)`,
		rec.ID, rec.Width, rec.Height, rec.DurationMs); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("failed to insert recording: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO events(recording_id, ts_ms, kind, x, y, button, key, delta_x, delta_y, screen_w, screen_h)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range rec.Moves {
		if _, err := stmt.Exec(rec.ID, m.TimeMs, kindMove, m.X, m.Y, nil, nil, nil, nil, m.ScreenW, m.ScreenH); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("failed to insert move event: %w", err)
		}
	}
	for _, c := range rec.Clicks {
		if _, err := stmt.Exec(rec.ID, c.TimeMs, kindClick, c.X, c.Y, c.Button, nil, nil, nil, c.ScreenW, c.ScreenH); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("failed to insert click event: %w", err)
		}
	}
	for _, k := range rec.Keys {
		if _, err := stmt.Exec(rec.ID, k.TimeMs, kindKey, nil, nil, nil, k.Key, nil, nil, nil, nil); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("failed to insert key event: %w", err)
		}
	}
	for _, sc := range rec.Scrolls {
		if _, err := stmt.Exec(rec.ID, sc.TimeMs, kindScroll, sc.X, sc.Y, nil, nil, sc.DeltaX, sc.DeltaY, nil, nil); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("failed to insert scroll event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rec.ID, nil
}

// LoadRecording reads a recording and its full event streams, sorted by time.
func (s *Store) LoadRecording(id string) (*events.Recording, error) {
	rec := &events.Recording{ID: id}

	row := s.db.QueryRow(`SELECT width, height, duration_ms FROM recordings WHERE id = ?`, id)
	if err := row.Scan(&rec.Width, &rec.Height, &rec.DurationMs); err != nil {
		return nil, fmt.Errorf("failed to load recording %s: %w", id, err)
	}

	rows, err := s.db.Query(`SELECT ts_ms, kind, x, y, button, key, delta_x, delta_y, screen_w, screen_h
		FROM events WHERE recording_id = ? ORDER BY ts_ms`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tsMs float64
		var kind string
		var x, y, deltaX, deltaY, screenW, screenH sql.NullFloat64
		var button, key sql.NullString

		if err := rows.Scan(&tsMs, &kind, &x, &y, &button, &key, &deltaX, &deltaY, &screenW, &screenH); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		switch kind {
		case kindMove:
			rec.Moves = append(rec.Moves, events.MouseEvent{
				TimeMs: tsMs, X: x.Float64, Y: y.Float64,
				ScreenW: screenW.Float64, ScreenH: screenH.Float64,
			})
		case kindClick:
			rec.Clicks = append(rec.Clicks, events.ClickEvent{
				TimeMs: tsMs, X: x.Float64, Y: y.Float64, Button: button.String,
				ScreenW: screenW.Float64, ScreenH: screenH.Float64,
			})
		case kindKey:
			rec.Keys = append(rec.Keys, events.KeyEvent{TimeMs: tsMs, Key: key.String})
		case kindScroll:
			rec.Scrolls = append(rec.Scrolls, events.ScrollEvent{
				TimeMs: tsMs, X: x.Float64, Y: y.Float64,
				DeltaX: deltaX.Float64, DeltaY: deltaY.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	rec.SortEvents()
	return rec, nil
}

// ListRecordings returns the IDs of every stored recording.
func (s *Store) ListRecordings() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM recordings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recording id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
