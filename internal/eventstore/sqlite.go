package eventstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates) the event database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, errors.StoreError("create event store directory").
				WithCause(err).WithContext("path", dbPath).Build()
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.StoreError("open event store database").
			WithCause(err).WithContext("path", dbPath).Build()
	}
	// A single connection keeps ":memory:" databases shared between queries.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.StoreError("initialize event store schema").
			WithCause(err).WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_build_id ON events(build_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new event to the store. A zero timestamp is replaced with now.
func (s *SQLiteStore) Append(ctx context.Context, e Event) error {
	if strings.TrimSpace(e.BuildID) == "" || e.Type == "" {
		return errors.ValidationError("event requires build id and type").Build()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	payload := []byte(e.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (build_id, event_type, timestamp, payload) VALUES (?, ?, ?, ?)",
		e.BuildID, e.Type, e.Timestamp.UnixMilli(), payload,
	)
	if err != nil {
		return errors.StoreError("append event").
			WithCause(err).
			WithContext("build_id", e.BuildID).
			WithContext("event_type", e.Type).
			Build()
	}
	return nil
}

// ByBuildID retrieves all events for a specific build.
func (s *SQLiteStore) ByBuildID(ctx context.Context, buildID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, event_type, timestamp, payload FROM events WHERE build_id = ? ORDER BY id",
		buildID,
	)
	if err != nil {
		return nil, errors.StoreError("query events").WithCause(err).Build()
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// Builds projects the last limit builds (by first event), newest first.
func (s *SQLiteStore) Builds(ctx context.Context, limit int) ([]BuildSummary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, build_id, event_type, timestamp, payload FROM events
		WHERE build_id IN (
			SELECT build_id FROM events GROUP BY build_id ORDER BY MIN(id) DESC LIMIT ?
		)
		ORDER BY id`, limit)
	if err != nil {
		return nil, errors.StoreError("query build history").WithCause(err).Build()
	}
	defer func() { _ = rows.Close() }()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	return Project(events), nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		var payload []byte
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Type, &ts, &payload); err != nil {
			return nil, errors.StoreError("scan event").WithCause(err).Build()
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("iterate events").WithCause(err).Build()
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
