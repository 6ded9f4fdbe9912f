// Package storage persists sessions, chunks, transcript segments and
// summaries in a single SQLite database. The store is the only writer;
// all mutating access funnels through it.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database under baseDir with WAL enabled.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create storage directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "lifewrapped.db")
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// modernc.org/sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY between the pipeline and the API.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		start_time TEXT NOT NULL,
		end_time TEXT,
		category TEXT NOT NULL DEFAULT 'uncategorized',
		is_favorite INTEGER NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		chunk_index INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		file_path TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		transcript_status TEXT NOT NULL DEFAULT 'pending',
		transcript_error TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(session_id, chunk_index)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_session ON chunks(session_id);

	CREATE TABLE IF NOT EXISTS segments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chunk_id TEXT NOT NULL UNIQUE REFERENCES chunks(id) ON DELETE CASCADE,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_segments_session ON segments(session_id);

	CREATE TABLE IF NOT EXISTS summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period_type TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		session_id TEXT REFERENCES sessions(id) ON DELETE CASCADE,
		engine TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		key_insights TEXT,
		themes TEXT,
		action_items TEXT,
		major_arcs TEXT,
		biggest_wins TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_summaries_period
		ON summaries(period_type, period_start) WHERE session_id IS NULL;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_summaries_session
		ON summaries(session_id) WHERE session_id IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// Counts reports row counts per entity, used for destructive-operation
// confirmations and import verification.
type Counts struct {
	Sessions  int `json:"sessions"`
	Chunks    int `json:"chunks"`
	Segments  int `json:"segments"`
	Summaries int `json:"summaries"`
}

func (s *Store) Counts() (Counts, error) {
	var c Counts
	row := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM chunks),
			(SELECT COUNT(*) FROM segments),
			(SELECT COUNT(*) FROM summaries)
	`)
	if err := row.Scan(&c.Sessions, &c.Chunks, &c.Segments, &c.Summaries); err != nil {
		return c, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}

// DeleteAll removes every row. The caller is responsible for confirming
// with the user first.
func (s *Store) DeleteAll() error {
	_, err := s.db.Exec(`
		DELETE FROM summaries;
		DELETE FROM segments;
		DELETE FROM chunks;
		DELETE FROM sessions;
	`)
	return err
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func formatNullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
