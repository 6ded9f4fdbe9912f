package storage

import (
	"database/sql"
	"fmt"
	"lifewrapped/internal/models"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateSession(sess *models.RecordingSession) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, start_time, end_time, category, is_favorite, word_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.ID.String(), formatTime(sess.StartTime), formatNullableTime(sess.EndTime),
		string(sess.Category), boolToInt(sess.IsFavorite), sess.WordCount, formatTime(sess.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) EndSession(id uuid.UUID, endTime time.Time) error {
	_, err := s.db.Exec(`UPDATE sessions SET end_time = ? WHERE id = ?`,
		formatTime(endTime), id.String())
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id uuid.UUID) (*models.RecordingSession, error) {
	row := s.db.QueryRow(`
		SELECT id, start_time, end_time, category, is_favorite, word_count, created_at
		FROM sessions WHERE id = ?
	`, id.String())
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sess, err
}

// SessionsInRange returns sessions whose start time falls in [from, to),
// ordered by start time ascending.
func (s *Store) SessionsInRange(from, to time.Time) ([]models.RecordingSession, error) {
	rows, err := s.db.Query(`
		SELECT id, start_time, end_time, category, is_favorite, word_count, created_at
		FROM sessions
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.RecordingSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// AllSessions returns every session ordered by start time ascending.
func (s *Store) AllSessions() ([]models.RecordingSession, error) {
	rows, err := s.db.Query(`
		SELECT id, start_time, end_time, category, is_favorite, word_count, created_at
		FROM sessions ORDER BY start_time ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.RecordingSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// CountSessionsCreatedAfter reports how many sessions in [from, to) were
// created after the given time. Drives summary staleness checks.
func (s *Store) CountSessionsCreatedAfter(from, to, after time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sessions
		WHERE start_time >= ? AND start_time < ? AND created_at > ?
	`, formatTime(from), formatTime(to), formatTime(after)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (s *Store) SetSessionCategory(id uuid.UUID, category models.Category) error {
	_, err := s.db.Exec(`UPDATE sessions SET category = ? WHERE id = ?`,
		string(category), id.String())
	return err
}

func (s *Store) SetSessionFavorite(id uuid.UUID, favorite bool) error {
	_, err := s.db.Exec(`UPDATE sessions SET is_favorite = ? WHERE id = ?`,
		boolToInt(favorite), id.String())
	return err
}

// AddSessionWordCount bumps the cached word count after a chunk transcribes.
func (s *Store) AddSessionWordCount(id uuid.UUID, delta int) error {
	_, err := s.db.Exec(`UPDATE sessions SET word_count = word_count + ? WHERE id = ?`,
		delta, id.String())
	return err
}

// DeleteSession removes a session and, via cascade, its chunks, segments
// and session summary. Returns the audio file paths of the deleted chunks
// so the caller can remove them from disk.
func (s *Store) DeleteSession(id uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`SELECT file_path FROM chunks WHERE session_id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query chunk files: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		paths = append(paths, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id.String()); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return paths, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.RecordingSession, error) {
	var (
		sess      models.RecordingSession
		idStr     string
		startStr  string
		endStr    sql.NullString
		category  string
		favorite  int
		createdAt string
	)
	if err := row.Scan(&idStr, &startStr, &endStr, &category, &favorite, &sess.WordCount, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	sess.ID = id
	sess.Category = models.Category(category)
	sess.IsFavorite = favorite != 0

	if sess.StartTime, err = parseTime(startStr); err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	if endStr.Valid {
		end, err := parseTime(endStr.String)
		if err != nil {
			return nil, fmt.Errorf("parse end time: %w", err)
		}
		sess.EndTime = &end
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	return &sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
