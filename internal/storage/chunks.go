package storage

import (
	"database/sql"
	"fmt"
	"lifewrapped/internal/models"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateChunk(chunk *models.AudioChunk) error {
	_, err := s.db.Exec(`
		INSERT INTO chunks (id, session_id, chunk_index, start_time, duration_ms,
			file_path, file_size, transcript_status, transcript_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, chunk.ID.String(), chunk.SessionID.String(), chunk.ChunkIndex,
		formatTime(chunk.StartTime), chunk.Duration.Milliseconds(),
		chunk.FilePath, chunk.FileSize, string(chunk.TranscriptStatus),
		nullableString(chunk.TranscriptError), formatTime(chunk.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

func (s *Store) GetChunk(id uuid.UUID) (*models.AudioChunk, error) {
	row := s.db.QueryRow(chunkSelect+` WHERE id = ?`, id.String())
	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return chunk, err
}

// ChunksForSession returns all chunks of a session in ascending
// chunk-index order.
func (s *Store) ChunksForSession(sessionID uuid.UUID) ([]models.AudioChunk, error) {
	rows, err := s.db.Query(chunkSelect+` WHERE session_id = ? ORDER BY chunk_index ASC`,
		sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.AudioChunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

func (s *Store) SetChunkTranscriptStatus(id uuid.UUID, status models.TranscriptStatus, errMsg string) error {
	_, err := s.db.Exec(`UPDATE chunks SET transcript_status = ?, transcript_error = ? WHERE id = ?`,
		string(status), nullableString(errMsg), id.String())
	return err
}

func (s *Store) InsertSegment(seg *models.TranscriptSegment) error {
	res, err := s.db.Exec(`
		INSERT INTO segments (chunk_id, session_id, text, word_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, seg.ChunkID.String(), seg.SessionID.String(), seg.Text, seg.WordCount, formatTime(seg.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}
	seg.ID, _ = res.LastInsertId()
	return nil
}

// SegmentsForSession returns segments joined to their chunks, ordered by
// chunk index so the transcript reassembles in recording order regardless
// of transcription completion order.
func (s *Store) SegmentsForSession(sessionID uuid.UUID) ([]models.TranscriptSegment, error) {
	rows, err := s.db.Query(`
		SELECT sg.id, sg.chunk_id, sg.session_id, sg.text, sg.word_count, sg.created_at
		FROM segments sg
		JOIN chunks c ON c.id = sg.chunk_id
		WHERE sg.session_id = ?
		ORDER BY c.chunk_index ASC
	`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []models.TranscriptSegment
	for rows.Next() {
		var (
			seg       models.TranscriptSegment
			chunkID   string
			sessID    string
			createdAt string
		)
		if err := rows.Scan(&seg.ID, &chunkID, &sessID, &seg.Text, &seg.WordCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if seg.ChunkID, err = uuid.Parse(chunkID); err != nil {
			return nil, fmt.Errorf("parse chunk id: %w", err)
		}
		if seg.SessionID, err = uuid.Parse(sessID); err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}
		if seg.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created at: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

const chunkSelect = `
	SELECT id, session_id, chunk_index, start_time, duration_ms,
		file_path, file_size, transcript_status, transcript_error, created_at
	FROM chunks`

func scanChunk(row rowScanner) (*models.AudioChunk, error) {
	var (
		chunk      models.AudioChunk
		idStr      string
		sessStr    string
		startStr   string
		durationMs int64
		status     string
		errMsg     sql.NullString
		createdAt  string
	)
	if err := row.Scan(&idStr, &sessStr, &chunk.ChunkIndex, &startStr, &durationMs,
		&chunk.FilePath, &chunk.FileSize, &status, &errMsg, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if chunk.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse chunk id: %w", err)
	}
	if chunk.SessionID, err = uuid.Parse(sessStr); err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	if chunk.StartTime, err = parseTime(startStr); err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	if chunk.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	chunk.Duration = time.Duration(durationMs) * time.Millisecond
	chunk.TranscriptStatus = models.TranscriptStatus(status)
	if errMsg.Valid {
		chunk.TranscriptError = errMsg.String
	}
	return &chunk, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
