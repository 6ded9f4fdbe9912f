package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a session for year-wrap filtering.
type Category string

const (
	CategoryWork          Category = "work"
	CategoryPersonal      Category = "personal"
	CategoryUncategorized Category = "uncategorized"
	// CategoryBoth only appears on derived insight items, never on sessions.
	CategoryBoth Category = "both"
)

func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryWork, CategoryPersonal, CategoryUncategorized:
		return Category(s), true
	}
	return "", false
}

// RecordingSession groups the chunks of one continuous recording.
// Chunks belonging to a session are ordered by ChunkIndex.
type RecordingSession struct {
	ID         uuid.UUID  `json:"id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Category   Category   `json:"category"`
	IsFavorite bool       `json:"is_favorite"`
	WordCount  int        `json:"word_count"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AudioChunk is one bounded audio segment. Never mutated after
// finalization; deleted with its parent session.
type AudioChunk struct {
	ID               uuid.UUID        `json:"id"`
	SessionID        uuid.UUID        `json:"session_id"`
	ChunkIndex       int              `json:"chunk_index"`
	StartTime        time.Time        `json:"start_time"`
	Duration         time.Duration    `json:"duration"`
	FilePath         string           `json:"file_path"`
	FileSize         int64            `json:"file_size"`
	TranscriptStatus TranscriptStatus `json:"transcript_status"`
	TranscriptError  string           `json:"transcript_error,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// TranscriptStatus tracks per-chunk transcription progress. Failures are
// isolated to one chunk and retriable.
type TranscriptStatus string

const (
	TranscriptPending TranscriptStatus = "pending"
	TranscriptRunning TranscriptStatus = "running"
	TranscriptDone    TranscriptStatus = "done"
	TranscriptFailed  TranscriptStatus = "failed"
)

// TranscriptSegment is the transcribed text of one chunk, immutable once
// written.
type TranscriptSegment struct {
	ID        int64     `json:"id"`
	ChunkID   uuid.UUID `json:"chunk_id"`
	SessionID uuid.UUID `json:"session_id"`
	Text      string    `json:"text"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}
