// Package services implements the application operations on top of the
// storage, transcription and summarization layers.
package services

import (
	"fmt"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/storage"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TranscriptView is the reassembled transcript of a session together
// with the per-chunk transcription state.
type TranscriptView struct {
	SessionID uuid.UUID           `json:"session_id"`
	Text      string              `json:"text"`
	Complete  bool                `json:"complete"`
	Chunks    []models.AudioChunk `json:"chunks"`
}

// JournalService handles session queries and mutations.
type JournalService struct {
	store  *storage.Store
	logger providers.Logger
}

func NewJournalService(store *storage.Store, logger providers.Logger) *JournalService {
	return &JournalService{store: store, logger: logger}
}

func (s *JournalService) Session(id uuid.UUID) (*models.RecordingSession, error) {
	return s.store.GetSession(id)
}

// SessionsInRange lists sessions whose start time falls in [from, to).
func (s *JournalService) SessionsInRange(from, to time.Time) ([]models.RecordingSession, error) {
	return s.store.SessionsInRange(from, to)
}

// Transcript reassembles a session transcript from its segments in
// chunk-index order. Chunks that are still pending, running or failed
// simply contribute nothing; Complete reports whether every chunk is
// done.
func (s *JournalService) Transcript(sessionID uuid.UUID) (*TranscriptView, error) {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	chunks, err := s.store.ChunksForSession(sessionID)
	if err != nil {
		return nil, err
	}
	segments, err := s.store.SegmentsForSession(sessionID)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}

	complete := true
	for _, c := range chunks {
		if c.TranscriptStatus != models.TranscriptDone {
			complete = false
			break
		}
	}

	return &TranscriptView{
		SessionID: sessionID,
		Text:      strings.Join(parts, " "),
		Complete:  complete,
		Chunks:    chunks,
	}, nil
}

// SetCategory reclassifies a session as work or personal.
func (s *JournalService) SetCategory(sessionID uuid.UUID, category string) error {
	cat, ok := models.ParseCategory(category)
	if !ok {
		return fmt.Errorf("invalid category %q", category)
	}
	return s.store.SetSessionCategory(sessionID, cat)
}

func (s *JournalService) SetFavorite(sessionID uuid.UUID, favorite bool) error {
	return s.store.SetSessionFavorite(sessionID, favorite)
}

// DeleteSession removes a session, its chunks, segments and summary,
// then the audio files on disk. Sibling sessions are untouched. Missing
// audio files are not an error; the rows are already gone.
func (s *JournalService) DeleteSession(sessionID uuid.UUID) error {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}

	paths, err := s.store.DeleteSession(sessionID)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warnf(providers.TypeApp, "Unable to remove audio file %s: %s", p, err)
		}
	}
	s.logger.Infof(providers.TypeApp, "Deleted session %s (%d audio files)", sessionID, len(paths))
	return nil
}

// Counts reports entity counts, shown before destructive operations.
func (s *JournalService) Counts() (storage.Counts, error) {
	return s.store.Counts()
}

// DeleteAll wipes the database and every recorded audio file. The
// caller must have confirmed explicitly.
func (s *JournalService) DeleteAll(audioDir string) (storage.Counts, error) {
	counts, err := s.store.Counts()
	if err != nil {
		return counts, err
	}
	if err := s.store.DeleteAll(); err != nil {
		return counts, err
	}
	if audioDir != "" {
		if err := os.RemoveAll(audioDir); err != nil {
			s.logger.Warnf(providers.TypeApp, "Unable to remove audio directory %s: %s", audioDir, err)
		}
	}
	s.logger.Infof(providers.TypeApp, "Deleted all data: %d sessions, %d chunks, %d segments, %d summaries",
		counts.Sessions, counts.Chunks, counts.Segments, counts.Summaries)
	return counts, nil
}
