package services

import (
	"context"
	"fmt"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/summarize"
	"time"

	"github.com/google/uuid"
)

// SummaryView wraps a stored summary with its staleness flag. A summary
// is stale when sessions were created in its period after it was
// generated; it stays readable until explicitly regenerated.
type SummaryView struct {
	Summary *models.Summary `json:"summary"`
	Stale   bool            `json:"stale"`
}

// RollupService generates and serves summaries at every period
// granularity. Summaries are generated lazily on first view and
// overwritten in place on regeneration.
type RollupService struct {
	store       *storage.Store
	journal     *JournalService
	coordinator *summarize.Coordinator
	logger      providers.Logger
}

func NewRollupService(store *storage.Store, journal *JournalService,
	coordinator *summarize.Coordinator, logger providers.Logger) *RollupService {
	return &RollupService{
		store:       store,
		journal:     journal,
		coordinator: coordinator,
		logger:      logger,
	}
}

// SessionSummary returns the session-level summary, generating it on
// first access.
func (s *RollupService) SessionSummary(ctx context.Context, sessionID uuid.UUID) (*models.Summary, error) {
	existing, err := s.store.GetSessionSummary(sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.RegenerateSession(ctx, sessionID)
}

// RegenerateSession summarizes a session from its current transcript,
// replacing any previous summary.
func (s *RollupService) RegenerateSession(ctx context.Context, sessionID uuid.UUID) (*models.Summary, error) {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	view, err := s.journal.Transcript(sessionID)
	if err != nil {
		return nil, err
	}
	if view.Text == "" {
		return nil, fmt.Errorf("session %s has no transcript yet", sessionID)
	}

	intel, err := s.coordinator.SummarizeSession(ctx, summarize.SessionInput{
		Session:    *sess,
		Transcript: view.Text,
	})
	if err != nil {
		return nil, err
	}

	end := sess.StartTime
	if sess.EndTime != nil {
		end = *sess.EndTime
	}
	sum := &models.Summary{
		PeriodType:  models.PeriodSession,
		PeriodStart: sess.StartTime,
		PeriodEnd:   end,
		SessionID:   &sess.ID,
		Engine:      intel.Engine,
		Title:       intel.Title,
		Text:        intel.Summary,
		KeyInsights: intel.KeyInsights,
		Themes:      intel.Themes,
		ActionItems: intel.ActionItems,
		CreatedAt:   time.Now(),
	}
	if err := s.store.UpsertSummary(sum); err != nil {
		return nil, err
	}
	s.logger.Infof(providers.TypeAi, "Session %s summarized by %s engine", sessionID, intel.Engine)
	return sum, nil
}

// PeriodSummary returns the summary covering the period that contains
// at, generating it on first view.
func (s *RollupService) PeriodSummary(ctx context.Context, pt models.PeriodType, at time.Time) (*SummaryView, error) {
	start, end := models.PeriodBounds(pt, at)

	existing, err := s.store.GetPeriodSummary(pt, start)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		stale, err := s.isStale(existing, start, end)
		if err != nil {
			return nil, err
		}
		return &SummaryView{Summary: existing, Stale: stale}, nil
	}

	sum, err := s.Regenerate(ctx, pt, at)
	if err != nil {
		return nil, err
	}
	return &SummaryView{Summary: sum, Stale: false}, nil
}

// Regenerate rebuilds the period summary from the session summaries in
// its bounds, overwriting any existing one.
func (s *RollupService) Regenerate(ctx context.Context, pt models.PeriodType, at time.Time) (*models.Summary, error) {
	start, end := models.PeriodBounds(pt, at)

	sessions, err := s.store.SessionsInRange(start, end)
	if err != nil {
		return nil, err
	}
	sessions = filterByPeriodCategory(pt, sessions)
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions recorded in %s starting %s", pt, start.Format("2006-01-02"))
	}

	input := summarize.PeriodInput{
		PeriodType: pt,
		Start:      start,
		End:        end,
	}
	for _, sess := range sessions {
		sessionSum, err := s.SessionSummary(ctx, sess.ID)
		if err != nil {
			// Sessions without transcripts are skipped, not fatal.
			s.logger.Warnf(providers.TypeAi, "Skipping session %s in %s rollup: %s", sess.ID, pt, err)
			continue
		}
		input.Sessions = append(input.Sessions, summarize.SessionSummary{
			SessionID: sess.ID.String(),
			Category:  sess.Category,
			Title:     sessionSum.Title,
			Text:      sessionSum.Text,
			Themes:    sessionSum.Themes,
		})
	}
	if len(input.Sessions) == 0 {
		return nil, fmt.Errorf("no summarizable sessions in %s starting %s", pt, start.Format("2006-01-02"))
	}

	intel, err := s.coordinator.SummarizePeriod(ctx, input)
	if err != nil {
		return nil, err
	}

	sum := &models.Summary{
		PeriodType:  pt,
		PeriodStart: start,
		PeriodEnd:   end,
		Engine:      intel.Engine,
		Title:       intel.Title,
		Text:        intel.Summary,
		KeyInsights: intel.KeyInsights,
		Themes:      intel.Themes,
		ActionItems: intel.ActionItems,
		MajorArcs:   intel.MajorArcs,
		BiggestWins: intel.BiggestWins,
		CreatedAt:   time.Now(),
	}
	if err := s.store.UpsertSummary(sum); err != nil {
		return nil, err
	}
	s.logger.Infof(providers.TypeAi, "%s summary for %s generated by %s engine (%d sessions)",
		pt, start.Format("2006-01-02"), intel.Engine, len(input.Sessions))
	return sum, nil
}

func (s *RollupService) isStale(sum *models.Summary, start, end time.Time) (bool, error) {
	n, err := s.store.CountSessionsCreatedAfter(start, end, sum.CreatedAt)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// filterByPeriodCategory narrows sessions for the category-scoped
// year-wrap variants. The combined wrap and regular periods keep all
// sessions.
func filterByPeriodCategory(pt models.PeriodType, sessions []models.RecordingSession) []models.RecordingSession {
	var want models.Category
	switch pt {
	case models.PeriodYearWrapWork:
		want = models.CategoryWork
	case models.PeriodYearWrapPersonal:
		want = models.CategoryPersonal
	default:
		return sessions
	}

	filtered := sessions[:0]
	for _, sess := range sessions {
		if sess.Category == want {
			filtered = append(filtered, sess)
		}
	}
	return filtered
}
