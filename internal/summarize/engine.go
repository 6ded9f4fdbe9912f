// Package summarize generates session and period summaries through four
// interchangeable engines unified behind one interface, with runtime
// availability probing and a graceful fallback chain.
package summarize

import (
	"context"
	"errors"
	"lifewrapped/internal/models"
	"time"
)

// Tier identifies a summarization backend.
type Tier string

const (
	TierExternal Tier = "external"
	TierLocal    Tier = "local"
	TierPlatform Tier = "platform"
	TierBasic    Tier = "basic"
)

// ErrUnavailable is returned by engines that cannot currently run; the
// coordinator treats it like any other engine failure and falls back.
var ErrUnavailable = errors.New("summarization engine unavailable")

// SessionInput is everything an engine needs to summarize one session.
type SessionInput struct {
	Session    models.RecordingSession
	Transcript string
}

// PeriodInput aggregates the session summaries of one period.
type PeriodInput struct {
	PeriodType models.PeriodType
	Start      time.Time
	End        time.Time
	Sessions   []SessionSummary
}

// SessionSummary pairs a session's summary text with the category it was
// recorded under. Year-wrap items inherit these categories; the AI never
// reclassifies content.
type SessionSummary struct {
	SessionID string
	Category  models.Category
	Title     string
	Text      string
	Themes    []string
}

// Engine is one summarization backend.
type Engine interface {
	Tier() Tier
	// IsAvailable probes whether the engine can run right now. It must
	// be cheap enough to call before every summarization.
	IsAvailable(ctx context.Context) bool
	SummarizeSession(ctx context.Context, in SessionInput) (*models.SessionIntelligence, error)
	SummarizePeriod(ctx context.Context, in PeriodInput) (*models.PeriodIntelligence, error)
}
