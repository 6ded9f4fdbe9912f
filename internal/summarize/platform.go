package summarize

import (
	"context"
	"lifewrapped/internal/models"
)

// PlatformEngine stands in for OS-provided on-device models. No
// supported backend exists on this platform yet, so it always reports
// unavailable and the chain falls through to the next tier.
type PlatformEngine struct{}

func NewPlatformEngine() *PlatformEngine { return &PlatformEngine{} }

func (e *PlatformEngine) Tier() Tier { return TierPlatform }

func (e *PlatformEngine) IsAvailable(_ context.Context) bool { return false }

func (e *PlatformEngine) SummarizeSession(_ context.Context, _ SessionInput) (*models.SessionIntelligence, error) {
	return nil, ErrUnavailable
}

func (e *PlatformEngine) SummarizePeriod(_ context.Context, _ PeriodInput) (*models.PeriodIntelligence, error) {
	return nil, ErrUnavailable
}
