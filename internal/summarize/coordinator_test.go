package summarize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
)

type nopLogger struct{}

func (nopLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (nopLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (nopLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Close()                                                  {}

type recordingMetrics struct {
	mu        sync.Mutex
	summaries map[string]int
	fallbacks map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{summaries: map[string]int{}, fallbacks: map[string]int{}}
}

func (m *recordingMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *recordingMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *recordingMetrics) IncCacheHits()                                    {}
func (m *recordingMetrics) IncCacheMisses()                                  {}
func (m *recordingMetrics) IncChunksRecorded()                               {}
func (m *recordingMetrics) ObserveChunkDuration(_ time.Duration)             {}
func (m *recordingMetrics) IncTranscriptions(_ string)                       {}
func (m *recordingMetrics) ObserveTranscriptionDuration(_ time.Duration)     {}

func (m *recordingMetrics) IncSummaries(engine string, level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[engine+":"+level]++
}

func (m *recordingMetrics) IncEngineFallbacks(from string, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks[from+">"+to]++
}

func (m *recordingMetrics) ObserveBackupDuration(_ time.Duration) {}
func (m *recordingMetrics) SetSessionsTotal(_ int)                {}

type stubEngine struct {
	tier      Tier
	available bool
	err       error
	calls     int
}

func (e *stubEngine) Tier() Tier                         { return e.tier }
func (e *stubEngine) IsAvailable(_ context.Context) bool { return e.available }

func (e *stubEngine) SummarizeSession(_ context.Context, _ SessionInput) (*models.SessionIntelligence, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &models.SessionIntelligence{Summary: "from " + string(e.tier), Engine: string(e.tier)}, nil
}

func (e *stubEngine) SummarizePeriod(_ context.Context, _ PeriodInput) (*models.PeriodIntelligence, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &models.PeriodIntelligence{Summary: "from " + string(e.tier), Engine: string(e.tier)}, nil
}

func sessionInput() SessionInput {
	return SessionInput{
		Session:    models.RecordingSession{StartTime: time.Now()},
		Transcript: "today was a good day",
	}
}

func TestCoordinatorUsesPreferredEngineFirst(t *testing.T) {
	external := &stubEngine{tier: TierExternal, available: true}
	basic := &stubEngine{tier: TierBasic, available: true}
	c := NewCoordinator(TierExternal, []Engine{external, basic}, nopLogger{}, newRecordingMetrics())

	out, err := c.SummarizeSession(context.Background(), sessionInput())
	require.NoError(t, err)
	assert.Equal(t, string(TierExternal), out.Engine)
	assert.Equal(t, 0, basic.calls)
}

func TestCoordinatorSkipsUnavailableEnginesSilently(t *testing.T) {
	external := &stubEngine{tier: TierExternal, available: false}
	local := &stubEngine{tier: TierLocal, available: false}
	basic := &stubEngine{tier: TierBasic, available: true}
	metrics := newRecordingMetrics()
	c := NewCoordinator(TierExternal, []Engine{external, local, basic}, nopLogger{}, metrics)

	out, err := c.SummarizeSession(context.Background(), sessionInput())
	require.NoError(t, err)
	assert.Equal(t, string(TierBasic), out.Engine)
	assert.Equal(t, 0, external.calls)
	assert.Equal(t, 0, local.calls)
	assert.Equal(t, 1, metrics.summaries["basic:session"])
	assert.Empty(t, metrics.fallbacks)
}

func TestCoordinatorFallsThroughOnFailure(t *testing.T) {
	external := &stubEngine{tier: TierExternal, available: true, err: errors.New("api quota exceeded")}
	basic := &stubEngine{tier: TierBasic, available: true}
	metrics := newRecordingMetrics()
	c := NewCoordinator(TierExternal, []Engine{external, basic}, nopLogger{}, metrics)

	out, err := c.SummarizeSession(context.Background(), sessionInput())
	require.NoError(t, err)
	assert.Equal(t, string(TierBasic), out.Engine)
	assert.Equal(t, 1, external.calls)
	assert.Equal(t, 1, metrics.fallbacks["external>basic"])
}

func TestCoordinatorErrorWhenAllEnginesFail(t *testing.T) {
	external := &stubEngine{tier: TierExternal, available: true, err: errors.New("down")}
	local := &stubEngine{tier: TierLocal, available: true, err: errors.New("model missing")}
	c := NewCoordinator(TierExternal, []Engine{external, local}, nopLogger{}, newRecordingMetrics())

	_, err := c.SummarizeSession(context.Background(), sessionInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all summarization engines failed")
}

func TestCoordinatorChainOrder(t *testing.T) {
	engines := []Engine{
		&stubEngine{tier: TierBasic},
		&stubEngine{tier: TierExternal},
		&stubEngine{tier: TierLocal},
		&stubEngine{tier: TierPlatform},
	}
	c := NewCoordinator(TierLocal, engines, nopLogger{}, newRecordingMetrics())

	var tiers []Tier
	for _, e := range c.Chain() {
		tiers = append(tiers, e.Tier())
	}
	assert.Equal(t, []Tier{TierLocal, TierExternal, TierPlatform, TierBasic}, tiers)
}

func TestCoordinatorActiveTier(t *testing.T) {
	external := &stubEngine{tier: TierExternal, available: false}
	basic := &stubEngine{tier: TierBasic, available: true}
	c := NewCoordinator(TierExternal, []Engine{external, basic}, nopLogger{}, newRecordingMetrics())

	assert.Equal(t, TierBasic, c.ActiveTier(context.Background()))

	external.available = true
	assert.Equal(t, TierExternal, c.ActiveTier(context.Background()))
}

func TestCoordinatorPeriodLevelMetricLabel(t *testing.T) {
	basic := &stubEngine{tier: TierBasic, available: true}
	metrics := newRecordingMetrics()
	c := NewCoordinator(TierBasic, []Engine{basic}, nopLogger{}, metrics)

	_, err := c.SummarizePeriod(context.Background(), PeriodInput{PeriodType: models.PeriodWeek})
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.summaries["basic:week"])
}
