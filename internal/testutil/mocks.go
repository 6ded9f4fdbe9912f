// Package testutil holds the shared test doubles.
package testutil

import (
	"context"
	"sync"
	"time"

	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/summarize"
	"lifewrapped/internal/transcription"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// CountLevel returns how many entries of one level were recorded.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// the calls that matter to tests.
type MockMetrics struct {
	mu             sync.Mutex
	Chunks         int
	Transcriptions map[string]int
	Summaries      map[string]int
	Fallbacks      map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Transcriptions: make(map[string]int),
		Summaries:      make(map[string]int),
		Fallbacks:      make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}

func (m *MockMetrics) IncChunksRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chunks++
}

func (m *MockMetrics) ObserveChunkDuration(_ time.Duration) {}

func (m *MockMetrics) IncTranscriptions(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transcriptions[outcome]++
}

func (m *MockMetrics) ObserveTranscriptionDuration(_ time.Duration) {}

func (m *MockMetrics) IncSummaries(engine string, level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summaries[engine+":"+level]++
}

func (m *MockMetrics) IncEngineFallbacks(from string, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks[from+">"+to]++
}

func (m *MockMetrics) ObserveBackupDuration(_ time.Duration) {}
func (m *MockMetrics) SetSessionsTotal(_ int)                {}

// MockCache implements providers.CacheProviderInterface on a map.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockSecrets implements providers.SecretsProviderInterface in memory.
type MockSecrets struct {
	mu   sync.Mutex
	Data map[string]string
}

func NewMockSecrets() *MockSecrets {
	return &MockSecrets{Data: make(map[string]string)}
}

func (m *MockSecrets) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[name] = value
	return nil
}

func (m *MockSecrets) Get(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Data[name], nil
}

func (m *MockSecrets) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, name)
	return nil
}

// ScriptedTranscription implements transcription.Engine by replaying a
// fixed sequence of results per call.
type ScriptedTranscription struct {
	mu      sync.Mutex
	Results []transcription.Result
	Err     error
	Calls   []string
}

func (e *ScriptedTranscription) Transcribe(_ context.Context, audioPath, _ string, onResult func(transcription.Result)) error {
	e.mu.Lock()
	e.Calls = append(e.Calls, audioPath)
	results := e.Results
	err := e.Err
	e.mu.Unlock()

	for _, r := range results {
		onResult(r)
	}
	return err
}

// StubEngine implements summarize.Engine with canned behavior.
type StubEngine struct {
	TierValue     summarize.Tier
	Available     bool
	Err           error
	SessionResult *models.SessionIntelligence
	PeriodResult  *models.PeriodIntelligence
	SessionCalls  int
	PeriodCalls   int
}

func (e *StubEngine) Tier() summarize.Tier               { return e.TierValue }
func (e *StubEngine) IsAvailable(_ context.Context) bool { return e.Available }

func (e *StubEngine) SummarizeSession(_ context.Context, _ summarize.SessionInput) (*models.SessionIntelligence, error) {
	e.SessionCalls++
	if e.Err != nil {
		return nil, e.Err
	}
	return e.SessionResult, nil
}

func (e *StubEngine) SummarizePeriod(_ context.Context, _ summarize.PeriodInput) (*models.PeriodIntelligence, error) {
	e.PeriodCalls++
	if e.Err != nil {
		return nil, e.Err
	}
	return e.PeriodResult, nil
}
