package transcription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/storage"
)

type nopLogger struct{}

func (nopLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (nopLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (nopLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Close()                                                  {}

type nopMetrics struct{}

func (nopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (nopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (nopMetrics) IncCacheHits()                                    {}
func (nopMetrics) IncCacheMisses()                                  {}
func (nopMetrics) IncChunksRecorded()                               {}
func (nopMetrics) ObserveChunkDuration(_ time.Duration)             {}
func (nopMetrics) IncTranscriptions(_ string)                       {}
func (nopMetrics) ObserveTranscriptionDuration(_ time.Duration)     {}
func (nopMetrics) IncSummaries(_ string, _ string)                  {}
func (nopMetrics) IncEngineFallbacks(_ string, _ string)            {}
func (nopMetrics) ObserveBackupDuration(_ time.Duration)            {}
func (nopMetrics) SetSessionsTotal(_ int)                           {}

// scriptedEngine replays fixed results, optionally ending with an error.
type scriptedEngine struct {
	results []Result
	err     error
}

// gateEngine blocks every transcription until released and records the
// peak number of concurrent calls.
type gateEngine struct {
	release chan struct{}

	mu       sync.Mutex
	inflight int
	peak     int
}

func (e *gateEngine) Transcribe(_ context.Context, _, _ string, onResult func(Result)) error {
	e.mu.Lock()
	e.inflight++
	if e.inflight > e.peak {
		e.peak = e.inflight
	}
	e.mu.Unlock()

	<-e.release

	e.mu.Lock()
	e.inflight--
	e.mu.Unlock()

	onResult(Result{Text: "spoken words here", Final: true})
	return nil
}

func (e *scriptedEngine) Transcribe(_ context.Context, _, _ string, onResult func(Result)) error {
	for _, r := range e.results {
		onResult(r)
	}
	return e.err
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedChunk(t *testing.T, store *storage.Store) models.AudioChunk {
	t.Helper()
	now := time.Now()
	sess := &models.RecordingSession{
		ID:        uuid.New(),
		StartTime: now,
		Category:  models.CategoryUncategorized,
		CreatedAt: now,
	}
	require.NoError(t, store.CreateSession(sess))

	chunk := models.AudioChunk{
		ID:               uuid.New(),
		SessionID:        sess.ID,
		ChunkIndex:       0,
		StartTime:        now,
		Duration:         3 * time.Minute,
		FilePath:         "/tmp/none.wav",
		FileSize:         42,
		TranscriptStatus: models.TranscriptPending,
		CreatedAt:        now,
	}
	require.NoError(t, store.CreateChunk(&chunk))
	return chunk
}

func TestWorkerTranscribesChunk(t *testing.T) {
	store := newTestStore(t)
	chunk := seedChunk(t, store)

	engine := &scriptedEngine{results: []Result{
		{Text: "partial text here"},
		{Text: "partial text here finished", Final: true},
	}}
	w := NewWorker(engine, store, nopLogger{}, nopMetrics{}, "en-US", 3, time.Minute)

	w.Enqueue(chunk)
	w.WaitSession(chunk.SessionID)

	got, err := store.GetChunk(chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptDone, got.TranscriptStatus)

	segments, err := store.SegmentsForSession(chunk.SessionID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "partial text here finished", segments[0].Text)
	assert.Equal(t, 4, segments[0].WordCount)

	sess, err := store.GetSession(chunk.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 4, sess.WordCount)
}

func TestWorkerIsolatesFailures(t *testing.T) {
	store := newTestStore(t)
	chunk := seedChunk(t, store)

	engine := &scriptedEngine{err: errors.New("decoder crashed")}
	w := NewWorker(engine, store, nopLogger{}, nopMetrics{}, "en-US", 3, time.Minute)

	w.Enqueue(chunk)
	w.WaitSession(chunk.SessionID)

	got, err := store.GetChunk(chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptFailed, got.TranscriptStatus)
	assert.Contains(t, got.TranscriptError, "decoder crashed")
}

func TestWorkerRetryOnlyFailedChunks(t *testing.T) {
	store := newTestStore(t)
	chunk := seedChunk(t, store)

	engine := &scriptedEngine{err: errors.New("boom")}
	w := NewWorker(engine, store, nopLogger{}, nopMetrics{}, "en-US", 3, time.Minute)

	// Pending chunks are not retriable.
	err := w.Retry(chunk.ID)
	assert.Error(t, err)

	w.Enqueue(chunk)
	w.WaitSession(chunk.SessionID)

	engine.err = nil
	engine.results = []Result{{Text: "recovered words now", Final: true}}
	require.NoError(t, w.Retry(chunk.ID))
	w.WaitSession(chunk.SessionID)

	got, err := store.GetChunk(chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptDone, got.TranscriptStatus)
	assert.Empty(t, got.TranscriptError)
}

func TestWorkerBoundsConcurrentTranscriptions(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	sess := &models.RecordingSession{
		ID:        uuid.New(),
		StartTime: now,
		Category:  models.CategoryUncategorized,
		CreatedAt: now,
	}
	require.NoError(t, store.CreateSession(sess))

	engine := &gateEngine{release: make(chan struct{})}
	w := NewWorker(engine, store, nopLogger{}, nopMetrics{}, "en-US", 2, time.Minute)

	for i := 0; i < 6; i++ {
		chunk := models.AudioChunk{
			ID:               uuid.New(),
			SessionID:        sess.ID,
			ChunkIndex:       i,
			StartTime:        now,
			Duration:         time.Minute,
			FilePath:         "/tmp/none.wav",
			FileSize:         1,
			TranscriptStatus: models.TranscriptPending,
			CreatedAt:        now,
		}
		require.NoError(t, store.CreateChunk(&chunk))
		w.Enqueue(chunk)
	}

	// The semaphore fills to its limit while the rest stay queued.
	assert.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return engine.inflight == 2
	}, 5*time.Second, 10*time.Millisecond)

	close(engine.release)
	w.WaitSession(sess.ID)

	engine.mu.Lock()
	peak := engine.peak
	engine.mu.Unlock()
	assert.Equal(t, 2, peak)

	segments, err := store.SegmentsForSession(sess.ID)
	require.NoError(t, err)
	assert.Len(t, segments, 6)
}

func TestWorkerDropsSessionTrackingWhenDrained(t *testing.T) {
	store := newTestStore(t)
	chunk := seedChunk(t, store)

	engine := &scriptedEngine{results: []Result{{Text: "all done here", Final: true}}}
	w := NewWorker(engine, store, nopLogger{}, nopMetrics{}, "en-US", 3, time.Minute)

	w.Enqueue(chunk)
	w.WaitSession(chunk.SessionID)

	w.mu.Lock()
	remaining := len(w.sessions)
	w.mu.Unlock()
	assert.Zero(t, remaining)

	// Later work tracks again from a clean slate.
	next := seedChunk(t, store)
	w.Enqueue(next)
	w.WaitSession(next.SessionID)

	w.mu.Lock()
	remaining = len(w.sessions)
	w.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestWorkerEmptyTranscriptFails(t *testing.T) {
	store := newTestStore(t)
	chunk := seedChunk(t, store)

	engine := &scriptedEngine{}
	w := NewWorker(engine, store, nopLogger{}, nopMetrics{}, "en-US", 3, time.Minute)

	w.Enqueue(chunk)
	w.WaitSession(chunk.SessionID)

	got, err := store.GetChunk(chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptFailed, got.TranscriptStatus)
}
