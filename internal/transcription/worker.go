package transcription

import (
	"context"
	"errors"
	"fmt"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/storage"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Worker transcribes finalized chunks in the background. At most
// maxConcurrent chunks transcribe simultaneously; additional completions
// queue on the semaphore. A chunk's failure is isolated: it is marked
// failed and never blocks sibling chunks or session continuation.
type Worker struct {
	engine       Engine
	store        *storage.Store
	logger       providers.Logger
	metrics      providers.MetricsProviderInterface
	language     string
	finalTimeout time.Duration

	sem chan struct{}

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionTracker
}

// sessionTracker counts in-flight chunks for one session. The map entry
// is dropped when the count reaches zero so long-running daemons do not
// accumulate an entry per recorded session.
type sessionTracker struct {
	wg      sync.WaitGroup
	pending int
}

func NewWorker(engine Engine, store *storage.Store, logger providers.Logger,
	metrics providers.MetricsProviderInterface, language string,
	maxConcurrent int, finalTimeout time.Duration) *Worker {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	if finalTimeout <= 0 {
		finalTimeout = 2 * time.Minute
	}
	return &Worker{
		engine:       engine,
		store:        store,
		logger:       logger,
		metrics:      metrics,
		language:     language,
		finalTimeout: finalTimeout,
		sem:          make(chan struct{}, maxConcurrent),
		sessions:     make(map[uuid.UUID]*sessionTracker),
	}
}

// Enqueue schedules a chunk for background transcription.
func (w *Worker) Enqueue(chunk models.AudioChunk) {
	tr := w.track(chunk.SessionID)

	go func() {
		defer w.release(chunk.SessionID, tr)

		w.sem <- struct{}{}
		defer func() { <-w.sem }()

		w.transcribeChunk(chunk)
	}()
}

// Retry re-runs transcription for a failed chunk.
func (w *Worker) Retry(chunkID uuid.UUID) error {
	chunk, err := w.store.GetChunk(chunkID)
	if err != nil {
		return err
	}
	if chunk == nil {
		return fmt.Errorf("chunk %s not found", chunkID)
	}
	if chunk.TranscriptStatus != models.TranscriptFailed {
		return fmt.Errorf("chunk %s is %s, only failed chunks can be retried", chunkID, chunk.TranscriptStatus)
	}
	w.Enqueue(*chunk)
	return nil
}

// WaitSession blocks until every enqueued chunk of the session has
// finished (succeeded or failed).
func (w *Worker) WaitSession(sessionID uuid.UUID) {
	w.mu.Lock()
	tr, ok := w.sessions[sessionID]
	w.mu.Unlock()
	if ok {
		tr.wg.Wait()
	}
}

func (w *Worker) track(sessionID uuid.UUID) *sessionTracker {
	w.mu.Lock()
	defer w.mu.Unlock()
	tr, ok := w.sessions[sessionID]
	if !ok {
		tr = &sessionTracker{}
		w.sessions[sessionID] = tr
	}
	tr.pending++
	tr.wg.Add(1)
	return tr
}

func (w *Worker) release(sessionID uuid.UUID, tr *sessionTracker) {
	w.mu.Lock()
	tr.pending--
	if tr.pending == 0 {
		delete(w.sessions, sessionID)
	}
	w.mu.Unlock()
	tr.wg.Done()
}

func (w *Worker) transcribeChunk(chunk models.AudioChunk) {
	start := time.Now()

	if err := w.store.SetChunkTranscriptStatus(chunk.ID, models.TranscriptRunning, ""); err != nil {
		w.logger.Errorf(providers.TypePipeline, "Unable to mark chunk %s running: %s", chunk.ID, err)
	}

	text, err := w.runEngine(chunk)
	if err != nil {
		w.logger.Warnf(providers.TypePipeline, "Transcription failed for chunk %s: %s", chunk.ID, err)
		w.metrics.IncTranscriptions("failed")
		if serr := w.store.SetChunkTranscriptStatus(chunk.ID, models.TranscriptFailed, err.Error()); serr != nil {
			w.logger.Errorf(providers.TypePipeline, "Unable to mark chunk %s failed: %s", chunk.ID, serr)
		}
		return
	}

	segment := &models.TranscriptSegment{
		ChunkID:   chunk.ID,
		SessionID: chunk.SessionID,
		Text:      text,
		WordCount: CountWords(text),
		CreatedAt: time.Now(),
	}
	if err := w.store.InsertSegment(segment); err != nil {
		w.metrics.IncTranscriptions("failed")
		if serr := w.store.SetChunkTranscriptStatus(chunk.ID, models.TranscriptFailed, err.Error()); serr != nil {
			w.logger.Errorf(providers.TypePipeline, "Unable to mark chunk %s failed: %s", chunk.ID, serr)
		}
		return
	}

	if err := w.store.AddSessionWordCount(chunk.SessionID, segment.WordCount); err != nil {
		w.logger.Errorf(providers.TypePipeline, "Unable to update word count for session %s: %s", chunk.SessionID, err)
	}
	if err := w.store.SetChunkTranscriptStatus(chunk.ID, models.TranscriptDone, ""); err != nil {
		w.logger.Errorf(providers.TypePipeline, "Unable to mark chunk %s done: %s", chunk.ID, err)
	}

	w.metrics.IncTranscriptions("done")
	w.metrics.ObserveTranscriptionDuration(time.Since(start))
	w.logger.Debugf(providers.TypePipeline, "Chunk %s transcribed: %d words", chunk.ID, segment.WordCount)
}

// runEngine drives the speech engine through the accumulator. A timeout
// is a terminal success: whatever was accumulated is kept.
func (w *Worker) runEngine(chunk models.AudioChunk) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.finalTimeout)
	defer cancel()

	acc := NewAccumulator()
	sawFinal := false

	err := w.engine.Transcribe(ctx, chunk.FilePath, w.language, func(res Result) {
		if res.Final {
			acc.Final(res.Text)
			sawFinal = true
		} else {
			acc.Partial(res.Text)
		}
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			acc.Flush()
		} else {
			return "", err
		}
	}
	if err == nil && !sawFinal {
		acc.Flush()
	}

	transcript := acc.Transcript()
	if transcript == "" {
		return "", fmt.Errorf("engine produced no text for %s", chunk.FilePath)
	}
	return transcript, nil
}
