// Package pipeline wires the recorder, transcription worker, storage
// and summarization coordinator into the recording lifecycle.
package pipeline

import (
	"context"
	"fmt"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/recorder"
	"lifewrapped/internal/services"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/structures"
	"lifewrapped/internal/transcription"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventChunkRecorded  EventType = "chunk_recorded"
	EventSessionStopped EventType = "session_stopped"
	EventSummaryReady   EventType = "summary_ready"
	EventError          EventType = "error"
)

// Event is a pipeline notification. Consumers that fall behind miss
// events rather than stalling the pipeline.
type Event struct {
	Type       EventType `json:"type"`
	SessionID  uuid.UUID `json:"session_id"`
	ChunkIndex int       `json:"chunk_index,omitempty"`
	Message    string    `json:"message,omitempty"`
	Time       time.Time `json:"time"`
}

// Status describes the current recording state.
type Status struct {
	Recording bool       `json:"recording"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Chunks    int        `json:"chunks"`
}

// Coordinator owns the recording lifecycle: it creates the session row,
// persists finalized chunks, hands them to the transcription worker and
// triggers session summarization once the last chunk is transcribed.
type Coordinator struct {
	conf    *structures.Config
	store   *storage.Store
	rec     *recorder.Recorder
	worker  *transcription.Worker
	rollups *services.RollupService
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	events chan Event

	mu      sync.Mutex
	current *models.RecordingSession
	source  *recorder.PCMFileSource
	chunks  int
}

func NewCoordinator(conf *structures.Config, store *storage.Store, rec *recorder.Recorder,
	worker *transcription.Worker, rollups *services.RollupService,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *Coordinator {
	return &Coordinator{
		conf:    conf,
		store:   store,
		rec:     rec,
		worker:  worker,
		rollups: rollups,
		logger:  logger,
		metrics: metrics,
		events:  make(chan Event, 64),
	}
}

// Events exposes the pipeline notification stream.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// StartRecording opens the capture device and begins a new session.
func (c *Coordinator) StartRecording() (*models.RecordingSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return nil, fmt.Errorf("session %s is already recording", c.current.ID)
	}

	source, err := recorder.OpenPCMFileSource(c.conf.Recording.Device, c.conf.Recording.SampleRate)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &models.RecordingSession{
		ID:        uuid.New(),
		StartTime: now,
		Category:  models.CategoryUncategorized,
		CreatedAt: now,
	}
	if err := c.store.CreateSession(sess); err != nil {
		source.Close()
		return nil, err
	}

	if err := c.rec.Start(sess.ID, source, now, c.onChunk); err != nil {
		source.Close()
		return nil, err
	}

	c.current = sess
	c.source = source
	c.chunks = 0
	c.emit(Event{Type: EventSessionStarted, SessionID: sess.ID, Time: now})
	return sess, nil
}

// StopRecording finalizes the trailing chunk, closes the session and
// kicks off summarization once the remaining transcriptions drain.
func (c *Coordinator) StopRecording() (*models.RecordingSession, error) {
	c.mu.Lock()
	sess := c.current
	source := c.source
	c.current = nil
	c.source = nil
	c.mu.Unlock()

	if sess == nil {
		return nil, fmt.Errorf("no recording in progress")
	}

	source.Close()
	if err := c.rec.Stop(); err != nil {
		c.logger.Errorf(providers.TypePipeline, "Recording for session %s ended with error: %s", sess.ID, err)
		c.emit(Event{Type: EventError, SessionID: sess.ID, Message: err.Error(), Time: time.Now()})
	}

	end := time.Now()
	if err := c.store.EndSession(sess.ID, end); err != nil {
		return nil, err
	}
	sess.EndTime = &end
	c.emit(Event{Type: EventSessionStopped, SessionID: sess.ID, Time: end})

	go c.finalizeSession(sess.ID)
	return sess, nil
}

// Status reports whether a session is recording and how many chunks it
// has produced so far.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Status{}
	}
	start := c.current.StartTime
	id := c.current.ID
	return Status{Recording: true, SessionID: &id, StartedAt: &start, Chunks: c.chunks}
}

// Shutdown stops any active recording and waits for its transcriptions.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	recording := c.current != nil
	c.mu.Unlock()

	if !recording {
		return nil
	}
	sess, err := c.StopRecording()
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		c.worker.WaitSession(sess.ID)
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onChunk runs on the capture goroutine while the next chunk already
// records; it must not block on the transcription semaphore.
func (c *Coordinator) onChunk(chunk models.AudioChunk) {
	if err := c.store.CreateChunk(&chunk); err != nil {
		c.logger.Errorf(providers.TypePipeline, "Unable to persist chunk %d of session %s: %s",
			chunk.ChunkIndex, chunk.SessionID, err)
		c.emit(Event{Type: EventError, SessionID: chunk.SessionID, ChunkIndex: chunk.ChunkIndex,
			Message: err.Error(), Time: time.Now()})
		return
	}

	c.mu.Lock()
	c.chunks++
	c.mu.Unlock()

	c.metrics.IncChunksRecorded()
	c.metrics.ObserveChunkDuration(chunk.Duration)
	c.worker.Enqueue(chunk)
	c.emit(Event{Type: EventChunkRecorded, SessionID: chunk.SessionID,
		ChunkIndex: chunk.ChunkIndex, Time: time.Now()})
}

func (c *Coordinator) finalizeSession(sessionID uuid.UUID) {
	c.worker.WaitSession(sessionID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sum, err := c.rollups.RegenerateSession(ctx, sessionID)
	if err != nil {
		c.logger.Warnf(providers.TypePipeline, "Unable to summarize session %s: %s", sessionID, err)
		c.emit(Event{Type: EventError, SessionID: sessionID, Message: err.Error(), Time: time.Now()})
		return
	}
	c.emit(Event{Type: EventSummaryReady, SessionID: sessionID, Message: sum.Title, Time: time.Now()})
}

// RetryChunk re-runs a failed chunk transcription.
func (c *Coordinator) RetryChunk(chunkID uuid.UUID) error {
	return c.worker.Retry(chunkID)
}

func (c *Coordinator) emit(e Event) {
	select {
	case c.events <- e:
	default:
		// Nobody is listening fast enough; drop rather than block
		// the capture path.
	}
}
