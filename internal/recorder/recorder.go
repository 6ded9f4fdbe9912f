// Package recorder splits a continuous audio stream into bounded WAV
// chunks without losing audio between chunk boundaries. The capture
// device itself is behind the AudioSource interface.
package recorder

import (
	"fmt"
	"io"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// AudioSource delivers 16-bit little-endian mono PCM. Read blocks until
// data is available and returns io.EOF when the stream ends.
type AudioSource interface {
	Read(p []byte) (int, error)
	SampleRate() int
}

// ChunkHandler is invoked after each chunk is finalized, while recording
// of the next chunk already continues.
type ChunkHandler func(chunk models.AudioChunk)

type Recorder struct {
	audioDir      string
	chunkDuration time.Duration
	logger        providers.Logger

	mu        sync.Mutex
	recording atomic.Bool
	done      chan struct{}
	err       error
}

func New(audioDir string, chunkDuration time.Duration, logger providers.Logger) *Recorder {
	return &Recorder{
		audioDir:      audioDir,
		chunkDuration: chunkDuration,
		logger:        logger,
	}
}

// Recording reports whether a capture loop is active.
func (r *Recorder) Recording() bool {
	return r.recording.Load()
}

// Start begins the capture loop for one session. Chunk boundaries are
// measured in audio time (bytes read at the source sample rate), not wall
// clock, so a stalled source never produces short chunks.
func (r *Recorder) Start(sessionID uuid.UUID, source AudioSource, startTime time.Time, onChunk ChunkHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording.CompareAndSwap(false, true) {
		return fmt.Errorf("recording already in progress")
	}

	if err := os.MkdirAll(r.audioDir, 0755); err != nil {
		r.recording.Store(false)
		return fmt.Errorf("unable to create audio directory: %w", err)
	}

	r.done = make(chan struct{})
	r.err = nil

	r.logger.Infof(providers.TypePipeline, "Recording started for session %s (chunk duration %s)", sessionID, r.chunkDuration)
	go r.captureLoop(sessionID, source, startTime, onChunk)
	return nil
}

// Stop waits for the capture loop to finalize the trailing chunk. The
// source must have been closed (returning io.EOF) by the caller.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done == nil {
		return fmt.Errorf("no recording in progress")
	}
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = nil
	return r.err
}

func (r *Recorder) captureLoop(sessionID uuid.UUID, source AudioSource, startTime time.Time, onChunk ChunkHandler) {
	defer func() {
		r.recording.Store(false)
		close(r.done)
	}()

	sampleRate := source.SampleRate()
	bytesPerSecond := int64(sampleRate * 2)
	chunkBytes := int64(r.chunkDuration/time.Second) * bytesPerSecond

	var (
		index      int
		chunkStart = startTime
	)

	writer, path, err := r.openChunkFile(sessionID, index, sampleRate)
	if err != nil {
		r.err = err
		return
	}

	finalize := func() (models.AudioChunk, error) {
		size, err := writer.Close()
		if err != nil {
			return models.AudioChunk{}, fmt.Errorf("finalize chunk %d: %w", index, err)
		}
		duration := time.Duration(writer.dataBytes) * time.Second / time.Duration(bytesPerSecond)
		return models.AudioChunk{
			ID:               uuid.New(),
			SessionID:        sessionID,
			ChunkIndex:       index,
			StartTime:        chunkStart,
			Duration:         duration,
			FilePath:         path,
			FileSize:         size,
			TranscriptStatus: models.TranscriptPending,
			CreatedAt:        time.Now(),
		}, nil
	}

	buf := make([]byte, 4096)
	for {
		n, readErr := source.Read(buf)

		offset := 0
		for offset < n {
			remaining := chunkBytes - writer.dataBytes
			take := int64(n - offset)
			if take > remaining {
				take = remaining
			}
			if _, err := writer.Write(buf[offset : offset+int(take)]); err != nil {
				r.err = fmt.Errorf("write chunk %d: %w", index, err)
				writer.Close()
				return
			}
			offset += int(take)

			if writer.dataBytes >= chunkBytes {
				// Boundary: finalize and immediately roll to the next
				// chunk so no audio is dropped.
				chunk, err := finalize()
				if err != nil {
					r.err = err
					return
				}
				chunkStart = chunkStart.Add(chunk.Duration)
				onChunk(chunk)

				index++
				writer, path, err = r.openChunkFile(sessionID, index, sampleRate)
				if err != nil {
					r.err = err
					return
				}
			}
		}

		if readErr != nil {
			if readErr != io.EOF {
				r.err = fmt.Errorf("audio source: %w", readErr)
				r.logger.Errorf(providers.TypePipeline, "Audio source failed: %s", readErr)
			}
			break
		}
	}

	// Trailing chunk: only emit when it holds audio.
	if writer.dataBytes > 0 {
		chunk, err := finalize()
		if err != nil {
			r.err = err
			return
		}
		onChunk(chunk)
	} else {
		writer.Close()
		os.Remove(path)
	}
}

func (r *Recorder) openChunkFile(sessionID uuid.UUID, index int, sampleRate int) (*wavWriter, string, error) {
	name := fmt.Sprintf("%s_%03d.wav", sessionID.String(), index)
	path := filepath.Join(r.audioDir, name)
	writer, err := newWavWriter(path, sampleRate)
	if err != nil {
		return nil, "", fmt.Errorf("open chunk %d: %w", index, err)
	}
	return writer, path, nil
}
