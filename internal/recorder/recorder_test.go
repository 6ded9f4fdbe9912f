package recorder

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
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

// pcmReader serves a fixed PCM buffer and then io.EOF.
type pcmReader struct {
	*bytes.Reader
	rate int
}

func newPCMReader(seconds, sampleRate int) *pcmReader {
	data := make([]byte, seconds*sampleRate*2)
	for i := range data {
		data[i] = byte(i)
	}
	return &pcmReader{Reader: bytes.NewReader(data), rate: sampleRate}
}

func (r *pcmReader) SampleRate() int { return r.rate }

func record(t *testing.T, seconds int, chunkDuration time.Duration) []models.AudioChunk {
	t.Helper()

	rec := New(t.TempDir(), chunkDuration, nopLogger{})
	source := newPCMReader(seconds, 16000)

	var chunks []models.AudioChunk
	err := rec.Start(uuid.New(), source, time.Now(), func(chunk models.AudioChunk) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	require.NoError(t, rec.Stop())
	return chunks
}

func TestRecorderSplitsLongSessionIntoChunks(t *testing.T) {
	// Seven minutes at a three minute chunk duration.
	chunks := record(t, 7*60, 3*time.Minute)

	require.Len(t, chunks, 3)
	assert.Equal(t, 3*time.Minute, chunks[0].Duration)
	assert.Equal(t, 3*time.Minute, chunks[1].Duration)
	assert.Equal(t, time.Minute, chunks[2].Duration)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, int64(44)+int64(chunk.Duration/time.Second)*32000, chunk.FileSize)
		assert.FileExists(t, chunk.FilePath)
	}
}

func TestRecorderOmitsEmptyTrailingChunk(t *testing.T) {
	// Exactly two chunk durations of audio: the loop rolls to a third
	// file at the boundary but must not emit it empty.
	chunks := record(t, 6*60, 3*time.Minute)

	require.Len(t, chunks, 2)
	assert.Equal(t, 3*time.Minute, chunks[0].Duration)
	assert.Equal(t, 3*time.Minute, chunks[1].Duration)
}

func TestRecorderShortSessionSingleChunk(t *testing.T) {
	chunks := record(t, 42, 3*time.Minute)

	require.Len(t, chunks, 1)
	assert.Equal(t, 42*time.Second, chunks[0].Duration)
}

func TestRecorderChunkStartTimesAreContiguous(t *testing.T) {
	chunks := record(t, 7*60, 3*time.Minute)

	require.Len(t, chunks, 3)
	assert.Equal(t, chunks[0].StartTime.Add(3*time.Minute), chunks[1].StartTime)
	assert.Equal(t, chunks[1].StartTime.Add(3*time.Minute), chunks[2].StartTime)
}

// blockingSource blocks every Read until Close is called, then
// returns io.EOF.
type blockingSource struct {
	closed chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{closed: make(chan struct{})}
}

func (s *blockingSource) Read(_ []byte) (int, error) {
	<-s.closed
	return 0, io.EOF
}

func (s *blockingSource) SampleRate() int { return 16000 }
func (s *blockingSource) Close()          { close(s.closed) }

func TestRecorderRejectsConcurrentSessions(t *testing.T) {
	rec := New(t.TempDir(), 3*time.Minute, nopLogger{})

	source := newBlockingSource()
	require.NoError(t, rec.Start(uuid.New(), source, time.Now(), func(models.AudioChunk) {}))
	assert.True(t, rec.Recording())

	err := rec.Start(uuid.New(), newPCMReader(1, 16000), time.Now(), func(models.AudioChunk) {})
	assert.Error(t, err)

	source.Close()
	require.NoError(t, rec.Stop())
	assert.False(t, rec.Recording())
}
