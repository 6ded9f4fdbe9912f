package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifewrapped/internal/models"
	"lifewrapped/internal/recorder"
	"lifewrapped/internal/services"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/structures"
	"lifewrapped/internal/summarize"
	"lifewrapped/internal/testutil"
	"lifewrapped/internal/transcription"
)

// newTestPipeline builds a coordinator over a real store with a scripted
// transcription engine and a device file holding two seconds of PCM.
func newTestPipeline(t *testing.T) (*Coordinator, *storage.Store) {
	t.Helper()

	device := filepath.Join(t.TempDir(), "capture.pcm")
	require.NoError(t, os.WriteFile(device, make([]byte, 2*16000*2), 0644))

	conf := &structures.Config{}
	conf.Recording.Device = device
	conf.Recording.SampleRate = 16000
	conf.Recording.AudioDir = t.TempDir()

	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()

	engine := &testutil.ScriptedTranscription{
		Results: []transcription.Result{{Text: "spoken words recorded here", Final: true}},
	}
	worker := transcription.NewWorker(engine, store, logger, metrics, "en-US", 3, time.Minute)

	rec := recorder.New(conf.Recording.AudioDir, time.Second, logger)
	journal := services.NewJournalService(store, logger)
	summarizer := summarize.NewCoordinator(summarize.TierBasic,
		[]summarize.Engine{summarize.NewBasicEngine(nil)}, logger, metrics)
	rollups := services.NewRollupService(store, journal, summarizer, logger)

	return NewCoordinator(conf, store, rec, worker, rollups, logger, metrics), store
}

func waitForEvent(t *testing.T, events <-chan Event, want EventType) Event {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Type == want {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestRecordingLifecycle(t *testing.T) {
	coord, store := newTestPipeline(t)

	sess, err := coord.StartRecording()
	require.NoError(t, err)

	status := coord.Status()
	assert.True(t, status.Recording)
	require.NotNil(t, status.SessionID)
	assert.Equal(t, sess.ID, *status.SessionID)

	// A second start while a session is open must be refused.
	_, err = coord.StartRecording()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already recording")

	stopped, err := coord.StopRecording()
	require.NoError(t, err)
	require.NotNil(t, stopped.EndTime)

	waitForEvent(t, coord.Events(), EventSummaryReady)

	// Two seconds of audio at a one second chunk duration.
	chunks, err := store.ChunksForSession(sess.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.Equal(t, models.TranscriptDone, chunk.TranscriptStatus)
		assert.FileExists(t, chunk.FilePath)
	}

	sum, err := store.GetSessionSummary(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, "basic", sum.Engine)

	assert.False(t, coord.Status().Recording)
}

func TestStopWithoutRecording(t *testing.T) {
	coord, _ := newTestPipeline(t)

	_, err := coord.StopRecording()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recording in progress")
}

func TestBackupWritesCompressedSnapshot(t *testing.T) {
	_, store := newTestPipeline(t)
	logger := &testutil.MockLogger{}
	export := services.NewExportService(store, logger)

	dir := filepath.Join(t.TempDir(), "backups")
	backup := NewBackup(export, dir, logger, testutil.NewMockMetrics())
	require.NoError(t, backup.Run())

	data, err := os.ReadFile(filepath.Join(dir, "lifewrapped-backup.json.zst"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0x28, 0xb5, 0x2f, 0xfd}))

	// The snapshot must be a readable archive.
	report, err := export.Import(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failed)
}
