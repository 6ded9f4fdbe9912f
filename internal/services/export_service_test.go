package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifewrapped/internal/models"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/testutil"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seedJournal fills a store with one complete session: chunk, segment,
// session summary and a week summary.
func seedJournal(t *testing.T, store *storage.Store) models.RecordingSession {
	t.Helper()

	start := time.Date(2025, 6, 4, 8, 15, 42, 123456000, time.UTC)
	end := start.Add(6 * time.Minute)
	sess := models.RecordingSession{
		ID:         uuid.New(),
		StartTime:  start,
		EndTime:    &end,
		Category:   models.CategoryWork,
		IsFavorite: true,
		WordCount:  9,
		CreatedAt:  start,
	}
	require.NoError(t, store.CreateSession(&sess))

	chunk := models.AudioChunk{
		ID:               uuid.New(),
		SessionID:        sess.ID,
		ChunkIndex:       0,
		StartTime:        start,
		Duration:         3 * time.Minute,
		FilePath:         "/tmp/audio.wav",
		FileSize:         5764044,
		TranscriptStatus: models.TranscriptDone,
		CreatedAt:        start,
	}
	require.NoError(t, store.CreateChunk(&chunk))

	seg := models.TranscriptSegment{
		ChunkID:   chunk.ID,
		SessionID: sess.ID,
		Text:      "Met with Sarah about the quarterly planning at Rivertown.",
		WordCount: 9,
		CreatedAt: start,
	}
	require.NoError(t, store.InsertSegment(&seg))

	require.NoError(t, store.UpsertSummary(&models.Summary{
		PeriodType:  models.PeriodSession,
		PeriodStart: start,
		PeriodEnd:   end,
		SessionID:   &sess.ID,
		Engine:      "basic",
		Title:       "Planning",
		Text:        "Planning discussion with Sarah.",
		CreatedAt:   start,
	}))

	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertSummary(&models.Summary{
		PeriodType:  models.PeriodWeek,
		PeriodStart: weekStart,
		PeriodEnd:   weekStart.AddDate(0, 0, 7),
		Engine:      "basic",
		Title:       "The week",
		Text:        "A week of planning.",
		CreatedAt:   start,
	}))
	return sess
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		source := newTestStore(t)
		sess := seedJournal(t, source)
		export := NewExportService(source, &testutil.MockLogger{})

		var buf bytes.Buffer
		require.NoError(t, export.ExportJSON(&buf, compress))

		target := newTestStore(t)
		importer := NewExportService(target, &testutil.MockLogger{})
		report, err := importer.Import(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)

		assert.Equal(t, 1, report.Sessions)
		assert.Equal(t, 1, report.Chunks)
		assert.Equal(t, 1, report.Segments)
		assert.Equal(t, 2, report.Summaries)
		assert.Equal(t, 0, report.Failed)

		sourceCounts, err := source.Counts()
		require.NoError(t, err)
		targetCounts, err := target.Counts()
		require.NoError(t, err)
		assert.Equal(t, sourceCounts, targetCounts)

		got, err := target.GetSession(sess.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sess.StartTime.Format(time.RFC3339Nano), got.StartTime.Format(time.RFC3339Nano))
		require.NotNil(t, got.EndTime)
		assert.Equal(t, sess.EndTime.Format(time.RFC3339Nano), got.EndTime.Format(time.RFC3339Nano))
		assert.True(t, got.IsFavorite)
		assert.Equal(t, models.CategoryWork, got.Category)
	}
}

func TestImportSkipsExistingData(t *testing.T) {
	store := newTestStore(t)
	seedJournal(t, store)
	export := NewExportService(store, &testutil.MockLogger{})

	var buf bytes.Buffer
	require.NoError(t, export.ExportJSON(&buf, false))

	// Importing into the same store changes nothing.
	report, err := export.Import(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sessions)
	assert.Equal(t, 1, report.SkippedSessions)
	assert.Equal(t, 2, report.SkippedSummaries)

	counts, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, storage.Counts{Sessions: 1, Chunks: 1, Segments: 1, Summaries: 2}, counts)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	store := newTestStore(t)
	export := NewExportService(store, &testutil.MockLogger{})

	_, err := export.Import(strings.NewReader(`{"version": 99, "sessions": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive version")
}

func TestExportMarkdown(t *testing.T) {
	store := newTestStore(t)
	seedJournal(t, store)
	export := NewExportService(store, &testutil.MockLogger{})

	var buf bytes.Buffer
	require.NoError(t, export.ExportMarkdown(&buf, MarkdownOptions{}))

	out := buf.String()
	assert.Contains(t, out, "# Life Wrapped Journal")
	assert.Contains(t, out, "★")
	assert.Contains(t, out, "Met with Sarah")
	assert.Contains(t, out, "### Transcript")
}

func TestExportMarkdownFiltersAndRedacts(t *testing.T) {
	store := newTestStore(t)
	seedJournal(t, store)
	export := NewExportService(store, &testutil.MockLogger{})

	var buf bytes.Buffer
	require.NoError(t, export.ExportMarkdown(&buf, MarkdownOptions{Category: models.CategoryPersonal}))
	assert.NotContains(t, buf.String(), "Met with Sarah")

	buf.Reset()
	require.NoError(t, export.ExportMarkdown(&buf, MarkdownOptions{Redact: true}))
	out := buf.String()
	assert.NotContains(t, out, "Sarah")
	assert.NotContains(t, out, "Rivertown")
	assert.Contains(t, out, "█████")
}
