package services

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/summarize"
	"strings"
	"time"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

const archiveVersion = 1

// Archive is the full-fidelity JSON export format. Timestamps are
// RFC3339Nano and survive an export-import round trip exactly.
type Archive struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Sessions   []SessionExport  `json:"sessions"`
	Summaries  []models.Summary `json:"summaries"`
}

// SessionExport bundles a session with its chunks and segments.
type SessionExport struct {
	Session  models.RecordingSession    `json:"session"`
	Chunks   []models.AudioChunk        `json:"chunks"`
	Segments []models.TranscriptSegment `json:"segments"`
}

// ImportReport tallies what an import did per entity.
type ImportReport struct {
	Sessions         int `json:"sessions"`
	Chunks           int `json:"chunks"`
	Segments         int `json:"segments"`
	Summaries        int `json:"summaries"`
	SkippedSessions  int `json:"skipped_sessions"`
	SkippedSummaries int `json:"skipped_summaries"`
	Failed           int `json:"failed"`
}

// MarkdownOptions controls the human-readable export.
type MarkdownOptions struct {
	// Category keeps only sessions of one category when set.
	Category models.Category
	// Redact masks proper nouns in transcripts and summaries.
	Redact bool
}

// ExportService writes and reads journal archives. JSON exports carry
// everything except audio files; Markdown exports are for reading, not
// re-import.
type ExportService struct {
	store  *storage.Store
	logger providers.Logger
}

func NewExportService(store *storage.Store, logger providers.Logger) *ExportService {
	return &ExportService{store: store, logger: logger}
}

// ExportJSON streams the full archive, zstd-compressed when requested.
func (s *ExportService) ExportJSON(w io.Writer, compress bool) error {
	archive, err := s.buildArchive()
	if err != nil {
		return err
	}

	if compress {
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("unable to create compressor: %w", err)
		}
		if err := json.NewEncoder(zw).Encode(archive); err != nil {
			zw.Close()
			return fmt.Errorf("unable to encode archive: %w", err)
		}
		return zw.Close()
	}
	return json.NewEncoder(w).Encode(archive)
}

func (s *ExportService) buildArchive() (*Archive, error) {
	sessions, err := s.store.AllSessions()
	if err != nil {
		return nil, err
	}

	archive := &Archive{
		Version:    archiveVersion,
		ExportedAt: time.Now().UTC(),
	}
	for _, sess := range sessions {
		chunks, err := s.store.ChunksForSession(sess.ID)
		if err != nil {
			return nil, err
		}
		segments, err := s.store.SegmentsForSession(sess.ID)
		if err != nil {
			return nil, err
		}
		archive.Sessions = append(archive.Sessions, SessionExport{
			Session:  sess,
			Chunks:   chunks,
			Segments: segments,
		})
	}

	if archive.Summaries, err = s.store.ListSummaries(); err != nil {
		return nil, err
	}
	return archive, nil
}

// zstd frame magic, little-endian.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Import reads an archive, plain or zstd-compressed, skipping sessions
// and summaries that already exist. Timestamps are restored exactly as
// exported.
func (s *ExportService) Import(r io.Reader) (*ImportReport, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("unable to read archive: %w", err)
	}

	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("unable to open compressed archive: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var archive Archive
	if err := json.NewDecoder(src).Decode(&archive); err != nil {
		return nil, fmt.Errorf("malformed archive: %w", err)
	}
	if archive.Version != archiveVersion {
		return nil, fmt.Errorf("unsupported archive version %d", archive.Version)
	}

	report := &ImportReport{}
	importedSessions := make(map[string]struct{})

	for _, se := range archive.Sessions {
		existing, err := s.store.GetSession(se.Session.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			report.SkippedSessions++
			continue
		}

		if err := s.store.CreateSession(&se.Session); err != nil {
			s.logger.Warnf(providers.TypeApp, "Import: unable to create session %s: %s", se.Session.ID, err)
			report.Failed++
			continue
		}
		report.Sessions++
		importedSessions[se.Session.ID.String()] = struct{}{}

		for i := range se.Chunks {
			if err := s.store.CreateChunk(&se.Chunks[i]); err != nil {
				s.logger.Warnf(providers.TypeApp, "Import: unable to create chunk %s: %s", se.Chunks[i].ID, err)
				report.Failed++
				continue
			}
			report.Chunks++
		}
		for i := range se.Segments {
			if err := s.store.InsertSegment(&se.Segments[i]); err != nil {
				s.logger.Warnf(providers.TypeApp, "Import: unable to insert segment for chunk %s: %s", se.Segments[i].ChunkID, err)
				report.Failed++
				continue
			}
			report.Segments++
		}
	}

	for i := range archive.Summaries {
		sum := archive.Summaries[i]
		skip, err := s.summaryExists(&sum, importedSessions)
		if err != nil {
			return nil, err
		}
		if skip {
			report.SkippedSummaries++
			continue
		}
		sum.ID = 0
		if err := s.store.UpsertSummary(&sum); err != nil {
			s.logger.Warnf(providers.TypeApp, "Import: unable to store %s summary: %s", sum.PeriodType, err)
			report.Failed++
			continue
		}
		report.Summaries++
	}

	s.logger.Infof(providers.TypeApp, "Import finished: %d sessions, %d summaries, %d skipped, %d failed",
		report.Sessions, report.Summaries, report.SkippedSessions+report.SkippedSummaries, report.Failed)
	return report, nil
}

// summaryExists decides whether an incoming summary collides with local
// data. Session summaries are skipped unless their session was imported
// in this run; period summaries are skipped when the slot is taken.
func (s *ExportService) summaryExists(sum *models.Summary, importedSessions map[string]struct{}) (bool, error) {
	if sum.SessionID != nil {
		if _, imported := importedSessions[sum.SessionID.String()]; !imported {
			return true, nil
		}
		return false, nil
	}
	existing, err := s.store.GetPeriodSummary(sum.PeriodType, sum.PeriodStart)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// ExportMarkdown writes a readable journal document.
func (s *ExportService) ExportMarkdown(w io.Writer, opts MarkdownOptions) error {
	sessions, err := s.store.AllSessions()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Life Wrapped Journal\n\nExported %s\n", time.Now().Format("January 2, 2006"))

	for _, sess := range sessions {
		if opts.Category != "" && sess.Category != opts.Category {
			continue
		}

		fmt.Fprintf(bw, "\n## %s", sess.StartTime.Format("Monday, January 2 2006 15:04"))
		if sess.IsFavorite {
			bw.WriteString(" ★")
		}
		fmt.Fprintf(bw, "\n\n*Category: %s · %d words*\n", sess.Category, sess.WordCount)

		if sum, err := s.store.GetSessionSummary(sess.ID); err == nil && sum != nil {
			text := sum.Text
			if opts.Redact {
				text = redactNames(text)
			}
			fmt.Fprintf(bw, "\n**%s**\n\n%s\n", sum.Title, text)
		}

		segments, err := s.store.SegmentsForSession(sess.ID)
		if err != nil {
			return err
		}
		if len(segments) > 0 {
			bw.WriteString("\n### Transcript\n\n")
			parts := make([]string, 0, len(segments))
			for _, seg := range segments {
				parts = append(parts, seg.Text)
			}
			text := strings.Join(parts, " ")
			if opts.Redact {
				text = redactNames(text)
			}
			bw.WriteString(text)
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// redactNames masks capitalized non-sentence-initial words, the same
// heuristic the mention detector uses.
func redactNames(text string) string {
	var out []string
	for _, sentence := range summarize.SplitSentences(text) {
		words := strings.Fields(sentence)
		for i := 1; i < len(words); i++ {
			trimmed := strings.TrimFunc(words[i], func(r rune) bool {
				return !unicode.IsLetter(r)
			})
			if trimmed == "" || trimmed == "I" {
				continue
			}
			if unicode.IsUpper([]rune(trimmed)[0]) && !summarize.IsStopword(trimmed) {
				words[i] = strings.Replace(words[i], trimmed, "█████", 1)
			}
		}
		out = append(out, strings.Join(words, " "))
	}
	return strings.Join(out, " ")
}
