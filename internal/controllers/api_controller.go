package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"lifewrapped/internal/models"
	"lifewrapped/internal/pipeline"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/services"
	"lifewrapped/internal/structures"
)

const maxRequestBodySize = 64 << 20 // 64 MB, imports carry whole archives

type ApiController struct {
	conf     *structures.Config
	logger   providers.Logger
	cache    providers.CacheProviderInterface
	secrets  providers.SecretsProviderInterface
	journal  *services.JournalService
	rollups  *services.RollupService
	insights *services.InsightService
	export   *services.ExportService
	coord    *pipeline.Coordinator
}

func NewApiController(conf *structures.Config, logger providers.Logger,
	cache providers.CacheProviderInterface, secrets providers.SecretsProviderInterface,
	journal *services.JournalService, rollups *services.RollupService,
	insights *services.InsightService, export *services.ExportService,
	coord *pipeline.Coordinator) *ApiController {
	return &ApiController{
		conf:     conf,
		logger:   logger,
		cache:    cache,
		secrets:  secrets,
		journal:  journal,
		rollups:  rollups,
		insights: insights,
		export:   export,
		coord:    coord,
	}
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeError(w http.ResponseWriter, status int, err error) {
	ac.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %q parameter", name)
	}
	return uuid.Parse(raw)
}

// timeRange parses optional from/to query parameters, defaulting to the
// last 30 days.
func timeRange(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from: %w", err)
		}
		from = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to: %w", err)
		}
		to = t
	}
	return from, to, nil
}

func (ac *ApiController) StartRecording(w http.ResponseWriter, r *http.Request) {
	sess, err := ac.coord.StartRecording()
	if err != nil {
		ac.writeError(w, http.StatusConflict, err)
		return
	}
	ac.writeJSON(w, http.StatusCreated, sess)
}

func (ac *ApiController) StopRecording(w http.ResponseWriter, r *http.Request) {
	sess, err := ac.coord.StopRecording()
	if err != nil {
		ac.writeError(w, http.StatusConflict, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, sess)
}

func (ac *ApiController) RecordingStatus(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.coord.Status())
}

func (ac *ApiController) ListSessions(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	sessions, err := ac.journal.SessionsInRange(from, to)
	if err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, sessions)
}

func (ac *ApiController) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := ac.journal.Session(id)
	if err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sess == nil {
		ac.writeError(w, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return
	}
	ac.writeJSON(w, http.StatusOK, sess)
}

type sessionIDPayload struct {
	ID uuid.UUID `json:"id"`
}

func (ac *ApiController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload sessionIDPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.journal.DeleteSession(payload.ID); err != nil {
		ac.writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) SetCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		ID       uuid.UUID `json:"id"`
		Category string    `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.journal.SetCategory(payload.ID, payload.Category); err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) SetFavorite(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		ID       uuid.UUID `json:"id"`
		Favorite bool      `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.journal.SetFavorite(payload.ID, payload.Favorite); err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) RetryChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload sessionIDPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.coord.RetryChunk(payload.ID); err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (ac *ApiController) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "session")
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := ac.journal.Transcript(id)
	if err != nil {
		ac.writeError(w, http.StatusNotFound, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, view)
}

// GetSummary serves session summaries (?session=) and period summaries
// (?period=&at=). Period summaries generate lazily on first view.
func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("session") != "" {
		id, err := uuidParam(r, "session")
		if err != nil {
			ac.writeError(w, http.StatusBadRequest, err)
			return
		}
		sum, err := ac.rollups.SessionSummary(r.Context(), id)
		if err != nil {
			ac.writeError(w, http.StatusInternalServerError, err)
			return
		}
		ac.writeJSON(w, http.StatusOK, services.SummaryView{Summary: sum})
		return
	}

	pt, at, err := periodParams(r)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := ac.rollups.PeriodSummary(r.Context(), pt, at)
	if err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, view)
}

func (ac *ApiController) RegenerateSummary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Session *uuid.UUID `json:"session,omitempty"`
		Period  string     `json:"period,omitempty"`
		At      *time.Time `json:"at,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if payload.Session != nil {
		sum, err := ac.rollups.RegenerateSession(r.Context(), *payload.Session)
		if err != nil {
			ac.writeError(w, http.StatusInternalServerError, err)
			return
		}
		ac.writeJSON(w, http.StatusOK, sum)
		return
	}

	pt, err := models.ParsePeriodType(payload.Period)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	at := time.Now()
	if payload.At != nil {
		at = *payload.At
	}
	sum, err := ac.rollups.Regenerate(r.Context(), pt, at)
	if err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, sum)
}

func periodParams(r *http.Request) (models.PeriodType, time.Time, error) {
	pt, err := models.ParsePeriodType(r.URL.Query().Get("period"))
	if err != nil {
		return "", time.Time{}, err
	}
	if pt == models.PeriodSession {
		return "", time.Time{}, errors.New("session summaries require a session parameter")
	}
	at := time.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		if at, err = time.Parse(time.RFC3339, raw); err != nil {
			return "", time.Time{}, fmt.Errorf("invalid at: %w", err)
		}
	}
	return pt, at, nil
}

func (ac *ApiController) GetWordCloud(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	key := fmt.Sprintf("words:%d:%d", from.Unix(), to.Unix())
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.insights.WordCloud(from, to)
	})
}

func (ac *ApiController) GetMentions(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	key := fmt.Sprintf("mentions:%d:%d", from.Unix(), to.Unix())
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.insights.Mentions(from, to)
	})
}

func (ac *ApiController) GetSentiment(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	key := fmt.Sprintf("sentiment:%d:%d", from.Unix(), to.Unix())
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return ac.insights.SentimentTimeline(from, to)
	})
}

// Export streams the archive. format=json (default) or markdown;
// compress=true wraps JSON in zstd; category and redact shape the
// Markdown output.
func (ac *ApiController) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("format") {
	case "", "json":
		compress := q.Get("compress") == "true"
		if compress {
			w.Header().Set("Content-Type", "application/zstd")
			w.Header().Set("Content-Disposition", `attachment; filename="lifewrapped.json.zst"`)
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		if err := ac.export.ExportJSON(w, compress); err != nil {
			ac.logger.Errorf(providers.TypeHttp, "Export failed: %s", err)
		}
	case "markdown":
		opts := services.MarkdownOptions{Redact: q.Get("redact") == "true"}
		if raw := q.Get("category"); raw != "" {
			cat, ok := models.ParseCategory(raw)
			if !ok {
				ac.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid category %q", raw))
				return
			}
			opts.Category = cat
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := ac.export.ExportMarkdown(w, opts); err != nil {
			ac.logger.Errorf(providers.TypeHttp, "Markdown export failed: %s", err)
		}
	default:
		ac.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown export format %q", q.Get("format")))
	}
}

func (ac *ApiController) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	report, err := ac.export.Import(r.Body)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, report)
}

type secretPayload struct {
	Provider string `json:"provider"`
	Key      string `json:"key,omitempty"`
}

func (p secretPayload) secretName() (string, error) {
	switch p.Provider {
	case "openai", "anthropic":
		return p.Provider + "_api_key", nil
	}
	return "", fmt.Errorf("unknown provider %q", p.Provider)
}

func (ac *ApiController) SetSecret(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload secretPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name, err := payload.secretName()
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Key == "" {
		ac.writeError(w, http.StatusBadRequest, errors.New("key must not be empty"))
		return
	}
	if err := ac.secrets.Set(name, payload.Key); err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	ac.logger.Infof(providers.TypeApp, "API key stored for provider %s", payload.Provider)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload secretPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name, err := payload.secretName()
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := ac.secrets.Delete(name); err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllData wipes everything. Requires an explicit confirm flag and
// reports the exact counts that were removed.
func (ac *ApiController) DeleteAllData(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !payload.Confirm {
		ac.writeError(w, http.StatusBadRequest, errors.New("deletion requires confirm=true"))
		return
	}

	counts, err := ac.journal.DeleteAll(ac.conf.Recording.AudioDir)
	if err != nil {
		ac.writeError(w, http.StatusInternalServerError, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, map[string]any{"deleted": counts})
}
