package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type capturedRequest struct {
	endpoint string
	status   int
}

// requestMetrics records request-level calls and ignores the rest.
type requestMetrics struct {
	requests []capturedRequest
}

func (m *requestMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requests = append(m.requests, capturedRequest{endpoint: endpoint, status: status})
}

func (m *requestMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *requestMetrics) IncCacheHits()                                    {}
func (m *requestMetrics) IncCacheMisses()                                  {}
func (m *requestMetrics) IncChunksRecorded()                               {}
func (m *requestMetrics) ObserveChunkDuration(_ time.Duration)             {}
func (m *requestMetrics) IncTranscriptions(_ string)                       {}
func (m *requestMetrics) ObserveTranscriptionDuration(_ time.Duration)     {}
func (m *requestMetrics) IncSummaries(_ string, _ string)                  {}
func (m *requestMetrics) IncEngineFallbacks(_ string, _ string)            {}
func (m *requestMetrics) ObserveBackupDuration(_ time.Duration)            {}
func (m *requestMetrics) SetSessionsTotal(_ int)                           {}

func newInstrumentedMux(metrics MetricsProviderInterface) http.Handler {
	router := NewRouterProvider()
	router.Get("/session", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	mux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		mux.Handle(route.Url, route.Handler)
	}
	return MetricsMiddleware(metrics, router, mux)
}

func TestMetricsMiddlewareLabelsRegisteredEndpoint(t *testing.T) {
	metrics := &requestMetrics{}
	handler := newInstrumentedMux(metrics)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session?id=abc-123", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []capturedRequest{{endpoint: "/session", status: http.StatusOK}}, metrics.requests)
}

func TestMetricsMiddlewareCollapsesUnmatchedPaths(t *testing.T) {
	metrics := &requestMetrics{}
	handler := newInstrumentedMux(metrics)

	for _, path := range []string{"/nope", "/admin/../etc", "/session/evil/deep"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	for _, req := range metrics.requests {
		assert.Equal(t, unmatchedEndpoint, req.endpoint)
	}
}

func TestMetricsMiddlewareRecordsStatus(t *testing.T) {
	metrics := &requestMetrics{}
	handler := newInstrumentedMux(metrics)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/session", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, metrics.requests[0].status)
}
