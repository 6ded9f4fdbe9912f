package providers

import (
	"lifewrapped/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncChunksRecorded()
	ObserveChunkDuration(duration time.Duration)
	IncTranscriptions(outcome string)
	ObserveTranscriptionDuration(duration time.Duration)
	IncSummaries(engine string, level string)
	IncEngineFallbacks(from string, to string)
	ObserveBackupDuration(duration time.Duration)
	SetSessionsTotal(count int)
}

type MetricsProvider struct {
	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	cacheHits             prometheus.Counter
	cacheMisses           prometheus.Counter
	chunksRecorded        prometheus.Counter
	chunkDuration         prometheus.Histogram
	transcriptionsTotal   *prometheus.CounterVec
	transcriptionDuration prometheus.Histogram
	summariesTotal        *prometheus.CounterVec
	engineFallbacks       *prometheus.CounterVec
	backupDuration        prometheus.Histogram
	sessionsTotal         prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncChunksRecorded() {
	m.chunksRecorded.Inc()
}

func (m *MetricsProvider) ObserveChunkDuration(duration time.Duration) {
	m.chunkDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncTranscriptions(outcome string) {
	m.transcriptionsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveTranscriptionDuration(duration time.Duration) {
	m.transcriptionDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSummaries(engine string, level string) {
	m.summariesTotal.WithLabelValues(engine, level).Inc()
}

func (m *MetricsProvider) IncEngineFallbacks(from string, to string) {
	m.engineFallbacks.WithLabelValues(from, to).Inc()
}

func (m *MetricsProvider) ObserveBackupDuration(duration time.Duration) {
	m.backupDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetSessionsTotal(count int) {
	m.sessionsTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifewrapped_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifewrapped_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifewrapped_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifewrapped_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		chunksRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifewrapped_chunks_recorded_total",
			Help: "Total number of finalized audio chunks",
		}),

		chunkDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifewrapped_chunk_duration_seconds",
			Help:    "Duration of finalized audio chunks in seconds",
			Buckets: []float64{30, 60, 120, 180, 240, 300},
		}),

		transcriptionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifewrapped_transcriptions_total",
			Help: "Total number of chunk transcriptions by outcome",
		}, []string{"outcome"}),

		transcriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifewrapped_transcription_duration_seconds",
			Help:    "Duration of chunk transcription in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		summariesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifewrapped_summaries_total",
			Help: "Total number of generated summaries by engine and level",
		}, []string{"engine", "level"}),

		engineFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifewrapped_engine_fallbacks_total",
			Help: "Total number of summarization engine fallbacks",
		}, []string{"from", "to"}),

		backupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifewrapped_backup_duration_seconds",
			Help:    "Duration of backup snapshot operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		sessionsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lifewrapped_sessions_total",
			Help: "Total number of recording sessions in storage",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncChunksRecorded()                               {}
func (n *noopMetrics) ObserveChunkDuration(_ time.Duration)             {}
func (n *noopMetrics) IncTranscriptions(_ string)                       {}
func (n *noopMetrics) ObserveTranscriptionDuration(_ time.Duration)     {}
func (n *noopMetrics) IncSummaries(_ string, _ string)                  {}
func (n *noopMetrics) IncEngineFallbacks(_ string, _ string)            {}
func (n *noopMetrics) ObserveBackupDuration(_ time.Duration)            {}
func (n *noopMetrics) SetSessionsTotal(_ int)                           {}
