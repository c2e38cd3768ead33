package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the screening engine's metrics.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Screening
	ScreeningsTotal        CounterVec
	ScreeningDuration      HistogramVec
	ScreeningRiskScore     HistogramVec
	EvidenceItemsTotal     CounterVec
	RetrievalFailuresTotal CounterVec

	// Model
	ModelTrainingsTotal   CounterVec
	ModelTrainingDuration HistogramVec
	ModelReady            GaugeVec
	ModelVocabularySize   GaugeVec

	// Infrastructure
	CacheHitsTotal       CounterVec
	CacheMissesTotal     CounterVec
	EventsPublishedTotal CounterVec
	MessagesHandledTotal CounterVec
	WatchlistRunsTotal   CounterVec
	HealthCheckStatus    GaugeVec
	ErrorsTotal          CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultScreeningDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultTrainingDurationBuckets  = []float64{.1, .5, 1, 5, 10, 30, 60, 300}
	RiskScoreBuckets                = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC calls", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC call duration", DefaultHTTPDurationBuckets, "service", "method")

	m.ScreeningsTotal = collector.RegisterCounter("screenings_total", "Completed screenings", "mode", "status")
	m.ScreeningDuration = collector.RegisterHistogram("screening_duration_seconds", "Screening duration", DefaultScreeningDurationBuckets, "mode")
	m.ScreeningRiskScore = collector.RegisterHistogram("screening_risk_score", "Risk score of found screenings", RiskScoreBuckets, "mode")
	m.EvidenceItemsTotal = collector.RegisterCounter("evidence_items_total", "Classified evidence items", "typology")
	m.RetrievalFailuresTotal = collector.RegisterCounter("retrieval_failures_total", "Live retrieval failures treated as zero articles", "retriever")

	m.ModelTrainingsTotal = collector.RegisterCounter("model_trainings_total", "Classifier trainings", "trigger", "status")
	m.ModelTrainingDuration = collector.RegisterHistogram("model_training_duration_seconds", "Classifier training duration", DefaultTrainingDurationBuckets, "trigger")
	m.ModelReady = collector.RegisterGauge("model_ready", "Classifier loaded (1) or not (0)", "version")
	m.ModelVocabularySize = collector.RegisterGauge("model_vocabulary_size", "TF-IDF vocabulary size of the active model")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Published events", "topic", "status")
	m.MessagesHandledTotal = collector.RegisterCounter("messages_handled_total", "Consumed messages", "topic", "status")
	m.WatchlistRunsTotal = collector.RegisterCounter("watchlist_runs_total", "Watchlist re-screening runs", "status")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers. All are nil-safe so that callers can run without metrics.
// ─────────────────────────────────────────────────────────────────────────────

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGRPCRequest records one gRPC call or stream.
func RecordGRPCRequest(m *AppMetrics, service, method, code string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordScreening records a completed analysis and the typologies of its
// evidence.
func RecordScreening(m *AppMetrics, mode, status string, score int, typologies []string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ScreeningsTotal.WithLabelValues(mode, status).Inc()
	m.ScreeningDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if status == "found" {
		m.ScreeningRiskScore.WithLabelValues(mode).Observe(float64(score))
	}
	for _, t := range typologies {
		m.EvidenceItemsTotal.WithLabelValues(t).Inc()
	}
}

// RecordRetrievalFailure counts a swallowed retrieval error.
func RecordRetrievalFailure(m *AppMetrics, retriever string) {
	if m == nil {
		return
	}
	m.RetrievalFailuresTotal.WithLabelValues(retriever).Inc()
}

// RecordTraining records a training run.
func RecordTraining(m *AppMetrics, trigger string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.ModelTrainingsTotal.WithLabelValues(trigger, statusLabel(ok)).Inc()
	m.ModelTrainingDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// SetModel publishes the active model version and vocabulary size.
func SetModel(m *AppMetrics, version string, vocabulary int) {
	if m == nil {
		return
	}
	m.ModelReady.WithLabelValues(version).Set(1)
	m.ModelVocabularySize.WithLabelValues().Set(float64(vocabulary))
}

// RecordCacheAccess counts a cache hit or miss.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordEventPublished counts a publish attempt.
func RecordEventPublished(m *AppMetrics, topic string, ok bool) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(topic, statusLabel(ok)).Inc()
}

// RecordMessageHandled counts a consumed message.
func RecordMessageHandled(m *AppMetrics, topic string, ok bool) {
	if m == nil {
		return
	}
	m.MessagesHandledTotal.WithLabelValues(topic, statusLabel(ok)).Inc()
}

// RecordWatchlistRun counts a watchlist sweep.
func RecordWatchlistRun(m *AppMetrics, ok bool) {
	if m == nil {
		return
	}
	m.WatchlistRunsTotal.WithLabelValues(statusLabel(ok)).Inc()
}

// SetHealth records a component health probe.
func SetHealth(m *AppMetrics, component string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

// RecordError counts an error by component and type.
func RecordError(m *AppMetrics, component, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

//Personal.AI order the ending
