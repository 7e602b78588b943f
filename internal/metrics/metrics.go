// Package metrics exposes Prometheus instrumentation for the document
// pipeline. Each Metrics instance owns its registry so parallel tests and
// embedded uses never collide on collector registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's collectors
type Metrics struct {
	registry *prometheus.Registry

	documentsProcessed *prometheus.CounterVec
	readinessScore     prometheus.Histogram
	conversions        *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	analysisDuration   prometheus.Histogram
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		documentsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docready_documents_processed_total",
			Help: "Documents processed through the analysis pipeline, by outcome",
		}, []string{"status"}),
		readinessScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docready_readiness_score",
			Help:    "Distribution of readiness scores for analyzed documents",
			Buckets: prometheus.LinearBuckets(0, 1.0/6.0, 7),
		}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docready_conversions_total",
			Help: "Format conversions attempted, by outcome",
		}, []string{"status"}),
		conversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docready_conversion_duration_seconds",
			Help:    "Time spent converting documents to DOCX",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docready_analysis_duration_seconds",
			Help:    "Time spent analyzing parsed documents",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docready_http_requests_total",
			Help: "HTTP requests served, by method, path and status code",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docready_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		m.documentsProcessed,
		m.readinessScore,
		m.conversions,
		m.conversionDuration,
		m.analysisDuration,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Handler returns the /metrics scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDocumentProcessed counts one completed pipeline run
func (m *Metrics) RecordDocumentProcessed(status string) {
	m.documentsProcessed.WithLabelValues(status).Inc()
}

// RecordReadinessScore observes a document's final readiness score
func (m *Metrics) RecordReadinessScore(score float64) {
	m.readinessScore.Observe(score)
}

// RecordConversion counts one format conversion attempt
func (m *Metrics) RecordConversion(status string, duration time.Duration) {
	m.conversions.WithLabelValues(status).Inc()
	m.conversionDuration.Observe(duration.Seconds())
}

// RecordAnalysis observes how long one analysis pass took
func (m *Metrics) RecordAnalysis(duration time.Duration) {
	m.analysisDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest counts one served request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
