// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "http_request_duration_seconds",
	Help:    "Time spent serving HTTP requests.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"path"})

var documentsIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_ingested_total",
	Help: "Documents processed by the ingestion pipeline, by outcome.",
}, []string{"outcome"})

var chunksIndexedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_indexed_total",
	Help: "Chunks written to the vector index.",
})

var chatAnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_answers_total",
	Help: "Chat questions answered, by outcome.",
}, []string{"outcome"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// RecordIngestion counts one completed ingestion.
func RecordIngestion(outcome string) {
	documentsIngestedTotal.WithLabelValues(outcome).Inc()
}

// RecordChunksIndexed counts chunks written to the vector index.
func RecordChunksIndexed(count int) {
	if count > 0 {
		chunksIndexedTotal.Add(float64(count))
	}
}

// RecordAnswer counts one chat answer attempt.
func RecordAnswer(outcome string) {
	chatAnswersTotal.WithLabelValues(outcome).Inc()
}

// ObserveDependency records latency of an external call.
func ObserveDependency(service string, elapsed time.Duration) {
	dependencyLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}
