// Package obs exposes the engine's metrics surface: adapter call latency,
// retry counts, breaker trips, hypothesis scores, and per-level ancestor
// counts, scraped by the progress-polling stub server at /metrics.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AdapterCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "research_adapter_call_duration_seconds",
		Help:    "Duration of adapter calls against external sources",
		Buckets: prometheus.DefBuckets,
	}, []string{"source", "operation"})

	AdapterCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "research_adapter_calls_total",
		Help: "Total adapter calls, labeled by source, operation, and outcome",
	}, []string{"source", "operation", "outcome"})

	AdapterRetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "research_adapter_retries_total",
		Help: "Total retry attempts issued by the backoff wrapper per source",
	}, []string{"source"})

	BreakerTripsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "research_breaker_trips_total",
		Help: "Count of times a source's circuit breaker transitioned to open",
	}, []string{"source"})

	HypothesisScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "research_hypothesis_score",
		Help:    "Score distribution of hypotheses built by the Hypothesis Builder",
		Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	AncestorsByLevel = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "research_ancestors_by_confidence_level",
		Help: "Current count of ancestor rows per confidence level, labeled by job",
	}, []string{"job_id", "level"})

	JobsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "research_jobs_completed_total",
		Help: "Total research jobs that reached a terminal status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(
		AdapterCallDuration,
		AdapterCallsTotal,
		AdapterRetriesTotal,
		BreakerTripsTotal,
		HypothesisScore,
		AncestorsByLevel,
		JobsCompletedTotal,
	)
}

// Handler returns the /metrics HTTP handler for mounting on the stub
// server or any other mux.
func Handler() http.Handler {
	return promhttp.Handler()
}
