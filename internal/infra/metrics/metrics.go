package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "falbackend_requests_total",
		Help: "Total number of HTTP requests handled, by route and status",
	}, []string{"route", "status"})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "falbackend_submissions_total",
		Help: "Total number of upstream generation submissions, by tier and outcome",
	}, []string{"tier", "outcome"})

	PollAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "falbackend_poll_attempts_total",
		Help: "Total number of result poll attempts against the upstream",
	})

	MergesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "falbackend_merges_total",
		Help: "Total number of merge pipeline runs, by result",
	}, []string{"result"})

	MergeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "falbackend_merge_duration_seconds",
		Help:    "Duration of successful merge pipeline runs",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
