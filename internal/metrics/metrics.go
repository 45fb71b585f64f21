// Package metrics exposes Prometheus collectors for the resolution pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contactfinder_fetches_total",
			Help: "Page fetches, labeled by fetcher and result.",
		},
		[]string{"fetcher", "result"},
	)

	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contactfinder_site_probes_total",
			Help: "Website discovery attempts, labeled by whether a site was found.",
		},
		[]string{"result"},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contactfinder_resolutions_total",
			Help: "Resolved companies, labeled by terminal stage and whether an email was found.",
		},
		[]string{"stage", "found"},
	)

	stageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contactfinder_stage_duration_seconds",
			Help:    "Time spent in each fallback stage.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage"},
	)

	skippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contactfinder_batch_skipped_total",
			Help: "Input rows not attempted, labeled by reason.",
		},
		[]string{"reason"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "API requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "API request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.25, 1, 5, 30, 120, 600},
		},
		[]string{"method", "route"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch counts a page fetch. result is "ok" or a failure kind.
func ObserveFetch(fetcher, result string) {
	fetchesTotal.WithLabelValues(fetcher, result).Inc()
}

// ObserveProbe counts a website discovery attempt.
func ObserveProbe(found bool) {
	probesTotal.WithLabelValues(foundLabel(found)).Inc()
}

// ObserveResolution counts a finished company.
func ObserveResolution(stage string, found bool) {
	resolutionsTotal.WithLabelValues(stage, foundLabel(found)).Inc()
}

// ObserveStage records how long a fallback stage took.
func ObserveStage(stage string, d time.Duration) {
	stageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveSkipped counts rows the batch runner did not attempt.
func ObserveSkipped(reason string, n int) {
	if n > 0 {
		skippedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// ObserveHTTPRequest records an API request.
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

func foundLabel(found bool) string {
	if found {
		return "true"
	}
	return "false"
}
