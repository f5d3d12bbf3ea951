package globalsecret

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/systmms/globalsecrets/pkg/provider"
)

var (
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	decodeFailures *prometheus.CounterVec

	metricsOnce sync.Once
)

// initMetrics registers the bundle metrics with the default registry the
// first time a bundle loads.
func initMetrics() {
	metricsOnce.Do(func() {
		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "globalsecrets_fetch_total",
				Help: "Total number of secret bundle fetches by outcome",
			},
			[]string{"secret", "outcome"},
		)

		fetchDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "globalsecrets_fetch_duration_seconds",
				Help:    "Duration of secret bundle fetches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"secret"},
		)

		decodeFailures = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "globalsecrets_decode_failures_total",
				Help: "Total number of secret bundles whose payload did not match the struct",
			},
			[]string{"secret"},
		)
	})
}

func observeFetch(secret string, elapsed time.Duration, err error) {
	initMetrics()
	fetchTotal.WithLabelValues(secret, fetchOutcome(err)).Inc()
	fetchDuration.WithLabelValues(secret).Observe(elapsed.Seconds())
}

func observeDecodeFailure(secret string) {
	initMetrics()
	decodeFailures.WithLabelValues(secret).Inc()
}

func fetchOutcome(err error) string {
	if err == nil {
		return "success"
	}
	var notFound *provider.NotFoundError
	if errors.As(err, &notFound) {
		return "not_found"
	}
	var authErr provider.AuthError
	if errors.As(err, &authErr) {
		return "auth_error"
	}
	return "error"
}
