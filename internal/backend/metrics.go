package backend

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentchat",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Backend requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	metricDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agentchat",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Backend request latency by endpoint.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"endpoint"})
)

func observe(endpoint string, start time.Time, err error) {
	metricDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metricRequests.WithLabelValues(endpoint, outcome(err)).Inc()
}

func outcome(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.As(err, &se):
		return "status_error"
	default:
		return "transport_error"
	}
}
