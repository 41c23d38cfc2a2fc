package gateway

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentchat",
		Subsystem: "gateway",
		Name:      "connections",
		Help:      "Currently connected bridge pages.",
	})

	metricRPC = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentchat",
		Subsystem: "gateway",
		Name:      "rpc_requests_total",
		Help:      "RPC requests by method and outcome.",
	}, []string{"method", "outcome"})

	metricHTTP = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentchat",
		Subsystem: "gateway",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "code"})
)

func observeHTTP(method string, status int) {
	metricHTTP.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
