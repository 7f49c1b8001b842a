package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blog_console"

// RequestsTotal counts backend calls by HTTP method and response code.
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of requests sent to the content backend.",
	},
	[]string{"code", "method"},
)

// RequestDuration measures backend round trips, transport failures included.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests sent to the content backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

func instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(RequestsTotal,
		promhttp.InstrumentRoundTripperDuration(RequestDuration, next),
	)
}
