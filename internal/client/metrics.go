package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latencies of the backend client
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the client collectors and registers them on reg when reg is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "storefront", Subsystem: "client", Name: "requests_total", Help: "Backend requests by method and response code."},
			[]string{"method", "code"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: "storefront", Subsystem: "client", Name: "request_duration_seconds", Help: "Backend request latency.", Buckets: prometheus.DefBuckets},
			[]string{"method"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration)
	}
	return m
}

// observe records one finished request; status 0 means no response was received
func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	code := "none"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, code).Inc()
	m.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
