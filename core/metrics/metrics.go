// Package metrics exposes capsule traffic as Prometheus metrics.
//
// A nil *Collector is valid and records nothing, so servers can call it
// unconditionally.
//
//	m := metrics.New("fluffer")
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(m)
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the capsule's metrics. It implements
// prometheus.Collector.
type Collector struct {
	connections       prometheus.Counter
	handshakeFailures prometheus.Counter
	streamErrors      *prometheus.CounterVec
	responses         *prometheus.CounterVec
	duration          prometheus.Histogram
}

// New creates a Collector with metric names under namespace.
func New(namespace string) *Collector {
	return &Collector{
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted connections.",
		}),
		handshakeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tls_handshake_failures_total",
			Help:      "Connections dropped during the TLS handshake.",
		}),
		streamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_errors_total",
			Help:      "Connections abandoned because of a stream error, by kind.",
		}, []string{"kind"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Responses written, by Gemini status code.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from a parsed request to its written response.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.connections.Describe(ch)
	c.handshakeFailures.Describe(ch)
	c.streamErrors.Describe(ch)
	c.responses.Describe(ch)
	c.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.connections.Collect(ch)
	c.handshakeFailures.Collect(ch)
	c.streamErrors.Collect(ch)
	c.responses.Collect(ch)
	c.duration.Collect(ch)
}

func (c *Collector) ConnectionAccepted() {
	if c == nil {
		return
	}
	c.connections.Inc()
}

func (c *Collector) HandshakeFailed() {
	if c == nil {
		return
	}
	c.handshakeFailures.Inc()
}

// StreamError counts a connection that ended without a response.
func (c *Collector) StreamError(kind string) {
	if c == nil {
		return
	}
	c.streamErrors.WithLabelValues(kind).Inc()
}

// ResponseWritten records a delivered response.
func (c *Collector) ResponseWritten(status int, d time.Duration) {
	if c == nil {
		return
	}
	c.responses.WithLabelValues(strconv.Itoa(status)).Inc()
	c.duration.Observe(d.Seconds())
}

// NewRegistry returns a registry holding c plus the Go runtime and
// process collectors.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if c != nil {
		reg.MustRegister(c)
	}
	return reg
}

// Handler serves the metrics in reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
