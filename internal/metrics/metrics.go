package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/indigo-web/sonnet/http/status"
)

const namespace = "sonnet"

// Kinds of connection errors.
const (
	KindMalformed  = "malformed"
	KindPeerClosed = "peer_closed"
	KindTimeout    = "timeout"
	KindTransport  = "transport"
	KindFile       = "file"
)

// Metrics counts what the server has done. A nil *Metrics is valid and records nothing.
type Metrics struct {
	responses  *prometheus.CounterVec
	connErrors *prometheus.CounterVec
	sizes      prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Responses written, by status code.",
		}, []string{"code"}),
		connErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Connections that ended with an error, by kind.",
		}, []string{"kind"}),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_bytes",
			Help:      "Size of written responses, including the head.",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
		}),
	}

	reg.MustRegister(m.responses, m.connErrors, m.sizes)

	return m
}

func (m *Metrics) Response(code status.Code, size int) {
	if m == nil {
		return
	}

	m.responses.WithLabelValues(status.StringCode(code)).Inc()
	m.sizes.Observe(float64(size))
}

func (m *Metrics) ConnectionError(kind string) {
	if m == nil {
		return
	}

	m.connErrors.WithLabelValues(kind).Inc()
}

// Handler exposes metrics gathered by the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
