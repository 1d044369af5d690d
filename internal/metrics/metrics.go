// Package metrics exposes coordinator counters to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	connections prometheus.Gauge
	events      *prometheus.CounterVec
	dropped     prometheus.Counter
	ackResults  *prometheus.CounterVec
	ratelimited prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "boxcall",
			Name:      "connections",
			Help:      "Live signaling connections.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxcall",
			Name:      "events_total",
			Help:      "Inbound signaling events by name.",
		}, []string{"event"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boxcall",
			Name:      "dropped_frames_total",
			Help:      "Outbound frames lost to full send queues.",
		}),
		ackResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxcall",
			Name:      "message_acks_total",
			Help:      "Message relay outcomes.",
		}, []string{"result"}),
		ratelimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boxcall",
			Name:      "ratelimited_frames_total",
			Help:      "Inbound frames discarded by the per-connection rate limit.",
		}),
	}
	reg.MustRegister(m.connections, m.events, m.dropped, m.ackResults, m.ratelimited)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ConnOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) Event(name string) {
	if m != nil {
		m.events.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) Dropped(n int) {
	if m != nil && n > 0 {
		m.dropped.Add(float64(n))
	}
}

// Ack records a message relay outcome: "ok", "timeout", "no_peers" or "error".
func (m *Metrics) Ack(result string) {
	if m != nil {
		m.ackResults.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RateLimited() {
	if m != nil {
		m.ratelimited.Inc()
	}
}
