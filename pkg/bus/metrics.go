package bus

import (
	"time"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bus collectors. A nil *Metrics records nothing.
type Metrics struct {
	messages *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphnav_bus_messages_total",
				Help: "Total number of messages published",
			},
			[]string{"kind"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphnav_bus_handler_errors_total",
				Help: "Total number of messages whose delivery failed",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "graphnav_bus_dispatch_seconds",
				Help:    "Time spent delivering a message, nested publications included",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.messages, m.errors, m.duration)
	}
	return m
}

func (m *Metrics) published(kind domain.Kind) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) failed(kind domain.Kind) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observe(kind domain.Kind, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}
