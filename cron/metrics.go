package cron

import (
	"time"

	"emireminder/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the dispatcher. A nil *Metrics records nothing.
type Metrics struct {
	sweeps          prometheus.Counter
	dispatched      *prometheus.CounterVec
	persistFailures prometheus.Counter
	duration        prometheus.Histogram
}

// NewMetrics creates the sweep collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emireminder",
			Name:      "sweeps_total",
			Help:      "Total reminder sweeps run",
		}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emireminder",
			Name:      "reminders_dispatched_total",
			Help:      "Reminders handed to a transport by channel and outcome",
		}, []string{"channel", "status"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emireminder",
			Name:      "sweep_persist_failures_total",
			Help:      "Sweeps whose outcomes could not be stored",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "emireminder",
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of a reminder sweep",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.sweeps, m.dispatched, m.persistFailures, m.duration)
	}
	return m
}

func (m *Metrics) observeSweep(start time.Time) {
	if m == nil {
		return
	}
	m.sweeps.Inc()
	m.duration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) dispatchedOne(channel models.Channel, status models.ReminderStatus) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(string(channel), string(status)).Inc()
}

func (m *Metrics) persistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}
