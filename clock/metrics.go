package clock

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects scheduler instrumentation. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	samplePasses prometheus.Counter
	passDuration prometheus.Histogram
	listeners    prometheus.Gauge
	lateWakeups  prometheus.Counter
}

// NewMetrics builds the metric set. A nil reg falls back to the global
// prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		samplePasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coarseclock_sample_passes_total",
			Help: "Number of completed sample passes over the listener registry",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coarseclock_sample_pass_duration_seconds",
			Help:    "Duration of a full sample pass over all listeners",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 7),
		}),
		listeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coarseclock_listeners",
			Help: "Number of listeners currently registered with the scheduler",
		}),
		lateWakeups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coarseclock_late_wakeups_total",
			Help: "Times the update loop woke after its deadline had already passed",
		}),
	}
	reg.MustRegister(m.samplePasses, m.passDuration, m.listeners, m.lateWakeups)
	return m
}

func (m *Metrics) observeSamplePass(d time.Duration) {
	if m == nil {
		return
	}
	m.samplePasses.Inc()
	m.passDuration.Observe(d.Seconds())
}

func (m *Metrics) setListeners(n int) {
	if m == nil {
		return
	}
	m.listeners.Set(float64(n))
}

func (m *Metrics) incLateWakeup() {
	if m == nil {
		return
	}
	m.lateWakeups.Inc()
}
