// Package telemetry exposes the agent's own health as Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ticks           prometheus.Counter
	flushes         prometheus.Counter
	publishFailures prometheus.Counter
	connectAttempts prometheus.Counter
	connectFailures prometheus.Counter
	connected       prometheus.Gauge
	means           *prometheus.GaugeVec
}

// New registers the agent metrics with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwmon_sampling_ticks_total",
			Help: "Sampling ticks accumulated into the current or past windows.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwmon_flushes_total",
			Help: "Windows flushed with at least one sample.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwmon_publish_failures_total",
			Help: "Means dropped because the broker publish failed.",
		}),
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwmon_connect_attempts_total",
			Help: "Broker connect and reconnect attempts.",
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwmon_connect_failures_total",
			Help: "Broker connect and reconnect attempts that failed.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hwmon_broker_connected",
			Help: "1 while a broker session is live.",
		}),
		means: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hwmon_metric_mean",
			Help: "Last flushed window mean per metric.",
		}, []string{"metric"}),
	}

	reg.MustRegister(m.ticks, m.flushes, m.publishFailures, m.connectAttempts, m.connectFailures, m.connected, m.means)
	return m
}

func (m *Metrics) Tick() { m.ticks.Inc() }

func (m *Metrics) Flushed() { m.flushes.Inc() }

func (m *Metrics) PublishFailed() { m.publishFailures.Inc() }

// ConnectAttempt records one connect outcome and the resulting session state
func (m *Metrics) ConnectAttempt(err error) {
	m.connectAttempts.Inc()
	if err != nil {
		m.connectFailures.Inc()
	}
}

func (m *Metrics) SetConnected(ok bool) {
	if ok {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

func (m *Metrics) SetMean(name string, v float64) {
	m.means.WithLabelValues(name).Set(v)
}
