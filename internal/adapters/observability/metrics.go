// Package observability exposes the scheduler's gauges and counters over
// prometheus plus a small HTTP server for health and status probes.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	rank         prometheus.Gauge
	fleetSize    prometheus.Gauge
	targetHour   prometheus.Gauge
	lossEpisodes prometheus.Gauge
	shutdowns    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rank: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleetward",
			Name:      "fleet_rank",
			Help:      "This node's zero-based rank in the sorted fleet roster (-1 when unranked).",
		}),
		fleetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleetward",
			Name:      "fleet_size",
			Help:      "Fleet roster size as of the last read.",
		}),
		targetHour: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleetward",
			Name:      "restart_target_hour",
			Help:      "UTC hour of day this node restarts at.",
		}),
		lossEpisodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleetward",
			Name:      "connection_loss_episodes",
			Help:      "All-connections-lost episodes observed since process start.",
		}),
		shutdowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetward",
			Name:      "shutdown_triggers_total",
			Help:      "Shutdown triggers that reached the sequencer, by reason.",
		}, []string{"reason"}),
	}

	startTime := time.Now()
	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "fleetward",
		Name:      "uptime_seconds",
		Help:      "Process uptime in seconds.",
	}, func() float64 { return time.Since(startTime).Seconds() })

	m.registry.MustRegister(m.rank, m.fleetSize, m.targetHour, m.lossEpisodes, m.shutdowns, uptime)
	return m
}

func (m *Metrics) SetRank(rank int) {
	m.rank.Set(float64(rank))
}

func (m *Metrics) SetFleetSize(size int) {
	m.fleetSize.Set(float64(size))
}

func (m *Metrics) SetTargetHour(hour int) {
	m.targetHour.Set(float64(hour))
}

func (m *Metrics) SetConnectionLossEpisodes(count int) {
	m.lossEpisodes.Set(float64(count))
}

func (m *Metrics) IncShutdownTrigger(reason string) {
	m.shutdowns.WithLabelValues(reason).Inc()
}

// Handler exposes the registry for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
