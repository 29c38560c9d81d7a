package sensor_simulator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/LeonardoBeccarini/farm-node/internal/model"
)

// Metrics are the node's Prometheus instruments, labelled with site/node.
type Metrics struct {
	Cycles        prometheus.Counter
	SourceErrors  prometheus.Counter
	Decisions     *prometheus.CounterVec
	Commands      *prometheus.CounterVec
	PublishErrors *prometheus.CounterVec
	IrrigationOn  prometheus.Gauge
	Manual        prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, id model.Identity) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"site": id.Site, "node": id.Node}
	return &Metrics{
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: "farm_node", Name: "cycles_total", ConstLabels: labels,
			Help: "Publish loop iterations.",
		}),
		SourceErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "farm_node", Name: "source_errors_total", ConstLabels: labels,
			Help: "Cycles skipped because the telemetry source failed.",
		}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_node", Name: "decisions_total", ConstLabels: labels,
			Help: "Resolved irrigation decisions by kind.",
		}, []string{"decision"}),
		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_node", Name: "commands_total", ConstLabels: labels,
			Help: "Inbound manual commands by result.",
		}, []string{"result"}),
		PublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_node", Name: "publish_errors_total", ConstLabels: labels,
			Help: "Failed publishes by message kind.",
		}, []string{"kind"}),
		IrrigationOn: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "farm_node", Name: "irrigation_on", ConstLabels: labels,
			Help: "1 when irrigation is on.",
		}),
		Manual: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "farm_node", Name: "manual_override", ConstLabels: labels,
			Help: "1 while a manual override is active.",
		}),
	}
}

func boolGauge(g prometheus.Gauge, v bool) {
	if v {
		g.Set(1)
	} else {
		g.Set(0)
	}
}
