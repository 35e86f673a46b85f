package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	writes    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	ready     prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		writes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronik",
			Name:      "slot_writes_total",
			Help:      "Slot writes issued to the backend, by result.",
		}, []string{"slot", "result"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronik",
			Name:      "slot_load_fallbacks_total",
			Help:      "Slots that started from their default because loading failed.",
		}, []string{"slot"}),
		ready: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chronik",
			Name:      "store_ready",
			Help:      "1 once every slot has finished loading.",
		}),
	}
}

func (m *metrics) wrote(key string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.WithLabelValues(key, result).Inc()
}
