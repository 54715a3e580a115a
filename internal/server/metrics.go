package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Requests    *prometheus.CounterVec
	LapsIn      prometheus.Counter
	LapsRemoved prometheus.Counter
	Cutoff      prometheus.Histogram
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lapeda",
			Name:      "requests_total",
			Help:      "Table transformation requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		LapsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lapeda",
			Name:      "laps_received_total",
			Help:      "Laps received across all requests.",
		}),
		LapsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lapeda",
			Name:      "laps_removed_total",
			Help:      "Laps removed by session cleaning.",
		}),
		Cutoff: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lapeda",
			Name:      "cutoff_seconds",
			Help:      "Cutoff lap times applied by session cleaning.",
			Buckets:   prometheus.LinearBuckets(60, 15, 10),
		}),
	}

	registerer.MustRegister(m.Requests, m.LapsIn, m.LapsRemoved, m.Cutoff)

	return m
}
