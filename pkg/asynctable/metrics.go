// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments table runners. A nil *Metrics records nothing.
type Metrics struct {
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	stale         *prometheus.CounterVec
	rows          *prometheus.GaugeVec
	pending       *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		queries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promtable_queries_total",
				Help: "Total number of backend queries by table, kind and status",
			},
			[]string{"table", "kind", "status"},
		),
		queryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promtable_query_duration_seconds",
				Help:    "Backend query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table", "kind"},
		),
		stale: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promtable_stale_responses_total",
				Help: "Total number of responses dropped because a newer request superseded them",
			},
			[]string{"table", "kind"},
		),
		rows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "promtable_rows",
				Help: "Number of rows in the table",
			},
			[]string{"table"},
		),
		pending: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "promtable_pending_queries",
				Help: "Number of backend queries in flight",
			},
			[]string{"table"},
		),
	}
}

func (m *Metrics) observeQuery(table, kind string, took time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(table, kind, status).Inc()
	m.queryDuration.WithLabelValues(table, kind).Observe(took.Seconds())
}

func (m *Metrics) observeStale(table, kind string) {
	if m == nil {
		return
	}
	m.stale.WithLabelValues(table, kind).Inc()
}

func (m *Metrics) setState(table string, rows, pending int) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(table).Set(float64(rows))
	m.pending.WithLabelValues(table).Set(float64(pending))
}
