// SPDX-License-Identifier: GPL-3.0-or-later

package kubetables

import (
	"time"

	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

const (
	DefaultClusterLabel = "spoke"
	DefaultRateWindow   = 5 * time.Minute
)

// Options are the static options of the kube tables.
//
// ClusterLabel is the label identifying the cluster of a series.
// AlertLabels are regex label filters added to every alerts table selector.
// RateWindow is the range used for rate() over counters.
// Sorting overrides the initial sorting of the table.
type Options struct {
	ClusterLabel string
	AlertLabels  map[string]string
	RateWindow   time.Duration
	Sorting      asynctable.SortingState
	Runner       asynctable.RunnerOptions
}

func (o Options) clusterLabel() string {
	if o.ClusterLabel == "" {
		return DefaultClusterLabel
	}
	return o.ClusterLabel
}

func (o Options) rateWindow() time.Duration {
	if o.RateWindow <= 0 {
		return DefaultRateWindow
	}
	return o.RateWindow
}

// withCluster narrows the selector to the cluster. Without a cluster every
// cluster matches.
func (o Options) withCluster(sel *promql.Selector, cluster *string) *promql.Selector {
	if cluster == nil {
		return sel.WithLabelMatches(o.clusterLabel(), ".*")
	}
	return sel.WithLabelEquals(o.clusterLabel(), *cluster)
}

func (o Options) clusterOf(m model.Metric) string {
	return string(m[model.LabelName(o.clusterLabel())])
}

// withPattern adds a regex matcher for a filter that is set.
func withPattern(sel *promql.Selector, name string, pattern *string) *promql.Selector {
	if pattern == nil {
		return sel
	}
	return sel.WithLabelMatches(name, *pattern)
}

// zeroPadded orders base by the value of the series of metric matched on keys.
// Rows without a matching series keep a 0 value.
func zeroPadded(dir promql.Order, base, metric promql.Vector, keys ...string) promql.Expr {
	return promql.Sort(dir, base.Multiply().On(keys...).GroupRight(nil, metric).
		Or().WithExpression(base.Multiply().WithScalar(0)))
}

// decodeRow decodes a root sample and passes its cluster to set.
func decodeRow[T any](o Options, set func(row *T, cluster string)) func(model.Sample) (T, error) {
	return func(s model.Sample) (T, error) {
		row, err := asynctable.DecodeSample[T](s)
		if err != nil {
			return row, err
		}
		if set != nil {
			set(&row, o.clusterOf(s.Metric))
		}
		return row, nil
	}
}
