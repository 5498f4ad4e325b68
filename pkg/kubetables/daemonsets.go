// SPDX-License-Identifier: GPL-3.0-or-later

package kubetables

import (
	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

const (
	refDaemonSets    = "daemonsets"
	refReplicas      = "replicas"
	refReplicasReady = "replicas_ready"
)

type DaemonSetFilters struct {
	Cluster   *string `mapstructure:"cluster"`
	Namespace *string `mapstructure:"namespace"`
	Search    *string `mapstructure:"search"`
}

type DaemonSetRow struct {
	DaemonSet     string           `mapstructure:"daemonset"`
	Namespace     string           `mapstructure:"namespace"`
	Replicas      *float64         `mapstructure:"-"`
	ReplicasReady *float64         `mapstructure:"-"`
	Alerts        []DaemonSetAlert `mapstructure:"-"`
	AlertCount    *float64         `mapstructure:"-"`
}

type DaemonSetAlert struct {
	AlertName string
	Severity  string
}

type daemonSetsQueryBuilder struct {
	opts Options
}

func (b daemonSetsQueryBuilder) RootQuery(f DaemonSetFilters, s asynctable.SortingState, cfg *asynctable.SortingConfig[DaemonSetRow]) asynctable.Query {
	sel := b.opts.withCluster(promql.Metric(metricDaemonSetCreated), f.Cluster)
	sel = withPattern(sel, labelNamespace, f.Namespace)
	if f.Search != nil {
		sel = sel.WithLabelMatches(labelDaemonSet, promql.Contains(*f.Search))
	}
	base := promql.Group(sel).By(labelDaemonSet, labelNamespace)

	if cfg == nil || cfg.Local {
		return asynctable.NewQuery(refDaemonSets, base)
	}

	var metric promql.Vector
	switch s.ColumnID {
	case refAlerts:
		metric = promql.Count(b.alerts(f.Cluster, promql.Labels{
			labelDaemonSet: promql.NotEquals(""),
		})).By(labelNamespace, labelDaemonSet)
	case refReplicas:
		metric = b.replicas(f.Cluster, nil)
	default:
		return asynctable.NewQuery(refDaemonSets, base)
	}

	return asynctable.NewQuery(refDaemonSets, zeroPadded(s.Direction, base, metric, labelNamespace, labelDaemonSet))
}

func (b daemonSetsQueryBuilder) RowQueries(rows []DaemonSetRow, f DaemonSetFilters) []asynctable.Query {
	var names, namespaces []string
	for _, r := range rows {
		names = append(names, r.DaemonSet)
		namespaces = append(namespaces, r.Namespace)
	}
	narrow := promql.Labels{
		labelDaemonSet: promql.Matches(promql.AnyOf(names...)),
		labelNamespace: promql.Matches(promql.AnyOf(namespaces...)),
	}

	return []asynctable.Query{
		asynctable.NewQuery(refReplicas, b.replicas(f.Cluster, narrow)),
		asynctable.NewQuery(refReplicasReady, b.maxByDaemonSet(metricDaemonSetNumberReady, f.Cluster, narrow)),
		asynctable.NewQuery(refAlerts, b.alerts(f.Cluster, narrow)),
	}
}

func (b daemonSetsQueryBuilder) replicas(cluster *string, ls promql.Labels) *promql.Aggregation {
	return b.maxByDaemonSet(metricDaemonSetDesiredScheduled, cluster, ls)
}

func (b daemonSetsQueryBuilder) maxByDaemonSet(metric string, cluster *string, ls promql.Labels) *promql.Aggregation {
	sel := b.opts.withCluster(promql.Metric(metric).WithLabels(ls), cluster)
	return promql.Max(sel).By(labelDaemonSet, labelNamespace)
}

// alerts returns the firing alerts with their activation time as value.
func (b daemonSetsQueryBuilder) alerts(cluster *string, ls promql.Labels) *promql.Binary {
	firing := promql.Metric(metricAlerts).WithLabelEquals(labelAlertState, "firing").WithLabels(ls)
	forState := promql.Metric(metricAlertsForState).WithLabels(ls)

	return b.opts.withCluster(firing, cluster).
		Multiply().Ignoring(labelAlertState).
		GroupRight([]string{labelAlertState}, b.opts.withCluster(forState, cluster))
}

func daemonSetRowID(r DaemonSetRow) string {
	return r.Namespace + "/" + r.DaemonSet
}

func daemonSetRowMapper(r *DaemonSetRow, res asynctable.Results) {
	match := asynctable.MatchLabels(model.LabelSet{
		labelNamespace: model.LabelValue(r.Namespace),
		labelDaemonSet: model.LabelValue(r.DaemonSet),
	})

	r.Replicas = res.Value(refReplicas, match)
	r.ReplicasReady = res.Value(refReplicasReady, match)

	r.Alerts, r.AlertCount = nil, nil
	if _, ok := res[refAlerts]; !ok {
		return
	}
	for _, s := range res.Samples(refAlerts, match) {
		r.Alerts = append(r.Alerts, DaemonSetAlert{
			AlertName: string(s.Metric[labelAlertName]),
			Severity:  string(s.Metric[labelSeverity]),
		})
	}
	n := float64(len(r.Alerts))
	r.AlertCount = &n
}

func daemonSetsColumns() []asynctable.Column[DaemonSetRow] {
	label := asynctable.SortingConfig[DaemonSetRow]{Enabled: true, Kind: asynctable.SortByLabel, Local: true}
	count := asynctable.Cell{Kind: asynctable.CellFormatted}

	return []asynctable.Column[DaemonSetRow]{
		{
			ID:       labelDaemonSet,
			Header:   "DAEMONSET",
			Accessor: func(r DaemonSetRow) any { return r.DaemonSet },
			Sorting:  label,
		},
		{
			ID:       labelNamespace,
			Header:   "NAMESPACE",
			Accessor: func(r DaemonSetRow) any { return r.Namespace },
			Sorting:  label,
		},
		{
			ID:       refAlerts,
			Header:   "ALERTS",
			Accessor: func(r DaemonSetRow) any { return r.AlertCount },
			Cell:     count,
			Sorting:  asynctable.SortingConfig[DaemonSetRow]{Enabled: true, Kind: asynctable.SortByValue},
		},
		{
			ID:       refReplicas,
			Header:   "REPLICAS",
			Accessor: func(r DaemonSetRow) any { return r.Replicas },
			Cell:     count,
			Sorting:  asynctable.SortingConfig[DaemonSetRow]{Enabled: true, Kind: asynctable.SortByValue},
		},
		{
			ID:       refReplicasReady,
			Header:   "READY",
			Accessor: func(r DaemonSetRow) any { return r.ReplicasReady },
			Cell:     count,
			Sorting:  asynctable.SortingConfig[DaemonSetRow]{Enabled: true, Kind: asynctable.SortByValue, Local: true},
		},
	}
}

// DaemonSetsConfig returns the daemonsets table. Alerts and desired replicas sort remotely.
func DaemonSetsConfig(o Options) asynctable.Config[DaemonSetRow, DaemonSetFilters] {
	return asynctable.Config[DaemonSetRow, DaemonSetFilters]{
		Columns:        daemonSetsColumns(),
		CreateRowID:    daemonSetRowID,
		RowMapper:      daemonSetRowMapper,
		QueryBuilder:   daemonSetsQueryBuilder{opts: o},
		InitialSorting: asynctable.SortingState{ColumnID: labelDaemonSet, Direction: promql.Asc},
		NewRow:         decodeRow[DaemonSetRow](o, nil),
	}
}
