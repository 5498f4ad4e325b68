// SPDX-License-Identifier: GPL-3.0-or-later

package kubetables

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

const refAlerts = "alerts"

var now = time.Now

type AlertFilters struct {
	Cluster   *string `mapstructure:"cluster"`
	Namespace *string `mapstructure:"namespace"`
	Search    *string `mapstructure:"search"`
	Name      *string `mapstructure:"name"`
	State     *string `mapstructure:"state"`
	Severity  *string `mapstructure:"severity"`
}

// AlertRow is a firing or pending alert. Value is the time the alert became active.
type AlertRow struct {
	AlertName  string         `mapstructure:"alertname"`
	AlertState string         `mapstructure:"alertstate"`
	Namespace  string         `mapstructure:"namespace"`
	Severity   string         `mapstructure:"severity"`
	Value      float64        `mapstructure:"Value"`
	Cluster    string         `mapstructure:"-"`
	Labels     model.LabelSet `mapstructure:"-"`
}

// Age returns the number of seconds the alert has been active.
func (r AlertRow) Age() float64 {
	return float64(now().Unix()) - r.Value
}

type alertsQueryBuilder struct {
	opts Options
}

func (b alertsQueryBuilder) RootQuery(f AlertFilters, _ asynctable.SortingState, _ *asynctable.SortingConfig[AlertRow]) asynctable.Query {
	alerts := b.selector(promql.Metric(metricAlerts), f)
	if f.Search != nil {
		alerts = alerts.WithLabelMatches(labelAlertName, promql.Prefix(*f.Search))
	}
	alerts = withPattern(alerts, labelAlertName, f.Name)
	alerts = withPattern(alerts, labelAlertState, f.State)
	alerts = withPattern(alerts, labelSeverity, f.Severity)

	forState := b.selector(promql.Metric(metricAlertsForState), f)

	expr := alerts.Multiply().Ignoring(labelAlertState).GroupRight([]string{labelAlertState}, forState)

	return asynctable.NewQuery(refAlerts, expr)
}

func (b alertsQueryBuilder) selector(sel *promql.Selector, f AlertFilters) *promql.Selector {
	sel = b.opts.withCluster(sel, f.Cluster)
	sel = withPattern(sel, labelNamespace, f.Namespace)
	for _, name := range sortedKeys(b.opts.AlertLabels) {
		sel = sel.WithLabelMatches(name, b.opts.AlertLabels[name])
	}
	return sel
}

// RowQueries returns nothing, the root query carries all alert columns.
func (alertsQueryBuilder) RowQueries([]AlertRow, AlertFilters) []asynctable.Query {
	return nil
}

// alertRowID joins the label values of the alert in label name order.
func alertRowID(r AlertRow) string {
	names := make([]string, 0, len(r.Labels))
	for name := range r.Labels {
		names = append(names, string(name))
	}
	slices.Sort(names)

	values := make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, string(r.Labels[model.LabelName(name)]))
	}
	return strings.Join(values, "/")
}

func newAlertRow(o Options) func(model.Sample) (AlertRow, error) {
	decode := decodeRow(o, func(r *AlertRow, cluster string) { r.Cluster = cluster })

	return func(s model.Sample) (AlertRow, error) {
		row, err := decode(s)
		if err != nil {
			return row, err
		}
		row.Labels = make(model.LabelSet, len(s.Metric))
		for name, value := range s.Metric {
			if name != model.MetricNameLabel {
				row.Labels[name] = value
			}
		}
		return row, nil
	}
}

func labelColumn(id, header string, accessor func(AlertRow) string) asynctable.Column[AlertRow] {
	return asynctable.Column[AlertRow]{
		ID:       id,
		Header:   header,
		Accessor: func(r AlertRow) any { return accessor(r) },
		Sorting: asynctable.SortingConfig[AlertRow]{
			Enabled: true,
			Kind:    asynctable.SortByLabel,
			Local:   true,
		},
	}
}

func alertsColumns(o Options) []asynctable.Column[AlertRow] {
	return []asynctable.Column[AlertRow]{
		labelColumn(labelAlertName, "ALERT NAME", func(r AlertRow) string { return r.AlertName }),
		labelColumn(labelAlertState, "STATE", func(r AlertRow) string { return strings.ToUpper(r.AlertState) }),
		labelColumn(labelNamespace, "NAMESPACE", func(r AlertRow) string { return r.Namespace }),
		labelColumn(o.clusterLabel(), "CLUSTER", func(r AlertRow) string { return r.Cluster }),
		labelColumn(labelSeverity, "SEVERITY", func(r AlertRow) string { return strings.ToUpper(r.Severity) }),
		{
			ID:       asynctable.SampleValueKey,
			Header:   "AGE",
			Accessor: func(r AlertRow) any { return r.Age() },
			Cell:     asynctable.Cell{Kind: asynctable.CellFormatted, Format: "dtdurations"},
			Sorting: asynctable.SortingConfig[AlertRow]{
				Enabled: true,
				Kind:    asynctable.SortByValue,
				Local:   true,
				Compare: func(a, b AlertRow) int { return cmp.Compare(a.Value, b.Value) },
			},
		},
	}
}

// AlertsConfig returns the alerts table: alerts joined with their activation time.
func AlertsConfig(o Options) asynctable.Config[AlertRow, AlertFilters] {
	return asynctable.Config[AlertRow, AlertFilters]{
		Columns:        alertsColumns(o),
		CreateRowID:    alertRowID,
		QueryBuilder:   alertsQueryBuilder{opts: o},
		InitialSorting: asynctable.SortingState{ColumnID: labelAlertName, Direction: promql.Asc},
		NewRow:         newAlertRow(o),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
