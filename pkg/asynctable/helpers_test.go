// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"strings"
	"testing"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/require"

	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

type nsRow struct {
	Namespace string   `mapstructure:"namespace"`
	Spoke     string   `mapstructure:"spoke"`
	Pod       string   `mapstructure:"pod"`
	CPU       *float64 `mapstructure:"-"`
	Pods      *float64 `mapstructure:"-"`
}

type nsFilters struct {
	Namespace *string `mapstructure:"namespace"`
}

type nsBuilder struct{}

func (nsBuilder) RootQuery(f nsFilters, s SortingState, cfg *SortingConfig[nsRow]) Query {
	sel := promql.Metric("kube_namespace_status_phase")
	if f.Namespace != nil {
		sel = sel.WithLabelMatches("namespace", *f.Namespace)
	}
	base := promql.Group(sel).By("namespace", "spoke")

	if cfg == nil || cfg.Local {
		return NewQuery("namespaces", base)
	}

	usage := promql.Sum(promql.Metric("cpu_usage")).By("namespace", "spoke")
	return NewQuery("namespaces", promql.Sort(s.Direction,
		base.Multiply().On("namespace", "spoke").GroupRight(nil, usage).
			Or().WithExpression(base.Multiply().WithScalar(0))))
}

func (nsBuilder) RowQueries(rows []nsRow, _ nsFilters) []Query {
	names := namespaceNames(rows)
	return []Query{
		NewQuery("cpu_usage", promql.Sum(promql.Metric("cpu_usage").
			WithLabelMatches("namespace", promql.AnyOf(names...))).By("namespace", "spoke")),
		NewQuery("pods", promql.Count(promql.Metric("kube_pod_info").
			WithLabelMatches("namespace", promql.AnyOf(names...))).By("namespace", "spoke")),
	}
}

func (nsBuilder) ExpandQueries(rows []nsRow, _ nsFilters) []Query {
	names := namespaceNames(rows)
	return []Query{
		NewQuery("pod_cpu", promql.Sum(promql.Metric("cpu_usage").
			WithLabelMatches("namespace", promql.AnyOf(names...))).By("namespace", "spoke", "pod")),
	}
}

func namespaceNames(rows []nsRow) []string {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Namespace)
	}
	return names
}

func nsRowID(r nsRow) string {
	id := r.Namespace + ":" + r.Spoke
	if r.Pod != "" {
		id += "/" + r.Pod
	}
	return id
}

func nsRowMapper(r *nsRow, res Results) {
	match := MatchLabels(model.LabelSet{"namespace": model.LabelValue(r.Namespace)})
	r.CPU = res.Value("cpu_usage", match)
	r.Pods = res.Value("pods", match)
}

func nsChildren(parent nsRow, res Results) []nsRow {
	var pods []nsRow
	for _, s := range res.Samples("pod_cpu", MatchLabels(model.LabelSet{"namespace": model.LabelValue(parent.Namespace)})) {
		v := float64(s.Value)
		pods = append(pods, nsRow{
			Namespace: parent.Namespace,
			Spoke:     parent.Spoke,
			Pod:       string(s.Metric["pod"]),
			CPU:       &v,
		})
	}
	return pods
}

func nsColumns() []Column[nsRow] {
	return []Column[nsRow]{
		{
			ID:       "namespace",
			Header:   "NAMESPACE",
			Accessor: func(r nsRow) any { return r.Namespace },
			Sorting:  SortingConfig[nsRow]{Enabled: true, Kind: SortByLabel, Local: true},
		},
		{
			ID:     "usage",
			Header: "USAGE",
			Columns: []Column[nsRow]{
				{
					ID:       "cpu_usage",
					Header:   "CPU",
					Accessor: func(r nsRow) any { return r.CPU },
					Cell:     Cell{Kind: CellFormatted, Decimals: 2},
					Sorting:  SortingConfig[nsRow]{Enabled: true, Kind: SortByValue},
				},
				{
					ID:       "pods",
					Header:   "PODS",
					Accessor: func(r nsRow) any { return r.Pods },
					Sorting:  SortingConfig[nsRow]{Enabled: true, Kind: SortByValue, Local: true},
				},
			},
		},
	}
}

func nsConfig() Config[nsRow, nsFilters] {
	return Config[nsRow, nsFilters]{
		Columns:        nsColumns(),
		CreateRowID:    nsRowID,
		RowMapper:      nsRowMapper,
		QueryBuilder:   nsBuilder{},
		InitialSorting: SortingState{ColumnID: "namespace", Direction: promql.Asc},
		Children:       nsChildren,
	}
}

func newTestTable(t *testing.T) *Table[nsRow, nsFilters] {
	tbl, err := NewTable(nsConfig())
	require.NoError(t, err)
	return tbl
}

func sample(v float64, kv ...string) *model.Sample {
	m := make(model.Metric, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[model.LabelName(kv[i])] = model.LabelValue(kv[i+1])
	}
	return &model.Sample{Metric: m, Value: model.SampleValue(v)}
}

func namespaces(names ...string) model.Vector {
	var vec model.Vector
	for _, name := range names {
		vec = append(vec, sample(1, "namespace", name, "spoke", "eu-1"))
	}
	return vec
}

// perNamespace builds a vector with one sample per "namespace=value" pair.
func perNamespace(pairs map[string]float64) model.Vector {
	var vec model.Vector
	for name, v := range pairs {
		vec = append(vec, sample(v, "namespace", name, "spoke", "eu-1"))
	}
	return vec
}

func loadRoot(t *testing.T, tbl *Table[nsRow, nsFilters], names ...string) *RowRequest {
	req := tbl.Refresh()
	rowReq, ok := tbl.ApplyRoot(req.Gen, namespaces(names...), nil)
	require.True(t, ok)
	return rowReq
}

func rowIDs(rows []Row[nsRow]) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func queryByRef(t *testing.T, req *RowRequest, refID string) Query {
	require.NotNil(t, req)
	for _, q := range req.Queries {
		if q.RefID == refID {
			return q
		}
	}
	require.Failf(t, "query not found", "ref id '%s'", refID)
	return Query{}
}

// fakeBackend answers row queries by looking at the namespaces named in the expression.
func fakeBackend(q Query) model.Vector {
	var vec model.Vector
	for _, ns := range []string{"ns-a", "ns-b", "ns-c"} {
		if !strings.Contains(q.Expr, ns) {
			continue
		}
		switch q.RefID {
		case "cpu_usage":
			vec = append(vec, sample(float64(len(ns))/10, "namespace", ns, "spoke", "eu-1"))
		case "pods":
			vec = append(vec, sample(2, "namespace", ns, "spoke", "eu-1"))
		case "pod_cpu":
			vec = append(vec,
				sample(0.1, "namespace", ns, "spoke", "eu-1", "pod", ns+"-pod-1"),
				sample(0.2, "namespace", ns, "spoke", "eu-1", "pod", ns+"-pod-2"),
			)
		}
	}
	return vec
}

func ptr[V any](v V) *V { return &v }
