// SPDX-License-Identifier: GPL-3.0-or-later

package kubetables

import (
	"slices"

	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

const (
	refNamespaces = "namespaces"

	refCPURequested    = "cpu_requested"
	refCPULimits       = "cpu_limits"
	refCPUUsage        = "cpu_usage"
	refMemoryRequested = "memory_requested"
	refMemoryLimits    = "memory_limits"
	refMemoryUsage     = "memory_usage"

	refPodCPUUsage    = "pod_cpu_usage"
	refPodMemoryUsage = "pod_memory_usage"
)

var resourceRefs = []string{
	refCPURequested,
	refCPULimits,
	refCPUUsage,
	refMemoryRequested,
	refMemoryLimits,
	refMemoryUsage,
}

type NamespaceFilters struct {
	Cluster   *string `mapstructure:"cluster"`
	Namespace *string `mapstructure:"namespace"`
}

// NamespaceRow is a namespace, or a pod of an expanded namespace when Pod is set.
type NamespaceRow struct {
	Namespace string    `mapstructure:"namespace"`
	Cluster   string    `mapstructure:"-"`
	Pod       string    `mapstructure:"-"`
	CPU       Resources `mapstructure:"-"`
	Memory    Resources `mapstructure:"-"`
}

type Resources struct {
	Requests *float64
	Limits   *float64
	Usage    *float64
}

type namespacesQueryBuilder struct {
	opts Options
}

func (b namespacesQueryBuilder) RootQuery(f NamespaceFilters, s asynctable.SortingState, cfg *asynctable.SortingConfig[NamespaceRow]) asynctable.Query {
	sel := b.opts.withCluster(promql.Metric(metricNamespaceStatusPhase), f.Cluster)
	sel = withPattern(sel, labelNamespace, f.Namespace)
	base := promql.Group(sel).By(labelNamespace, b.opts.clusterLabel())

	if cfg == nil || cfg.Local {
		return asynctable.NewQuery(refNamespaces, base)
	}

	pattern := ""
	if f.Namespace != nil {
		pattern = *f.Namespace
	}
	metric := b.resource(s.ColumnID, f.Cluster, pattern)
	if metric == nil {
		return asynctable.NewQuery(refNamespaces, base)
	}

	return asynctable.NewQuery(refNamespaces, zeroPadded(s.Direction, base, metric, labelNamespace, b.opts.clusterLabel()))
}

func (b namespacesQueryBuilder) RowQueries(rows []NamespaceRow, f NamespaceFilters) []asynctable.Query {
	pattern := promql.AnyOf(namespaceNames(rows)...)

	queries := make([]asynctable.Query, 0, len(resourceRefs))
	for _, ref := range resourceRefs {
		queries = append(queries, asynctable.NewQuery(ref, b.resource(ref, f.Cluster, pattern)))
	}
	return queries
}

// ExpandQueries returns the per pod usage of the expanded namespaces.
func (b namespacesQueryBuilder) ExpandQueries(rows []NamespaceRow, f NamespaceFilters) []asynctable.Query {
	pattern := promql.AnyOf(namespaceNames(rows)...)
	cl := b.opts.clusterLabel()

	return []asynctable.Query{
		asynctable.NewQuery(refPodCPUUsage, promql.Sum(b.cpuRate(f.Cluster, pattern)).By(labelNamespace, cl, labelPod)),
		asynctable.NewQuery(refPodMemoryUsage, promql.Sum(b.workingSet(f.Cluster, pattern)).By(labelNamespace, cl, labelPod)),
	}
}

// resource returns the per namespace query of a resource column, nil for other columns.
func (b namespacesQueryBuilder) resource(columnID string, cluster *string, namespaces string) promql.Vector {
	cl := b.opts.clusterLabel()

	containers := func(metric, resource string) *promql.Aggregation {
		sel := promql.Metric(metric).WithLabelEquals(labelResource, resource)
		sel = b.opts.withCluster(sel, cluster).WithLabelMatches(labelNamespace, namespaces)
		return promql.Sum(sel).By(cl, labelNamespace)
	}

	switch columnID {
	case refCPURequested:
		return containers(metricPodContainerRequests, "cpu")
	case refCPULimits:
		return containers(metricPodContainerLimits, "cpu")
	case refMemoryRequested:
		return containers(metricPodContainerRequests, "memory")
	case refMemoryLimits:
		return containers(metricPodContainerLimits, "memory")
	case refCPUUsage:
		return promql.Sum(b.cpuRate(cluster, namespaces)).By(labelNamespace, cl)
	case refMemoryUsage:
		return promql.Sum(b.workingSet(cluster, namespaces)).By(labelNamespace, cl)
	default:
		return nil
	}
}

func (b namespacesQueryBuilder) cpuRate(cluster *string, namespaces string) *promql.Aggregation {
	sel := promql.Metric(metricContainerCPUUsage).WithLabelNotEquals(labelContainer, "")
	sel = b.opts.withCluster(sel, cluster).WithLabelMatches(labelNamespace, namespaces)

	return promql.Sum(promql.Rate(sel.Over(b.opts.rateWindow()))).
		By(labelNamespace, labelPod, labelContainer, b.opts.clusterLabel())
}

func (b namespacesQueryBuilder) workingSet(cluster *string, namespaces string) *promql.Aggregation {
	sel := promql.Metric(metricContainerMemWorkingSet).WithLabelNotEquals(labelContainer, "")
	sel = b.opts.withCluster(sel, cluster).WithLabelMatches(labelNamespace, namespaces)

	return promql.Max(sel).By(labelPod, labelContainer, labelNamespace, b.opts.clusterLabel())
}

func namespaceNames(rows []NamespaceRow) []string {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Namespace)
	}
	return names
}

func namespaceRowID(r NamespaceRow) string {
	id := r.Namespace + ":" + r.Cluster
	if r.Pod != "" {
		id += "/" + r.Pod
	}
	return id
}

func namespaceRowMapper(o Options) func(*NamespaceRow, asynctable.Results) {
	return func(r *NamespaceRow, res asynctable.Results) {
		match := o.matchNamespace(r.Namespace, r.Cluster)

		r.CPU = Resources{
			Requests: res.Value(refCPURequested, match),
			Limits:   res.Value(refCPULimits, match),
			Usage:    res.Value(refCPUUsage, match),
		}
		r.Memory = Resources{
			Requests: res.Value(refMemoryRequested, match),
			Limits:   res.Value(refMemoryLimits, match),
			Usage:    res.Value(refMemoryUsage, match),
		}
	}
}

// namespacePods returns a row per pod having cpu or memory usage.
func namespacePods(o Options) func(NamespaceRow, asynctable.Results) []NamespaceRow {
	return func(parent NamespaceRow, res asynctable.Results) []NamespaceRow {
		match := o.matchNamespace(parent.Namespace, parent.Cluster)

		var pods []string
		for _, ref := range []string{refPodCPUUsage, refPodMemoryUsage} {
			for _, s := range res.Samples(ref, match) {
				if pod := string(s.Metric[labelPod]); pod != "" && !slices.Contains(pods, pod) {
					pods = append(pods, pod)
				}
			}
		}
		slices.Sort(pods)

		children := make([]NamespaceRow, 0, len(pods))
		for _, pod := range pods {
			podMatch := func(m model.Metric) bool {
				return match(m) && string(m[labelPod]) == pod
			}
			children = append(children, NamespaceRow{
				Namespace: parent.Namespace,
				Cluster:   parent.Cluster,
				Pod:       pod,
				CPU:       Resources{Usage: res.Value(refPodCPUUsage, podMatch)},
				Memory:    Resources{Usage: res.Value(refPodMemoryUsage, podMatch)},
			})
		}
		return children
	}
}

func (o Options) matchNamespace(namespace, cluster string) asynctable.Match {
	cl := model.LabelName(o.clusterLabel())
	return asynctable.MatchLabels(model.LabelSet{
		labelNamespace: model.LabelValue(namespace),
		cl:             model.LabelValue(cluster),
	})
}

func resourceColumn(id, header string, cell asynctable.Cell, value func(NamespaceRow) *float64) asynctable.Column[NamespaceRow] {
	return asynctable.Column[NamespaceRow]{
		ID:       id,
		Header:   header,
		Accessor: func(r NamespaceRow) any { return value(r) },
		Cell:     cell,
		Sorting:  asynctable.SortingConfig[NamespaceRow]{Enabled: true, Kind: asynctable.SortByValue},
	}
}

func namespacesColumns() []asynctable.Column[NamespaceRow] {
	cores := asynctable.Cell{Kind: asynctable.CellFormatted, Decimals: 2}
	usage := asynctable.Cell{Kind: asynctable.CellFormatted, Decimals: 5}
	bytes := asynctable.Cell{Kind: asynctable.CellFormatted, Format: "bytes", Decimals: 2}

	return []asynctable.Column[NamespaceRow]{
		{
			ID:     labelNamespace,
			Header: "NAMESPACE",
			Accessor: func(r NamespaceRow) any {
				if r.Pod != "" {
					return r.Pod
				}
				return r.Namespace
			},
			Sorting: asynctable.SortingConfig[NamespaceRow]{Enabled: true, Kind: asynctable.SortByLabel, Local: true},
		},
		{
			ID:     "cpu",
			Header: "CPU",
			Columns: []asynctable.Column[NamespaceRow]{
				resourceColumn(refCPURequested, "REQUESTS", cores, func(r NamespaceRow) *float64 { return r.CPU.Requests }),
				resourceColumn(refCPULimits, "LIMITS", cores, func(r NamespaceRow) *float64 { return r.CPU.Limits }),
				resourceColumn(refCPUUsage, "USAGE", usage, func(r NamespaceRow) *float64 { return r.CPU.Usage }),
			},
		},
		{
			ID:     "memory",
			Header: "MEMORY",
			Columns: []asynctable.Column[NamespaceRow]{
				resourceColumn(refMemoryRequested, "REQUESTS", bytes, func(r NamespaceRow) *float64 { return r.Memory.Requests }),
				resourceColumn(refMemoryLimits, "LIMITS", bytes, func(r NamespaceRow) *float64 { return r.Memory.Limits }),
				resourceColumn(refMemoryUsage, "USAGE", bytes, func(r NamespaceRow) *float64 { return r.Memory.Usage }),
			},
		},
	}
}

// NamespacesConfig returns the per namespace resource breakdown. Expanded
// namespaces list their pods.
func NamespacesConfig(o Options) asynctable.Config[NamespaceRow, NamespaceFilters] {
	return asynctable.Config[NamespaceRow, NamespaceFilters]{
		Columns:        namespacesColumns(),
		CreateRowID:    namespaceRowID,
		RowMapper:      namespaceRowMapper(o),
		QueryBuilder:   namespacesQueryBuilder{opts: o},
		InitialSorting: asynctable.SortingState{ColumnID: labelNamespace, Direction: promql.Asc},
		NewRow:         decodeRow(o, func(r *NamespaceRow, cluster string) { r.Cluster = cluster }),
		Children:       namespacePods(o),
	}
}
