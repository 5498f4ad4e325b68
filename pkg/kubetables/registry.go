// SPDX-License-Identifier: GPL-3.0-or-later

package kubetables

import (
	"context"
	"errors"
	"fmt"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

var ErrUnknownTable = errors.New("unknown table")

// Viewer is a running table with its row type erased.
type Viewer interface {
	Run(ctx context.Context)
	Refresh(ctx context.Context) error
	SetFilterValues(ctx context.Context, values map[string]string) error
	Sort(ctx context.Context, columnID string, dir promql.Order) error
	Expand(ctx context.Context, id string) error
	Collapse(ctx context.Context, id string) error
	SetWindow(ctx context.Context, offset, limit int) error
	View(ctx context.Context) (asynctable.View, error)
}

type entry struct {
	help string
	open func(name string, o Options, q asynctable.Querier) (Viewer, error)
}

var registry = map[string]entry{
	"alerts": {
		help: "Active alerts with their state, severity and age.",
		open: func(name string, o Options, q asynctable.Querier) (Viewer, error) {
			return open(name, AlertsConfig(o), o, q)
		},
	},
	"daemonsets": {
		help: "DaemonSets with their desired and ready replicas and firing alerts.",
		open: func(name string, o Options, q asynctable.Querier) (Viewer, error) {
			return open(name, DaemonSetsConfig(o), o, q)
		},
	},
	"namespaces": {
		help: "CPU and memory requests, limits and usage per namespace.",
		open: func(name string, o Options, q asynctable.Querier) (Viewer, error) {
			return open(name, NamespacesConfig(o), o, q)
		},
	},
}

// Names returns the names of the available tables.
func Names() []string {
	return sortedKeys(registry)
}

// Help returns the description of a table.
func Help(name string) string {
	return registry[name].help
}

// Open creates the named table. The returned Viewer does nothing until Run is called.
func Open(name string, o Options, q asynctable.Querier) (Viewer, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s' (available: %v)", ErrUnknownTable, name, Names())
	}
	return e.open(name, o, q)
}

func open[T, F any](name string, cfg asynctable.Config[T, F], o Options, q asynctable.Querier) (Viewer, error) {
	if o.Sorting.ColumnID != "" {
		cfg.InitialSorting = o.Sorting
	}

	table, err := asynctable.NewTable(cfg)
	if err != nil {
		return nil, fmt.Errorf("table '%s': %w", name, err)
	}
	return asynctable.NewRunner(name, table, q, o.Runner), nil
}

// IsTable reports whether name is a known table.
func IsTable(name string) bool {
	_, ok := registry[name]
	return ok
}
