// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"errors"
	"slices"
	"testing"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

func TestNewTable(t *testing.T) {
	tests := map[string]struct {
		prepare   func(cfg *Config[nsRow, nsFilters])
		wantErr   bool
		wantErrIs error
		check     func(t *testing.T, tbl *Table[nsRow, nsFilters])
	}{
		"valid": {
			prepare: func(cfg *Config[nsRow, nsFilters]) {},
			check: func(t *testing.T, tbl *Table[nsRow, nsFilters]) {
				assert.Equal(t, SortingState{ColumnID: "namespace", Direction: promql.Asc}, tbl.Sorting())
			},
		},
		"default sorting picks first sortable column": {
			prepare: func(cfg *Config[nsRow, nsFilters]) {
				cfg.InitialSorting = SortingState{}
				cfg.Columns = cfg.Columns[1:]
			},
			check: func(t *testing.T, tbl *Table[nsRow, nsFilters]) {
				assert.Equal(t, SortingState{ColumnID: "cpu_usage", Direction: promql.Asc}, tbl.Sorting())
			},
		},
		"no row id": {
			prepare: func(cfg *Config[nsRow, nsFilters]) { cfg.CreateRowID = nil },
			wantErr: true,
		},
		"no query builder": {
			prepare: func(cfg *Config[nsRow, nsFilters]) { cfg.QueryBuilder = nil },
			wantErr: true,
		},
		"unknown initial sorting": {
			prepare:   func(cfg *Config[nsRow, nsFilters]) { cfg.InitialSorting.ColumnID = "memory" },
			wantErr:   true,
			wantErrIs: ErrUnknownColumn,
		},
		"initial sorting on group": {
			prepare:   func(cfg *Config[nsRow, nsFilters]) { cfg.InitialSorting.ColumnID = "usage" },
			wantErr:   true,
			wantErrIs: ErrSortDisabled,
		},
		"duplicate column": {
			prepare: func(cfg *Config[nsRow, nsFilters]) {
				cfg.Columns = append(cfg.Columns, Column[nsRow]{ID: "pods", Accessor: func(nsRow) any { return nil }})
			},
			wantErr: true,
		},
		"column without accessor": {
			prepare: func(cfg *Config[nsRow, nsFilters]) {
				cfg.Columns = append(cfg.Columns, Column[nsRow]{ID: "node"})
			},
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := nsConfig()
			test.prepare(&cfg)

			tbl, err := NewTable(cfg)

			if test.wantErr {
				require.Error(t, err)
				if test.wantErrIs != nil {
					assert.ErrorIs(t, err, test.wantErrIs)
				}
				return
			}
			require.NoError(t, err)
			test.check(t, tbl)
		})
	}
}

func TestTable_ApplyRoot(t *testing.T) {
	tbl := newTestTable(t)

	req := tbl.Refresh()
	assert.Equal(t, uint64(1), req.Gen)
	assert.False(t, req.Replace)
	assert.Equal(t, "namespaces", req.Query.RefID)
	assert.True(t, req.Query.Instant)
	assert.Equal(t, "table", req.Query.Format)

	rowReq, ok := tbl.ApplyRoot(req.Gen, namespaces("ns-c", "ns-a", "ns-b"), nil)
	require.True(t, ok)
	require.NoError(t, tbl.Err())

	assert.Equal(t, []string{"ns-a:eu-1", "ns-b:eu-1", "ns-c:eu-1"}, rowIDs(tbl.Rows()))

	require.NotNil(t, rowReq)
	assert.Equal(t, []string{"ns-a:eu-1", "ns-b:eu-1", "ns-c:eu-1"}, rowReq.RowIDs)
	assert.Len(t, rowReq.Queries, 2)
	assert.Contains(t, queryByRef(t, rowReq, "cpu_usage").Expr, `namespace=~"ns-a|ns-b|ns-c"`)
}

func TestTable_ApplyRoot_Superseded(t *testing.T) {
	tbl := newTestTable(t)

	first := tbl.Refresh()
	second := tbl.Refresh()

	_, ok := tbl.ApplyRoot(first.Gen, namespaces("ns-a"), nil)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())

	_, ok = tbl.ApplyRoot(second.Gen, namespaces("ns-b"), nil)
	assert.True(t, ok)

	_, ok = tbl.ApplyRoot(second.Gen, namespaces("ns-c"), nil)
	assert.False(t, ok)

	assert.Equal(t, []string{"ns-b:eu-1"}, rowIDs(tbl.Rows()))
}

func TestTable_ApplyRoot_DuplicateIDs(t *testing.T) {
	tbl := newTestTable(t)
	req := tbl.Refresh()

	vec := model.Vector{
		sample(1, "namespace", "ns-a", "spoke", "eu-1", "phase", "Active"),
		sample(1, "namespace", "ns-a", "spoke", "eu-1", "phase", "Terminating"),
	}
	_, ok := tbl.ApplyRoot(req.Gen, vec, nil)
	require.True(t, ok)

	assert.Equal(t, 1, tbl.Len())
}

func TestTable_ApplyRoot_Error(t *testing.T) {
	tbl := newTestTable(t)
	loadRoot(t, tbl, "ns-a", "ns-b")

	req := tbl.Refresh()
	rowReq, ok := tbl.ApplyRoot(req.Gen, namespaces("ns-a"), errors.New("502 bad gateway"))
	require.True(t, ok)

	assert.Nil(t, rowReq)
	assert.Equal(t, 0, tbl.Len())
	assert.Error(t, tbl.Err())
}

func TestTable_IdentityStability(t *testing.T) {
	tbl := newTestTable(t)
	loadRoot(t, tbl, "ns-a", "ns-b")

	req, err := tbl.Expand("ns-a:eu-1")
	require.NoError(t, err)
	for _, q := range req.Queries {
		tbl.ApplyRows(*req, q.RefID, fakeBackend(q), nil)
	}

	loadRoot(t, tbl, "ns-b", "ns-a")

	row, ok := tbl.Row("ns-a:eu-1")
	require.True(t, ok)
	assert.True(t, row.Expanded)
	require.NotNil(t, row.Data.CPU)
	assert.InDelta(t, 0.4, *row.Data.CPU, 1e-9)
	assert.Len(t, row.Children, 2)
}

func TestTable_Removal(t *testing.T) {
	tbl := newTestTable(t)
	loadRoot(t, tbl, "ns-a", "ns-b")

	req, err := tbl.Expand("ns-a:eu-1")
	require.NoError(t, err)
	for _, q := range req.Queries {
		tbl.ApplyRows(*req, q.RefID, fakeBackend(q), nil)
	}

	loadRoot(t, tbl, "ns-b")

	_, ok := tbl.Row("ns-a:eu-1")
	assert.False(t, ok)
	assert.Equal(t, []string{"ns-b:eu-1"}, rowIDs(tbl.Rows()))

	// late results for the removed row are dropped
	q := queryByRef(t, req, "cpu_usage")
	assert.Equal(t, 1, tbl.ApplyRows(*req, q.RefID, fakeBackend(q), nil))
	_, ok = tbl.Row("ns-a:eu-1")
	assert.False(t, ok)

	_, err = tbl.Expand("ns-a:eu-1")
	assert.ErrorIs(t, err, ErrUnknownRow)
}

func TestTable_ApplyRows_FieldLevelMerge(t *testing.T) {
	tbl := newTestTable(t)
	req := loadRoot(t, tbl, "ns-a", "ns-b")

	tbl.ApplyRows(*req, "pods", perNamespace(map[string]float64{"ns-a": 3, "ns-b": 0}), nil)
	tbl.ApplyRows(*req, "cpu_usage", perNamespace(map[string]float64{"ns-a": 0.25}), nil)

	a, _ := tbl.Row("ns-a:eu-1")
	b, _ := tbl.Row("ns-b:eu-1")

	require.NotNil(t, a.Data.Pods)
	require.NotNil(t, a.Data.CPU)
	assert.Equal(t, 3.0, *a.Data.Pods)
	assert.Equal(t, 0.25, *a.Data.CPU)

	require.NotNil(t, b.Data.Pods)
	assert.Equal(t, 0.0, *b.Data.Pods)
	assert.Nil(t, b.Data.CPU, "missing series is absent, not zero")

	// a failed query clears only its own fields
	n := tbl.ApplyRows(*req, "cpu_usage", nil, errors.New("timeout"))
	assert.Equal(t, 2, n)

	a, _ = tbl.Row("ns-a:eu-1")
	assert.Nil(t, a.Data.CPU)
	require.NotNil(t, a.Data.Pods)
	assert.Equal(t, 3.0, *a.Data.Pods)
}

func TestTable_ReorderedArrival(t *testing.T) {
	run := func(t *testing.T, reverse bool) []Row[nsRow] {
		tbl := newTestTable(t)
		loadRoot(t, tbl, "ns-a", "ns-b", "ns-c")

		reqA, err := tbl.Expand("ns-a:eu-1")
		require.NoError(t, err)
		reqB, err := tbl.Expand("ns-b:eu-1")
		require.NoError(t, err)

		batches := []*RowRequest{reqA, reqB}
		if reverse {
			slices.Reverse(batches)
		}
		for _, req := range batches {
			for _, q := range req.Queries {
				tbl.ApplyRows(*req, q.RefID, fakeBackend(q), nil)
			}
		}
		return tbl.Rows()
	}

	inOrder := run(t, false)
	reversed := run(t, true)

	assert.Equal(t, inOrder, reversed)

	require.Len(t, reversed, 3)
	assert.Len(t, reversed[0].Children, 2)
	assert.Len(t, reversed[1].Children, 2)
	assert.Empty(t, reversed[2].Children)
	assert.Equal(t, "ns-b:eu-1/ns-b-pod-1", reversed[1].Children[0].ID)
}

func TestTable_Sort_Local(t *testing.T) {
	tbl := newTestTable(t)
	req := loadRoot(t, tbl, "ns-a", "ns-b", "ns-c", "ns-d", "ns-e")
	tbl.ApplyRows(*req, "pods", perNamespace(map[string]float64{
		"ns-a": 3, "ns-b": 1, "ns-c": 3, "ns-d": 2, "ns-e": 5,
	}), nil)

	sortReq, err := tbl.Sort("pods", promql.Asc)
	require.NoError(t, err)
	assert.Nil(t, sortReq)
	asc := tbl.Rows()

	assert.Equal(t, []string{"ns-b:eu-1", "ns-d:eu-1", "ns-a:eu-1", "ns-c:eu-1", "ns-e:eu-1"}, rowIDs(asc))
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, *asc[i-1].Data.Pods, *asc[i].Data.Pods)
	}

	_, err = tbl.Sort("pods", promql.Desc)
	require.NoError(t, err)
	desc := tbl.Rows()

	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	assert.Equal(t, rowIDs(reversed), rowIDs(desc))

	_, err = tbl.Sort("namespace", promql.Desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns-e:eu-1", "ns-d:eu-1", "ns-c:eu-1", "ns-b:eu-1", "ns-a:eu-1"}, rowIDs(tbl.Rows()))
}

func TestTable_Sort_MissingLast(t *testing.T) {
	tbl := newTestTable(t)
	req := loadRoot(t, tbl, "ns-a", "ns-b", "ns-c")
	tbl.ApplyRows(*req, "pods", perNamespace(map[string]float64{"ns-a": 2, "ns-c": 1}), nil)

	_, err := tbl.Sort("pods", promql.Asc)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns-c:eu-1", "ns-a:eu-1", "ns-b:eu-1"}, rowIDs(tbl.Rows()))

	_, err = tbl.Sort("pods", promql.Desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns-a:eu-1", "ns-c:eu-1", "ns-b:eu-1"}, rowIDs(tbl.Rows()))
}

func TestTable_Sort_Errors(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.Sort("memory", promql.Asc)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = tbl.Sort("usage", promql.Asc)
	assert.ErrorIs(t, err, ErrSortDisabled)

	assert.Equal(t, "namespace", tbl.Sorting().ColumnID)
}

func TestTable_Sort_Remote(t *testing.T) {
	tbl := newTestTable(t)
	loadRoot(t, tbl, "ns-a", "ns-b", "ns-c")

	expandReq, err := tbl.Expand("ns-a:eu-1")
	require.NoError(t, err)
	q := queryByRef(t, expandReq, "cpu_usage")
	tbl.ApplyRows(*expandReq, q.RefID, fakeBackend(q), nil)

	req, err := tbl.Sort("cpu_usage", promql.Desc)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.True(t, req.Replace)
	assert.Contains(t, req.Query.Expr, "sort_desc(")
	assert.Contains(t, req.Query.Expr, " * 0")

	// rows are kept until the sorted result arrives
	row, _ := tbl.Row("ns-a:eu-1")
	assert.True(t, row.Expanded)

	epoch := tbl.Epoch()
	_, ok := tbl.ApplyRoot(req.Gen, namespaces("ns-c", "ns-a", "ns-b"), nil)
	require.True(t, ok)

	assert.Equal(t, epoch+1, tbl.Epoch())
	assert.Equal(t, []string{"ns-c:eu-1", "ns-a:eu-1", "ns-b:eu-1"}, rowIDs(tbl.Rows()))

	row, _ = tbl.Row("ns-a:eu-1")
	assert.False(t, row.Expanded, "rows are replaced wholesale")
	assert.Nil(t, row.Data.CPU)

	// results of requests issued before the replacement are dropped
	assert.Equal(t, 0, tbl.ApplyRows(*expandReq, q.RefID, fakeBackend(q), nil))

	// plain refreshes keep the remote order and merge again
	loadRoot(t, tbl, "ns-b", "ns-c", "ns-a")
	assert.Equal(t, []string{"ns-b:eu-1", "ns-c:eu-1", "ns-a:eu-1"}, rowIDs(tbl.Rows()))
}

func TestTable_Sort_RemoteReplaceIsSticky(t *testing.T) {
	tbl := newTestTable(t)
	loadRoot(t, tbl, "ns-a")

	sortReq, err := tbl.Sort("cpu_usage", promql.Asc)
	require.NoError(t, err)

	filterReq := tbl.SetFilters(nsFilters{Namespace: ptr("ns-.*")})
	assert.True(t, filterReq.Replace)
	assert.Contains(t, filterReq.Query.Expr, `namespace=~"ns-.*"`)

	_, ok := tbl.ApplyRoot(sortReq.Gen, namespaces("ns-a"), nil)
	assert.False(t, ok)

	epoch := tbl.Epoch()
	_, ok = tbl.ApplyRoot(filterReq.Gen, namespaces("ns-a"), nil)
	assert.True(t, ok)
	assert.Equal(t, epoch+1, tbl.Epoch())

	assert.False(t, tbl.Refresh().Replace)
}

func TestTable_SetWindow(t *testing.T) {
	tbl := newTestTable(t)
	loadRoot(t, tbl, "ns-a", "ns-b", "ns-c")

	req := tbl.SetWindow(1, 1)
	require.NotNil(t, req)
	assert.Equal(t, []string{"ns-b:eu-1"}, req.RowIDs)
	assert.Contains(t, queryByRef(t, req, "pods").Expr, `namespace=~"ns-b"`)
	assert.Equal(t, []string{"ns-b:eu-1"}, rowIDs(tbl.Window()))

	assert.Nil(t, tbl.SetWindow(5, 10))
	assert.Empty(t, tbl.Window())

	req = tbl.SetWindow(0, 0)
	require.NotNil(t, req)
	assert.Len(t, req.RowIDs, 3)
}

func TestTable_Collapse(t *testing.T) {
	tbl := newTestTable(t)
	loadRoot(t, tbl, "ns-a")

	req, err := tbl.Expand("ns-a:eu-1")
	require.NoError(t, err)
	assert.Contains(t, queryByRef(t, req, "pod_cpu").Expr, "pod")
	for _, q := range req.Queries {
		tbl.ApplyRows(*req, q.RefID, fakeBackend(q), nil)
	}

	require.NoError(t, tbl.Collapse("ns-a:eu-1"))
	row, _ := tbl.Row("ns-a:eu-1")
	assert.False(t, row.Expanded)
	assert.Empty(t, row.Children)

	req = tbl.SetWindow(0, 0)
	require.NotNil(t, req)
	assert.Len(t, req.Queries, 2, "no expand queries without expanded rows")

	assert.ErrorIs(t, tbl.Collapse("ns-x:eu-1"), ErrUnknownRow)
}

func TestTable_View(t *testing.T) {
	tbl := newTestTable(t)
	req := loadRoot(t, tbl, "ns-a", "ns-b")
	tbl.ApplyRows(*req, "pods", perNamespace(map[string]float64{"ns-a": 3}), nil)

	v := tbl.View()

	var ids []string
	for _, c := range v.Columns {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"namespace", "cpu_usage", "pods"}, ids)
	assert.Equal(t, "usage", v.Columns[1].Group)
	assert.Equal(t, "USAGE", v.Columns[1].GroupHeader)
	assert.Equal(t, SortRemote, v.Columns[1].Sort)
	assert.Equal(t, CellText, v.Columns[0].Cell.Kind)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, "ns-a", v.Rows[0].Cells["namespace"])
	assert.Equal(t, 3.0, v.Rows[0].Cells["pods"])
	assert.Nil(t, v.Rows[0].Cells["cpu_usage"])
	assert.Nil(t, v.Rows[1].Cells["pods"])
}
