// SPDX-License-Identifier: GPL-3.0-or-later

package funcapi

import (
	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

const (
	SortParamID = "__sort"

	rowIDColumn     = "rowId"
	parentIDColumn  = "parentId"
	expandedColumn  = "expanded"
	internalColumns = 3
)

// BuildResponse renders a table view. Every data row starts with the row id,
// the parent row id (empty for top level rows) and the expanded flag,
// children follow their parent.
func BuildResponse(v asynctable.View, help string) *FunctionResponse {
	columns := map[string]any{
		rowIDColumn: Column{
			Index:     0,
			Name:      "ID",
			Type:      FieldTypeString,
			UniqueKey: true,
		}.BuildColumn(),
		parentIDColumn: Column{
			Index: 1,
			Name:  "Parent",
			Type:  FieldTypeString,
		}.BuildColumn(),
		expandedColumn: Column{
			Index: 2,
			Name:  "Expanded",
		}.BuildColumn(),
	}
	for i, vc := range v.Columns {
		columns[vc.ID] = ColumnFromView(internalColumns+i, vc, v.Sorting).BuildColumn()
	}

	var data [][]any
	for _, row := range v.Rows {
		data = append(data, dataRow(v.Columns, row, ""))
		for _, child := range row.Children {
			data = append(data, dataRow(v.Columns, child, row.ID))
		}
	}

	sortParam := SortParam(v)
	resp := &FunctionResponse{
		Status:         200,
		Help:           help,
		Columns:        columns,
		Data:           data,
		RequiredParams: []ParamConfig{sortParam},
		Total:          v.Total,
		Pending:        v.Pending,
	}
	if sorting, ok := SortingFromParams(ResolveParams(resp.RequiredParams, nil)); ok {
		resp.DefaultSortColumn = sorting.ColumnID
	}
	return resp
}

func dataRow(columns []asynctable.ViewColumn, row asynctable.ViewRow, parentID string) []any {
	out := make([]any, 0, internalColumns+len(columns))
	out = append(out, row.ID, parentID, row.Expanded)
	for _, vc := range columns {
		out = append(out, row.Cells[vc.ID])
	}
	return out
}

// SortParam lists both directions of every sortable column.
// The active sorting is the default option.
func SortParam(v asynctable.View) ParamConfig {
	asc, desc := FieldSortAscending, FieldSortDescending

	cfg := ParamConfig{
		ID:         SortParamID,
		Name:       "Sort by",
		Help:       "Sortable columns sorted remotely are re-queried.",
		UniqueView: true,
	}
	for _, vc := range v.Columns {
		if vc.Sort == asynctable.SortDisabled {
			continue
		}
		name := vc.Header
		if vc.GroupHeader != "" {
			name = vc.GroupHeader + " " + vc.Header
		}
		for _, dir := range []promql.Order{promql.Asc, promql.Desc} {
			sort := &asc
			if dir == promql.Desc {
				sort = &desc
			}
			state := asynctable.SortingState{ColumnID: vc.ID, Direction: dir}
			cfg.Options = append(cfg.Options, ParamOption{
				ID:      state.String(),
				Name:    name + " (" + sort.String() + ")",
				Default: state == v.Sorting,
				Sort:    sort,
				Column:  vc.ID,
			})
		}
	}
	return cfg
}

// SortingFromParams returns the sorting selected by the __sort param.
func SortingFromParams(params ResolvedParams) (asynctable.SortingState, bool) {
	opt, ok := params[SortParamID]
	if !ok {
		return asynctable.SortingState{}, false
	}
	state := asynctable.SortingState{
		ColumnID:  params.Column(SortParamID),
		Direction: promql.Asc,
	}
	if opt.Sort != nil && *opt.Sort == FieldSortDescending {
		state.Direction = promql.Desc
	}
	return state, true
}
