// SPDX-License-Identifier: GPL-3.0-or-later

package funcapi

import (
	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

// ValueOptions defines per-column formatting settings.
type ValueOptions struct {
	Transform     FieldTransform
	DecimalPoints int
	DefaultValue  any
}

// Column defines a table column for function responses.
type Column struct {
	Index         int
	Name          string
	Group         string
	Type          FieldType
	Units         string
	Visualization FieldVisual
	Sort          FieldSort
	Sortable      bool
	Sticky        bool
	Summary       FieldSummary
	Filter        FieldFilter
	Wrap          bool
	UniqueKey     bool
	Visible       bool
	ValueOptions  ValueOptions
}

// BuildColumn converts a Column definition to the JSON map used by the UI.
func (c Column) BuildColumn() map[string]any {
	col := map[string]any{
		"index":         c.Index,
		"unique_key":    c.UniqueKey,
		"name":          c.Name,
		"visible":       c.Visible,
		"type":          c.Type.String(),
		"visualization": c.Visualization.String(),
		"sort":          c.Sort.String(),
		"sortable":      c.Sortable,
		"sticky":        c.Sticky,
		"summary":       c.Summary.String(),
		"filter":        c.Filter.String(),
		"wrap":          c.Wrap,
	}

	if c.Units != "" {
		col["units"] = c.Units
	}
	if c.Group != "" {
		col["group"] = c.Group
	}

	valueOpts := map[string]any{
		"transform":      c.ValueOptions.Transform.String(),
		"decimal_points": c.ValueOptions.DecimalPoints,
		"default_value":  c.ValueOptions.DefaultValue,
	}
	if c.Units != "" {
		valueOpts["units"] = c.Units
	}
	col["value_options"] = valueOpts

	return col
}

// Cell formats understood by ColumnFromView.
const (
	FormatBytes    = "bytes"
	FormatDuration = "dtdurations"
	FormatPercent  = "percent"
)

// ColumnFromView maps a table column to a response column.
// Sub-columns are named "Group Header" so that names stay unique in the UI.
func ColumnFromView(index int, vc asynctable.ViewColumn, sorting asynctable.SortingState) Column {
	col := Column{
		Index:    index,
		Name:     vc.Header,
		Group:    vc.GroupHeader,
		Sortable: vc.Sort != asynctable.SortDisabled,
		Visible:  true,
	}
	if vc.GroupHeader != "" {
		col.Name = vc.GroupHeader + " " + vc.Header
	}
	if sorting.ColumnID == vc.ID && sorting.Direction == promql.Desc {
		col.Sort = FieldSortDescending
	}

	if vc.Cell.Kind != asynctable.CellFormatted {
		col.Type = FieldTypeString
		col.Visualization = FieldVisualValue
		col.Filter = FieldFilterMultiselect
		col.Summary = FieldSummaryUniqueCount
		col.Wrap = true
		col.ValueOptions.Transform = FieldTransformText
		return col
	}

	col.Filter = FieldFilterRange
	col.Summary = FieldSummarySum
	col.ValueOptions.DecimalPoints = vc.Cell.Decimals

	switch vc.Cell.Format {
	case FormatDuration:
		col.Type = FieldTypeDuration
		col.Units = "seconds"
		col.Summary = FieldSummaryMax
		col.ValueOptions.Transform = FieldTransformDuration
	case FormatBytes:
		col.Type = FieldTypeFloat
		col.Units = "bytes"
		col.Visualization = FieldVisualBar
		col.ValueOptions.Transform = FieldTransformNumber
	case FormatPercent:
		col.Type = FieldTypeFloat
		col.Units = "%"
		col.Visualization = FieldVisualBar
		col.ValueOptions.Transform = FieldTransformNumber
	default:
		col.Type = FieldTypeFloat
		col.Units = vc.Cell.Format
		col.ValueOptions.Transform = FieldTransformNumber
	}

	return col
}
