// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

// View is the untyped projection of a table used by renderers.
type View struct {
	Table   string
	Columns []ViewColumn
	Rows    []ViewRow
	Sorting SortingState
	Total   int
	Offset  int
	Pending int
	Err     error
}

// ViewColumn is a leaf column. Group is set for sub-columns of a header group.
type ViewColumn struct {
	ID          string
	Header      string
	Group       string
	GroupHeader string
	Cell        Cell
	Sort        SortMode
}

type ViewRow struct {
	ID       string
	Cells    map[string]any
	Expanded bool
	Children []ViewRow
}

// View returns the visible rows with their cell values.
// Absent values are nil, *float64 values are dereferenced.
func (t *Table[T, F]) View() View {
	var leaves []*Column[T]
	var columns []ViewColumn

	for i := range t.cfg.Columns {
		col := &t.cfg.Columns[i]
		if len(col.Columns) == 0 {
			leaves = append(leaves, col)
			columns = append(columns, viewColumn(col, nil))
			continue
		}
		for j := range col.Columns {
			sub := &col.Columns[j]
			leaves = append(leaves, sub)
			columns = append(columns, viewColumn(sub, col))
		}
	}

	visible := t.visible()
	rows := make([]ViewRow, 0, len(visible))
	for _, r := range visible {
		row := viewRow(r.id, r.data, leaves)
		row.Expanded = r.expanded
		for _, child := range r.children {
			row.Children = append(row.Children, viewRow(child.ID, child.Data, leaves))
		}
		rows = append(rows, row)
	}

	return View{
		Columns: columns,
		Rows:    rows,
		Sorting: t.sorting,
		Total:   len(t.rows),
		Offset:  t.offset,
		Err:     t.err,
	}
}

func viewColumn[T any](col, group *Column[T]) ViewColumn {
	vc := ViewColumn{
		ID:     col.ID,
		Header: col.Header,
		Cell:   col.Cell,
		Sort:   col.Sorting.Mode(),
	}
	if vc.Cell.Kind == "" {
		vc.Cell.Kind = CellText
	}
	if group != nil {
		vc.Group = group.ID
		vc.GroupHeader = group.Header
	}
	return vc
}

func viewRow[T any](id string, data T, leaves []*Column[T]) ViewRow {
	cells := make(map[string]any, len(leaves))
	for _, col := range leaves {
		v := col.Accessor(data)
		if p, ok := v.(*float64); ok {
			if p == nil {
				v = nil
			} else {
				v = *p
			}
		}
		cells[col.ID] = v
	}
	return ViewRow{ID: id, Cells: cells}
}
