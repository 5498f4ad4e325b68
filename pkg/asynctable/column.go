// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"errors"
	"fmt"
)

type CellKind string

const (
	CellText      CellKind = "text"
	CellFormatted CellKind = "formatted"
)

// Cell is a rendering hint.
type Cell struct {
	Kind     CellKind
	Format   string
	Decimals int
}

type SortKind string

const (
	SortByLabel SortKind = "label"
	SortByValue SortKind = "value"
)

type SortMode int

const (
	SortDisabled SortMode = iota
	SortLocal
	SortRemote
)

func (m SortMode) String() string {
	switch m {
	case SortLocal:
		return "local"
	case SortRemote:
		return "remote"
	default:
		return "disabled"
	}
}

type SortingConfig[T any] struct {
	Enabled bool
	Kind    SortKind
	Local   bool
	// Compare overrides the comparison derived from Kind. It orders ascending.
	Compare func(a, b T) int
}

func (c SortingConfig[T]) Mode() SortMode {
	switch {
	case !c.Enabled:
		return SortDisabled
	case c.Local:
		return SortLocal
	default:
		return SortRemote
	}
}

// Column describes a table column. A column with sub-columns is a header group
// and has no accessor.
type Column[T any] struct {
	ID       string
	Header   string
	Accessor func(T) any
	Columns  []Column[T]
	Cell     Cell
	Sorting  SortingConfig[T]
}

func indexColumns[T any](columns []Column[T]) (map[string]*Column[T], error) {
	index := make(map[string]*Column[T])

	for i := range columns {
		col := &columns[i]
		if col.ID == "" {
			return nil, errors.New("column with empty id")
		}
		if _, ok := index[col.ID]; ok {
			return nil, fmt.Errorf("duplicate column '%s'", col.ID)
		}
		if len(col.Columns) > 0 {
			if col.Sorting.Enabled {
				return nil, fmt.Errorf("column group '%s' can not be sortable", col.ID)
			}
			for _, sub := range col.Columns {
				if len(sub.Columns) > 0 {
					return nil, fmt.Errorf("column '%s': only two header levels are supported", sub.ID)
				}
			}
			sub, err := indexColumns(col.Columns)
			if err != nil {
				return nil, err
			}
			for id, c := range sub {
				if _, ok := index[id]; ok {
					return nil, fmt.Errorf("duplicate column '%s'", id)
				}
				index[id] = c
			}
		} else if col.Accessor == nil {
			return nil, fmt.Errorf("column '%s' has no accessor", col.ID)
		}
		index[col.ID] = col
	}

	return index, nil
}
