// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"github.com/prometheus/common/model"
)

type Row[T any] struct {
	ID       string
	Data     T
	Expanded bool
	Children []Row[T]
}

type rowState[T any] struct {
	id       string
	sample   model.Sample
	pos      int
	data     T
	expanded bool
	children []Row[T]
	results  Results
	seq      map[string]uint64
}

func newRowState[T any](id string) *rowState[T] {
	return &rowState[T]{
		id:      id,
		results: make(Results),
		seq:     make(map[string]uint64),
	}
}

func (r *rowState[T]) snapshot() Row[T] {
	row := Row[T]{ID: r.id, Data: r.data, Expanded: r.expanded}
	if len(r.children) > 0 {
		row.Children = append([]Row[T](nil), r.children...)
	}
	return row
}
