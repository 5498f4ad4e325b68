// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/prometheus/common/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

// SortingState is the active sort of a table.
type SortingState struct {
	ColumnID  string       `json:"column" yaml:"column"`
	Direction promql.Order `json:"direction" yaml:"direction"`
}

func (s SortingState) String() string {
	return fmt.Sprintf("%s:%s", s.ColumnID, s.Direction)
}

// ParseSortingState parses "column[:asc|desc]".
func ParseSortingState(s string) (SortingState, error) {
	col, dir, _ := strings.Cut(s, ":")
	if col = strings.TrimSpace(col); col == "" {
		return SortingState{}, fmt.Errorf("invalid sorting '%s': empty column", s)
	}
	order, err := promql.ParseOrder(dir)
	if err != nil {
		return SortingState{}, fmt.Errorf("invalid sorting '%s': %v", s, err)
	}
	return SortingState{ColumnID: col, Direction: order}, nil
}

type sorter[T any] struct {
	collator *collate.Collator
}

func newSorter[T any]() *sorter[T] {
	return &sorter[T]{collator: collate.New(language.English)}
}

// compare is a total order over rows. Rows without a value go last in both
// directions, the rest are ordered by value then id and reversed for desc.
func (s *sorter[T]) compare(col *Column[T], dir promql.Order, a, b T, aID, bID string) int {
	sign := 1
	if dir == promql.Desc {
		sign = -1
	}

	var c int
	switch {
	case col.Sorting.Compare != nil:
		c = col.Sorting.Compare(a, b)
	case col.Sorting.Kind == SortByValue:
		va, okA := number(col.Accessor(a))
		vb, okB := number(col.Accessor(b))
		switch {
		case !okA && !okB:
		case !okA:
			return 1
		case !okB:
			return -1
		default:
			c = cmp.Compare(va, vb)
		}
	default:
		c = s.collator.CompareString(label(col.Accessor(a)), label(col.Accessor(b)))
	}

	if c == 0 {
		c = strings.Compare(aID, bID)
	}
	return sign * c
}

func (s *sorter[T]) sortRows(rows []*rowState[T], col *Column[T], dir promql.Order) {
	slices.SortStableFunc(rows, func(a, b *rowState[T]) int {
		return s.compare(col, dir, a.data, b.data, a.id, b.id)
	})
}

func (s *sorter[T]) sortChildren(rows []Row[T], col *Column[T], dir promql.Order) {
	slices.SortStableFunc(rows, func(a, b Row[T]) int {
		return s.compare(col, dir, a.Data, b.Data, a.ID, b.ID)
	})
}

func number(v any) (float64, bool) {
	var f float64
	switch v := v.(type) {
	case nil:
		return 0, false
	case *float64:
		if v == nil {
			return 0, false
		}
		f = *v
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint64:
		f = float64(v)
	case model.SampleValue:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func label(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}
