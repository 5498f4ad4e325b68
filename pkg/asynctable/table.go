// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"errors"
	"fmt"

	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrSortDisabled  = errors.New("sorting is disabled for column")
	ErrUnknownRow    = errors.New("unknown row")
)

// Config is the configuration of a table type.
//
// CreateRowID derives a stable, collision free id from the natural key of a row.
// RowMapper fills the fields that come from row query results and may be nil.
// NewRow builds a row from a root query sample and defaults to DecodeSample.
// Children returns the child rows of an expanded row and may be nil.
type Config[T, F any] struct {
	Columns        []Column[T]
	CreateRowID    func(row T) string
	RowMapper      func(row *T, res Results)
	QueryBuilder   QueryBuilder[T, F]
	InitialSorting SortingState
	NewRow         func(s model.Sample) (T, error)
	Children       func(parent T, res Results) []T
}

// Table holds the rows of a table and decides which queries to run.
// It is not safe for concurrent use.
type Table[T, F any] struct {
	cfg     Config[T, F]
	columns map[string]*Column[T]
	sorter  *sorter[T]

	filters F
	sorting SortingState

	gen     uint64 // last issued root request
	applied uint64 // last applied root request
	replace bool   // next applied root result replaces all rows
	epoch   uint64 // bumped on every wholesale replacement
	seq     uint64 // last issued row request

	rows  []*rowState[T]
	index map[string]*rowState[T]

	offset int
	limit  int

	err error
}

func NewTable[T, F any](cfg Config[T, F]) (*Table[T, F], error) {
	if cfg.CreateRowID == nil {
		return nil, errors.New("config: CreateRowID not set")
	}
	if cfg.QueryBuilder == nil {
		return nil, errors.New("config: QueryBuilder not set")
	}
	if len(cfg.Columns) == 0 {
		return nil, errors.New("config: no columns")
	}
	if cfg.NewRow == nil {
		cfg.NewRow = DecodeSample[T]
	}

	columns, err := indexColumns(cfg.Columns)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}

	t := &Table[T, F]{
		cfg:     cfg,
		columns: columns,
		sorter:  newSorter[T](),
		index:   make(map[string]*rowState[T]),
	}

	sorting := cfg.InitialSorting
	if sorting.ColumnID == "" {
		sorting.ColumnID = t.firstSortable()
	}
	if sorting.Direction == "" {
		sorting.Direction = promql.Asc
	}
	if sorting.ColumnID != "" {
		if _, err := t.sortColumn(sorting.ColumnID); err != nil {
			return nil, fmt.Errorf("config: initial sorting: %w", err)
		}
	}
	t.sorting = sorting

	return t, nil
}

func (t *Table[T, F]) Columns() []Column[T]  { return t.cfg.Columns }
func (t *Table[T, F]) Sorting() SortingState { return t.sorting }
func (t *Table[T, F]) Filters() F            { return t.filters }
func (t *Table[T, F]) Len() int              { return len(t.rows) }
func (t *Table[T, F]) Epoch() uint64         { return t.epoch }

// Err returns the error of the last applied root result.
func (t *Table[T, F]) Err() error { return t.err }

// Rows returns a snapshot of all rows in display order.
func (t *Table[T, F]) Rows() []Row[T] {
	rows := make([]Row[T], 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, r.snapshot())
	}
	return rows
}

// Row returns a snapshot of the row with the given id.
func (t *Table[T, F]) Row(id string) (Row[T], bool) {
	r, ok := t.index[id]
	if !ok {
		return Row[T]{}, false
	}
	return r.snapshot(), true
}

// Refresh issues a new root request. Responses to earlier root requests are dropped from now on.
func (t *Table[T, F]) Refresh() RootRequest {
	t.gen++

	var cfg *SortingConfig[T]
	if col, ok := t.columns[t.sorting.ColumnID]; ok {
		sc := col.Sorting
		cfg = &sc
	}

	return RootRequest{
		Gen:     t.gen,
		Replace: t.replace,
		Query:   t.cfg.QueryBuilder.RootQuery(t.filters, t.sorting, cfg),
	}
}

// SetFilters changes the filters and issues a new root request.
func (t *Table[T, F]) SetFilters(filters F) RootRequest {
	t.filters = filters
	return t.Refresh()
}

// Sort changes the active sort. Local sorts re-order the rows in place and return
// a nil request. Remote sorts return a root request whose result replaces all rows.
func (t *Table[T, F]) Sort(columnID string, dir promql.Order) (*RootRequest, error) {
	col, err := t.sortColumn(columnID)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = promql.Asc
	}

	t.sorting = SortingState{ColumnID: columnID, Direction: dir}

	if col.Sorting.Mode() == SortLocal {
		t.sorter.sortRows(t.rows, col, dir)
		for _, r := range t.rows {
			t.sortChildren(r)
		}
		return nil, nil
	}

	t.replace = true
	req := t.Refresh()
	return &req, nil
}

// ApplyRoot applies a root query result. It returns false if the result belongs to
// a superseded request. On success it returns the row request for the visible rows, if any.
// A failed root query leaves the table without rows.
func (t *Table[T, F]) ApplyRoot(gen uint64, vec model.Vector, err error) (*RowRequest, bool) {
	if gen != t.gen || gen == t.applied {
		return nil, false
	}
	t.applied = gen
	t.err = err

	if t.replace {
		t.replace = false
		t.epoch++
		t.rows = nil
		clear(t.index)
	}
	if err != nil {
		vec = nil
	}

	rows := make([]*rowState[T], 0, len(vec))
	index := make(map[string]*rowState[T], len(vec))
	var errs []error

	for i, sample := range vec {
		data, err := t.cfg.NewRow(*sample)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		id := t.cfg.CreateRowID(data)
		if _, ok := index[id]; ok {
			continue
		}

		r, ok := t.index[id]
		if !ok {
			r = newRowState[T](id)
		}
		r.sample = *sample
		r.pos = i
		t.rebuild(r)

		rows = append(rows, r)
		index[id] = r
	}

	if len(errs) > 0 {
		t.err = errors.Join(append([]error{t.err}, errs...)...)
	}

	t.rows = rows
	t.index = index
	t.order()

	return t.rowRequest(), true
}

// ApplyRows merges the result of one query of a row request into the rows of the
// request that still exist. It returns the number of rows updated.
// A failed query removes the values of that query from the rows.
func (t *Table[T, F]) ApplyRows(req RowRequest, refID string, vec model.Vector, err error) int {
	if req.Epoch != t.epoch {
		return 0
	}
	if err != nil {
		vec = nil
	}

	var n int
	for _, id := range req.RowIDs {
		r, ok := t.index[id]
		if !ok || r.seq[refID] > req.Seq {
			continue
		}
		r.seq[refID] = req.Seq
		if vec == nil {
			delete(r.results, refID)
		} else {
			r.results[refID] = vec
		}
		t.rebuild(r)
		n++
	}

	if n > 0 {
		if col, ok := t.columns[t.sorting.ColumnID]; ok && col.Sorting.Mode() == SortLocal {
			t.sorter.sortRows(t.rows, col, t.sorting.Direction)
		}
	}
	return n
}

// Expand marks the row expanded and returns the row request for the visible rows.
func (t *Table[T, F]) Expand(id string) (*RowRequest, error) {
	r, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownRow, id)
	}
	r.expanded = true
	t.rebuild(r)
	return t.rowRequest(), nil
}

func (t *Table[T, F]) Collapse(id string) error {
	r, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w '%s'", ErrUnknownRow, id)
	}
	r.expanded = false
	r.children = nil
	return nil
}

// SetWindow sets the visible rows. A zero limit means all rows.
func (t *Table[T, F]) SetWindow(offset, limit int) *RowRequest {
	t.offset = max(offset, 0)
	t.limit = max(limit, 0)
	return t.rowRequest()
}

// Window returns the visible rows in display order.
func (t *Table[T, F]) Window() []Row[T] {
	visible := t.visible()
	rows := make([]Row[T], 0, len(visible))
	for _, r := range visible {
		rows = append(rows, r.snapshot())
	}
	return rows
}

func (t *Table[T, F]) visible() []*rowState[T] {
	if t.offset >= len(t.rows) {
		return nil
	}
	end := len(t.rows)
	if t.limit > 0 {
		end = min(end, t.offset+t.limit)
	}
	return t.rows[t.offset:end]
}

func (t *Table[T, F]) rowRequest() *RowRequest {
	visible := t.visible()
	if len(visible) == 0 {
		return nil
	}

	ids := make([]string, 0, len(visible))
	data := make([]T, 0, len(visible))
	var expanded []T
	for _, r := range visible {
		ids = append(ids, r.id)
		data = append(data, r.data)
		if r.expanded {
			expanded = append(expanded, r.data)
		}
	}

	queries := t.cfg.QueryBuilder.RowQueries(data, t.filters)
	if eb, ok := t.cfg.QueryBuilder.(ExpandQueryBuilder[T, F]); ok && len(expanded) > 0 {
		queries = append(queries, eb.ExpandQueries(expanded, t.filters)...)
	}
	if len(queries) == 0 {
		return nil
	}

	t.seq++
	return &RowRequest{
		Epoch:   t.epoch,
		Seq:     t.seq,
		RowIDs:  ids,
		Queries: queries,
	}
}

// rebuild recomputes the row data from the root sample and all row results received so far.
func (t *Table[T, F]) rebuild(r *rowState[T]) {
	data, err := t.cfg.NewRow(r.sample)
	if err != nil {
		return
	}
	if t.cfg.RowMapper != nil {
		t.cfg.RowMapper(&data, r.results)
	}
	r.data = data

	r.children = nil
	if r.expanded && t.cfg.Children != nil {
		for _, child := range t.cfg.Children(data, r.results) {
			r.children = append(r.children, Row[T]{ID: t.cfg.CreateRowID(child), Data: child})
		}
		t.sortChildren(r)
	}
}

func (t *Table[T, F]) sortChildren(r *rowState[T]) {
	if len(r.children) < 2 {
		return
	}
	if col, ok := t.columns[t.sorting.ColumnID]; ok {
		t.sorter.sortChildren(r.children, col, t.sorting.Direction)
	}
}

func (t *Table[T, F]) order() {
	col, ok := t.columns[t.sorting.ColumnID]
	if !ok {
		return
	}
	if col.Sorting.Mode() == SortRemote {
		// the backend already ordered the result
		return
	}
	t.sorter.sortRows(t.rows, col, t.sorting.Direction)
}

func (t *Table[T, F]) sortColumn(id string) (*Column[T], error) {
	col, ok := t.columns[id]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownColumn, id)
	}
	if col.Sorting.Mode() == SortDisabled {
		return nil, fmt.Errorf("%w '%s'", ErrSortDisabled, id)
	}
	return col, nil
}

func (t *Table[T, F]) firstSortable() string {
	for _, col := range t.cfg.Columns {
		if col.Sorting.Mode() != SortDisabled {
			return col.ID
		}
		for _, sub := range col.Columns {
			if sub.Sorting.Mode() != SortDisabled {
				return sub.ID
			}
		}
	}
	return ""
}
