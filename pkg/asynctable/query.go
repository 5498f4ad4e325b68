// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"context"

	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

// Query describes one instant query sent to the backend.
type Query struct {
	RefID   string `json:"refId"`
	Expr    string `json:"expr"`
	Instant bool   `json:"instant"`
	Format  string `json:"format"`
}

// NewQuery returns an instant table query for the expression.
func NewQuery(refID string, expr promql.Expr) Query {
	return Query{
		RefID:   refID,
		Expr:    expr.String(),
		Instant: true,
		Format:  "table",
	}
}

// Querier evaluates an instant query.
type Querier interface {
	Query(ctx context.Context, expr string) (model.Vector, error)
}

// QueryBuilder builds the queries of one table type. Implementations must be pure.
type QueryBuilder[T, F any] interface {
	// RootQuery returns the query producing one sample per row. When cfg is
	// not nil and not local, the query must order its result by the sorted column.
	RootQuery(filters F, sorting SortingState, cfg *SortingConfig[T]) Query

	// RowQueries returns the follow-up queries for the given rows.
	RowQueries(rows []T, filters F) []Query
}

// ExpandQueryBuilder is implemented by builders that fetch extra detail for expanded rows.
type ExpandQueryBuilder[T, F any] interface {
	ExpandQueries(rows []T, filters F) []Query
}

// RootRequest is a root query to execute. Gen identifies it among root requests of the table.
type RootRequest struct {
	Gen     uint64
	Replace bool
	Query   Query
}

// RowRequest is a batch of row queries for a fixed set of rows.
type RowRequest struct {
	Epoch   uint64
	Seq     uint64
	RowIDs  []string
	Queries []Query
}
