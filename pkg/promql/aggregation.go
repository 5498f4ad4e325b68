// SPDX-License-Identifier: GPL-3.0-or-later

package promql

import "slices"

// Aggregation is an aggregation operator applied to a vector.
type Aggregation struct {
	operators
	op       string
	operand  Vector
	grouping []string
	without  bool
}

func Sum(v Vector) *Aggregation   { return newAggregation("sum", v, nil, false) }
func Count(v Vector) *Aggregation { return newAggregation("count", v, nil, false) }
func Max(v Vector) *Aggregation   { return newAggregation("max", v, nil, false) }
func Group(v Vector) *Aggregation { return newAggregation("group", v, nil, false) }

func newAggregation(op string, v Vector, grouping []string, without bool) *Aggregation {
	a := &Aggregation{op: op, operand: v, grouping: grouping, without: without}
	a.self = a
	return a
}

// By keeps only the given labels in the result.
func (a *Aggregation) By(labels ...string) *Aggregation {
	return newAggregation(a.op, a.operand, slices.Clone(labels), false)
}

// Without drops the given labels from the result.
func (a *Aggregation) Without(labels ...string) *Aggregation {
	return newAggregation(a.op, a.operand, slices.Clone(labels), true)
}

func (a *Aggregation) String() string {
	switch {
	case a.without:
		return a.op + " without " + joinLabels(a.grouping) + " (" + a.operand.String() + ")"
	case len(a.grouping) > 0:
		return a.op + " by " + joinLabels(a.grouping) + " (" + a.operand.String() + ")"
	default:
		return a.op + "(" + a.operand.String() + ")"
	}
}
