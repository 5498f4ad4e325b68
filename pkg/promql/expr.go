// SPDX-License-Identifier: GPL-3.0-or-later

package promql

import (
	"strconv"
	"strings"
)

// Expr is any printable PromQL expression.
type Expr interface {
	String() string
	expr()
}

// Vector is an expression that evaluates to an instant vector.
// Only vectors can start a binary expression.
type Vector interface {
	Expr
	Multiply() *Arithmetic
	Divide() *Arithmetic
	Add() *Arithmetic
	Subtract() *Arithmetic
	Or() *SetOperation
	And() *SetOperation
	Unless() *SetOperation
}

// Number is a scalar literal.
type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (Number) expr() {}

// operators is embedded in every vector node. self must point back to the node.
type operators struct {
	self Vector
}

func (o operators) Multiply() *Arithmetic { return &Arithmetic{lhs: o.self, op: "*"} }
func (o operators) Divide() *Arithmetic   { return &Arithmetic{lhs: o.self, op: "/"} }
func (o operators) Add() *Arithmetic      { return &Arithmetic{lhs: o.self, op: "+"} }
func (o operators) Subtract() *Arithmetic { return &Arithmetic{lhs: o.self, op: "-"} }

func (o operators) Or() *SetOperation     { return &SetOperation{lhs: o.self, op: "or"} }
func (o operators) And() *SetOperation    { return &SetOperation{lhs: o.self, op: "and"} }
func (o operators) Unless() *SetOperation { return &SetOperation{lhs: o.self, op: "unless"} }

func (operators) expr() {}

func joinLabels(names []string) string {
	return "(" + strings.Join(names, ", ") + ")"
}
