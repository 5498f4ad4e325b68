// SPDX-License-Identifier: GPL-3.0-or-later

package promql

import (
	"slices"
	"strings"
)

// Arithmetic is a binary expression that has an operator but no right operand yet.
type Arithmetic struct {
	lhs Vector
	op  string
}

func (a *Arithmetic) On(labels ...string) *Matching {
	return &Matching{lhs: a.lhs, op: a.op, match: "on", labels: slices.Clone(labels)}
}

func (a *Arithmetic) Ignoring(labels ...string) *Matching {
	return &Matching{lhs: a.lhs, op: a.op, match: "ignoring", labels: slices.Clone(labels)}
}

func (a *Arithmetic) WithScalar(n float64) *Binary {
	return newBinary(a.lhs, a.op, "", Number(n))
}

func (a *Arithmetic) WithExpression(rhs Expr) *Binary {
	return newBinary(a.lhs, a.op, "", rhs)
}

// Matching is an arithmetic expression with on/ignoring vector matching.
type Matching struct {
	lhs    Vector
	op     string
	match  string
	labels []string
}

// GroupLeft makes the match many-to-one, copying extra labels from rhs.
func (m *Matching) GroupLeft(extra []string, rhs Vector) *Binary {
	return newBinary(m.lhs, m.op, m.modifier()+" group_left"+joinLabels(extra), rhs)
}

// GroupRight makes the match one-to-many, copying extra labels from the left side.
func (m *Matching) GroupRight(extra []string, rhs Vector) *Binary {
	return newBinary(m.lhs, m.op, m.modifier()+" group_right"+joinLabels(extra), rhs)
}

func (m *Matching) WithExpression(rhs Vector) *Binary {
	return newBinary(m.lhs, m.op, m.modifier(), rhs)
}

func (m *Matching) modifier() string {
	return m.match + joinLabels(m.labels)
}

// SetOperation is an or/and/unless expression without a right operand yet.
// Set operators accept neither scalars nor group modifiers.
type SetOperation struct {
	lhs Vector
	op  string
}

func (s *SetOperation) On(labels ...string) *SetMatching {
	return &SetMatching{lhs: s.lhs, op: s.op, modifier: "on" + joinLabels(labels)}
}

func (s *SetOperation) Ignoring(labels ...string) *SetMatching {
	return &SetMatching{lhs: s.lhs, op: s.op, modifier: "ignoring" + joinLabels(labels)}
}

func (s *SetOperation) WithExpression(rhs Vector) *Binary {
	return newBinary(s.lhs, s.op, "", rhs)
}

type SetMatching struct {
	lhs      Vector
	op       string
	modifier string
}

func (s *SetMatching) WithExpression(rhs Vector) *Binary {
	return newBinary(s.lhs, s.op, s.modifier, rhs)
}

// Binary is a complete binary expression.
type Binary struct {
	operators
	lhs      Vector
	op       string
	modifier string
	rhs      Expr
}

func newBinary(lhs Vector, op, modifier string, rhs Expr) *Binary {
	b := &Binary{lhs: lhs, op: op, modifier: modifier, rhs: rhs}
	b.self = b
	return b
}

func (b *Binary) String() string {
	var sb strings.Builder

	sb.WriteString(operand(b.lhs))
	sb.WriteString(" " + b.op + " ")
	if b.modifier != "" {
		sb.WriteString(b.modifier + " ")
	}
	sb.WriteString(operand(b.rhs))

	return sb.String()
}

func operand(e Expr) string {
	if _, ok := e.(*Binary); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}
