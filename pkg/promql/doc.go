// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package promql builds PromQL expressions as immutable trees.

Every builder call returns a new node. Binary expressions are built in stages,
each stage exposes only the next legal step, so an incomplete expression cannot
be printed:

	promql.Sort(promql.Asc,
		base.Multiply().On("namespace").GroupRight(nil, usage).
			Or().WithExpression(base.Multiply().WithScalar(0)))
*/
package promql
