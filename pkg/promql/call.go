// SPDX-License-Identifier: GPL-3.0-or-later

package promql

// Call is a function call returning an instant vector.
type Call struct {
	operators
	fn  string
	arg string
}

func newCall(fn, arg string) *Call {
	c := &Call{fn: fn, arg: arg}
	c.self = c
	return c
}

// Sort wraps v in sort or sort_desc depending on the order.
func Sort(order Order, v Vector) *Call {
	if order == Desc {
		return newCall("sort_desc", v.String())
	}
	return newCall("sort", v.String())
}

// Rate computes the per-second rate over a range selector.
func Rate(r Range) *Call {
	return newCall("rate", r.String())
}

func (c *Call) String() string {
	return c.fn + "(" + c.arg + ")"
}
