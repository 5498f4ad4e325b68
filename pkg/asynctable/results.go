// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"math"

	"github.com/prometheus/common/model"
)

// Results holds the row query responses received for a row, keyed by ref id.
type Results map[string]model.Vector

// Match selects the series belonging to a row.
type Match func(model.Metric) bool

// MatchLabels matches series having all the given label values.
func MatchLabels(ls model.LabelSet) Match {
	return func(m model.Metric) bool {
		for name, value := range ls {
			if m[name] != value {
				return false
			}
		}
		return true
	}
}

// Value returns the value of the first matching sample, nil when there is none.
func (r Results) Value(refID string, match Match) *float64 {
	for _, s := range r[refID] {
		if match == nil || match(s.Metric) {
			v := float64(s.Value)
			if math.IsNaN(v) {
				return nil
			}
			return &v
		}
	}
	return nil
}

// Samples returns all matching samples.
func (r Results) Samples(refID string, match Match) model.Vector {
	var vec model.Vector
	for _, s := range r[refID] {
		if match == nil || match(s.Metric) {
			vec = append(vec, s)
		}
	}
	return vec
}
