// SPDX-License-Identifier: GPL-3.0-or-later

package promql

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"
	"github.com/prometheus/prometheus/model/labels"
)

// Matcher is a label match operator with its value.
type Matcher struct {
	Type  labels.MatchType
	Value string
}

func Equals(v string) Matcher     { return Matcher{Type: labels.MatchEqual, Value: v} }
func NotEquals(v string) Matcher  { return Matcher{Type: labels.MatchNotEqual, Value: v} }
func Matches(v string) Matcher    { return Matcher{Type: labels.MatchRegexp, Value: v} }
func NotMatches(v string) Matcher { return Matcher{Type: labels.MatchNotRegexp, Value: v} }

// Labels maps label names to matchers.
type Labels map[string]Matcher

type labelMatcher struct {
	name string
	Matcher
}

func (m labelMatcher) String() string {
	return quoteName(m.name) + m.Type.String() + strconv.Quote(m.Value)
}

// quoteName quotes a name that is not a legacy identifier, like "k8s.pod".
func quoteName(name string) string {
	if model.LabelName(name).IsValidLegacy() {
		return name
	}
	return strconv.Quote(name)
}

// Selector is an instant vector selector.
type Selector struct {
	operators
	metric   string
	matchers []labelMatcher
}

// Metric returns a selector for the metric name with no label matchers.
func Metric(name string) *Selector {
	return newSelector(name, nil)
}

func newSelector(metric string, matchers []labelMatcher) *Selector {
	s := &Selector{metric: metric, matchers: matchers}
	s.self = s
	return s
}

func (s *Selector) WithLabelEquals(name, value string) *Selector {
	return s.with(name, Equals(value))
}

func (s *Selector) WithLabelNotEquals(name, value string) *Selector {
	return s.with(name, NotEquals(value))
}

// WithLabelMatches adds a regex matcher. An empty pattern adds nothing.
func (s *Selector) WithLabelMatches(name, pattern string) *Selector {
	return s.with(name, Matches(pattern))
}

// WithLabels adds all matchers in label name order. Matchers on labels the
// selector already matches are added next to the existing ones.
func (s *Selector) WithLabels(ls Labels) *Selector {
	names := make([]string, 0, len(ls))
	for name := range ls {
		names = append(names, name)
	}
	slices.Sort(names)

	sel := s
	for _, name := range names {
		sel = sel.with(name, ls[name])
	}
	return sel
}

// Over turns the selector into a range selector.
func (s *Selector) Over(window time.Duration) Range {
	return Range{sel: s, window: window}
}

// with appends a matcher. Several matchers on one label all apply.
func (s *Selector) with(name string, m Matcher) *Selector {
	if m.Type == labels.MatchRegexp && m.Value == "" {
		return s
	}

	matchers := make([]labelMatcher, 0, len(s.matchers)+1)
	matchers = append(matchers, s.matchers...)
	matchers = append(matchers, labelMatcher{name: name, Matcher: m})

	return newSelector(s.metric, matchers)
}

// String prints the selector. A metric name that is not a legacy identifier
// is printed quoted inside the braces.
func (s *Selector) String() string {
	parts := make([]string, 0, len(s.matchers)+1)
	metric := s.metric
	if metric != "" && !model.IsValidLegacyMetricName(metric) {
		parts = append(parts, strconv.Quote(metric))
		metric = ""
	}
	for _, m := range s.matchers {
		parts = append(parts, m.String())
	}

	if len(parts) == 0 {
		return metric
	}
	return metric + "{" + strings.Join(parts, ", ") + "}"
}

// Range is a range vector selector. It is only accepted by range functions.
type Range struct {
	sel    *Selector
	window time.Duration
}

func (r Range) String() string {
	return r.sel.String() + "[" + model.Duration(r.window).String() + "]"
}
