// SPDX-License-Identifier: GPL-3.0-or-later

package promql

import (
	"regexp"
	"strings"
)

// AnyOf returns a regex alternation matching exactly one of the values.
// Duplicates are dropped; no values yields an empty pattern.
func AnyOf(values ...string) string {
	seen := make(map[string]bool, len(values))
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		parts = append(parts, regexp.QuoteMeta(v))
	}
	return strings.Join(parts, "|")
}

// Contains returns a pattern matching any value containing s.
func Contains(s string) string {
	if s == "" {
		return ""
	}
	return ".*" + regexp.QuoteMeta(s) + ".*"
}

// Prefix returns a pattern matching any value starting with s.
func Prefix(s string) string {
	if s == "" {
		return ""
	}
	return regexp.QuoteMeta(s) + ".*"
}
