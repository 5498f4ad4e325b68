// SPDX-License-Identifier: GPL-3.0-or-later

package funcapi

import "encoding/json"

// FieldType defines the column data type used for rendering and alignment.
type FieldType uint8

const (
	FieldTypeNone FieldType = iota
	FieldTypeInteger
	FieldTypeFloat
	FieldTypeString
	// FieldTypeDuration is paired with FieldTransformDuration.
	FieldTypeDuration
)

func (t FieldType) String() string {
	switch t {
	case FieldTypeInteger:
		return "integer"
	case FieldTypeFloat:
		return "float"
	case FieldTypeString:
		return "string"
	case FieldTypeDuration:
		return "duration"
	default:
		return "none"
	}
}

func (t FieldType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// FieldVisual defines how values are rendered in the UI.
type FieldVisual uint8

const (
	FieldVisualValue FieldVisual = iota
	FieldVisualBar
	FieldVisualPill
)

func (v FieldVisual) String() string {
	switch v {
	case FieldVisualBar:
		return "bar"
	case FieldVisualPill:
		return "pill"
	default:
		return "value"
	}
}

func (v FieldVisual) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// FieldTransform defines how raw values are formatted for display.
type FieldTransform uint8

const (
	FieldTransformNone FieldTransform = iota
	// FieldTransformNumber respects DecimalPoints.
	FieldTransformNumber
	FieldTransformDuration
	FieldTransformText
)

func (t FieldTransform) String() string {
	switch t {
	case FieldTransformNumber:
		return "number"
	case FieldTransformDuration:
		return "duration"
	case FieldTransformText:
		return "text"
	default:
		return "none"
	}
}

func (t FieldTransform) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// FieldSort defines the sort direction of a column.
type FieldSort uint8

const (
	FieldSortAscending FieldSort = iota
	FieldSortDescending
)

func (s FieldSort) String() string {
	switch s {
	case FieldSortDescending:
		return "descending"
	default:
		return "ascending"
	}
}

func (s FieldSort) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// FieldSummary defines aggregation behavior when grouping rows.
type FieldSummary uint8

const (
	FieldSummaryCount FieldSummary = iota
	FieldSummaryUniqueCount
	FieldSummarySum
	FieldSummaryMax
)

func (s FieldSummary) String() string {
	switch s {
	case FieldSummaryUniqueCount:
		return "uniqueCount"
	case FieldSummarySum:
		return "sum"
	case FieldSummaryMax:
		return "max"
	default:
		return "count"
	}
}

func (s FieldSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// FieldFilter defines the filter UI type for a column.
type FieldFilter uint8

const (
	FieldFilterNone FieldFilter = iota
	FieldFilterRange
	FieldFilterMultiselect
)

func (f FieldFilter) String() string {
	switch f {
	case FieldFilterRange:
		return "range"
	case FieldFilterMultiselect:
		return "multiselect"
	default:
		return "none"
	}
}

func (f FieldFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}
