// SPDX-License-Identifier: GPL-3.0-or-later

package funcapi

import (
	"encoding/json"
	"fmt"
)

// FunctionResponse is a table response. A response with a status other
// than 200 carries only Message.
type FunctionResponse struct {
	Status            int
	Message           string
	Help              string
	Columns           map[string]any
	Data              [][]any
	DefaultSortColumn string
	RequiredParams    []ParamConfig
	Total             int
	Pending           int
}

func (r *FunctionResponse) MarshalJSON() ([]byte, error) {
	if r.Status != 200 {
		return json.Marshal(map[string]any{
			"status":       r.Status,
			"errorMessage": r.Message,
		})
	}

	params := make([]map[string]any, 0, len(r.RequiredParams))
	for _, p := range r.RequiredParams {
		params = append(params, p.RequiredParam())
	}
	data := r.Data
	if data == nil {
		data = [][]any{}
	}

	return json.Marshal(map[string]any{
		"status":              r.Status,
		"type":                "table",
		"has_history":         false,
		"help":                r.Help,
		"columns":             r.Columns,
		"data":                data,
		"default_sort_column": r.DefaultSortColumn,
		"required_params":     params,
		"total":               r.Total,
		"pending":             r.Pending,
	})
}

// ErrorResponse creates an error FunctionResponse.
func ErrorResponse(status int, format string, args ...any) *FunctionResponse {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &FunctionResponse{
		Status:  status,
		Message: msg,
	}
}

// NotFoundResponse returns a 404 response for unknown tables.
func NotFoundResponse(table string) *FunctionResponse {
	return &FunctionResponse{
		Status:  404,
		Message: "unknown table: " + table,
	}
}

// UnavailableResponse returns a 503 response when data is not yet available.
func UnavailableResponse(msg string) *FunctionResponse {
	return &FunctionResponse{
		Status:  503,
		Message: msg,
	}
}

// InternalErrorResponse returns a 500 response for internal errors.
func InternalErrorResponse(format string, args ...any) *FunctionResponse {
	return &FunctionResponse{
		Status:  500,
		Message: fmt.Sprintf(format, args...),
	}
}
