// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/common/model"
	"github.com/tidwall/gjson"
)

// APIError is an error reported by the server in the response envelope.
type APIError struct {
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func parseAPIError(bs []byte) *APIError {
	if !gjson.ValidBytes(bs) {
		return nil
	}
	resp := gjson.ParseBytes(bs)
	if resp.Get("status").String() != "error" {
		return nil
	}
	return &APIError{
		Type:    resp.Get("errorType").String(),
		Message: resp.Get("error").String(),
	}
}

func decodeQueryResponse(body io.Reader) (model.Vector, error) {
	bs, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(bs) {
		return nil, errors.New("invalid JSON")
	}

	if apiErr := parseAPIError(bs); apiErr != nil {
		return nil, apiErr
	}

	resp := gjson.ParseBytes(bs)
	if status := resp.Get("status").String(); status != "success" {
		return nil, fmt.Errorf("unexpected status '%s'", status)
	}

	result := resp.Get("data.result")

	switch typ := resp.Get("data.resultType").String(); typ {
	case "vector":
		var vec model.Vector
		if err := json.Unmarshal([]byte(result.Raw), &vec); err != nil {
			return nil, fmt.Errorf("decode vector: %v", err)
		}
		return vec, nil
	case "scalar":
		var s model.Scalar
		if err := json.Unmarshal([]byte(result.Raw), &s); err != nil {
			return nil, fmt.Errorf("decode scalar: %v", err)
		}
		return model.Vector{{Metric: model.Metric{}, Value: s.Value, Timestamp: s.Timestamp}}, nil
	default:
		return nil, fmt.Errorf("unsupported result type '%s'", typ)
	}
}
