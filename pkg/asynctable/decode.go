// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/prometheus/common/model"
)

// SampleValueKey is the key under which DecodeSample exposes the sample value.
const SampleValueKey = "Value"

// DecodeSample decodes the labels of a sample and its value into a row struct.
// Fields are matched by their mapstructure tag, the value goes to the "Value" key.
func DecodeSample[T any](s model.Sample) (T, error) {
	var row T

	input := make(map[string]any, len(s.Metric)+1)
	for name, value := range s.Metric {
		input[string(name)] = string(value)
	}
	input[SampleValueKey] = float64(s.Value)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &row,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return row, err
	}
	if err := dec.Decode(input); err != nil {
		return row, fmt.Errorf("decode sample %s: %w", s.Metric, err)
	}
	return row, nil
}

// DecodeFilters decodes named filter values into a filters struct.
// Unknown filter names are an error.
func DecodeFilters[F any](values map[string]string) (F, error) {
	var filters F

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &filters,
		ErrorUnused: true,
	})
	if err != nil {
		return filters, err
	}
	if err := dec.Decode(values); err != nil {
		return filters, fmt.Errorf("decode filters: %w", err)
	}
	return filters, nil
}
