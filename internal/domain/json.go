package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotEncodable indicates a value could not be represented as JSON.
var ErrNotEncodable = errors.New("value is not JSON-encodable")

// DecodeJSON decodes a single JSON document into generic values, keeping
// numbers as json.Number so they round-trip exactly.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// Normalize converts any JSON-encodable Go value into its generic JSON form
// (map[string]any, []any, string, json.Number, bool, nil).
func Normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEncodable, err)
	}
	out, err := DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEncodable, err)
	}
	return out, nil
}
