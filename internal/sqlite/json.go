package sqlite

import (
	"encoding/json"
	"fmt"
	"time"
)

// encodeMetadata serializes a metadata map to its TEXT column form.
// A nil map encodes as the empty object so reads always get a map back.
func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(b), nil
}

// decodeMetadata deserializes a metadata TEXT column.
func decodeMetadata(s string) (map[string]any, error) {
	if s == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// encodeFloats serializes a values payload to its TEXT column form.
func encodeFloats(v []float64) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding values: %w", err)
	}
	return string(b), nil
}

// decodeFloats deserializes a values TEXT column.
func decodeFloats(s string) ([]float64, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("decoding values: %w", err)
	}
	return v, nil
}

// parseTime parses a TEXT timestamp column.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
