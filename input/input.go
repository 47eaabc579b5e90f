// Package input decodes request data into the map[string]any filters read
// their input from.
//
// Nested filters read a sub-map keyed by their name. FromValues builds
// those sub-maps from dotted keys, so "nested.min_age=21" decodes to
// {"nested": {"min_age": "21"}}.
package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/hugr-lab/sqlfilter/internal/msgpack"
)

// FromValues decodes query-string values.
//
// A key with a single value maps to that string; repeated keys map to
// []any of strings. A dotted key nests the value under its prefix. A key
// that is both a value and a prefix fails.
func FromValues(values url.Values) (map[string]any, error) {
	data := make(map[string]any, len(values))
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		var value any = vs[0]
		if len(vs) > 1 {
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			value = list
		}
		if err := set(data, strings.Split(key, "."), key, value); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func set(data map[string]any, path []string, key string, value any) error {
	if len(path) == 1 {
		if _, isMap := data[path[0]].(map[string]any); isMap {
			return fmt.Errorf("input key '%s' conflicts with nested keys", key)
		}
		data[path[0]] = value
		return nil
	}

	sub, ok := data[path[0]]
	if !ok {
		sub = make(map[string]any)
		data[path[0]] = sub
	}
	m, ok := sub.(map[string]any)
	if !ok {
		return fmt.Errorf("input key '%s' conflicts with value of '%s'", key, path[0])
	}
	return set(m, path[1:], key, value)
}

// FromJSON decodes a JSON object. Numbers decode as float64.
func FromJSON(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode JSON input: %w", err)
	}
	if result == nil {
		return map[string]any{}, nil
	}
	return result, nil
}

// FromMsgpack decodes a MessagePack map.
func FromMsgpack(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	result, err := msgpack.DecodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack input: %w", err)
	}
	return result, nil
}
