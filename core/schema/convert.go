package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Encode converts a struct into a Document through its JSON tags. Nested
// structs are kept as raw JSON. Times become RFC3339 strings, which the
// timestamp columns accept.
func Encode[T any](record T) (Document, error) {
	val := reflect.ValueOf(record)
	if !val.IsValid() {
		return nil, fmt.Errorf("record cannot be nil")
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("record cannot be a nil pointer")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record must be a struct, got %s", val.Kind())
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	doc := make(Document, len(raw))
	for key, msg := range raw {
		if len(msg) > 0 && msg[0] == '{' {
			doc[key] = msg
			continue
		}
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, fmt.Errorf("failed to decode field %s: %w", key, err)
		}
		doc[key] = v
	}
	return doc, nil
}

// Decode converts a Document into T, a struct or a pointer to a struct,
// through its JSON tags.
func Decode[T any](doc Document) (T, error) {
	var zero T
	if doc == nil {
		return zero, fmt.Errorf("document cannot be nil")
	}
	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("target must be a struct type, got %s", typ.Kind())
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal document: %w", err)
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return zero, fmt.Errorf("failed to decode document: %w", err)
	}
	return result, nil
}
