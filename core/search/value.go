package search

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/asaidimu/backoffice-search/core/query"
)

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04",
	time.DateTime,
	"02/01/2006",
}

// values flattens a raw row value into its non-blank elements.
func values(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []any{s}
		}
		return nil
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, values(item)...)
		}
		return out
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, values(item)...)
		}
		return out
	case []int:
		return toAny(v)
	case []int64:
		return toAny(v)
	case []float64:
		return toAny(v)
	case []bool:
		return toAny(v)
	default:
		return []any{v}
	}
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// coerce converts values to the Go type of kind, dropping the ones that do
// not have a valid shape.
func (c *Compiler) coerce(kind FieldKind, in []any) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		if coerced, ok := c.coerceOne(kind, v); ok {
			out = append(out, coerced)
		}
	}
	return out
}

func (c *Compiler) coerceOne(kind FieldKind, v any) (any, bool) {
	switch kind {
	case KindString, KindEnum, KindComputed:
		s := strings.TrimSpace(stringOf(v))
		return s, s != ""
	case KindInteger:
		return query.ToInt64(v)
	case KindNumber:
		return query.ToFloat64(v)
	case KindBoolean:
		return ParseBool(v)
	case KindDate:
		return c.parseDate(v)
	case KindRelation, KindCollection:
		if i, ok := query.ToInt64(v); ok {
			return i, true
		}
		s := strings.TrimSpace(stringOf(v))
		return s, s != ""
	}
	return nil, false
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// parseDate returns the start of the day of v in the compiler location.
func (c *Compiler) parseDate(v any) (time.Time, bool) {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d.In(c.location)
	case string:
		s := strings.TrimSpace(d)
		parsed := false
		for _, layout := range dateLayouts {
			if p, err := time.ParseInLocation(layout, s, c.location); err == nil {
				t, parsed = p.In(c.location), true
				break
			}
		}
		if !parsed {
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.location), true
}

// ParseBool reads form-style booleans.
func ParseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "on", "yes", "y", "oui":
			return true, true
		case "false", "0", "off", "no", "n", "non":
			return false, true
		}
	case float64:
		return b != 0, b == 0 || b == 1
	case int:
		return b != 0, b == 0 || b == 1
	case int64:
		return b != 0, b == 0 || b == 1
	}
	return false, false
}

// filterChoices keeps the values listed in choices.
func filterChoices(in []any, choices []string) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		if slices.Contains(choices, stringOf(v)) {
			out = append(out, v)
		}
	}
	return out
}

// shape returns the value handed to custom predicates: the whole list for list
// operators, a scalar when a single value remains.
func shape(op Operator, vals []any) any {
	if op.IsList() || len(vals) != 1 {
		return vals
	}
	return vals[0]
}
