package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Validator checks records against a table definition before they are
// written: required columns, unexpected keys, value types and enum values.
type Validator struct {
	table  *TableDefinition
	issues []Issue
}

// NewValidator creates a new Validator for a table. The returned validator can
// be reused for multiple records but is not safe for concurrent use.
func NewValidator(table *TableDefinition) *Validator {
	return &Validator{
		table:  table,
		issues: make([]Issue, 0),
	}
}

// Validate checks if a record conforms to the table. The loose flag ignores
// missing required columns, which lets defaults and generated keys apply.
func (v *Validator) Validate(data map[string]any, loose bool) (bool, []Issue) {
	v.issues = make([]Issue, 0)

	for _, col := range v.table.Columns {
		value, exists := data[col.Name]
		if !exists || value == nil {
			if col.Required && !loose && col.Default == nil && !v.generated(col) {
				v.addIssue("REQUIRED_FIELD_MISSING", fmt.Sprintf("Required field '%s' is missing", col.Name), col.Name)
			}
			continue
		}
		v.validateValue(value, col)
	}

	for key := range data {
		if v.table.Column(key) == nil {
			v.addIssue("UNEXPECTED_FIELD", fmt.Sprintf("Unexpected field '%s' not defined in table %s", key, v.table.Name), key)
		}
	}

	slices.SortFunc(v.issues, func(a, b Issue) int { return strings.Compare(a.Path, b.Path) })
	return len(v.issues) == 0, v.issues
}

func (v *Validator) generated(col ColumnDefinition) bool {
	return col.PrimaryKey && col.Type == ColumnTypeInteger
}

func (v *Validator) validateValue(value any, col ColumnDefinition) {
	switch col.Type {
	case ColumnTypeString:
		if _, ok := value.(string); !ok {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected string, got %T", value), col.Name)
		}
	case ColumnTypeEnum:
		s, ok := value.(string)
		if !ok {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected string, got %T", value), col.Name)
			return
		}
		if !slices.Contains(col.Values, s) {
			v.addIssue("INVALID_ENUM_VALUE", fmt.Sprintf("Value '%s' is not one of %s", s, strings.Join(col.Values, ", ")), col.Name)
		}
	case ColumnTypeInteger:
		if !isInteger(value) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected integer, got %T", value), col.Name)
		}
	case ColumnTypeNumber:
		if !isInteger(value) && !isFloat(value) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected number, got %T", value), col.Name)
		}
	case ColumnTypeBoolean:
		if _, ok := value.(bool); !ok {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected boolean, got %T", value), col.Name)
		}
	case ColumnTypeTimestamp:
		switch ts := value.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(time.RFC3339, ts); err != nil {
				v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected RFC3339 timestamp, got '%s'", ts), col.Name)
			}
		default:
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected timestamp, got %T", value), col.Name)
		}
	}
}

func (v *Validator) addIssue(code, message, path string) {
	v.issues = append(v.issues, Issue{Code: code, Message: message, Path: path})
}

func isInteger(value any) bool {
	switch n := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	case string:
		_, err := strconv.ParseInt(n, 10, 64)
		return err == nil
	}
	return false
}

func isFloat(value any) bool {
	switch value.(type) {
	case float32, float64:
		return true
	}
	return false
}
