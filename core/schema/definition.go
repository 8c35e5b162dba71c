// Package schema describes the relational tables searched by the backoffice:
// columns, keys and indexes. The store turns these definitions into DDL and
// uses them to validate records before insertion.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ColumnType represents the column types supported by the schema system.
type ColumnType string

const (
	ColumnTypeString    ColumnType = "string"    // Text data
	ColumnTypeInteger   ColumnType = "integer"   // Whole numbers
	ColumnTypeNumber    ColumnType = "number"    // Decimal numbers
	ColumnTypeBoolean   ColumnType = "boolean"   // True/false values
	ColumnTypeEnum      ColumnType = "enum"      // One out of a set of pre-defined items
	ColumnTypeTimestamp ColumnType = "timestamp" // Date and time
)

// IndexType represents index types for optimizing different query patterns.
type IndexType string

const (
	IndexTypeNormal  IndexType = "normal"  // General-purpose index
	IndexTypeUnique  IndexType = "unique"  // Unique index
	IndexTypePrimary IndexType = "primary" // Primary key index (implies unique)
)

// ColumnDefinition describes one column of a table.
type ColumnDefinition struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
	// Required adds a NOT NULL constraint.
	Required bool `json:"required,omitempty"`
	// PrimaryKey marks a single-column primary key. Integer primary keys are
	// generated by the database when omitted on insert.
	PrimaryKey bool `json:"primaryKey,omitempty"`
	Unique     bool `json:"unique,omitempty"`
	// Default provides a default value for the column.
	Default any `json:"default,omitempty"`
	// Values specifies the allowed values for an enum column.
	Values []string `json:"values,omitempty"`
	// References is a foreign key in "table.column" form.
	References  string  `json:"references,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IndexDefinition describes an index on a table.
type IndexDefinition struct {
	Name   string    `json:"name"`
	Fields []string  `json:"fields"`
	Type   IndexType `json:"type"`
	Order  *string   `json:"order,omitempty"` // "asc" | "desc"
}

// TableDefinition describes a table. Columns keep their declaration order,
// which is the column order of the generated DDL.
type TableDefinition struct {
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Columns     []ColumnDefinition `json:"columns"`
	Indexes     []IndexDefinition  `json:"indexes,omitempty"`
}

// ErrInvalidDefinition is returned by Validate for malformed table definitions.
var ErrInvalidDefinition = errors.New("invalid table definition")

// Validate checks that the definition can be turned into DDL.
func (t *TableDefinition) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: missing table name", ErrInvalidDefinition)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: table %s has no columns", ErrInvalidDefinition, t.Name)
	}

	seen := make(map[string]bool, len(t.Columns))
	primaryKeys := 0
	for _, col := range t.Columns {
		if col.Name == "" {
			return fmt.Errorf("%w: table %s has an unnamed column", ErrInvalidDefinition, t.Name)
		}
		if seen[col.Name] {
			return fmt.Errorf("%w: duplicate column %s.%s", ErrInvalidDefinition, t.Name, col.Name)
		}
		seen[col.Name] = true
		switch col.Type {
		case ColumnTypeString, ColumnTypeInteger, ColumnTypeNumber, ColumnTypeBoolean, ColumnTypeTimestamp:
		case ColumnTypeEnum:
			if len(col.Values) == 0 {
				return fmt.Errorf("%w: enum column %s.%s has no values", ErrInvalidDefinition, t.Name, col.Name)
			}
		default:
			return fmt.Errorf("%w: column %s.%s has unknown type %q", ErrInvalidDefinition, t.Name, col.Name, col.Type)
		}
		if col.PrimaryKey {
			primaryKeys++
		}
		if col.References != "" && !strings.Contains(col.References, ".") {
			return fmt.Errorf("%w: reference %q of %s.%s is not table.column", ErrInvalidDefinition, col.References, t.Name, col.Name)
		}
	}
	if primaryKeys > 1 {
		return fmt.Errorf("%w: table %s declares %d primary key columns, use a primary index", ErrInvalidDefinition, t.Name, primaryKeys)
	}

	for _, index := range t.Indexes {
		if len(index.Fields) == 0 {
			return fmt.Errorf("%w: index %q of %s has no fields", ErrInvalidDefinition, index.Name, t.Name)
		}
		if index.Type == IndexTypePrimary && primaryKeys > 0 {
			return fmt.Errorf("%w: table %s declares both a primary key column and a primary index", ErrInvalidDefinition, t.Name)
		}
		for _, field := range index.Fields {
			if !seen[field] {
				return fmt.Errorf("%w: index %q of %s references unknown column %s", ErrInvalidDefinition, index.Name, t.Name, field)
			}
		}
	}
	return nil
}

// Issue is a single validation problem found in a record.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Document is a record read from or written to a table.
type Document map[string]any
