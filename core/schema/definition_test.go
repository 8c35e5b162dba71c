package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offerTable() TableDefinition {
	return TableDefinition{
		Name: "offer",
		Columns: []ColumnDefinition{
			{Name: "id", Type: ColumnTypeInteger, PrimaryKey: true},
			{Name: "name", Type: ColumnTypeString, Required: true},
			{Name: "validation", Type: ColumnTypeEnum, Required: true, Default: "DRAFT", Values: []string{"DRAFT", "PENDING", "APPROVED", "REJECTED"}},
			{Name: "isActive", Type: ColumnTypeBoolean, Required: true, Default: true},
			{Name: "venueId", Type: ColumnTypeInteger, Required: true, References: "venue.id"},
			{Name: "dateCreated", Type: ColumnTypeTimestamp},
			{Name: "price", Type: ColumnTypeNumber},
		},
		Indexes: []IndexDefinition{{Name: "idx_offer_venue", Fields: []string{"venueId"}, Type: IndexTypeNormal}},
	}
}

func TestTableDefinition_Validate(t *testing.T) {
	valid := offerTable()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*TableDefinition)
	}{
		{"missing name", func(td *TableDefinition) { td.Name = "" }},
		{"no columns", func(td *TableDefinition) { td.Columns = nil }},
		{"duplicate column", func(td *TableDefinition) { td.Columns = append(td.Columns, ColumnDefinition{Name: "name", Type: ColumnTypeString}) }},
		{"unknown type", func(td *TableDefinition) { td.Columns[1].Type = "blob" }},
		{"enum without values", func(td *TableDefinition) { td.Columns[2].Values = nil }},
		{"bad reference", func(td *TableDefinition) { td.Columns[4].References = "venue" }},
		{"two primary keys", func(td *TableDefinition) { td.Columns[4].PrimaryKey = true }},
		{"index on unknown column", func(td *TableDefinition) { td.Indexes[0].Fields = []string{"missing"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := offerTable()
			tt.mutate(&td)
			assert.ErrorIs(t, td.Validate(), ErrInvalidDefinition)
		})
	}
}

func TestTableDefinition_Lookups(t *testing.T) {
	td := offerTable()
	require.NotNil(t, td.Column("venueId"))
	assert.Equal(t, "venue.id", td.Column("venueId").References)
	assert.Nil(t, td.Column("missing"))
	assert.Equal(t, []string{"id"}, td.PrimaryKey())

	link := TableDefinition{
		Name:    "offer_criterion",
		Columns: []ColumnDefinition{{Name: "offerId", Type: ColumnTypeInteger}, {Name: "criterionId", Type: ColumnTypeInteger}},
		Indexes: []IndexDefinition{{Fields: []string{"offerId", "criterionId"}, Type: IndexTypePrimary}},
	}
	assert.Equal(t, []string{"offerId", "criterionId"}, link.PrimaryKey())
}

func TestValidator(t *testing.T) {
	td := offerTable()
	v := NewValidator(&td)

	ok, issues := v.Validate(map[string]any{"name": "Jazz", "venueId": 1, "dateCreated": "2024-05-01T10:00:00Z", "price": 12.5}, false)
	assert.True(t, ok)
	assert.Empty(t, issues)

	ok, issues = v.Validate(map[string]any{"validation": "LOST", "isActive": "yes", "color": "red", "price": "cheap"}, false)
	assert.False(t, ok)
	codes := map[string]string{}
	for _, issue := range issues {
		codes[issue.Path] = issue.Code
	}
	assert.Equal(t, map[string]string{
		"color":      "UNEXPECTED_FIELD",
		"isActive":   "TYPE_MISMATCH",
		"name":       "REQUIRED_FIELD_MISSING",
		"price":      "TYPE_MISMATCH",
		"validation": "INVALID_ENUM_VALUE",
		"venueId":    "REQUIRED_FIELD_MISSING",
	}, codes)

	ok, _ = v.Validate(map[string]any{"isActive": false}, true)
	assert.True(t, ok)
}
