package backoffice

import "github.com/asaidimu/backoffice-search/core/schema"

// OffererTable is the offerer table shared by every offer resource.
func OffererTable() schema.TableDefinition {
	return schema.TableDefinition{
		Name: "offerer",
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
			{Name: "name", Type: schema.ColumnTypeString, Required: true},
			{Name: "siren", Type: schema.ColumnTypeString, Unique: true},
			{Name: "isValidated", Type: schema.ColumnTypeBoolean, Required: true, Default: false},
			{Name: "isActive", Type: schema.ColumnTypeBoolean, Required: true, Default: true},
		},
	}
}

// VenueTable is the venue table shared by every offer resource.
func VenueTable() schema.TableDefinition {
	return schema.TableDefinition{
		Name: "venue",
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
			{Name: "name", Type: schema.ColumnTypeString, Required: true},
			{Name: "departementCode", Type: schema.ColumnTypeString},
			{Name: "managingOffererId", Type: schema.ColumnTypeInteger, Required: true, References: "offerer.id"},
			{Name: "isVirtual", Type: schema.ColumnTypeBoolean, Required: true, Default: false},
		},
		Indexes: []schema.IndexDefinition{
			{Name: "idx_venue_offerer", Fields: []string{"managingOffererId"}, Type: schema.IndexTypeNormal},
			{Name: "idx_venue_department", Fields: []string{"departementCode"}, Type: schema.IndexTypeNormal},
		},
	}
}
