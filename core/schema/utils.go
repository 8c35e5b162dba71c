package schema

// Column returns the definition of the named column, or nil.
func (t *TableDefinition) Column(name string) *ColumnDefinition {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKey returns the primary key columns, from the column flag or from a
// primary index.
func (t *TableDefinition) PrimaryKey() []string {
	for _, col := range t.Columns {
		if col.PrimaryKey {
			return []string{col.Name}
		}
	}
	for _, index := range t.Indexes {
		if index.Type == IndexTypePrimary && len(index.Fields) > 0 {
			return index.Fields
		}
	}
	return nil
}
