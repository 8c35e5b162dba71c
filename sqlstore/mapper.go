package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/asaidimu/backoffice-search/core/schema"
	"github.com/asaidimu/backoffice-search/sqlgen"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// CreateTable creates a table and its indexes inside a transaction and
// registers the definition for row decoding.
func (s *Store) CreateTable(ctx context.Context, td schema.TableDefinition) error {
	if err := td.Validate(); err != nil {
		return err
	}
	statements, err := s.CreateTableSQL(td)
	if err != nil {
		return fmt.Errorf("failed to generate SQL for table %s: %w", td.Name, err)
	}

	run := func(tx *Store) error {
		for _, stmt := range statements {
			s.logger.Debug("Executing DDL", zap.String("sql", stmt))
			if _, err := tx.runner().ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
			}
		}
		return nil
	}
	if s.tx != nil {
		err = run(s)
	} else {
		err = s.Transact(ctx, run)
	}
	if err != nil {
		return err
	}
	s.tables.put(td)
	return nil
}

// CreateTableSQL generates the CREATE TABLE statement followed by one
// CREATE INDEX statement per declared index when index creation is enabled.
func (s *Store) CreateTableSQL(td schema.TableDefinition) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if s.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(s.dialect.Quote(td.Name) + " (\n")

	var primaryKeys []string
	for _, index := range td.Indexes {
		if index.Type == schema.IndexTypePrimary && len(index.Fields) > 0 {
			primaryKeys = index.Fields
			break
		}
	}

	columns := make([]string, 0, len(td.Columns)+1)
	for _, col := range td.Columns {
		def, err := s.buildColumnDefinition(col)
		if err != nil {
			return nil, fmt.Errorf("error on column '%s': %w", col.Name, err)
		}
		columns = append(columns, "    "+def)
	}
	if len(primaryKeys) > 0 {
		quoted := make([]string, len(primaryKeys))
		for i, pk := range primaryKeys {
			quoted[i] = s.dialect.Quote(pk)
		}
		columns = append(columns, "    PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}
	sb.WriteString(strings.Join(columns, ",\n"))
	sb.WriteString("\n);")

	statements := []string{sb.String()}
	if s.options.CreateIndexes {
		for _, index := range td.Indexes {
			stmt := s.CreateIndexSQL(td.Name, index)
			if stmt != "" {
				statements = append(statements, stmt)
			}
		}
	}
	return statements, nil
}

func (s *Store) buildColumnDefinition(col schema.ColumnDefinition) (string, error) {
	parts := []string{s.dialect.Quote(col.Name), s.columnType(col)}

	if col.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
		if col.Type == schema.ColumnTypeInteger && s.dialect.Name == sqlgen.Postgres.Name {
			parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY")
		}
	}
	if col.Required && !col.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		def, err := s.formatDefaultValue(col.Default, col.Type)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+def)
	}
	if col.Unique {
		parts = append(parts, "UNIQUE")
	}
	if col.Type == schema.ColumnTypeEnum && len(col.Values) > 0 {
		values := make([]string, len(col.Values))
		for i, v := range col.Values {
			values[i], _ = s.formatDefaultValue(v, schema.ColumnTypeString)
		}
		parts = append(parts, fmt.Sprintf("CHECK(%s IN (%s))", s.dialect.Quote(col.Name), strings.Join(values, ", ")))
	}
	if col.References != "" {
		table, column, _ := strings.Cut(col.References, ".")
		parts = append(parts, fmt.Sprintf("REFERENCES %s(%s)", s.dialect.Quote(table), s.dialect.Quote(column)))
	}
	return strings.Join(parts, " "), nil
}

// columnType maps a column type to the dialect's SQL type. SQLite declares
// BOOLEAN and TIMESTAMP so the driver converts those values on read.
func (s *Store) columnType(col schema.ColumnDefinition) string {
	postgres := s.dialect.Name == sqlgen.Postgres.Name
	switch col.Type {
	case schema.ColumnTypeString, schema.ColumnTypeEnum:
		return "TEXT"
	case schema.ColumnTypeInteger:
		if postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case schema.ColumnTypeNumber:
		if postgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case schema.ColumnTypeBoolean:
		return "BOOLEAN"
	case schema.ColumnTypeTimestamp:
		if postgres {
			return "TIMESTAMPTZ"
		}
		return "TIMESTAMP"
	}
	return "TEXT"
}

func (s *Store) formatDefaultValue(value any, columnType schema.ColumnType) (string, error) {
	if value == nil {
		return "NULL", nil
	}
	switch columnType {
	case schema.ColumnTypeString, schema.ColumnTypeEnum, schema.ColumnTypeTimestamp:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(fmt.Sprintf("%v", value), "'", "''")), nil
	case schema.ColumnTypeNumber, schema.ColumnTypeInteger:
		return fmt.Sprintf("%v", value), nil
	case schema.ColumnTypeBoolean:
		b, _ := value.(bool)
		switch {
		case s.dialect.Name == sqlgen.Postgres.Name && b:
			return "TRUE", nil
		case s.dialect.Name == sqlgen.Postgres.Name:
			return "FALSE", nil
		case b:
			return "1", nil
		}
		return "0", nil
	}
	return "", fmt.Errorf("unsupported type for default value: %s", columnType)
}

// CreateIndexSQL generates the CREATE INDEX statement for an index. Primary
// indexes are part of the table definition and yield an empty string.
func (s *Store) CreateIndexSQL(table string, index schema.IndexDefinition) string {
	if index.Type == schema.IndexTypePrimary {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("CREATE ")
	if index.Type == schema.IndexTypeUnique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX IF NOT EXISTS ")
	name := index.Name
	if name == "" {
		name = fmt.Sprintf("idx_%s_%s", table, strings.Join(index.Fields, "_"))
	}
	sb.WriteString(s.dialect.Quote(name))
	sb.WriteString(fmt.Sprintf(" ON %s (", s.dialect.Quote(table)))

	fields := make([]string, len(index.Fields))
	for i, field := range index.Fields {
		fields[i] = s.dialect.Quote(field)
		if index.Order != nil && strings.EqualFold(*index.Order, "desc") {
			fields[i] += " DESC"
		}
	}
	sb.WriteString(strings.Join(fields, ", ") + ");")
	return sb.String()
}

// DropTable drops a table if it exists.
func (s *Store) DropTable(ctx context.Context, table string) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s;", s.dialect.Quote(table))
	if _, err := s.runner().ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// TableExists reports whether a table exists.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	var b sq.SelectBuilder
	if s.dialect.Name == sqlgen.Postgres.Name {
		b = sq.Select("table_name").From("information_schema.tables").
			Where(sq.Eq{"table_name": table}).Where("table_schema = current_schema()")
	} else {
		b = sq.Select("name").From("sqlite_master").Where(sq.Eq{"type": "table", "name": table})
	}
	stmt, args, err := b.PlaceholderFormat(s.dialect.Placeholder).ToSql()
	if err != nil {
		return false, err
	}

	var name string
	if err := s.runner().QueryRowContext(ctx, stmt, args...).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// bindValue converts RFC3339 strings of timestamp columns to time.Time so
// stored values compare consistently with bound date parameters. Integral
// floats of integer columns are bound as integers.
func bindValue(col schema.ColumnDefinition, v any) any {
	if col.Type == schema.ColumnTypeInteger {
		// JSON numbers decoded from structs.
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return int64(f)
		}
		return v
	}
	if col.Type != schema.ColumnTypeTimestamp {
		return v
	}
	if str, ok := v.(string); ok {
		if ts, err := time.Parse(time.RFC3339, str); err == nil {
			return ts.UTC()
		}
	}
	if ts, ok := v.(time.Time); ok {
		return ts.UTC()
	}
	return v
}

// readRows reads all rows into documents, converting values according to the
// table definition when one is known.
func readRows(logger *zap.Logger, td *schema.TableDefinition, rows *sql.Rows) ([]schema.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]schema.Document, 0)
	for rows.Next() {
		row := make(schema.Document, len(columns))
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, name := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			if val == nil || td == nil {
				row[name] = val
				continue
			}
			col := td.Column(name)
			if col == nil {
				logger.Debug("Column not found in table definition, using raw value", zap.String("column", name))
				row[name] = val
				continue
			}
			row[name] = decodeValue(col.Type, val)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func decodeValue(t schema.ColumnType, val any) any {
	switch t {
	case schema.ColumnTypeBoolean:
		if n, ok := val.(int64); ok {
			return n != 0
		}
	case schema.ColumnTypeInteger:
		if f, ok := val.(float64); ok {
			return int64(f)
		}
	case schema.ColumnTypeNumber:
		if n, ok := val.(int64); ok {
			return float64(n)
		}
	case schema.ColumnTypeTimestamp:
		if str, ok := val.(string); ok {
			return parseTimestamp(str)
		}
	}
	return val
}

// parseTimestamp parses the layouts SQLite stores timestamps in. Unparseable
// strings are returned as is.
func parseTimestamp(str string) any {
	for _, layout := range append([]string{time.RFC3339Nano}, sqlite3.SQLiteTimestampFormats...) {
		if ts, err := time.Parse(layout, str); err == nil {
			return ts
		}
	}
	return str
}
