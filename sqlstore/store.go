// Package sqlstore runs backoffice queries against a database/sql connection.
// It renders query DSL structures with sqlgen, creates tables from schema
// definitions and decodes rows into documents. SQLite (mattn/go-sqlite3) and
// PostgreSQL (pgx stdlib) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/asaidimu/backoffice-search/core/query"
	"github.com/asaidimu/backoffice-search/core/schema"
	"github.com/asaidimu/backoffice-search/sqlgen"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrNotInTransaction is returned by Commit and Rollback outside a transaction.
var ErrNotInTransaction = errors.New("not in a transactional context")

// dbRunner abstracts the common methods of *sql.DB and *sql.Tx so the same
// code serves transactional and non-transactional operations.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options configures table creation.
type Options struct {
	IfNotExists   bool // Use CREATE TABLE IF NOT EXISTS.
	CreateIndexes bool // Create the indexes declared by table definitions.
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		IfNotExists:   true,
		CreateIndexes: true,
	}
}

// Store executes queries for one dialect. A Store created by StartTransaction
// runs every statement inside that transaction.
type Store struct {
	db        *sql.DB
	tx        *sql.Tx
	dialect   sqlgen.Dialect
	generator *sqlgen.Generator
	logger    *zap.Logger
	options   *Options
	tables    *registry
}

// registry remembers table definitions so rows can be decoded by column type.
type registry struct {
	mu     sync.RWMutex
	tables map[string]*schema.TableDefinition
}

func (r *registry) get(name string) *schema.TableDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tables[name]
}

func (r *registry) put(td schema.TableDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[td.Name] = &td
}

// Open connects to a database with a database/sql driver name ("sqlite3" or
// "pgx") and pings it.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	dialect, err := sqlgen.DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if dialect.Name == sqlgen.SQLite.Name {
		// In-memory databases are per connection.
		db.SetMaxOpenConns(1)
	}
	return New(db, dialect, logger, nil), nil
}

// New wraps an open connection pool.
func New(db *sql.DB, dialect sqlgen.Dialect, logger *zap.Logger, options *Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}
	return &Store{
		db:        db,
		dialect:   dialect,
		generator: sqlgen.NewGenerator(dialect),
		logger:    logger,
		options:   options,
		tables:    &registry{tables: map[string]*schema.TableDefinition{}},
	}
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() sqlgen.Dialect {
	return s.dialect
}

// Generator returns the SQL generator bound to the store's dialect.
func (s *Store) Generator() *sqlgen.Generator {
	return s.generator
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Register records a table definition used to decode rows of that table
// without creating it.
func (s *Store) Register(tables ...schema.TableDefinition) {
	for _, td := range tables {
		s.tables.put(td)
	}
}

func (s *Store) runner() dbRunner {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Select runs a SELECT built from dsl and returns the rows as documents.
func (s *Store) Select(ctx context.Context, dsl *query.QueryDSL) ([]schema.Document, error) {
	sqlQuery, params, err := s.generator.GenerateSelectSQL(dsl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SQL query: %w", err)
	}

	s.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery), zap.Any("params", params))

	rows, err := s.runner().QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		s.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()
	return readRows(s.logger, s.tables.get(dsl.Table), rows)
}

// SelectAs runs a SELECT built from dsl and decodes the rows into T.
func SelectAs[T any](ctx context.Context, s *Store, dsl *query.QueryDSL) ([]T, error) {
	docs, err := s.Select(ctx, dsl)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := schema.Decode[T](doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", dsl.Table, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Insert validates and inserts records into a registered table, returning
// the stored rows.
func (s *Store) Insert(ctx context.Context, table string, records ...map[string]any) ([]schema.Document, error) {
	if len(records) == 0 {
		return []schema.Document{}, nil
	}
	td := s.tables.get(table)
	if td == nil {
		return nil, fmt.Errorf("table %s is not registered", table)
	}

	validator := schema.NewValidator(td)
	results := make([]schema.Document, 0, len(records))
	for _, record := range records {
		if ok, issues := validator.Validate(record, false); !ok {
			return nil, fmt.Errorf("invalid %s record: %s", table, issues[0].Message)
		}

		columns := make([]string, 0, len(record))
		values := make([]any, 0, len(record))
		for _, col := range td.Columns {
			v, ok := record[col.Name]
			if !ok {
				continue
			}
			columns = append(columns, s.dialect.Quote(col.Name))
			values = append(values, bindValue(col, v))
		}

		var (
			sqlQuery string
			params   []any
			err      error
		)
		if len(columns) == 0 {
			sqlQuery = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", s.dialect.Quote(table))
		} else {
			sqlQuery, params, err = sq.Insert(s.dialect.Quote(table)).
				Columns(columns...).
				Values(values...).
				Suffix("RETURNING *").
				PlaceholderFormat(s.dialect.Placeholder).
				ToSql()
			if err != nil {
				return nil, fmt.Errorf("failed to generate INSERT SQL: %w", err)
			}
		}

		s.logger.Debug("Executing SQL INSERT with RETURNING clause", zap.String("sql", sqlQuery), zap.Any("params", params))

		rows, err := s.runner().QueryContext(ctx, sqlQuery, params...)
		if err != nil {
			s.logger.Error("Failed to execute INSERT ... RETURNING query", zap.Error(err), zap.String("sql", sqlQuery))
			return nil, fmt.Errorf("failed to execute INSERT ... RETURNING query: %w", err)
		}
		docs, err := readRows(s.logger, td, rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		results = append(results, docs...)
	}
	return results, nil
}

// Exec runs a statement written with "?" placeholders, rewritten for the
// store's dialect.
func (s *Store) Exec(ctx context.Context, statement string, args ...any) (int64, error) {
	statement, err := s.dialect.Placeholder.ReplacePlaceholders(statement)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("Executing SQL statement", zap.String("sql", statement), zap.Any("params", args))
	result, err := s.runner().ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute statement: %w", err)
	}
	return result.RowsAffected()
}

// StartTransaction begins a transaction and returns a Store scoped to it.
func (s *Store) StartTransaction(ctx context.Context) (*Store, error) {
	if s.tx != nil {
		return nil, errors.New("cannot start a new transaction from an existing transactional store")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.logger.Debug("Transaction initiated, returning new transactional store")
	scoped := *s
	scoped.tx = tx
	return &scoped, nil
}

// Commit commits the current transaction.
func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("commit not applicable: %w", ErrNotInTransaction)
	}
	s.logger.Debug("Committing transaction")
	return s.tx.Commit()
}

// Rollback rolls back the current transaction.
func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("rollback not applicable: %w", ErrNotInTransaction)
	}
	s.logger.Debug("Rolling back transaction")
	return s.tx.Rollback()
}

// Transact runs fn in a transaction, committing when it returns nil and
// rolling back otherwise.
func (s *Store) Transact(ctx context.Context, fn func(tx *Store) error) (err error) {
	tx, err := s.StartTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit(ctx)
}

// Close closes the connection pool. It is a no-op on transactional stores.
func (s *Store) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.db.Close()
}
