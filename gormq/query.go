// Package gormq adapts a GORM session to the composable query contract, so
// compiled searches can be applied to *gorm.DB chains.
package gormq

import (
	"context"
	"fmt"

	"github.com/asaidimu/backoffice-search/core/query"
	"github.com/asaidimu/backoffice-search/sqlgen"
	"gorm.io/gorm"
)

var _ query.Queryable[*Query] = (*Query)(nil)

// Query wraps a GORM session. Every method returns a new Query over the
// extended session; rendering errors are added to the session and surface
// when it executes.
type Query struct {
	db        *gorm.DB
	generator *sqlgen.Generator
}

// New wraps db, rendering fragments for the dialect of its dialector.
func New(db *gorm.DB) *Query {
	dialect, err := sqlgen.DialectFor(db.Dialector.Name())
	if err != nil {
		db.AddError(err)
		dialect = sqlgen.MySQL
	}
	return &Query{db: db, generator: sqlgen.NewGenerator(dialect)}
}

func (q *Query) with(db *gorm.DB) *Query {
	return &Query{db: db, generator: q.generator}
}

// Join adds a join clause.
func (q *Query) Join(join query.JoinConfiguration) *Query {
	clause, args, err := q.generator.JoinSQL(join)
	if err != nil {
		q.db.AddError(fmt.Errorf("gormq: %w", err))
		return q
	}
	return q.with(q.db.Joins(clause, args...))
}

// JoinSubquery adds a derived table join.
func (q *Query) JoinSubquery(sub query.SubqueryConfiguration) *Query {
	clause, args, err := q.generator.SubqueryJoinSQL(sub)
	if err != nil {
		q.db.AddError(fmt.Errorf("gormq: %w", err))
		return q
	}
	return q.with(q.db.Joins(clause, args...))
}

// Filter adds a WHERE condition. Zero filters are ignored.
func (q *Query) Filter(filter query.QueryFilter) *Query {
	if filter.IsZero() {
		return q
	}
	where, args, err := q.generator.WhereSQL(filter)
	if err != nil {
		q.db.AddError(fmt.Errorf("gormq: %w", err))
		return q
	}
	return q.with(q.db.Where(where, args...))
}

// DB returns the wrapped session.
func (q *Query) DB() *gorm.DB {
	return q.db
}

// Find runs the query into dest.
func (q *Query) Find(ctx context.Context, dest any) error {
	return q.db.WithContext(ctx).Find(dest).Error
}
