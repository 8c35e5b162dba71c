package sqlgen

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/asaidimu/backoffice-search/core/query"
)

// ErrInvalidQuery is returned for DSL structures that cannot be rendered.
var ErrInvalidQuery = errors.New("invalid query")

var _ query.QueryGenerator = (*Generator)(nil)

var binaryOperators = map[query.ComparisonOperator]string{
	query.ComparisonOperatorEq:  "=",
	query.ComparisonOperatorNeq: "<>",
	query.ComparisonOperatorLt:  "<",
	query.ComparisonOperatorLte: "<=",
	query.ComparisonOperatorGt:  ">",
	query.ComparisonOperatorGte: ">=",
}

// Generator renders QueryDSL structures for one dialect.
type Generator struct {
	dialect Dialect
}

// NewGenerator creates a generator for dialect.
func NewGenerator(dialect Dialect) *Generator {
	return &Generator{dialect: dialect}
}

// Dialect returns the dialect the generator renders for.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// Quote quotes an identifier for the generator's dialect.
func (g *Generator) Quote(ident string) string {
	return g.dialect.Quote(ident)
}

// GenerateSelectSQL renders a complete SELECT statement with the dialect's
// placeholders.
func (g *Generator) GenerateSelectSQL(dsl *query.QueryDSL) (string, []any, error) {
	if dsl == nil || dsl.Table == "" {
		return "", nil, fmt.Errorf("%w: table name is required", ErrInvalidQuery)
	}

	b := sq.Select(g.columns(dsl)...).
		From(g.Quote(dsl.Table)).
		PlaceholderFormat(g.dialect.Placeholder)
	if dsl.Distinct {
		b = b.Distinct()
	}

	for _, join := range dsl.Joins {
		clause, args, err := g.JoinSQL(join)
		if err != nil {
			return "", nil, err
		}
		b = b.JoinClause(clause, args...)
	}
	for _, sub := range dsl.Subqueries {
		clause, args, err := g.SubqueryJoinSQL(sub)
		if err != nil {
			return "", nil, err
		}
		b = b.JoinClause(clause, args...)
	}

	if dsl.Filters != nil && !dsl.Filters.IsZero() {
		where, err := g.sqlizer(*dsl.Filters)
		if err != nil {
			return "", nil, err
		}
		b = b.Where(where)
	}

	for _, s := range dsl.Sort {
		dir := "ASC"
		switch strings.ToLower(string(s.Direction)) {
		case "", "asc":
		case "desc":
			dir = "DESC"
		default:
			return "", nil, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidQuery, s.Direction)
		}
		b = b.OrderBy(g.Quote(s.Field) + " " + dir)
	}

	if p := dsl.Pagination; p != nil {
		if p.Limit > 0 {
			b = b.Limit(uint64(p.Limit))
		}
		if p.Offset != nil && *p.Offset > 0 {
			b = b.Offset(uint64(*p.Offset))
		}
	}

	return b.ToSql()
}

func (g *Generator) columns(dsl *query.QueryDSL) []string {
	if dsl.Projection == nil || len(dsl.Projection.Include) == 0 {
		return []string{g.Quote(dsl.Table) + ".*"}
	}
	cols := make([]string, 0, len(dsl.Projection.Include))
	for _, f := range dsl.Projection.Include {
		col := g.Quote(f.Name)
		if f.Alias != "" {
			col += " AS " + g.Quote(f.Alias)
		}
		cols = append(cols, col)
	}
	return cols
}

// WhereSQL renders a filter as a boolean expression with "?" placeholders.
func (g *Generator) WhereSQL(filter query.QueryFilter) (string, []any, error) {
	s, err := g.sqlizer(filter)
	if err != nil {
		return "", nil, err
	}
	return s.ToSql()
}

// JoinSQL renders a join clause, e.g. INNER JOIN "venue" ON ..., with "?"
// placeholders.
func (g *Generator) JoinSQL(join query.JoinConfiguration) (string, []any, error) {
	if join.TargetTable == "" {
		return "", nil, fmt.Errorf("%w: join target table is required", ErrInvalidQuery)
	}
	keyword, err := joinKeyword(join.Type)
	if err != nil {
		return "", nil, err
	}
	target := g.Quote(join.TargetTable)
	if join.Alias != "" {
		target += " AS " + g.Quote(join.Alias)
	}
	on, args, err := g.WhereSQL(join.On)
	if err != nil {
		return "", nil, fmt.Errorf("join %s: %w", join.TargetTable, err)
	}
	return fmt.Sprintf("%s %s ON %s", keyword, target, on), args, nil
}

// SubqueryJoinSQL renders a derived table join:
// JOIN (SELECT ... FROM t WHERE ... GROUP BY ...) AS alias ON ...
func (g *Generator) SubqueryJoinSQL(sub query.SubqueryConfiguration) (string, []any, error) {
	if sub.Table == "" || sub.Alias == "" {
		return "", nil, fmt.Errorf("%w: subquery table and alias are required", ErrInvalidQuery)
	}
	keyword, err := joinKeyword(sub.Type)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, 0, len(sub.Columns)+len(sub.Aggregations))
	for _, c := range sub.Columns {
		cols = append(cols, g.Quote(c))
	}
	for _, agg := range sub.Aggregations {
		col, err := g.aggregation(agg)
		if err != nil {
			return "", nil, err
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}

	inner := sq.Select(cols...).From(g.Quote(sub.Table)).PlaceholderFormat(sq.Question)
	if sub.Where != nil && !sub.Where.IsZero() {
		where, err := g.sqlizer(*sub.Where)
		if err != nil {
			return "", nil, fmt.Errorf("subquery %s: %w", sub.Alias, err)
		}
		inner = inner.Where(where)
	}
	if len(sub.GroupBy) > 0 {
		groups := make([]string, len(sub.GroupBy))
		for i, grp := range sub.GroupBy {
			groups[i] = g.Quote(grp)
		}
		inner = inner.GroupBy(groups...)
	}
	innerSQL, args, err := inner.ToSql()
	if err != nil {
		return "", nil, err
	}

	on, onArgs, err := g.WhereSQL(sub.On)
	if err != nil {
		return "", nil, fmt.Errorf("subquery %s: %w", sub.Alias, err)
	}
	return fmt.Sprintf("%s (%s) AS %s ON %s", keyword, innerSQL, g.Quote(sub.Alias), on), append(args, onArgs...), nil
}

func (g *Generator) aggregation(agg query.AggregationConfiguration) (string, error) {
	var fn string
	switch agg.Type {
	case query.AggregationTypeCount:
		fn = "COUNT"
	case query.AggregationTypeSum:
		fn = "SUM"
	case query.AggregationTypeAvg:
		fn = "AVG"
	case query.AggregationTypeMin:
		fn = "MIN"
	case query.AggregationTypeMax:
		fn = "MAX"
	default:
		return "", fmt.Errorf("%w: unknown aggregation %q", ErrInvalidQuery, agg.Type)
	}
	field := "*"
	if agg.Field != "" && agg.Field != "*" {
		field = g.Quote(agg.Field)
	}
	expr := fmt.Sprintf("%s(%s)", fn, field)
	if agg.Alias != "" {
		expr += " AS " + g.Quote(agg.Alias)
	}
	return expr, nil
}

func joinKeyword(t query.JoinType) (string, error) {
	switch t {
	case "", query.JoinTypeInner:
		return "INNER JOIN", nil
	case query.JoinTypeLeft:
		return "LEFT JOIN", nil
	}
	return "", fmt.Errorf("%w: unknown join type %q", ErrInvalidQuery, t)
}

func (g *Generator) sqlizer(f query.QueryFilter) (sq.Sqlizer, error) {
	switch {
	case f.Condition != nil:
		return g.condition(*f.Condition)
	case f.Group != nil:
		return g.group(*f.Group)
	case f.Exists != nil:
		return g.exists(*f.Exists)
	}
	return nil, fmt.Errorf("%w: empty filter", ErrInvalidQuery)
}

func (g *Generator) group(grp query.FilterGroup) (sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(grp.Conditions))
	for _, child := range grp.Conditions {
		if child.IsZero() {
			continue
		}
		s, err := g.sqlizer(child)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}

	switch grp.Operator {
	case query.LogicalOperatorAnd:
		return sq.And(parts), nil
	case query.LogicalOperatorOr:
		return sq.Or(parts), nil
	case query.LogicalOperatorNot:
		inner, args, err := sq.And(parts).ToSql()
		if err != nil {
			return nil, err
		}
		return sq.Expr("NOT "+inner, args...), nil
	}
	return nil, fmt.Errorf("%w: unknown logical operator %q", ErrInvalidQuery, grp.Operator)
}

func (g *Generator) exists(e query.ExistsFilter) (sq.Sqlizer, error) {
	if e.Table == "" {
		return nil, fmt.Errorf("%w: exists table is required", ErrInvalidQuery)
	}
	from := g.Quote(e.Table)
	if e.Alias != "" {
		from += " AS " + g.Quote(e.Alias)
	}
	b := sq.Select("1").From(from).PlaceholderFormat(sq.Question)
	if !e.Where.IsZero() {
		where, err := g.sqlizer(e.Where)
		if err != nil {
			return nil, err
		}
		b = b.Where(where)
	}
	sub, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	prefix := "EXISTS"
	if e.Negate {
		prefix = "NOT EXISTS"
	}
	return sq.Expr(fmt.Sprintf("%s (%s)", prefix, sub), args...), nil
}

func (g *Generator) condition(c query.FilterCondition) (sq.Sqlizer, error) {
	if c.Field == "" {
		return nil, fmt.Errorf("%w: condition field is required", ErrInvalidQuery)
	}

	col := g.Quote(c.Field)
	var colArgs []any
	if c.Coalesce != nil {
		col = fmt.Sprintf("COALESCE(%s, ?)", col)
		colArgs = []any{c.Coalesce}
	}
	expr := func(sql string, args ...any) sq.Sqlizer {
		bound := slices.Clone(colArgs)
		for _, arg := range args {
			bound = append(bound, bindArg(arg))
		}
		return sq.Expr(sql, bound...)
	}

	if ref, ok := c.Value.(query.ColumnRef); ok {
		op, ok := binaryOperators[c.Operator]
		if !ok {
			return nil, fmt.Errorf("%w: operator %q cannot compare columns", ErrInvalidQuery, c.Operator)
		}
		return expr(fmt.Sprintf("%s %s %s", col, op, g.Quote(string(ref)))), nil
	}

	switch c.Operator {
	case query.ComparisonOperatorEq:
		if c.Value == nil {
			return expr(col + " IS NULL"), nil
		}
		return expr(col+" = ?", c.Value), nil
	case query.ComparisonOperatorNeq:
		if c.Value == nil {
			return expr(col + " IS NOT NULL"), nil
		}
		return expr(col+" <> ?", c.Value), nil
	case query.ComparisonOperatorLt, query.ComparisonOperatorLte,
		query.ComparisonOperatorGt, query.ComparisonOperatorGte:
		if c.Value == nil {
			return nil, fmt.Errorf("%w: operator %q requires a value", ErrInvalidQuery, c.Operator)
		}
		return expr(fmt.Sprintf("%s %s ?", col, binaryOperators[c.Operator]), c.Value), nil
	case query.ComparisonOperatorIn, query.ComparisonOperatorNin:
		list := listOf(c.Value)
		if len(list) == 0 {
			if c.Operator == query.ComparisonOperatorIn {
				return sq.Expr("1=0"), nil
			}
			return sq.Expr("1=1"), nil
		}
		keyword := "IN"
		if c.Operator == query.ComparisonOperatorNin {
			keyword = "NOT IN"
		}
		return expr(fmt.Sprintf("%s %s (%s)", col, keyword, sq.Placeholders(len(list))), list...), nil
	case query.ComparisonOperatorContains:
		return g.like(expr, col, "%"+escapeLike(c.Value)+"%", false), nil
	case query.ComparisonOperatorNotContains:
		return g.like(expr, col, "%"+escapeLike(c.Value)+"%", true), nil
	case query.ComparisonOperatorILike:
		return g.like(expr, col, escapeLike(c.Value), false), nil
	case query.ComparisonOperatorNotILike:
		return g.like(expr, col, escapeLike(c.Value), true), nil
	case query.ComparisonOperatorExists:
		return expr(col + " IS NOT NULL"), nil
	case query.ComparisonOperatorNotExists:
		return expr(col + " IS NULL"), nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, c.Operator)
}

// likeEscape is the LIKE escape character. It needs no quoting in any
// supported dialect, unlike a backslash.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// escapeLike turns a user value into a pattern matching it literally.
func escapeLike(v any) string {
	return likeEscaper.Replace(fmt.Sprint(v))
}

// like renders a case-insensitive pattern match.
func (g *Generator) like(expr func(string, ...any) sq.Sqlizer, col, pattern string, negate bool) sq.Sqlizer {
	not := ""
	if negate {
		not = "NOT "
	}
	if g.dialect.NativeILike {
		return expr(fmt.Sprintf("%s %sILIKE ? ESCAPE '%s'", col, not, likeEscape), pattern)
	}
	return expr(fmt.Sprintf("LOWER(%s) %sLIKE LOWER(?) ESCAPE '%s'", col, not, likeEscape), pattern)
}

// bindArg binds times in UTC, the zone stored timestamps are written in, so
// that text comparisons on SQLite agree with chronological order.
func bindArg(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

func listOf(v any) []any {
	if v == nil {
		return nil
	}
	switch list := v.(type) {
	case []any:
		return list
	case []query.FilterValue:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = item
		}
		return out
	case []byte:
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
