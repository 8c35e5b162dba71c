package query

// QueryBuilder provides a fluent API for building QueryDSL structures. It
// implements Queryable[*QueryBuilder], so the search compiler can apply joins,
// derived tables and filters to it directly.
type QueryBuilder struct {
	query QueryDSL
}

var _ Queryable[*QueryBuilder] = (*QueryBuilder)(nil)

// NewQueryBuilder creates a new query builder selecting from table.
func NewQueryBuilder(table string) *QueryBuilder {
	return &QueryBuilder{
		query: QueryDSL{Table: table},
	}
}

// Build returns the constructed QueryDSL object.
func (qb *QueryBuilder) Build() QueryDSL {
	return qb.query
}

// Clone creates a copy of the builder. Slices are copied so that appending to
// the clone never alters the original; filters are immutable once built and
// are shared.
func (qb *QueryBuilder) Clone() *QueryBuilder {
	q := qb.query
	q.Sort = append([]SortConfiguration(nil), qb.query.Sort...)
	q.Joins = append([]JoinConfiguration(nil), qb.query.Joins...)
	q.Subqueries = append([]SubqueryConfiguration(nil), qb.query.Subqueries...)
	if qb.query.Pagination != nil {
		p := *qb.query.Pagination
		q.Pagination = &p
	}
	if qb.query.Projection != nil {
		p := ProjectionConfiguration{Include: append([]ProjectionField(nil), qb.query.Projection.Include...)}
		q.Projection = &p
	}
	return &QueryBuilder{query: q}
}

// Reset clears all configurations except the base table.
func (qb *QueryBuilder) Reset() *QueryBuilder {
	qb.query = QueryDSL{Table: qb.query.Table}
	return qb
}

// Select sets the projected columns. An empty projection selects "table.*".
func (qb *QueryBuilder) Select(fields ...string) *QueryBuilder {
	if qb.query.Projection == nil {
		qb.query.Projection = &ProjectionConfiguration{}
	}
	for _, field := range fields {
		qb.query.Projection.Include = append(qb.query.Projection.Include, ProjectionField{Name: field})
	}
	return qb
}

// SelectAs adds a projected column under an alias.
func (qb *QueryBuilder) SelectAs(field, alias string) *QueryBuilder {
	if qb.query.Projection == nil {
		qb.query.Projection = &ProjectionConfiguration{}
	}
	qb.query.Projection.Include = append(qb.query.Projection.Include, ProjectionField{Name: field, Alias: alias})
	return qb
}

// Distinct makes the query return distinct rows.
func (qb *QueryBuilder) Distinct() *QueryBuilder {
	qb.query.Distinct = true
	return qb
}

// Join appends a join to the query.
func (qb *QueryBuilder) Join(join JoinConfiguration) *QueryBuilder {
	qb.query.Joins = append(qb.query.Joins, join)
	return qb
}

// JoinSubquery appends a derived-table join to the query.
func (qb *QueryBuilder) JoinSubquery(sub SubqueryConfiguration) *QueryBuilder {
	qb.query.Subqueries = append(qb.query.Subqueries, sub)
	return qb
}

// Filter ANDs filter with any filter already set on the query.
func (qb *QueryBuilder) Filter(filter QueryFilter) *QueryBuilder {
	if filter.IsZero() {
		return qb
	}
	if qb.query.Filters == nil {
		qb.query.Filters = &filter
		return qb
	}
	combined := And(*qb.query.Filters, filter)
	qb.query.Filters = &combined
	return qb
}

// Where begins the construction of a filter condition for a specific field.
func (qb *QueryBuilder) Where(field string) *FilterConditionBuilder {
	return &FilterConditionBuilder{parent: qb, field: field}
}

// FilterConditionBuilder is used to build a single filter condition (e.g., field = value).
type FilterConditionBuilder struct {
	parent *QueryBuilder
	field  string
}

// Eq adds an equality condition to the query.
func (fcb *FilterConditionBuilder) Eq(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorEq, value)
}

// Neq adds a not-equal condition to the query.
func (fcb *FilterConditionBuilder) Neq(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNeq, value)
}

// Lt adds a less-than condition to the query.
func (fcb *FilterConditionBuilder) Lt(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorLt, value)
}

// Lte adds a less-than-or-equal condition to the query.
func (fcb *FilterConditionBuilder) Lte(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorLte, value)
}

// Gt adds a greater-than condition to the query.
func (fcb *FilterConditionBuilder) Gt(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorGt, value)
}

// Gte adds a greater-than-or-equal condition to the query.
func (fcb *FilterConditionBuilder) Gte(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorGte, value)
}

// In adds an "in" condition, checking if a field's value is within a set of values.
func (fcb *FilterConditionBuilder) In(values ...FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorIn, values)
}

// Nin adds a "not in" condition, checking if a field's value is not within a set of values.
func (fcb *FilterConditionBuilder) Nin(values ...FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNin, values)
}

// Contains adds a case-insensitive substring condition.
func (fcb *FilterConditionBuilder) Contains(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorContains, value)
}

// NotContains adds a negated case-insensitive substring condition.
func (fcb *FilterConditionBuilder) NotContains(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNotContains, value)
}

// IsNull adds an IS NULL condition.
func (fcb *FilterConditionBuilder) IsNull() *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNotExists, nil)
}

// NotNull adds an IS NOT NULL condition.
func (fcb *FilterConditionBuilder) NotNull() *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorExists, nil)
}

func (fcb *FilterConditionBuilder) addCondition(operator ComparisonOperator, value FilterValue) *QueryBuilder {
	return fcb.parent.Filter(Cond(fcb.field, operator, value))
}

// OrderBy adds a sorting configuration to the query.
func (qb *QueryBuilder) OrderBy(field string, direction SortDirection) *QueryBuilder {
	qb.query.Sort = append(qb.query.Sort, SortConfiguration{
		Field:     field,
		Direction: direction,
	})
	return qb
}

// OrderByAsc adds an ascending sort order for a specific field.
func (qb *QueryBuilder) OrderByAsc(field string) *QueryBuilder {
	return qb.OrderBy(field, SortDirectionAsc)
}

// OrderByDesc adds a descending sort order for a specific field.
func (qb *QueryBuilder) OrderByDesc(field string) *QueryBuilder {
	return qb.OrderBy(field, SortDirectionDesc)
}

// Limit sets the maximum number of records to be returned by the query.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	if qb.query.Pagination == nil {
		qb.query.Pagination = &PaginationOptions{}
	}
	qb.query.Pagination.Limit = limit
	return qb
}

// Offset sets the starting point for the result set.
func (qb *QueryBuilder) Offset(offset int) *QueryBuilder {
	if qb.query.Pagination == nil {
		qb.query.Pagination = &PaginationOptions{}
	}
	qb.query.Pagination.Offset = IntPtr(offset)
	return qb
}
