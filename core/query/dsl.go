// Package query defines the Domain-Specific Language (DSL) for constructing
// database queries. The DSL is a plain data structure: filters, joins,
// derived-table joins, sorting and pagination. Rendering it to a concrete SQL
// dialect is the job of a QueryGenerator.
package query

// LogicalOperator combines filter conditions inside a FilterGroup.
type LogicalOperator string

// Logical operators for combining filter conditions.
const (
	LogicalOperatorAnd LogicalOperator = "and"
	LogicalOperatorOr  LogicalOperator = "or"
	LogicalOperatorNot LogicalOperator = "not"
)

// ComparisonOperator defines the set of operators that can be used in a filter condition.
type ComparisonOperator string

// Supported comparison operators.
const (
	ComparisonOperatorEq          ComparisonOperator = "eq"
	ComparisonOperatorNeq         ComparisonOperator = "neq"
	ComparisonOperatorLt          ComparisonOperator = "lt"
	ComparisonOperatorLte         ComparisonOperator = "lte"
	ComparisonOperatorGt          ComparisonOperator = "gt"
	ComparisonOperatorGte         ComparisonOperator = "gte"
	ComparisonOperatorIn          ComparisonOperator = "in"
	ComparisonOperatorNin         ComparisonOperator = "nin"
	ComparisonOperatorContains    ComparisonOperator = "contains"
	ComparisonOperatorNotContains ComparisonOperator = "ncontains"
	ComparisonOperatorILike       ComparisonOperator = "ilike"
	ComparisonOperatorNotILike    ComparisonOperator = "nilike"
	ComparisonOperatorExists      ComparisonOperator = "exists"
	ComparisonOperatorNotExists   ComparisonOperator = "nexists"
)

// FilterValue represents the value used in a filter condition. It can be of any type,
// allowing for flexible query construction. A ColumnRef value compares two columns.
type FilterValue any

// ColumnRef is a qualified column reference ("table.column") used as a
// condition value instead of a bound parameter.
type ColumnRef string

// Column returns a ColumnRef for the given qualified column name.
func Column(name string) ColumnRef {
	return ColumnRef(name)
}

// FilterCondition defines a single condition for filtering the results of a query.
type FilterCondition struct {
	Field    string             // The qualified column to apply the filter on.
	Operator ComparisonOperator // The comparison operator to use.
	Value    FilterValue        // The value to compare against.
	// Coalesce, when non-nil, compares COALESCE(Field, Coalesce) instead of Field.
	Coalesce FilterValue `json:",omitempty"`
}

// FilterGroup combines multiple filter conditions using a logical operator.
// A "not" group negates the conjunction of its conditions.
type FilterGroup struct {
	Operator   LogicalOperator
	Conditions []QueryFilter
}

// ExistsFilter is a correlated existence test:
// [NOT] EXISTS (SELECT 1 FROM Table AS Alias WHERE Where).
type ExistsFilter struct {
	Table  string
	Alias  string      `json:",omitempty"`
	Where  QueryFilter // Correlation and inner conditions.
	Negate bool        `json:",omitempty"`
}

// QueryFilter is a union type that represents a single condition, a group of
// conditions or an existence test. Exactly one member is set.
type QueryFilter struct {
	Condition *FilterCondition `json:",omitempty"`
	Group     *FilterGroup     `json:",omitempty"`
	Exists    *ExistsFilter    `json:",omitempty"`
}

// IsZero reports whether no member of the union is set.
func (f QueryFilter) IsZero() bool {
	return f.Condition == nil && f.Group == nil && f.Exists == nil
}

// SortDirection specifies the direction for sorting.
type SortDirection string

// Supported sort directions.
const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// SortConfiguration defines the sorting order for a specific field.
type SortConfiguration struct {
	Field     string
	Direction SortDirection
}

// PaginationOptions defines how the query results should be paginated.
type PaginationOptions struct {
	Limit  int
	Offset *int `json:",omitempty"`
}

// ProjectionField defines a field to be included in the query result.
type ProjectionField struct {
	Name  string
	Alias string `json:",omitempty"`
}

// ProjectionConfiguration defines which fields should be returned in the query result.
type ProjectionConfiguration struct {
	Include []ProjectionField `json:",omitempty"`
}

// JoinType specifies the type of join to be performed.
type JoinType string

// Supported join types.
const (
	JoinTypeInner JoinType = "inner"
	JoinTypeLeft  JoinType = "left"
)

// JoinConfiguration defines a join operation with another table.
type JoinConfiguration struct {
	Type        JoinType
	TargetTable string
	Alias       string `json:",omitempty"`
	On          QueryFilter
}

// AggregationType specifies the type of aggregation to be performed.
type AggregationType string

// Supported aggregation types.
const (
	AggregationTypeCount AggregationType = "count"
	AggregationTypeSum   AggregationType = "sum"
	AggregationTypeAvg   AggregationType = "avg"
	AggregationTypeMin   AggregationType = "min"
	AggregationTypeMax   AggregationType = "max"
)

// AggregationConfiguration defines an aggregation operation to be performed on a field.
type AggregationConfiguration struct {
	Type  AggregationType
	Field string
	Alias string
}

// SubqueryConfiguration describes an aliased derived table joined to the base
// query:
//
//	<Type> JOIN (SELECT Columns, Aggregations FROM Table WHERE Where GROUP BY GroupBy) AS Alias ON On
//
// Columns and aggregations are unqualified inside the derived table and are
// addressed as "Alias.column" from the outer query.
type SubqueryConfiguration struct {
	Type         JoinType
	Table        string
	Alias        string
	Columns      []string                   `json:",omitempty"`
	Where        *QueryFilter               `json:",omitempty"`
	GroupBy      []string                   `json:",omitempty"`
	Aggregations []AggregationConfiguration `json:",omitempty"`
	On           QueryFilter
}

// QueryDSL is the top-level structure that represents a complete database query.
type QueryDSL struct {
	Table      string
	Distinct   bool                     `json:",omitempty"`
	Filters    *QueryFilter             `json:",omitempty"`
	Sort       []SortConfiguration      `json:",omitempty"`
	Pagination *PaginationOptions       `json:",omitempty"`
	Projection *ProjectionConfiguration `json:",omitempty"`
	Joins      []JoinConfiguration      `json:",omitempty"`
	Subqueries []SubqueryConfiguration  `json:",omitempty"`
}

// QueryResult represents the result of a database query.
type QueryResult struct {
	Data  any `json:"data"`
	Count int `json:"count"`
}

// standardComparisonOperators is a set of all the built-in comparison operators.
var standardComparisonOperators = map[ComparisonOperator]struct{}{
	ComparisonOperatorEq:          {},
	ComparisonOperatorNeq:         {},
	ComparisonOperatorLt:          {},
	ComparisonOperatorLte:         {},
	ComparisonOperatorGt:          {},
	ComparisonOperatorGte:         {},
	ComparisonOperatorIn:          {},
	ComparisonOperatorNin:         {},
	ComparisonOperatorContains:    {},
	ComparisonOperatorNotContains: {},
	ComparisonOperatorILike:       {},
	ComparisonOperatorNotILike:    {},
	ComparisonOperatorExists:      {},
	ComparisonOperatorNotExists:   {},
}

// IsStandard checks if a comparison operator is one of the built-in operators.
func (c ComparisonOperator) IsStandard() bool {
	_, ok := standardComparisonOperators[c]
	return ok
}

// NeedsValue reports whether the operator reads its Value.
func (c ComparisonOperator) NeedsValue() bool {
	return c != ComparisonOperatorExists && c != ComparisonOperatorNotExists
}

// GetStandardComparisonOperators returns a map of all standard comparison operators.
func GetStandardComparisonOperators() map[ComparisonOperator]struct{} {
	return standardComparisonOperators
}
