package query

// Queryable is a composable query: anything that can receive joins, derived
// table joins and filters, returning the augmented query. Implementations may
// mutate and return themselves (builders) or return a new value (immutable
// sessions).
type Queryable[Q any] interface {
	Join(join JoinConfiguration) Q
	JoinSubquery(sub SubqueryConfiguration) Q
	Filter(filter QueryFilter) Q
}

// QueryGenerator defines the interface for generating database-specific query
// strings from a generic QueryDSL object. Each implementation translates the
// abstract query representation into a concrete SQL dialect.
type QueryGenerator interface {
	// GenerateSelectSQL creates a SQL SELECT query string and its corresponding
	// parameters from a QueryDSL object.
	GenerateSelectSQL(dsl *QueryDSL) (string, []any, error)
}
