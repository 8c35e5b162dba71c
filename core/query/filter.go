package query

// Cond builds a single-condition filter.
func Cond(field string, operator ComparisonOperator, value FilterValue) QueryFilter {
	return QueryFilter{Condition: &FilterCondition{Field: field, Operator: operator, Value: value}}
}

// Eq builds an equality filter.
func Eq(field string, value FilterValue) QueryFilter {
	return Cond(field, ComparisonOperatorEq, value)
}

// IsNull builds an IS NULL filter.
func IsNull(field string) QueryFilter {
	return Cond(field, ComparisonOperatorNotExists, nil)
}

// NotNull builds an IS NOT NULL filter.
func NotNull(field string) QueryFilter {
	return Cond(field, ComparisonOperatorExists, nil)
}

// And combines filters with AND. Zero filters are dropped; a single remaining
// filter is returned as is.
func And(filters ...QueryFilter) QueryFilter {
	return combine(LogicalOperatorAnd, filters)
}

// Or combines filters with OR. Zero filters are dropped; a single remaining
// filter is returned as is.
func Or(filters ...QueryFilter) QueryFilter {
	return combine(LogicalOperatorOr, filters)
}

// Not negates a filter.
func Not(filter QueryFilter) QueryFilter {
	if filter.Exists != nil {
		negated := *filter.Exists
		negated.Negate = !negated.Negate
		return QueryFilter{Exists: &negated}
	}
	return QueryFilter{Group: &FilterGroup{Operator: LogicalOperatorNot, Conditions: []QueryFilter{filter}}}
}

// Exists builds a correlated EXISTS filter on table.
func Exists(table, alias string, where ...QueryFilter) QueryFilter {
	return QueryFilter{Exists: &ExistsFilter{Table: table, Alias: alias, Where: And(where...)}}
}

// NotExists builds a correlated NOT EXISTS filter on table.
func NotExists(table, alias string, where ...QueryFilter) QueryFilter {
	return QueryFilter{Exists: &ExistsFilter{Table: table, Alias: alias, Where: And(where...), Negate: true}}
}

func combine(operator LogicalOperator, filters []QueryFilter) QueryFilter {
	kept := make([]QueryFilter, 0, len(filters))
	for _, f := range filters {
		if f.IsZero() {
			continue
		}
		// Flatten nested groups of the same operator.
		if f.Group != nil && f.Group.Operator == operator {
			kept = append(kept, f.Group.Conditions...)
			continue
		}
		kept = append(kept, f)
	}
	switch len(kept) {
	case 0:
		return QueryFilter{}
	case 1:
		return kept[0]
	}
	return QueryFilter{Group: &FilterGroup{Operator: operator, Conditions: kept}}
}
