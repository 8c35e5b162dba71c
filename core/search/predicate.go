package search

import (
	"fmt"
	"time"

	"github.com/asaidimu/backoffice-search/core/query"
)

var comparisons = map[Operator]query.ComparisonOperator{
	OperatorEquals:               query.ComparisonOperatorEq,
	OperatorNumberEquals:         query.ComparisonOperatorEq,
	OperatorNotEquals:            query.ComparisonOperatorNeq,
	OperatorNumberNotEquals:      query.ComparisonOperatorNeq,
	OperatorNameEquals:           query.ComparisonOperatorILike,
	OperatorNameNotEquals:        query.ComparisonOperatorNotILike,
	OperatorGreaterThan:          query.ComparisonOperatorGt,
	OperatorGreaterThanOrEqualTo: query.ComparisonOperatorGte,
	OperatorLessThan:             query.ComparisonOperatorLt,
	OperatorLessThanOrEqualTo:    query.ComparisonOperatorLte,
	OperatorContains:             query.ComparisonOperatorContains,
	OperatorNoContains:           query.ComparisonOperatorNotContains,
}

// columnPredicate compares the field column with the row values.
func (c *Compiler) columnPredicate(field FieldSpec, op Operator, vals []any) (query.QueryFilter, error) {
	cond := func(cmp query.ComparisonOperator, v any) query.QueryFilter {
		return query.QueryFilter{Condition: &query.FilterCondition{
			Field:    field.Column,
			Operator: cmp,
			Value:    v,
			Coalesce: field.Coalesce,
		}}
	}

	switch op {
	case OperatorIn:
		return cond(query.ComparisonOperatorIn, vals), nil
	case OperatorNotIn:
		return cond(query.ComparisonOperatorNin, vals), nil
	case OperatorIsNull, OperatorNotExist:
		return cond(query.ComparisonOperatorNotExists, nil), nil
	case OperatorIsNotNull:
		return cond(query.ComparisonOperatorExists, nil), nil
	case OperatorNullable:
		return anyOf(vals, func(v any) query.QueryFilter {
			if isNull, _ := v.(bool); isNull {
				return cond(query.ComparisonOperatorNotExists, nil)
			}
			return cond(query.ComparisonOperatorExists, nil)
		}), nil
	case OperatorDateFrom, OperatorDateTo, OperatorDateEquals:
		return anyOf(vals, func(v any) query.QueryFilter {
			day := v.(time.Time)
			next := day.AddDate(0, 0, 1)
			switch op {
			case OperatorDateFrom:
				return cond(query.ComparisonOperatorGte, day)
			case OperatorDateTo:
				return cond(query.ComparisonOperatorLt, next)
			}
			return query.And(cond(query.ComparisonOperatorGte, day), cond(query.ComparisonOperatorLt, next))
		}), nil
	}

	cmp, ok := comparisons[op]
	if !ok {
		return query.QueryFilter{}, fmt.Errorf("operator %s has no column comparison", op)
	}
	build := func(v any) query.QueryFilter { return cond(cmp, v) }
	if op.IsNegative() {
		return allOf(vals, build), nil
	}
	return anyOf(vals, build), nil
}

// relationPredicate expresses negation on a many-to-many field as the absence
// of a matching link row, so owners without any link row match.
func relationPredicate(rel RelationSpec, op Operator, vals []any) query.QueryFilter {
	where := []query.QueryFilter{
		query.Eq(rel.column(rel.OwnerColumn), query.Column(rel.ForeignColumn)),
	}
	if op == OperatorNotIn {
		where = append(where, query.Cond(rel.column(rel.ValueColumn), query.ComparisonOperatorIn, vals))
	}
	return query.NotExists(rel.Table, rel.Alias, where...)
}

func anyOf(vals []any, build func(any) query.QueryFilter) query.QueryFilter {
	filters := make([]query.QueryFilter, 0, len(vals))
	for _, v := range vals {
		filters = append(filters, build(v))
	}
	return query.Or(filters...)
}

func allOf(vals []any, build func(any) query.QueryFilter) query.QueryFilter {
	filters := make([]query.QueryFilter, 0, len(vals))
	for _, v := range vals {
		filters = append(filters, build(v))
	}
	return query.And(filters...)
}
