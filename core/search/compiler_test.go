package search

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaidimu/backoffice-search/core/query"
)

var statuses = []string{"ACTIVE", "INACTIVE"}

func testCatalog() Catalog {
	return Catalog{
		Fields: map[string]FieldSpec{
			"ID":            {Label: "Offer ID", Kind: KindInteger, Column: "offer.id", Transform: ExtractIDs},
			"NAME":          {Kind: KindString, Column: "offer.name"},
			"PRICE":         {Kind: KindNumber, Column: "stock.price", Subquery: "stock"},
			"CREATION_DATE": {Kind: KindDate, Column: "offer.dateCreated"},
			"ACTIVE":        {Kind: KindBoolean, Column: "offer.isActive"},
			"VALIDATION":    {Kind: KindEnum, Column: "offer.validation", Choices: []string{"DRAFT", "PENDING", "APPROVED", "REJECTED"}},
			"VENUE":         {Kind: KindRelation, Column: "offer.venueId"},
			"DEPARTMENT":    {Kind: KindString, Column: "venue.departementCode", Join: "venue"},
			"OFFERER":       {Kind: KindRelation, Column: "venue.managingOffererId", Join: "venue"},
			"VALIDATED":     {Kind: KindBoolean, Column: "offerer.isValidated", Join: "offerer"},
			"TAG": {
				Kind:   KindCollection,
				Column: "criterion.id",
				Join:   "criterion",
				Relation: &RelationSpec{
					Table:         "offer_criterion",
					Alias:         "excluded",
					OwnerColumn:   "offerId",
					ForeignColumn: "offer.id",
					ValueColumn:   "criterionId",
				},
			},
			"STATUS": {
				Kind:    KindComputed,
				Choices: statuses,
				Compute: func(op Operator, value any) (query.QueryFilter, error) {
					if op == OperatorEquals {
						return query.Eq("offer.isActive", value == "ACTIVE"), nil
					}
					return query.Cond("offer.status", query.ComparisonOperatorIn, value), nil
				},
			},
			"MEDIATION": {
				Kind:      KindBoolean,
				Operators: []Operator{OperatorNullable},
				CustomFilters: map[Operator]PredicateFunc{
					OperatorNullable: func(value any) (query.QueryFilter, error) {
						f := query.Exists("mediation", "", query.Eq("mediation.offerId", query.Column("offer.id")))
						if value == true {
							return query.Not(f), nil
						}
						return f, nil
					},
				},
			},
		},
		Joins: []JoinSpec{
			{Name: "criterion", Steps: []JoinStep{
				{Name: "offer_criterion", Join: query.JoinConfiguration{Type: query.JoinTypeInner, TargetTable: "offer_criterion", On: query.Eq("offer_criterion.offerId", query.Column("offer.id"))}},
				{Name: "criterion", Join: query.JoinConfiguration{Type: query.JoinTypeInner, TargetTable: "criterion", On: query.Eq("criterion.id", query.Column("offer_criterion.criterionId"))}},
			}},
			{Name: "venue", Steps: []JoinStep{
				{Name: "venue", Join: query.JoinConfiguration{Type: query.JoinTypeInner, TargetTable: "venue", On: query.Eq("venue.id", query.Column("offer.venueId"))}},
			}},
			{Name: "offerer", Steps: []JoinStep{
				{Name: "venue", Join: query.JoinConfiguration{Type: query.JoinTypeInner, TargetTable: "venue", On: query.Eq("venue.id", query.Column("offer.venueId"))}},
				{Name: "offerer", Join: query.JoinConfiguration{Type: query.JoinTypeInner, TargetTable: "offerer", On: query.Eq("offerer.id", query.Column("venue.managingOffererId"))}},
			}},
		},
		Subqueries: []SubquerySpec{
			{Name: "stock", Subquery: query.SubqueryConfiguration{
				Type:    query.JoinTypeInner,
				Table:   "stock",
				Alias:   "stock",
				Columns: []string{"offerId", "price"},
				On:      query.Eq("stock.offerId", query.Column("offer.id")),
			}},
		},
	}
}

func newTestCompiler(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	c, err := NewCompiler(testCatalog(), opts...)
	require.NoError(t, err)
	return c
}

func TestCompile_IDExtraction(t *testing.T) {
	c := newTestCompiler(t)

	compiled, err := Compile(c, query.NewQueryBuilder("offer"), []FilterRow{
		{Field: "ID", Operator: OperatorIn, Value: "12, 45 67"},
	})
	require.NoError(t, err)
	assert.Empty(t, compiled.Warnings)
	assert.Empty(t, compiled.Joins)

	dsl := compiled.Query.Build()
	require.NotNil(t, dsl.Filters)
	assert.Equal(t, query.Cond("offer.id", query.ComparisonOperatorIn, []any{int64(12), int64(45), int64(67)}), *dsl.Filters)
}

func TestCompile_CollectionInAndNotIn(t *testing.T) {
	c := newTestCompiler(t)

	compiled, err := Compile(c, query.NewQueryBuilder("offer"), []FilterRow{
		{Field: "TAG", Operator: OperatorIn, Value: []any{1, 2}},
		{Field: "TAG", Operator: OperatorNotIn, Value: []any{3}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"criterion"}, compiled.Joins)

	dsl := compiled.Query.Build()
	require.Len(t, dsl.Joins, 2)
	assert.Equal(t, "offer_criterion", dsl.Joins[0].TargetTable)
	assert.Equal(t, "criterion", dsl.Joins[1].TargetTable)

	expected := query.And(
		query.Cond("criterion.id", query.ComparisonOperatorIn, []any{int64(1), int64(2)}),
		query.NotExists("offer_criterion", "excluded",
			query.Eq("excluded.offerId", query.Column("offer.id")),
			query.Cond("excluded.criterionId", query.ComparisonOperatorIn, []any{int64(3)}),
		),
	)
	require.NotNil(t, dsl.Filters)
	assert.Equal(t, expected, *dsl.Filters)
}

func TestCompile_NegationAloneSkipsJoin(t *testing.T) {
	c := newTestCompiler(t)

	for _, row := range []FilterRow{
		{Field: "TAG", Operator: OperatorNotIn, Value: 3},
		{Field: "TAG", Operator: OperatorNotExist},
	} {
		t.Run(string(row.Operator), func(t *testing.T) {
			compiled, err := Compile(c, query.NewQueryBuilder("offer"), []FilterRow{row})
			require.NoError(t, err)
			assert.Empty(t, compiled.Joins)
			assert.Empty(t, compiled.Query.Build().Joins)
			require.NotNil(t, compiled.Filter)
			require.NotNil(t, compiled.Filter.Exists)
			assert.True(t, compiled.Filter.Exists.Negate)
		})
	}

	plan, err := c.Plan([]FilterRow{{Field: "TAG", Operator: OperatorNotExist, Value: "ignored"}})
	require.NoError(t, err)
	assert.Equal(t, query.NotExists("offer_criterion", "excluded", query.Eq("excluded.offerId", query.Column("offer.id"))), *plan.Filter)
}

func TestCompile_JoinAppliedOnce(t *testing.T) {
	c := newTestCompiler(t)

	compiled, err := Compile(c, query.NewQueryBuilder("offer"), []FilterRow{
		{Field: "DEPARTMENT", Operator: OperatorIn, Value: []string{"75", "92"}},
		{Field: "OFFERER", Operator: OperatorIn, Value: 4},
		{Field: "VALIDATED", Operator: OperatorEquals, Value: "true"},
		{Field: "DEPARTMENT", Operator: OperatorNotEquals, Value: "93"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"venue", "offerer"}, compiled.Joins)

	dsl := compiled.Query.Build()
	require.Len(t, dsl.Joins, 2)
	assert.Equal(t, "venue", dsl.Joins[0].TargetTable)
	assert.Equal(t, "offerer", dsl.Joins[1].TargetTable)
	require.NotNil(t, dsl.Filters.Group)
	assert.Len(t, dsl.Filters.Group.Conditions, 4)

	plan, err := c.Plan([]FilterRow{{Field: "VALIDATED", Operator: OperatorEquals, Value: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"offerer"}, plan.Joins)
	assert.Equal(t, []string{"venue", "offerer"}, plan.Steps)
}

func TestCompile_Subquery(t *testing.T) {
	c := newTestCompiler(t)

	compiled, err := Compile(c, query.NewQueryBuilder("offer"), []FilterRow{
		{Field: "PRICE", Operator: OperatorGreaterThan, Value: "10,5"},
		{Field: "PRICE", Operator: OperatorLessThan, Value: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stock"}, compiled.Subqueries)

	dsl := compiled.Query.Build()
	require.Len(t, dsl.Subqueries, 1)
	assert.Empty(t, dsl.Joins)
	assert.Equal(t, query.And(
		query.Cond("stock.price", query.ComparisonOperatorGt, 10.5),
		query.Cond("stock.price", query.ComparisonOperatorLt, float64(20)),
	), *dsl.Filters)
}

func TestCompile_BlankRows(t *testing.T) {
	c := newTestCompiler(t)
	base := query.NewQueryBuilder("offer").OrderByDesc("offer.id")
	before := base.Build()

	compiled, err := Compile(c, base, []FilterRow{
		{},
		{Field: "NAME"},
		{Field: "NAME", Operator: OperatorContains},
		{Field: "NAME", Operator: OperatorContains, Value: "   "},
		{Field: "TAG", Operator: OperatorIn, Value: []any{}},
		{Field: "DEPARTMENT", Operator: OperatorIn, Value: []string{"", " "}},
	})
	require.NoError(t, err)
	assert.Same(t, base, compiled.Query)
	assert.Equal(t, before, compiled.Query.Build())
	assert.Nil(t, compiled.Filter)
	assert.Empty(t, compiled.Joins)
	assert.Empty(t, compiled.Subqueries)
	assert.Empty(t, compiled.Warnings)
}

func TestCompile_Idempotent(t *testing.T) {
	c := newTestCompiler(t)
	rows := []FilterRow{
		{Field: "TAG", Operator: OperatorIn, Value: []any{1}},
		{Field: "OFFERER", Operator: OperatorIn, Value: []any{8, 9}},
		{Field: "DEPARTMENT", Operator: OperatorEquals, Value: "75"},
		{Field: "PRICE", Operator: OperatorEquals, Value: 3},
		{Field: "CREATION_DATE", Operator: OperatorDateFrom, Value: "2024-01-01"},
	}

	first, err := Compile(c, query.NewQueryBuilder("offer"), rows)
	require.NoError(t, err)
	second, err := Compile(c, query.NewQueryBuilder("offer"), rows)
	require.NoError(t, err)

	assert.Equal(t, first.Query.Build(), second.Query.Build())
	assert.Equal(t, first.Joins, second.Joins)
	assert.Equal(t, []string{"criterion", "venue"}, first.Joins)
}

func TestPlan_Warnings(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		name     string
		row      FilterRow
		contains string
	}{
		{"unknown field", FilterRow{Field: "COLOR", Operator: OperatorEquals, Value: "red"}, `"COLOR"`},
		{"unknown operator", FilterRow{Field: "NAME", Operator: "LIKE", Value: "x"}, `"LIKE"`},
		{"kind mismatch", FilterRow{Field: "CREATION_DATE", Operator: OperatorContains, Value: "2024"}, "CONTAINS"},
		{"malformed date", FilterRow{Field: "CREATION_DATE", Operator: OperatorDateFrom, Value: "yesterday"}, "CREATION_DATE"},
		{"malformed number", FilterRow{Field: "PRICE", Operator: OperatorGreaterThan, Value: "cheap"}, "PRICE"},
		{"unknown choice", FilterRow{Field: "VALIDATION", Operator: OperatorIn, Value: []string{"LOST"}}, "VALIDATION"},
		{"id as name", FilterRow{Field: "ID", Operator: OperatorIn, Value: "jazz festival"}, "name search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := c.Plan([]FilterRow{tt.row, {Field: "NAME", Operator: OperatorContains, Value: "jazz"}})
			require.NoError(t, err)
			require.Len(t, plan.Warnings, 1)
			assert.Contains(t, plan.Warnings[0], tt.contains)
			require.NotNil(t, plan.Filter)
			assert.Equal(t, query.Cond("offer.name", query.ComparisonOperatorContains, "jazz"), *plan.Filter)
		})
	}
}

func TestPlan_PartiallyValidValues(t *testing.T) {
	c := newTestCompiler(t)

	plan, err := c.Plan([]FilterRow{
		{Field: "VALIDATION", Operator: OperatorIn, Value: []string{"LOST", "APPROVED"}},
		{Field: "ID", Operator: OperatorIn, Value: "12 abc"},
	})
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "abc")
	assert.Equal(t, query.And(
		query.Cond("offer.validation", query.ComparisonOperatorIn, []any{"APPROVED"}),
		query.Cond("offer.id", query.ComparisonOperatorIn, []any{int64(12)}),
	), *plan.Filter)
}

func validValue(kind FieldKind) any {
	switch kind {
	case KindInteger:
		return "12"
	case KindNumber:
		return 10.5
	case KindDate:
		return "2024-05-01"
	case KindBoolean:
		return true
	case KindEnum:
		return "APPROVED"
	case KindRelation, KindCollection:
		return []any{1, 2}
	case KindComputed:
		return "ACTIVE"
	}
	return "jazz"
}

func TestPlan_CompatibleOperatorsDoNotWarn(t *testing.T) {
	c := newTestCompiler(t)

	for name, field := range c.catalog.Fields {
		for _, op := range field.SupportedOperators() {
			t.Run(fmt.Sprintf("%s/%s", name, op), func(t *testing.T) {
				plan, err := c.Plan([]FilterRow{{Field: name, Operator: op, Value: validValue(field.Kind)}})
				require.NoError(t, err)
				assert.Empty(t, plan.Warnings)
				assert.NotNil(t, plan.Filter)
			})
		}
	}
}

func TestPlan_AnyOfAndNoneOf(t *testing.T) {
	c := newTestCompiler(t)

	plan, err := c.Plan([]FilterRow{{Field: "NAME", Operator: OperatorContains, Value: []string{"jazz", "rock"}}})
	require.NoError(t, err)
	assert.Equal(t, query.Or(
		query.Cond("offer.name", query.ComparisonOperatorContains, "jazz"),
		query.Cond("offer.name", query.ComparisonOperatorContains, "rock"),
	), *plan.Filter)

	plan, err = c.Plan([]FilterRow{{Field: "NAME", Operator: OperatorNoContains, Value: []string{"jazz", "rock"}}})
	require.NoError(t, err)
	assert.Equal(t, query.And(
		query.Cond("offer.name", query.ComparisonOperatorNotContains, "jazz"),
		query.Cond("offer.name", query.ComparisonOperatorNotContains, "rock"),
	), *plan.Filter)

	plan, err = c.Plan([]FilterRow{{Field: "NAME", Operator: OperatorNameEquals, Value: "Jazz Night"}})
	require.NoError(t, err)
	assert.Equal(t, query.Cond("offer.name", query.ComparisonOperatorILike, "Jazz Night"), *plan.Filter)
}

func TestPlan_Dates(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	c := newTestCompiler(t, WithLocation(loc))
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)
	next := time.Date(2024, 5, 2, 0, 0, 0, 0, loc)

	tests := []struct {
		op       Operator
		expected query.QueryFilter
	}{
		{OperatorDateFrom, query.Cond("offer.dateCreated", query.ComparisonOperatorGte, day)},
		{OperatorDateTo, query.Cond("offer.dateCreated", query.ComparisonOperatorLt, next)},
		{OperatorDateEquals, query.And(
			query.Cond("offer.dateCreated", query.ComparisonOperatorGte, day),
			query.Cond("offer.dateCreated", query.ComparisonOperatorLt, next),
		)},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			for _, value := range []any{"2024-05-01", "01/05/2024", time.Date(2024, 5, 1, 15, 30, 0, 0, loc)} {
				plan, err := c.Plan([]FilterRow{{Field: "CREATION_DATE", Operator: tt.op, Value: value}})
				require.NoError(t, err)
				assert.Equal(t, tt.expected, *plan.Filter)
			}
		})
	}
}

func TestPlan_NullOperators(t *testing.T) {
	c := newTestCompiler(t)

	plan, err := c.Plan([]FilterRow{
		{Field: "VENUE", Operator: OperatorIsNull},
		{Field: "NAME", Operator: OperatorIsNotNull},
		{Field: "ACTIVE", Operator: OperatorNullable, Value: "false"},
	})
	require.NoError(t, err)
	assert.Equal(t, query.And(
		query.IsNull("offer.venueId"),
		query.NotNull("offer.name"),
		query.NotNull("offer.isActive"),
	), *plan.Filter)
}

func TestPlan_CustomAndComputed(t *testing.T) {
	c := newTestCompiler(t)

	plan, err := c.Plan([]FilterRow{
		{Field: "MEDIATION", Operator: OperatorNullable, Value: "true"},
		{Field: "STATUS", Operator: OperatorIn, Value: []string{"ACTIVE", "INACTIVE"}},
		{Field: "STATUS", Operator: OperatorEquals, Value: "ACTIVE"},
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Warnings)
	require.NotNil(t, plan.Filter.Group)
	conditions := plan.Filter.Group.Conditions
	require.Len(t, conditions, 3)
	require.NotNil(t, conditions[0].Exists)
	assert.True(t, conditions[0].Exists.Negate)
	assert.Equal(t, query.Cond("offer.status", query.ComparisonOperatorIn, []any{"ACTIVE", "INACTIVE"}), conditions[1])
	assert.Equal(t, query.Eq("offer.isActive", true), conditions[2])
}

func TestPlan_PredicateErrorsBecomeWarnings(t *testing.T) {
	catalog := testCatalog()
	catalog.Fields["BROKEN"] = FieldSpec{
		Kind: KindComputed,
		Compute: func(Operator, any) (query.QueryFilter, error) {
			return query.QueryFilter{}, errors.New("unsupported status")
		},
	}
	c, err := NewCompiler(catalog)
	require.NoError(t, err)

	plan, err := c.Plan([]FilterRow{{Field: "BROKEN", Operator: OperatorIn, Value: "X"}})
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "unsupported status")
	assert.Nil(t, plan.Filter)
}

func TestNewCompiler_InvalidCatalog(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Catalog)
		target error
	}{
		{"unknown join", func(c *Catalog) { c.Fields["X"] = FieldSpec{Kind: KindString, Column: "x.y", Join: "nope"} }, ErrUnknownJoin},
		{"unknown subquery", func(c *Catalog) { c.Fields["X"] = FieldSpec{Kind: KindString, Column: "x.y", Subquery: "nope"} }, ErrUnknownSubquery},
		{"missing column", func(c *Catalog) { c.Fields["X"] = FieldSpec{Kind: KindString} }, ErrInvalidField},
		{"unknown kind", func(c *Catalog) { c.Fields["X"] = FieldSpec{Kind: "blob", Column: "x.y"} }, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := testCatalog()
			tt.mutate(&catalog)
			_, err := NewCompiler(catalog)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestPlan_ZeroCompilerReportsUnknownJoin(t *testing.T) {
	c := &Compiler{
		catalog:  Catalog{Fields: map[string]FieldSpec{"X": {Kind: KindString, Column: "venue.name", Join: "venue"}}},
		location: time.UTC,
	}
	c.logger = newTestCompiler(t).logger

	_, err := c.Plan([]FilterRow{{Field: "X", Operator: OperatorEquals, Value: "a"}})
	assert.ErrorIs(t, err, ErrUnknownJoin)
}

func TestFields(t *testing.T) {
	c := newTestCompiler(t)
	fields := c.Fields()
	require.Len(t, fields, len(testCatalog().Fields))
	for i := 1; i < len(fields); i++ {
		assert.Less(t, fields[i-1].Name, fields[i].Name)
	}

	byName := map[string]FieldDescriptor{}
	for _, f := range fields {
		byName[f.Name] = f
	}
	assert.Equal(t, "Offer ID", byName["ID"].Label)
	assert.Equal(t, "NAME", byName["NAME"].Label)
	assert.Equal(t, []Operator{OperatorNullable}, byName["MEDIATION"].Operators)
	assert.Equal(t, statuses, byName["STATUS"].Choices)
}
