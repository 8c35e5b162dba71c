package offers

import (
	"testing"
	"time"

	"github.com/asaidimu/backoffice-search/core/query"
	"github.com/asaidimu/backoffice-search/core/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestNewCatalog_Valid(t *testing.T) {
	catalog := NewCatalog(fixedClock)
	require.NoError(t, catalog.Validate())

	compiler, err := search.NewCompiler(catalog)
	require.NoError(t, err)
	names := make([]string, 0)
	for _, f := range compiler.Fields() {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "TAG")
	assert.Contains(t, names, "STATUS")
	assert.Contains(t, names, "MEDIATION")
	assert.Contains(t, names, "PRODUCT")
	assert.Contains(t, names, "HEADLINE")
	assert.Contains(t, names, "ADDRESS")
}

func TestSameProduct(t *testing.T) {
	f, err := sameProduct(false)(int64(4))
	require.NoError(t, err)
	require.NotNil(t, f.Exists)
	assert.Equal(t, "same_product", f.Exists.Alias)
	assert.False(t, f.Exists.Negate)

	f, err = sameProduct(true)([]any{int64(4), int64(5)})
	require.NoError(t, err)
	require.NotNil(t, f.Group)
	assert.Equal(t, query.LogicalOperatorAnd, f.Group.Operator)
	require.Len(t, f.Group.Conditions, 2)
	assert.True(t, f.Group.Conditions[0].Exists.Negate)
}

func TestCatalog_Plan(t *testing.T) {
	compiler, err := search.NewCompiler(NewCatalog(fixedClock))
	require.NoError(t, err)

	tests := []struct {
		name           string
		rows           []search.FilterRow
		wantJoins      []string
		wantSteps      []string
		wantSubqueries []string
		wantWarnings   int
		wantFilter     bool
	}{
		{
			name:       "tag negation needs no join",
			rows:       []search.FilterRow{{Field: "TAG", Operator: search.OperatorNotIn, Value: []any{"1"}}},
			wantFilter: true,
		},
		{
			name:       "tag inclusion joins through the link table",
			rows:       []search.FilterRow{{Field: "TAG", Operator: search.OperatorIn, Value: []any{"1"}}},
			wantJoins:  []string{"criterion"},
			wantSteps:  []string{"offer_criterion", "criterion"},
			wantFilter: true,
		},
		{
			name: "venue step shared by department and validated offerer",
			rows: []search.FilterRow{
				{Field: "DEPARTMENT", Operator: search.OperatorIn, Value: []any{"75"}},
				{Field: "VALIDATED_OFFERER", Operator: search.OperatorEquals, Value: true},
			},
			wantJoins:  []string{"venue", "offerer"},
			wantSteps:  []string{"venue", "offerer"},
			wantFilter: true,
		},
		{
			name:           "price and stock count use derived tables",
			rows:           []search.FilterRow{{Field: "PRICE", Operator: search.OperatorLessThan, Value: "10"}, {Field: "STOCK_COUNT", Operator: search.OperatorNumberEquals, Value: 0}},
			wantSubqueries: []string{"stock", "stock_count"},
			wantFilter:     true,
		},
		{
			name:       "status is computed",
			rows:       []search.FilterRow{{Field: "STATUS", Operator: search.OperatorIn, Value: []any{StatusActive, StatusExpired}}},
			wantFilter: true,
		},
		{
			name:         "unknown status choice is reported",
			rows:         []search.FilterRow{{Field: "STATUS", Operator: search.OperatorIn, Value: []any{"ARCHIVED"}}},
			wantWarnings: 1,
		},
		{
			name:         "unknown region is reported",
			rows:         []search.FilterRow{{Field: "REGION", Operator: search.OperatorIn, Value: []any{"Atlantis"}}},
			wantWarnings: 1,
		},
		{
			name:         "operator not allowed for field",
			rows:         []search.FilterRow{{Field: "VALIDATED_OFFERER", Operator: search.OperatorNotEquals, Value: true}},
			wantWarnings: 1,
		},
		{
			name:       "address joins the offerer address",
			rows:       []search.FilterRow{{Field: "ADDRESS", Operator: search.OperatorIn, Value: []any{100}}},
			wantJoins:  []string{"offerer_address"},
			wantSteps:  []string{"offerer_address"},
			wantFilter: true,
		},
		{
			name:       "product compares with another offer",
			rows:       []search.FilterRow{{Field: "PRODUCT", Operator: search.OperatorNumberEquals, Value: "12"}},
			wantFilter: true,
		},
		{
			name:         "product accepts offer ids only",
			rows:         []search.FilterRow{{Field: "PRODUCT", Operator: search.OperatorNumberEquals, Value: "abc"}},
			wantWarnings: 1,
		},
		{
			name:       "headline",
			rows:       []search.FilterRow{{Field: "HEADLINE", Operator: search.OperatorEquals, Value: "true"}},
			wantFilter: true,
		},
		{
			name:       "mediation uses its own predicate",
			rows:       []search.FilterRow{{Field: "MEDIATION", Operator: search.OperatorNullable, Value: false}},
			wantFilter: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := compiler.Plan(tt.rows)
			require.NoError(t, err)
			assert.Equal(t, tt.wantJoins, plan.Joins)
			assert.Equal(t, tt.wantSteps, plan.Steps)
			assert.Equal(t, tt.wantSubqueries, plan.Subqueries)
			assert.Len(t, plan.Warnings, tt.wantWarnings)
			assert.Equal(t, tt.wantFilter, plan.Filter != nil)
		})
	}
}

func TestCategoriesToSubcategories(t *testing.T) {
	value, notes := categoriesToSubcategories([]any{"MUSIQUE_LIVE"})
	assert.Empty(t, notes)
	subcategories, ok := value.([]string)
	require.True(t, ok)
	assert.Contains(t, subcategories, "CONCERT")
	assert.NotContains(t, subcategories, "LIVRE_PAPIER")
}

func TestStatusFilter_Compute(t *testing.T) {
	status := statusFilter{now: fixedClock}

	f, err := status.compute(search.OperatorEquals, StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, query.Eq("offer.validation", StatusDraft), f)

	f, err = status.compute(search.OperatorNotIn, []any{StatusActive, StatusSoldOut})
	require.NoError(t, err)
	require.NotNil(t, f.Group)
	assert.Equal(t, query.LogicalOperatorNot, f.Group.Operator)

	_, err = status.compute(search.OperatorIn, []any{"ARCHIVED"})
	assert.Error(t, err)
	_, err = status.compute(search.OperatorIn, 12)
	assert.Error(t, err)
}
