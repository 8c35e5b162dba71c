package search

import (
	"errors"
	"fmt"
	"slices"

	"github.com/asaidimu/backoffice-search/core/query"
)

// Catalog configuration defects.
var (
	ErrUnknownJoin     = errors.New("unknown join")
	ErrUnknownSubquery = errors.New("unknown subquery")
	ErrInvalidField    = errors.New("invalid field definition")
)

// PredicateFunc builds the predicate of a row for one operator, replacing the
// generic column comparison.
type PredicateFunc func(value any) (query.QueryFilter, error)

// TransformFunc coerces a raw row value before predicate construction. Notes
// are surfaced as warnings. Returning a blank value skips the row.
type TransformFunc func(value any) (any, []string)

// ComputeFunc builds the predicate of a derived field that has no column.
type ComputeFunc func(op Operator, value any) (query.QueryFilter, error)

// RelationSpec describes the link table of a many-to-many field, used to
// express negation as "no matching link row exists".
type RelationSpec struct {
	Table         string // link table, e.g. offer_criterion
	Alias         string // optional alias of the link table
	OwnerColumn   string // link column referencing the owner, e.g. offerId
	ForeignColumn string // qualified owner key, e.g. offer.id
	ValueColumn   string // link column holding the searched value, e.g. criterionId
}

func (r RelationSpec) alias() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Table
}

func (r RelationSpec) column(name string) string {
	return r.alias() + "." + name
}

// FieldSpec describes one searchable field.
type FieldSpec struct {
	Label  string
	Kind   FieldKind
	Column string // qualified column compared by the generic predicates

	Join     string // name of a JoinSpec needed to reach Column
	Subquery string // name of a SubquerySpec needed to reach Column

	Transform          TransformFunc
	CustomFilters      map[Operator]PredicateFunc
	AllOperatorsFilter *query.QueryFilter
	Relation           *RelationSpec
	Compute            ComputeFunc

	// Coalesce compares COALESCE(Column, Coalesce), for aggregated columns of
	// outer-joined subqueries.
	Coalesce any

	// Operators overrides the operators of Kind.
	Operators []Operator

	// Choices restricts accepted values, checked before Transform.
	Choices []string
}

// SupportedOperators returns the operators the field accepts.
func (f FieldSpec) SupportedOperators() []Operator {
	if len(f.Operators) > 0 {
		return slices.Clone(f.Operators)
	}
	return OperatorsFor(f.Kind)
}

// Supports reports whether op is accepted by the field.
func (f FieldSpec) Supports(op Operator) bool {
	if len(f.Operators) > 0 {
		return slices.Contains(f.Operators, op)
	}
	return slices.Contains(kindOperators[f.Kind], op)
}

// JoinStep is one relation traversal.
type JoinStep struct {
	Name string
	Join query.JoinConfiguration
}

// JoinSpec is a named, ordered chain of join steps.
type JoinSpec struct {
	Name  string
	Steps []JoinStep
}

// SubquerySpec is a named derived table joined to the base query.
type SubquerySpec struct {
	Name     string
	Subquery query.SubqueryConfiguration
}

// Catalog is the declaration of a searchable resource. Joins and Subqueries
// are applied in the order they are declared here.
type Catalog struct {
	Fields     map[string]FieldSpec
	Joins      []JoinSpec
	Subqueries []SubquerySpec
}

func (c *Catalog) join(name string) (JoinSpec, bool) {
	for _, j := range c.Joins {
		if j.Name == name {
			return j, true
		}
	}
	return JoinSpec{}, false
}

func (c *Catalog) subquery(name string) (SubquerySpec, bool) {
	for _, s := range c.Subqueries {
		if s.Name == name {
			return s, true
		}
	}
	return SubquerySpec{}, false
}

// Validate checks the catalog for configuration defects: references to
// undeclared joins or subqueries, unknown kinds, and fields that could reach
// the generic path without a column.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for _, j := range c.Joins {
		if j.Name == "" || len(j.Steps) == 0 {
			return fmt.Errorf("%w: join %q has no steps", ErrUnknownJoin, j.Name)
		}
		if seen[j.Name] {
			return fmt.Errorf("duplicate join %q", j.Name)
		}
		seen[j.Name] = true
	}
	clear(seen)
	for _, s := range c.Subqueries {
		if s.Name == "" || s.Subquery.Alias == "" {
			return fmt.Errorf("%w: subquery %q needs a name and an alias", ErrUnknownSubquery, s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate subquery %q", s.Name)
		}
		seen[s.Name] = true
	}

	for name, field := range c.Fields {
		if !field.Kind.Valid() {
			return fmt.Errorf("%w: field %s has unknown kind %q", ErrInvalidField, name, field.Kind)
		}
		if field.Join != "" {
			if _, ok := c.join(field.Join); !ok {
				return fmt.Errorf("%w: %q referenced by field %s", ErrUnknownJoin, field.Join, name)
			}
		}
		if field.Subquery != "" {
			if _, ok := c.subquery(field.Subquery); !ok {
				return fmt.Errorf("%w: %q referenced by field %s", ErrUnknownSubquery, field.Subquery, name)
			}
		}
		if field.Column != "" || field.Compute != nil {
			continue
		}
		for _, op := range field.SupportedOperators() {
			if _, custom := field.CustomFilters[op]; custom {
				continue
			}
			if field.Relation != nil && (op == OperatorNotIn || op == OperatorNotExist) {
				continue
			}
			return fmt.Errorf("%w: field %s needs a column for operator %s", ErrInvalidField, name, op)
		}
	}
	return nil
}

// FilterRow is one submitted search row.
type FilterRow struct {
	Field    string   `json:"search_field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// Plan is the outcome of compiling rows, before it is applied to a query.
type Plan struct {
	Filter     *query.QueryFilter `json:"filter,omitempty"`
	Joins      []string           `json:"joins"`
	Steps      []string           `json:"steps"`
	Subqueries []string           `json:"subqueries"`
	Warnings   []string           `json:"warnings"`
}

// Empty reports whether the plan leaves a query untouched.
func (p *Plan) Empty() bool {
	return p.Filter == nil && len(p.Joins) == 0 && len(p.Subqueries) == 0
}

// CompiledQuery is a query augmented with the joins, derived tables and
// predicate of a search.
type CompiledQuery[Q any] struct {
	Query      Q
	Filter     *query.QueryFilter
	Joins      []string
	Subqueries []string
	Warnings   []string
}

// FieldDescriptor describes a searchable field to form builders.
type FieldDescriptor struct {
	Name      string     `json:"name"`
	Label     string     `json:"label"`
	Kind      FieldKind  `json:"kind"`
	Operators []Operator `json:"operators"`
	Choices   []string   `json:"choices,omitempty"`
}
