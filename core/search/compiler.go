// Package search compiles backoffice advanced-search rows into joins, derived
// tables and a single predicate applied to any composable query.
package search

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/asaidimu/backoffice-search/core/query"
)

// Compiler turns filter rows into a Plan for one catalog. It holds no
// per-request state and is safe for concurrent use.
type Compiler struct {
	catalog  Catalog
	logger   *zap.Logger
	location *time.Location
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the compiler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocation sets the location used to read dates.
func WithLocation(location *time.Location) Option {
	return func(c *Compiler) {
		if location != nil {
			c.location = location
		}
	}
}

// NewCompiler validates catalog and returns a compiler for it.
func NewCompiler(catalog Catalog, opts ...Option) (*Compiler, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search catalog: %w", err)
	}
	c := &Compiler{
		catalog:  catalog,
		logger:   zap.NewNop(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Location returns the location used to read dates.
func (c *Compiler) Location() *time.Location {
	return c.location
}

// Fields describes the searchable fields, sorted by name.
func (c *Compiler) Fields() []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, len(c.catalog.Fields))
	for name, spec := range c.catalog.Fields {
		label := spec.Label
		if label == "" {
			label = name
		}
		fields = append(fields, FieldDescriptor{
			Name:      name,
			Label:     label,
			Kind:      spec.Kind,
			Operators: spec.SupportedOperators(),
			Choices:   slices.Clone(spec.Choices),
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// rowResult is the predicate of one row and whether it reads the field column.
type rowResult struct {
	filter  query.QueryFilter
	generic bool
}

// Plan compiles rows. Rows that cannot be interpreted are skipped and reported
// as warnings; an error is only returned for catalog defects.
func (c *Compiler) Plan(rows []FilterRow) (*Plan, error) {
	plan := &Plan{}
	wantJoins := map[string]bool{}
	wantSubqueries := map[string]bool{}
	var predicates []query.QueryFilter

	for i, row := range rows {
		if row.Field == "" || row.Operator == "" {
			continue
		}
		field, ok := c.catalog.Fields[row.Field]
		if !ok {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("Search field %q is not supported, the filter was ignored", row.Field))
			continue
		}
		if !row.Operator.Valid() {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("Operator %q is not supported, the filter on %s was ignored", row.Operator, labelOf(row.Field, field)))
			continue
		}
		if !field.Supports(row.Operator) {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("Operator %s cannot be used with %s, the filter was ignored", row.Operator, labelOf(row.Field, field)))
			continue
		}

		result, notes, ok := c.compileRow(row, field)
		plan.Warnings = append(plan.Warnings, notes...)
		if !ok {
			continue
		}
		if result.generic {
			if field.Join != "" {
				wantJoins[field.Join] = true
			}
			if field.Subquery != "" {
				wantSubqueries[field.Subquery] = true
			}
		}
		c.logger.Debug("search row compiled",
			zap.Int("row", i),
			zap.String("field", row.Field),
			zap.String("operator", string(row.Operator)),
			zap.Bool("generic", result.generic),
		)
		predicates = append(predicates, result.filter)
	}

	for name := range wantJoins {
		if _, ok := c.catalog.join(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownJoin, name)
		}
	}
	for name := range wantSubqueries {
		if _, ok := c.catalog.subquery(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSubquery, name)
		}
	}

	appliedSteps := map[string]bool{}
	for _, j := range c.catalog.Joins {
		if !wantJoins[j.Name] {
			continue
		}
		plan.Joins = append(plan.Joins, j.Name)
		for _, step := range j.Steps {
			if !appliedSteps[step.Name] {
				appliedSteps[step.Name] = true
				plan.Steps = append(plan.Steps, step.Name)
			}
		}
	}
	for _, s := range c.catalog.Subqueries {
		if wantSubqueries[s.Name] {
			plan.Subqueries = append(plan.Subqueries, s.Name)
		}
	}

	if combined := query.And(predicates...); !combined.IsZero() {
		plan.Filter = &combined
	}

	c.logger.Debug("search plan built",
		zap.Int("rows", len(rows)),
		zap.Int("predicates", len(predicates)),
		zap.Strings("joins", plan.Joins),
		zap.Strings("subqueries", plan.Subqueries),
		zap.Int("warnings", len(plan.Warnings)),
	)
	return plan, nil
}

// compileRow builds the predicate of one row. ok is false when the row is
// blank or invalid; notes are warnings to surface either way.
func (c *Compiler) compileRow(row FilterRow, field FieldSpec) (rowResult, []string, bool) {
	op := row.Operator
	label := labelOf(row.Field, field)

	var vals []any
	if op.NeedsValue() {
		vals = values(row.Value)
		if len(vals) == 0 {
			return rowResult{}, nil, false
		}

		raw := row.Value
		if len(field.Choices) > 0 {
			vals = filterChoices(vals, field.Choices)
			if len(vals) == 0 {
				return rowResult{}, []string{fmt.Sprintf("No valid value for %s, the filter was ignored", label)}, false
			}
			raw = vals
		}

		var notes []string
		if field.Transform != nil {
			var transformed any
			transformed, notes = field.Transform(raw)
			vals = values(transformed)
		}
		vals = c.coerce(field.Kind, vals)
		if len(vals) == 0 {
			if len(notes) == 0 {
				notes = []string{fmt.Sprintf("No valid value for %s, the filter was ignored", label)}
			}
			return rowResult{}, notes, false
		}
		result, err := c.predicate(field, op, vals)
		if err != nil {
			return rowResult{}, append(notes, fmt.Sprintf("Filter on %s was ignored: %v", label, err)), false
		}
		return result, notes, true
	}

	result, err := c.predicate(field, op, nil)
	if err != nil {
		return rowResult{}, []string{fmt.Sprintf("Filter on %s was ignored: %v", label, err)}, false
	}
	return result, nil, true
}

func (c *Compiler) predicate(field FieldSpec, op Operator, vals []any) (rowResult, error) {
	if field.Compute != nil {
		f, err := field.Compute(op, shape(op, vals))
		if err != nil {
			return rowResult{}, err
		}
		return rowResult{filter: c.withAllOperators(field, f), generic: true}, nil
	}
	if custom, ok := field.CustomFilters[op]; ok {
		f, err := custom(shape(op, vals))
		if err != nil {
			return rowResult{}, err
		}
		return rowResult{filter: c.withAllOperators(field, f)}, nil
	}
	if field.Relation != nil && (op == OperatorNotIn || op == OperatorNotExist) {
		return rowResult{filter: relationPredicate(*field.Relation, op, vals)}, nil
	}
	f, err := c.columnPredicate(field, op, vals)
	if err != nil {
		return rowResult{}, err
	}
	return rowResult{filter: c.withAllOperators(field, f), generic: true}, nil
}

func (c *Compiler) withAllOperators(field FieldSpec, f query.QueryFilter) query.QueryFilter {
	if field.AllOperatorsFilter == nil {
		return f
	}
	return query.And(f, *field.AllOperatorsFilter)
}

func labelOf(name string, field FieldSpec) string {
	if field.Label != "" {
		return field.Label
	}
	return name
}

// Apply adds the joins, derived tables and predicate of plan to base. Join
// steps shared by several joins are applied once.
func Apply[Q query.Queryable[Q]](base Q, c *Compiler, plan *Plan) Q {
	if plan == nil || plan.Empty() {
		return base
	}
	q := base
	applied := map[string]bool{}
	for _, name := range plan.Joins {
		j, ok := c.catalog.join(name)
		if !ok {
			continue
		}
		for _, step := range j.Steps {
			if applied[step.Name] {
				continue
			}
			applied[step.Name] = true
			q = q.Join(step.Join)
		}
	}
	for _, name := range plan.Subqueries {
		if s, ok := c.catalog.subquery(name); ok {
			q = q.JoinSubquery(s.Subquery)
		}
	}
	if plan.Filter != nil {
		q = q.Filter(*plan.Filter)
	}
	return q
}

// Compile plans rows and applies the plan to base.
func Compile[Q query.Queryable[Q]](c *Compiler, base Q, rows []FilterRow) (*CompiledQuery[Q], error) {
	plan, err := c.Plan(rows)
	if err != nil {
		return nil, err
	}
	return &CompiledQuery[Q]{
		Query:      Apply(base, c, plan),
		Filter:     plan.Filter,
		Joins:      plan.Joins,
		Subqueries: plan.Subqueries,
		Warnings:   plan.Warnings,
	}, nil
}
