// Package backoffice runs the advanced searches of the backoffice lists: it
// compiles the submitted rows for a resource, executes the query on the
// store and reports warnings and lifecycle events.
package backoffice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/asaidimu/backoffice-search/core/events"
	"github.com/asaidimu/backoffice-search/core/query"
	"github.com/asaidimu/backoffice-search/core/schema"
	"github.com/asaidimu/backoffice-search/core/search"
	"github.com/asaidimu/backoffice-search/sqlstore"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned for search requests that cannot be served,
// such as an unknown sort column or a negative limit.
var ErrInvalidRequest = errors.New("invalid search request")

// Default limits of a search.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Resource declares a searchable list.
type Resource struct {
	Name    string
	Table   string
	Tables  []schema.TableDefinition
	Catalog search.Catalog
	// SortFields are the base table columns a list can be sorted by. The
	// first one is the default.
	SortFields []string
	// ValidatedOffererField is the search field appended for requests
	// restricted to validated offerers.
	ValidatedOffererField string
}

// SearchRequest is a search submitted by a backoffice form.
type SearchRequest struct {
	Rows                  []search.FilterRow `json:"search"`
	Limit                 int                `json:"limit,omitempty"`
	Sort                  string             `json:"sort,omitempty"`
	Order                 string             `json:"order,omitempty"`
	OnlyValidatedOfferers bool               `json:"onlyValidatedOfferers,omitempty"`
}

// SearchResult holds the rows found and what the compiler did.
type SearchResult struct {
	Items      []schema.Document `json:"items"`
	HasMore    bool              `json:"hasMore"`
	Warnings   []string          `json:"warnings"`
	Joins      []string          `json:"joins"`
	Subqueries []string          `json:"subqueries"`
}

// Option configures a SearchService.
type Option func(*SearchService)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *SearchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEmitter publishes search events on emitter.
func WithEmitter(emitter *events.Emitter) Option {
	return func(s *SearchService) {
		s.emitter = emitter
	}
}

// WithLimits sets the default and maximum number of items returned.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *SearchService) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithLocation sets the time zone in which search dates are interpreted.
func WithLocation(location *time.Location) Option {
	return func(s *SearchService) {
		if location != nil {
			s.location = location
		}
	}
}

// SearchService searches one resource.
type SearchService struct {
	resource     Resource
	store        *sqlstore.Store
	compiler     *search.Compiler
	emitter      *events.Emitter
	logger       *zap.Logger
	location     *time.Location
	defaultLimit int
	maxLimit     int
}

// NewSearchService creates the service of a resource. The resource tables
// are registered on the store for row decoding.
func NewSearchService(resource Resource, store *sqlstore.Store, opts ...Option) (*SearchService, error) {
	s := &SearchService{
		resource:     resource,
		store:        store,
		logger:       zap.NewNop(),
		location:     time.UTC,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	if resource.Table == "" || len(resource.SortFields) == 0 {
		return nil, fmt.Errorf("resource %q needs a table and sort fields", resource.Name)
	}

	compiler, err := search.NewCompiler(resource.Catalog,
		search.WithLogger(s.logger.With(zap.String("resource", resource.Name))),
		search.WithLocation(s.location),
	)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", resource.Name, err)
	}
	s.compiler = compiler
	store.Register(resource.Tables...)
	return s, nil
}

// Resource returns the name of the searched resource.
func (s *SearchService) Resource() string {
	return s.resource.Name
}

// Fields describes the searchable fields.
func (s *SearchService) Fields() []search.FieldDescriptor {
	return s.compiler.Fields()
}

// Migrate creates the resource tables.
func (s *SearchService) Migrate(ctx context.Context) error {
	return s.store.Transact(ctx, func(tx *sqlstore.Store) error {
		for _, td := range s.resource.Tables {
			if err := tx.CreateTable(ctx, td); err != nil {
				return fmt.Errorf("failed to create table %s: %w", td.Name, err)
			}
		}
		return nil
	})
}

type params struct {
	limit     int
	sort      string
	direction query.SortDirection
}

func (s *SearchService) params(req SearchRequest) (params, error) {
	p := params{limit: req.Limit, sort: req.Sort, direction: query.SortDirectionDesc}
	switch {
	case p.limit < 0:
		return p, fmt.Errorf("%w: negative limit %d", ErrInvalidRequest, req.Limit)
	case p.limit == 0:
		p.limit = s.defaultLimit
	case p.limit > s.maxLimit:
		p.limit = s.maxLimit
	}
	if p.sort == "" {
		p.sort = s.resource.SortFields[0]
	} else if !slices.Contains(s.resource.SortFields, p.sort) {
		return p, fmt.Errorf("%w: cannot sort by %q", ErrInvalidRequest, req.Sort)
	}
	switch strings.ToLower(req.Order) {
	case "", "desc":
	case "asc":
		p.direction = query.SortDirectionAsc
	default:
		return p, fmt.Errorf("%w: unknown order %q", ErrInvalidRequest, req.Order)
	}
	return p, nil
}

// Search compiles and runs a search. One more row than the limit is read to
// tell whether more results exist. Rows the compiler cannot use are reported
// in the result warnings.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	start := time.Now()
	p, err := s.params(req)
	if err != nil {
		return nil, err
	}

	rows := slices.Clone(req.Rows)
	if req.OnlyValidatedOfferers && s.resource.ValidatedOffererField != "" {
		rows = append(rows, search.FilterRow{Field: s.resource.ValidatedOffererField, Operator: search.OperatorEquals, Value: true})
	}

	s.emit(ctx, events.NewEvent(events.SearchExecuteStart, "search", s.resource.Name, rows, nil, nil, time.Time{}), nil, nil)

	compiled, err := search.Compile(s.compiler, query.NewQueryBuilder(s.resource.Table).Distinct(), rows)
	if err != nil {
		s.logger.Error("Failed to compile search", zap.String("resource", s.resource.Name), zap.Error(err))
		s.emit(ctx, events.NewEvent(events.SearchCompileFailed, "compile", s.resource.Name, rows, nil, err, start), nil, nil)
		return nil, fmt.Errorf("failed to compile %s search: %w", s.resource.Name, err)
	}
	s.emit(ctx, events.NewEvent(events.SearchCompileSuccess, "compile", s.resource.Name, rows, nil, nil, start), compiled.Warnings, compiled.Joins)

	b := compiled.Query.OrderBy(s.resource.Table+"."+p.sort, p.direction)
	if p.sort != "id" && slices.Contains(s.resource.SortFields, "id") {
		b = b.OrderBy(s.resource.Table+".id", p.direction)
	}
	dsl := b.Limit(p.limit + 1).Build()

	docs, err := s.store.Select(ctx, &dsl)
	if err != nil {
		s.logger.Error("Failed to execute search", zap.String("resource", s.resource.Name), zap.Error(err))
		s.emit(ctx, events.NewEvent(events.SearchExecuteFailed, "search", s.resource.Name, rows, nil, err, start), compiled.Warnings, compiled.Joins)
		return nil, fmt.Errorf("failed to execute %s search: %w", s.resource.Name, err)
	}

	result := &SearchResult{
		Items:      docs,
		Warnings:   nonNil(compiled.Warnings),
		Joins:      nonNil(compiled.Joins),
		Subqueries: nonNil(compiled.Subqueries),
	}
	if len(docs) > p.limit {
		result.Items = docs[:p.limit]
		result.HasMore = true
	}

	for _, w := range result.Warnings {
		s.logger.Warn("Search row ignored", zap.String("resource", s.resource.Name), zap.String("warning", w))
	}
	s.emit(ctx, events.NewEvent(events.SearchExecuteSuccess, "search", s.resource.Name, rows, len(result.Items), nil, start), compiled.Warnings, compiled.Joins)
	return result, nil
}

func (s *SearchService) emit(ctx context.Context, ev events.SearchEvent, warnings, joins []string) {
	ev.Warnings = warnings
	ev.Joins = joins
	ev.RequestID = RequestIDFrom(ctx)
	s.emitter.Emit(ev)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the correlation id of a request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
