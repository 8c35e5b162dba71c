// Package offers declares the searchable offer resource of the backoffice:
// its tables, the fields of the advanced search and how they are reached.
package offers

import (
	"time"

	"github.com/asaidimu/backoffice-search/backoffice"
	"github.com/asaidimu/backoffice-search/backoffice/regions"
	"github.com/asaidimu/backoffice-search/core/query"
	"github.com/asaidimu/backoffice-search/core/search"
)

// Resource is the name of the offer resource in the API.
const Resource = "offers"

// Table is the base table of offer searches.
const Table = "offer"

var (
	joinVenue = search.JoinStep{Name: "venue", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "venue",
		On:          query.Eq("venue.id", query.Column("offer.venueId")),
	}}
	joinOfferer = search.JoinStep{Name: "offerer", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "offerer",
		On:          query.Eq("offerer.id", query.Column("venue.managingOffererId")),
	}}
	joinOfferCriterion = search.JoinStep{Name: "offer_criterion", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "offer_criterion",
		On:          query.Eq("offer_criterion.offerId", query.Column("offer.id")),
	}}
	joinOffererAddress = search.JoinStep{Name: "offerer_address", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "offerer_address",
		On:          query.Eq("offerer_address.id", query.Column("offer.offererAddressId")),
	}}
	joinCriterion = search.JoinStep{Name: "criterion", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "criterion",
		On:          query.Eq("criterion.id", query.Column("offer_criterion.criterionId")),
	}}
)

func notSoftDeleted() *query.QueryFilter {
	f := query.Eq("isSoftDeleted", false)
	return &f
}

// bookableAndReleased restricts price searches to stocks that can still be
// booked on offers that are visible.
func bookableAndReleased() *query.QueryFilter {
	f := query.And(
		query.Or(
			query.IsNull("stock.quantity"),
			query.Cond("stock.quantity", query.ComparisonOperatorGt, query.Column("stock.dnBookedQuantity")),
		),
		query.Eq("offer.isActive", true),
		query.Eq("offer.validation", ValidationApproved),
	)
	return &f
}

func categoriesToSubcategories(value any) (any, []string) {
	return SubcategoriesOf(backoffice.StringValues(value)), nil
}

func mediationFilter(value any) (query.QueryFilter, error) {
	f := query.Exists("mediation", "",
		query.Eq("mediation.offerId", query.Column("offer.id")),
		query.Eq("mediation.isActive", true),
	)
	if hasMediation, _ := value.(bool); hasMediation {
		return f, nil
	}
	return query.Not(f), nil
}

func headlineFilter(value any) (query.QueryFilter, error) {
	f := query.Exists("headline_offer", "",
		query.Eq("headline_offer.offerId", query.Column("offer.id")),
		query.Eq("headline_offer.isActive", true),
	)
	if headline, _ := value.(bool); headline {
		return f, nil
	}
	return query.Not(f), nil
}

// sameProduct matches offers sharing the product of the offer ids given.
func sameProduct(negate bool) search.PredicateFunc {
	return func(value any) (query.QueryFilter, error) {
		ids, ok := value.([]any)
		if !ok {
			ids = []any{value}
		}
		filters := make([]query.QueryFilter, 0, len(ids))
		for _, id := range ids {
			f := query.Exists("offer", "same_product",
				query.Eq("same_product.id", id),
				query.Eq("same_product.productId", query.Column("offer.productId")),
			)
			if negate {
				f = query.Not(f)
			}
			filters = append(filters, f)
		}
		if negate {
			return query.And(filters...), nil
		}
		return query.Or(filters...), nil
	}
}

// NewCatalog returns the offer search catalog. now is read each time a
// STATUS row is compiled; nil means time.Now.
func NewCatalog(now func() time.Time) search.Catalog {
	if now == nil {
		now = time.Now
	}
	status := statusFilter{now: func() time.Time { return now().UTC() }}
	listOperators := backoffice.ListOperators

	return search.Catalog{
		Fields: map[string]search.FieldSpec{
			"ID": {
				Label:     "Offer ID",
				Kind:      search.KindInteger,
				Column:    "offer.id",
				Transform: search.ExtractIDs,
				Operators: listOperators,
			},
			"NAME": {
				Label:  "Name",
				Kind:   search.KindString,
				Column: "offer.name",
			},
			"EAN": {
				Label:     "EAN",
				Kind:      search.KindString,
				Column:    "offer.ean",
				Transform: search.FormatEANOrVisa,
			},
			"PRODUCT": {
				Label:     "Product of offer",
				Kind:      search.KindInteger,
				Column:    "offer.productId",
				Operators: []search.Operator{search.OperatorNumberEquals, search.OperatorNumberNotEquals},
				CustomFilters: map[search.Operator]search.PredicateFunc{
					search.OperatorNumberEquals:    sameProduct(false),
					search.OperatorNumberNotEquals: sameProduct(true),
				},
			},
			"CATEGORY": {
				Label:     "Category",
				Kind:      search.KindString,
				Column:    "offer.subcategoryId",
				Operators: listOperators,
				Choices:   CategoryIDs(),
				Transform: categoriesToSubcategories,
			},
			"SUBCATEGORY": {
				Label:     "Subcategory",
				Kind:      search.KindString,
				Column:    "offer.subcategoryId",
				Operators: listOperators,
				Choices:   SubcategoryIDs(),
			},
			"CREATION_DATE": {
				Label:  "Creation date",
				Kind:   search.KindDate,
				Column: "offer.dateCreated",
			},
			"DEPARTMENT": {
				Label:     "Department",
				Kind:      search.KindString,
				Column:    "venue.departementCode",
				Join:      "venue",
				Operators: listOperators,
			},
			"REGION": {
				Label:     "Region",
				Kind:      search.KindString,
				Column:    "venue.departementCode",
				Join:      "venue",
				Operators: listOperators,
				Choices:   regions.Names(),
				Transform: backoffice.RegionsToDepartments,
			},
			"ADDRESS": {
				Label:  "Address",
				Kind:   search.KindRelation,
				Column: "offerer_address.addressId",
				Join:   "offerer_address",
			},
			"EVENT_DATE": {
				Label:    "Event date",
				Kind:     search.KindDate,
				Column:   "stock.beginningDatetime",
				Subquery: "stock",
			},
			"BOOKING_LIMIT_DATE": {
				Label:    "Booking limit date",
				Kind:     search.KindDate,
				Column:   "stock.bookingLimitDatetime",
				Subquery: "stock",
			},
			"PRICE": {
				Label:              "Price",
				Kind:               search.KindNumber,
				Column:             "stock.price",
				Subquery:           "stock",
				AllOperatorsFilter: bookableAndReleased(),
			},
			"STOCK_COUNT": {
				Label:    "Stock count",
				Kind:     search.KindInteger,
				Column:   "stock_count.count",
				Subquery: "stock_count",
				Coalesce: 0,
				Operators: []search.Operator{
					search.OperatorNumberEquals,
					search.OperatorNumberNotEquals,
					search.OperatorGreaterThan,
					search.OperatorGreaterThanOrEqualTo,
					search.OperatorLessThan,
					search.OperatorLessThanOrEqualTo,
				},
			},
			"TAG": {
				Label:  "Tag",
				Kind:   search.KindCollection,
				Column: "criterion.id",
				Join:   "criterion",
				Relation: &search.RelationSpec{
					Table:         "offer_criterion",
					Alias:         "excluded_criterion",
					OwnerColumn:   "offerId",
					ForeignColumn: "offer.id",
					ValueColumn:   "criterionId",
				},
			},
			"OFFERER": {
				Label:  "Offerer",
				Kind:   search.KindRelation,
				Column: "venue.managingOffererId",
				Join:   "venue",
			},
			"VENUE": {
				Label:  "Venue",
				Kind:   search.KindRelation,
				Column: "offer.venueId",
			},
			"PROVIDER": {
				Label:  "Provider",
				Kind:   search.KindRelation,
				Column: "offer.lastProviderId",
			},
			"VALIDATED_OFFERER": {
				Label:     "Validated offerer",
				Kind:      search.KindBoolean,
				Column:    "offerer.isValidated",
				Join:      "offerer",
				Operators: []search.Operator{search.OperatorEquals},
			},
			"VALIDATION": {
				Label:   "Validation",
				Kind:    search.KindEnum,
				Column:  "offer.validation",
				Choices: ValidationStates,
			},
			"STATUS": {
				Label:   "Status",
				Kind:    search.KindComputed,
				Choices: Statuses,
				Compute: status.compute,
			},
			"SYNCHRONIZED": {
				Label:     "Synchronized",
				Kind:      search.KindBoolean,
				Column:    "offer.idAtProvider",
				Operators: []search.Operator{search.OperatorNullable},
				Transform: search.Negate,
			},
			"HEADLINE": {
				Label:     "Headline",
				Kind:      search.KindBoolean,
				Operators: []search.Operator{search.OperatorEquals},
				CustomFilters: map[search.Operator]search.PredicateFunc{
					search.OperatorEquals: headlineFilter,
				},
			},
			"MEDIATION": {
				Label:     "Image",
				Kind:      search.KindBoolean,
				Operators: []search.Operator{search.OperatorNullable},
				CustomFilters: map[search.Operator]search.PredicateFunc{
					search.OperatorNullable: mediationFilter,
				},
			},
		},
		Joins: []search.JoinSpec{
			{Name: "criterion", Steps: []search.JoinStep{joinOfferCriterion, joinCriterion}},
			{Name: "venue", Steps: []search.JoinStep{joinVenue}},
			{Name: "offerer", Steps: []search.JoinStep{joinVenue, joinOfferer}},
			{Name: "offerer_address", Steps: []search.JoinStep{joinOffererAddress}},
		},
		Subqueries: []search.SubquerySpec{
			{Name: "stock", Subquery: query.SubqueryConfiguration{
				Type:    query.JoinTypeInner,
				Table:   "stock",
				Alias:   "stock",
				Columns: []string{"offerId", "price", "quantity", "dnBookedQuantity", "beginningDatetime", "bookingLimitDatetime"},
				Where:   notSoftDeleted(),
				On:      query.Eq("stock.offerId", query.Column("offer.id")),
			}},
			{Name: "stock_count", Subquery: query.SubqueryConfiguration{
				Type:         query.JoinTypeLeft,
				Table:        "stock",
				Alias:        "stock_count",
				Columns:      []string{"offerId"},
				Aggregations: []query.AggregationConfiguration{{Type: query.AggregationTypeCount, Field: "id", Alias: "count"}},
				Where:        notSoftDeleted(),
				GroupBy:      []string{"offerId"},
				On:           query.Eq("stock_count.offerId", query.Column("offer.id")),
			}},
		},
	}
}

// NewResource returns the offer list resource.
func NewResource(now func() time.Time) backoffice.Resource {
	return backoffice.Resource{
		Name:                  Resource,
		Table:                 Table,
		Tables:                Tables(),
		Catalog:               NewCatalog(now),
		SortFields:            []string{"dateCreated", "id", "name"},
		ValidatedOffererField: "VALIDATED_OFFERER",
	}
}
