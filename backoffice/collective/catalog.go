// Package collective declares the searchable collective (educational) offer
// resource of the backoffice.
package collective

import (
	"github.com/asaidimu/backoffice-search/backoffice"
	"github.com/asaidimu/backoffice-search/backoffice/regions"
	"github.com/asaidimu/backoffice-search/core/query"
	"github.com/asaidimu/backoffice-search/core/search"
)

// Names of the collective offer resource and of its base table.
const (
	Resource = "collective-offers"
	Table    = "collective_offer"
)

var (
	joinStock = search.JoinStep{Name: "stock", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "collective_stock",
		Alias:       "stock",
		On:          query.Eq("stock.collectiveOfferId", query.Column("collective_offer.id")),
	}}
	joinVenue = search.JoinStep{Name: "venue", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "venue",
		On:          query.Eq("venue.id", query.Column("collective_offer.venueId")),
	}}
	joinOfferer = search.JoinStep{Name: "offerer", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "offerer",
		On:          query.Eq("offerer.id", query.Column("venue.managingOffererId")),
	}}
	joinFormat = search.JoinStep{Name: "format", Join: query.JoinConfiguration{
		Type:        query.JoinTypeInner,
		TargetTable: "collective_offer_format",
		Alias:       "format",
		On:          query.Eq("format.collectiveOfferId", query.Column("collective_offer.id")),
	}}
)

// NewCatalog returns the collective offer search catalog.
func NewCatalog() search.Catalog {
	listOperators := backoffice.ListOperators
	return search.Catalog{
		Fields: map[string]search.FieldSpec{
			"ID": {
				Label:     "Offer ID",
				Kind:      search.KindInteger,
				Column:    "collective_offer.id",
				Transform: search.ExtractIDs,
				Operators: listOperators,
			},
			"NAME": {Label: "Name", Kind: search.KindString, Column: "collective_offer.name"},
			"FORMATS": {
				Label:   "Formats",
				Kind:    search.KindCollection,
				Column:  "format.format",
				Join:    "format",
				Choices: Formats,
				Relation: &search.RelationSpec{
					Table:         "collective_offer_format",
					Alias:         "excluded_format",
					OwnerColumn:   "collectiveOfferId",
					ForeignColumn: "collective_offer.id",
					ValueColumn:   "format",
				},
			},
			"INSTITUTION":   {Label: "Institution", Kind: search.KindRelation, Column: "collective_offer.institutionId"},
			"CREATION_DATE": {Label: "Creation date", Kind: search.KindDate, Column: "collective_offer.dateCreated"},
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
			"EVENT_DATE":         {Label: "Event date", Kind: search.KindDate, Column: "stock.beginningDatetime", Join: "stock"},
			"BOOKING_LIMIT_DATE": {Label: "Booking limit date", Kind: search.KindDate, Column: "stock.bookingLimitDatetime", Join: "stock"},
			"PRICE":              {Label: "Price", Kind: search.KindNumber, Column: "stock.price", Join: "stock"},
			"OFFERER":            {Label: "Offerer", Kind: search.KindRelation, Column: "venue.managingOffererId", Join: "venue"},
			"VENUE":              {Label: "Venue", Kind: search.KindRelation, Column: "collective_offer.venueId"},
			"STATUS": {
				Label:     "Status",
				Kind:      search.KindEnum,
				Column:    "collective_offer.status",
				Choices:   Statuses,
				Operators: listOperators,
			},
			"VALIDATION": {Label: "Validation", Kind: search.KindEnum, Column: "collective_offer.validation", Choices: ValidationStates},
			"VALIDATED_OFFERER": {
				Label:     "Validated offerer",
				Kind:      search.KindBoolean,
				Column:    "offerer.isValidated",
				Join:      "offerer",
				Operators: []search.Operator{search.OperatorEquals},
			},
		},
		Joins: []search.JoinSpec{
			{Name: "format", Steps: []search.JoinStep{joinFormat}},
			{Name: "stock", Steps: []search.JoinStep{joinStock}},
			{Name: "venue", Steps: []search.JoinStep{joinVenue}},
			{Name: "offerer", Steps: []search.JoinStep{joinVenue, joinOfferer}},
		},
	}
}

// NewResource returns the collective offer list resource.
func NewResource() backoffice.Resource {
	return backoffice.Resource{
		Name:                  Resource,
		Table:                 Table,
		Tables:                Tables(),
		Catalog:               NewCatalog(),
		SortFields:            []string{"dateCreated", "id", "name"},
		ValidatedOffererField: "VALIDATED_OFFERER",
	}
}
