package collective

import (
	"github.com/asaidimu/backoffice-search/backoffice"
	"github.com/asaidimu/backoffice-search/core/schema"
)

// Formats of educational offers.
var Formats = []string{
	"ATELIER_DE_PRATIQUE",
	"CONCERT",
	"CONFERENCE_RENCONTRE",
	"FESTIVAL_SALON_CONGRES",
	"PROJECTION_AUDIOVISUELLE",
	"REPRESENTATION",
	"VISITE_GUIDEE",
	"VISITE_LIBRE",
}

// Statuses of a collective offer, as stored on the offer.
var Statuses = []string{"ACTIVE", "PENDING", "EXPIRED", "REJECTED", "SOLD_OUT", "INACTIVE", "DRAFT", "ARCHIVED"}

// ValidationStates of a collective offer.
var ValidationStates = []string{"DRAFT", "PENDING", "APPROVED", "REJECTED"}

// Tables returns the tables searched for collective offers, referenced
// tables first.
func Tables() []schema.TableDefinition {
	return []schema.TableDefinition{
		backoffice.OffererTable(),
		backoffice.VenueTable(),
		{
			Name: "educational_institution",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "institutionId", Type: schema.ColumnTypeString, Required: true, Unique: true},
				{Name: "name", Type: schema.ColumnTypeString, Required: true},
				{Name: "city", Type: schema.ColumnTypeString},
			},
		},
		{
			Name: "collective_offer",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "name", Type: schema.ColumnTypeString, Required: true},
				{Name: "venueId", Type: schema.ColumnTypeInteger, Required: true, References: "venue.id"},
				{Name: "institutionId", Type: schema.ColumnTypeInteger, References: "educational_institution.id"},
				{Name: "dateCreated", Type: schema.ColumnTypeTimestamp, Required: true},
				{Name: "status", Type: schema.ColumnTypeEnum, Required: true, Default: "DRAFT", Values: Statuses},
				{Name: "validation", Type: schema.ColumnTypeEnum, Required: true, Default: "DRAFT", Values: ValidationStates},
			},
			Indexes: []schema.IndexDefinition{
				{Name: "idx_collective_offer_venue", Fields: []string{"venueId"}, Type: schema.IndexTypeNormal},
				{Name: "idx_collective_offer_institution", Fields: []string{"institutionId"}, Type: schema.IndexTypeNormal},
			},
		},
		{
			Name: "collective_offer_format",
			Columns: []schema.ColumnDefinition{
				{Name: "collectiveOfferId", Type: schema.ColumnTypeInteger, Required: true, References: "collective_offer.id"},
				{Name: "format", Type: schema.ColumnTypeEnum, Required: true, Values: Formats},
			},
			Indexes: []schema.IndexDefinition{
				{Fields: []string{"collectiveOfferId", "format"}, Type: schema.IndexTypePrimary},
			},
		},
		{
			// One stock per collective offer.
			Name: "collective_stock",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "collectiveOfferId", Type: schema.ColumnTypeInteger, Required: true, Unique: true, References: "collective_offer.id"},
				{Name: "price", Type: schema.ColumnTypeNumber, Required: true},
				{Name: "numberOfTickets", Type: schema.ColumnTypeInteger},
				{Name: "beginningDatetime", Type: schema.ColumnTypeTimestamp},
				{Name: "bookingLimitDatetime", Type: schema.ColumnTypeTimestamp},
			},
		},
	}
}
