package offers

import (
	"github.com/asaidimu/backoffice-search/backoffice"
	"github.com/asaidimu/backoffice-search/core/schema"
)

// Validation states of an offer.
const (
	ValidationDraft    = "DRAFT"
	ValidationPending  = "PENDING"
	ValidationApproved = "APPROVED"
	ValidationRejected = "REJECTED"
)

// ValidationStates lists the validation states in workflow order.
var ValidationStates = []string{ValidationDraft, ValidationPending, ValidationApproved, ValidationRejected}

// Tables returns the tables searched for offers, referenced tables first.
func Tables() []schema.TableDefinition {
	return []schema.TableDefinition{
		backoffice.OffererTable(),
		backoffice.VenueTable(),
		{
			Name: "offerer_address",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "label", Type: schema.ColumnTypeString},
				{Name: "addressId", Type: schema.ColumnTypeInteger, Required: true},
				{Name: "offererId", Type: schema.ColumnTypeInteger, Required: true, References: "offerer.id"},
			},
			Indexes: []schema.IndexDefinition{
				{Name: "idx_offerer_address_address", Fields: []string{"addressId"}, Type: schema.IndexTypeNormal},
			},
		},
		{
			Name: "offer",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "name", Type: schema.ColumnTypeString, Required: true},
				{Name: "ean", Type: schema.ColumnTypeString},
				{Name: "subcategoryId", Type: schema.ColumnTypeString, Required: true},
				{Name: "venueId", Type: schema.ColumnTypeInteger, Required: true, References: "venue.id"},
				{Name: "dateCreated", Type: schema.ColumnTypeTimestamp, Required: true},
				{Name: "validation", Type: schema.ColumnTypeEnum, Required: true, Default: ValidationDraft, Values: ValidationStates},
				{Name: "isActive", Type: schema.ColumnTypeBoolean, Required: true, Default: true},
				{Name: "idAtProvider", Type: schema.ColumnTypeString},
				{Name: "lastProviderId", Type: schema.ColumnTypeInteger},
				{Name: "productId", Type: schema.ColumnTypeInteger},
				{Name: "offererAddressId", Type: schema.ColumnTypeInteger, References: "offerer_address.id"},
			},
			Indexes: []schema.IndexDefinition{
				{Name: "idx_offer_venue", Fields: []string{"venueId"}, Type: schema.IndexTypeNormal},
				{Name: "idx_offer_subcategory", Fields: []string{"subcategoryId"}, Type: schema.IndexTypeNormal},
				{Name: "idx_offer_ean", Fields: []string{"ean"}, Type: schema.IndexTypeNormal},
				{Name: "idx_offer_product", Fields: []string{"productId"}, Type: schema.IndexTypeNormal},
			},
		},
		{
			Name: "stock",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "offerId", Type: schema.ColumnTypeInteger, Required: true, References: "offer.id"},
				{Name: "price", Type: schema.ColumnTypeNumber, Required: true},
				// A NULL quantity is an unlimited stock.
				{Name: "quantity", Type: schema.ColumnTypeInteger},
				{Name: "dnBookedQuantity", Type: schema.ColumnTypeInteger, Required: true, Default: 0},
				{Name: "beginningDatetime", Type: schema.ColumnTypeTimestamp},
				{Name: "bookingLimitDatetime", Type: schema.ColumnTypeTimestamp},
				{Name: "isSoftDeleted", Type: schema.ColumnTypeBoolean, Required: true, Default: false},
			},
			Indexes: []schema.IndexDefinition{
				{Name: "idx_stock_offer", Fields: []string{"offerId"}, Type: schema.IndexTypeNormal},
			},
		},
		{
			Name: "criterion",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "name", Type: schema.ColumnTypeString, Required: true, Unique: true},
			},
		},
		{
			Name: "offer_criterion",
			Columns: []schema.ColumnDefinition{
				{Name: "offerId", Type: schema.ColumnTypeInteger, Required: true, References: "offer.id"},
				{Name: "criterionId", Type: schema.ColumnTypeInteger, Required: true, References: "criterion.id"},
			},
			Indexes: []schema.IndexDefinition{
				{Fields: []string{"offerId", "criterionId"}, Type: schema.IndexTypePrimary},
				{Name: "idx_offer_criterion_criterion", Fields: []string{"criterionId"}, Type: schema.IndexTypeNormal},
			},
		},
		{
			Name: "mediation",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "offerId", Type: schema.ColumnTypeInteger, Required: true, References: "offer.id"},
				{Name: "isActive", Type: schema.ColumnTypeBoolean, Required: true, Default: true},
				{Name: "dateCreated", Type: schema.ColumnTypeTimestamp},
			},
			Indexes: []schema.IndexDefinition{
				{Name: "idx_mediation_offer", Fields: []string{"offerId"}, Type: schema.IndexTypeNormal},
			},
		},
		{
			Name: "headline_offer",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true},
				{Name: "offerId", Type: schema.ColumnTypeInteger, Required: true, References: "offer.id"},
				{Name: "isActive", Type: schema.ColumnTypeBoolean, Required: true, Default: true},
			},
			Indexes: []schema.IndexDefinition{
				{Name: "idx_headline_offer_offer", Fields: []string{"offerId"}, Type: schema.IndexTypeNormal},
			},
		},
	}
}
