package offers

import (
	"fmt"
	"time"

	"github.com/asaidimu/backoffice-search/core/query"
	"github.com/asaidimu/backoffice-search/core/search"
)

// Offer statuses displayed by the backoffice.
const (
	StatusActive   = "ACTIVE"
	StatusSoldOut  = "SOLD_OUT"
	StatusExpired  = "EXPIRED"
	StatusInactive = "INACTIVE"
	StatusPending  = "PENDING"
	StatusRejected = "REJECTED"
	StatusDraft    = "DRAFT"
)

// Statuses lists every offer status.
var Statuses = []string{StatusActive, StatusSoldOut, StatusExpired, StatusInactive, StatusPending, StatusRejected, StatusDraft}

// statusFilter derives the status predicates from validation, activity and
// the offer stocks at a given instant:
//
//   - PENDING, REJECTED and DRAFT follow the validation state;
//   - INACTIVE is an approved offer that was deactivated;
//   - EXPIRED is an approved active offer whose stocks all passed their
//     booking limit;
//   - SOLD_OUT is an approved active offer without any bookable stock that
//     is not expired;
//   - ACTIVE is an approved active offer with a bookable stock.
type statusFilter struct {
	now func() time.Time
}

func (s statusFilter) stock(where ...query.QueryFilter) []query.QueryFilter {
	return append([]query.QueryFilter{
		query.Eq("status_stock.offerId", query.Column("offer.id")),
		query.Eq("status_stock.isSoftDeleted", false),
	}, where...)
}

func (s statusFilter) bookable(now time.Time) query.QueryFilter {
	return query.Exists("stock", "status_stock", s.stock(
		query.Or(
			query.IsNull("status_stock.bookingLimitDatetime"),
			query.Cond("status_stock.bookingLimitDatetime", query.ComparisonOperatorGt, now),
		),
		query.Or(
			query.IsNull("status_stock.quantity"),
			query.Cond("status_stock.quantity", query.ComparisonOperatorGt, query.Column("status_stock.dnBookedQuantity")),
		),
	)...)
}

func (s statusFilter) expired(now time.Time) query.QueryFilter {
	return query.And(
		query.Exists("stock", "status_stock", s.stock()...),
		query.NotExists("stock", "status_stock", s.stock(
			query.Or(
				query.IsNull("status_stock.bookingLimitDatetime"),
				query.Cond("status_stock.bookingLimitDatetime", query.ComparisonOperatorGte, now),
			),
		)...),
	)
}

func (s statusFilter) status(status string, now time.Time) (query.QueryFilter, error) {
	approvedActive := query.And(
		query.Eq("offer.validation", ValidationApproved),
		query.Eq("offer.isActive", true),
	)
	switch status {
	case StatusPending, StatusRejected, StatusDraft:
		return query.Eq("offer.validation", status), nil
	case StatusInactive:
		return query.And(query.Eq("offer.validation", ValidationApproved), query.Eq("offer.isActive", false)), nil
	case StatusActive:
		return query.And(approvedActive, s.bookable(now)), nil
	case StatusExpired:
		return query.And(approvedActive, s.expired(now)), nil
	case StatusSoldOut:
		return query.And(approvedActive, query.Not(s.bookable(now)), query.Not(s.expired(now))), nil
	}
	return query.QueryFilter{}, fmt.Errorf("unknown offer status %q", status)
}

// compute builds the predicate of the STATUS field.
func (s statusFilter) compute(op search.Operator, value any) (query.QueryFilter, error) {
	var statuses []string
	switch v := value.(type) {
	case string:
		statuses = []string{v}
	case []any:
		for _, item := range v {
			statuses = append(statuses, fmt.Sprint(item))
		}
	default:
		return query.QueryFilter{}, fmt.Errorf("unexpected status value %v", value)
	}

	now := s.now()
	filters := make([]query.QueryFilter, 0, len(statuses))
	for _, status := range statuses {
		f, err := s.status(status, now)
		if err != nil {
			return query.QueryFilter{}, err
		}
		filters = append(filters, f)
	}
	if op == search.OperatorNotIn {
		return query.Not(query.Or(filters...)), nil
	}
	return query.Or(filters...), nil
}
