package search

import "slices"

// Operator is a search operator as submitted by the backoffice search forms.
type Operator string

// Supported search operators.
const (
	OperatorEquals               Operator = "EQUALS"
	OperatorNotEquals            Operator = "NOT_EQUALS"
	OperatorNameEquals           Operator = "NAME_EQUALS"
	OperatorNameNotEquals        Operator = "NAME_NOT_EQUALS"
	OperatorNumberEquals         Operator = "NUMBER_EQUALS"
	OperatorNumberNotEquals      Operator = "NUMBER_NOT_EQUALS"
	OperatorGreaterThan          Operator = "GREATER_THAN"
	OperatorGreaterThanOrEqualTo Operator = "GREATER_THAN_OR_EQUAL_TO"
	OperatorLessThan             Operator = "LESS_THAN"
	OperatorLessThanOrEqualTo    Operator = "LESS_THAN_OR_EQUAL_TO"
	OperatorIn                   Operator = "IN"
	OperatorNotIn                Operator = "NOT_IN"
	OperatorNotExist             Operator = "NOT_EXIST"
	OperatorContains             Operator = "CONTAINS"
	OperatorNoContains           Operator = "NO_CONTAINS"
	OperatorDateFrom             Operator = "DATE_FROM"
	OperatorDateTo               Operator = "DATE_TO"
	OperatorDateEquals           Operator = "DATE_EQUALS"
	OperatorNullable             Operator = "NULLABLE"
	OperatorIsNull               Operator = "IS_NULL"
	OperatorIsNotNull            Operator = "IS_NOT_NULL"
)

var operators = map[Operator]struct{}{
	OperatorEquals:               {},
	OperatorNotEquals:            {},
	OperatorNameEquals:           {},
	OperatorNameNotEquals:        {},
	OperatorNumberEquals:         {},
	OperatorNumberNotEquals:      {},
	OperatorGreaterThan:          {},
	OperatorGreaterThanOrEqualTo: {},
	OperatorLessThan:             {},
	OperatorLessThanOrEqualTo:    {},
	OperatorIn:                   {},
	OperatorNotIn:                {},
	OperatorNotExist:             {},
	OperatorContains:             {},
	OperatorNoContains:           {},
	OperatorDateFrom:             {},
	OperatorDateTo:               {},
	OperatorDateEquals:           {},
	OperatorNullable:             {},
	OperatorIsNull:               {},
	OperatorIsNotNull:            {},
}

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	_, ok := operators[o]
	return ok
}

// NeedsValue reports whether a row using o must carry a value to be taken
// into account.
func (o Operator) NeedsValue() bool {
	switch o {
	case OperatorNotExist, OperatorIsNull, OperatorIsNotNull:
		return false
	}
	return true
}

// IsList reports whether o takes the whole value list at once rather than
// one condition per value.
func (o Operator) IsList() bool {
	return o == OperatorIn || o == OperatorNotIn
}

// IsNegative reports whether per-value conditions of o are combined with AND.
func (o Operator) IsNegative() bool {
	switch o {
	case OperatorNotEquals, OperatorNameNotEquals, OperatorNumberNotEquals, OperatorNoContains:
		return true
	}
	return false
}

// FieldKind is the semantic kind of a searchable field. It selects the value
// coercion and the default operator set.
type FieldKind string

// Supported field kinds.
const (
	KindString     FieldKind = "string"
	KindInteger    FieldKind = "integer"
	KindNumber     FieldKind = "number"
	KindDate       FieldKind = "date"
	KindBoolean    FieldKind = "boolean"
	KindEnum       FieldKind = "enum"
	KindRelation   FieldKind = "relation"
	KindCollection FieldKind = "collection"
	KindComputed   FieldKind = "computed"
)

var kindOperators = map[FieldKind][]Operator{
	KindString: {
		OperatorEquals, OperatorNotEquals, OperatorNameEquals, OperatorNameNotEquals,
		OperatorContains, OperatorNoContains, OperatorIn, OperatorNotIn,
		OperatorIsNull, OperatorIsNotNull,
	},
	KindInteger: {
		OperatorEquals, OperatorNotEquals, OperatorNumberEquals, OperatorNumberNotEquals,
		OperatorGreaterThan, OperatorGreaterThanOrEqualTo, OperatorLessThan, OperatorLessThanOrEqualTo,
		OperatorIn, OperatorNotIn, OperatorIsNull, OperatorIsNotNull,
	},
	KindNumber: {
		OperatorEquals, OperatorNotEquals, OperatorNumberEquals, OperatorNumberNotEquals,
		OperatorGreaterThan, OperatorGreaterThanOrEqualTo, OperatorLessThan, OperatorLessThanOrEqualTo,
		OperatorIsNull, OperatorIsNotNull,
	},
	KindDate: {
		OperatorDateFrom, OperatorDateTo, OperatorDateEquals, OperatorIsNull, OperatorIsNotNull,
	},
	KindBoolean: {
		OperatorEquals, OperatorNotEquals, OperatorNullable,
	},
	KindEnum: {
		OperatorIn, OperatorNotIn, OperatorEquals, OperatorNotEquals,
	},
	KindRelation: {
		OperatorIn, OperatorNotIn, OperatorIsNull, OperatorIsNotNull,
	},
	KindCollection: {
		OperatorIn, OperatorNotIn, OperatorNotExist,
	},
	KindComputed: {
		OperatorIn, OperatorNotIn, OperatorEquals,
	},
}

// OperatorsFor returns the default operators of a field kind.
func OperatorsFor(kind FieldKind) []Operator {
	return slices.Clone(kindOperators[kind])
}

// Valid reports whether k is a known kind.
func (k FieldKind) Valid() bool {
	_, ok := kindOperators[k]
	return ok
}
