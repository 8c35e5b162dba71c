package backoffice

import (
	"fmt"

	"github.com/asaidimu/backoffice-search/backoffice/regions"
	"github.com/asaidimu/backoffice-search/core/search"
)

// ListOperators are the operators of multiple choice fields.
var ListOperators = []search.Operator{search.OperatorIn, search.OperatorNotIn}

// StringValues reads a form value holding one or several strings.
func StringValues(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

// RegionsToDepartments replaces region names by their department codes.
func RegionsToDepartments(value any) (any, []string) {
	return regions.DepartmentCodesForRegions(StringValues(value)), nil
}
