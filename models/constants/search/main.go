package search

import (
	"rga/api/models/constants"
	"strings"
)

// Comparison operators of population frequency constraints.
const (
	SEARCH_OP_LT constants.SearchOperation = "<"
	SEARCH_OP_LE constants.SearchOperation = "<="
	SEARCH_OP_GT constants.SearchOperation = ">"
	SEARCH_OP_GE constants.SearchOperation = ">="
)

func CastToSearchOperation(text string) (constants.SearchOperation, bool) {
	switch op := constants.SearchOperation(strings.TrimSpace(text)); op {
	case SEARCH_OP_LT, SEARCH_OP_LE, SEARCH_OP_GT, SEARCH_OP_GE:
		return op, true
	default:
		return "", false
	}
}

// Compare reports whether "a op b" holds. Unknown operators never hold.
func Compare(op constants.SearchOperation, a float64, b float64) bool {
	switch op {
	case SEARCH_OP_LT:
		return a < b
	case SEARCH_OP_LE:
		return a <= b
	case SEARCH_OP_GT:
		return a > b
	case SEARCH_OP_GE:
		return a >= b
	}
	return false
}
