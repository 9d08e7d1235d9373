package sort

import (
	"strings"

	"rga/api/models/constants"
)

// Record pages are ordered by record id in one of these directions.
const (
	Undefined  constants.SortDirection = ""
	Ascending  constants.SortDirection = "asc"
	Descending constants.SortDirection = "desc"
)

func CastToSortDirection(text string) constants.SortDirection {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "asc", "ascending":
		return Ascending
	case "desc", "descending":
		return Descending
	default:
		return Undefined
	}
}

// Less orders two record ids in the given direction; Undefined sorts
// ascending.
func Less(direction constants.SortDirection, a string, b string) bool {
	if direction == Descending {
		return a > b
	}
	return a < b
}
