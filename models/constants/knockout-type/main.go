package knockoutType

import (
	"rga/api/models/constants"
	"strings"
)

const (
	HomAlt          constants.KnockoutType = "HOM_ALT"
	HetAlt          constants.KnockoutType = "HET_ALT"
	CompHet         constants.KnockoutType = "COMP_HET"
	DeletionOverlap constants.KnockoutType = "DELETION_OVERLAP"
	Het             constants.KnockoutType = "HET"

	Unknown constants.KnockoutType = ""
)

// CompoundCapable lists the knockout types that take part in compound
// filter tokens, in the order queries default to.
func CompoundCapable() []constants.KnockoutType {
	return []constants.KnockoutType{CompHet, DeletionOverlap, HetAlt, HomAlt}
}

func IsCompoundCapable(kt constants.KnockoutType) bool {
	switch kt {
	case CompHet, DeletionOverlap, HetAlt, HomAlt:
		return true
	default:
		return false
	}
}

func CastToKnockoutType(text string) constants.KnockoutType {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "HOM_ALT":
		return HomAlt
	case "HET_ALT":
		return HetAlt
	case "COMP_HET":
		return CompHet
	case "DELETION_OVERLAP":
		return DeletionOverlap
	case "HET":
		return Het
	default:
		return Unknown
	}
}

func IsKnownKnockoutType(text string) bool {
	return CastToKnockoutType(text) != Unknown
}
