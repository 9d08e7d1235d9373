package filterStatus

import (
	"rga/api/models/constants"
	"strings"
)

const (
	Pass    constants.FilterStatus = "PASS"
	NotPass constants.FilterStatus = "NOT_PASS"
)

// Normalize maps a free-text VCF filter onto PASS / NOT_PASS.
func Normalize(filter string) constants.FilterStatus {
	if strings.TrimSpace(filter) == string(Pass) {
		return Pass
	}
	return NotPass
}

// CastToFilterStatus is the strict form used for query parameters.
func CastToFilterStatus(text string) (constants.FilterStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "PASS":
		return Pass, true
	case "NOT_PASS":
		return NotPass, true
	default:
		return "", false
	}
}
