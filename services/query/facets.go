package query

import (
	"strconv"
	"strings"

	"rga/api/models"
	"rga/api/models/indexes"
)

const (
	DefaultFacetSize = 10
	MaxFacetSize     = 1000
)

// Facet is a terms aggregation over one physical field.
type Facet struct {
	Field string `json:"field"`
	Size  int    `json:"size"`
}

// ParseFacets reads "field" or "field:size" specs. Facets are only allowed
// on keyword fields.
func ParseFacets(specs []string) ([]Facet, error) {
	var facets []Facet
	seen := map[string]bool{}
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		field, size := spec, DefaultFacetSize
		if idx := strings.LastIndex(spec, ":"); idx >= 0 {
			field = strings.TrimSpace(spec[:idx])
			n, err := strconv.Atoi(strings.TrimSpace(spec[idx+1:]))
			if err != nil || n <= 0 || n > MaxFacetSize {
				return nil, models.NewValidationError("facet size in '%s' must be between 1 and %d", spec, MaxFacetSize)
			}
			size = n
		}

		if !isFacetable(field) {
			return nil, models.NewValidationError("unknown facet field '%s'", field)
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		facets = append(facets, Facet{Field: field, Size: size})
	}
	return facets, nil
}

func isFacetable(field string) bool {
	for _, f := range indexes.FacetableFields {
		if f == field {
			return true
		}
	}
	return false
}
