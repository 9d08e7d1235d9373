package query

import (
	"strings"

	"rga/api/models/constants"
)

// FieldFilter matches records whose Field holds any of Values.
type FieldFilter struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// TokenFilter matches records whose compound filter field holds, for every
// clause, at least one of the clause's tokens.
type TokenFilter struct {
	Field   string     `json:"field"`
	Clauses [][]string `json:"clauses"`
}

// Translation is what a query becomes before it reaches the search backend.
// All filters are AND-ed. Records come back ordered by id in Order.
type Translation struct {
	Filters  []FieldFilter           `json:"filters"`
	Compound *TokenFilter            `json:"compound,omitempty"`
	Order    constants.SortDirection `json:"order,omitempty"`
}

// Tokens flattens every compound clause, mostly for tests and logging.
func (t Translation) Tokens() []string {
	if t.Compound == nil {
		return nil
	}
	var tokens []string
	for _, clause := range t.Compound.Clauses {
		tokens = append(tokens, clause...)
	}
	return tokens
}

// String renders the translation as "field:(a || b) && ..." text.
func (t Translation) String() string {
	var parts []string
	for _, filter := range t.Filters {
		parts = append(parts, renderOr(filter.Field, filter.Values))
	}
	if t.Compound != nil {
		for _, clause := range t.Compound.Clauses {
			parts = append(parts, renderOr(t.Compound.Field, clause))
		}
	}
	return strings.Join(parts, " && ")
}

func renderOr(field string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = strings.ReplaceAll(v, ":", "\\:")
	}
	if len(escaped) == 1 {
		return field + ":" + escaped[0]
	}
	return field + ":( " + strings.Join(escaped, " || ") + " )"
}
