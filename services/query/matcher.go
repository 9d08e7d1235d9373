package query

import (
	"encoding/json"

	"rga/api/models"
	"rga/api/models/constants"
	filterStatus "rga/api/models/constants/filter-status"
	knockoutType "rga/api/models/constants/knockout-type"
	"rga/api/models/indexes"
	"rga/api/services/encoding"
)

// VariantPredicate keeps or drops one variant of a reconstructed transcript.
type VariantPredicate func(models.KnockoutVariant) bool

// RecordPredicate keeps or drops a whole record after the backend query.
type RecordPredicate func(indexes.FlatRecord) bool

// Matcher returns the per-variant form of the query's variant dimensions,
// or nil when the query does not constrain variants. Index tokens only say
// that some variant of the transcript matches; the matcher tells which.
func (t *Translator) Matcher(q models.KnockoutQuery) (VariantPredicate, error) {
	if !q.HasVariantConstraints() {
		return nil, nil
	}

	dims, err := t.normalise(q)
	if err != nil {
		return nil, err
	}
	ids := map[string]bool{}
	for _, id := range clean(q.VariantIds) {
		ids[id] = true
	}

	return func(variant models.KnockoutVariant) bool {
		if len(ids) > 0 && !ids[variant.Id] {
			return false
		}
		if len(dims.knockoutTypes) > 0 && !containsType(dims.knockoutTypes, variant.KnockoutType) {
			return false
		}
		if len(dims.filters) > 0 && !containsStatus(dims.filters, filterStatus.Normalize(variant.Filter)) {
			return false
		}
		if len(dims.consequenceTypes) > 0 && !hasConsequence(variant, dims.consequenceTypes) {
			return false
		}
		for _, constraint := range dims.frequencies {
			if !constraint.Satisfied(encoding.StudyFrequency(variant, constraint.Study)) {
				return false
			}
		}
		return true
	}, nil
}

// RecordMatcher narrows records when several variant ids are queried as a
// COMP_HET pair: every id must sit on the record as a COMP_HET variant.
// It returns nil for any other query.
func (t *Translator) RecordMatcher(q models.KnockoutQuery) RecordPredicate {
	ids := clean(q.VariantIds)
	kts := clean(q.KnockoutTypes)
	if len(ids) < 2 || len(kts) != 1 || knockoutType.CastToKnockoutType(kts[0]) != knockoutType.CompHet {
		return nil
	}

	return func(record indexes.FlatRecord) bool {
		for _, id := range ids {
			position := indexOf(record.Variants, id)
			if position < 0 || position >= len(record.VariantJson) {
				return false
			}
			var variant models.KnockoutVariant
			if err := json.Unmarshal([]byte(record.VariantJson[position]), &variant); err != nil {
				return false
			}
			if variant.KnockoutType != knockoutType.CompHet {
				return false
			}
		}
		return true
	}
}

func hasConsequence(variant models.KnockoutVariant, codes []string) bool {
	for _, term := range variant.SequenceOntologyTerms {
		code, err := encoding.ConsequenceCode(term)
		if err != nil {
			continue
		}
		for _, c := range codes {
			if c == code {
				return true
			}
		}
	}
	return false
}

func containsType(values []constants.KnockoutType, kt constants.KnockoutType) bool {
	for _, v := range values {
		if v == kt {
			return true
		}
	}
	return false
}

func containsStatus(values []constants.FilterStatus, status constants.FilterStatus) bool {
	for _, v := range values {
		if v == status {
			return true
		}
	}
	return false
}

func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}
