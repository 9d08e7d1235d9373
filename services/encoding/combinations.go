package encoding

import (
	"strconv"
	"strings"

	"rga/api/models"
)

// Dimensions holds the encoded values of one variant, one list per
// compound filter dimension.
type Dimensions struct {
	Knockout              string
	Filter                string
	ConsequenceTypes      []string
	PopulationFrequencies []string
}

func join(parts ...string) string {
	return strings.Join(parts, Separator)
}

// Combinations expands the values of a single variant:
//
//	KO, KO__F, KO__F__CT, KO__F__CT__PF, KO__F__PF
func Combinations(d Dimensions) []string {
	tokens := []string{
		d.Knockout,
		join(d.Knockout, d.Filter),
	}
	for _, ct := range d.ConsequenceTypes {
		tokens = append(tokens, join(d.Knockout, d.Filter, ct))
		for _, pf := range d.PopulationFrequencies {
			tokens = append(tokens, join(d.Knockout, d.Filter, ct, pf))
		}
	}
	for _, pf := range d.PopulationFrequencies {
		tokens = append(tokens, join(d.Knockout, d.Filter, pf))
	}
	return tokens
}

// SortedCombinations pairs every value of a with every value of b, each
// pair ordered lexicographically so (x, y) and (y, x) collapse.
func SortedCombinations(a []string, b []string) []string {
	pairs := make([]string, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			if x <= y {
				pairs = append(pairs, join(x, y))
			} else {
				pairs = append(pairs, join(y, x))
			}
		}
	}
	return pairs
}

// SimplifiedFrequencies keeps, per study, the least restrictive (largest)
// bucket of the two variants. Both lists must cover the same studies.
func SimplifiedFrequencies(a []string, b []string) ([]string, error) {
	if len(a) != len(b) {
		return nil, models.NewValidationError("population frequency lists differ in length: %d != %d", len(a), len(b))
	}

	bByStudy := make(map[string]int, len(b))
	for _, code := range b {
		study, bucket, err := parseFrequencyCode(code)
		if err != nil {
			return nil, err
		}
		bByStudy[study] = bucket
	}

	simplified := make([]string, 0, len(a))
	for _, code := range a {
		study, bucket, err := parseFrequencyCode(code)
		if err != nil {
			return nil, err
		}
		other, ok := bByStudy[study]
		if !ok {
			return nil, models.NewValidationError("population frequency study '%s' missing from partner variant", study)
		}
		if other > bucket {
			bucket = other
		}
		simplified = append(simplified, study+"-"+strconv.Itoa(bucket))
	}
	return simplified, nil
}

// PairCombinations expands a pair of compound heterozygous variants:
//
//	CH, CH__F1__F2, CH__F1__F2__CT1__CT2, CH__F1__F2__CT1__CT2__PF1__PF2,
//	CH__F1__F2__PF1__PF2 and CH__F1__F2__PF' with PF' the simplified frequency.
func PairCombinations(compHetCode string, a Dimensions, b Dimensions) ([]string, error) {
	simplified, err := SimplifiedFrequencies(a.PopulationFrequencies, b.PopulationFrequencies)
	if err != nil {
		return nil, err
	}

	filterPairs := SortedCombinations([]string{a.Filter}, []string{b.Filter})
	ctPairs := SortedCombinations(a.ConsequenceTypes, b.ConsequenceTypes)
	pfPairs := SortedCombinations(a.PopulationFrequencies, b.PopulationFrequencies)

	tokens := []string{compHetCode}
	for _, fp := range filterPairs {
		tokens = append(tokens, join(compHetCode, fp))
		for _, ctp := range ctPairs {
			tokens = append(tokens, join(compHetCode, fp, ctp))
			for _, pfp := range pfPairs {
				tokens = append(tokens, join(compHetCode, fp, ctp, pfp))
			}
		}
		for _, pfp := range pfPairs {
			tokens = append(tokens, join(compHetCode, fp, pfp))
		}
		for _, pf := range simplified {
			tokens = append(tokens, join(compHetCode, fp, pf))
		}
	}
	return tokens, nil
}
