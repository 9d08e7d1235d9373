package encoding

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rga/api/models"
	"rga/api/models/constants"
	"rga/api/models/constants/search"
)

// AllPopulation is the only population whose frequency gets bucketed.
const AllPopulation = "ALL"

var (
	DefaultStudies = []string{"1kG_phase3", "GNOMAD_GENOMES"}
	DefaultBounds  = []float64{0, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 1}
)

// BucketPolicy discretises allele frequencies. A frequency belongs to the
// first bucket whose upper bound it does not exceed.
type BucketPolicy struct {
	bounds []float64
}

func NewBucketPolicy(bounds []float64) (*BucketPolicy, error) {
	if len(bounds) == 0 {
		return nil, models.NewValidationError("population frequency buckets cannot be empty")
	}
	if !sort.Float64sAreSorted(bounds) {
		return nil, models.NewValidationError("population frequency buckets must be ascending: %v", bounds)
	}
	copied := make([]float64, len(bounds))
	copy(copied, bounds)
	return &BucketPolicy{bounds: copied}, nil
}

func DefaultBucketPolicy() *BucketPolicy {
	policy, _ := NewBucketPolicy(DefaultBounds)
	return policy
}

// Index returns the 0-based bucket of freq.
func (p *BucketPolicy) Index(freq float64) (int, error) {
	if freq >= 0 {
		for i, bound := range p.bounds {
			if freq <= bound {
				return i, nil
			}
		}
	}
	return 0, models.NewValidationError("population frequency must be a value between 0 and %v, got '%v'",
		p.bounds[len(p.bounds)-1], freq)
}

// Select returns the 0-based buckets whose upper bound satisfies "bound op value".
func (p *BucketPolicy) Select(op constants.SearchOperation, value float64) ([]int, error) {
	if _, ok := search.CastToSearchOperation(string(op)); !ok {
		return nil, models.NewValidationError("unknown population frequency operator '%s'", op)
	}

	var selected []int
	for i, bound := range p.bounds {
		if search.Compare(op, bound, value) {
			selected = append(selected, i)
		}
	}
	return selected, nil
}

// FrequencyCode formats the token of a (study, bucket) pair, both 0-based.
func FrequencyCode(studyIndex int, bucketIndex int) string {
	return fmt.Sprintf("P%d-%d", studyIndex+1, bucketIndex+1)
}

func parseFrequencyCode(code string) (string, int, error) {
	parts := strings.SplitN(code, "-", 2)
	if len(parts) != 2 {
		return "", 0, models.NewValidationError("malformed population frequency token '%s'", code)
	}
	bucket, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, models.NewValidationError("malformed population frequency token '%s'", code)
	}
	return parts[0], bucket, nil
}

// StudyIndex finds a configured study, ignoring case.
func StudyIndex(studies []string, study string) (int, bool) {
	for i, s := range studies {
		if strings.EqualFold(s, study) {
			return i, true
		}
	}
	return 0, false
}

// StudyFrequency returns the ALL-population frequency of the variant in
// study, or 0 when the variant was not observed there.
func StudyFrequency(variant models.KnockoutVariant, study string) float64 {
	for _, pf := range variant.PopulationFrequencies {
		if strings.EqualFold(pf.Study, study) && strings.EqualFold(pf.Population, AllPopulation) {
			return pf.AltAlleleFreq
		}
	}
	return 0
}
