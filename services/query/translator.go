package query

import (
	"strconv"
	"strings"

	"rga/api/models"
	"rga/api/models/constants"
	"rga/api/models/constants/chromosome"
	filterStatus "rga/api/models/constants/filter-status"
	knockoutType "rga/api/models/constants/knockout-type"
	sortDirection "rga/api/models/constants/sort"
	"rga/api/models/indexes"
	"rga/api/services/encoding"

	"github.com/go-playground/validator/v10"
)

const (
	CompHetPairMode   = "pair"
	CompHetSingleMode = "single"
)

var validate = validator.New()

type (
	Translator struct {
		Studies     []string
		Policy      *encoding.BucketPolicy
		CompHetMode string
	}

	// variantDimensions holds the normalised combinatorial part of a query.
	variantDimensions struct {
		knockoutTypes    []constants.KnockoutType
		filters          []constants.FilterStatus
		consequenceTypes []string
		frequencies      []FrequencyConstraint
	}
)

func NewTranslator(studies []string, policy *encoding.BucketPolicy, compHetMode string) *Translator {
	if len(studies) == 0 {
		studies = encoding.DefaultStudies
	}
	if policy == nil {
		policy = encoding.DefaultBucketPolicy()
	}
	if compHetMode != CompHetSingleMode {
		compHetMode = CompHetPairMode
	}
	return &Translator{
		Studies:     studies,
		Policy:      policy,
		CompHetMode: compHetMode,
	}
}

// NewTranslatorFromConfig builds the translator the configured encoder
// is paired with.
func NewTranslatorFromConfig(cfg *models.Config) (*Translator, error) {
	var policy *encoding.BucketPolicy
	if len(cfg.Rga.PopulationFrequencyBuckets) > 0 {
		var err error
		policy, err = encoding.NewBucketPolicy(cfg.Rga.PopulationFrequencyBuckets)
		if err != nil {
			return nil, err
		}
	}
	return NewTranslator(cfg.Rga.PopulationFrequencyStudies, policy, cfg.Rga.CompHetQueryMode), nil
}

// Translate turns a query into backend filters. Every error it returns is
// a *models.ValidationError.
func (t *Translator) Translate(q models.KnockoutQuery) (Translation, error) {
	if err := validate.Struct(q); err != nil {
		return Translation{}, models.NewValidationError("invalid query: %v", err)
	}

	filters, err := scalarFilters(q)
	if err != nil {
		return Translation{}, err
	}
	order, err := sortOrder(q.Sort)
	if err != nil {
		return Translation{}, err
	}
	translation := Translation{Filters: filters, Order: order}

	dims, err := t.normalise(q)
	if err != nil {
		return Translation{}, err
	}
	if dims.count() == 0 {
		return translation, nil
	}

	if dims.isSimple() {
		translation.Filters = append(translation.Filters, dims.simpleFilter())
		return translation, nil
	}

	compound, err := t.compound(dims)
	if err != nil {
		return Translation{}, err
	}
	translation.Compound = compound
	return translation, nil
}

func sortOrder(text string) (constants.SortDirection, error) {
	if strings.TrimSpace(text) == "" {
		return sortDirection.Ascending, nil
	}
	order := sortDirection.CastToSortDirection(strings.TrimSpace(text))
	if order == sortDirection.Undefined {
		return "", models.NewValidationError("unknown sort order '%s', expected asc or desc", text)
	}
	return order, nil
}

func scalarFilters(q models.KnockoutQuery) ([]FieldFilter, error) {
	numParents, err := parseNumParents(q.NumParents)
	if err != nil {
		return nil, err
	}
	chromosomes := clean(q.Chromosomes)
	for i, chrom := range chromosomes {
		chromosomes[i] = chromosome.Normalize(chrom)
	}

	var filters []FieldFilter
	for _, f := range []FieldFilter{
		{indexes.SAMPLE_ID, clean(q.SampleIds)},
		{indexes.INDIVIDUAL_ID, clean(q.IndividualIds)},
		{indexes.SEX, clean(q.Sex)},
		{indexes.PHENOTYPES, clean(q.Phenotypes)},
		{indexes.DISORDERS, clean(q.Disorders)},
		{indexes.NUM_PARENTS, numParents},
		{indexes.GENE_ID, clean(q.GeneIds)},
		{indexes.GENE_NAME, clean(q.GeneNames)},
		{indexes.GENE_BIOTYPE, clean(q.GeneBiotypes)},
		{indexes.CHROMOSOME, chromosomes},
		{indexes.TRANSCRIPT_ID, clean(q.TranscriptIds)},
		{indexes.TRANSCRIPT_BIOTYPE, clean(q.TranscriptBiotypes)},
		{indexes.VARIANTS, clean(q.VariantIds)},
	} {
		if len(f.Values) > 0 {
			filters = append(filters, f)
		}
	}
	return filters, nil
}

func parseNumParents(values []string) ([]string, error) {
	cleaned := clean(values)
	for _, v := range cleaned {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 2 {
			return nil, models.NewValidationError("numParents must be 0, 1 or 2, got '%s'", v)
		}
	}
	return cleaned, nil
}

func (t *Translator) normalise(q models.KnockoutQuery) (variantDimensions, error) {
	var dims variantDimensions

	for _, value := range clean(q.KnockoutTypes) {
		if !knockoutType.IsKnownKnockoutType(value) {
			return dims, models.NewValidationError("unknown knockout type '%s'", value)
		}
		dims.knockoutTypes = appendUnique(dims.knockoutTypes, knockoutType.CastToKnockoutType(value))
	}

	for _, value := range clean(q.Filters) {
		status, ok := filterStatus.CastToFilterStatus(value)
		if !ok {
			return dims, models.NewValidationError("filter must be PASS or NOT_PASS, got '%s'", value)
		}
		dims.filters = appendUnique(dims.filters, status)
	}

	for _, value := range clean(q.ConsequenceTypes) {
		code, err := encoding.ConsequenceCodeForValue(value)
		if err != nil {
			return dims, err
		}
		dims.consequenceTypes = appendUnique(dims.consequenceTypes, code)
	}

	frequencies, err := ParseFrequencyConstraints(q.PopulationFrequencies, t.Studies)
	if err != nil {
		return dims, err
	}
	dims.frequencies = frequencies

	if len(dims.frequencies) > 0 && len(dims.consequenceTypes) == 0 {
		return dims, models.NewValidationError("population frequency filters require a consequence type filter")
	}
	return dims, nil
}

func (d variantDimensions) count() int {
	count := 0
	for _, given := range []bool{
		len(d.knockoutTypes) > 0,
		len(d.filters) > 0,
		len(d.consequenceTypes) > 0,
		len(d.frequencies) > 0,
	} {
		if given {
			count++
		}
	}
	return count
}

// isSimple reports whether the query fits a plain membership filter on one
// of the summary fields.
func (d variantDimensions) isSimple() bool {
	if d.count() != 1 || len(d.frequencies) > 0 {
		return false
	}
	for _, kt := range d.knockoutTypes {
		if kt == knockoutType.CompHet || kt == knockoutType.DeletionOverlap {
			return false
		}
	}
	return true
}

func (d variantDimensions) simpleFilter() FieldFilter {
	switch {
	case len(d.knockoutTypes) > 0:
		values := make([]string, len(d.knockoutTypes))
		for i, kt := range d.knockoutTypes {
			values[i] = string(kt)
		}
		return FieldFilter{Field: indexes.KNOCKOUT_TYPES, Values: values}
	case len(d.filters) > 0:
		values := make([]string, len(d.filters))
		for i, status := range d.filters {
			values[i] = string(status)
		}
		return FieldFilter{Field: indexes.FILTERS, Values: values}
	default:
		values := make([]string, len(d.consequenceTypes))
		for i, code := range d.consequenceTypes {
			values[i] = encoding.ConsequenceName(code)
		}
		return FieldFilter{Field: indexes.CONSEQUENCE_TYPES, Values: values}
	}
}

func (t *Translator) compound(d variantDimensions) (*TokenFilter, error) {
	knockouts := d.knockoutTypes
	if len(knockouts) == 0 {
		knockouts = knockoutType.CompoundCapable()
	}
	koCodes := make([]string, 0, len(knockouts))
	for _, kt := range knockouts {
		if !knockoutType.IsCompoundCapable(kt) {
			return nil, models.NewValidationError("knockout type '%s' cannot be combined with other variant filters", kt)
		}
		code, _ := encoding.KnockoutCode(kt)
		koCodes = append(koCodes, code)
	}

	statuses := d.filters
	if len(statuses) == 0 {
		statuses = []constants.FilterStatus{filterStatus.Pass, filterStatus.NotPass}
	}
	filterCodes := make([]string, len(statuses))
	for i, status := range statuses {
		filterCodes[i] = encoding.FilterStatusCode(status)
	}

	filter := &TokenFilter{Field: indexes.COMPOUND_FILTERS}
	if len(d.frequencies) == 0 {
		filter.Clauses = [][]string{t.cross(koCodes, filterCodes, d.consequenceTypes, nil)}
		return filter, nil
	}
	// One clause per study. Two different variants of the transcript, or
	// two different COMP_HET pairs in pair mode, can satisfy the clauses
	// together; Matcher narrows the variants of the returned records.
	for _, constraint := range d.frequencies {
		pfCodes, err := constraint.Codes(t.Policy)
		if err != nil {
			return nil, err
		}
		filter.Clauses = append(filter.Clauses, t.cross(koCodes, filterCodes, d.consequenceTypes, pfCodes))
	}
	return filter, nil
}

// cross builds the OR-list of tokens in KO, F, CT, PF order, the same shape
// the encoder produces.
func (t *Translator) cross(koCodes, filterCodes, ctCodes, pfCodes []string) []string {
	compHetCode, _ := encoding.KnockoutCode(knockoutType.CompHet)

	var tokens []string
	seen := map[string]bool{}
	add := func(parts ...string) {
		token := strings.Join(parts, encoding.Separator)
		if !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}

	for _, ko := range koCodes {
		fs, cs, ps := filterCodes, ctCodes, pfCodes
		if ko == compHetCode && t.CompHetMode == CompHetPairMode {
			fs, cs, ps = selfPairs(filterCodes), selfPairs(ctCodes), selfPairs(pfCodes)
		}
		for _, f := range fs {
			if len(cs) == 0 {
				add(ko, f)
				continue
			}
			for _, c := range cs {
				if len(ps) == 0 {
					add(ko, f, c)
					continue
				}
				for _, p := range ps {
					add(ko, f, c, p)
				}
			}
		}
	}
	return tokens
}

func selfPairs(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	var pairs []string
	seen := map[string]bool{}
	for _, pair := range encoding.SortedCombinations(values, values) {
		if !seen[pair] {
			seen[pair] = true
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

func clean(values []string) []string {
	var out []string
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = appendUnique(out, trimmed)
		}
	}
	return out
}

func appendUnique[T comparable](values []T, value T) []T {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}
