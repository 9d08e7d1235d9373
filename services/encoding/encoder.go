package encoding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"rga/api/models"
	"rga/api/models/indexes"
	"rga/api/models/constants/chromosome"
	filterStatus "rga/api/models/constants/filter-status"
	knockoutType "rga/api/models/constants/knockout-type"

	linq "github.com/ahmetb/go-linq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	Encoder struct {
		Studies []string
		Policy  *BucketPolicy
		Logger  *zap.Logger
	}
)

func NewEncoder(studies []string, policy *BucketPolicy, logger *zap.Logger) *Encoder {
	if len(studies) == 0 {
		studies = DefaultStudies
	}
	if policy == nil {
		policy = DefaultBucketPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{
		Studies: studies,
		Policy:  policy,
		Logger:  logger,
	}
}

// Encode flattens one individual into a record per (gene, transcript) that
// carries at least one variant.
func (e *Encoder) Encode(ind models.KnockoutByIndividual) ([]indexes.FlatRecord, error) {
	phenotypeIds, phenotypeJson := e.marshalPhenotypes(ind)
	disorderIds, disorderJson := e.marshalDisorders(ind)

	var records []indexes.FlatRecord
	for _, gene := range ind.Genes {
		for _, transcript := range gene.Transcripts {
			record := indexes.FlatRecord{
				Id:                fmt.Sprintf("%s_%s_%s", ind.Id, gene.Id, transcript.Id),
				IndividualId:      ind.Id,
				SampleId:          ind.SampleId,
				Sex:               ind.Sex,
				Phenotypes:        phenotypeIds,
				PhenotypeJson:     phenotypeJson,
				Disorders:         disorderIds,
				DisorderJson:      disorderJson,
				FatherId:          ind.FatherId,
				MotherId:          ind.MotherId,
				FatherSampleId:    ind.FatherSampleId,
				MotherSampleId:    ind.MotherSampleId,
				NumParents:        ind.ParentCount(),
				GeneId:            gene.Id,
				GeneName:          gene.Name,
				GeneBiotype:       gene.Biotype,
				Chromosome:        gene.Chromosome,
				Start:             transcript.Start,
				End:               transcript.End,
				Strand:            transcript.Strand,
				TranscriptId:      transcript.Id,
				TranscriptBiotype: transcript.Biotype,
			}
			if record.Chromosome == "" {
				record.Chromosome = transcript.Chromosome
			}
			record.Chromosome = chromosome.Normalize(record.Chromosome)

			if err := e.fillVariants(&record, transcript.Variants); err != nil {
				return nil, fmt.Errorf("encoding %s: %w", record.Id, err)
			}
			if len(record.Variants) == 0 {
				e.Logger.Debug("skipping transcript without variants", zap.String("record", record.Id))
				continue
			}
			records = append(records, record)
		}
	}
	return records, nil
}

func (e *Encoder) fillVariants(record *indexes.FlatRecord, variants []models.KnockoutVariant) error {
	var (
		knockoutTypes, filters, consequenceTypes, clinicalSignificances, types []string
		compHets                                                                []Dimensions
	)
	tokens := map[string]struct{}{}
	frequencies := make(map[string][]float64, len(e.Studies))

	for _, variant := range variants {
		blob, err := json.Marshal(variant)
		if err != nil {
			e.Logger.Warn("dropping variant with unencodable payload",
				zap.String("record", record.Id), zap.String("variant", variant.Id), zap.Error(err))
			continue
		}

		record.Variants = append(record.Variants, variant.Id)
		record.VariantJson = append(record.VariantJson, string(blob))
		if variant.Type != "" {
			types = append(types, variant.Type)
		}
		knockoutTypes = append(knockoutTypes, string(variant.KnockoutType))
		filters = append(filters, string(filterStatus.Normalize(variant.Filter)))
		for _, term := range variant.SequenceOntologyTerms {
			consequenceTypes = append(consequenceTypes, term.Name)
		}
		clinicalSignificances = append(clinicalSignificances, variant.ClinicalSignificance...)

		for _, study := range e.Studies {
			frequencies[study] = append(frequencies[study], StudyFrequency(variant, study))
		}

		if !knockoutType.IsCompoundCapable(variant.KnockoutType) {
			continue
		}
		dims, err := e.Dimensions(variant)
		if err != nil {
			e.Logger.Warn("variant left out of compound filters",
				zap.String("record", record.Id), zap.String("variant", variant.Id), zap.Error(err))
			continue
		}
		for _, token := range Combinations(dims) {
			tokens[token] = struct{}{}
		}
		if variant.KnockoutType == knockoutType.CompHet {
			compHets = append(compHets, dims)
		}
	}

	compHetCode, _ := KnockoutCode(knockoutType.CompHet)
	for i := 0; i < len(compHets)-1; i++ {
		for j := i + 1; j < len(compHets); j++ {
			pairTokens, err := PairCombinations(compHetCode, compHets[i], compHets[j])
			if err != nil {
				return err
			}
			for _, token := range pairTokens {
				tokens[token] = struct{}{}
			}
		}
	}

	record.Types = distinct(types)
	record.KnockoutTypes = distinct(knockoutTypes)
	record.Filters = distinct(filters)
	record.ConsequenceTypes = distinct(consequenceTypes)
	record.ClinicalSignificances = distinct(clinicalSignificances)
	if len(record.Variants) > 0 {
		record.PopulationFrequencies = frequencies
	}

	record.CompoundFilters = make([]string, 0, len(tokens))
	for token := range tokens {
		record.CompoundFilters = append(record.CompoundFilters, token)
	}
	sort.Strings(record.CompoundFilters)
	return nil
}

// Dimensions computes the encoded KO, F, CT and PF values of one variant.
func (e *Encoder) Dimensions(variant models.KnockoutVariant) (Dimensions, error) {
	ko, ok := KnockoutCode(variant.KnockoutType)
	if !ok {
		return Dimensions{}, models.NewValidationError("unknown knockout type '%s'", variant.KnockoutType)
	}

	dims := Dimensions{
		Knockout: ko,
		Filter:   FilterCode(variant.Filter),
	}
	seen := map[string]bool{}
	for _, term := range variant.SequenceOntologyTerms {
		code, err := ConsequenceCode(term)
		if err != nil {
			e.Logger.Warn("skipping consequence term",
				zap.String("variant", variant.Id), zap.String("term", term.Name), zap.Error(err))
			continue
		}
		if !seen[code] {
			seen[code] = true
			dims.ConsequenceTypes = append(dims.ConsequenceTypes, code)
		}
	}
	for i, study := range e.Studies {
		bucket, err := e.Policy.Index(StudyFrequency(variant, study))
		if err != nil {
			e.Logger.Warn("population frequency out of range, using the lowest bucket",
				zap.String("variant", variant.Id), zap.String("study", study), zap.Error(err))
			bucket = 0
		}
		dims.PopulationFrequencies = append(dims.PopulationFrequencies, FrequencyCode(i, bucket))
	}
	return dims, nil
}

// EncodeAll encodes individuals concurrently; output keeps input order.
func (e *Encoder) EncodeAll(ctx context.Context, individuals []models.KnockoutByIndividual, concurrency int) ([]indexes.FlatRecord, error) {
	perIndividual := make([][]indexes.FlatRecord, len(individuals))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := range individuals {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := e.Encode(individuals[i])
			if err != nil {
				return err
			}
			perIndividual[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []indexes.FlatRecord
	for _, records := range perIndividual {
		all = append(all, records...)
	}
	return all, nil
}

func (e *Encoder) marshalPhenotypes(ind models.KnockoutByIndividual) ([]string, []string) {
	var ids, blobs []string
	for _, phenotype := range ind.Phenotypes {
		blob, err := json.Marshal(phenotype)
		if err != nil {
			e.Logger.Warn("dropping phenotype", zap.String("individual", ind.Id), zap.Error(err))
			continue
		}
		ids = append(ids, phenotype.Id)
		blobs = append(blobs, string(blob))
	}
	return ids, blobs
}

func (e *Encoder) marshalDisorders(ind models.KnockoutByIndividual) ([]string, []string) {
	var ids, blobs []string
	for _, disorder := range ind.Disorders {
		blob, err := json.Marshal(disorder)
		if err != nil {
			e.Logger.Warn("dropping disorder", zap.String("individual", ind.Id), zap.Error(err))
			continue
		}
		ids = append(ids, disorder.Id)
		blobs = append(blobs, string(blob))
	}
	return ids, blobs
}

// distinct keeps the first occurrence of each non-empty value.
func distinct(values []string) []string {
	var out []string
	linq.From(values).
		Where(func(v interface{}) bool { return v.(string) != "" }).
		Distinct().
		ToSlice(&out)
	return out
}
