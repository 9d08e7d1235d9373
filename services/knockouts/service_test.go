package knockouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"rga/api/models"
	sortDirection "rga/api/models/constants/sort"
	"rga/api/models/indexes"
	"rga/api/services/query"
	"rga/api/tests/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore evaluates translations against records held in memory.
type memStore struct {
	records    map[string][]indexes.FlatRecord
	lastFields []string
	err        error
}

func newMemStore() *memStore {
	return &memStore{records: map[string][]indexes.FlatRecord{}}
}

func (m *memStore) EnsureIndex(ctx context.Context, collection string) error {
	return m.err
}

func (m *memStore) Insert(ctx context.Context, collection string, records []indexes.FlatRecord) (uint64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.records[collection] = append(m.records[collection], records...)
	return uint64(len(records)), nil
}

func (m *memStore) Search(ctx context.Context, collection string, translation query.Translation, fields []string, skip int, limit int) ([]indexes.FlatRecord, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	m.lastFields = fields

	matched := m.matching(collection, translation)
	sort.Slice(matched, func(i, j int) bool { return sortDirection.Less(translation.Order, matched[i].Id, matched[j].Id) })

	total := int64(len(matched))
	if skip > len(matched) {
		skip = len(matched)
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (m *memStore) Count(ctx context.Context, collection string, translation query.Translation) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.matching(collection, translation))), nil
}

func (m *memStore) Facet(ctx context.Context, collection string, translation query.Translation, facets []query.Facet) ([]models.FacetResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	var results []models.FacetResult
	for _, facet := range facets {
		counts := map[string]int64{}
		for _, record := range m.matching(collection, translation) {
			for _, value := range fieldValues(record, facet.Field) {
				counts[value]++
			}
		}
		result := models.FacetResult{Field: facet.Field}
		for value, count := range counts {
			result.Buckets = append(result.Buckets, models.FacetBucket{Value: value, Count: count})
		}
		sort.Slice(result.Buckets, func(i, j int) bool {
			if result.Buckets[i].Count != result.Buckets[j].Count {
				return result.Buckets[i].Count > result.Buckets[j].Count
			}
			return result.Buckets[i].Value < result.Buckets[j].Value
		})
		results = append(results, result)
	}
	return results, nil
}

func (m *memStore) Purge(ctx context.Context, collection string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	deleted := int64(len(m.records[collection]))
	delete(m.records, collection)
	return deleted, nil
}

func (m *memStore) matching(collection string, translation query.Translation) []indexes.FlatRecord {
	var out []indexes.FlatRecord
	for _, record := range m.records[collection] {
		if matches(record, translation) {
			out = append(out, record)
		}
	}
	return out
}

func matches(record indexes.FlatRecord, translation query.Translation) bool {
	for _, filter := range translation.Filters {
		if !anyOf(fieldValues(record, filter.Field), filter.Values) {
			return false
		}
	}
	if translation.Compound != nil {
		for _, clause := range translation.Compound.Clauses {
			if !anyOf(record.CompoundFilters, clause) {
				return false
			}
		}
	}
	return true
}

func anyOf(have []string, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func fieldValues(record indexes.FlatRecord, field string) []string {
	blob, _ := json.Marshal(record)
	var doc map[string]interface{}
	_ = json.Unmarshal(blob, &doc)

	switch value := doc[field].(type) {
	case nil:
		return nil
	case []interface{}:
		values := make([]string, 0, len(value))
		for _, v := range value {
			values = append(values, fmt.Sprint(v))
		}
		return values
	default:
		return []string{fmt.Sprint(value)}
	}
}

func newTestService(t *testing.T) (*Service, *memStore) {
	store := newMemStore()
	service, err := NewService(common.InitConfig(), store, zap.NewNop())
	require.NoError(t, err)
	return service, store
}

func seededService(t *testing.T) (*Service, *memStore) {
	service, store := newTestService(t)
	indexed, err := service.Insert(context.Background(), "", []models.KnockoutByIndividual{
		common.ScenarioIndividual(),
		common.SecondIndividual(),
	})
	require.NoError(t, err)
	require.Equal(t, uint64(3), indexed)
	return service, store
}

func transcriptVariantIds(transcript models.KnockoutTranscript) []string {
	var ids []string
	for _, variant := range transcript.Variants {
		ids = append(ids, variant.Id)
	}
	return ids
}

func TestInsertUsesDefaultCollection(t *testing.T) {
	_, store := seededService(t)
	assert.Len(t, store.records["rga-test"], 3)
}

func TestIndividualQueryCompHet(t *testing.T) {
	service, _ := seededService(t)

	page, err := service.IndividualQuery(context.Background(), models.KnockoutQuery{KnockoutTypes: []string{"COMP_HET"}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.NumMatches)
	require.Len(t, page.Results, 1)
	individual := page.Results[0]
	assert.Equal(t, "IND1", individual.Id)
	require.Len(t, individual.Genes, 1)
	require.Len(t, individual.Genes[0].Transcripts, 1)
	assert.Equal(t, []string{"V2", "V3"}, transcriptVariantIds(individual.Genes[0].Transcripts[0]))
}

func TestIndividualQueryWithoutVariantConstraints(t *testing.T) {
	service, _ := seededService(t)

	page, err := service.IndividualQuery(context.Background(), models.KnockoutQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.NumMatches)
	assert.Equal(t, 10, page.Limit)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "IND1", page.Results[0].Id)
	assert.Equal(t, "IND4", page.Results[1].Id)
	assert.Equal(t, []string{"V1", "V2", "V3"}, transcriptVariantIds(page.Results[0].Genes[0].Transcripts[0]))
}

func TestGeneQuery(t *testing.T) {
	service, _ := seededService(t)

	page, err := service.GeneQuery(context.Background(), models.KnockoutQuery{GeneNames: []string{"BRCA2"}})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	gene := page.Results[0]
	assert.Equal(t, "ENSG00000139618", gene.Id)
	require.Len(t, gene.Individuals, 2)
	assert.Equal(t, "IND1", gene.Individuals[0].Id)
	assert.Equal(t, "IND4", gene.Individuals[1].Id)
}

func TestVariantQuery(t *testing.T) {
	service, _ := seededService(t)

	t.Run("should bring compound heterozygous partners along", func(t *testing.T) {
		page, err := service.VariantQuery(context.Background(), models.KnockoutQuery{VariantIds: []string{"V2"}})
		require.NoError(t, err)

		require.Len(t, page.Results, 1)
		bucket := page.Results[0]
		assert.Equal(t, "V2", bucket.Id)
		require.Len(t, bucket.Individuals, 1)
		assert.Equal(t, "IND1", bucket.Individuals[0].Id)
		assert.Equal(t, []string{"V2", "V3"}, transcriptVariantIds(bucket.Individuals[0].Genes[0].Transcripts[0]))
	})

	t.Run("should only bucket variants that satisfy the query", func(t *testing.T) {
		page, err := service.VariantQuery(context.Background(), models.KnockoutQuery{KnockoutTypes: []string{"HOM_ALT"}})
		require.NoError(t, err)

		var ids []string
		for _, bucket := range page.Results {
			ids = append(ids, bucket.Id)
		}
		assert.Equal(t, []string{"V1", "V4"}, ids)

		// IND4 carries V1 as HET_ALT
		require.Len(t, page.Results[0].Individuals, 1)
		assert.Equal(t, "IND1", page.Results[0].Individuals[0].Id)
	})

	t.Run("should return an empty page when nothing matches", func(t *testing.T) {
		page, err := service.VariantQuery(context.Background(), models.KnockoutQuery{VariantIds: []string{"V404"}})
		require.NoError(t, err)
		assert.NotNil(t, page.Results)
		assert.Empty(t, page.Results)
	})
}

func TestRecordQueryPagination(t *testing.T) {
	service, _ := seededService(t)

	page, err := service.RecordQuery(context.Background(), models.KnockoutQuery{Skip: 1, Limit: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.NumMatches)
	assert.Equal(t, 1, page.Skip)
	assert.Equal(t, 1, page.Limit)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "IND4_ENSG00000139618_T1", page.Results[0].Id)

	page, err = service.RecordQuery(context.Background(), models.KnockoutQuery{Limit: 1, Sort: "desc"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "IND4_ENSG00000141510_T2", page.Results[0].Id)
}

func TestQueryProjection(t *testing.T) {
	service, store := seededService(t)

	t.Run("should fetch the required fields", func(t *testing.T) {
		_, err := service.IndividualQuery(context.Background(), models.KnockoutQuery{Include: []string{"genes.name"}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			indexes.ID, indexes.INDIVIDUAL_ID, indexes.GENE_ID, indexes.TRANSCRIPT_ID, indexes.GENE_NAME,
		}, store.lastFields)
	})

	t.Run("should fetch the variants when they are filtered", func(t *testing.T) {
		_, err := service.IndividualQuery(context.Background(), models.KnockoutQuery{
			Include:       []string{"sampleId"},
			KnockoutTypes: []string{"COMP_HET"},
		})
		require.NoError(t, err)
		assert.Contains(t, store.lastFields, indexes.VARIANTS)
		assert.Contains(t, store.lastFields, indexes.VARIANT_JSON)
	})

	t.Run("should reject unknown fields", func(t *testing.T) {
		_, err := service.GeneQuery(context.Background(), models.KnockoutQuery{Include: []string{"nope"}})
		var validationErr *models.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})
}

func TestQueryValidation(t *testing.T) {
	service, _ := seededService(t)

	for name, q := range map[string]models.KnockoutQuery{
		"limit above maximum":        {Limit: 101},
		"negative skip":              {Skip: -1},
		"unknown knockout type":      {KnockoutTypes: []string{"NOPE"}},
		"frequency without ct":       {PopulationFrequencies: []string{"1kG_phase3<0.01"}},
		"numParents out of range":    {NumParents: []string{"3"}},
		"frequency of unknown study": {ConsequenceTypes: []string{"stop_gained"}, PopulationFrequencies: []string{"EXAC<0.01"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.RecordQuery(context.Background(), q)
			var validationErr *models.ValidationError
			assert.True(t, errors.As(err, &validationErr), "got %v", err)
		})
	}
}

func TestBackendErrorsAreWrapped(t *testing.T) {
	service, store := seededService(t)
	store.err = errors.New("connection refused")

	_, err := service.IndividualQuery(context.Background(), models.KnockoutQuery{})
	require.Error(t, err)

	var engineErr *models.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "individualQuery", engineErr.Op)
	assert.True(t, errors.Is(err, store.err))

	_, err = service.Purge(context.Background(), "")
	assert.True(t, errors.As(err, &engineErr))
}

func TestCountFacetAndPurge(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()

	count, err := service.Count(ctx, models.KnockoutQuery{GeneNames: []string{"BRCA2"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	facets, err := service.Facet(ctx, models.KnockoutQuery{Facets: []string{"geneName"}})
	require.NoError(t, err)
	require.Len(t, facets, 1)
	assert.Equal(t, []models.FacetBucket{{Value: "BRCA2", Count: 2}, {Value: "TP53", Count: 1}}, facets[0].Buckets)

	_, err = service.Facet(ctx, models.KnockoutQuery{})
	var validationErr *models.ValidationError
	assert.True(t, errors.As(err, &validationErr))

	deleted, err := service.Purge(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	count, err = service.Count(ctx, models.KnockoutQuery{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLoad(t *testing.T) {
	service, store := newTestService(t)

	var lines []string
	for _, individual := range []models.KnockoutByIndividual{common.ScenarioIndividual(), common.SecondIndividual()} {
		blob, err := json.Marshal(individual)
		require.NoError(t, err)
		lines = append(lines, string(blob))
	}
	lines = append(lines, "{not json", "", `{"sampleId":"S9"}`)

	stats, err := service.Load(context.Background(), "loaded", strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)

	assert.Equal(t, LoadStats{Lines: 4, Individuals: 2, Skipped: 2, RecordsIndexed: 3}, stats)
	assert.Len(t, store.records["loaded"], 3)
}

func TestChromosomeSpellingsRoundTrip(t *testing.T) {
	service, _ := newTestService(t)

	individual := common.ScenarioIndividual()
	individual.Genes[0].Chromosome = "chr13"
	_, err := service.Insert(context.Background(), "", []models.KnockoutByIndividual{individual})
	require.NoError(t, err)

	for _, chrom := range []string{"chr13", "13", "CHR13"} {
		page, err := service.RecordQuery(context.Background(), models.KnockoutQuery{Chromosomes: []string{chrom}})
		require.NoError(t, err, chrom)
		require.Len(t, page.Results, 1, chrom)
		assert.Equal(t, "13", page.Results[0].Chromosome, chrom)
	}
}
