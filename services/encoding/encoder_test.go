package encoding

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"rga/api/models"
	knockoutType "rga/api/models/constants/knockout-type"
	"rga/api/tests/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEncoder() *Encoder {
	return NewEncoder(DefaultStudies, DefaultBucketPolicy(), zap.NewNop())
}

func TestEncodeScenario(t *testing.T) {
	records, err := newTestEncoder().Encode(common.ScenarioIndividual())
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]

	t.Run("should populate identity fields", func(t *testing.T) {
		assert.Equal(t, "IND1_ENSG00000139618_T1", record.Id)
		assert.Equal(t, "IND1", record.IndividualId)
		assert.Equal(t, "S1", record.SampleId)
		assert.Equal(t, "BRCA2", record.GeneName)
		assert.Equal(t, "T1", record.TranscriptId)
		assert.Equal(t, 1, record.NumParents)
		assert.Equal(t, []string{"HP:0003002"}, record.Phenotypes)
		assert.Len(t, record.PhenotypeJson, 1)
	})

	t.Run("should keep per-variant arrays aligned with the variant json", func(t *testing.T) {
		assert.Equal(t, []string{"V1", "V2", "V3"}, record.Variants)
		require.Len(t, record.VariantJson, 3)
		for i, blob := range record.VariantJson {
			var variant models.KnockoutVariant
			require.NoError(t, json.Unmarshal([]byte(blob), &variant))
			assert.Equal(t, record.Variants[i], variant.Id)
		}
		assert.Equal(t, []float64{0.0002, 0.003, 0}, record.PopulationFrequencies["1kG_phase3"])
		assert.Equal(t, []float64{0, 0.0004, 0.02}, record.PopulationFrequencies["GNOMAD_GENOMES"])
	})

	t.Run("should deduplicate summaries", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"HOM_ALT", "COMP_HET"}, record.KnockoutTypes)
		assert.ElementsMatch(t, []string{"PASS", "NOT_PASS"}, record.Filters)
		assert.ElementsMatch(t, []string{"missense_variant", "stop_gained", "frameshift_variant"}, record.ConsequenceTypes)
	})

	t.Run("should emit single variant tokens", func(t *testing.T) {
		for _, token := range []string{
			"HOA", "HOA__P", "HOA__P__1583", "HOA__P__1583__P1-3", "HOA__P__1583__P2-1",
			"HOA__P__P1-3", "HOA__P__P2-1",
			"CH", "CH__NP", "CH__NP__1587", "CH__NP__1587__P1-5", "CH__NP__P2-3",
			"CH__NP__1589__P2-7",
		} {
			assert.Contains(t, record.CompoundFilters, token)
		}
	})

	t.Run("should emit compound heterozygous pair tokens", func(t *testing.T) {
		for _, token := range []string{
			"CH__NP__NP",
			"CH__NP__NP__1587__1589",
			"CH__NP__NP__1587__1589__P1-1__P1-5",
			"CH__NP__NP__1587__1589__P2-3__P2-7",
			"CH__NP__NP__P1-5__P2-7",
			"CH__NP__NP__P1-5",
			"CH__NP__NP__P2-7",
		} {
			assert.Contains(t, record.CompoundFilters, token)
		}
		assert.NotContains(t, record.CompoundFilters, "CH__NP__NP__P1-1")
	})

	t.Run("should sort the token set", func(t *testing.T) {
		assert.IsNonDecreasing(t, record.CompoundFilters)
	})
}

func TestEncodeIsDeterministic(t *testing.T) {
	encoder := newTestEncoder()

	first, err := encoder.Encode(common.ScenarioIndividual())
	require.NoError(t, err)
	second, err := encoder.Encode(common.ScenarioIndividual())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncodeSkipsEmptyTranscripts(t *testing.T) {
	records, err := newTestEncoder().Encode(common.SecondIndividual())
	require.NoError(t, err)

	var ids []string
	for _, record := range records {
		ids = append(ids, record.TranscriptId)
	}
	assert.Equal(t, []string{"T2", "T1"}, ids)
}

func TestEncodeDropsUnencodableVariants(t *testing.T) {
	individual := models.KnockoutByIndividual{
		Id: "IND9",
		Genes: []models.KnockoutGene{{
			Id: "G1",
			Transcripts: []models.KnockoutTranscript{{
				Id: "T9",
				Variants: []models.KnockoutVariant{
					{Id: "BAD", Qual: math.NaN(), KnockoutType: knockoutType.HomAlt},
					{Id: "GOOD", Filter: "PASS", KnockoutType: knockoutType.HomAlt},
				},
			}},
		}},
	}

	records, err := newTestEncoder().Encode(individual)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"GOOD"}, records[0].Variants)
	assert.Len(t, records[0].VariantJson, 1)
}

func TestEncodeLeavesNonCompoundTypesOutOfTokens(t *testing.T) {
	individual := models.KnockoutByIndividual{
		Id: "IND8",
		Genes: []models.KnockoutGene{{
			Id: "G1",
			Transcripts: []models.KnockoutTranscript{{
				Id:       "T8",
				Variants: []models.KnockoutVariant{{Id: "V8", Filter: "PASS", KnockoutType: knockoutType.Het}},
			}},
		}},
	}

	records, err := newTestEncoder().Encode(individual)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"HET"}, records[0].KnockoutTypes)
	assert.Empty(t, records[0].CompoundFilters)
}

func TestEncodeAllKeepsInputOrder(t *testing.T) {
	individuals := []models.KnockoutByIndividual{common.SecondIndividual(), common.ScenarioIndividual()}

	records, err := newTestEncoder().EncodeAll(context.Background(), individuals, 2)
	require.NoError(t, err)

	var ids []string
	for _, record := range records {
		ids = append(ids, record.Id)
	}
	assert.Equal(t, []string{
		"IND4_ENSG00000141510_T2",
		"IND4_ENSG00000139618_T1",
		"IND1_ENSG00000139618_T1",
	}, ids)
}

func TestEncodeNormalizesChromosome(t *testing.T) {
	for input, expected := range map[string]string{"chr13": "13", "chrX": "X", "chrM": "MT", "13": "13"} {
		individual := common.ScenarioIndividual()
		individual.Genes[0].Chromosome = input

		records, err := newTestEncoder().Encode(individual)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, expected, records[0].Chromosome, input)
	}
}
