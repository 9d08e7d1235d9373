package indexes

// Physical field names of the flat knockout document.
const (
	ID                     = "id"
	INDIVIDUAL_ID          = "individualId"
	SAMPLE_ID              = "sampleId"
	SEX                    = "sex"
	PHENOTYPES             = "phenotypes"
	PHENOTYPE_JSON         = "phenotypeJson"
	DISORDERS              = "disorders"
	DISORDER_JSON          = "disorderJson"
	FATHER_ID              = "fatherId"
	MOTHER_ID              = "motherId"
	FATHER_SAMPLE_ID       = "fatherSampleId"
	MOTHER_SAMPLE_ID       = "motherSampleId"
	NUM_PARENTS            = "numParents"
	GENE_ID                = "geneId"
	GENE_NAME              = "geneName"
	GENE_BIOTYPE           = "geneBiotype"
	CHROMOSOME             = "chromosome"
	START                  = "start"
	END                    = "end"
	STRAND                 = "strand"
	TRANSCRIPT_ID          = "transcriptId"
	TRANSCRIPT_BIOTYPE     = "transcriptBiotype"
	VARIANTS               = "variants"
	TYPES                  = "types"
	KNOCKOUT_TYPES         = "knockoutTypes"
	FILTERS                = "filters"
	CONSEQUENCE_TYPES      = "consequenceTypes"
	CLINICAL_SIGNIFICANCES = "clinicalSignificances"
	POPULATION_FREQUENCIES = "populationFrequencies"
	COMPOUND_FILTERS       = "compoundFilters"
	VARIANT_JSON           = "variantJson"
)

// AllFields lists every physical field, in mapping order.
var AllFields = []string{
	ID, INDIVIDUAL_ID, SAMPLE_ID, SEX, PHENOTYPES, PHENOTYPE_JSON, DISORDERS, DISORDER_JSON,
	FATHER_ID, MOTHER_ID, FATHER_SAMPLE_ID, MOTHER_SAMPLE_ID, NUM_PARENTS,
	GENE_ID, GENE_NAME, GENE_BIOTYPE, CHROMOSOME, START, END, STRAND,
	TRANSCRIPT_ID, TRANSCRIPT_BIOTYPE,
	VARIANTS, TYPES, KNOCKOUT_TYPES, FILTERS, CONSEQUENCE_TYPES, CLINICAL_SIGNIFICANCES,
	POPULATION_FREQUENCIES, COMPOUND_FILTERS, VARIANT_JSON,
}

// FacetableFields are the keyword fields a terms aggregation may run on.
var FacetableFields = []string{
	INDIVIDUAL_ID, SAMPLE_ID, SEX, PHENOTYPES, DISORDERS, NUM_PARENTS,
	GENE_ID, GENE_NAME, GENE_BIOTYPE, CHROMOSOME, STRAND, TRANSCRIPT_ID, TRANSCRIPT_BIOTYPE,
	VARIANTS, TYPES, KNOCKOUT_TYPES, FILTERS, CONSEQUENCE_TYPES, CLINICAL_SIGNIFICANCES,
}

// FlatRecord is the only persisted unit: one document per
// (individual, gene, transcript). VariantJson is authoritative for
// per-variant detail; KnockoutTypes, Filters, ConsequenceTypes and
// ClinicalSignificances are distinct summaries and carry no position.
type FlatRecord struct {
	Id             string   `json:"id" mapstructure:"id"`
	IndividualId   string   `json:"individualId" mapstructure:"individualId"`
	SampleId       string   `json:"sampleId" mapstructure:"sampleId"`
	Sex            string   `json:"sex,omitempty" mapstructure:"sex"`
	Phenotypes     []string `json:"phenotypes,omitempty" mapstructure:"phenotypes"`
	PhenotypeJson  []string `json:"phenotypeJson,omitempty" mapstructure:"phenotypeJson"`
	Disorders      []string `json:"disorders,omitempty" mapstructure:"disorders"`
	DisorderJson   []string `json:"disorderJson,omitempty" mapstructure:"disorderJson"`
	FatherId       string   `json:"fatherId,omitempty" mapstructure:"fatherId"`
	MotherId       string   `json:"motherId,omitempty" mapstructure:"motherId"`
	FatherSampleId string   `json:"fatherSampleId,omitempty" mapstructure:"fatherSampleId"`
	MotherSampleId string   `json:"motherSampleId,omitempty" mapstructure:"motherSampleId"`
	NumParents     int      `json:"numParents" mapstructure:"numParents"`

	GeneId            string `json:"geneId" mapstructure:"geneId"`
	GeneName          string `json:"geneName,omitempty" mapstructure:"geneName"`
	GeneBiotype       string `json:"geneBiotype,omitempty" mapstructure:"geneBiotype"`
	Chromosome        string `json:"chromosome,omitempty" mapstructure:"chromosome"`
	Start             int    `json:"start,omitempty" mapstructure:"start"`
	End               int    `json:"end,omitempty" mapstructure:"end"`
	Strand            string `json:"strand,omitempty" mapstructure:"strand"`
	TranscriptId      string `json:"transcriptId" mapstructure:"transcriptId"`
	TranscriptBiotype string `json:"transcriptBiotype,omitempty" mapstructure:"transcriptBiotype"`

	Variants              []string             `json:"variants" mapstructure:"variants"`
	Types                 []string             `json:"types,omitempty" mapstructure:"types"`
	KnockoutTypes         []string             `json:"knockoutTypes" mapstructure:"knockoutTypes"`
	Filters               []string             `json:"filters" mapstructure:"filters"`
	ConsequenceTypes      []string             `json:"consequenceTypes" mapstructure:"consequenceTypes"`
	ClinicalSignificances []string             `json:"clinicalSignificances,omitempty" mapstructure:"clinicalSignificances"`
	PopulationFrequencies map[string][]float64 `json:"populationFrequencies,omitempty" mapstructure:"populationFrequencies"`
	CompoundFilters       []string             `json:"compoundFilters" mapstructure:"compoundFilters"`
	VariantJson           []string             `json:"variantJson" mapstructure:"variantJson"`
}

var MAPPING_KEYWORD = map[string]interface{}{"type": "keyword"}
var MAPPING_LONG = map[string]interface{}{"type": "long"}
var MAPPING_FLOAT64 = map[string]interface{}{"type": "double"}
var MAPPING_STORED_ONLY = map[string]interface{}{"type": "keyword", "index": false, "doc_values": false}

// KNOCKOUT_INDEX_MAPPING keeps every filterable field as an exact-match
// keyword; JSON blobs are stored but never indexed.
var KNOCKOUT_INDEX_MAPPING = map[string]interface{}{
	"dynamic_templates": []interface{}{
		map[string]interface{}{
			"population_frequencies": map[string]interface{}{
				"path_match": POPULATION_FREQUENCIES + ".*",
				"mapping":    MAPPING_FLOAT64,
			},
		},
	},
	"properties": map[string]interface{}{
		ID:                     MAPPING_KEYWORD,
		INDIVIDUAL_ID:          MAPPING_KEYWORD,
		SAMPLE_ID:              MAPPING_KEYWORD,
		SEX:                    MAPPING_KEYWORD,
		PHENOTYPES:             MAPPING_KEYWORD,
		PHENOTYPE_JSON:         MAPPING_STORED_ONLY,
		DISORDERS:              MAPPING_KEYWORD,
		DISORDER_JSON:          MAPPING_STORED_ONLY,
		FATHER_ID:              MAPPING_KEYWORD,
		MOTHER_ID:              MAPPING_KEYWORD,
		FATHER_SAMPLE_ID:       MAPPING_KEYWORD,
		MOTHER_SAMPLE_ID:       MAPPING_KEYWORD,
		NUM_PARENTS:            MAPPING_LONG,
		GENE_ID:                MAPPING_KEYWORD,
		GENE_NAME:              MAPPING_KEYWORD,
		GENE_BIOTYPE:           MAPPING_KEYWORD,
		CHROMOSOME:             MAPPING_KEYWORD,
		START:                  MAPPING_LONG,
		END:                    MAPPING_LONG,
		STRAND:                 MAPPING_KEYWORD,
		TRANSCRIPT_ID:          MAPPING_KEYWORD,
		TRANSCRIPT_BIOTYPE:     MAPPING_KEYWORD,
		VARIANTS:               MAPPING_KEYWORD,
		TYPES:                  MAPPING_KEYWORD,
		KNOCKOUT_TYPES:         MAPPING_KEYWORD,
		FILTERS:                MAPPING_KEYWORD,
		CONSEQUENCE_TYPES:      MAPPING_KEYWORD,
		CLINICAL_SIGNIFICANCES: MAPPING_KEYWORD,
		POPULATION_FREQUENCIES: map[string]interface{}{"type": "object"},
		COMPOUND_FILTERS:       MAPPING_KEYWORD,
		VARIANT_JSON:           MAPPING_STORED_ONLY,
	},
}
