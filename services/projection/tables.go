package projection

import (
	"sort"

	"rga/api/models/indexes"
)

// Table maps the dotted paths of one output shape to the physical fields
// needed to rebuild them. Required fields are fetched on every request:
// the reconstructors group on them.
type Table struct {
	name     string
	fields   map[string][]string
	required []string
}

func (t Table) Name() string {
	return t.name
}

// Keys returns the logical paths, sorted.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t.fields))
	for key := range t.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a copy of the physical fields behind a logical path.
func (t Table) Fields(key string) []string {
	return append([]string(nil), t.fields[key]...)
}

func (t Table) Required() []string {
	return append([]string(nil), t.required...)
}

var (
	IndividualFields = newTable("individual",
		merge(individualLevel(""), geneLevel("genes."), transcriptLevel("genes.transcripts."), variantLevel("genes.transcripts.variants.")),
		indexes.ID, indexes.INDIVIDUAL_ID, indexes.GENE_ID, indexes.TRANSCRIPT_ID)

	GeneFields = newTable("gene",
		merge(geneLevel(""), individualLevel("individuals."), transcriptLevel("individuals.transcripts."), variantLevel("individuals.transcripts.variants.")),
		indexes.ID, indexes.INDIVIDUAL_ID, indexes.GENE_ID, indexes.TRANSCRIPT_ID)

	VariantFields = newTable("variant",
		merge(
			map[string][]string{"id": {indexes.VARIANTS, indexes.VARIANT_JSON}},
			individualLevel("individuals."),
			geneLevel("individuals.genes."),
			transcriptLevel("individuals.genes.transcripts."),
			variantLevel("individuals.genes.transcripts.variants."),
		),
		indexes.ID, indexes.INDIVIDUAL_ID, indexes.GENE_ID, indexes.TRANSCRIPT_ID, indexes.VARIANTS, indexes.VARIANT_JSON)
)

func newTable(name string, fields map[string][]string, required ...string) Table {
	return Table{name: name, fields: fields, required: required}
}

func individualLevel(prefix string) map[string][]string {
	return map[string][]string{
		prefix + "id":             {indexes.INDIVIDUAL_ID},
		prefix + "sampleId":       {indexes.SAMPLE_ID},
		prefix + "sex":            {indexes.SEX},
		prefix + "phenotypes":     {indexes.PHENOTYPES, indexes.PHENOTYPE_JSON},
		prefix + "disorders":      {indexes.DISORDERS, indexes.DISORDER_JSON},
		prefix + "fatherId":       {indexes.FATHER_ID},
		prefix + "motherId":       {indexes.MOTHER_ID},
		prefix + "fatherSampleId": {indexes.FATHER_SAMPLE_ID},
		prefix + "motherSampleId": {indexes.MOTHER_SAMPLE_ID},
		prefix + "numParents":     {indexes.NUM_PARENTS},
	}
}

func geneLevel(prefix string) map[string][]string {
	return map[string][]string{
		prefix + "id":         {indexes.GENE_ID},
		prefix + "name":       {indexes.GENE_NAME},
		prefix + "biotype":    {indexes.GENE_BIOTYPE},
		prefix + "chromosome": {indexes.CHROMOSOME},
	}
}

func transcriptLevel(prefix string) map[string][]string {
	return map[string][]string{
		prefix + "id":         {indexes.TRANSCRIPT_ID},
		prefix + "biotype":    {indexes.TRANSCRIPT_BIOTYPE},
		prefix + "chromosome": {indexes.CHROMOSOME},
		prefix + "start":      {indexes.START},
		prefix + "end":        {indexes.END},
		prefix + "strand":     {indexes.STRAND},
	}
}

// variantLevel: every variant attribute lives in the variant JSON.
func variantLevel(prefix string) map[string][]string {
	level := map[string][]string{}
	for _, attribute := range []string{
		"id", "dbSnp", "genotype", "filter", "qual", "type", "knockoutType",
		"sequenceOntologyTerms", "populationFrequencies", "clinicalSignificance",
	} {
		level[prefix+attribute] = []string{indexes.VARIANTS, indexes.VARIANT_JSON}
	}
	return level
}

func merge(levels ...map[string][]string) map[string][]string {
	merged := map[string][]string{}
	for _, level := range levels {
		for key, fields := range level {
			merged[key] = fields
		}
	}
	return merged
}

// RecordFields serves the native record view: every physical field is its
// own logical path.
var RecordFields = func() Table {
	fields := map[string][]string{}
	for _, field := range indexes.AllFields {
		fields[field] = []string{field}
	}
	return newTable("record", fields, indexes.ID)
}()
