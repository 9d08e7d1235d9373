package models

// KnockoutQuery carries every caller-facing query parameter. List values
// within one field are OR-ed, fields are AND-ed.
type KnockoutQuery struct {
	Collection string `json:"collection,omitempty"`

	SampleIds          []string `json:"sampleIds,omitempty"`
	IndividualIds      []string `json:"individualIds,omitempty"`
	Sex                []string `json:"sex,omitempty"`
	Phenotypes         []string `json:"phenotypes,omitempty"`
	Disorders          []string `json:"disorders,omitempty"`
	NumParents         []string `json:"numParents,omitempty"`
	GeneIds            []string `json:"geneIds,omitempty"`
	GeneNames          []string `json:"geneNames,omitempty"`
	GeneBiotypes       []string `json:"geneBiotypes,omitempty"`
	Chromosomes        []string `json:"chromosomes,omitempty"`
	TranscriptIds      []string `json:"transcriptIds,omitempty"`
	TranscriptBiotypes []string `json:"transcriptBiotypes,omitempty"`
	VariantIds         []string `json:"variantIds,omitempty"`

	KnockoutTypes         []string `json:"knockoutTypes,omitempty"`
	Filters               []string `json:"filters,omitempty"`
	ConsequenceTypes      []string `json:"consequenceTypes,omitempty"`
	PopulationFrequencies []string `json:"populationFrequencies,omitempty"`

	Skip    int      `json:"skip" validate:"gte=0"`
	Limit   int      `json:"limit" validate:"gte=0"`
	Sort    string   `json:"sort,omitempty"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	Facets  []string `json:"facets,omitempty"`
}

// HasVariantConstraints reports whether any per-variant dimension was given.
func (q KnockoutQuery) HasVariantConstraints() bool {
	return len(q.VariantIds) > 0 || len(q.KnockoutTypes) > 0 || len(q.Filters) > 0 ||
		len(q.ConsequenceTypes) > 0 || len(q.PopulationFrequencies) > 0
}
