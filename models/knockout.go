package models

import (
	"rga/api/models/constants"
)

type SequenceOntologyTerm struct {
	Accession string `json:"accession"`
	Name      string `json:"name"`
}

type PopulationFrequency struct {
	Study         string  `json:"study"`
	Population    string  `json:"population"`
	AltAlleleFreq float64 `json:"altAlleleFreq"`
}

type KnockoutVariant struct {
	Id                    string                 `json:"id"`
	DbSnp                 string                 `json:"dbSnp,omitempty"`
	Genotype              string                 `json:"genotype"`
	Filter                string                 `json:"filter"`
	Qual                  float64                `json:"qual"`
	Type                  string                 `json:"type,omitempty"`
	KnockoutType          constants.KnockoutType `json:"knockoutType"`
	SequenceOntologyTerms []SequenceOntologyTerm `json:"sequenceOntologyTerms"`
	PopulationFrequencies []PopulationFrequency  `json:"populationFrequencies"`
	ClinicalSignificance  []string               `json:"clinicalSignificance,omitempty"`
}

type KnockoutTranscript struct {
	Id         string            `json:"id"`
	Chromosome string            `json:"chromosome,omitempty"`
	Start      int               `json:"start,omitempty"`
	End        int               `json:"end,omitempty"`
	Biotype    string            `json:"biotype,omitempty"`
	Strand     string            `json:"strand,omitempty"`
	Variants   []KnockoutVariant `json:"variants"`
}

type KnockoutGene struct {
	Id          string               `json:"id"`
	Name        string               `json:"name,omitempty"`
	Chromosome  string               `json:"chromosome,omitempty"`
	Start       int                  `json:"start,omitempty"`
	End         int                  `json:"end,omitempty"`
	Biotype     string               `json:"biotype,omitempty"`
	Strand      string               `json:"strand,omitempty"`
	Transcripts []KnockoutTranscript `json:"transcripts"`
}

type Phenotype struct {
	Id     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source,omitempty"`
}

type Disorder struct {
	Id     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source,omitempty"`
}

// KnockoutByIndividual is both the ingestion unit and the
// individual-centric view.
type KnockoutByIndividual struct {
	Id             string         `json:"id"`
	SampleId       string         `json:"sampleId"`
	Sex            string         `json:"sex,omitempty"`
	Phenotypes     []Phenotype    `json:"phenotypes,omitempty"`
	Disorders      []Disorder     `json:"disorders,omitempty"`
	FatherId       string         `json:"fatherId,omitempty"`
	MotherId       string         `json:"motherId,omitempty"`
	FatherSampleId string         `json:"fatherSampleId,omitempty"`
	MotherSampleId string         `json:"motherSampleId,omitempty"`
	NumParents     int            `json:"numParents"`
	Genes          []KnockoutGene `json:"genes"`
}

// ParentCount counts the parents that were sequenced alongside the individual.
func (k KnockoutByIndividual) ParentCount() int {
	count := 0
	if k.FatherSampleId != "" {
		count++
	}
	if k.MotherSampleId != "" {
		count++
	}
	return count
}

type KnockoutGeneIndividual struct {
	Id          string               `json:"id"`
	SampleId    string               `json:"sampleId"`
	Sex         string               `json:"sex,omitempty"`
	NumParents  int                  `json:"numParents"`
	Phenotypes  []Phenotype          `json:"phenotypes,omitempty"`
	Disorders   []Disorder           `json:"disorders,omitempty"`
	Transcripts []KnockoutTranscript `json:"transcripts"`
}

type RgaKnockoutByGene struct {
	Id          string                   `json:"id"`
	Name        string                   `json:"name,omitempty"`
	Chromosome  string                   `json:"chromosome,omitempty"`
	Start       int                      `json:"start,omitempty"`
	End         int                      `json:"end,omitempty"`
	Biotype     string                   `json:"biotype,omitempty"`
	Strand      string                   `json:"strand,omitempty"`
	Individuals []KnockoutGeneIndividual `json:"individuals"`
}

type KnockoutByVariant struct {
	Id          string                 `json:"id"`
	Individuals []KnockoutByIndividual `json:"individuals"`
}
