package views

import (
	"rga/api/models"
	knockoutType "rga/api/models/constants/knockout-type"
	"rga/api/models/indexes"
)

type individualNode = node[models.KnockoutByIndividual, models.KnockoutGene]

// Variants pivots the individual trees into one bucket per variant id, in
// first-appearance order. Each bucket carries copies of the individuals
// limited to the transcripts holding that variant; a COMP_HET variant
// brings its COMP_HET siblings on the same transcript along. An empty
// variantIds keeps every variant. With a predicate, an occurrence is only
// bucketed when that individual's copy of the variant satisfies it.
func (r *Reconstructor) Variants(records []indexes.FlatRecord, variantIds []string, predicate func(models.KnockoutVariant) bool) []models.KnockoutByVariant {
	wanted := map[string]bool{}
	for _, id := range variantIds {
		if id != "" {
			wanted[id] = true
		}
	}

	buckets := newOrderedMap[node[models.KnockoutByVariant, individualNode]]()
	for _, individual := range r.Individuals(records, nil) {
		for _, g := range individual.Genes {
			for _, transcript := range g.Transcripts {
				for _, variant := range transcript.Variants {
					if len(wanted) > 0 && !wanted[variant.Id] {
						continue
					}
					if predicate != nil && !predicate(variant) {
						continue
					}
					id := variant.Id
					bucket := buckets.getOrCreate(id, func() node[models.KnockoutByVariant, individualNode] {
						return newNode[models.KnockoutByVariant, individualNode](models.KnockoutByVariant{Id: id})
					})
					holder := bucket.children.getOrCreate(individual.Id, func() individualNode {
						return newNode[models.KnockoutByIndividual, models.KnockoutGene](shallowIndividual(individual))
					})
					geneCopy := holder.children.getOrCreate(g.Id, func() models.KnockoutGene {
						return shallowGene(g)
					})
					geneCopy.Transcripts = append(geneCopy.Transcripts, partnersOf(transcript, variant))
				}
			}
		}
	}

	result := make([]models.KnockoutByVariant, 0, buckets.len())
	buckets.each(func(bucket *node[models.KnockoutByVariant, individualNode]) {
		byVariant := bucket.value
		bucket.children.each(func(holder *individualNode) {
			individual := holder.value
			individual.Genes = holder.childValues()
			byVariant.Individuals = append(byVariant.Individuals, individual)
		})
		result = append(result, byVariant)
	})
	return result
}

// partnersOf copies the transcript keeping the matched variant and, when it
// is COMP_HET, the transcript's other COMP_HET variants.
func partnersOf(transcript models.KnockoutTranscript, matched models.KnockoutVariant) models.KnockoutTranscript {
	out := transcript
	out.Variants = []models.KnockoutVariant{}
	compHet := matched.KnockoutType == knockoutType.CompHet
	for _, variant := range transcript.Variants {
		if variant.Id == matched.Id || (compHet && variant.KnockoutType == knockoutType.CompHet) {
			out.Variants = append(out.Variants, copyVariant(variant))
		}
	}
	return out
}

func shallowIndividual(individual models.KnockoutByIndividual) models.KnockoutByIndividual {
	out := individual
	out.Phenotypes = append([]models.Phenotype(nil), individual.Phenotypes...)
	out.Disorders = append([]models.Disorder(nil), individual.Disorders...)
	out.Genes = nil
	return out
}

func shallowGene(g models.KnockoutGene) models.KnockoutGene {
	out := g
	out.Transcripts = nil
	return out
}

func copyVariant(variant models.KnockoutVariant) models.KnockoutVariant {
	out := variant
	out.SequenceOntologyTerms = append([]models.SequenceOntologyTerm(nil), variant.SequenceOntologyTerms...)
	out.PopulationFrequencies = append([]models.PopulationFrequency(nil), variant.PopulationFrequencies...)
	out.ClinicalSignificance = append([]string(nil), variant.ClinicalSignificance...)
	return out
}
