package views

import (
	"encoding/json"

	"rga/api/models"
	"rga/api/models/indexes"

	"go.uber.org/zap"
)

type (
	// Reconstructor rebuilds hierarchical views out of flat records. It
	// holds no state besides its logger and is safe for concurrent use.
	Reconstructor struct {
		Logger *zap.Logger
	}

	grouping[O any, I any] struct {
		outerKey func(indexes.FlatRecord) string
		outer    func(indexes.FlatRecord) O
		innerKey func(indexes.FlatRecord) string
		inner    func(indexes.FlatRecord) I
		attach   func(*I, models.KnockoutTranscript)
	}
)

func NewReconstructor(logger *zap.Logger) *Reconstructor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconstructor{Logger: logger}
}

// group walks the records in order, locating or creating the outer node,
// then the inner node, and appends one fresh transcript per record.
func group[O any, I any](r *Reconstructor, records []indexes.FlatRecord, g grouping[O, I], predicate func(models.KnockoutVariant) bool) *orderedMap[node[O, I]] {
	tree := newOrderedMap[node[O, I]]()
	for _, record := range records {
		transcript, ok := r.transcript(record, predicate)
		if !ok {
			continue
		}
		outer := tree.getOrCreate(g.outerKey(record), func() node[O, I] {
			return newNode[O, I](g.outer(record))
		})
		inner := outer.children.getOrCreate(g.innerKey(record), func() I {
			return g.inner(record)
		})
		g.attach(inner, transcript)
	}
	return tree
}

// Individuals groups records by individual, then gene. With a predicate,
// variants failing it are dropped and emptied transcripts are skipped.
func (r *Reconstructor) Individuals(records []indexes.FlatRecord, predicate func(models.KnockoutVariant) bool) []models.KnockoutByIndividual {
	tree := group(r, records, grouping[models.KnockoutByIndividual, models.KnockoutGene]{
		outerKey: individualKey,
		outer:    r.individual,
		innerKey: geneKey,
		inner:    gene,
		attach: func(g *models.KnockoutGene, t models.KnockoutTranscript) {
			g.Transcripts = append(g.Transcripts, t)
		},
	}, predicate)

	individuals := make([]models.KnockoutByIndividual, 0, tree.len())
	tree.each(func(n *node[models.KnockoutByIndividual, models.KnockoutGene]) {
		individual := n.value
		individual.Genes = n.childValues()
		individuals = append(individuals, individual)
	})
	return individuals
}

// Genes groups records by gene, then individual.
func (r *Reconstructor) Genes(records []indexes.FlatRecord, predicate func(models.KnockoutVariant) bool) []models.RgaKnockoutByGene {
	tree := group(r, records, grouping[models.RgaKnockoutByGene, models.KnockoutGeneIndividual]{
		outerKey: geneKey,
		outer: func(record indexes.FlatRecord) models.RgaKnockoutByGene {
			g := gene(record)
			return models.RgaKnockoutByGene{
				Id:         g.Id,
				Name:       g.Name,
				Chromosome: g.Chromosome,
				Biotype:    g.Biotype,
			}
		},
		innerKey: individualKey,
		inner: func(record indexes.FlatRecord) models.KnockoutGeneIndividual {
			individual := r.individual(record)
			return models.KnockoutGeneIndividual{
				Id:         individual.Id,
				SampleId:   individual.SampleId,
				Sex:        individual.Sex,
				NumParents: individual.NumParents,
				Phenotypes: individual.Phenotypes,
				Disorders:  individual.Disorders,
			}
		},
		attach: func(i *models.KnockoutGeneIndividual, t models.KnockoutTranscript) {
			i.Transcripts = append(i.Transcripts, t)
		},
	}, predicate)

	genes := make([]models.RgaKnockoutByGene, 0, tree.len())
	tree.each(func(n *node[models.RgaKnockoutByGene, models.KnockoutGeneIndividual]) {
		g := n.value
		g.Individuals = n.childValues()
		genes = append(genes, g)
	})
	return genes
}

func individualKey(record indexes.FlatRecord) string {
	return record.IndividualId
}

func geneKey(record indexes.FlatRecord) string {
	return record.GeneId
}

func gene(record indexes.FlatRecord) models.KnockoutGene {
	return models.KnockoutGene{
		Id:         record.GeneId,
		Name:       record.GeneName,
		Chromosome: record.Chromosome,
		Biotype:    record.GeneBiotype,
	}
}

func (r *Reconstructor) individual(record indexes.FlatRecord) models.KnockoutByIndividual {
	individual := models.KnockoutByIndividual{
		Id:             record.IndividualId,
		SampleId:       record.SampleId,
		Sex:            record.Sex,
		FatherId:       record.FatherId,
		MotherId:       record.MotherId,
		FatherSampleId: record.FatherSampleId,
		MotherSampleId: record.MotherSampleId,
		NumParents:     record.NumParents,
	}
	for _, blob := range record.PhenotypeJson {
		var phenotype models.Phenotype
		if err := json.Unmarshal([]byte(blob), &phenotype); err != nil {
			r.Logger.Warn("skipping unparsable phenotype", zap.String("record", record.Id), zap.Error(err))
			continue
		}
		individual.Phenotypes = append(individual.Phenotypes, phenotype)
	}
	for _, blob := range record.DisorderJson {
		var disorder models.Disorder
		if err := json.Unmarshal([]byte(blob), &disorder); err != nil {
			r.Logger.Warn("skipping unparsable disorder", zap.String("record", record.Id), zap.Error(err))
			continue
		}
		individual.Disorders = append(individual.Disorders, disorder)
	}
	return individual
}

// transcript builds the record's transcript node. It reports false when a
// predicate was given and no variant survived it.
func (r *Reconstructor) transcript(record indexes.FlatRecord, predicate func(models.KnockoutVariant) bool) (models.KnockoutTranscript, bool) {
	transcript := models.KnockoutTranscript{
		Id:         record.TranscriptId,
		Chromosome: record.Chromosome,
		Start:      record.Start,
		End:        record.End,
		Biotype:    record.TranscriptBiotype,
		Strand:     record.Strand,
		Variants:   []models.KnockoutVariant{},
	}
	for _, blob := range record.VariantJson {
		var variant models.KnockoutVariant
		if err := json.Unmarshal([]byte(blob), &variant); err != nil {
			r.Logger.Warn("skipping unparsable variant", zap.String("record", record.Id), zap.Error(err))
			continue
		}
		if predicate != nil && !predicate(variant) {
			continue
		}
		transcript.Variants = append(transcript.Variants, variant)
	}
	if predicate != nil && len(transcript.Variants) == 0 {
		return transcript, false
	}
	return transcript, true
}
