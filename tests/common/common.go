package common

import (
	"fmt"
	"os"
	"path"
	"runtime"

	"rga/api/models"
	knockoutType "rga/api/models/constants/knockout-type"

	yaml "gopkg.in/yaml.v2"
)

func InitConfig() *models.Config {
	var cfg models.Config

	// get this file's path
	_, filename, _, _ := runtime.Caller(0)
	folderpath := path.Dir(filename)

	// retrieve common's test.config
	f, err := os.Open(fmt.Sprintf("%s/test.config.yml", folderpath))
	if err != nil {
		processError(err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&cfg)
	if err != nil {
		processError(err)
	}

	return &cfg
}

func processError(err error) {
	fmt.Println(err)
	os.Exit(2)
}

func Frequency(study string, freq float64) models.PopulationFrequency {
	return models.PopulationFrequency{Study: study, Population: "ALL", AltAlleleFreq: freq}
}

// ScenarioIndividual builds IND1 / S1 with gene BRCA2 and transcript T1
// holding V1 (HOM_ALT, PASS, missense) and the COMP_HET pair V2 / V3.
func ScenarioIndividual() models.KnockoutByIndividual {
	return models.KnockoutByIndividual{
		Id:             "IND1",
		SampleId:       "S1",
		Sex:            "FEMALE",
		Phenotypes:     []models.Phenotype{{Id: "HP:0003002", Name: "Breast carcinoma"}},
		Disorders:      []models.Disorder{{Id: "OMIM:612555", Name: "Breast-ovarian cancer"}},
		FatherId:       "IND2",
		MotherId:       "IND3",
		FatherSampleId: "S2",
		Genes: []models.KnockoutGene{
			{
				Id:         "ENSG00000139618",
				Name:       "BRCA2",
				Chromosome: "13",
				Biotype:    "protein_coding",
				Transcripts: []models.KnockoutTranscript{
					{
						Id:      "T1",
						Biotype: "protein_coding",
						Strand:  "+",
						Variants: []models.KnockoutVariant{
							{
								Id:           "V1",
								Genotype:     "1/1",
								Filter:       "PASS",
								KnockoutType: knockoutType.HomAlt,
								SequenceOntologyTerms: []models.SequenceOntologyTerm{
									{Accession: "SO:0001583", Name: "missense_variant"},
								},
								PopulationFrequencies: []models.PopulationFrequency{
									Frequency("1kG_phase3", 0.0002),
								},
							},
							{
								Id:           "V2",
								Genotype:     "0/1",
								Filter:       "LowQual",
								KnockoutType: knockoutType.CompHet,
								SequenceOntologyTerms: []models.SequenceOntologyTerm{
									{Accession: "SO:0001587", Name: "stop_gained"},
								},
								PopulationFrequencies: []models.PopulationFrequency{
									Frequency("1kG_phase3", 0.003),
									Frequency("GNOMAD_GENOMES", 0.0004),
								},
							},
							{
								Id:           "V3",
								Genotype:     "0/1",
								Filter:       "LowQual",
								KnockoutType: knockoutType.CompHet,
								SequenceOntologyTerms: []models.SequenceOntologyTerm{
									{Accession: "SO:0001589", Name: "frameshift_variant"},
								},
								PopulationFrequencies: []models.PopulationFrequency{
									Frequency("GNOMAD_GENOMES", 0.02),
								},
							},
						},
					},
				},
			},
		},
	}
}

// SecondIndividual carries BRCA2 / T1 and TP53 / T2, so gene views have
// more than one individual and individual views more than one gene.
func SecondIndividual() models.KnockoutByIndividual {
	return models.KnockoutByIndividual{
		Id:       "IND4",
		SampleId: "S4",
		Sex:      "MALE",
		Genes: []models.KnockoutGene{
			{
				Id:   "ENSG00000141510",
				Name: "TP53",
				Transcripts: []models.KnockoutTranscript{
					{
						Id: "T2",
						Variants: []models.KnockoutVariant{
							{Id: "V4", Filter: "PASS", KnockoutType: knockoutType.HomAlt,
								SequenceOntologyTerms: []models.SequenceOntologyTerm{{Name: "stop_lost"}}},
						},
					},
					{
						Id:       "T3",
						Variants: []models.KnockoutVariant{},
					},
				},
			},
			{
				Id:   "ENSG00000139618",
				Name: "BRCA2",
				Transcripts: []models.KnockoutTranscript{
					{
						Id: "T1",
						Variants: []models.KnockoutVariant{
							{Id: "V1", Filter: "PASS", KnockoutType: knockoutType.HetAlt,
								SequenceOntologyTerms: []models.SequenceOntologyTerm{{Accession: "SO:0001583", Name: "missense_variant"}}},
						},
					},
				},
			},
		},
	}
}
