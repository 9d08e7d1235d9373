package encoding

import (
	"strconv"
	"strings"

	"rga/api/models"
	"rga/api/models/constants"
	filterStatus "rga/api/models/constants/filter-status"
	knockoutType "rga/api/models/constants/knockout-type"
)

// Separator joins the parts of a compound filter token. It is reserved:
// no encoded value may contain it.
const Separator = "__"

var knockoutCodes = map[constants.KnockoutType]string{
	knockoutType.CompHet:         "CH",
	knockoutType.HomAlt:          "HOA",
	knockoutType.HetAlt:          "HEA",
	knockoutType.DeletionOverlap: "DO",
	knockoutType.Het:             "HE",
}

var filterCodes = map[constants.FilterStatus]string{
	filterStatus.Pass:    "P",
	filterStatus.NotPass: "NP",
}

// sequence ontology accessions (numeric part) by term name
var consequenceAccessions = map[string]int{
	"transcript_ablation":                1893,
	"splice_acceptor_variant":            1574,
	"splice_donor_variant":               1575,
	"stop_gained":                        1587,
	"frameshift_variant":                 1589,
	"stop_lost":                          1578,
	"start_lost":                         2012,
	"initiator_codon_variant":            1582,
	"transcript_amplification":           1889,
	"inframe_insertion":                  1821,
	"inframe_deletion":                   1822,
	"inframe_variant":                    1650,
	"missense_variant":                   1583,
	"protein_altering_variant":           1818,
	"splice_region_variant":              1630,
	"incomplete_terminal_codon_variant":  1626,
	"start_retained_variant":             2019,
	"stop_retained_variant":              1567,
	"synonymous_variant":                 1819,
	"coding_sequence_variant":            1580,
	"mature_miRNA_variant":               1620,
	"5_prime_UTR_variant":                1623,
	"3_prime_UTR_variant":                1624,
	"non_coding_transcript_exon_variant": 1792,
	"intron_variant":                     1627,
	"NMD_transcript_variant":             1621,
	"non_coding_transcript_variant":      1619,
	"upstream_gene_variant":              1631,
	"downstream_gene_variant":            1632,
	"2KB_upstream_variant":               1636,
	"TFBS_ablation":                      1895,
	"TFBS_amplification":                 1892,
	"TF_binding_site_variant":            1782,
	"regulatory_region_ablation":         1894,
	"regulatory_region_amplification":    1891,
	"regulatory_region_variant":          1566,
	"feature_elongation":                 1907,
	"feature_truncation":                 1906,
	"intergenic_variant":                 1628,
}

// KnockoutCode returns the token code of a knockout type.
func KnockoutCode(kt constants.KnockoutType) (string, bool) {
	code, ok := knockoutCodes[kt]
	return code, ok
}

// FilterCode returns the token code of a free-text VCF filter.
func FilterCode(filter string) string {
	return filterCodes[filterStatus.Normalize(filter)]
}

// FilterStatusCode returns the token code of an already normalised status.
func FilterStatusCode(status constants.FilterStatus) string {
	return filterCodes[status]
}

// ConsequenceCode resolves a consequence term to its token code: the numeric
// SO accession when one can be found, else the term name.
func ConsequenceCode(term models.SequenceOntologyTerm) (string, error) {
	if code, ok := accessionNumber(term.Accession); ok {
		return code, nil
	}
	return ConsequenceCodeForValue(term.Name)
}

// ConsequenceCodeForValue resolves a user-supplied consequence value, either
// an accession ("SO:0001583"), a bare number or a term name.
func ConsequenceCodeForValue(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", models.NewValidationError("empty consequence type")
	}
	if code, ok := accessionNumber(trimmed); ok {
		return code, nil
	}
	if accession, ok := consequenceAccessions[trimmed]; ok {
		return strconv.Itoa(accession), nil
	}
	if err := CheckValue(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// ConsequenceName maps an accession or a code back to its term name; any
// other value is returned as given.
func ConsequenceName(value string) string {
	trimmed := strings.TrimSpace(value)
	if code, ok := accessionNumber(trimmed); ok {
		n, _ := strconv.Atoi(code)
		for name, accession := range consequenceAccessions {
			if accession == n {
				return name
			}
		}
	}
	return trimmed
}

// CheckValue rejects values that would break token boundaries.
func CheckValue(value string) error {
	if strings.Contains(value, Separator) {
		return models.NewValidationError("value '%s' contains the reserved separator '%s'", value, Separator)
	}
	return nil
}

func accessionNumber(text string) (string, bool) {
	digits := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(text)), "SO:")
	if digits == "" {
		return "", false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}
