package chromosome

import (
	"fmt"
	"strconv"
	"strings"
)

func ValidListOfHumanChromosomes() []string {
	var humChroms []string
	for i := 1; i < 23; i++ {
		humChroms = append(humChroms, fmt.Sprint(i))
	}
	humChroms = append(humChroms, "X")
	humChroms = append(humChroms, "Y")
	humChroms = append(humChroms, "MT")
	return humChroms
}

// Normalize strips a leading "chr" and upper-cases sex/mitochondrial names.
func Normalize(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 3 && strings.EqualFold(trimmed[:3], "chr") {
		trimmed = trimmed[3:]
	}
	upper := strings.ToUpper(trimmed)
	if upper == "M" {
		return "MT"
	}
	return upper
}

func IsValidHumanChromosome(text string) bool {
	normalized := Normalize(text)

	// autosomes
	chromNumber, err := strconv.Atoi(normalized)
	if err == nil {
		return chromNumber > 0 && chromNumber < 23
	}

	switch normalized {
	case "X", "Y", "MT":
		return true
	}
	return false
}
