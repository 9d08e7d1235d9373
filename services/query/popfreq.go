package query

import (
	"strconv"
	"strings"

	"rga/api/models"
	"rga/api/models/constants"
	"rga/api/models/constants/search"
	"rga/api/services/encoding"
)

// FrequencyConstraint is one parsed "study[:population]<op>value" term.
type FrequencyConstraint struct {
	Study      string
	StudyIndex int
	Operator   constants.SearchOperation
	Value      float64
}

// Satisfied compares a raw frequency against the constraint.
func (c FrequencyConstraint) Satisfied(freq float64) bool {
	return search.Compare(c.Operator, freq, c.Value)
}

// Codes lists the bucket tokens the constraint selects.
func (c FrequencyConstraint) Codes(policy *encoding.BucketPolicy) ([]string, error) {
	buckets, err := policy.Select(c.Operator, c.Value)
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return nil, models.NewValidationError("population frequency '%s%s%v' selects no bucket", c.Study, c.Operator, c.Value)
	}
	codes := make([]string, len(buckets))
	for i, bucket := range buckets {
		codes[i] = encoding.FrequencyCode(c.StudyIndex, bucket)
	}
	return codes, nil
}

// ParseFrequencyConstraints parses every constraint against the configured
// studies. A study may be constrained only once.
func ParseFrequencyConstraints(values []string, studies []string) ([]FrequencyConstraint, error) {
	var constraints []FrequencyConstraint
	seen := map[int]bool{}
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		constraint, err := ParseFrequencyConstraint(value, studies)
		if err != nil {
			return nil, err
		}
		if seen[constraint.StudyIndex] {
			return nil, models.NewValidationError("population frequency study '%s' constrained more than once", constraint.Study)
		}
		seen[constraint.StudyIndex] = true
		constraints = append(constraints, constraint)
	}
	return constraints, nil
}

func ParseFrequencyConstraint(value string, studies []string) (FrequencyConstraint, error) {
	text := strings.TrimSpace(value)

	opStart := strings.IndexAny(text, "<>")
	if opStart <= 0 {
		return FrequencyConstraint{}, models.NewValidationError("malformed population frequency '%s', expected study<op>value", value)
	}
	opEnd := opStart + 1
	if opEnd < len(text) && text[opEnd] == '=' {
		opEnd++
	}
	operator, ok := search.CastToSearchOperation(text[opStart:opEnd])
	if !ok {
		return FrequencyConstraint{}, models.NewValidationError("unknown population frequency operator in '%s'", value)
	}

	freq, err := strconv.ParseFloat(strings.TrimSpace(text[opEnd:]), 64)
	if err != nil {
		return FrequencyConstraint{}, models.NewValidationError("malformed population frequency value in '%s'", value)
	}

	study := strings.TrimSpace(text[:opStart])
	if idx := strings.Index(study, ":"); idx >= 0 {
		population := strings.TrimSpace(study[idx+1:])
		if !strings.EqualFold(population, encoding.AllPopulation) {
			return FrequencyConstraint{}, models.NewValidationError("population '%s' is not indexed, only '%s' is", population, encoding.AllPopulation)
		}
		study = strings.TrimSpace(study[:idx])
	}

	studyIndex, ok := encoding.StudyIndex(studies, study)
	if !ok {
		return FrequencyConstraint{}, models.NewValidationError("unknown population frequency study '%s'", study)
	}

	return FrequencyConstraint{
		Study:      studies[studyIndex],
		StudyIndex: studyIndex,
		Operator:   operator,
		Value:      freq,
	}, nil
}
