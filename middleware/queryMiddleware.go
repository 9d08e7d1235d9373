package middleware

import (
	"strings"

	"rga/api/contexts"

	"github.com/labstack/echo"
)

/*
	Echo middleware to gather every knockout query parameter into the context's query.
	List parameters are comma separated; `populationFrequency` is semicolon separated.
*/
func CalibrateKnockoutQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.RgaContext)
		q := &gc.Query

		q.Collection = strings.TrimSpace(c.QueryParam("collection"))

		q.SampleIds = splitParam(c, "sampleId", ",")
		q.IndividualIds = splitParam(c, "individualId", ",")
		q.Sex = splitParam(c, "sex", ",")
		q.Phenotypes = splitParam(c, "phenotypes", ",")
		q.Disorders = splitParam(c, "disorders", ",")
		q.NumParents = splitParam(c, "numParents", ",")
		q.GeneIds = splitParam(c, "geneId", ",")
		q.GeneNames = splitParam(c, "geneName", ",")
		q.GeneBiotypes = splitParam(c, "geneBiotype", ",")
		q.Chromosomes = splitParam(c, "chromosome", ",")
		q.TranscriptIds = splitParam(c, "transcriptId", ",")
		q.TranscriptBiotypes = splitParam(c, "transcriptBiotype", ",")
		q.VariantIds = splitParam(c, "variants", ",")

		q.KnockoutTypes = splitParam(c, "knockoutType", ",")
		q.Filters = splitParam(c, "filter", ",")
		q.ConsequenceTypes = splitParam(c, "consequenceType", ",")
		q.PopulationFrequencies = splitParam(c, "populationFrequency", ";")

		q.Sort = strings.TrimSpace(c.QueryParam("sort"))
		q.Include = splitParam(c, "include", ",")
		q.Exclude = splitParam(c, "exclude", ",")
		q.Facets = splitParam(c, "facet", ",")

		return next(gc)
	}
}

func splitParam(c echo.Context, name string, sep string) []string {
	qp := c.QueryParam(name)
	if len(qp) == 0 {
		return nil
	}
	var values []string
	for _, v := range strings.Split(qp, sep) {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
