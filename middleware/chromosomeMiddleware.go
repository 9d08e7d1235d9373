package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"rga/api/models/constants/chromosome"
	"rga/api/models/dtos/errors"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure every optionally provided `chromosome` HTTP query parameter is a human chromosome
*/
func ValidateOptionalChromosomeAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		chromQP := c.QueryParam("chromosome")
		if len(chromQP) == 0 {
			return next(c)
		}

		for _, chrom := range strings.Split(chromQP, ",") {
			if strings.TrimSpace(chrom) == "" {
				continue
			}
			if !chromosome.IsValidHumanChromosome(chrom) {
				return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest(
					fmt.Sprintf("invalid chromosome '%s', expected one of %v", chrom, chromosome.ValidListOfHumanChromosomes())))
			}
		}

		return next(c)
	}
}
