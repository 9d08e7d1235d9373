package knockouts

import (
	"errors"
	"net/http"
	"strconv"

	"rga/api/contexts"
	"rga/api/models"
	"rga/api/models/dtos"
	errorDtos "rga/api/models/dtos/errors"
	knockoutsService "rga/api/services/knockouts"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

type pageResponse[T any] struct {
	Results    []T    `json:"results"`
	NumMatches *int64 `json:"numMatches,omitempty"`
	Skip       int    `json:"skip"`
	Limit      int    `json:"limit"`
}

func KnockoutsGetIndividuals(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	gc.Log.Debug("KnockoutsGetIndividuals hit")

	page, err := gc.Knockouts.IndividualQuery(c.Request().Context(), gc.Query)
	return respondPage(c, page, err)
}

func KnockoutsGetGenes(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	gc.Log.Debug("KnockoutsGetGenes hit")

	page, err := gc.Knockouts.GeneQuery(c.Request().Context(), gc.Query)
	return respondPage(c, page, err)
}

func KnockoutsGetVariants(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	gc.Log.Debug("KnockoutsGetVariants hit")

	page, err := gc.Knockouts.VariantQuery(c.Request().Context(), gc.Query)
	return respondPage(c, page, err)
}

func KnockoutsGetRecords(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	gc.Log.Debug("KnockoutsGetRecords hit")

	page, err := gc.Knockouts.RecordQuery(c.Request().Context(), gc.Query)
	return respondPage(c, page, err)
}

func KnockoutsCount(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	gc.Log.Debug("KnockoutsCount hit")

	count, err := gc.Knockouts.Count(c.Request().Context(), gc.Query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dtos.KnockoutCountResponseDTO{
		Collection: gc.Knockouts.Collection(gc.Query.Collection),
		Count:      count,
	})
}

func KnockoutsFacets(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	gc.Log.Debug("KnockoutsFacets hit")

	results, err := gc.Knockouts.Facet(c.Request().Context(), gc.Query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func KnockoutsPurge(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	collection := gc.Knockouts.Collection(c.QueryParam("collection"))
	gc.Log.Info("purging knockout collection", zap.String("collection", collection))

	deleted, err := gc.Knockouts.Purge(c.Request().Context(), collection)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dtos.KnockoutPurgeResponseDTO{
		Collection: collection,
		Deleted:    deleted,
	})
}

// respondPage writes the page; numMatches only shows up with `count=true`.
func respondPage[T any](c echo.Context, page knockoutsService.Page[T], err error) error {
	if err != nil {
		return respondError(c, err)
	}

	response := pageResponse[T]{
		Results: page.Results,
		Skip:    page.Skip,
		Limit:   page.Limit,
	}
	if response.Results == nil {
		response.Results = []T{}
	}
	if withCount, _ := strconv.ParseBool(c.QueryParam("count")); withCount {
		numMatches := page.NumMatches
		response.NumMatches = &numMatches
	}
	return c.JSON(http.StatusOK, response)
}

func respondError(c echo.Context, err error) error {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest(validationErr.Error()))
	}
	return c.JSON(http.StatusInternalServerError, errorDtos.CreateSimpleInternalServerError(err.Error()))
}
