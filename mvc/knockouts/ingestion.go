package knockouts

import (
	"net/http"
	"strings"

	"rga/api/contexts"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

func KnockoutsIngest(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	gc.Log.Debug("KnockoutsIngest hit")

	var fileNames []string
	if fileNamesQP := c.QueryParam("fileNames"); fileNamesQP != "" {
		fileNames = strings.Split(fileNamesQP, ",")
	}

	files, err := gc.IngestionService.ResolveFiles(c.QueryParam("directory"), fileNames)
	if err != nil {
		return respondError(c, err)
	}
	gc.Log.Info("ingesting knockout files", zap.Strings("files", files))

	return c.JSON(http.StatusOK, gc.IngestionService.Ingest(gc.Query.Collection, files))
}

func GetAllKnockoutIngestionRequests(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	return c.JSON(http.StatusOK, gc.IngestionService.Requests())
}

func KnockoutsIngestionStats(c echo.Context) error {
	gc := c.(*contexts.RgaContext)
	return c.JSON(http.StatusOK, gc.IngestionService.Stats())
}
