package serviceInfo

import (
	"rga/api/contexts"
	serviceInfo "rga/api/models/constants/service-info"

	"net/http"

	"github.com/labstack/echo"
)

// Spec: https://github.com/ga4gh-discovery/ga4gh-service-info
func GetServiceInfo(c echo.Context) error {
	cfg := c.(*contexts.RgaContext).Config

	return c.JSON(http.StatusOK, map[string]interface{}{
		"type": map[string]interface{}{
			"artifact": serviceInfo.SERVICE_ARTIFACT,
			"group":    serviceInfo.SERVICE_TYPE_NO_VER,
			"version":  cfg.SemVer,
		},
		"id":          serviceInfo.SERVICE_ID,
		"name":        serviceInfo.SERVICE_NAME,
		"description": serviceInfo.SERVICE_DESCRIPTION,
		"rga": map[string]interface{}{
			"collection":                 cfg.Elasticsearch.Collection,
			"populationFrequencyStudies": cfg.Rga.PopulationFrequencyStudies,
			"compHetQueryMode":           cfg.Rga.CompHetQueryMode,
		},
		"contactUrl": cfg.ServiceContact,
		"version":    cfg.SemVer,
	})
}

func GetWelcome(c echo.Context) error {
	return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
}
