package contexts

import (
	"rga/api/models"
	"rga/api/services"
	"rga/api/services/knockouts"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

type (
	// "Helper" Context to pass into routes that need
	//  the knockout engine and other singletons
	RgaContext struct {
		echo.Context
		Config           *models.Config
		Knockouts        *knockouts.Service
		IngestionService *services.IngestionService
		Log              *zap.Logger

		// filled by the query middleware
		Query models.KnockoutQuery
	}
)
