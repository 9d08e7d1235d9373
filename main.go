package main

import (
	"context"
	"fmt"
	"os"

	"rga/api/contexts"
	gam "rga/api/middleware"
	"rga/api/metrics"
	"rga/api/models"
	knockoutsMvc "rga/api/mvc/knockouts"
	serviceInfoMvc "rga/api/mvc/service-info"
	esRepo "rga/api/repositories/elasticsearch"
	"rga/api/services"
	"rga/api/services/knockouts"
	"rga/api/services/sanitation"
	"rga/api/utils"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	defer logger.Sync()

	logger.Info("using configuration",
		zap.Bool("debug", cfg.Debug),
		zap.String("dataPath", cfg.Api.DataPath),
		zap.Int("insertBatchSize", cfg.Api.InsertBatchSize),
		zap.Int("bulkIndexingCap", cfg.Api.BulkIndexingCap),
		zap.Int("encodingConcurrencyLevel", cfg.Api.EncodingConcurrencyLevel),
		zap.String("elasticsearchUrl", cfg.Elasticsearch.Url),
		zap.String("elasticsearchUsername", cfg.Elasticsearch.Username),
		zap.String("collection", cfg.Elasticsearch.Collection),
		zap.Strings("populationFrequencyStudies", cfg.Rga.PopulationFrequencyStudies),
		zap.String("compHetQueryMode", cfg.Rga.CompHetQueryMode),
		zap.String("port", cfg.Api.Port))

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch
	es, err := utils.CreateEsConnection(&cfg, logger)
	if err != nil {
		logger.Fatal("cannot create the elasticsearch client", zap.Error(err))
	}

	// Service Singletons
	repository := esRepo.NewKnockoutRepository(&cfg, es, logger.Named("elasticsearch"))
	ks, err := knockouts.NewService(&cfg, repository, logger.Named("knockouts"))
	if err != nil {
		logger.Fatal("invalid knockout engine configuration", zap.Error(err))
	}
	if err := ks.EnsureIndex(context.Background(), ""); err != nil {
		logger.Warn("knockout index not ready yet", zap.Error(err))
	}
	iz := services.NewIngestionService(ks, &cfg, logger)
	ss := sanitation.NewSanitationService(&cfg, iz, ks, logger)
	defer ss.Stop()

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))
	e.Use(metrics.Middleware())

	// -- Override handlers with "custom Rga" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.RgaContext{
				Context:          c,
				Config:           &cfg,
				Knockouts:        ks,
				IngestionService: iz,
				Log:              logger,
			}
			return h(cc)
		}
	})

	queryMiddleware := []echo.MiddlewareFunc{
		gam.CalibrateKnockoutQuery,
		gam.CalibratePagination,
		gam.ValidateOptionalChromosomeAttribute,
	}

	// Begin MVC Routes
	// -- Root
	e.GET("/", serviceInfoMvc.GetWelcome)

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// -- Knockouts
	e.GET("/knockouts/individuals", knockoutsMvc.KnockoutsGetIndividuals, queryMiddleware...)
	e.GET("/knockouts/genes", knockoutsMvc.KnockoutsGetGenes, queryMiddleware...)
	e.GET("/knockouts/variants", knockoutsMvc.KnockoutsGetVariants, queryMiddleware...)
	e.GET("/knockouts/records", knockoutsMvc.KnockoutsGetRecords, queryMiddleware...)
	e.GET("/knockouts/count", knockoutsMvc.KnockoutsCount, queryMiddleware...)
	e.GET("/knockouts/facets", knockoutsMvc.KnockoutsFacets, queryMiddleware...)

	e.GET("/knockouts/ingestion/run", knockoutsMvc.KnockoutsIngest,
		// middleware
		gam.CalibrateKnockoutQuery)
	e.GET("/knockouts/ingestion/requests", knockoutsMvc.GetAllKnockoutIngestionRequests)
	e.GET("/knockouts/ingestion/stats", knockoutsMvc.KnockoutsIngestionStats)

	e.DELETE("/knockouts/collection", knockoutsMvc.KnockoutsPurge)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
