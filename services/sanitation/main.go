package sanitation

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"rga/api/models"
	"rga/api/services"
	"rga/api/services/knockouts"
)

type (
	SanitationService struct {
		Initialized bool
		Config      *models.Config
		Ingestion   *services.IngestionService
		Knockouts   *knockouts.Service
		Logger      *zap.Logger

		scheduler *gocron.Scheduler
	}
)

func NewSanitationService(cfg *models.Config, iz *services.IngestionService, ks *knockouts.Service, logger *zap.Logger) *SanitationService {
	ss := &SanitationService{
		Initialized: false,
		Config:      cfg,
		Ingestion:   iz,
		Knockouts:   ks,
		Logger:      logger.Named("sanitation"),
	}

	ss.Init()

	return ss
}

func (ss *SanitationService) Init() {
	// initialization if necessary
	if !ss.Initialized && ss.Config.Sanitation.Enabled {
		// once a day:
		//   - forget finished ingestion requests past their retention
		//   - make sure the default collection still exists
		ss.scheduler = gocron.NewScheduler(time.UTC)

		_, err := ss.scheduler.Every(1).Days().At(ss.Config.Sanitation.At).Do(func() {
			ss.Run(context.Background())
		})
		if err != nil {
			ss.Logger.Error("cannot schedule sanitation", zap.String("at", ss.Config.Sanitation.At), zap.Error(err))
			return
		}
		ss.scheduler.StartAsync()

		ss.Initialized = true
		ss.Logger.Info("sanitation service initialized", zap.String("at", ss.Config.Sanitation.At))
	}
}

// Run performs one sanitation pass.
func (ss *SanitationService) Run(ctx context.Context) {
	ss.Logger.Info("running knockout sanitation")

	retention := time.Duration(ss.Config.Sanitation.RequestRetentionHr) * time.Hour
	pruned := ss.Ingestion.Prune(time.Now().Add(-retention))
	ss.Logger.Info("pruned ingestion requests", zap.Int("pruned", pruned))

	if err := ss.Knockouts.EnsureIndex(ctx, ""); err != nil {
		ss.Logger.Error("cannot ensure the knockout index", zap.Error(err))
	}
}

func (ss *SanitationService) Stop() {
	if ss.scheduler != nil {
		ss.scheduler.Stop()
	}
}
