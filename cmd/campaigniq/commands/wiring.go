package commands

import (
	"github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative"
	"github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative/narrativeclient"
	"github.com/vfg2006/campaigniq-api/infrastructure/repository"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/usecases/fatigue"
	"github.com/vfg2006/campaigniq-api/internal/usecases/generating"
	"github.com/vfg2006/campaigniq-api/internal/usecases/insighting"
	"github.com/vfg2006/campaigniq-api/internal/usecases/measuring"
	"github.com/vfg2006/campaigniq-api/internal/usecases/ranking"
	"github.com/vfg2006/campaigniq-api/internal/usecases/trending"
	"github.com/vfg2006/campaigniq-api/internal/usecases/validating"
)

// buildAnalyzer monta o pipeline completo com todos os estágios e repositórios.
func buildAnalyzer(cfg *config.Config) (*insighting.Service, repository.DatasetRepository, repository.ReportRepository) {
	datasetRepo := repository.NewDatasetRepository(cfg)
	reportRepo := repository.NewReportRepository(cfg)

	analyzer := insighting.NewService(
		cfg,
		generating.NewService(cfg),
		validating.NewService(cfg),
		measuring.NewService(cfg),
		trending.NewService(cfg),
		fatigue.NewService(cfg),
		ranking.NewService(cfg),
		datasetRepo,
		reportRepo,
	)

	if cfg.Narrative.Enabled {
		narrativeClient := narrativeclient.NewClient(cfg)
		analyzer = analyzer.WithNarrative(narrative.New(cfg, narrativeClient))
	}

	return analyzer, datasetRepo, reportRepo
}
