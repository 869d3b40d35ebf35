package handler

import (
	"net/http"

	"github.com/vfg2006/campaigniq-api/infrastructure/repository"
	"github.com/vfg2006/campaigniq-api/internal/api/handler/router"
	"github.com/vfg2006/campaigniq-api/internal/usecases/insighting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Analysis(service insighting.Analyzer, datasetRepo repository.DatasetRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/analysis/run",
			Method:  http.MethodPost,
			Handler: RunAnalysis(service),
		},
		{
			Path:    "/v1/analysis/summary",
			Method:  http.MethodGet,
			Handler: GetAnalysisSummary(service),
		},
		{
			Path:    "/v1/analysis/dataset",
			Method:  http.MethodGet,
			Handler: GetAnalysisDataset(datasetRepo),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
