package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vfg2006/campaigniq-api/infrastructure/repository"
	"github.com/vfg2006/campaigniq-api/internal/domain"
	"github.com/vfg2006/campaigniq-api/internal/usecases/insighting"
	"github.com/vfg2006/campaigniq-api/pkg/apiErrors"
	"github.com/vfg2006/campaigniq-api/pkg/log"
)

// RunAnalysisRequest é o corpo aceito pelo POST /v1/analysis/run. Todos os
// campos são opcionais; o padrão é gerar um dataset sintético sem persistir.
type RunAnalysisRequest struct {
	Source         string `json:"source"`
	PersistDataset bool   `json:"persist_dataset"`
	PersistReport  bool   `json:"persist_report"`
	IncludeRecords bool   `json:"include_records"`
}

// RunAnalysis dispara uma execução síncrona do pipeline e devolve o relatório.
func RunAnalysis(service insighting.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		logger.Info("analysis: run requested")

		var req RunAnalysisRequest
		body, err := io.ReadAll(r.Body)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao ler o corpo da requisição", nil)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				logger.WithError(err).Warn("analysis: invalid request body")
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", nil)
				return
			}
		}

		opts := insighting.RunOptions{
			Source:         insighting.SourceSynthetic,
			PersistDataset: req.PersistDataset,
			PersistReport:  req.PersistReport,
			IncludeRecords: req.IncludeRecords,
		}
		switch req.Source {
		case "", string(insighting.SourceSynthetic):
		case string(insighting.SourceFile):
			opts.Source = insighting.SourceFile
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Fonte inválida. Valores aceitos: synthetic, file", nil)
			return
		}

		report, err := service.Run(opts)
		if err != nil {
			writeAnalysisError(w, logger, err)
			return
		}

		logger.WithField("report_id", report.ID).Info("analysis: run completed")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.WithError(err).Error("analysis: failed to encode response")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// GetAnalysisSummary devolve o snapshot de apresentação do último relatório.
func GetAnalysisSummary(service insighting.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		summary := service.LatestSummary()
		if summary == nil {
			apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "Nenhuma análise executada ainda", nil)
			return
		}

		logger.WithField("report_id", summary.ReportID).Debug("analysis: returning latest summary")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			logger.WithError(err).Error("analysis: failed to encode summary")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// GetAnalysisDataset devolve o dataset persistido em disco como JSON.
func GetAnalysisDataset(datasetRepo repository.DatasetRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		records, err := datasetRepo.LoadDataset()
		if err != nil {
			logger.WithError(err).Warn("analysis: failed to load dataset")
			apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "Nenhum dataset persistido encontrado", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			logger.WithError(err).Error("analysis: failed to encode dataset")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// writeAnalysisError traduz os erros tipados do pipeline para a resposta HTTP.
func writeAnalysisError(w http.ResponseWriter, logger log.Logger, err error) {
	logger.WithError(err).Error("analysis: run failed")

	switch {
	case domain.IsConfigurationError(err):
		apiErrors.WriteError(w, apiErrors.ErrInvalidConfiguration, err.Error(), nil)
	case domain.IsValidationError(err):
		var details any
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			details = ve.Report
		}
		apiErrors.WriteError(w, apiErrors.ErrDatasetValidation, err.Error(), details)
	case domain.IsExternalServiceError(err):
		apiErrors.WriteError(w, apiErrors.ErrExternalService, err.Error(), nil)
	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, err.Error(), nil)
	}
}
