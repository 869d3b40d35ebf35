package repository

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ReportRepository interface {
	SaveReport(report *domain.AnalysisReport) (string, error)
	LoadReport() (*domain.AnalysisReport, error)
	ReportPath() string
}

type reportRepository struct {
	cfg *config.Config
}

func NewReportRepository(cfg *config.Config) ReportRepository {
	return &reportRepository{cfg: cfg}
}

func (r *reportRepository) ReportPath() string {
	return filepath.Join(r.cfg.Storage.DataDir, r.cfg.Storage.ReportFile)
}

func (r *reportRepository) SaveReport(report *domain.AnalysisReport) (string, error) {
	if err := os.MkdirAll(r.cfg.Storage.DataDir, 0o755); err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logrus.WithError(err).Error("Erro ao serializar o relatório")
		return "", err
	}

	path := r.ReportPath()
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		logrus.WithError(err).Error("Erro ao gravar o relatório")
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"path":      path,
		"report_id": report.ID,
	}).Info("Relatório gravado")

	return path, nil
}

func (r *reportRepository) LoadReport() (*domain.AnalysisReport, error) {
	payload, err := os.ReadFile(r.ReportPath())
	if err != nil {
		return nil, err
	}

	var report domain.AnalysisReport
	if err := json.Unmarshal(payload, &report); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar o relatório")
		return nil, err
	}

	return &report, nil
}
