// Package insighting orquestra o pipeline de análise: geração ou carga do
// dataset, validação, agregação, detecção de tendências e fadiga,
// ranqueamento de insights e, opcionalmente, narrativa.
package insighting

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative"
	"github.com/vfg2006/campaigniq-api/infrastructure/repository"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
	"github.com/vfg2006/campaigniq-api/internal/usecases/fatigue"
	"github.com/vfg2006/campaigniq-api/internal/usecases/generating"
	"github.com/vfg2006/campaigniq-api/internal/usecases/measuring"
	"github.com/vfg2006/campaigniq-api/internal/usecases/ranking"
	"github.com/vfg2006/campaigniq-api/internal/usecases/trending"
	"github.com/vfg2006/campaigniq-api/internal/usecases/validating"
	"github.com/vfg2006/campaigniq-api/pkg/utils"
)

type Service struct {
	cfg *config.Config

	synthesizer     generating.Synthesizer
	validator       validating.Validator
	engine          measuring.Engine
	trendDetector   trending.Detector
	fatigueDetector fatigue.Detector
	ranker          ranking.Ranker

	narrativeService narrative.Generator
	datasetRepo      repository.DatasetRepository
	reportRepo       repository.ReportRepository

	mu     sync.RWMutex
	latest *domain.AnalysisReport
}

func NewService(
	cfg *config.Config,
	synthesizer generating.Synthesizer,
	validator validating.Validator,
	engine measuring.Engine,
	trendDetector trending.Detector,
	fatigueDetector fatigue.Detector,
	ranker ranking.Ranker,
	datasetRepo repository.DatasetRepository,
	reportRepo repository.ReportRepository,
) *Service {
	return &Service{
		cfg:             cfg,
		synthesizer:     synthesizer,
		validator:       validator,
		engine:          engine,
		trendDetector:   trendDetector,
		fatigueDetector: fatigueDetector,
		ranker:          ranker,
		datasetRepo:     datasetRepo,
		reportRepo:      reportRepo,
	}
}

// WithNarrative habilita a geração de narrativa pelo serviço externo.
func (s *Service) WithNarrative(generator narrative.Generator) *Service {
	s.narrativeService = generator
	return s
}

// Run executa o pipeline completo. Cada estágio consome apenas a saída do
// anterior; erros não fatais (relatório de validação, cálculos pulados por
// esparsidade) ficam anexados ao relatório em vez de interromper a execução.
func (s *Service) Run(opts RunOptions) (*domain.AnalysisReport, error) {
	startedAt := time.Now()

	records, err := s.loadRecords(opts)
	if err != nil {
		return nil, err
	}

	accepted, validation := s.validator.Validate(records)
	if validation.IsFatal(s.cfg.Validation.Lenient, s.cfg.Validation.ErrorTolerance) {
		logrus.WithFields(logrus.Fields{
			"errors":     len(validation.Errors),
			"error_rate": validation.ErrorRate(),
		}).Error("Validação fatal, análise interrompida")
		return nil, &domain.ValidationError{Report: validation}
	}
	if len(accepted) == 0 {
		return nil, ErrEmptyDataset
	}

	overall := s.engine.AggregateRange(accepted, domain.PartitionOverall)
	platforms := s.engine.AggregateRange(accepted, domain.PartitionPlatform)
	creatives := s.engine.AggregateRange(accepted, domain.PartitionCreative)

	weekly := s.engine.AggregateWeekly(accepted, domain.PartitionOverall)
	weekly = append(weekly, s.engine.AggregateWeekly(accepted, domain.PartitionPlatform)...)
	weekly = append(weekly, s.engine.AggregateWeekly(accepted, domain.PartitionCreative)...)

	deviations := s.engine.BenchmarkDeviations(platforms)
	dayOfWeek := s.engine.DayOfWeekPatterns(accepted)
	anomalies := s.engine.DetectAnomalies(s.engine.AggregateDaily(accepted, domain.PartitionOverall))

	// Tendências e fadiga são independentes entre si: rodam em paralelo
	// sobre a mesma série semanal imutável.
	var (
		trends       []domain.Trend
		trendSkips   []*domain.DataSparsityError
		signals      []domain.FatigueSignal
		fatigueSkips []*domain.DataSparsityError
	)

	wg := sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		trends, trendSkips = s.trendDetector.Detect(weekly)
	}()

	go func() {
		defer wg.Done()
		signals, fatigueSkips = s.fatigueDetector.DetectAll(weekly, platformByCreative(accepted))
	}()

	wg.Wait()

	insights := s.ranker.Rank(ranking.Candidates{
		Trends:      trends,
		Fatigue:     signals,
		Benchmarks:  deviations,
		DayPatterns: dayOfWeek.Platforms,
		Anomalies:   anomalies,
		SpendShare:  spendShares(platforms, creatives),
	})

	report := &domain.AnalysisReport{
		GeneratedAt:         startedAt,
		Campaign:            s.campaignInfo(),
		Validation:          validation,
		PlatformKPIs:        platforms,
		CreativeKPIs:        creatives,
		WeeklySeries:        weekly,
		Trends:              trends,
		FatigueSignals:      signals,
		BenchmarkDeviations: deviations,
		DayOfWeek:           dayOfWeek,
		Anomalies:           anomalies,
		Insights:            insights,
		SkippedComputations: skippedComputations(trendSkips, fatigueSkips),
	}
	if len(overall) > 0 {
		report.OverallKPIs = overall[0]
	}
	if opts.IncludeRecords {
		report.Records = accepted
	}

	report.ID, err = utils.GenerateID()
	if err != nil {
		return nil, err
	}

	if s.cfg.Narrative.Enabled && s.narrativeService != nil {
		narratives, err := s.narrativeService.Generate(report.Campaign, insights)
		if err != nil {
			// Falha do serviço externo propaga sem tradução.
			return nil, err
		}
		report.Narratives = narratives
	}

	if opts.PersistReport && s.reportRepo != nil {
		if _, err := s.reportRepo.SaveReport(report); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"report_id": report.ID,
		"records":   len(accepted),
		"trends":    len(trends),
		"fatigue":   len(signals),
		"insights":  len(insights),
		"elapsed":   time.Since(startedAt).String(),
	}).Info("Análise concluída")

	return report, nil
}

func (s *Service) LatestReport() *domain.AnalysisReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Service) LatestSummary() *domain.DisplaySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil
	}
	return s.latest.Summary()
}

func (s *Service) loadRecords(opts RunOptions) ([]domain.ActivityRecord, error) {
	if opts.Source == SourceFile {
		if s.datasetRepo == nil {
			return nil, ErrDatasetRepositoryMissing
		}
		records, err := s.datasetRepo.LoadDataset()
		return records, errors.Wrap(err, "falha ao carregar o dataset")
	}

	records, err := s.synthesizer.Generate()
	if err != nil {
		return nil, err
	}

	if opts.PersistDataset && s.datasetRepo != nil {
		if _, err := s.datasetRepo.SaveDataset(records); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func (s *Service) campaignInfo() domain.CampaignInfo {
	info := domain.CampaignInfo{
		StartDate:    s.cfg.Campaign.StartDate,
		DurationDays: s.cfg.Campaign.DurationDays,
		TotalBudget:  s.cfg.Campaign.TotalBudget,
	}
	for _, p := range s.cfg.Platforms {
		info.Platforms = append(info.Platforms, p.ID)
	}
	return info
}

// spendShares indexa a fração de investimento por partição. IDs de plataforma
// e de criativo não colidem, então um único mapa atende o ranqueador.
func spendShares(platforms, creatives []domain.PartitionAggregate) map[string]float64 {
	shares := make(map[string]float64, len(platforms)+len(creatives))
	for _, agg := range platforms {
		shares[agg.Partition] = agg.SpendShare
	}
	for _, agg := range creatives {
		shares[agg.Partition] = agg.SpendShare
	}
	return shares
}

func platformByCreative(records []domain.ActivityRecord) map[string]string {
	out := make(map[string]string)
	for _, rec := range records {
		if _, ok := out[rec.CreativeID]; !ok {
			out[rec.CreativeID] = rec.PlatformID
		}
	}
	return out
}

func skippedComputations(groups ...[]*domain.DataSparsityError) []string {
	var out []string
	for _, group := range groups {
		for _, err := range group {
			out = append(out, fmt.Sprintf("%s|%s: %s", err.Partition, err.Metric, err.Reason))
		}
	}
	return out
}
