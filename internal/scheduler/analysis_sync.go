// Package scheduler agenda reexecuções periódicas do pipeline de análise.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/usecases/insighting"
)

// AnalysisSyncConfig representa a configuração do agendador de análise
type AnalysisSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// AnalysisSyncService gerencia o agendamento e execução periódica da análise
type AnalysisSyncService struct {
	scheduler           *gocron.Scheduler
	config              AnalysisSyncConfig
	appConfig           *config.Config
	analyzer            insighting.Analyzer
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncError       string
	lastReportID        string
}

// NewAnalysisSyncService cria uma nova instância do serviço de análise agendada
func NewAnalysisSyncService(analyzer insighting.Analyzer, appConfig *config.Config) *AnalysisSyncService {
	syncConfig := AnalysisSyncConfig{
		CronSchedule: appConfig.AnalysisSync.CronSchedule,
		SyncEnabled:  appConfig.AnalysisSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de análise carregada")

	return &AnalysisSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		appConfig:   appConfig,
		analyzer:    analyzer,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *AnalysisSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Análise agendada desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de análise")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runAnalysis()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar análise: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de análise")
		s.scheduler.Stop()
	}()

	return nil
}

// runAnalysis executa o pipeline completo. Execuções sobrepostas são
// ignoradas: só uma análise roda por vez.
func (s *AnalysisSyncService) runAnalysis() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Análise já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando análise agendada")

	report, err := s.analyzer.Run(insighting.RunOptions{
		Source:         insighting.SourceSynthetic,
		PersistDataset: true,
		PersistReport:  true,
	})

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	if err != nil {
		s.lastSyncError = err.Error()
		logrus.WithError(err).Error("Análise agendada falhou")
		return
	}

	s.lastSyncError = ""
	s.lastReportID = report.ID
	logrus.WithFields(logrus.Fields{
		"report_id": report.ID,
		"insights":  len(report.Insights),
	}).Info("Análise agendada concluída")
}

// TriggerManualSync inicia manualmente uma execução da análise
func (s *AnalysisSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Análise já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando análise manual")
	go s.runAnalysis()
}

// GetStatus retorna o status atual do agendador
func (s *AnalysisSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sync_error":        s.lastSyncError,
		"last_report_id":         s.lastReportID,
	}
}
