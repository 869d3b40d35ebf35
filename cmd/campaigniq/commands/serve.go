package commands

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/campaigniq-api/internal/api"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/scheduler"
)

// serveCmd sobe a API HTTP e o agendador de análise
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe a API HTTP e o agendador de análise periódica",
	Long: `Sobe o servidor HTTP com as rotas de análise e, se habilitado por
configuração, o agendador que reexecuta o pipeline periodicamente.

Example:
  go run ./cmd/campaigniq serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		configureLogger(cfg.App.LogLevel)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		analyzer, datasetRepo, _ := buildAnalyzer(cfg)

		analysisSyncService := scheduler.NewAnalysisSyncService(analyzer, cfg)
		if err := analysisSyncService.Start(ctx); err != nil {
			logrus.WithError(err).Error("Erro ao iniciar o agendador de análise")
		} else {
			logrus.Info("Agendador de análise iniciado com sucesso")
		}

		server, err := api.New(cfg, analyzer, datasetRepo, analysisSyncService)
		if err != nil {
			return err
		}

		return server.Run(ctx)
	},
}
