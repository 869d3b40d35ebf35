package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/campaigniq-api/infrastructure/repository"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/usecases/generating"
)

// generateCmd gera o dataset sintético e grava em disco
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Gera o dataset sintético da campanha e grava em CSV",
	Long: `Gera um registro por (dia, plataforma, criativo) a partir da
configuração da campanha e grava o resultado em CSV. A mesma seed
produz sempre o mesmo dataset.

Example:
  go run ./cmd/campaigniq generate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		configureLogger(cfg.App.LogLevel)

		records, err := generating.NewService(cfg).Generate()
		if err != nil {
			return err
		}

		path, err := repository.NewDatasetRepository(cfg).SaveDataset(records)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"records": len(records),
			"seed":    cfg.Campaign.Seed,
		}).Info("Dataset sintético gerado")

		fmt.Printf("Dataset com %d registros gravado em %s\n", len(records), path)
		return nil
	},
}
