package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/usecases/insighting"
	"github.com/vfg2006/campaigniq-api/pkg/utils"
)

var (
	analyzeSource  string
	analyzePersist bool
	analyzeFull    bool
)

// analyzeCmd roda o pipeline completo uma vez e imprime o resultado
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Executa o pipeline de análise e imprime o relatório",
	Long: `Executa geração (ou carga) do dataset, validação, agregação,
detecção de tendências e fadiga e ranqueamento de insights.

Examples:
  go run ./cmd/campaigniq analyze
  go run ./cmd/campaigniq analyze --source file
  go run ./cmd/campaigniq analyze --persist --full`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		configureLogger(cfg.App.LogLevel)

		source := insighting.SourceSynthetic
		switch analyzeSource {
		case "", string(insighting.SourceSynthetic):
		case string(insighting.SourceFile):
			source = insighting.SourceFile
		default:
			return fmt.Errorf("fonte inválida %q: valores aceitos são synthetic e file", analyzeSource)
		}

		analyzer, _, _ := buildAnalyzer(cfg)

		report, err := analyzer.Run(insighting.RunOptions{
			Source:         source,
			PersistDataset: analyzePersist,
			PersistReport:  analyzePersist,
		})
		if err != nil {
			return err
		}

		if analyzeFull {
			fmt.Println(utils.PrettyJson(report))
		} else {
			fmt.Println(utils.PrettyJson(report.Summary()))
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "synthetic", "fonte do dataset (synthetic|file)")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "persist", false, "grava dataset e relatório em disco")
	analyzeCmd.Flags().BoolVar(&analyzeFull, "full", false, "imprime o relatório completo em vez do resumo")
}
