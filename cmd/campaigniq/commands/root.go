package commands

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd é o comando base quando chamado sem subcomandos
var rootCmd = &cobra.Command{
	Use:   "campaigniq",
	Short: "CampaignIQ - engine de análise de campanhas de mídia paga",
	Long: `CampaignIQ

Gera datasets sintéticos de campanha, valida e agrega métricas,
detecta tendências e fadiga de criativo e ranqueia insights acionáveis.

Examples:
  go run ./cmd/campaigniq generate
  go run ./cmd/campaigniq analyze --source file
  go run ./cmd/campaigniq serve`,
}

// Execute registra os subcomandos no comando raiz. Chamado por main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "loga em nível debug")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger(logLevel string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", logLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
