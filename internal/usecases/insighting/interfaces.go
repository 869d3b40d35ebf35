package insighting

import (
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

// DatasetSource indica de onde vêm os registros da análise.
type DatasetSource string

const (
	// SourceSynthetic gera o dataset com o sintetizador determinístico.
	SourceSynthetic DatasetSource = "synthetic"
	// SourceFile carrega um dataset previamente gravado em disco.
	SourceFile DatasetSource = "file"
)

// RunOptions controla uma execução do pipeline.
type RunOptions struct {
	Source         DatasetSource
	PersistDataset bool
	PersistReport  bool
	// IncludeRecords anexa o dataset bruto ao relatório final.
	IncludeRecords bool
}

// Analyzer roda o pipeline de análise de ponta a ponta e mantém o último
// relatório em memória para consulta.
type Analyzer interface {
	// Run executa geração/carga, validação, agregação, detecção e
	// ranqueamento, nessa ordem. Erros fatais de validação interrompem a
	// execução com domain.ValidationError.
	Run(opts RunOptions) (*domain.AnalysisReport, error)

	// LatestReport retorna o último relatório produzido, ou nil.
	LatestReport() *domain.AnalysisReport

	// LatestSummary retorna o snapshot de apresentação do último relatório,
	// ou nil.
	LatestSummary() *domain.DisplaySummary
}
