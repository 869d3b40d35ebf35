package domain

import "time"

// Narrative é o texto produzido pelo serviço externo de geração de narrativa
// para um insight específico.
type Narrative struct {
	InsightID string `json:"insight_id"`
	Headline  string `json:"headline"`
	Text      string `json:"text"`
}

// CampaignInfo resume a configuração da campanha analisada.
type CampaignInfo struct {
	StartDate    time.Time `json:"start_date"`
	DurationDays int       `json:"duration_days"`
	TotalBudget  float64   `json:"total_budget"`
	Platforms    []string  `json:"platforms"`
}

// AnalysisReport é o artefato final do pipeline: todos os resultados de cada
// estágio, imutável depois de emitido. Erros não fatais de estágio ficam
// anexados aqui (relatório de validação, cálculos pulados) em vez de
// propagados entre estágios.
type AnalysisReport struct {
	ID                  string               `json:"id"`
	GeneratedAt         time.Time            `json:"generated_at"`
	Campaign            CampaignInfo         `json:"campaign"`
	Validation          *ValidationReport    `json:"validation"`
	Records             []ActivityRecord     `json:"records,omitempty"`
	OverallKPIs         PartitionAggregate   `json:"overall_kpis"`
	PlatformKPIs        []PartitionAggregate `json:"platform_kpis"`
	CreativeKPIs        []PartitionAggregate `json:"creative_kpis"`
	WeeklySeries        []WeeklyAggregate    `json:"weekly_series"`
	Trends              []Trend              `json:"trends"`
	FatigueSignals      []FatigueSignal      `json:"fatigue_signals"`
	BenchmarkDeviations []BenchmarkDeviation `json:"benchmark_deviations"`
	DayOfWeek           DayOfWeekAnalysis    `json:"day_of_week"`
	Anomalies           []DailyAnomaly       `json:"anomalies,omitempty"`
	Insights            []Insight            `json:"insights"`
	Narratives          []Narrative          `json:"narratives,omitempty"`
	SkippedComputations []string             `json:"skipped_computations,omitempty"`
}

// DisplaySummary é o snapshot somente leitura entregue à camada externa de
// apresentação: KPIs agregados, série semanal, episódios de fadiga e a lista
// ranqueada de insights. Não há callback de volta para o engine.
type DisplaySummary struct {
	ReportID            string               `json:"report_id"`
	GeneratedAt         time.Time            `json:"generated_at"`
	Campaign            CampaignInfo         `json:"campaign"`
	OverallKPIs         PartitionAggregate   `json:"overall_kpis"`
	PlatformKPIs        []PartitionAggregate `json:"platform_kpis"`
	WeeklySeries        []WeeklyAggregate    `json:"weekly_series"`
	Trends              []Trend              `json:"trends"`
	FatigueEpisodes     []FatigueSignal      `json:"fatigue_episodes"`
	BenchmarkDeviations []BenchmarkDeviation `json:"benchmark_deviations"`
	DayOfWeek           DayOfWeekAnalysis    `json:"day_of_week"`
	Anomalies           []DailyAnomaly       `json:"anomalies,omitempty"`
	Insights            []Insight            `json:"insights"`
	Narratives          []Narrative          `json:"narratives,omitempty"`
}

// Summary projeta o relatório completo no snapshot de apresentação.
func (r *AnalysisReport) Summary() *DisplaySummary {
	return &DisplaySummary{
		ReportID:            r.ID,
		GeneratedAt:         r.GeneratedAt,
		Campaign:            r.Campaign,
		OverallKPIs:         r.OverallKPIs,
		PlatformKPIs:        r.PlatformKPIs,
		WeeklySeries:        r.WeeklySeries,
		Trends:              r.Trends,
		FatigueEpisodes:     r.FatigueSignals,
		BenchmarkDeviations: r.BenchmarkDeviations,
		DayOfWeek:           r.DayOfWeek,
		Anomalies:           r.Anomalies,
		Insights:            r.Insights,
		Narratives:          r.Narratives,
	}
}
