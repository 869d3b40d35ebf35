package domain

// Categorias de insight, espelhando as frentes de análise da campanha.
const (
	CategoryAdFatigue           = "ad_fatigue"
	CategoryBudgetEfficiency    = "budget_efficiency"
	CategoryCreativePerformance = "creative_performance"
	CategoryPlatformPerformance = "platform_performance"
)

// Severidades possíveis de um insight.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// CategoryWeights define o peso fixo usado como desempate na ordenação de
// insights com a mesma pontuação. Categorias que exigem ação mais urgente
// ganham peso maior.
var CategoryWeights = map[string]int{
	CategoryAdFatigue:           4,
	CategoryBudgetEfficiency:    3,
	CategoryCreativePerformance: 2,
	CategoryPlatformPerformance: 1,
}

// Insight é um achado pontuado e ranqueado, pronto para ser entregue ao
// serviço externo de geração de texto. Cada entrada é autocontida: as
// referências de métricas de suporte permitem resolver o achado sem
// reconsultar o engine.
type Insight struct {
	ID                   string   `json:"id"`
	Category             string   `json:"category"`
	Severity             string   `json:"severity"`
	SignalKey            string   `json:"signal_key"`
	SupportingMetricRefs []string `json:"supporting_metric_refs"`
	RecommendedAction    string   `json:"recommended_action"`
	ImpactMagnitude      float64  `json:"impact_magnitude"`
	Confidence           float64  `json:"confidence"`
	MonetaryExposure     float64  `json:"monetary_exposure"`
	PriorityScore        float64  `json:"priority_score"`
}
