package domain

// InsightSummary é a projeção de um insight enviada ao serviço de narrativa.
type InsightSummary struct {
	ID                string  `json:"id"`
	Category          string  `json:"category"`
	Severity          string  `json:"severity"`
	RecommendedAction string  `json:"recommended_action"`
	PriorityScore     float64 `json:"priority_score"`
}

type GenerateRequest struct {
	CampaignName string           `json:"campaign_name"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	Insights     []InsightSummary `json:"insights"`
}

type NarrativeItem struct {
	InsightID string `json:"insight_id"`
	Headline  string `json:"headline"`
	Text      string `json:"text"`
}

type GenerateResponse struct {
	Narratives []NarrativeItem `json:"narratives"`
}

type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
