package domain

import "strconv"

// FatigueSignal registra um episódio confirmado de fadiga de anúncio: queda
// sustentada de CTR de um criativo em relação ao pico corrente. Criado pelo
// detector quando o episódio é confirmado e imutável a partir daí.
type FatigueSignal struct {
	CreativeID  string  `json:"creative_id"`
	PlatformID  string  `json:"platform_id"`
	OnsetWeek   int     `json:"onset_week"`
	ConfirmWeek int     `json:"confirm_week"`
	PeakWeek    int     `json:"peak_week"`
	PeakCTR     float64 `json:"peak_ctr"`
	CurrentCTR  float64 `json:"current_ctr"`
	DeclinePct  float64 `json:"decline_pct"`
	RunLength   int     `json:"run_length"`
	Confidence  float64 `json:"confidence"`
}

// Key identifica o episódio de forma única (um sinal por episódio por
// criativo), usada na deduplicação de insights.
func (s FatigueSignal) Key() string {
	return s.CreativeID + "|" + strconv.Itoa(s.OnsetWeek)
}
