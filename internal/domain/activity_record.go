package domain

import (
	"fmt"
	"time"
)

// ActivityRecord representa a atividade diária de um criativo em uma plataforma.
// É o artefato de entrada de todo o pipeline: imutável depois de emitido.
type ActivityRecord struct {
	Date        time.Time `json:"date"`
	PlatformID  string    `json:"platform_id"`
	CreativeID  string    `json:"creative_id"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Spend       float64   `json:"spend"`
	Conversions int64     `json:"conversions"`
}

// Key retorna a chave única (data, plataforma, criativo) usada para
// deduplicação e para referenciar o registro em relatórios de validação.
func (r ActivityRecord) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.Date.Format(time.DateOnly), r.PlatformID, r.CreativeID)
}

// CTR retorna a taxa de cliques do próprio registro. Usada apenas para
// inspeção pontual; agregações sempre recalculam sobre somas.
func (r ActivityRecord) CTR() MetricValue {
	return Ratio(float64(r.Clicks), float64(r.Impressions))
}
