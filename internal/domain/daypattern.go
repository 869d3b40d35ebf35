package domain

import "time"

// Contadores brutos sujeitos à detecção de anomalia diária.
const (
	CounterImpressions = "impressions"
	CounterClicks      = "clicks"
)

// Direções de uma anomalia diária.
const (
	AnomalyHigh = "high"
	AnomalyLow  = "low"
)

// DaySlice agrega todos os dias úteis (ou todos os de fim de semana) da
// campanha, com as métricas recalculadas das somas da fatia.
type DaySlice struct {
	Days    int       `json:"days"`
	Totals  Totals    `json:"totals"`
	Metrics MetricSet `json:"metrics"`
}

// PlatformDayPattern compara o CTR de dias úteis e de fim de semana de uma
// plataforma. O lift só é computável quando as duas fatias têm impressões e o
// CTR de dias úteis é maior que zero.
type PlatformDayPattern struct {
	PlatformID     string      `json:"platform_id"`
	WeekdayCTR     MetricValue `json:"weekday_ctr"`
	WeekendCTR     MetricValue `json:"weekend_ctr"`
	WeekendCTRLift MetricValue `json:"weekend_ctr_lift_pct"`
}

// DayOfWeekAnalysis é o recorte dia útil × fim de semana da campanha inteira.
type DayOfWeekAnalysis struct {
	Weekday   DaySlice             `json:"weekday"`
	Weekend   DaySlice             `json:"weekend"`
	Platforms []PlatformDayPattern `json:"platforms"`
}

// DailyAnomaly é um dia atípico: um contador diário além de dois
// desvios-padrão da média diária da campanha.
type DailyAnomaly struct {
	Date        time.Time `json:"date"`
	Metric      string    `json:"metric"`
	Value       int64     `json:"value"`
	RatioToMean float64   `json:"ratio_to_mean"`
	Direction   string    `json:"direction"`
}
