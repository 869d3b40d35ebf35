package domain

import "time"

// PartitionKind indica o recorte usado em uma agregação.
type PartitionKind string

const (
	PartitionOverall  PartitionKind = "overall"
	PartitionPlatform PartitionKind = "platform"
	PartitionCreative PartitionKind = "creative"
)

// OverallPartition é o identificador reservado do recorte "overall".
const OverallPartition = "overall"

// Nomes das métricas derivadas.
const (
	MetricCTR  = "ctr"
	MetricCPM  = "cpm"
	MetricCPC  = "cpc"
	MetricCPA  = "cpa"
	MetricROAS = "roas"
)

// MetricValue representa uma métrica derivada. Quando o denominador da razão
// é zero a métrica não é computável e Computable fica falso — nunca usamos
// zero como valor padrão.
type MetricValue struct {
	Value      float64 `json:"value"`
	Computable bool    `json:"computable"`
}

// Ratio calcula num/den como MetricValue, marcando como não computável
// quando o denominador é zero.
func Ratio(num, den float64) MetricValue {
	if den == 0 {
		return MetricValue{}
	}
	return MetricValue{Value: num / den, Computable: true}
}

// MetricSet é o conjunto de métricas derivadas de uma partição/período.
type MetricSet struct {
	CTR  MetricValue `json:"ctr"`
	CPM  MetricValue `json:"cpm"`
	CPC  MetricValue `json:"cpc"`
	CPA  MetricValue `json:"cpa"`
	ROAS MetricValue `json:"roas"`
}

// Get retorna a métrica pelo nome.
func (m MetricSet) Get(name string) MetricValue {
	switch name {
	case MetricCTR:
		return m.CTR
	case MetricCPM:
		return m.CPM
	case MetricCPC:
		return m.CPC
	case MetricCPA:
		return m.CPA
	case MetricROAS:
		return m.ROAS
	}
	return MetricValue{}
}

// Totals acumula os contadores brutos de uma partição/período. Métricas de
// razão são sempre derivadas destas somas (soma dos numeradores sobre soma
// dos denominadores), nunca de médias de razões por registro.
type Totals struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}

// Add acumula um registro nos totais.
func (t *Totals) Add(r ActivityRecord, revenuePerConversion float64) {
	t.Impressions += r.Impressions
	t.Clicks += r.Clicks
	t.Conversions += r.Conversions
	t.Spend += r.Spend
	t.Revenue += float64(r.Conversions) * revenuePerConversion
}

// DeriveMetrics recalcula o conjunto de métricas a partir das somas.
func (t Totals) DeriveMetrics() MetricSet {
	return MetricSet{
		CTR:  Ratio(float64(t.Clicks), float64(t.Impressions)),
		CPM:  Ratio(t.Spend*1000, float64(t.Impressions)),
		CPC:  Ratio(t.Spend, float64(t.Clicks)),
		CPA:  Ratio(t.Spend, float64(t.Conversions)),
		ROAS: Ratio(t.Revenue, t.Spend),
	}
}

// PartitionAggregate é o resultado de uma agregação de período completo para
// uma partição (plataforma, criativo ou overall).
type PartitionAggregate struct {
	Kind       PartitionKind `json:"kind"`
	Partition  string        `json:"partition"`
	Totals     Totals        `json:"totals"`
	Metrics    MetricSet     `json:"metrics"`
	SpendShare float64       `json:"spend_share"`
}

// WeeklyAggregate é um balde fixo de 7 dias ancorado no início da campanha
// (semana 1 = dias 0..6), com as métricas recalculadas das somas do balde.
type WeeklyAggregate struct {
	Kind      PartitionKind `json:"kind"`
	Partition string        `json:"partition"`
	Week      int           `json:"week"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Days      int           `json:"days"`
	Totals    Totals        `json:"totals"`
	Metrics   MetricSet     `json:"metrics"`
}

// DailyAggregate agrega uma partição em granularidade diária.
type DailyAggregate struct {
	Kind      PartitionKind `json:"kind"`
	Partition string        `json:"partition"`
	Date      time.Time     `json:"date"`
	Totals    Totals        `json:"totals"`
	Metrics   MetricSet     `json:"metrics"`
}

// BenchmarkDeviation é o desvio percentual (com sinal) de uma métrica
// agregada contra a meta configurada.
type BenchmarkDeviation struct {
	Kind         PartitionKind `json:"kind"`
	Partition    string        `json:"partition"`
	Metric       string        `json:"metric"`
	Target       float64       `json:"target"`
	Actual       float64       `json:"actual"`
	DeviationPct float64       `json:"deviation_pct"`
	SpendShare   float64       `json:"spend_share"`
}
