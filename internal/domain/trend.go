package domain

import "math"

// Direções possíveis de uma tendência.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// Trend registra a variação de uma métrica entre duas semanas consecutivas
// da mesma partição.
type Trend struct {
	Kind      PartitionKind `json:"kind"`
	Partition string        `json:"partition"`
	Metric    string        `json:"metric"`
	FromWeek  int           `json:"from_week"`
	ToWeek    int           `json:"to_week"`
	FromValue float64       `json:"from_value"`
	ToValue   float64       `json:"to_value"`
	PctChange float64       `json:"pct_change"`
	Direction string        `json:"direction"`
}

// Delta retorna a variação absoluta da métrica.
func (t Trend) Delta() float64 {
	return t.ToValue - t.FromValue
}

// Less define a ordenação de "maior tendência": módulo da variação
// percentual, depois módulo do delta, depois partição (lexicográfico) para
// garantir determinismo em empates.
func (t Trend) Less(other Trend) bool {
	if a, b := math.Abs(t.PctChange), math.Abs(other.PctChange); a != b {
		return a > b
	}
	if a, b := math.Abs(t.Delta()), math.Abs(other.Delta()); a != b {
		return a > b
	}
	if t.Partition != other.Partition {
		return t.Partition < other.Partition
	}
	return t.Metric < other.Metric
}
