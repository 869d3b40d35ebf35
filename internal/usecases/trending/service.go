// Package trending calcula variações semana a semana sobre os agregados do
// engine de métricas, com um piso de amostra para não reportar tendências
// pouco confiáveis.
package trending

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

// Detector produz tendências de pares consecutivos de agregados semanais.
type Detector interface {
	Detect(weekly []domain.WeeklyAggregate) ([]domain.Trend, []*domain.DataSparsityError)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// trackedMetric associa cada métrica ao denominador usado no piso de amostra.
type trackedMetric struct {
	name string
	// sample extrai o denominador da métrica do período anterior.
	sample func(domain.Totals) int64
	// minSample é a amostra mínima exigida do período anterior.
	minSample func(cfg *config.Config) int64
}

var trackedMetrics = []trackedMetric{
	{domain.MetricCTR, func(t domain.Totals) int64 { return t.Impressions }, func(c *config.Config) int64 { return c.Engine.TrendMinSampleSize }},
	{domain.MetricCPM, func(t domain.Totals) int64 { return t.Impressions }, func(c *config.Config) int64 { return c.Engine.TrendMinSampleSize }},
	// Métricas denominadas em cliques usam um piso proporcionalmente menor.
	{domain.MetricCPC, func(t domain.Totals) int64 { return t.Clicks }, func(c *config.Config) int64 { return c.Engine.TrendMinSampleSize / 10 }},
}

// Detect varre pares consecutivos de semanas da mesma partição. Quando o
// denominador do período anterior fica abaixo do piso, nenhuma tendência é
// emitida para aquele par — o cálculo é pulado e reportado como esparso, e o
// restante segue normalmente. A saída é ordenada da maior para a menor
// tendência (|variação %|, depois |delta|, depois partição).
func (s *Service) Detect(weekly []domain.WeeklyAggregate) ([]domain.Trend, []*domain.DataSparsityError) {
	byPartition := make(map[string][]domain.WeeklyAggregate)
	var partitions []string
	for _, w := range weekly {
		if _, ok := byPartition[w.Partition]; !ok {
			partitions = append(partitions, w.Partition)
		}
		byPartition[w.Partition] = append(byPartition[w.Partition], w)
	}
	sort.Strings(partitions)

	var trends []domain.Trend
	var skipped []*domain.DataSparsityError

	for _, partition := range partitions {
		weeks := byPartition[partition]
		sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })

		for i := 1; i < len(weeks); i++ {
			prev, curr := weeks[i-1], weeks[i]
			if curr.Week != prev.Week+1 {
				// Baldes não consecutivos não formam par de tendência.
				continue
			}

			for _, m := range trackedMetrics {
				if sample := m.sample(prev.Totals); sample < m.minSample(s.cfg) {
					err := &domain.DataSparsityError{
						Partition: partition,
						Metric:    m.name,
						Reason:    "denominador do período anterior abaixo do piso de amostra",
					}
					skipped = append(skipped, err)
					logrus.WithFields(logrus.Fields{
						"partition": partition,
						"metric":    m.name,
						"from_week": prev.Week,
						"sample":    sample,
					}).Debug("Tendência pulada por amostra insuficiente")
					continue
				}

				from := prev.Metrics.Get(m.name)
				to := curr.Metrics.Get(m.name)
				if !from.Computable || !to.Computable || from.Value == 0 {
					continue
				}

				pct := (to.Value - from.Value) / from.Value * 100
				direction := domain.TrendFlat
				if pct > 0 {
					direction = domain.TrendUp
				} else if pct < 0 {
					direction = domain.TrendDown
				}

				trends = append(trends, domain.Trend{
					Kind:      curr.Kind,
					Partition: partition,
					Metric:    m.name,
					FromWeek:  prev.Week,
					ToWeek:    curr.Week,
					FromValue: from.Value,
					ToValue:   to.Value,
					PctChange: pct,
					Direction: direction,
				})
			}
		}
	}

	sort.Slice(trends, func(i, j int) bool { return trends[i].Less(trends[j]) })

	return trends, skipped
}
