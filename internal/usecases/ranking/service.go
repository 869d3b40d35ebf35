// Package ranking converte os achados dos detectores em insights pontuados e
// devolve os top-K em ordem total e determinística.
package ranking

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

// Candidates reúne os achados de todos os estágios a ranquear.
type Candidates struct {
	Trends      []domain.Trend
	Fatigue     []domain.FatigueSignal
	Benchmarks  []domain.BenchmarkDeviation
	DayPatterns []domain.PlatformDayPattern
	Anomalies   []domain.DailyAnomaly

	// SpendShare mapeia cada partição à sua fração do investimento total,
	// usada como exposição monetária do insight.
	SpendShare map[string]float64
}

// Ranker pontua, deduplica e ordena os insights de uma campanha.
type Ranker interface {
	Rank(c Candidates) []domain.Insight
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// Rank converte cada achado em um Insight com
// priority_score = magnitude de impacto × confiança × exposição monetária,
// deduplica por sinal de origem e devolve os top-K em ordem decrescente de
// pontuação. Empates são resolvidos pela tabela fixa de pesos de categoria,
// depois pelo nome da categoria e por fim pela chave do sinal, garantindo uma
// ordem total reproduzível.
func (s *Service) Rank(c Candidates) []domain.Insight {
	insights := make([]domain.Insight, 0, len(c.Trends)+len(c.Fatigue)+len(c.Benchmarks))

	for _, sig := range c.Fatigue {
		insights = append(insights, s.fromFatigue(sig, c.SpendShare))
	}
	for _, t := range c.Trends {
		insights = append(insights, s.fromTrend(t, c.SpendShare))
	}
	for _, b := range c.Benchmarks {
		insights = append(insights, s.fromBenchmark(b))
	}
	for _, p := range c.DayPatterns {
		if !p.WeekendCTRLift.Computable {
			continue
		}
		insights = append(insights, s.fromDayPattern(p, c.SpendShare))
	}
	for _, a := range c.Anomalies {
		insights = append(insights, s.fromAnomaly(a))
	}

	insights = dedupe(insights)

	sort.Slice(insights, func(i, j int) bool { return less(insights[i], insights[j]) })

	if k := s.cfg.Engine.TopKInsights; len(insights) > k {
		insights = insights[:k]
	}

	logrus.WithField("insights", len(insights)).Info("Insights ranqueados")

	return insights
}

func (s *Service) fromFatigue(sig domain.FatigueSignal, spendShare map[string]float64) domain.Insight {
	return build(domain.Insight{
		Category:  domain.CategoryAdFatigue,
		SignalKey: "fatigue|" + sig.Key(),
		SupportingMetricRefs: []string{
			"creative:" + sig.CreativeID,
			"platform:" + sig.PlatformID,
			"metric:" + domain.MetricCTR,
			fmt.Sprintf("peak_week:%d", sig.PeakWeek),
			fmt.Sprintf("confirm_week:%d", sig.ConfirmWeek),
			fmt.Sprintf("decline_pct:%.4f", sig.DeclinePct),
		},
		RecommendedAction: fmt.Sprintf(
			"Renovar o criativo %s: CTR caiu %.1f%% do pico da semana %d após %d período(s) consecutivo(s) de queda",
			sig.CreativeID, sig.DeclinePct*100, sig.PeakWeek, sig.RunLength),
		ImpactMagnitude:  sig.DeclinePct,
		Confidence:       sig.Confidence,
		MonetaryExposure: spendShare[sig.CreativeID],
	})
}

func (s *Service) fromTrend(t domain.Trend, spendShare map[string]float64) domain.Insight {
	category := domain.CategoryPlatformPerformance
	if t.Kind == domain.PartitionCreative {
		category = domain.CategoryCreativePerformance
	}

	exposure := spendShare[t.Partition]
	if t.Kind == domain.PartitionOverall {
		exposure = 1.0
	}

	verb := "subiu"
	if t.Direction == domain.TrendDown {
		verb = "caiu"
	}

	return build(domain.Insight{
		Category:  category,
		SignalKey: fmt.Sprintf("trend|%s|%s|%d|%d", t.Partition, t.Metric, t.FromWeek, t.ToWeek),
		SupportingMetricRefs: []string{
			"partition:" + t.Partition,
			"metric:" + t.Metric,
			fmt.Sprintf("from_week:%d", t.FromWeek),
			fmt.Sprintf("to_week:%d", t.ToWeek),
			fmt.Sprintf("pct_change:%.2f", t.PctChange),
		},
		RecommendedAction: fmt.Sprintf(
			"Investigar %s de %s: %s %.1f%% da semana %d para a semana %d",
			t.Metric, t.Partition, verb, abs(t.PctChange), t.FromWeek, t.ToWeek),
		ImpactMagnitude:  abs(t.PctChange) / 100,
		Confidence:       0.8,
		MonetaryExposure: exposure,
	})
}

func (s *Service) fromBenchmark(b domain.BenchmarkDeviation) domain.Insight {
	// Desvios em métricas de custo apontam eficiência de orçamento; desvios
	// de CTR apontam desempenho da plataforma.
	category := domain.CategoryPlatformPerformance
	if b.Metric == domain.MetricCPM || b.Metric == domain.MetricCPC || b.Metric == domain.MetricCPA {
		category = domain.CategoryBudgetEfficiency
	}

	direction := "acima"
	if b.DeviationPct < 0 {
		direction = "abaixo"
	}

	return build(domain.Insight{
		Category:  category,
		SignalKey: fmt.Sprintf("benchmark|%s|%s", b.Partition, b.Metric),
		SupportingMetricRefs: []string{
			"partition:" + b.Partition,
			"metric:" + b.Metric,
			fmt.Sprintf("target:%.4f", b.Target),
			fmt.Sprintf("actual:%.4f", b.Actual),
			fmt.Sprintf("deviation_pct:%.2f", b.DeviationPct),
		},
		RecommendedAction: fmt.Sprintf(
			"Revisar a alocação em %s: %s está %.1f%% %s da meta",
			b.Partition, b.Metric, abs(b.DeviationPct), direction),
		ImpactMagnitude:  abs(b.DeviationPct) / 100,
		Confidence:       1.0,
		MonetaryExposure: b.SpendShare,
	})
}

func (s *Service) fromDayPattern(p domain.PlatformDayPattern, spendShare map[string]float64) domain.Insight {
	direction := "acima"
	if p.WeekendCTRLift.Value < 0 {
		direction = "abaixo"
	}

	return build(domain.Insight{
		Category:  domain.CategoryPlatformPerformance,
		SignalKey: "daypattern|" + p.PlatformID + "|" + domain.MetricCTR,
		SupportingMetricRefs: []string{
			"platform:" + p.PlatformID,
			"metric:" + domain.MetricCTR,
			fmt.Sprintf("weekday_ctr:%.4f", p.WeekdayCTR.Value),
			fmt.Sprintf("weekend_ctr:%.4f", p.WeekendCTR.Value),
			fmt.Sprintf("weekend_lift_pct:%.2f", p.WeekendCTRLift.Value),
		},
		RecommendedAction: fmt.Sprintf(
			"Ajustar a programação em %s: CTR de fim de semana está %.1f%% %s do de dias úteis",
			p.PlatformID, abs(p.WeekendCTRLift.Value), direction),
		ImpactMagnitude:  abs(p.WeekendCTRLift.Value) / 100,
		Confidence:       0.9,
		MonetaryExposure: spendShare[p.PlatformID],
	})
}

func (s *Service) fromAnomaly(a domain.DailyAnomaly) domain.Insight {
	impact := abs(a.RatioToMean - 1)
	if impact > 1 {
		impact = 1
	}

	verb := "acima"
	if a.Direction == domain.AnomalyLow {
		verb = "abaixo"
	}

	return build(domain.Insight{
		Category:  domain.CategoryPlatformPerformance,
		SignalKey: fmt.Sprintf("anomaly|%s|%s", a.Date.Format(time.DateOnly), a.Metric),
		SupportingMetricRefs: []string{
			"date:" + a.Date.Format(time.DateOnly),
			"metric:" + a.Metric,
			fmt.Sprintf("value:%d", a.Value),
			fmt.Sprintf("ratio_to_mean:%.2f", a.RatioToMean),
		},
		RecommendedAction: fmt.Sprintf(
			"Investigar o dia %s: %s ficou %.1f%% %s da média diária da campanha",
			a.Date.Format(time.DateOnly), a.Metric, abs(a.RatioToMean-1)*100, verb),
		ImpactMagnitude:  impact,
		Confidence:       0.6,
		MonetaryExposure: 1.0,
	})
}

// build fecha o insight: pontuação, severidade e ID derivado da chave do
// sinal, de modo que reexecuções com os mesmos achados produzam a mesma
// lista byte a byte.
func build(ins domain.Insight) domain.Insight {
	ins.PriorityScore = ins.ImpactMagnitude * ins.Confidence * ins.MonetaryExposure
	ins.Severity = severity(ins.ImpactMagnitude)
	ins.ID = insightID(ins.SignalKey)
	return ins
}

func severity(impact float64) string {
	switch {
	case impact >= 0.25:
		return domain.SeverityHigh
	case impact >= 0.10:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func insightID(signalKey string) string {
	h := fnv.New64a()
	h.Write([]byte(signalKey))
	return fmt.Sprintf("ins_%012x", h.Sum64()&0xffffffffffff)
}

// dedupe remove insights que referenciam o mesmo sinal de origem, mantendo o
// de maior pontuação e preservando a ordem de chegada.
func dedupe(insights []domain.Insight) []domain.Insight {
	best := make(map[string]domain.Insight, len(insights))
	var order []string
	for _, ins := range insights {
		existing, ok := best[ins.SignalKey]
		if !ok {
			order = append(order, ins.SignalKey)
			best[ins.SignalKey] = ins
			continue
		}
		if ins.PriorityScore > existing.PriorityScore {
			best[ins.SignalKey] = ins
		}
	}

	out := make([]domain.Insight, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func less(a, b domain.Insight) bool {
	if a.PriorityScore != b.PriorityScore {
		return a.PriorityScore > b.PriorityScore
	}
	if wa, wb := domain.CategoryWeights[a.Category], domain.CategoryWeights[b.Category]; wa != wb {
		return wa > wb
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return a.SignalKey < b.SignalKey
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
