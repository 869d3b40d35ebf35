// Package measuring agrega registros validados em KPIs por partição e
// período. Métricas de razão são sempre soma(numerador)/soma(denominador)
// sobre a partição — nunca média de razões por registro, que enviesaria o
// resultado para registros de baixo volume.
package measuring

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

// Engine agrega registros em métricas derivadas por partição e período.
type Engine interface {
	AggregateRange(records []domain.ActivityRecord, kind domain.PartitionKind) []domain.PartitionAggregate
	AggregateWeekly(records []domain.ActivityRecord, kind domain.PartitionKind) []domain.WeeklyAggregate
	AggregateDaily(records []domain.ActivityRecord, kind domain.PartitionKind) []domain.DailyAggregate
	BenchmarkDeviations(aggregates []domain.PartitionAggregate) []domain.BenchmarkDeviation
	DayOfWeekPatterns(records []domain.ActivityRecord) domain.DayOfWeekAnalysis
	DetectAnomalies(daily []domain.DailyAggregate) []domain.DailyAnomaly
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

func partitionKey(kind domain.PartitionKind, rec domain.ActivityRecord) string {
	switch kind {
	case domain.PartitionPlatform:
		return rec.PlatformID
	case domain.PartitionCreative:
		return rec.CreativeID
	default:
		return domain.OverallPartition
	}
}

// AggregateRange agrega o período completo por partição. O resultado é
// ordenado pela chave da partição para a fusão ser determinística
// independentemente da ordem de chegada.
func (s *Service) AggregateRange(records []domain.ActivityRecord, kind domain.PartitionKind) []domain.PartitionAggregate {
	totals := make(map[string]*domain.Totals)
	var totalSpend float64

	for _, rec := range records {
		key := partitionKey(kind, rec)
		t, ok := totals[key]
		if !ok {
			t = &domain.Totals{}
			totals[key] = t
		}
		t.Add(rec, s.cfg.Engine.RevenuePerConversion)
		totalSpend += rec.Spend
	}

	out := make([]domain.PartitionAggregate, 0, len(totals))
	for key, t := range totals {
		agg := domain.PartitionAggregate{
			Kind:      kind,
			Partition: key,
			Totals:    *t,
			Metrics:   t.DeriveMetrics(),
		}
		if totalSpend > 0 {
			agg.SpendShare = t.Spend / totalSpend
		}
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Partition < out[j].Partition })

	return out
}

// AggregateWeekly agrega em baldes fixos de 7 dias ancorados no início da
// campanha (semana 1 = dias 0..6), não em semanas de calendário.
func (s *Service) AggregateWeekly(records []domain.ActivityRecord, kind domain.PartitionKind) []domain.WeeklyAggregate {
	start := s.cfg.Campaign.StartDate

	type bucketKey struct {
		partition string
		week      int
	}
	totals := make(map[bucketKey]*domain.Totals)
	days := make(map[bucketKey]map[string]bool)

	for _, rec := range records {
		day := int(rec.Date.Sub(start).Hours() / 24)
		if day < 0 {
			continue
		}
		key := bucketKey{partition: partitionKey(kind, rec), week: day/7 + 1}
		t, ok := totals[key]
		if !ok {
			t = &domain.Totals{}
			totals[key] = t
			days[key] = make(map[string]bool)
		}
		t.Add(rec, s.cfg.Engine.RevenuePerConversion)
		days[key][rec.Date.Format(time.DateOnly)] = true
	}

	out := make([]domain.WeeklyAggregate, 0, len(totals))
	for key, t := range totals {
		weekStart := start.AddDate(0, 0, (key.week-1)*7)
		out = append(out, domain.WeeklyAggregate{
			Kind:      kind,
			Partition: key.partition,
			Week:      key.week,
			StartDate: weekStart,
			EndDate:   weekStart.AddDate(0, 0, 6),
			Days:      len(days[key]),
			Totals:    *t,
			Metrics:   t.DeriveMetrics(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Partition != out[j].Partition {
			return out[i].Partition < out[j].Partition
		}
		return out[i].Week < out[j].Week
	})

	return out
}

// AggregateDaily agrega em granularidade diária por partição.
func (s *Service) AggregateDaily(records []domain.ActivityRecord, kind domain.PartitionKind) []domain.DailyAggregate {
	type bucketKey struct {
		partition string
		day       string
	}
	totals := make(map[bucketKey]*domain.Totals)
	dates := make(map[bucketKey]time.Time)

	for _, rec := range records {
		key := bucketKey{partition: partitionKey(kind, rec), day: rec.Date.Format(time.DateOnly)}
		t, ok := totals[key]
		if !ok {
			t = &domain.Totals{}
			totals[key] = t
			dates[key] = rec.Date
		}
		t.Add(rec, s.cfg.Engine.RevenuePerConversion)
	}

	out := make([]domain.DailyAggregate, 0, len(totals))
	for key, t := range totals {
		out = append(out, domain.DailyAggregate{
			Kind:      kind,
			Partition: key.partition,
			Date:      dates[key],
			Totals:    *t,
			Metrics:   t.DeriveMetrics(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Partition != out[j].Partition {
			return out[i].Partition < out[j].Partition
		}
		return out[i].Date.Before(out[j].Date)
	})

	return out
}

// DayOfWeekPatterns agrega a campanha no recorte dia útil × fim de semana e
// calcula, por plataforma, o lift percentual do CTR de fim de semana sobre o
// de dias úteis. Como sempre, razões saem das somas de cada fatia.
func (s *Service) DayOfWeekPatterns(records []domain.ActivityRecord) domain.DayOfWeekAnalysis {
	type split struct {
		weekday domain.Totals
		weekend domain.Totals
	}

	var weekday, weekend domain.Totals
	weekdayDays := make(map[string]bool)
	weekendDays := make(map[string]bool)
	platforms := make(map[string]*split)

	for _, rec := range records {
		p, ok := platforms[rec.PlatformID]
		if !ok {
			p = &split{}
			platforms[rec.PlatformID] = p
		}

		day := rec.Date.Format(time.DateOnly)
		if isWeekend(rec.Date) {
			weekend.Add(rec, s.cfg.Engine.RevenuePerConversion)
			p.weekend.Add(rec, s.cfg.Engine.RevenuePerConversion)
			weekendDays[day] = true
		} else {
			weekday.Add(rec, s.cfg.Engine.RevenuePerConversion)
			p.weekday.Add(rec, s.cfg.Engine.RevenuePerConversion)
			weekdayDays[day] = true
		}
	}

	out := domain.DayOfWeekAnalysis{
		Weekday: domain.DaySlice{Days: len(weekdayDays), Totals: weekday, Metrics: weekday.DeriveMetrics()},
		Weekend: domain.DaySlice{Days: len(weekendDays), Totals: weekend, Metrics: weekend.DeriveMetrics()},
	}

	ids := make([]string, 0, len(platforms))
	for id := range platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := platforms[id]
		pattern := domain.PlatformDayPattern{
			PlatformID: id,
			WeekdayCTR: p.weekday.DeriveMetrics().CTR,
			WeekendCTR: p.weekend.DeriveMetrics().CTR,
		}
		if pattern.WeekdayCTR.Computable && pattern.WeekendCTR.Computable && pattern.WeekdayCTR.Value > 0 {
			pattern.WeekendCTRLift = domain.MetricValue{
				Value:      (pattern.WeekendCTR.Value - pattern.WeekdayCTR.Value) / pattern.WeekdayCTR.Value * 100,
				Computable: true,
			}
		}
		out.Platforms = append(out.Platforms, pattern)
	}

	return out
}

// DetectAnomalies aponta dias atípicos na série diária de uma única partição:
// impressões ou cliques além de dois desvios-padrão da média diária. Séries
// com menos de dois dias ou sem variância não produzem anomalias.
func (s *Service) DetectAnomalies(daily []domain.DailyAggregate) []domain.DailyAnomaly {
	if len(daily) < 2 {
		return nil
	}

	counters := []struct {
		name  string
		value func(domain.Totals) int64
	}{
		{domain.CounterImpressions, func(t domain.Totals) int64 { return t.Impressions }},
		{domain.CounterClicks, func(t domain.Totals) int64 { return t.Clicks }},
	}

	var out []domain.DailyAnomaly
	for _, c := range counters {
		mean, std := meanStd(daily, c.value)
		if mean == 0 || std == 0 {
			continue
		}

		for _, d := range daily {
			v := float64(c.value(d.Totals))
			anomaly := domain.DailyAnomaly{
				Date:        d.Date,
				Metric:      c.name,
				Value:       c.value(d.Totals),
				RatioToMean: v / mean,
			}
			switch {
			case v > mean+2*std:
				anomaly.Direction = domain.AnomalyHigh
			case v < mean-2*std:
				anomaly.Direction = domain.AnomalyLow
			default:
				continue
			}
			out = append(out, anomaly)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Metric < out[j].Metric
	})

	if len(out) > 0 {
		logrus.WithField("anomalies", len(out)).Debug("Dias atípicos detectados na série diária")
	}

	return out
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// meanStd devolve média e desvio-padrão amostral do contador na série diária.
func meanStd(daily []domain.DailyAggregate, value func(domain.Totals) int64) (float64, float64) {
	n := float64(len(daily))

	var sum float64
	for _, d := range daily {
		sum += float64(value(d.Totals))
	}
	mean := sum / n

	var ss float64
	for _, d := range daily {
		diff := float64(value(d.Totals)) - mean
		ss += diff * diff
	}

	return mean, math.Sqrt(ss / (n - 1))
}

// BenchmarkDeviations calcula o desvio percentual com sinal das métricas
// agregadas contra as metas configuradas (CTR e CPM). Métricas não
// computáveis são puladas.
func (s *Service) BenchmarkDeviations(aggregates []domain.PartitionAggregate) []domain.BenchmarkDeviation {
	targets := []struct {
		metric string
		target float64
	}{
		{domain.MetricCTR, s.cfg.Engine.BenchmarkTargetCTR},
		{domain.MetricCPM, s.cfg.Engine.BenchmarkTargetCPM},
	}

	var out []domain.BenchmarkDeviation
	for _, agg := range aggregates {
		for _, t := range targets {
			if t.target <= 0 {
				continue
			}
			value := agg.Metrics.Get(t.metric)
			if !value.Computable {
				logrus.WithFields(logrus.Fields{
					"partition": agg.Partition,
					"metric":    t.metric,
				}).Debug("Métrica não computável, desvio de benchmark pulado")
				continue
			}
			out = append(out, domain.BenchmarkDeviation{
				Kind:         agg.Kind,
				Partition:    agg.Partition,
				Metric:       t.metric,
				Target:       t.target,
				Actual:       value.Value,
				DeviationPct: (value.Value - t.target) / t.target * 100,
				SpendShare:   agg.SpendShare,
			})
		}
	}

	return out
}
