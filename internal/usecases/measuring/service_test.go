package measuring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Campaign: config.Campaign{
			StartDateRaw: "2025-06-02",
			DurationDays: 30,
			TotalBudget:  15000,
			Seed:         42,
		},
		Synthesizer: config.Synthesizer{
			PlatformIDs:             []string{"meta"},
			PlatformBudgetShares:    []string{"1.0"},
			PlatformBaseCPMs:        []string{"9.00"},
			PlatformBaseCTRs:        []string{"0.016"},
			PlatformConversionRates: []string{"0.045"},
			CreativesPerPlatform:    2,
			LearningPhaseDays:       7,
			LearningCTRFloor:        0.85,
			LearningCPMBoost:        1.30,
			FatiguePeakDay:          21,
			FatigueDecayRate:        0.04,
			FatigueCTRFloor:         0.35,
			DayOfWeekFactors:        []string{"1", "1", "1", "1", "1", "1", "1"},
			MaxCTR:                  0.95,
		},
		Engine: config.Engine{
			BenchmarkTargetCTR:         0.015,
			BenchmarkTargetCPM:         8.0,
			TopKInsights:               5,
			FatigueMinRunLength:        2,
			FatigueDeclineThresholdPct: 0.15,
			TrendMinSampleSize:         1000,
			RevenuePerConversion:       80,
		},
		Validation: config.Validation{
			ErrorTolerance:      0.05,
			AllocationTolerance: 0.001,
		},
	}
	require.NoError(t, cfg.Finalize())
	return cfg
}

func record(date, platform, creative string, impressions, clicks, conversions int64, spend float64) domain.ActivityRecord {
	d, _ := time.Parse(time.DateOnly, date)
	return domain.ActivityRecord{
		Date:        d,
		PlatformID:  platform,
		CreativeID:  creative,
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		Spend:       spend,
	}
}

func TestAggregateRange(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg)

	t.Run("CTR deve ser razão de somas, não média de razões", func(t *testing.T) {
		// CTRs por registro: 10% e 1%. Média das razões seria 5.5%;
		// razão das somas é (10+10)/(100+1000) ≈ 1.82%.
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 100, 10, 1, 5),
			record("2025-06-03", "meta", "meta_creative_1", 1000, 10, 1, 5),
		}

		out := svc.AggregateRange(recs, domain.PartitionOverall)
		require.Len(t, out, 1)

		ctr := out[0].Metrics.CTR
		require.True(t, ctr.Computable)
		assert.InDelta(t, 20.0/1100.0, ctr.Value, 1e-12)
	})

	t.Run("Denominador zero deve marcar a métrica como não computável", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 0, 0, 0, 3.50),
		}

		out := svc.AggregateRange(recs, domain.PartitionOverall)
		require.Len(t, out, 1)

		assert.False(t, out[0].Metrics.CTR.Computable)
		assert.False(t, out[0].Metrics.CPM.Computable)
		assert.False(t, out[0].Metrics.CPC.Computable)
		assert.False(t, out[0].Metrics.CPA.Computable)
		assert.Zero(t, out[0].Metrics.CTR.Value)
	})

	t.Run("Partição por plataforma deve separar totais e calcular spend share", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 1000, 20, 2, 30),
			record("2025-06-02", "tiktok", "tiktok_creative_1", 2000, 60, 3, 70),
		}

		out := svc.AggregateRange(recs, domain.PartitionPlatform)
		require.Len(t, out, 2)

		// Ordenado pela chave da partição.
		assert.Equal(t, "meta", out[0].Partition)
		assert.Equal(t, "tiktok", out[1].Partition)
		assert.InDelta(t, 0.30, out[0].SpendShare, 1e-12)
		assert.InDelta(t, 0.70, out[1].SpendShare, 1e-12)
		assert.Equal(t, int64(1000), out[0].Totals.Impressions)
		assert.Equal(t, int64(2000), out[1].Totals.Impressions)
	})

	t.Run("ROAS deve usar a receita derivada das conversões", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 1000, 20, 2, 40),
		}

		out := svc.AggregateRange(recs, domain.PartitionOverall)
		require.Len(t, out, 1)

		roas := out[0].Metrics.ROAS
		require.True(t, roas.Computable)
		// 2 conversões × R$80 / R$40 de spend
		assert.InDelta(t, 4.0, roas.Value, 1e-12)
	})

	t.Run("Dataset vazio deve devolver lista vazia", func(t *testing.T) {
		out := svc.AggregateRange(nil, domain.PartitionOverall)
		assert.Empty(t, out)
	})
}

func TestAggregateWeekly(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg)

	t.Run("Baldes de 7 dias devem ser ancorados no início da campanha", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 100, 2, 0, 1), // dia 0 → semana 1
			record("2025-06-08", "meta", "meta_creative_1", 100, 2, 0, 1), // dia 6 → semana 1
			record("2025-06-09", "meta", "meta_creative_1", 100, 2, 0, 1), // dia 7 → semana 2
		}

		out := svc.AggregateWeekly(recs, domain.PartitionOverall)
		require.Len(t, out, 2)

		assert.Equal(t, 1, out[0].Week)
		assert.Equal(t, int64(200), out[0].Totals.Impressions)
		assert.Equal(t, 2, out[0].Days)
		assert.Equal(t, "2025-06-02", out[0].StartDate.Format(time.DateOnly))
		assert.Equal(t, "2025-06-08", out[0].EndDate.Format(time.DateOnly))

		assert.Equal(t, 2, out[1].Week)
		assert.Equal(t, int64(100), out[1].Totals.Impressions)
		assert.Equal(t, "2025-06-09", out[1].StartDate.Format(time.DateOnly))
	})

	t.Run("Resultado deve sair ordenado por partição e semana", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-09", "tiktok", "tiktok_creative_1", 100, 2, 0, 1),
			record("2025-06-02", "tiktok", "tiktok_creative_1", 100, 2, 0, 1),
			record("2025-06-02", "meta", "meta_creative_1", 100, 2, 0, 1),
		}

		out := svc.AggregateWeekly(recs, domain.PartitionPlatform)
		require.Len(t, out, 3)
		assert.Equal(t, "meta", out[0].Partition)
		assert.Equal(t, 1, out[0].Week)
		assert.Equal(t, "tiktok", out[1].Partition)
		assert.Equal(t, 1, out[1].Week)
		assert.Equal(t, "tiktok", out[2].Partition)
		assert.Equal(t, 2, out[2].Week)
	})
}

func TestAggregateDaily(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg)

	recs := []domain.ActivityRecord{
		record("2025-06-03", "meta", "meta_creative_1", 100, 2, 0, 1),
		record("2025-06-02", "meta", "meta_creative_1", 100, 2, 0, 1),
		record("2025-06-02", "meta", "meta_creative_2", 50, 1, 0, 1),
	}

	out := svc.AggregateDaily(recs, domain.PartitionOverall)
	require.Len(t, out, 2)
	assert.Equal(t, "2025-06-02", out[0].Date.Format(time.DateOnly))
	assert.Equal(t, int64(150), out[0].Totals.Impressions)
	assert.Equal(t, "2025-06-03", out[1].Date.Format(time.DateOnly))
}

func TestDayOfWeekPatterns(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg)

	t.Run("Lift de fim de semana deve comparar razões de somas", func(t *testing.T) {
		// 2025-06-02/03 são segunda e terça; 2025-06-07/08, sábado e domingo.
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 1000, 10, 0, 5),
			record("2025-06-03", "meta", "meta_creative_1", 1000, 10, 0, 5),
			record("2025-06-07", "meta", "meta_creative_1", 1000, 20, 0, 5),
			record("2025-06-08", "meta", "meta_creative_1", 1000, 20, 0, 5),
		}

		out := svc.DayOfWeekPatterns(recs)

		assert.Equal(t, 2, out.Weekday.Days)
		assert.Equal(t, int64(2000), out.Weekday.Totals.Impressions)
		assert.Equal(t, 2, out.Weekend.Days)
		assert.InDelta(t, 0.02, out.Weekend.Metrics.CTR.Value, 1e-12)

		require.Len(t, out.Platforms, 1)
		p := out.Platforms[0]
		assert.Equal(t, "meta", p.PlatformID)
		assert.InDelta(t, 0.01, p.WeekdayCTR.Value, 1e-12)
		assert.InDelta(t, 0.02, p.WeekendCTR.Value, 1e-12)
		require.True(t, p.WeekendCTRLift.Computable)
		assert.InDelta(t, 100.0, p.WeekendCTRLift.Value, 1e-9)
	})

	t.Run("Plataforma sem registros de fim de semana não tem lift computável", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 1000, 10, 0, 5),
		}

		out := svc.DayOfWeekPatterns(recs)

		require.Len(t, out.Platforms, 1)
		assert.False(t, out.Platforms[0].WeekendCTR.Computable)
		assert.False(t, out.Platforms[0].WeekendCTRLift.Computable)
	})

	t.Run("CTR zero em dias úteis não tem lift computável", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 1000, 0, 0, 5),
			record("2025-06-07", "meta", "meta_creative_1", 1000, 20, 0, 5),
		}

		out := svc.DayOfWeekPatterns(recs)

		require.Len(t, out.Platforms, 1)
		require.True(t, out.Platforms[0].WeekdayCTR.Computable)
		assert.Zero(t, out.Platforms[0].WeekdayCTR.Value)
		assert.False(t, out.Platforms[0].WeekendCTRLift.Computable)
	})

	t.Run("Plataformas devem sair ordenadas pelo identificador", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "tiktok", "tiktok_creative_1", 1000, 10, 0, 5),
			record("2025-06-02", "meta", "meta_creative_1", 1000, 10, 0, 5),
		}

		out := svc.DayOfWeekPatterns(recs)

		require.Len(t, out.Platforms, 2)
		assert.Equal(t, "meta", out.Platforms[0].PlatformID)
		assert.Equal(t, "tiktok", out.Platforms[1].PlatformID)
	})
}

func dailyAgg(date string, impressions, clicks int64) domain.DailyAggregate {
	d, _ := time.Parse(time.DateOnly, date)
	totals := domain.Totals{Impressions: impressions, Clicks: clicks}
	return domain.DailyAggregate{
		Kind:      domain.PartitionOverall,
		Partition: domain.OverallPartition,
		Date:      d,
		Totals:    totals,
		Metrics:   totals.DeriveMetrics(),
	}
}

func TestDetectAnomalies(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg)

	days := func(impressions []int64, clicks int64) []domain.DailyAggregate {
		out := make([]domain.DailyAggregate, 0, len(impressions))
		start, _ := time.Parse(time.DateOnly, "2025-06-02")
		for i, imp := range impressions {
			out = append(out, dailyAgg(start.AddDate(0, 0, i).Format(time.DateOnly), imp, clicks))
		}
		return out
	}

	t.Run("Pico além de dois desvios deve ser anomalia alta", func(t *testing.T) {
		// Média 110, desvio amostral √1000 ≈ 31.6; só 200 passa de 110+2σ.
		daily := days([]int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 200}, 10)

		out := svc.DetectAnomalies(daily)
		require.Len(t, out, 1)

		a := out[0]
		assert.Equal(t, domain.CounterImpressions, a.Metric)
		assert.Equal(t, domain.AnomalyHigh, a.Direction)
		assert.Equal(t, "2025-06-11", a.Date.Format(time.DateOnly))
		assert.Equal(t, int64(200), a.Value)
		assert.InDelta(t, 200.0/110.0, a.RatioToMean, 1e-9)
	})

	t.Run("Queda além de dois desvios deve ser anomalia baixa", func(t *testing.T) {
		// Média 92, desvio amostral √640 ≈ 25.3; 20 fica abaixo de 92-2σ.
		daily := days([]int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 20}, 10)

		out := svc.DetectAnomalies(daily)
		require.Len(t, out, 1)
		assert.Equal(t, domain.AnomalyLow, out[0].Direction)
		assert.InDelta(t, 20.0/92.0, out[0].RatioToMean, 1e-9)
	})

	t.Run("Dia atípico em dois contadores sai ordenado por métrica", func(t *testing.T) {
		daily := days([]int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 300}, 50)
		daily[9].Totals.Clicks = 150
		daily[9].Metrics = daily[9].Totals.DeriveMetrics()

		out := svc.DetectAnomalies(daily)
		require.Len(t, out, 2)
		assert.Equal(t, domain.CounterClicks, out[0].Metric)
		assert.Equal(t, domain.CounterImpressions, out[1].Metric)
		assert.Equal(t, out[0].Date, out[1].Date)
	})

	t.Run("Série constante não produz anomalias", func(t *testing.T) {
		daily := days([]int64{100, 100, 100, 100, 100}, 10)
		assert.Empty(t, svc.DetectAnomalies(daily))
	})

	t.Run("Menos de dois dias não produz anomalias", func(t *testing.T) {
		daily := days([]int64{100}, 10)
		assert.Empty(t, svc.DetectAnomalies(daily))
	})
}

func TestBenchmarkDeviations(t *testing.T) {
	cfg := testConfig(t)
	svc := NewService(cfg)

	t.Run("Desvio percentual deve manter o sinal", func(t *testing.T) {
		// CTR 3% contra meta 1.5% → +100%; CPM 10 contra meta 8 → +25%.
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 1000, 30, 1, 10),
		}
		aggs := svc.AggregateRange(recs, domain.PartitionPlatform)

		out := svc.BenchmarkDeviations(aggs)
		require.Len(t, out, 2)

		byMetric := map[string]domain.BenchmarkDeviation{}
		for _, d := range out {
			byMetric[d.Metric] = d
		}

		ctr := byMetric[domain.MetricCTR]
		assert.InDelta(t, 100.0, ctr.DeviationPct, 1e-9)
		assert.Equal(t, 0.015, ctr.Target)

		cpm := byMetric[domain.MetricCPM]
		assert.InDelta(t, 25.0, cpm.DeviationPct, 1e-9)
	})

	t.Run("Métrica não computável deve ser pulada sem erro", func(t *testing.T) {
		recs := []domain.ActivityRecord{
			record("2025-06-02", "meta", "meta_creative_1", 0, 0, 0, 5),
		}
		aggs := svc.AggregateRange(recs, domain.PartitionPlatform)

		out := svc.BenchmarkDeviations(aggs)
		assert.Empty(t, out)
	})
}
