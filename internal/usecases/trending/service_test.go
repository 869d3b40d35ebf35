package trending

import (
	"testing"

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

func weekAgg(partition string, week int, impressions, clicks int64, spend float64) domain.WeeklyAggregate {
	totals := domain.Totals{Impressions: impressions, Clicks: clicks, Spend: spend}
	return domain.WeeklyAggregate{
		Kind:      domain.PartitionPlatform,
		Partition: partition,
		Week:      week,
		Totals:    totals,
		Metrics:   totals.DeriveMetrics(),
	}
}

func TestDetect(t *testing.T) {
	t.Run("Variação percentual e direção devem refletir o par de semanas", func(t *testing.T) {
		svc := NewService(testConfig(t))
		weekly := []domain.WeeklyAggregate{
			weekAgg("meta", 1, 2000, 40, 16), // CTR 0.020, CPM 8.00
			weekAgg("meta", 2, 2000, 20, 16), // CTR 0.010, CPM 8.00
		}

		trends, skipped := svc.Detect(weekly)

		// CPC pulado: 40 cliques na semana anterior, piso de 100.
		require.Len(t, skipped, 1)
		assert.Equal(t, domain.MetricCPC, skipped[0].Metric)

		require.Len(t, trends, 2)
		ctr := trends[0]
		assert.Equal(t, domain.MetricCTR, ctr.Metric)
		assert.Equal(t, 1, ctr.FromWeek)
		assert.Equal(t, 2, ctr.ToWeek)
		assert.InDelta(t, -50.0, ctr.PctChange, 1e-9)
		assert.Equal(t, domain.TrendDown, ctr.Direction)

		cpm := trends[1]
		assert.Equal(t, domain.MetricCPM, cpm.Metric)
		assert.InDelta(t, 0.0, cpm.PctChange, 1e-9)
		assert.Equal(t, domain.TrendFlat, cpm.Direction)
	})

	t.Run("Amostra do período anterior abaixo do piso deve pular o cálculo", func(t *testing.T) {
		svc := NewService(testConfig(t))
		weekly := []domain.WeeklyAggregate{
			weekAgg("meta", 1, 500, 10, 4),
			weekAgg("meta", 2, 5000, 100, 40),
		}

		trends, skipped := svc.Detect(weekly)

		assert.Empty(t, trends)
		// CTR, CPM e CPC pulados para o mesmo par.
		require.Len(t, skipped, 3)
		for _, err := range skipped {
			assert.Equal(t, "meta", err.Partition)
			assert.NotEmpty(t, err.Reason)
		}
	})

	t.Run("Semanas não consecutivas não formam par de tendência", func(t *testing.T) {
		svc := NewService(testConfig(t))
		weekly := []domain.WeeklyAggregate{
			weekAgg("meta", 1, 5000, 200, 40),
			weekAgg("meta", 3, 5000, 100, 40),
		}

		trends, skipped := svc.Detect(weekly)

		assert.Empty(t, trends)
		assert.Empty(t, skipped)
	})

	t.Run("Saída deve ser ordenada da maior para a menor tendência", func(t *testing.T) {
		svc := NewService(testConfig(t))
		weekly := []domain.WeeklyAggregate{
			weekAgg("alpha", 1, 2000, 40, 16), // CTR 0.020
			weekAgg("alpha", 2, 2000, 20, 16), // -50%
			weekAgg("beta", 1, 2000, 50, 16),  // CTR 0.025
			weekAgg("beta", 2, 2000, 40, 16),  // -20%
		}

		trends, _ := svc.Detect(weekly)

		require.GreaterOrEqual(t, len(trends), 2)
		assert.Equal(t, "alpha", trends[0].Partition)
		assert.Equal(t, domain.MetricCTR, trends[0].Metric)
		assert.Equal(t, "beta", trends[1].Partition)
		assert.Equal(t, domain.MetricCTR, trends[1].Metric)

		for i := 1; i < len(trends); i++ {
			assert.False(t, trends[i].Less(trends[i-1]), "ordenação violada na posição %d", i)
		}
	})

	t.Run("Par sem valor base não gera tendência", func(t *testing.T) {
		svc := NewService(testConfig(t))
		weekly := []domain.WeeklyAggregate{
			// CTR da semana anterior é zero: não há base para variação percentual.
			weekAgg("meta", 1, 2000, 0, 16),
			weekAgg("meta", 2, 2000, 40, 16),
		}

		trends, _ := svc.Detect(weekly)

		for _, tr := range trends {
			assert.NotEqual(t, domain.MetricCTR, tr.Metric)
		}
	})
}
