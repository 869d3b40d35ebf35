package generating

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
			PlatformIDs:             []string{"google_display", "meta", "tiktok"},
			PlatformBudgetShares:    []string{"0.40", "0.35", "0.25"},
			PlatformBaseCPMs:        []string{"6.50", "9.00", "7.00"},
			PlatformBaseCTRs:        []string{"0.009", "0.016", "0.028"},
			PlatformConversionRates: []string{"0.030", "0.045", "0.035"},
			CreativesPerPlatform:    3,
			LearningPhaseDays:       7,
			LearningCTRFloor:        0.85,
			LearningCPMBoost:        1.30,
			FatiguePeakDay:          21,
			FatigueDecayRate:        0.04,
			FatigueCTRFloor:         0.35,
			DayOfWeekFactors:        []string{"1.12", "1.00", "0.97", "0.96", "0.99", "1.04", "1.15"},
			CreativeJitterPct:       0.25,
			NoisePct:                0.10,
			SpendNoisePct:           0.05,
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

func TestGenerate(t *testing.T) {
	t.Run("Deve gerar um registro por dia, plataforma e criativo", func(t *testing.T) {
		cfg := testConfig(t)
		records, err := NewService(cfg).Generate()
		require.NoError(t, err)

		// 30 dias × 3 plataformas × 3 criativos
		assert.Len(t, records, 270)
	})

	t.Run("Mesma seed deve produzir o mesmo dataset", func(t *testing.T) {
		cfg := testConfig(t)

		first, err := NewService(cfg).Generate()
		require.NoError(t, err)

		second, err := NewService(cfg).Generate()
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Seeds diferentes devem produzir datasets diferentes", func(t *testing.T) {
		cfg := testConfig(t)
		first, err := NewService(cfg).Generate()
		require.NoError(t, err)

		cfg2 := testConfig(t)
		cfg2.Campaign.Seed = 43
		second, err := NewService(cfg2).Generate()
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Todos os registros devem respeitar as invariantes de domínio", func(t *testing.T) {
		cfg := testConfig(t)
		records, err := NewService(cfg).Generate()
		require.NoError(t, err)

		start, end := cfg.CampaignWindow()
		for _, rec := range records {
			assert.GreaterOrEqual(t, rec.Impressions, int64(0), rec.Key())
			assert.LessOrEqual(t, rec.Clicks, rec.Impressions, rec.Key())
			assert.LessOrEqual(t, rec.Conversions, rec.Clicks, rec.Key())
			assert.GreaterOrEqual(t, rec.Spend, 0.0, rec.Key())
			assert.False(t, rec.Date.Before(start), rec.Key())
			assert.False(t, rec.Date.After(end), rec.Key())
		}
	})

	t.Run("CTR agregado da fase de aprendizado deve ser menor que o da fase estável", func(t *testing.T) {
		cfg := testConfig(t)
		records, err := NewService(cfg).Generate()
		require.NoError(t, err)

		start := cfg.Campaign.StartDate
		var learning, stable domain.Totals
		for _, rec := range records {
			day := int(rec.Date.Sub(start).Hours() / 24)
			switch {
			case day < 7:
				learning.Add(rec, cfg.Engine.RevenuePerConversion)
			case day >= 7 && day < 14:
				stable.Add(rec, cfg.Engine.RevenuePerConversion)
			}
		}

		learningCTR := learning.DeriveMetrics().CTR
		stableCTR := stable.DeriveMetrics().CTR
		require.True(t, learningCTR.Computable)
		require.True(t, stableCTR.Computable)
		assert.Less(t, learningCTR.Value, stableCTR.Value)
	})

	t.Run("CPM agregado da fase de aprendizado deve ser maior que o da fase estável", func(t *testing.T) {
		cfg := testConfig(t)
		records, err := NewService(cfg).Generate()
		require.NoError(t, err)

		start := cfg.Campaign.StartDate
		var learning, stable domain.Totals
		for _, rec := range records {
			day := int(rec.Date.Sub(start).Hours() / 24)
			switch {
			case day < 7:
				learning.Add(rec, cfg.Engine.RevenuePerConversion)
			case day >= 7 && day < 14:
				stable.Add(rec, cfg.Engine.RevenuePerConversion)
			}
		}

		assert.Greater(t, learning.DeriveMetrics().CPM.Value, stable.DeriveMetrics().CPM.Value)
	})

	t.Run("CTR dos últimos dias deve cair em relação ao pico por fadiga", func(t *testing.T) {
		cfg := testConfig(t)
		records, err := NewService(cfg).Generate()
		require.NoError(t, err)

		start := cfg.Campaign.StartDate
		var peak, tail domain.Totals
		for _, rec := range records {
			day := int(rec.Date.Sub(start).Hours() / 24)
			switch {
			case day >= 14 && day < 21:
				peak.Add(rec, cfg.Engine.RevenuePerConversion)
			case day >= 26:
				tail.Add(rec, cfg.Engine.RevenuePerConversion)
			}
		}

		assert.Less(t, tail.DeriveMetrics().CTR.Value, peak.DeriveMetrics().CTR.Value)
	})

	t.Run("Configuração inválida deve devolver ConfigurationError sem gerar nada", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Campaign.TotalBudget = -100

		records, err := NewService(cfg).Generate()
		require.Error(t, err)
		assert.True(t, domain.IsConfigurationError(err))
		assert.Nil(t, records)
	})

	t.Run("Registros devem sair ordenados por data, plataforma e criativo", func(t *testing.T) {
		cfg := testConfig(t)
		records, err := NewService(cfg).Generate()
		require.NoError(t, err)

		for i := 1; i < len(records); i++ {
			prev, curr := records[i-1], records[i]
			if prev.Date.Equal(curr.Date) {
				if prev.PlatformID == curr.PlatformID {
					assert.Less(t, prev.CreativeID, curr.CreativeID)
				} else {
					assert.Less(t, prev.PlatformID, curr.PlatformID)
				}
			} else {
				assert.True(t, prev.Date.Before(curr.Date))
			}
		}
	})
}
