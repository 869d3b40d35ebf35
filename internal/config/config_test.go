package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

func validConfig() *Config {
	return &Config{
		Campaign: Campaign{
			StartDateRaw: "2025-06-02",
			DurationDays: 30,
			TotalBudget:  15000,
			Seed:         42,
		},
		Synthesizer: Synthesizer{
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
		Engine: Engine{
			BenchmarkTargetCTR:         0.015,
			BenchmarkTargetCPM:         8.0,
			TopKInsights:               5,
			FatigueMinRunLength:        2,
			FatigueDeclineThresholdPct: 0.15,
			TrendMinSampleSize:         1000,
			RevenuePerConversion:       80,
		},
		Validation: Validation{
			Lenient:             false,
			ErrorTolerance:      0.05,
			AllocationTolerance: 0.001,
		},
	}
}

func TestFinalize(t *testing.T) {
	t.Run("Configuração válida deve passar e montar as plataformas", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Finalize())

		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), cfg.Campaign.StartDate)
		require.Len(t, cfg.Platforms, 3)
		assert.Equal(t, "google_display", cfg.Platforms[0].ID)
		assert.Equal(t, 0.40, cfg.Platforms[0].BudgetShare)
		assert.Equal(t, 9.00, cfg.Platforms[1].BaseCPM)
		assert.Equal(t, 3, cfg.Platforms[2].Creatives)
		assert.Equal(t, 1.12, cfg.Synthesizer.DOWFactors()[0])
	})

	tests := []struct {
		name   string
		mutate func(cfg *Config)
		field  string
	}{
		{
			name:   "Data de início inválida deve falhar",
			mutate: func(cfg *Config) { cfg.Campaign.StartDateRaw = "02/06/2025" },
			field:  "campaign_start_date",
		},
		{
			name:   "Duração não positiva deve falhar",
			mutate: func(cfg *Config) { cfg.Campaign.DurationDays = 0 },
			field:  "campaign_duration_days",
		},
		{
			name:   "Orçamento não positivo deve falhar",
			mutate: func(cfg *Config) { cfg.Campaign.TotalBudget = -1 },
			field:  "campaign_total_budget",
		},
		{
			name:   "Listas de plataforma com tamanhos diferentes devem falhar",
			mutate: func(cfg *Config) { cfg.Synthesizer.PlatformBaseCPMs = []string{"6.50"} },
			field:  "platform_*",
		},
		{
			name: "Alocações que não somam 1.0 devem falhar",
			mutate: func(cfg *Config) {
				cfg.Synthesizer.PlatformBudgetShares = []string{"0.40", "0.35", "0.35"}
			},
			field: "platform_budget_shares",
		},
		{
			name:   "Alocação negativa deve falhar",
			mutate: func(cfg *Config) { cfg.Synthesizer.PlatformBudgetShares = []string{"-0.10", "0.60", "0.50"} },
			field:  "platform_budget_shares",
		},
		{
			name:   "Prior de CTR não positivo deve falhar",
			mutate: func(cfg *Config) { cfg.Synthesizer.PlatformBaseCTRs = []string{"0.009", "0", "0.028"} },
			field:  "platform_priors",
		},
		{
			name:   "Ruído igual ou maior que 1.0 deve falhar",
			mutate: func(cfg *Config) { cfg.Synthesizer.NoisePct = 1.0 },
			field:  "noise_pct",
		},
		{
			name:   "Variância de criativo negativa deve falhar",
			mutate: func(cfg *Config) { cfg.Synthesizer.CreativeJitterPct = -0.10 },
			field:  "creative_jitter_pct",
		},
		{
			name:   "Ruído de spend fora de [0,1) deve falhar",
			mutate: func(cfg *Config) { cfg.Synthesizer.SpendNoisePct = 1.5 },
			field:  "spend_noise_pct",
		},
		{
			name:   "Tabela de dia da semana sem 7 valores deve falhar",
			mutate: func(cfg *Config) { cfg.Synthesizer.DayOfWeekFactors = []string{"1.0", "1.0"} },
			field:  "day_of_week_factors",
		},
		{
			name:   "Comprimento mínimo de queda menor que 2 deve falhar",
			mutate: func(cfg *Config) { cfg.Engine.FatigueMinRunLength = 1 },
			field:  "fatigue_min_run_length",
		},
		{
			name:   "Limiar de queda fora de (0,1) deve falhar",
			mutate: func(cfg *Config) { cfg.Engine.FatigueDeclineThresholdPct = 1.5 },
			field:  "fatigue_decline_threshold_pct",
		},
		{
			name:   "Piso de amostra não positivo deve falhar",
			mutate: func(cfg *Config) { cfg.Engine.TrendMinSampleSize = 0 },
			field:  "trend_min_sample_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Finalize()
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err))

			var ce *domain.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCampaignWindow(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Finalize())

	start, end := cfg.CampaignWindow()
	assert.Equal(t, "2025-06-02", start.Format(time.DateOnly))
	assert.Equal(t, "2025-07-01", end.Format(time.DateOnly))
}

func TestAllocationTolerance(t *testing.T) {
	t.Run("Desvio dentro da tolerância deve passar", func(t *testing.T) {
		cfg := validConfig()
		cfg.Synthesizer.PlatformBudgetShares = []string{"0.4004", "0.35", "0.25"}
		assert.NoError(t, cfg.Finalize())
	})

	t.Run("Desvio acima da tolerância deve falhar", func(t *testing.T) {
		cfg := validConfig()
		cfg.Synthesizer.PlatformBudgetShares = []string{"0.402", "0.35", "0.25"}
		assert.Error(t, cfg.Finalize())
	})
}
