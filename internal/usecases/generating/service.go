// Package generating produz o dataset sintético de atividade da campanha com
// padrões temporais realistas: fase de aprendizado, efeito de dia da semana,
// fadiga pós-pico e variância por criativo.
package generating

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
	"github.com/vfg2006/campaigniq-api/pkg/utils"
)

// Synthesizer gera um dataset sintético reproduzível a partir da configuração.
type Synthesizer interface {
	Generate() ([]domain.ActivityRecord, error)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// Generate produz um ActivityRecord por (dia, plataforma, criativo).
// Configuração + seed idênticos produzem exatamente a mesma sequência: cada
// criativo usa um gerador próprio derivado do seed, então a ordem de geração
// (inclusive paralela, por criativo) não altera os sorteios.
func (s *Service) Generate() ([]domain.ActivityRecord, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	cfg := s.cfg
	duration := cfg.Campaign.DurationDays

	records := make([]domain.ActivityRecord, 0, duration*len(cfg.Platforms)*cfg.Synthesizer.CreativesPerPlatform)

	for _, platform := range cfg.Platforms {
		for c := 1; c <= platform.Creatives; c++ {
			creativeID := fmt.Sprintf("%s_creative_%d", platform.ID, c)
			rng := rand.New(rand.NewSource(subSeed(cfg.Campaign.Seed, platform.ID, creativeID)))

			// Variância do criativo: sorteada uma única vez por criativo,
			// limitada ao intervalo configurado.
			jitter := 1 + symmetric(rng, cfg.Synthesizer.CreativeJitterPct)

			for day := 0; day < duration; day++ {
				records = append(records, s.generateDaily(platform, creativeID, day, jitter, rng))
			}
		}
	}

	// Ordena por (data, plataforma, criativo) para a sequência emitida ser
	// estável independente da ordem de montagem.
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		if records[i].PlatformID != records[j].PlatformID {
			return records[i].PlatformID < records[j].PlatformID
		}
		return records[i].CreativeID < records[j].CreativeID
	})

	logrus.WithFields(logrus.Fields{
		"records":   len(records),
		"platforms": len(cfg.Platforms),
		"days":      duration,
		"seed":      cfg.Campaign.Seed,
	}).Info("Dataset sintético gerado")

	return records, nil
}

func (s *Service) generateDaily(platform config.Platform, creativeID string, day int, jitter float64, rng *rand.Rand) domain.ActivityRecord {
	cfg := s.cfg
	syn := cfg.Synthesizer
	date := cfg.Campaign.StartDate.AddDate(0, 0, day)

	// Orçamento diário planejado da fatia (plataforma, criativo).
	plannedSpend := cfg.Campaign.TotalBudget * platform.BudgetShare /
		float64(cfg.Campaign.DurationDays) / float64(platform.Creatives)
	spend := plannedSpend * (1 + symmetric(rng, syn.SpendNoisePct))

	cpm := platform.BaseCPM * s.learningCPMMultiplier(day) * (1 + symmetric(rng, syn.NoisePct))

	ctr := platform.BaseCTR *
		s.learningCTRMultiplier(day) *
		s.fatigueMultiplier(day) *
		syn.DOWFactors()[int(date.Weekday())] *
		jitter *
		(1 + symmetric(rng, syn.NoisePct))
	if ctr > syn.MaxCTR {
		ctr = syn.MaxCTR
	}
	if ctr < 0 {
		ctr = 0
	}

	impressions := int64(spend / cpm * 1000)
	clicks := int64(math.Round(float64(impressions) * ctr))
	if clicks > impressions {
		clicks = impressions
	}

	convRate := platform.ConversionRate * (1 + symmetric(rng, syn.NoisePct))
	conversions := int64(math.Round(float64(clicks) * convRate))
	if conversions > clicks {
		conversions = clicks
	}

	return domain.ActivityRecord{
		Date:        date,
		PlatformID:  platform.ID,
		CreativeID:  creativeID,
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       utils.RoundWithTwoDecimalPlace(spend),
		Conversions: conversions,
	}
}

// learningCTRMultiplier modela a fase de aprendizado: sobe monotonicamente do
// piso configurado até 1.0 ao longo dos primeiros dias.
func (s *Service) learningCTRMultiplier(day int) float64 {
	syn := s.cfg.Synthesizer
	if day >= syn.LearningPhaseDays {
		return 1.0
	}
	return syn.LearningCTRFloor + (1-syn.LearningCTRFloor)*float64(day)/float64(syn.LearningPhaseDays)
}

// learningCPMMultiplier: CPM mais caro no começo enquanto o algoritmo da
// plataforma otimiza a entrega, caindo até 1.0.
func (s *Service) learningCPMMultiplier(day int) float64 {
	syn := s.cfg.Synthesizer
	if day >= syn.LearningPhaseDays {
		return 1.0
	}
	return syn.LearningCPMBoost - (syn.LearningCPMBoost-1)*float64(day)/float64(syn.LearningPhaseDays)
}

// fatigueMultiplier decai exponencialmente após o dia de pico, limitado pelo
// piso para o CTR nunca chegar a zero.
func (s *Service) fatigueMultiplier(day int) float64 {
	syn := s.cfg.Synthesizer
	if day <= syn.FatiguePeakDay {
		return 1.0
	}
	m := math.Exp(-syn.FatigueDecayRate * float64(day-syn.FatiguePeakDay))
	if m < syn.FatigueCTRFloor {
		return syn.FatigueCTRFloor
	}
	return m
}

// symmetric sorteia um desvio uniforme em [-pct, +pct).
func symmetric(rng *rand.Rand, pct float64) float64 {
	return (rng.Float64()*2 - 1) * pct
}

// subSeed deriva o seed do gerador de um criativo a partir do seed do
// processo, de forma estável entre execuções.
func subSeed(seed int64, platformID, creativeID string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%s|%s", seed, platformID, creativeID)
	return int64(h.Sum64())
}
