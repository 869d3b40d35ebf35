// Package fatigue detecta episódios de fadiga de anúncio: quedas sustentadas
// de CTR de um criativo em relação ao pico corrente da série.
package fatigue

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

// Detector varre séries de CTR por criativo em busca de episódios de queda.
type Detector interface {
	DetectAll(weekly []domain.WeeklyAggregate, platformByCreative map[string]string) ([]domain.FatigueSignal, []*domain.DataSparsityError)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// state é o estado corrente da máquina por criativo.
type state int

const (
	// tracking: atualizando o pico corrente.
	tracking state = iota
	// declineCandidate: CTR abaixo do pico, contando períodos consecutivos.
	declineCandidate
	// fatigueConfirmed: episódio emitido; aguardando novo pico para rearmar.
	fatigueConfirmed
)

// DetectAll processa a série semanal de CTR de cada criativo em ordem
// estrita. Criativos são independentes entre si; a saída é ordenada por
// criativo e semana de confirmação para ser determinística. Varrer a mesma
// série repetidas vezes produz exatamente os mesmos sinais.
func (s *Service) DetectAll(weekly []domain.WeeklyAggregate, platformByCreative map[string]string) ([]domain.FatigueSignal, []*domain.DataSparsityError) {
	series := make(map[string][]domain.WeeklyAggregate)
	var creatives []string
	for _, w := range weekly {
		if w.Kind != domain.PartitionCreative {
			continue
		}
		if _, ok := series[w.Partition]; !ok {
			creatives = append(creatives, w.Partition)
		}
		series[w.Partition] = append(series[w.Partition], w)
	}
	sort.Strings(creatives)

	var signals []domain.FatigueSignal
	var skipped []*domain.DataSparsityError

	for _, creative := range creatives {
		weeks := series[creative]
		sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })

		if len(weeks) < s.cfg.Engine.FatigueMinRunLength+1 {
			err := &domain.DataSparsityError{
				Partition: creative,
				Metric:    domain.MetricCTR,
				Reason:    "série semanal mais curta que o comprimento mínimo de queda",
			}
			skipped = append(skipped, err)
			logrus.WithField("creative", creative).Debug("Detecção de fadiga pulada: série curta demais")
			continue
		}

		signals = append(signals, s.scan(creative, platformByCreative[creative], weeks)...)
	}

	if len(signals) > 0 {
		logrus.WithField("signals", len(signals)).Info("Episódios de fadiga confirmados")
	}

	return signals, skipped
}

// scan roda a máquina de estados sobre uma série já ordenada. Um platô (CTR
// igual ao período anterior) não zera a contagem de queda, mas também não a
// avança: só uma queda estrita avança. Qualquer período acima do pico
// anterior rearma a máquina para um novo episódio.
func (s *Service) scan(creative, platform string, weeks []domain.WeeklyAggregate) []domain.FatigueSignal {
	minRun := s.cfg.Engine.FatigueMinRunLength
	threshold := s.cfg.Engine.FatigueDeclineThresholdPct

	var signals []domain.FatigueSignal

	st := tracking
	var peak float64
	var peakWeek int
	var onsetWeek int
	var runLength int
	var prev float64
	started := false

	for _, w := range weeks {
		ctr := w.Metrics.CTR
		if !ctr.Computable {
			continue
		}
		value := ctr.Value

		if !started {
			started = true
			peak, peakWeek, prev = value, w.Week, value
			continue
		}

		switch {
		case value > peak:
			// Novo pico: episódio corrente (se houver) é descartado e a
			// máquina volta a rastrear.
			st = tracking
			peak, peakWeek = value, w.Week
			runLength = 0

		case st == fatigueConfirmed:
			// Episódio já emitido; só um novo pico rearma.

		case value < prev:
			if st == tracking {
				st = declineCandidate
				onsetWeek = w.Week
				runLength = 1
			} else {
				runLength++
			}

			declinePct := (peak - value) / peak
			if runLength >= minRun && declinePct >= threshold {
				signals = append(signals, domain.FatigueSignal{
					CreativeID:  creative,
					PlatformID:  platform,
					OnsetWeek:   onsetWeek,
					ConfirmWeek: w.Week,
					PeakWeek:    peakWeek,
					PeakCTR:     peak,
					CurrentCTR:  value,
					DeclinePct:  declinePct,
					RunLength:   runLength,
					Confidence:  confidence(runLength, minRun, declinePct),
				})
				st = fatigueConfirmed
			}

		default:
			// Platô ou leve recuperação abaixo do pico: mantém a contagem.
		}

		prev = value
	}

	return signals
}

// confidence cresce com o comprimento da queda e com a severidade,
// limitada a 0.95. Determinística por construção.
func confidence(runLength, minRun int, declinePct float64) float64 {
	c := 0.5 + 0.15*float64(runLength-minRun) + declinePct
	return math.Min(c, 0.95)
}
