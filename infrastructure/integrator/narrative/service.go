// Package narrative integra o engine ao serviço externo de geração de
// narrativa, que transforma insights ranqueados em texto para o relatório.
package narrative

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

import (
	"time"

	"github.com/sirupsen/logrus"
	narrativedomain "github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative/domain"
	"github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative/narrativeclient"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

// Generator produz uma narrativa por insight. Falhas do serviço externo são
// devolvidas como domain.ExternalServiceError, sem tradução nem retry — a
// decisão de degradar fica com o chamador.
type Generator interface {
	Generate(campaign domain.CampaignInfo, insights []domain.Insight) ([]domain.Narrative, error)
}

type NarrativeIntegrator struct {
	cfg    *config.Config
	Client narrativeclient.Client
}

func New(cfg *config.Config, client narrativeclient.Client) *NarrativeIntegrator {
	return &NarrativeIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

func (s *NarrativeIntegrator) Generate(campaign domain.CampaignInfo, insights []domain.Insight) ([]domain.Narrative, error) {
	if len(insights) == 0 {
		return nil, nil
	}

	req := &narrativedomain.GenerateRequest{
		CampaignName: s.cfg.App.Name,
		StartDate:    campaign.StartDate.Format(time.DateOnly),
		EndDate:      campaign.StartDate.AddDate(0, 0, campaign.DurationDays-1).Format(time.DateOnly),
		Insights:     make([]narrativedomain.InsightSummary, 0, len(insights)),
	}
	for _, ins := range insights {
		req.Insights = append(req.Insights, narrativedomain.InsightSummary{
			ID:                ins.ID,
			Category:          ins.Category,
			Severity:          ins.Severity,
			RecommendedAction: ins.RecommendedAction,
			PriorityScore:     ins.PriorityScore,
		})
	}

	resp, err := s.Client.GenerateNarratives(req)
	if err != nil {
		logrus.WithError(err).Error("narrative: failed to generate narratives from API")
		return nil, &domain.ExternalServiceError{Service: "narrative", Err: err}
	}

	narratives := make([]domain.Narrative, 0, len(resp.Narratives))
	for _, item := range resp.Narratives {
		narratives = append(narratives, domain.Narrative{
			InsightID: item.InsightID,
			Headline:  item.Headline,
			Text:      item.Text,
		})
	}

	logrus.WithField("narratives", len(narratives)).Debug("narrative: successfully generated narratives")

	return narratives, nil
}
