package narrative

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	narrativedomain "github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative/domain"
	"github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative/narrativeclient/mocks"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.App{Name: "campaigniq"},
	}
}

func campaignInfo() domain.CampaignInfo {
	return domain.CampaignInfo{
		StartDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		DurationDays: 30,
		TotalBudget:  15000,
		Platforms:    []string{"meta"},
	}
}

func TestGenerate(t *testing.T) {
	insights := []domain.Insight{{
		ID:                "ins_0123456789ab",
		Category:          domain.CategoryAdFatigue,
		Severity:          domain.SeverityHigh,
		SignalKey:         "fatigue|meta_creative_1|2",
		RecommendedAction: "Renovar o criativo meta_creative_1",
		PriorityScore:     0.135,
	}}

	t.Run("Requisição deve espelhar a campanha e os insights ranqueados", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)

		var captured *narrativedomain.GenerateRequest
		client.EXPECT().
			GenerateNarratives(gomock.Any()).
			DoAndReturn(func(req *narrativedomain.GenerateRequest) (*narrativedomain.GenerateResponse, error) {
				captured = req
				return &narrativedomain.GenerateResponse{
					Narratives: []narrativedomain.NarrativeItem{{
						InsightID: "ins_0123456789ab",
						Headline:  "Criativo em fadiga",
						Text:      "O CTR do criativo caiu de forma sustentada após o pico.",
					}},
				}, nil
			})

		out, err := New(testConfig(), client).Generate(campaignInfo(), insights)
		require.NoError(t, err)

		require.NotNil(t, captured)
		assert.Equal(t, "campaigniq", captured.CampaignName)
		assert.Equal(t, "2025-06-02", captured.StartDate)
		assert.Equal(t, "2025-07-01", captured.EndDate)
		require.Len(t, captured.Insights, 1)
		assert.Equal(t, "ins_0123456789ab", captured.Insights[0].ID)
		assert.Equal(t, domain.CategoryAdFatigue, captured.Insights[0].Category)

		require.Len(t, out, 1)
		assert.Equal(t, "ins_0123456789ab", out[0].InsightID)
		assert.Equal(t, "Criativo em fadiga", out[0].Headline)
	})

	t.Run("Lista vazia de insights não chama o serviço externo", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)

		out, err := New(testConfig(), client).Generate(campaignInfo(), nil)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("Falha do cliente deve virar ExternalServiceError preservando a causa", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockClient(ctrl)

		cause := errors.New("timeout")
		client.EXPECT().
			GenerateNarratives(gomock.Any()).
			Return(nil, cause)

		out, err := New(testConfig(), client).Generate(campaignInfo(), insights)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.True(t, domain.IsExternalServiceError(err))
		assert.ErrorIs(t, err, cause)
	})
}
