package narrativeclient

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

import (
	"net/http"
	"time"

	narrativedomain "github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative/domain"
	"github.com/vfg2006/campaigniq-api/internal/config"
)

type Client interface {
	GenerateNarratives(req *narrativedomain.GenerateRequest) (*narrativedomain.GenerateResponse, error)
}

type NarrativeClient struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &NarrativeClient{
		Cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}
