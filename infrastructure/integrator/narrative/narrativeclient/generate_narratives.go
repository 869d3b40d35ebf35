package narrativeclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	narrativedomain "github.com/vfg2006/campaigniq-api/infrastructure/integrator/narrative/domain"
)

// GenerateNarratives envia os insights ranqueados ao serviço de narrativa e
// devolve um texto por insight.
func (c *NarrativeClient) GenerateNarratives(req *narrativedomain.GenerateRequest) (*narrativedomain.GenerateResponse, error) {
	url := fmt.Sprintf("%s/v1/narratives/generate", c.Cfg.Narrative.URL)

	payload, err := json.Marshal(req)
	if err != nil {
		logrus.WithError(err).Error("Erro ao serializar a requisição de narrativa")
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar a requisição")
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.Cfg.Narrative.AccessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logrus.WithError(err).Error("Erro ao fazer a requisição")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var svcErr narrativedomain.Error
		if err := json.Unmarshal(body, &svcErr); err == nil && svcErr.Message != "" {
			return nil, fmt.Errorf("serviço de narrativa respondeu %d: %s", resp.StatusCode, svcErr.Message)
		}
		return nil, fmt.Errorf("serviço de narrativa respondeu %d", resp.StatusCode)
	}

	var response narrativedomain.GenerateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON")
		return nil, err
	}

	return &response, nil
}
