package apiErrors

import (
	"encoding/json"
	"net/http"
)

// Códigos de erro expostos pela API
const (
	// Erros de configuração (1000-1999)
	ErrInvalidConfiguration = "CFG_001" // Configuração da campanha inválida

	// Erros de validação (2000-2999)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrDatasetValidation   = "VAL_003" // Dataset reprovado na validação
	ErrReportNotFound      = "VAL_004" // Nenhum relatório disponível

	// Erros de processamento (3000-3999)
	ErrInsufficientData = "DATA_001" // Amostra insuficiente para o cálculo

	// Erros do servidor (5000-5999)
	ErrInternalServer  = "SRV_001" // Erro interno do servidor
	ErrExternalService = "SRV_002" // Erro em serviço externo
	ErrStorage         = "SRV_003" // Erro de leitura/gravação em disco
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidConfiguration: http.StatusBadRequest,
	ErrInvalidRequest:       http.StatusBadRequest,
	ErrMissingRequiredData:  http.StatusBadRequest,
	ErrDatasetValidation:    http.StatusUnprocessableEntity,
	ErrReportNotFound:       http.StatusNotFound,
	ErrInsufficientData:     http.StatusUnprocessableEntity,
	ErrInternalServer:       http.StatusInternalServerError,
	ErrExternalService:      http.StatusBadGateway,
	ErrStorage:              http.StatusInternalServerError,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	status, exists := httpStatusMap[code]
	if !exists {
		status = http.StatusInternalServerError
	}

	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErr)
}

// FromError cria um erro de API a partir de um erro Go
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
