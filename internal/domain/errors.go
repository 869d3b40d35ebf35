package domain

import (
	"errors"
	"fmt"
)

// ConfigurationError indica configuração de entrada inválida. Falha antes de
// qualquer dado ser gerado ou processado e nunca é retentada.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuração inválida: %s", e.Msg)
	}
	return fmt.Sprintf("configuração inválida (%s): %s", e.Field, e.Msg)
}

// NewConfigurationError cria um ConfigurationError para o campo informado.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsConfigurationError informa se err é (ou embrulha) um ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ValidationError indica que a validação do dataset falhou de forma fatal.
// Carrega o relatório completo para o chamador.
type ValidationError struct {
	Report *ValidationReport
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validação do dataset falhou: %d erro(s) em %d registro(s)",
		len(e.Report.Errors), e.Report.TotalRecords)
}

// IsValidationError informa se err é (ou embrulha) um ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DataSparsityError indica que uma partição não tem amostra suficiente para
// um cálculo de tendência ou fadiga. Não é fatal: o cálculo específico é
// pulado e o restante do pipeline continua.
type DataSparsityError struct {
	Partition string
	Metric    string
	Reason    string
}

func (e *DataSparsityError) Error() string {
	return fmt.Sprintf("amostra insuficiente em %s/%s: %s", e.Partition, e.Metric, e.Reason)
}

// ExternalServiceError embrulha falhas dos colaboradores externos (geração de
// texto, apresentação). O engine as propaga sem modificar a causa e nunca as
// retenta.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("serviço externo %s falhou: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// IsExternalServiceError informa se err é (ou embrulha) um ExternalServiceError.
func IsExternalServiceError(err error) bool {
	var ee *ExternalServiceError
	return errors.As(err, &ee)
}
