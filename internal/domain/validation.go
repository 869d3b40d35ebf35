package domain

// ValidationIssue referencia um registro (pela chave data|plataforma|criativo)
// que violou uma invariante ou gerou um aviso.
type ValidationIssue struct {
	RecordKey string `json:"record_key"`
	Rule      string `json:"rule"`
	Message   string `json:"message"`
}

// Regras de validação reportadas nos issues.
const (
	RuleClicksExceedImpressions     = "clicks_exceed_impressions"
	RuleConversionsExceedClicks     = "conversions_exceed_clicks"
	RuleNegativeCounter             = "negative_counter"
	RuleNegativeSpend               = "negative_spend"
	RuleDateOutsideWindow           = "date_outside_window"
	RuleMissingRequiredField        = "missing_required_field"
	RuleDuplicateKey                = "duplicate_key"
	RuleMissingDayForActiveCreative = "missing_day_for_active_creative"
)

// ValidationReport resume o resultado da validação de um dataset. Registros
// que violam invariantes duras entram em Errors e ficam fora do conjunto
// aceito; inconsistências toleráveis entram em Warnings.
type ValidationReport struct {
	TotalRecords    int               `json:"total_records"`
	AcceptedRecords int               `json:"accepted_records"`
	Errors          []ValidationIssue `json:"errors"`
	Warnings        []ValidationIssue `json:"warnings"`
}

// ErrorRate retorna a fração de registros rejeitados.
func (r ValidationReport) ErrorRate() float64 {
	if r.TotalRecords == 0 {
		return 0
	}
	return float64(len(r.Errors)) / float64(r.TotalRecords)
}

// IsFatal decide se o pipeline deve ser interrompido: no modo padrão qualquer
// erro é fatal; no modo leniente apenas quando a taxa de erro excede a
// tolerância configurada.
func (r ValidationReport) IsFatal(lenient bool, tolerance float64) bool {
	if len(r.Errors) == 0 {
		return false
	}
	if !lenient {
		return true
	}
	return r.ErrorRate() > tolerance
}
