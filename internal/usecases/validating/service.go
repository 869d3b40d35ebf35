// Package validating verifica as invariantes de schema e de valores de um
// dataset de atividade (sintético ou fornecido externamente) antes de
// qualquer agregação.
package validating

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

// Validator valida um dataset e devolve o subconjunto aceito junto do
// relatório de erros e avisos.
type Validator interface {
	Validate(records []domain.ActivityRecord) ([]domain.ActivityRecord, *domain.ValidationReport)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// Validate aplica as invariantes duras (registro excluído e registrado como
// erro) e as verificações brandas (aviso, registro mantido). A decisão de
// abortar o pipeline fica com o chamador, via ValidationReport.IsFatal.
func (s *Service) Validate(records []domain.ActivityRecord) ([]domain.ActivityRecord, *domain.ValidationReport) {
	report := &domain.ValidationReport{TotalRecords: len(records)}
	accepted := make([]domain.ActivityRecord, 0, len(records))

	windowStart, windowEnd := s.cfg.CampaignWindow()
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		if issue, ok := checkRecord(rec, windowStart, windowEnd); !ok {
			report.Errors = append(report.Errors, issue)
			continue
		}

		key := rec.Key()
		if seen[key] {
			report.Errors = append(report.Errors, domain.ValidationIssue{
				RecordKey: key,
				Rule:      domain.RuleDuplicateKey,
				Message:   "chave (data, plataforma, criativo) duplicada",
			})
			continue
		}
		seen[key] = true

		accepted = append(accepted, rec)
	}

	report.Warnings = append(report.Warnings, missingDayWarnings(accepted)...)
	report.AcceptedRecords = len(accepted)

	logger := logrus.WithFields(logrus.Fields{
		"total":    report.TotalRecords,
		"accepted": report.AcceptedRecords,
		"errors":   len(report.Errors),
		"warnings": len(report.Warnings),
	})
	if len(report.Errors) > 0 {
		logger.Warn("Validação do dataset concluída com erros")
	} else {
		logger.Info("Validação do dataset concluída")
	}

	return accepted, report
}

func checkRecord(rec domain.ActivityRecord, windowStart, windowEnd time.Time) (domain.ValidationIssue, bool) {
	key := rec.Key()

	if rec.Date.IsZero() || rec.PlatformID == "" || rec.CreativeID == "" {
		return domain.ValidationIssue{
			RecordKey: key,
			Rule:      domain.RuleMissingRequiredField,
			Message:   "data, plataforma e criativo são obrigatórios",
		}, false
	}
	if rec.Impressions < 0 || rec.Clicks < 0 || rec.Conversions < 0 {
		return domain.ValidationIssue{
			RecordKey: key,
			Rule:      domain.RuleNegativeCounter,
			Message:   "contadores não podem ser negativos",
		}, false
	}
	if rec.Clicks > rec.Impressions {
		return domain.ValidationIssue{
			RecordKey: key,
			Rule:      domain.RuleClicksExceedImpressions,
			Message:   fmt.Sprintf("clicks (%d) excedem impressions (%d)", rec.Clicks, rec.Impressions),
		}, false
	}
	if rec.Conversions > rec.Clicks {
		return domain.ValidationIssue{
			RecordKey: key,
			Rule:      domain.RuleConversionsExceedClicks,
			Message:   fmt.Sprintf("conversions (%d) excedem clicks (%d)", rec.Conversions, rec.Clicks),
		}, false
	}
	if rec.Spend < 0 {
		return domain.ValidationIssue{
			RecordKey: key,
			Rule:      domain.RuleNegativeSpend,
			Message:   fmt.Sprintf("spend negativo (%.2f)", rec.Spend),
		}, false
	}
	if rec.Date.Before(windowStart) || rec.Date.After(windowEnd) {
		return domain.ValidationIssue{
			RecordKey: key,
			Rule:      domain.RuleDateOutsideWindow,
			Message: fmt.Sprintf("data fora da janela da campanha (%s a %s)",
				windowStart.Format(time.DateOnly), windowEnd.Format(time.DateOnly)),
		}, false
	}

	return domain.ValidationIssue{}, true
}

// missingDayWarnings emite um aviso (não erro) para cada dia sem registro de
// um criativo ativo, dentro do intervalo em que o criativo aparece.
func missingDayWarnings(records []domain.ActivityRecord) []domain.ValidationIssue {
	type window struct {
		first, last time.Time
		days        map[string]bool
		platform    string
	}

	byCreative := make(map[string]*window)
	for _, rec := range records {
		w, ok := byCreative[rec.CreativeID]
		if !ok {
			w = &window{first: rec.Date, last: rec.Date, days: make(map[string]bool), platform: rec.PlatformID}
			byCreative[rec.CreativeID] = w
		}
		if rec.Date.Before(w.first) {
			w.first = rec.Date
		}
		if rec.Date.After(w.last) {
			w.last = rec.Date
		}
		w.days[rec.Date.Format(time.DateOnly)] = true
	}

	creatives := make([]string, 0, len(byCreative))
	for id := range byCreative {
		creatives = append(creatives, id)
	}
	sort.Strings(creatives)

	var warnings []domain.ValidationIssue
	for _, id := range creatives {
		w := byCreative[id]
		for d := w.first; !d.After(w.last); d = d.AddDate(0, 0, 1) {
			day := d.Format(time.DateOnly)
			if !w.days[day] {
				warnings = append(warnings, domain.ValidationIssue{
					RecordKey: fmt.Sprintf("%s|%s|%s", day, w.platform, id),
					Rule:      domain.RuleMissingDayForActiveCreative,
					Message:   "dia sem registro para criativo ativo",
				})
			}
		}
	}

	return warnings
}
