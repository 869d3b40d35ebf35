// Package repository persiste datasets e relatórios em disco. O dataset usa
// CSV para ser legível e editável à mão; o relatório completo usa JSON.
package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaigniq-api/internal/config"
	"github.com/vfg2006/campaigniq-api/internal/domain"
)

var datasetHeader = []string{"date", "platform_id", "creative_id", "impressions", "clicks", "spend", "conversions"}

type DatasetRepository interface {
	SaveDataset(records []domain.ActivityRecord) (string, error)
	LoadDataset() ([]domain.ActivityRecord, error)
	DatasetPath() string
}

type datasetRepository struct {
	cfg *config.Config
}

func NewDatasetRepository(cfg *config.Config) DatasetRepository {
	return &datasetRepository{cfg: cfg}
}

func (r *datasetRepository) DatasetPath() string {
	return filepath.Join(r.cfg.Storage.DataDir, r.cfg.Storage.DatasetFile)
}

// SaveDataset grava os registros em CSV, na ordem recebida, e retorna o
// caminho do arquivo.
func (r *datasetRepository) SaveDataset(records []domain.ActivityRecord) (string, error) {
	if err := os.MkdirAll(r.cfg.Storage.DataDir, 0o755); err != nil {
		return "", err
	}

	path := r.DatasetPath()
	file, err := os.Create(path)
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar o arquivo de dataset")
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(datasetHeader); err != nil {
		return "", err
	}
	for _, rec := range records {
		row := []string{
			rec.Date.Format(time.DateOnly),
			rec.PlatformID,
			rec.CreativeID,
			strconv.FormatInt(rec.Impressions, 10),
			strconv.FormatInt(rec.Clicks, 10),
			strconv.FormatFloat(rec.Spend, 'f', 2, 64),
			strconv.FormatInt(rec.Conversions, 10),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
	}).Info("Dataset gravado")

	return path, nil
}

// LoadDataset lê o CSV de volta. Linhas malformadas viram erro imediato; a
// validação semântica dos valores fica com o estágio de validação.
func (r *datasetRepository) LoadDataset() ([]domain.ActivityRecord, error) {
	path := r.DatasetPath()
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		logrus.WithError(err).Error("Erro ao ler o arquivo de dataset")
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset vazio em %s", path)
	}

	records := make([]domain.ActivityRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("linha %d de %s: %w", i+2, path, err)
		}
		records = append(records, rec)
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
	}).Debug("Dataset carregado")

	return records, nil
}

func parseRow(row []string) (domain.ActivityRecord, error) {
	var rec domain.ActivityRecord

	if len(row) != len(datasetHeader) {
		return rec, fmt.Errorf("esperadas %d colunas, recebidas %d", len(datasetHeader), len(row))
	}

	date, err := time.Parse(time.DateOnly, row[0])
	if err != nil {
		return rec, fmt.Errorf("data inválida %q: %w", row[0], err)
	}
	impressions, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("impressions inválido %q: %w", row[3], err)
	}
	clicks, err := strconv.ParseInt(row[4], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("clicks inválido %q: %w", row[4], err)
	}
	spend, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return rec, fmt.Errorf("spend inválido %q: %w", row[5], err)
	}
	conversions, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("conversions inválido %q: %w", row[6], err)
	}

	rec = domain.ActivityRecord{
		Date:        date,
		PlatformID:  row[1],
		CreativeID:  row[2],
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       spend,
		Conversions: conversions,
	}
	return rec, nil
}
