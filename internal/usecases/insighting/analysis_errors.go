package insighting

import (
	"github.com/pkg/errors"
)

var (
	ErrDatasetRepositoryMissing = errors.New("repositório de dataset não configurado")
	ErrEmptyDataset             = errors.New("nenhum registro aceito após a validação")
)
