package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID devolve um identificador curto para relatórios de análise.
func GenerateID() (string, error) {
	return gonanoid.Generate(characters, 6)
}
