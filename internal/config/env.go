package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv накладывает переменные окружения на target; незаданные переменные не трогают поля.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
