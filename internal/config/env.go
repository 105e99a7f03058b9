package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Env holds settings read from the environment.
type Env struct {
	ConfigPath string `env:"SOLETRA_CONFIG"`
	LogLevel   string `env:"SOLETRA_LOG_LEVEL"  env-default:"info"`
	LogFormat  string `env:"SOLETRA_LOG_FORMAT" env-default:"text"`
}

// LoadEnv reads the environment overrides.
func LoadEnv() (Env, error) {
	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if env.ConfigPath == "" {
		env.ConfigPath = DefaultConfigPath()
	}
	return env, nil
}
