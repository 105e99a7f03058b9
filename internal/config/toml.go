// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game    GameConfig    `toml:"game"`
	Ranking RankingConfig `toml:"ranking"`
	History HistoryConfig `toml:"history"`
}

// GameConfig maps dictionary and session settings.
type GameConfig struct {
	Dictionary  *string `toml:"dictionary"`
	MinLength   *int    `toml:"min-length"`
	MaxAttempts *int    `toml:"max-attempts"`
	CheckEvery  *int    `toml:"check-every"`
	Policy      *string `toml:"policy"`
}

// RankingConfig maps the ranker weights.
type RankingConfig struct {
	AcceptedWeight  *float64 `toml:"accepted-weight"`
	FrequencyWeight *float64 `toml:"frequency-weight"`
	UnknownOffset   *float64 `toml:"unknown-offset"`
}

// HistoryConfig maps history persistence settings.
type HistoryConfig struct {
	Backend *string `toml:"backend"`
	Path    *string `toml:"path"`
	Strict  *bool   `toml:"strict"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}
