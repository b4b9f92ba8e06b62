package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Load reads App from the environment and checks its values.
func Load() (App, error) {
	var cfg App
	if err := env.Parse(&cfg); err != nil {
		return App{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return App{}, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Recommend.ContentWeight+cfg.Recommend.CollabWeight == 0 {
		return App{}, fmt.Errorf("invalid config: recommendation weights are both zero")
	}
	return cfg, nil
}
