// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the voiced daemon and the speak CLI need.
// Values come from environment variables; cmd mains load a .env file first.
type Config struct {
	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Daemon HTTP listener
	Addr string `env:"VOICED_ADDR" envDefault:":8780"`

	// Speech synthesis backend
	TTSBaseURL string `env:"TTS_BASE_URL"`
	TTSAPIKey  string `env:"TTS_API_KEY"`

	// Playback
	Muted bool `env:"VOICE_MUTED" envDefault:"false"`

	// Offline assets: directory of pre-synthesized clips named <route>_<lang>.wav
	AssetsDir string `env:"OFFLINE_ASSETS_DIR"`

	// Connectivity probe
	ProbeURL string `env:"CONNECTIVITY_PROBE_URL" envDefault:"https://connectivitycheck.gstatic.com/generate_204"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
