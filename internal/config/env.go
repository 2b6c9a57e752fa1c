package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/keyring"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// KeySource records where the analyzer API key was found.
type KeySource string

const (
	KeySourceNone    KeySource = ""
	KeySourceEnv     KeySource = "environment"
	KeySourceKeyring KeySource = "keyring"
)

// Analyzer holds the model settings. The API key may also live in the OS
// keyring, which is consulted only when neither env var is set.
type Analyzer struct {
	APIKey       string        `env:"DETOXSCAN_API_KEY"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	Model        string        `env:"DETOXSCAN_MODEL" envDefault:"gemini-2.5-flash"`
	BaseURL      string        `env:"DETOXSCAN_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Timeout      time.Duration `env:"DETOXSCAN_TIMEOUT" envDefault:"60s"`

	KeySource KeySource `env:"-"`
}

// LoadAnalyzer parses the analyzer settings and resolves the API key.
// A missing key is not an error here; the analyzer reports it on use.
func LoadAnalyzer() (Analyzer, error) {
	var cfg Analyzer
	if err := ParseEnv(&cfg); err != nil {
		return Analyzer{}, err
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	}
	if cfg.APIKey != "" {
		cfg.KeySource = KeySourceEnv
	} else {
		key, err := keyring.GetAPIKey()
		switch {
		case err == nil:
			cfg.APIKey = key
			cfg.KeySource = KeySourceKeyring
		case errors.Is(err, keyring.ErrNotFound):
		default:
			return Analyzer{}, err
		}
	}

	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = constants.DefaultModel
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = constants.DefaultModelURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultTimeout
	}
	return cfg, nil
}
