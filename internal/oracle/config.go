package oracle

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// ErrMissingAPIKey is returned when no key is configured outside demo mode.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is required unless ORACLE_DEMO_MODE is enabled")

// Config is passed explicitly to every client constructor.
type Config struct {
	APIKey          string        `env:"GEMINI_API_KEY"`
	Model           string        `env:"GEMINI_MODEL,default=gemini-1.5-flash"`
	Temperature     float32       `env:"GEMINI_TEMPERATURE,default=0.2"`
	MaxOutputTokens int32         `env:"GEMINI_MAX_OUTPUT_TOKENS,default=1024"`
	TopK            int32         `env:"GEMINI_TOP_K,default=40"`
	TopP            float32       `env:"GEMINI_TOP_P,default=0.95"`
	Timeout         time.Duration `env:"ORACLE_TIMEOUT,default=60s"`
	DemoMode        bool          `env:"ORACLE_DEMO_MODE,default=false"`
	CacheTTL        time.Duration `env:"ORACLE_CACHE_TTL,default=6h"`
}

// LoadConfig reads the oracle settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode oracle config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings needed to reach the real model.
func (c Config) Validate() error {
	if c.DemoMode {
		return nil
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("GEMINI_MODEL must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("GEMINI_MAX_OUTPUT_TOKENS must be positive, got %d", c.MaxOutputTokens)
	}
	return nil
}
