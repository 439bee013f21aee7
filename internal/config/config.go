package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ai-advisor/server/internal/advisor/model"
	"github.com/ai-advisor/server/internal/core"
	logx "github.com/ai-advisor/server/pkg/logger"
	pkgredis "github.com/ai-advisor/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// LLM provider. An empty key disables the advisor.
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Server  ServerConfig
	Advisor model.AdvisorModelConfig
	Prompt  model.AdvisorPromptConfig
	Cache   model.CacheConfig

	// Infrastructure
	Redis pkgredis.Config
}

type ServerConfig struct {
	Addr            string        `envconfig:"SERVER_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"90s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"SERVER_CORS_ORIGINS" default:"*"`
	MaxBodyBytes    int64         `envconfig:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// Load reads envFile (when non-empty and present) into the process
// environment and binds the environment to an AppConfig. A missing env file
// is only a warning.
func Load(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
			logx.Warn().Str("file", envFile).Msg("env file not found, using process environment")
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("SERVER_MAX_BODY_BYTES must be positive, got %d", cfg.Server.MaxBodyBytes)
	}
	return &cfg, nil
}

// Env returns the parsed deployment environment.
func (c *AppConfig) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

// APIKeyConfigured reports whether a model provider key is present. The key
// itself is not validated.
func (c *AppConfig) APIKeyConfigured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
