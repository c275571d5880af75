// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./config.yaml or ~/.chatbot/config.yaml)
//  3. Default values
//
// Sensitive data (the database password) is never logged. Validation uses
// sentinel errors so callers can check with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default model configuration.
const (
	DefaultModelName   = "googleai/gemini-2.5-flash"
	DefaultTemperature = 0.7
)

// Default session configuration, matching the conversation engine's bounds.
const (
	DefaultSessionMaxMessages  = 20
	DefaultSessionHistoryLimit = 10
	DefaultSessionMaxAge       = 24 * time.Hour
	DefaultSweepInterval       = time.Hour
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	ModelName   string  `mapstructure:"model_name"`
	Temperature float32 `mapstructure:"temperature"`

	// HTTP server configuration
	ServerAddr  string   `mapstructure:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	RateLimit   float64  `mapstructure:"rate_limit"` // requests per second per client
	RateBurst   int      `mapstructure:"rate_burst"` // burst size per client

	// Session configuration
	SessionMaxMessages  int           `mapstructure:"session_max_messages"`
	SessionHistoryLimit int           `mapstructure:"session_history_limit"`
	SessionMaxAge       time.Duration `mapstructure:"session_max_age"`
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`

	// PostgreSQL configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`
	PostgresMaxConns int32  `mapstructure:"postgres_max_conns"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".chatbot")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(configDir)

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{".", configDir})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, when set, overrides the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("model_name", DefaultModelName)
	viper.SetDefault("temperature", DefaultTemperature)

	viper.SetDefault("server_addr", ":8080")
	viper.SetDefault("cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("rate_limit", 5.0)
	viper.SetDefault("rate_burst", 10)

	viper.SetDefault("session_max_messages", DefaultSessionMaxMessages)
	viper.SetDefault("session_history_limit", DefaultSessionHistoryLimit)
	viper.SetDefault("session_max_age", DefaultSessionMaxAge)
	viper.SetDefault("sweep_interval", DefaultSweepInterval)

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "chatbot")
	viper.SetDefault("postgres_password", "chatbot_dev_password")
	viper.SetDefault("postgres_db_name", "chatbot")
	viper.SetDefault("postgres_ssl_mode", "disable")
	viper.SetDefault("postgres_max_conns", 10)
}

// bindEnvVariables binds environment overrides explicitly.
// GEMINI_API_KEY is read directly by Genkit, not via Viper.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "CHATBOT_MODEL_NAME")
	mustBind("server_addr", "CHATBOT_SERVER_ADDR")
	mustBind("cors_origins", "CHATBOT_CORS_ORIGINS")
}
