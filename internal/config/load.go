package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKS"

// configFileEnv names the environment variable holding an explicit config file path.
const configFileEnv = EnvPrefix + "_CONFIG_FILE"

var defaults = map[string]any{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.environment":      "development",
	"server.log_file":         "",
	"server.shutdown_timeout": "10s",
	"server.trust_proxy":      false,

	"database.driver": "postgres",
	"database.url":    "",

	"auth.jwt_secret": "",
	"auth.issuer":     "tasks-api",
	"auth.audience":   "tasks-users",

	"blob.driver":           "memory",
	"blob.bucket":           "",
	"blob.credentials_file": "",
	"blob.public_uploads":   false,
	"blob.signed_url_ttl":   "1h",
	"blob.max_upload_bytes": 10 << 20,

	"redis.url": "",

	"rate_limit.requests": 100,
	"rate_limit.window":   "15m",

	"jobs.worker_count":         2,
	"jobs.queue_size":           100,
	"jobs.stuck_after":          "30m",
	"jobs.stuck_check_interval": "5m",

	"telemetry.service_name": "tasks-api",
	"telemetry.trace_stdout": false,
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Every key gets a default so AutomaticEnv can resolve it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path := os.Getenv(configFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
