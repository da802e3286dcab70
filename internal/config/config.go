package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	Blob      BlobConfig      `mapstructure:"blob"       validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Jobs      JobsConfig      `mapstructure:"jobs"       validate:"required"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port"        validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level"   validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development test production"`
	// LogFile enables a rotating file sink in addition to stdout when set.
	LogFile         string        `mapstructure:"log_file"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

// IsProduction reports whether internal error details must be hidden from clients.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig selects and configures the document store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL    string `mapstructure:"url"    validate:"required_if=Driver postgres,omitempty,url"`
}

// AuthConfig contains token signing settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer    string `mapstructure:"issuer"     validate:"required"`
	Audience  string `mapstructure:"audience"   validate:"required"`
}

// BlobConfig configures the attachment blob store.
type BlobConfig struct {
	Driver          string        `mapstructure:"driver"           validate:"required,oneof=gcs memory"`
	Bucket          string        `mapstructure:"bucket"           validate:"required_if=Driver gcs"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	PublicUploads   bool          `mapstructure:"public_uploads"`
	SignedURLTTL    time.Duration `mapstructure:"signed_url_ttl"   validate:"gt=0"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

// RedisConfig configures the optional Redis connection used by the rate limiter.
// An empty URL selects the in-process limiter.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RateLimitConfig bounds requests per client address.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" validate:"gt=0"`
	Window   time.Duration `mapstructure:"window"   validate:"gt=0"`
}

// JobsConfig sizes the background job runner.
type JobsConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`

	// StuckAfter is how long a job may stay processing before it is requeued.
	StuckAfter         time.Duration `mapstructure:"stuck_after"          validate:"gt=0"`
	StuckCheckInterval time.Duration `mapstructure:"stuck_check_interval" validate:"gt=0"`
}

// TelemetryConfig controls tracing output.
type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name" validate:"required"`
	TraceStdout bool   `mapstructure:"trace_stdout"`
}
