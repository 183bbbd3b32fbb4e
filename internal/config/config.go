package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Log          LogConfig
	Parser       ParserConfig
	Retry        RetryConfig
	Batch        BatchConfig
	Jurisdiction JurisdictionConfig
	S3           S3Config
}

// ParserProviderConfig holds settings for a single extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds extraction provider settings with optional fallback.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	return &p.Primary
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// RetryConfig holds the backoff policy applied to extractor calls.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxJitter   time.Duration `mapstructure:"max_jitter"`
}

// BatchConfig holds worker pool settings for batch runs.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// JurisdictionConfig points at an optional tax profile override.
type JurisdictionConfig struct {
	ProfilePath string `mapstructure:"profile_path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	Environment   string        `mapstructure:"environment"`
	MaxFileSizeMB int64         `mapstructure:"max_file_size_mb"`
}

// S3Config holds settings for publishing exports to S3.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the RECON_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_file_size_mb", 20)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Parser defaults
	v.SetDefault("parser.primary.provider", "gemini")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "")
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.timeout_secs", 120)

	// Retry defaults
	v.SetDefault("retry.max_attempts", 4)
	v.SetDefault("retry.base_delay", "1s")
	v.SetDefault("retry.max_jitter", "1s")

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)

	v.SetDefault("jurisdiction.profile_path", "")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "exports")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "RECON_SERVER_PORT",
		"server.read_timeout":            "RECON_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "RECON_SERVER_WRITE_TIMEOUT",
		"server.environment":             "RECON_SERVER_ENVIRONMENT",
		"server.max_file_size_mb":        "RECON_SERVER_MAX_FILE_SIZE_MB",
		"log.level":                      "RECON_LOG_LEVEL",
		"log.format":                     "RECON_LOG_FORMAT",
		"parser.primary.provider":        "RECON_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "RECON_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "RECON_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.timeout_secs":    "RECON_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "RECON_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "RECON_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "RECON_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.timeout_secs":  "RECON_PARSER_SECONDARY_TIMEOUT_SECS",
		"retry.max_attempts":             "RECON_RETRY_MAX_ATTEMPTS",
		"retry.base_delay":               "RECON_RETRY_BASE_DELAY",
		"retry.max_jitter":               "RECON_RETRY_MAX_JITTER",
		"batch.concurrency":              "RECON_BATCH_CONCURRENCY",
		"jurisdiction.profile_path":      "RECON_JURISDICTION_PROFILE_PATH",
		"s3.region":                      "RECON_S3_REGION",
		"s3.bucket":                      "RECON_S3_BUCKET",
		"s3.endpoint":                    "RECON_S3_ENDPOINT",
		"s3.access_key":                  "RECON_S3_ACCESS_KEY",
		"s3.secret_key":                  "RECON_S3_SECRET_KEY",
		"s3.prefix":                      "RECON_S3_PREFIX",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// PaaS platforms set PORT. Use it if RECON_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RECON_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:          serverPort,
		ReadTimeout:   v.GetDuration("server.read_timeout"),
		WriteTimeout:  v.GetDuration("server.write_timeout"),
		Environment:   v.GetString("server.environment"),
		MaxFileSizeMB: v.GetInt64("server.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Parser = ParserConfig{
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
		},
	}
	cfg.Retry = RetryConfig{
		MaxAttempts: v.GetInt("retry.max_attempts"),
		BaseDelay:   v.GetDuration("retry.base_delay"),
		MaxJitter:   v.GetDuration("retry.max_jitter"),
	}
	cfg.Batch = BatchConfig{
		Concurrency: v.GetInt("batch.concurrency"),
	}
	cfg.Jurisdiction = JurisdictionConfig{
		ProfilePath: v.GetString("jurisdiction.profile_path"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}

	return cfg, nil
}
