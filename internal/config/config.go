package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment  string `validate:"required"`
	Port         string `validate:"required,numeric"`
	Hostname     string `validate:"required"`
	FunctionName string
	LogLevel     string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Server       ServerConfig
	Function     FunctionConfig
	Schema       SchemaConfig
	Telemetry    TelemetryConfig
	Limits       LimitsConfig
	JWT          JWTConfig
}

// ServerConfig holds HTTP server timeouts
type ServerConfig struct {
	ReadTimeout     time.Duration `validate:"gte=0"`
	WriteTimeout    time.Duration `validate:"gte=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// FunctionConfig controls how requests reach the function
type FunctionConfig struct {
	BodyParseMode string `validate:"oneof=lenient strict"`
	CatchAll      bool
}

// SchemaConfig holds where payload schemas are loaded from
type SchemaConfig struct {
	Source string `validate:"oneof=local embedded"`
	Dir    string `validate:"required_if=Source local"`
	Draft  int    `validate:"oneof=0 4 6 7 2019 2020"`
}

// TelemetryConfig holds error reporting configuration
type TelemetryConfig struct {
	Enabled    bool
	DSN        string  `validate:"omitempty,url"`
	SampleRate float64 `validate:"gte=0,lte=1"`
}

// LimitsConfig holds request limits. Zero disables a limit.
type LimitsConfig struct {
	MaxBodyBytes   int64   `validate:"gte=0"`
	RateLimitRPS   float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=1"`
}

// JWTConfig holds bearer authentication configuration. An empty secret
// disables authentication.
type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int `validate:"gte=1"`
}

// IsDevelopment reports whether the gateway runs in development mode
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// TelemetryActive reports whether errors should be sent to the collector
func (c *Config) TelemetryActive() bool {
	return c.Telemetry.Enabled && c.Telemetry.DSN != ""
}

// Load loads configuration from environment variables and a .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	_ = v.BindEnv("ENVIRONMENT", "ENVIRONMENT", "FUNCTION_ENV")
	_ = v.BindEnv("FUNCTION_NAME", "FUNCTION_NAME", "AWS_LAMBDA_FUNCTION_NAME")

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HOSTNAME", "localhost")
	v.SetDefault("FUNCTION_NAME", "function")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("READ_TIMEOUT", "15s")
	v.SetDefault("WRITE_TIMEOUT", "15s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "30s")
	v.SetDefault("BODY_PARSE_MODE", "lenient")
	v.SetDefault("CATCH_ALL", true)
	v.SetDefault("SCHEMA_SOURCE", "embedded")
	v.SetDefault("SCHEMA_DIR", "./function/schemas")
	v.SetDefault("SCHEMA_DRAFT", 7)
	v.SetDefault("TELEMETRY_ENABLED", true)
	v.SetDefault("TELEMETRY_SAMPLE_RATE", 1.0)
	v.SetDefault("MAX_BODY_BYTES", 10<<20)
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("JWT_ISSUER", "function-gateway")
	v.SetDefault("JWT_EXPIRY_HOURS", 1)

	config := &Config{
		Environment:  v.GetString("ENVIRONMENT"),
		Port:         v.GetString("PORT"),
		Hostname:     v.GetString("HOSTNAME"),
		FunctionName: v.GetString("FUNCTION_NAME"),
		LogLevel:     strings.ToLower(v.GetString("LOG_LEVEL")),
		Server: ServerConfig{
			ReadTimeout:     v.GetDuration("READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Function: FunctionConfig{
			BodyParseMode: strings.ToLower(v.GetString("BODY_PARSE_MODE")),
			CatchAll:      v.GetBool("CATCH_ALL"),
		},
		Schema: SchemaConfig{
			Source: strings.ToLower(v.GetString("SCHEMA_SOURCE")),
			Dir:    v.GetString("SCHEMA_DIR"),
			Draft:  v.GetInt("SCHEMA_DRAFT"),
		},
		Telemetry: TelemetryConfig{
			Enabled:    v.GetBool("TELEMETRY_ENABLED"),
			DSN:        v.GetString("SENTRY_DSN"),
			SampleRate: v.GetFloat64("TELEMETRY_SAMPLE_RATE"),
		},
		Limits: LimitsConfig{
			MaxBodyBytes:   v.GetInt64("MAX_BODY_BYTES"),
			RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("AUTH_JWT_SECRET"),
			Issuer:      v.GetString("JWT_ISSUER"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return config, nil
}

// SetupLogging configures the global logrus logger for the environment
func SetupLogging(config *Config) {
	if config.IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
