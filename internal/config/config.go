package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Redis   RedisConfig   `mapstructure:"redis"`
	OTel    OTelConfig    `mapstructure:"otel"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GatewayConfig holds the payment gateway merchant settings. It is built once
// at startup and injected read-only into the gateway client.
type GatewayConfig struct {
	Environment    string        `mapstructure:"environment"` // test or live
	MerchantID     string        `mapstructure:"merchant_id"`
	APIPassword    string        `mapstructure:"api_password"`
	URLTest        string        `mapstructure:"url_test"`
	URLLive        string        `mapstructure:"url_live"`
	APIVersion     string        `mapstructure:"api_version"`
	Currency       string        `mapstructure:"currency"`
	MerchantName   string        `mapstructure:"merchant_name"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	WireLogEnabled bool          `mapstructure:"wire_log_enabled"`
	WireLogPath    string        `mapstructure:"wire_log_path"`
}

// BaseURL returns the gateway base URL for the configured environment.
func (g *GatewayConfig) BaseURL() string {
	if g.Environment == "live" {
		return g.URLLive
	}
	return g.URLTest
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	return LoadWithPath(".env")
}

// LoadWithPath loads configuration from a specific env file path. The file is
// optional; environment variables always take precedence.
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	// A missing or unreadable .env is fine, env vars may still be set.
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "checkout-service")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Gateway defaults
	v.SetDefault("GATEWAY_ENVIRONMENT", "test")
	v.SetDefault("MERCHANT_ID", "TEST_MERCHANT")
	v.SetDefault("API_PASSWORD", "test_password")
	v.SetDefault("GATEWAY_URL_TEST", "https://test-bankofceylon.mtf.gateway.mastercard.com")
	v.SetDefault("GATEWAY_URL_PROD", "https://bankofceylon.gateway.mastercard.com")
	v.SetDefault("API_VERSION", "100")
	v.SetDefault("CURRENCY", "LKR")
	v.SetDefault("MERCHANT_NAME", "My Store")
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("GATEWAY_SESSION_TIMEOUT", "30m")
	v.SetDefault("GATEWAY_WIRE_LOG_PATH", "logs/gateway.log")

	// Redis defaults
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "checkout-service")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	// Debug mode implies debug logging unless LOG_LEVEL says otherwise
	cfg.App.LogLevel = v.GetString("LOG_LEVEL")
	if cfg.App.LogLevel == "" {
		if cfg.App.Debug {
			cfg.App.LogLevel = "debug"
		} else {
			cfg.App.LogLevel = "info"
		}
	}
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	// Gateway
	cfg.Gateway.Environment = v.GetString("GATEWAY_ENVIRONMENT")
	cfg.Gateway.MerchantID = v.GetString("MERCHANT_ID")
	cfg.Gateway.APIPassword = v.GetString("API_PASSWORD")
	cfg.Gateway.URLTest = v.GetString("GATEWAY_URL_TEST")
	cfg.Gateway.URLLive = v.GetString("GATEWAY_URL_PROD")
	cfg.Gateway.APIVersion = v.GetString("API_VERSION")
	cfg.Gateway.Currency = v.GetString("CURRENCY")
	cfg.Gateway.MerchantName = v.GetString("MERCHANT_NAME")
	cfg.Gateway.WebhookSecret = v.GetString("WEBHOOK_SECRET")
	cfg.Gateway.SessionTimeout = v.GetDuration("GATEWAY_SESSION_TIMEOUT")
	cfg.Gateway.WireLogPath = v.GetString("GATEWAY_WIRE_LOG_PATH")
	// Gateway traffic logging defaults on only for the test environment
	if v.IsSet("GATEWAY_WIRE_LOG_ENABLED") {
		cfg.Gateway.WireLogEnabled = v.GetBool("GATEWAY_WIRE_LOG_ENABLED")
	} else {
		cfg.Gateway.WireLogEnabled = cfg.Gateway.Environment == "test"
	}

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Gateway.Environment != "test" && c.Gateway.Environment != "live" {
		return fmt.Errorf("invalid gateway environment: %s", c.Gateway.Environment)
	}

	if c.Gateway.MerchantID == "" {
		return fmt.Errorf("merchant ID is required")
	}

	if c.Gateway.APIPassword == "" {
		return fmt.Errorf("API password is required")
	}

	if len(c.Gateway.Currency) != 3 {
		return fmt.Errorf("invalid currency code: %s", c.Gateway.Currency)
	}

	// Catch the placeholder password before it reaches a live gateway
	if c.Gateway.Environment == "live" && c.Gateway.APIPassword == "test_password" {
		return fmt.Errorf("API password must be changed for the live gateway")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
