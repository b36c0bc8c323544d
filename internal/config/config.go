package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host       string `mapstructure:"REDIS_HOST"`
	Port       string `mapstructure:"REDIS_PORT"`
	Password   string `mapstructure:"REDIS_PASSWORD"`
	DB         int    `mapstructure:"REDIS_DB"`
	SummaryTTL string `mapstructure:"REDIS_SUMMARY_TTL"`
}

type SchedulerConfig struct {
	OverdueCron string `mapstructure:"SCHEDULER_OVERDUE_CRON"`
	Timezone    string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level string `mapstructure:"LOG_LEVEL"`
}

// BusinessConfig carries the product policy knobs the engine accepts as
// configuration instead of hard-coding.
type BusinessConfig struct {
	DefaultMoraRate     string `mapstructure:"DEFAULT_MORA_RATE"`
	OverpaymentRollover bool   `mapstructure:"OVERPAYMENT_ROLLOVER"`
	CascadeDeleteLoans  bool   `mapstructure:"CASCADE_DELETE_LOANS"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_SUMMARY_TTL", "15m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DEFAULT_MORA_RATE", "5")
	viper.SetDefault("OVERPAYMENT_ROLLOVER", false)
	viper.SetDefault("CASCADE_DELETE_LOANS", false)
	viper.SetDefault("SCHEDULER_OVERDUE_CRON", "0 10 0 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "America/Santo_Domingo")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if rate, err := decimal.NewFromString(c.Business.DefaultMoraRate); err != nil {
		return fmt.Errorf("DEFAULT_MORA_RATE must be a valid decimal: %w", err)
	} else if rate.IsNegative() {
		return fmt.Errorf("DEFAULT_MORA_RATE must not be negative")
	}

	if _, err := time.ParseDuration(c.Redis.SummaryTTL); err != nil {
		return fmt.Errorf("REDIS_SUMMARY_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultMoraRate returns the default mora rate as decimal
func (c *Config) GetDefaultMoraRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.DefaultMoraRate)
	return rate
}

// GetSummaryTTL returns the summary cache TTL as duration
func (c *Config) GetSummaryTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Redis.SummaryTTL)
	return ttl
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// Policy maps the business knobs to the engine's policy type
func (c *Config) Policy() domain.Policy {
	return domain.Policy{
		OverpaymentRollover: c.Business.OverpaymentRollover,
		CascadeDelete:       c.Business.CascadeDeleteLoans,
	}
}
