package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values. It is constructed once at startup
// and passed explicitly to every component.
type Config struct {
	AppPort            string `mapstructure:"APP_PORT"`
	Env                string `mapstructure:"ENV"`
	APIKey             string `mapstructure:"API_KEY"`
	Timezone           string `mapstructure:"TIMEZONE"`
	CacheTTLSeconds    int    `mapstructure:"CACHE_TTL_SECONDS"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	DefaultSlotMinutes int    `mapstructure:"DEFAULT_SLOT_MINUTES"`
	ResourcesFile      string `mapstructure:"RESOURCES_FILE"`
	BusinessHoursFile  string `mapstructure:"BUSINESS_HOURS_FILE"`
	GoogleCredsFile    string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
}

// Load initializes Viper to read config values from env, file, or defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("API_KEY", "")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("DEFAULT_SLOT_MINUTES", 30)
	v.SetDefault("RESOURCES_FILE", "config/resources.yaml")
	v.SetDefault("BUSINESS_HOURS_FILE", "config/hours.yaml")

	// A config file is optional; environment variables alone are enough.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CacheTTL returns the default cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
