package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the carnicería back-office configuration
type Config struct {
	// Store configuration - primary hosted backend plus embedded fallback
	Store struct {
		PrimaryURL     string `mapstructure:"primary_url"`     // REST endpoint of the hosted backend
		PrimaryKey     string `mapstructure:"primary_key"`     // API key for the hosted backend
		FallbackPath   string `mapstructure:"fallback_path"`   // Path to the embedded SQLite file
		PreferPrimary  bool   `mapstructure:"prefer_primary"`  // Probe the primary on startup
		TimeoutSeconds int    `mapstructure:"timeout_seconds"` // Wall-clock deadline per store call
		MaxConnections int    `mapstructure:"max_connections"` // Hard cap on outbound connections
	} `mapstructure:"store"`

	// Accounting configuration
	Accounting struct {
		Timezone             string `mapstructure:"timezone"`               // IANA zone of the shop
		CategoryCacheSeconds int    `mapstructure:"category_cache_seconds"` // Active-category cache TTL
	} `mapstructure:"accounting"`

	// Events configuration - optional NATS publisher for dashboard refresh
	Events struct {
		NATSURL string `mapstructure:"nats_url"` // Empty disables publishing
		Subject string `mapstructure:"subject"`  // Subject prefix for accounting events
	} `mapstructure:"events"`

	// Log directory
	LogDir string `mapstructure:"log_dir"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// LoadConfig loads the configuration from various sources
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaultConfig(v)

	// Read configuration from file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Look for config in the current directory and in /etc/carniceria/
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/carniceria/")
		v.SetConfigName("config")
		v.SetConfigType("json")
	}

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Override with environment variables prefixed with CARNICERIA_
	v.SetEnvPrefix("CARNICERIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Parse the configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// The shop timezone must resolve before any "today" is computed.
	if _, err := time.LoadLocation(config.Accounting.Timezone); err != nil {
		return nil, fmt.Errorf("invalid accounting.timezone %q: %w", config.Accounting.Timezone, err)
	}

	if config.Store.MaxConnections <= 0 || config.Store.MaxConnections > MaxStoreConnections {
		config.Store.MaxConnections = MaxStoreConnections
	}

	return &config, nil
}

// StoreTimeout returns the per-call store deadline as a duration.
func (c *Config) StoreTimeout() time.Duration {
	if c.Store.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// CategoryCacheTTL returns the active-category cache TTL as a duration.
func (c *Config) CategoryCacheTTL() time.Duration {
	if c.Accounting.CategoryCacheSeconds < 0 {
		return 0
	}
	return time.Duration(c.Accounting.CategoryCacheSeconds) * time.Second
}

// setDefaultConfig sets default configuration values
func setDefaultConfig(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.prefer_primary", true)
	v.SetDefault("store.timeout_seconds", 10)
	v.SetDefault("store.max_connections", MaxStoreConnections)
	v.SetDefault("store.fallback_path", DefaultFallbackDBPath)

	// Accounting defaults
	v.SetDefault("accounting.timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("accounting.category_cache_seconds", 60)

	// Events defaults
	v.SetDefault("events.subject", "carniceria.accounting")

	// Log directory default
	v.SetDefault("log_dir", "logs")

	// Debug mode default
	v.SetDefault("debug", false)
}
