package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mail-priority/")
	v.AddConfigPath("$HOME/.mail-priority")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAIL_PRIORITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a new configuration instance from a specific file
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// User identity
	v.SetDefault("user.address", "")

	// Scoring defaults
	v.SetDefault("scoring.max_body_size", 65536)

	// Relationship defaults
	v.SetDefault("relationship.reply_frequency_weight", 0.35)
	v.SetDefault("relationship.two_way_weight", 0.25)
	v.SetDefault("relationship.recency_weight", 0.20)
	v.SetDefault("relationship.volume_weight", 0.10)
	v.SetDefault("relationship.manual_vip_weight", 0.10)
	v.SetDefault("relationship.recency_decay_days", 90)

	// Gate defaults
	v.SetDefault("gates.otp.expiry_window", "15m")

	// Batch defaults
	v.SetDefault("batch.parallelism", 10)

	// History store defaults
	v.SetDefault("history.type", "memory")
	v.SetDefault("history.lookback", "4320h")
	v.SetDefault("history.prune_frequency", "1h")
	v.SetDefault("history.sqlite_path", "/data/interaction_history.db")
	v.SetDefault("history.mysql_dsn", "user:password@tcp(localhost:3306)/mail_priority?parseTime=true")

	// VIP defaults
	v.SetDefault("vip.addresses", []string{})
	v.SetDefault("vip.domains", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
