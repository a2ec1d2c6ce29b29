package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes environment overrides, e.g. TALENTMATCH_DATABASE_URL.
const EnvPrefix = "TALENTMATCH"

// Config holds the application configuration
type Config struct {
	DatabaseDriver string `mapstructure:"database_driver"` // sqlite, postgres
	DatabasePath   string `mapstructure:"database_path"`
	DatabaseURL    string `mapstructure:"database_url"`
	// Redis is optional; notifications are only stored in the inbox without it.
	RedisURL      string `mapstructure:"redis_url"`
	NotifyChannel string `mapstructure:"notify_channel"`
	// Ranking
	MinScore     int `mapstructure:"min_score"`
	ScoreWorkers int `mapstructure:"score_workers"`
	// Rescoring job
	RescoreSchedule string `mapstructure:"rescore_schedule"`
	RescoreBatch    int    `mapstructure:"rescore_batch"`
	// HTTP API
	HTTPAddr    string   `mapstructure:"http_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// Logging
	LogJSON  bool `mapstructure:"log_json"`
	LogDebug bool `mapstructure:"log_debug"`
}

var AppConfig *Config

// defaults doubles as the list of keys Set accepts.
var defaults = map[string]any{
	"database_driver":  DriverSQLite,
	"database_path":    "",
	"database_url":     "",
	"redis_url":        "",
	"notify_channel":   "EVENT_MATCH",
	"min_score":        40,
	"score_workers":    4,
	"rescore_schedule": "@every 1h",
	"rescore_batch":    500,
	"http_addr":        ":8090",
	"cors_origins":     []string{"*"},
	"log_json":         false,
	"log_debug":        false,
}

// Initialize loads or creates the configuration file in ~/.talentmatch
func Initialize() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return Load(dir)
}

// Load reads dir/config.yaml, creating it when missing, and applies
// TALENTMATCH_* environment overrides.
func Load(dir string) error {
	configFile := filepath.Join(dir, "config.yaml")

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	viper.SetDefault("database_path", filepath.Join(dir, "talentmatch.db"))

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal into struct
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("database_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database_driver %q (want %s or %s)", c.DatabaseDriver, DriverSQLite, DriverPostgres)
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min_score must be between 0 and 100, got %d", c.MinScore)
	}
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# TalentMatch Configuration
# Database driver: sqlite, postgres
database_driver: sqlite
# database_path: ~/.talentmatch/talentmatch.db
database_url: ""

# Optional Redis pub/sub for match events
redis_url: ""
notify_channel: EVENT_MATCH

# Recommendations
min_score: 40
score_workers: 4

# Background rescoring (cron spec)
rescore_schedule: "@every 1h"
rescore_batch: 500

# HTTP API
http_addr: ":8090"

log_json: false
log_debug: false
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Keys lists the settable configuration keys.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set updates a configuration value
func Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	viper.Set(key, value)
	return viper.WriteConfig()
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// Dir returns ~/.talentmatch
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".talentmatch"), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	dir, _ := Dir()
	return filepath.Join(dir, "config.yaml")
}
