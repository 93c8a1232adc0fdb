package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the service settings. Every key can be set through the
// environment, either bare (PORT) or with the RECON_ prefix (RECON_PORT).
type Config struct {
	Port            string        `mapstructure:"port"`
	Operation       string        `mapstructure:"operation"`
	StoreBackend    string        `mapstructure:"store_backend"`
	DBPath          string        `mapstructure:"db_path"`
	DatabaseURL     string        `mapstructure:"database_url"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	SeedPath        string        `mapstructure:"seed_path"`
	SyncDebounce    time.Duration `mapstructure:"sync_debounce"`
	SyncMaxAttempts int           `mapstructure:"sync_max_attempts"`
	SyncRetryDelay  time.Duration `mapstructure:"sync_retry_delay"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

const envPrefix = "RECON"

var defaults = map[string]any{
	"port":              "8080",
	"operation":         "default",
	"store_backend":     "sqlite",
	"db_path":           "data/app.db",
	"database_url":      "",
	"redis_addr":        "localhost:6379",
	"redis_password":    "",
	"redis_db":          0,
	"seed_path":         "",
	"sync_debounce":     500 * time.Millisecond,
	"sync_max_attempts": 4,
	"sync_retry_delay":  30 * time.Second,
	"log_level":         "info",
	"auto_migrate":      true,
}

// LoadDotEnv reads .env into the process environment when the file exists.
// It reports whether a file was loaded.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load reads configuration from defaults, an optional file named by
// RECON_CONFIG, and the environment, in increasing priority.
func Load() (Config, error) {
	v := viper.New()

	for key, val := range defaults {
		v.SetDefault(key, val)
		envKey := strings.ToUpper(key)
		if err := v.BindEnv(key, envPrefix+"_"+envKey, envKey); err != nil {
			return Config{}, fmt.Errorf("load config: bind %s: %w", envKey, err)
		}
	}

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("load config: unmarshal: %w", err)
	}

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	if c.SyncMaxAttempts < 1 {
		c.SyncMaxAttempts = 1
	}
	if c.SyncDebounce < 0 {
		return Config{}, fmt.Errorf("load config: sync_debounce must not be negative, got %s", c.SyncDebounce)
	}
	if c.SyncRetryDelay <= 0 {
		return Config{}, fmt.Errorf("load config: sync_retry_delay must be positive, got %s", c.SyncRetryDelay)
	}

	return c, nil
}
