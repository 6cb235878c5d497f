package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the tool configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ModelsDir   string `mapstructure:"models_dir"`
	CatalogFile string `mapstructure:"catalog_file"`

	ManifestType string `mapstructure:"manifest_type"`
	ManifestPath string `mapstructure:"manifest_path"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "voxfetch")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("models_dir", "") // empty resolves to the per-user cache dir
	v.SetDefault("catalog_file", "")
	v.SetDefault("manifest_type", "bbolt")
	v.SetDefault("manifest_path", "./data/manifest.db")
	v.SetDefault("http_timeout_seconds", 0) // 0 means no timeout

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be >= 0)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}
