package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StateDirName   = ".focuslog"
	ConfigFileName = "config.yaml"
	EnvPrefix      = "FOCUSLOG"
)

type Config struct {
	VaultPath string `mapstructure:"-"`
	StateDir  string `mapstructure:"-"`
	DBPath    string `mapstructure:"-"`

	Timezone string        `mapstructure:"timezone"`
	Log      LogConfig     `mapstructure:"log"`
	Insight  InsightConfig `mapstructure:"insight"`
	Notify   NotifyConfig  `mapstructure:"notify"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type InsightConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Gemini   GeminiConfig  `mapstructure:"gemini"`
}

type GeminiConfig struct {
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// New builds a Config for the vault, layering defaults, <vault>/.focuslog/config.yaml,
// a vault-level .env file and FOCUSLOG_* environment variables.
func New(vaultPath string) (Config, error) {
	if strings.TrimSpace(vaultPath) == "" {
		return Config{}, fmt.Errorf("vault path is required")
	}
	stateDir := filepath.Join(vaultPath, StateDirName)

	// a missing .env is the common case
	if err := godotenv.Load(filepath.Join(vaultPath, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := filepath.Join(stateDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.VaultPath = vaultPath
	cfg.StateDir = stateDir
	cfg.DBPath = filepath.Join(stateDir, "focuslog.db")
	if cfg.Insight.Gemini.APIKey == "" {
		cfg.Insight.Gemini.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timezone", "Local")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("insight.provider", "gemini")
	v.SetDefault("insight.timeout", 60*time.Second)
	v.SetDefault("insight.cache_ttl", 30*time.Minute)
	v.SetDefault("insight.gemini.model", "gemini-2.5-flash")
	v.SetDefault("insight.gemini.api_key", "")
	v.SetDefault("insight.gemini.endpoint", "https://generativelanguage.googleapis.com/")
	v.SetDefault("notify.enabled", true)
}

// Location resolves the configured timezone used for hour-of-day and day boundaries.
func (c Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}
