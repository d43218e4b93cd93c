// Package config provides configuration management for the portfolio
// dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/logging"
	"portfolio-dashboard/internal/scheduler"
)

// Config holds all application configuration.
type Config struct {
	Storage     StorageConfig   `mapstructure:"storage" json:"storage"`
	Portfolio   PortfolioConfig `mapstructure:"portfolio" json:"portfolio"`
	Feeds       FeedsConfig     `mapstructure:"feeds" json:"feeds"`
	Watch       WatchConfig     `mapstructure:"watch" json:"watch"`
	UI          UIConfig        `mapstructure:"ui" json:"ui"`
	Logging     LoggingConfig   `mapstructure:"logging" json:"logging"`
	Credentials Credentials     `mapstructure:"-" json:"credentials"` // Loaded separately

	dir string
}

// StorageConfig selects where holdings are persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver" json:"driver"` // "json", "sqlite"
	Path   string `mapstructure:"path" json:"path"`     // empty means the config directory
}

// PortfolioConfig holds valuation settings.
type PortfolioConfig struct {
	PrimaryOwner   string  `mapstructure:"primary_owner" json:"primaryOwner"`
	FallbackUSDINR float64 `mapstructure:"fallback_usdinr" json:"fallbackUsdinr"`
}

// FeedsConfig holds price feed endpoints and limits.
type FeedsConfig struct {
	AMFIURL     string        `mapstructure:"amfi_url" json:"amfiUrl"`
	YahooURL    string        `mapstructure:"yahoo_url" json:"yahooUrl"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	Concurrency int           `mapstructure:"concurrency" json:"concurrency"`
	MaxRetries  int           `mapstructure:"max_retries" json:"maxRetries"`
	StaleAfter  time.Duration `mapstructure:"stale_after" json:"staleAfter"`
}

// WatchConfig controls the periodic refresh loop.
type WatchConfig struct {
	Schedule        string `mapstructure:"schedule" json:"schedule"`
	MarketHoursOnly bool   `mapstructure:"market_hours_only" json:"marketHoursOnly"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled" json:"colorEnabled"`
	Language     string `mapstructure:"language" json:"language"` // BCP 47 tag for text sorting
	DateFormat   string `mapstructure:"date_format" json:"dateFormat"`
}

// LoggingConfig mirrors logging.LogConfig.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	Console    bool   `mapstructure:"console" json:"console"`
	File       bool   `mapstructure:"file" json:"file"`
	FilePath   string `mapstructure:"file_path" json:"filePath"`
	MaxSize    int    `mapstructure:"max_size" json:"maxSize"`
	MaxBackups int    `mapstructure:"max_backups" json:"maxBackups"`
	MaxAge     int    `mapstructure:"max_age" json:"maxAge"`
}

// Credentials holds remote sync credentials.
type Credentials struct {
	GitHub GitHubCredentials `mapstructure:"github" json:"github"`
}

// GitHubCredentials identifies the repository file the portfolio is pushed to.
type GitHubCredentials struct {
	Token  string `mapstructure:"token" json:"token"`
	Repo   string `mapstructure:"repo" json:"repo"` // owner/name
	Path   string `mapstructure:"path" json:"path"`
	Branch string `mapstructure:"branch" json:"branch"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/portfolio-dashboard"
	}
	return filepath.Join(home, ".config", "portfolio-dashboard")
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	v := viper.New()
	setConfigDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.Credentials.GitHub.Path = "data/portfolio.json"
	return cfg
}

// Load loads configuration from configDir, or the default directory when
// configDir is empty. Missing files are written from templates and their
// defaults used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{dir: configDir}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.path", "")
	v.SetDefault("portfolio.primary_owner", "Self")
	v.SetDefault("portfolio.fallback_usdinr", 83.0)
	v.SetDefault("feeds.amfi_url", "https://www.amfiindia.com/spages/NAVAll.txt")
	v.SetDefault("feeds.yahoo_url", "https://query1.finance.yahoo.com/v8/finance/chart/")
	v.SetDefault("feeds.timeout", "15s")
	v.SetDefault("feeds.concurrency", 8)
	v.SetDefault("feeds.max_retries", 3)
	v.SetDefault("feeds.stale_after", "15m")
	v.SetDefault("watch.schedule", "@every 5m")
	v.SetDefault("watch.market_hours_only", true)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.language", "en")
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size", 20)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setConfigDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found, create template
		if err := createTemplate(configDir, "config.toml", configTemplate, 0644); err != nil {
			return err
		}
	}

	return v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetDefault("github.path", "data/portfolio.json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Use restricted permissions for credentials file
		if err := createTemplate(configDir, "credentials.toml", credentialsTemplate, 0600); err != nil {
			return err
		}
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Credentials.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_REPO"); v != "" {
		cfg.Credentials.GitHub.Repo = v
	}
	if v := os.Getenv("PORTFOLIO_FILE"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("PORTFOLIO_STORAGE"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("PORTFOLIO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite":
	default:
		return invalid("storage.driver must be 'json' or 'sqlite', got %q", c.Storage.Driver)
	}

	if strings.TrimSpace(c.Portfolio.PrimaryOwner) == "" {
		return invalid("portfolio.primary_owner must not be empty")
	}
	if strings.EqualFold(c.Portfolio.PrimaryOwner, "Family") {
		return invalid("portfolio.primary_owner cannot be 'Family'")
	}
	if c.Portfolio.FallbackUSDINR <= 0 {
		return invalid("portfolio.fallback_usdinr must be positive")
	}

	if c.Feeds.Concurrency < 1 {
		return invalid("feeds.concurrency must be at least 1")
	}
	if c.Feeds.MaxRetries < 1 {
		return invalid("feeds.max_retries must be at least 1")
	}
	if c.Feeds.Timeout <= 0 {
		return invalid("feeds.timeout must be positive")
	}

	if err := scheduler.ValidateSchedule(c.Watch.Schedule); err != nil {
		return err
	}

	if _, err := language.Parse(c.UI.Language); err != nil {
		return invalid("ui.language %q: %v", c.UI.Language, err)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	if repo := c.Credentials.GitHub.Repo; repo != "" && strings.Count(repo, "/") != 1 {
		return invalid("github.repo must be owner/name, got %q", repo)
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return apperrors.Wrapf(apperrors.ErrConfigInvalid, format, args...)
}

// Dir returns the directory the configuration was loaded from.
func (c *Config) Dir() string {
	if c.dir == "" {
		return DefaultConfigDir()
	}
	return c.dir
}

// StoragePath resolves the portfolio location: the configured path, or a
// file named after the driver inside the config directory.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	if c.Storage.Driver == "sqlite" {
		return filepath.Join(c.Dir(), "portfolio.db")
	}
	return filepath.Join(c.Dir(), "portfolio.json")
}

// Language returns the collation language for text sorting.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.UI.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// LogConfig converts the logging section, filling the file path default.
func (c *Config) LogConfig() logging.LogConfig {
	lc := logging.DefaultLogConfig()
	lc.Level = c.Logging.Level
	lc.Console = c.Logging.Console
	lc.File = c.Logging.File
	if c.Logging.FilePath != "" {
		lc.FilePath = expandHome(c.Logging.FilePath)
	}
	if c.Logging.MaxSize > 0 {
		lc.MaxSize = c.Logging.MaxSize
	}
	if c.Logging.MaxBackups > 0 {
		lc.MaxBackups = c.Logging.MaxBackups
	}
	if c.Logging.MaxAge > 0 {
		lc.MaxAge = c.Logging.MaxAge
	}
	return lc
}

// Redacted returns a copy safe to print: the GitHub token is masked.
func (c *Config) Redacted() Config {
	out := *c
	if t := out.Credentials.GitHub.Token; t != "" {
		out.Credentials.GitHub.Token = maskSecret(t)
	}
	return out
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
