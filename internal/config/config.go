package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	// PathEnv names the environment variable holding the config file path.
	PathEnv           = "RANKINGS_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Discovery     DiscoveryConfig    `yaml:"discovery"`
	Endpoints     EndpointsConfig    `yaml:"endpoints"`
	Extraction    ExtractionConfig   `yaml:"extraction"`
	Ranking       RankingConfig      `yaml:"ranking"`
	Output        OutputConfig       `yaml:"output"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// FetchConfig tunes the page fetcher.
type FetchConfig struct {
	Attempts         int           `yaml:"attempts" validate:"gte=1"`
	BaseDelay        time.Duration `yaml:"baseDelay" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	UserAgent        string        `yaml:"userAgent"`
	CloudflareBypass bool          `yaml:"cloudflareBypass"`
}

// DiscoveryConfig describes the probed URL space and where results are cached.
type DiscoveryConfig struct {
	Year          int           `yaml:"year" validate:"gte=2016"`
	URLTemplate   string        `yaml:"urlTemplate" validate:"required"`
	Categories    []string      `yaml:"categories" validate:"min=1,dive,required"`
	Bands         []string      `yaml:"bands" validate:"min=1"`
	ProbeInterval time.Duration `yaml:"probeInterval" validate:"gte=0"`
	Cache         CacheConfig   `yaml:"cache"`
}

// CacheConfig selects the discovery cache backend.
type CacheConfig struct {
	Kind string `yaml:"kind" validate:"oneof=file database"`
	Path string `yaml:"path" validate:"required_if=Kind file"`
}

// EndpointsConfig holds per-category endpoint overrides.
type EndpointsConfig struct {
	OverridesFile string              `yaml:"overridesFile"`
	Overrides     map[string][]string `yaml:"overrides"`
}

// ExtractionConfig tunes the strategy cascade.
type ExtractionConfig struct {
	Strategies    []string      `yaml:"strategies" validate:"min=1"`
	States        []string      `yaml:"states"`
	DetailDelay   time.Duration `yaml:"detailDelay" validate:"gte=0"`
	SampleRows    int           `yaml:"sampleRows" validate:"gte=1"`
	ScanAllTables bool          `yaml:"scanAllTables"`
	MaxLinks      int           `yaml:"maxLinks" validate:"gte=0"`
}

// RankingConfig controls merge ordering and the record cap.
type RankingConfig struct {
	Preference []string `yaml:"preference"`
	// MaxRecords caps the output; a negative value disables the cap.
	MaxRecords int `yaml:"maxRecords"`
}

// OutputConfig describes the dataset artifact.
type OutputConfig struct {
	Path        string `yaml:"path" validate:"required"`
	Format      string `yaml:"format" validate:"oneof=json yaml"`
	DataVersion string `yaml:"dataVersion" validate:"required"`
	Country     string `yaml:"country"`
	SourceLabel string `yaml:"sourceLabel"`
}

// DatabaseConfig describes the record store connection.
type DatabaseConfig struct {
	// Enabled loads every build into the store.
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN     string `yaml:"dsn" validate:"required"`
}

// SchedulerConfig defines how often watch rebuilds.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval" validate:"gt=0"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads the YAML file at path (if any) over the defaults, applies
// environment overrides and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		default:
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
			if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
				return cfg, fmt.Errorf("config: merge %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("config: unknown timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Fetch: FetchConfig{
			Attempts:  3,
			BaseDelay: 600 * time.Millisecond,
			Timeout:   30 * time.Second,
		},
		Discovery: DiscoveryConfig{
			Year:        2024,
			URLTemplate: "https://www.nirfindia.org/Rankings/{year}/{category}Ranking{band}.html",
			Categories: []string{
				"Overall", "University", "College", "Engineering", "Management", "Medical",
				"Pharmacy", "Architecture", "Law", "Dental", "Agriculture",
			},
			Bands:         []string{"", "150", "200", "250"},
			ProbeInterval: 350 * time.Millisecond,
			Cache:         CacheConfig{Kind: "file", Path: "nirf_discovered_endpoints.json"},
		},
		Endpoints: EndpointsConfig{OverridesFile: "nirf_endpoints.json"},
		Extraction: ExtractionConfig{
			Strategies:  []string{"override", "embedded", "linked", "table", "strict", "alternate", "generic"},
			DetailDelay: 120 * time.Millisecond,
			SampleRows:  6,
		},
		Ranking: RankingConfig{MaxRecords: 220},
		Output: OutputConfig{
			Path:        "colleges.json",
			Format:      "json",
			DataVersion: "v1.0",
			Country:     "India",
			SourceLabel: "NIRF",
		},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "rankings.db"},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
	}
}
