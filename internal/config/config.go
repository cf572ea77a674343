package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "PAPER_TRACKER_CONFIG"
	databasePathEnv   = "PAPER_TRACKER_DB"
	reportDirEnv      = "PAPER_TRACKER_REPORT_DIR"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	anthropicModelEnv = "ANTHROPIC_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Storage       StorageConfig      `yaml:"storage"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Sources       []SourceConfig     `yaml:"sources"`
	Keywords      KeywordConfig      `yaml:"keywords"`
	Summarizer    SummarizerConfig   `yaml:"summarizer"`
	Reports       ReportConfig       `yaml:"reports"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`

	// DryRun is a command-line switch, not a file setting: fetch and
	// report render and count but never write or publish.
	DryRun bool `yaml:"-"`
}

// LoggingConfig selects the log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig describes the SQLite database location.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the daily pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SourceConfig describes a single fetch strategy with its categories.
type SourceConfig struct {
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
	MaxResults int      `yaml:"maxResults"`
}

// KeywordConfig drives the relevance filter.
type KeywordConfig struct {
	Terms         []string `yaml:"terms"`
	MinMatches    int      `yaml:"minMatches"`
	CaseSensitive bool     `yaml:"caseSensitive"`
}

// SummarizerConfig defines how to contact the Anthropic API.
type SummarizerConfig struct {
	Model     string `yaml:"model"`
	APIKey    string `yaml:"apiKey"`
	MaxTokens int    `yaml:"maxTokens"`
	// BatchLimit caps how many pending papers one pass summarizes;
	// 0 means unlimited.
	BatchLimit int `yaml:"batchLimit"`
}

// ReportConfig controls where markdown digests are written.
type ReportConfig struct {
	Dir string `yaml:"dir"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(reportDirEnv); v != "" {
		c.Reports.Dir = v
	}

	if v := os.Getenv(anthropicKeyEnv); v != "" {
		c.Summarizer.APIKey = v
	}

	if v := os.Getenv(anthropicModelEnv); v != "" {
		c.Summarizer.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Storage.Path != "" {
		base.Storage = override.Storage
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if len(override.Keywords.Terms) > 0 {
		base.Keywords.Terms = override.Keywords.Terms
	}
	if override.Keywords.MinMatches > 0 {
		base.Keywords.MinMatches = override.Keywords.MinMatches
	}
	if override.Keywords.CaseSensitive {
		base.Keywords.CaseSensitive = true
	}

	if override.Summarizer.Model != "" {
		base.Summarizer.Model = override.Summarizer.Model
	}
	if override.Summarizer.APIKey != "" {
		base.Summarizer.APIKey = override.Summarizer.APIKey
	}
	if override.Summarizer.MaxTokens > 0 {
		base.Summarizer.MaxTokens = override.Summarizer.MaxTokens
	}
	if override.Summarizer.BatchLimit > 0 {
		base.Summarizer.BatchLimit = override.Summarizer.BatchLimit
	}

	if override.Reports.Dir != "" {
		base.Reports = override.Reports
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Storage:   StorageConfig{Path: "papers.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Sources: []SourceConfig{
			{
				Name:       "arxiv-api",
				Categories: []string{"cs.AI", "cs.LG", "cs.CL"},
				MaxResults: 200,
			},
		},
		Keywords: KeywordConfig{
			Terms:      []string{"large language model", "transformer", "retrieval"},
			MinMatches: 1,
		},
		Summarizer: SummarizerConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		},
		Reports: ReportConfig{Dir: "reports"},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
