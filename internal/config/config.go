package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile    = "config.yaml"
	DefaultSessionFile   = ".glint/telegram.session"
	DefaultArchivePath   = ".glint/archive.db"
	DefaultTimeframeDays = 1
	DefaultSourceTimeout = 90 * time.Second
	DefaultTimezone      = "UTC"
	DefaultBriefFormat   = "terminal"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	TimeframeDays int             `yaml:"timeframe_days"`
	SourceTimeout Duration        `yaml:"source_timeout"`
	Platforms     PlatformsConfig `yaml:"platforms"`
	Brief         BriefConfig     `yaml:"brief"`
	Summarize     SummarizeConfig `yaml:"summarize"`
	Archive       ArchiveConfig   `yaml:"archive"`
	Privacy       PrivacyConfig   `yaml:"privacy"`
}

type PlatformsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	RSS      RSSConfig      `yaml:"rss"`
	Reddit   RedditConfig   `yaml:"reddit"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	HN       HNConfig       `yaml:"hn"`
}

type TelegramConfig struct {
	APIIDEnv    string   `yaml:"api_id_env"`
	APIHashEnv  string   `yaml:"api_hash_env"`
	SessionFile string   `yaml:"session_file"`
	Sources     []string `yaml:"sources"`

	// Resolved from env vars at load time.
	APIID   string `yaml:"-"`
	APIHash string `yaml:"-"`
}

type RSSConfig struct {
	Sources []string `yaml:"sources"`
}

type RedditConfig struct {
	Sources []string `yaml:"sources"`
}

type YouTubeConfig struct {
	APIKeyEnv string   `yaml:"api_key_env"`
	Sources   []string `yaml:"sources"`

	// Resolved from env var at load time.
	APIKey string `yaml:"-"`
}

type HNConfig struct {
	MinPoints int      `yaml:"min_points"`
	Sources   []string `yaml:"sources"`
}

type BriefConfig struct {
	Format   string `yaml:"format"`
	Timezone string `yaml:"timezone"`
}

type SummarizeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxTokens int    `yaml:"max_tokens"`

	// Resolved from env var at load time.
	APIKey string `yaml:"-"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type PrivacyConfig struct {
	Redact RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars,
// and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Sources maps each configured platform to its source list, skipping
// platforms with nothing configured.
func (c *Config) Sources() map[string][]string {
	out := make(map[string][]string)
	if len(c.Platforms.Telegram.Sources) > 0 {
		out["telegram"] = c.Platforms.Telegram.Sources
	}
	if len(c.Platforms.RSS.Sources) > 0 {
		out["rss"] = c.Platforms.RSS.Sources
	}
	if len(c.Platforms.Reddit.Sources) > 0 {
		out["reddit"] = c.Platforms.Reddit.Sources
	}
	if len(c.Platforms.YouTube.Sources) > 0 {
		out["youtube"] = c.Platforms.YouTube.Sources
	}
	if len(c.Platforms.HN.Sources) > 0 {
		out["hn"] = c.Platforms.HN.Sources
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.TimeframeDays == 0 {
		cfg.TimeframeDays = DefaultTimeframeDays
	}
	if cfg.SourceTimeout.Duration == 0 {
		cfg.SourceTimeout.Duration = DefaultSourceTimeout
	}
	if cfg.Platforms.Telegram.SessionFile == "" {
		cfg.Platforms.Telegram.SessionFile = DefaultSessionFile
	}
	if cfg.Brief.Format == "" {
		cfg.Brief.Format = DefaultBriefFormat
	}
	if cfg.Brief.Timezone == "" {
		cfg.Brief.Timezone = DefaultTimezone
	}
	if cfg.Archive.Path == "" {
		cfg.Archive.Path = DefaultArchivePath
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Platforms.Telegram.APIIDEnv != "" {
		cfg.Platforms.Telegram.APIID = os.Getenv(cfg.Platforms.Telegram.APIIDEnv)
	}
	if cfg.Platforms.Telegram.APIHashEnv != "" {
		cfg.Platforms.Telegram.APIHash = os.Getenv(cfg.Platforms.Telegram.APIHashEnv)
	}
	if cfg.Platforms.YouTube.APIKeyEnv != "" {
		cfg.Platforms.YouTube.APIKey = os.Getenv(cfg.Platforms.YouTube.APIKeyEnv)
	}
	if cfg.Summarize.APIKeyEnv != "" {
		cfg.Summarize.APIKey = os.Getenv(cfg.Summarize.APIKeyEnv)
	}
}

func validate(cfg *Config) error {
	if len(cfg.Sources()) == 0 {
		return errors.New("platforms: at least one source must be configured")
	}
	if cfg.TimeframeDays < 0 {
		return fmt.Errorf("timeframe_days: must not be negative, got %d", cfg.TimeframeDays)
	}

	if _, err := time.LoadLocation(cfg.Brief.Timezone); err != nil {
		return fmt.Errorf("brief.timezone: %w", err)
	}

	switch cfg.Brief.Format {
	case "terminal", "markdown", "json":
		// valid
	default:
		return fmt.Errorf("brief.format: unknown format %q (want terminal, markdown, or json)", cfg.Brief.Format)
	}

	for _, list := range cfg.Platforms.HN.Sources {
		switch list {
		case "top", "new", "best":
		default:
			return fmt.Errorf("platforms.hn.sources: unknown list %q (want top, new, or best)", list)
		}
	}
	if cfg.Platforms.HN.MinPoints < 0 {
		return fmt.Errorf("platforms.hn.min_points: must not be negative, got %d", cfg.Platforms.HN.MinPoints)
	}

	if cfg.Summarize.Enabled && cfg.Summarize.Model == "" {
		return errors.New("summarize.model: required when summarize is enabled")
	}

	for _, p := range cfg.Privacy.Redact.Patterns {
		if strings.TrimSpace(p) == "" {
			return errors.New("privacy.redact.patterns: empty pattern")
		}
	}

	return nil
}
