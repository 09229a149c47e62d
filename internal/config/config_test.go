package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestYAML(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test yaml: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_TG_ID", "12345")
	t.Setenv("TEST_TG_HASH", "abcdef")
	t.Setenv("TEST_YT_KEY", "yt-key")
	t.Setenv("TEST_LLM_KEY", "sk-secret")

	writeTestYAML(t, dir, DefaultConfigFile, `
timeframe_days: 3
source_timeout: 45s
platforms:
  telegram:
    api_id_env: TEST_TG_ID
    api_hash_env: TEST_TG_HASH
    session_file: .glint/tg.session
    sources:
      - "@test_channel"
  rss:
    sources:
      - "https://example.com/feed.xml"
  reddit:
    sources:
      - golang
  youtube:
    api_key_env: TEST_YT_KEY
    sources:
      - "@somechannel"
brief:
  format: markdown
  timezone: "America/New_York"
summarize:
  enabled: true
  model: gpt-4.1-mini
  api_key_env: TEST_LLM_KEY
  max_tokens: 300
archive:
  enabled: true
  path: custom.db
privacy:
  redact:
    enabled: true
    patterns:
      - "(?i)token"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TimeframeDays != 3 {
		t.Errorf("timeframe_days = %d, want 3", cfg.TimeframeDays)
	}
	if cfg.SourceTimeout.Duration != 45*time.Second {
		t.Errorf("source_timeout = %v, want 45s", cfg.SourceTimeout.Duration)
	}

	tg := cfg.Platforms.Telegram
	if tg.APIID != "12345" || tg.APIHash != "abcdef" {
		t.Errorf("telegram credentials = %q/%q", tg.APIID, tg.APIHash)
	}
	if tg.SessionFile != ".glint/tg.session" {
		t.Errorf("session_file = %q", tg.SessionFile)
	}
	if len(tg.Sources) != 1 || tg.Sources[0] != "@test_channel" {
		t.Errorf("telegram sources = %v", tg.Sources)
	}
	if cfg.Platforms.YouTube.APIKey != "yt-key" {
		t.Errorf("youtube api_key = %q", cfg.Platforms.YouTube.APIKey)
	}

	if cfg.Brief.Format != "markdown" {
		t.Errorf("brief format = %q", cfg.Brief.Format)
	}
	if cfg.Brief.Timezone != "America/New_York" {
		t.Errorf("timezone = %q", cfg.Brief.Timezone)
	}

	if !cfg.Summarize.Enabled || cfg.Summarize.APIKey != "sk-secret" {
		t.Errorf("summarize = %+v", cfg.Summarize)
	}
	if cfg.Summarize.MaxTokens != 300 {
		t.Errorf("max_tokens = %d, want 300", cfg.Summarize.MaxTokens)
	}

	if !cfg.Archive.Enabled || cfg.Archive.Path != "custom.db" {
		t.Errorf("archive = %+v", cfg.Archive)
	}
	if !cfg.Privacy.Redact.Enabled || len(cfg.Privacy.Redact.Patterns) != 1 {
		t.Errorf("redact = %+v", cfg.Privacy.Redact)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
platforms:
  rss:
    sources:
      - "https://example.com/feed.xml"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TimeframeDays != DefaultTimeframeDays {
		t.Errorf("timeframe_days = %d, want default %d", cfg.TimeframeDays, DefaultTimeframeDays)
	}
	if cfg.SourceTimeout.Duration != DefaultSourceTimeout {
		t.Errorf("source_timeout = %v, want default %v", cfg.SourceTimeout.Duration, DefaultSourceTimeout)
	}
	if cfg.Platforms.Telegram.SessionFile != DefaultSessionFile {
		t.Errorf("session_file = %q, want default", cfg.Platforms.Telegram.SessionFile)
	}
	if cfg.Brief.Format != DefaultBriefFormat {
		t.Errorf("brief format = %q, want default", cfg.Brief.Format)
	}
	if cfg.Brief.Timezone != DefaultTimezone {
		t.Errorf("timezone = %q, want default", cfg.Brief.Timezone)
	}
	if cfg.Archive.Path != DefaultArchivePath {
		t.Errorf("archive path = %q, want default", cfg.Archive.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("want error for missing config file")
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	if _, err := Load("  "); err == nil {
		t.Fatal("want error for blank dir")
	}
}

func TestLoad_NoSources(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
brief:
  format: terminal
`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "at least one source") {
		t.Fatalf("err = %v, want source validation failure", err)
	}
}

func TestLoad_BadTimezone(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
platforms:
  reddit:
    sources: [golang]
brief:
  timezone: "Mars/Olympus_Mons"
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("want error for unknown timezone")
	}
}

func TestLoad_BadFormat(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
platforms:
  reddit:
    sources: [golang]
brief:
  format: pdf
`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "brief.format") {
		t.Fatalf("err = %v, want format validation failure", err)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
source_timeout: "soon"
platforms:
  reddit:
    sources: [golang]
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("want error for unparseable duration")
	}
}

func TestLoad_NegativeTimeframe(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
timeframe_days: -2
platforms:
  reddit:
    sources: [golang]
`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "timeframe_days") {
		t.Fatalf("err = %v, want timeframe validation failure", err)
	}
}

func TestLoad_SummarizeEnabledNeedsModel(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
platforms:
  reddit:
    sources: [golang]
summarize:
  enabled: true
`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "summarize.model") {
		t.Fatalf("err = %v, want model validation failure", err)
	}
}

func TestLoad_BadHNList(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
platforms:
  hn:
    sources: [top, hottest]
`)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "platforms.hn.sources") {
		t.Fatalf("err = %v, want hn list validation failure", err)
	}
}

func TestSources_SkipsEmptyPlatforms(t *testing.T) {
	cfg := &Config{}
	cfg.Platforms.RSS.Sources = []string{"https://example.com/feed.xml"}
	cfg.Platforms.Reddit.Sources = []string{"golang", "devops"}

	got := cfg.Sources()
	if len(got) != 2 {
		t.Fatalf("got %d platforms, want 2", len(got))
	}
	if len(got["reddit"]) != 2 {
		t.Errorf("reddit sources = %v", got["reddit"])
	}
	if _, ok := got["telegram"]; ok {
		t.Error("telegram must be absent when unconfigured")
	}
}
