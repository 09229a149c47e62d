package cli

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/glintlabs/glint/internal/config"
)

func loadTestConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestBuildEngine_RegistersConfiguredPlatforms(t *testing.T) {
	cfg := loadTestConfig(t, `
platforms:
  rss:
    sources:
      - "https://example.com/feed.xml"
  reddit:
    sources:
      - golang
`)
	eng, err := buildEngine(context.Background(), cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	defer eng.Close()

	platforms := eng.Platforms()
	if len(platforms) != 2 {
		t.Fatalf("platforms = %v, want rss and reddit", platforms)
	}
	for _, p := range platforms {
		if p != "rss" && p != "reddit" {
			t.Errorf("unexpected platform %q", p)
		}
	}
}

func TestBuildEngine_SkipsPlatformWithBadCredentials(t *testing.T) {
	// YouTube has no API key, so only the feed platform should survive.
	cfg := loadTestConfig(t, `
platforms:
  rss:
    sources:
      - "https://example.com/feed.xml"
  youtube:
    sources:
      - "@somechannel"
`)
	eng, err := buildEngine(context.Background(), cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	defer eng.Close()

	platforms := eng.Platforms()
	if len(platforms) != 1 || platforms[0] != "rss" {
		t.Errorf("platforms = %v, want only rss", platforms)
	}
}

func TestBuildEngine_NothingConnects(t *testing.T) {
	cfg := loadTestConfig(t, `
platforms:
  youtube:
    sources:
      - "@somechannel"
`)
	if _, err := buildEngine(context.Background(), cfg, log.New(io.Discard, "", 0)); err == nil {
		t.Fatal("want error when no platform connects")
	}
}

func TestInit_WritesExampleConfig(t *testing.T) {
	old := configDir
	configDir = filepath.Join(t.TempDir(), "cfgdir")
	t.Cleanup(func() { configDir = old })

	if err := initAction(nil, nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(configDir, config.DefaultConfigFile)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	// Second run must not overwrite.
	if err := os.WriteFile(path, []byte("timeframe_days: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := initAction(nil, nil); err != nil {
		t.Fatalf("second init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "timeframe_days: 9\n" {
		t.Error("init must not overwrite an existing config")
	}
}

func TestTimeframeLabel(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "since the start of today"},
		{1, "last 1 day"},
		{7, "last 7 days"},
	}
	for _, tt := range tests {
		if got := timeframeLabel(tt.days); got != tt.want {
			t.Errorf("timeframeLabel(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
