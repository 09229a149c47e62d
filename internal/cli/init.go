package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glintlabs/glint/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config directory with an example config",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(path, []byte(exampleConfig))
	if err != nil {
		return err
	}
	if wrote {
		fmt.Printf("Initialized %s.\n", path)
	} else {
		fmt.Printf("Config %s already exists.\n", path)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

const exampleConfig = `# glint configuration
timeframe_days: 1
source_timeout: 90s

platforms:
  telegram:
    api_id_env: GLINT_TG_API_ID
    api_hash_env: GLINT_TG_API_HASH
    session_file: .glint/telegram.session
    sources: []
    # sources:
    #   - "@somechannel"
  rss:
    sources:
      - "https://go.dev/blog/feed.atom"
  reddit:
    sources: []
    # sources:
    #   - golang
  youtube:
    api_key_env: GLINT_YT_API_KEY
    sources: []
  hn:
    min_points: 50
    sources: []
    # sources:
    #   - top

brief:
  format: terminal
  timezone: UTC

summarize:
  enabled: false
  model: gpt-4.1-mini
  api_key_env: GLINT_LLM_API_KEY
  max_tokens: 400

archive:
  enabled: false
  path: .glint/archive.db

privacy:
  redact:
    enabled: false
    patterns: []
`
