package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/digest"
)

var (
	scanPlatform string
	scanLimit    string
	scanFormat   string
)

var scanCmd = &cobra.Command{
	Use:   "scan SOURCE",
	Short: "Fetch posts from a single source",
	Long: "scan fetches from one source on one platform. The limit is flexible: " +
		"a positive count takes the newest N posts, a negative number fetches " +
		"everything newer than that message id, and \"-all\" walks the full history.",
	Args: cobra.ExactArgs(1),
	RunE: scanAction,
}

func init() {
	scanCmd.Flags().StringVar(&scanPlatform, "platform", "", "platform of the source (telegram, rss, reddit, youtube)")
	scanCmd.Flags().StringVar(&scanLimit, "limit", "10", `post count, "-<id>" for from-id, or "-all"`)
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "output format: terminal, markdown, json (default from config)")
	_ = scanCmd.MarkFlagRequired("platform")
	rootCmd.AddCommand(scanCmd)
}

func scanAction(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger()
	ctx := cmd.Context()

	eng, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	posts, err := eng.Fetch(ctx, scanPlatform, args[0], scanLimit)
	if err != nil {
		return err
	}

	posts, err = applyRedaction(cfg, posts)
	if err != nil {
		return err
	}

	format := cfg.Brief.Format
	if scanFormat != "" {
		format = scanFormat
	}
	renderer, err := digest.New(format, isTerminal())
	if err != nil {
		return err
	}

	return renderer.Render(os.Stdout, digest.Input{
		Posts: posts,
		Label: fmt.Sprintf("%s/%s, limit %s", scanPlatform, args[0], scanLimit),
	})
}

func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
