package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glintlabs/glint/internal/archive"
	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/digest"
	"github.com/glintlabs/glint/internal/post"
	"github.com/glintlabs/glint/internal/privacy"
	"github.com/glintlabs/glint/internal/summarize"
)

var (
	briefDays   int
	briefFormat string
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Sweep all configured sources and render a brief",
	Long: "brief fetches everything newer than the timeframe from every configured " +
		"source, merges the posts chronologically, and renders them. Zero days " +
		"means since the start of today (UTC).",
	RunE: briefAction,
}

func init() {
	briefCmd.Flags().IntVar(&briefDays, "days", -1, "timeframe in days (default from config)")
	briefCmd.Flags().StringVar(&briefFormat, "format", "", "output format: terminal, markdown, json (default from config)")
	rootCmd.AddCommand(briefCmd)
}

func briefAction(cmd *cobra.Command, _ []string) error {
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

	days := cfg.TimeframeDays
	if briefDays >= 0 {
		days = briefDays
	}

	posts, report := eng.Sweep(ctx, cfg.Sources(), days)
	logger.Printf("sweep: %d sources succeeded, %d failed, %d posts", report.Succeeded, report.Failed, len(posts))

	posts, err = applyRedaction(cfg, posts)
	if err != nil {
		return err
	}

	summary := ""
	if cfg.Summarize.Enabled && len(posts) > 0 {
		summary = runSummarizer(ctx, cfg, posts, logger)
	}

	if cfg.Archive.Enabled {
		if err := exportArchive(ctx, cfg, posts, logger); err != nil {
			return err
		}
	}

	format := cfg.Brief.Format
	if briefFormat != "" {
		format = briefFormat
	}
	renderer, err := digest.New(format, isTerminal())
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Brief.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	failures := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, fmt.Sprintf("%s/%s: %s", f.Platform, f.Source, f.Reason))
	}

	return renderer.Render(os.Stdout, digest.Input{
		Posts:    posts,
		Label:    timeframeLabel(days),
		Location: loc,
		Summary:  summary,
		Failures: failures,
	})
}

func timeframeLabel(days int) string {
	switch days {
	case 0:
		return "since the start of today"
	case 1:
		return "last 1 day"
	default:
		return fmt.Sprintf("last %d days", days)
	}
}

func applyRedaction(cfg *config.Config, posts []post.Post) ([]post.Post, error) {
	if !cfg.Privacy.Redact.Enabled || len(cfg.Privacy.Redact.Patterns) == 0 {
		return posts, nil
	}
	r, err := privacy.New(cfg.Privacy.Redact.Patterns)
	if err != nil {
		return nil, fmt.Errorf("compile redact patterns: %w", err)
	}
	return r.RedactPosts(posts), nil
}

// runSummarizer is best-effort: a brief without an overview beats no
// brief at all.
func runSummarizer(ctx context.Context, cfg *config.Config, posts []post.Post, logger *log.Logger) string {
	client, err := summarize.New(summarize.Options{
		APIKey:    cfg.Summarize.APIKey,
		Model:     cfg.Summarize.Model,
		BaseURL:   cfg.Summarize.BaseURL,
		MaxTokens: cfg.Summarize.MaxTokens,
	})
	if err != nil {
		logger.Printf("warning: summarize: %v", err)
		return ""
	}
	text, usage, err := client.Summarize(ctx, posts)
	if err != nil {
		logger.Printf("warning: summarize: %v", err)
		return ""
	}
	logger.Printf("summarize: %d prompt + %d completion tokens", usage.PromptTokens, usage.CompletionTokens)
	return text
}

func exportArchive(ctx context.Context, cfg *config.Config, posts []post.Post, logger *log.Logger) error {
	a, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = a.Close() }()

	n, err := a.Export(ctx, posts)
	if err != nil {
		return fmt.Errorf("export archive: %w", err)
	}
	logger.Printf("archive: %d new posts written to %s", n, cfg.Archive.Path)
	return nil
}
