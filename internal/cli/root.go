// Package cli provides the command-line interface for glint.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir = ".glint"

var rootCmd = &cobra.Command{
	Use:   "glint",
	Short: "Pull posts from many platforms into one chronological brief",
	Long: "glint connects to Telegram channels, RSS feeds, subreddits, and YouTube " +
		"channels, normalizes everything into one post format, and renders a " +
		"chronological brief.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("glint %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".glint", "config directory")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
