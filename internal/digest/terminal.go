package digest

import (
	"fmt"
	"io"
)

// TerminalRenderer writes a briefing for terminal output.
type TerminalRenderer struct {
	color bool
}

// NewTerminal creates a terminal renderer. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalRenderer {
	return &TerminalRenderer{color: color}
}

func (r *TerminalRenderer) Render(w io.Writer, input Input) error {
	header := fmt.Sprintf("glint — %d posts, %s", len(input.Posts), input.Label)
	fmt.Fprintln(w, r.bold(header))
	fmt.Fprintln(w)

	if len(input.Posts) == 0 {
		fmt.Fprintln(w, "No posts found.")
	}

	if input.Summary != "" {
		fmt.Fprintln(w, r.bold("--- Overview ---"))
		fmt.Fprintln(w)
		fmt.Fprintln(w, input.Summary)
		fmt.Fprintln(w)
	}

	loc := input.location()
	names, groups := byPlatform(input.Posts)
	for _, name := range names {
		posts := groups[name]
		fmt.Fprintln(w, r.bold(fmt.Sprintf("--- %s (%d) ---", name, len(posts))))
		fmt.Fprintln(w)
		for _, p := range posts {
			stamp := p.PostedAt.In(loc).Format("Jan 02 15:04")
			fmt.Fprintf(w, "  %s  %s — %s\n", r.dim(stamp), p.Source, snippet(p.Content, 100))
			if p.URL != "" {
				fmt.Fprintf(w, "      %s\n", r.dim(p.URL))
			}
			if len(p.MediaURLs) > 0 {
				fmt.Fprintf(w, "      %s\n", r.dim(fmt.Sprintf("%d attachment(s)", len(p.MediaURLs))))
			}
		}
		fmt.Fprintln(w)
	}

	if len(input.Failures) > 0 {
		fmt.Fprintln(w, r.yellow(fmt.Sprintf("%d source(s) failed:", len(input.Failures))))
		for _, f := range input.Failures {
			fmt.Fprintf(w, "  %s\n", r.dim(f))
		}
	}

	return nil
}

// ANSI helpers — no-op when color=false.

func (r *TerminalRenderer) bold(s string) string {
	if !r.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (r *TerminalRenderer) yellow(s string) string {
	if !r.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (r *TerminalRenderer) dim(s string) string {
	if !r.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
