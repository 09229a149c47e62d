package digest

import (
	"fmt"
	"io"
)

// MarkdownRenderer writes a briefing as Markdown.
type MarkdownRenderer struct{}

// NewMarkdown creates a Markdown renderer.
func NewMarkdown() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

func (r *MarkdownRenderer) Render(w io.Writer, input Input) error {
	fmt.Fprintf(w, "# glint brief\n\n")
	fmt.Fprintf(w, "%d posts, %s\n\n", len(input.Posts), input.Label)

	if len(input.Posts) == 0 {
		fmt.Fprintln(w, "No posts found.")
	}

	if input.Summary != "" {
		fmt.Fprintf(w, "## Overview\n\n%s\n\n", input.Summary)
	}

	loc := input.location()
	names, groups := byPlatform(input.Posts)
	for _, name := range names {
		posts := groups[name]
		fmt.Fprintf(w, "## %s (%d)\n\n", name, len(posts))
		for _, p := range posts {
			stamp := p.PostedAt.In(loc).Format("Jan 02 15:04")
			line := snippet(p.Content, 100)
			if p.URL != "" {
				fmt.Fprintf(w, "- **%s** %s — [%s](%s)\n", stamp, p.Source, line, p.URL)
			} else {
				fmt.Fprintf(w, "- **%s** %s — %s\n", stamp, p.Source, line)
			}
		}
		fmt.Fprintln(w)
	}

	if len(input.Failures) > 0 {
		fmt.Fprintf(w, "*%d source(s) failed:*\n\n", len(input.Failures))
		for _, f := range input.Failures {
			fmt.Fprintf(w, "- %s\n", f)
		}
	}

	return nil
}
