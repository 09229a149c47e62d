// Package digest renders a merged batch of posts as a briefing, in
// terminal, Markdown, or JSON form.
package digest

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/glintlabs/glint/internal/post"
)

// Input is the full input for a briefing renderer. Posts are expected
// in chronological order.
type Input struct {
	Posts    []post.Post
	Label    string         // human description of the window, e.g. "last 3 days"
	Location *time.Location // timezone for displayed timestamps; nil means UTC
	Summary  string         // optional model-written overview
	Failures []string       // sources that produced nothing, as "platform/source: reason"
}

// Renderer writes a formatted briefing to w.
type Renderer interface {
	Render(w io.Writer, input Input) error
}

// New returns the renderer for a format name.
func New(format string, color bool) (Renderer, error) {
	switch format {
	case "terminal":
		return NewTerminal(color), nil
	case "markdown":
		return NewMarkdown(), nil
	case "json":
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("digest: unknown format %q", format)
	}
}

func (in Input) location() *time.Location {
	if in.Location != nil {
		return in.Location
	}
	return time.UTC
}

// byPlatform splits posts per platform, keeping each group's
// chronological order. Platform names come back sorted.
func byPlatform(posts []post.Post) ([]string, map[string][]post.Post) {
	groups := make(map[string][]post.Post)
	for _, p := range posts {
		groups[p.Platform] = append(groups[p.Platform], p)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, groups
}

// snippet collapses content to a single line of at most max runes.
func snippet(content string, max int) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > max {
		return strings.TrimSpace(string(runes[:max-1])) + "…"
	}
	return line
}
