// Package summarize turns a batch of posts into a short written
// overview through an OpenAI-compatible chat API.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/glintlabs/glint/internal/post"
)

// Usage counts the tokens a summarization spent.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Summarizer produces an overview of a batch of posts.
type Summarizer interface {
	Summarize(ctx context.Context, posts []post.Post) (string, Usage, error)
}

// buildPrompt flattens posts into the user message, one line per post,
// capped so a huge sweep cannot blow the context window.
func buildPrompt(posts []post.Post, maxPosts int) string {
	if len(posts) > maxPosts {
		posts = posts[len(posts)-maxPosts:]
	}
	var sb strings.Builder
	for _, p := range posts {
		line := p.Content
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		fmt.Fprintf(&sb, "[%s/%s %s] %s\n", p.Platform, p.Source, p.PostedAt.Format("Jan 02 15:04"), strings.TrimSpace(line))
	}
	return sb.String()
}
