package digest

import (
	"encoding/json"
	"io"
	"time"
)

type jsonBrief struct {
	Meta     jsonMeta   `json:"meta"`
	Summary  string     `json:"summary,omitempty"`
	Posts    []jsonPost `json:"posts"`
	Failures []string   `json:"failures,omitempty"`
}

type jsonMeta struct {
	Label string `json:"label"`
	Posts int    `json:"posts"`
}

type jsonPost struct {
	Platform   string            `json:"platform"`
	Source     string            `json:"source"`
	URL        string            `json:"url"`
	Content    string            `json:"content"`
	PostedAt   string            `json:"posted_at"`
	MediaURLs  []string          `json:"media_urls,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// JSONRenderer writes a briefing as indented JSON.
type JSONRenderer struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Render(w io.Writer, input Input) error {
	posts := make([]jsonPost, 0, len(input.Posts))
	for _, p := range input.Posts {
		jp := jsonPost{
			Platform:   p.Platform,
			Source:     p.Source,
			URL:        p.URL,
			Content:    p.Content,
			PostedAt:   p.PostedAt.UTC().Format(time.RFC3339),
			MediaURLs:  p.MediaURLs,
			Categories: p.Categories,
			Metadata:   p.Metadata,
		}
		if len(jp.MediaURLs) == 0 {
			jp.MediaURLs = nil
		}
		if len(jp.Categories) == 0 {
			jp.Categories = nil
		}
		if len(jp.Metadata) == 0 {
			jp.Metadata = nil
		}
		posts = append(posts, jp)
	}

	out := jsonBrief{
		Meta:     jsonMeta{Label: input.Label, Posts: len(input.Posts)},
		Summary:  input.Summary,
		Posts:    posts,
		Failures: input.Failures,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
