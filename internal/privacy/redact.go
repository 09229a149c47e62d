// Package privacy scrubs sensitive fragments from post content before
// it is rendered or exported.
package privacy

import (
	"fmt"
	"regexp"

	"github.com/glintlabs/glint/internal/post"
)

const redactedPlaceholder = "[REDACTED]"

// Redactor replaces matches of its patterns with a placeholder.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles a list of regex pattern strings into a Redactor.
// Returns an error if any pattern is invalid.
func New(patterns []string) (*Redactor, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &Redactor{patterns: compiled}, nil
}

// Redact replaces all matches in text with [REDACTED].
func (r *Redactor) Redact(text string) string {
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

// RedactPosts scrubs the content of every post in place and returns the
// slice for chaining. URLs and metadata stay untouched.
func (r *Redactor) RedactPosts(posts []post.Post) []post.Post {
	if len(r.patterns) == 0 {
		return posts
	}
	for i := range posts {
		posts[i].Content = r.Redact(posts[i].Content)
	}
	return posts
}
