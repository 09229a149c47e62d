// Package post defines the canonical record every connector produces.
package post

import (
	"sort"
	"time"
)

// Post is the normalized content record shared by all platforms.
//
// URL acts as the unique key within one (platform, source) pair: two fetches
// of the same logical item must produce equal URLs, and downstream dedup
// reconciles re-fetched items by URL equality, not identity. A Post is built
// once by a connector and never mutated afterwards.
type Post struct {
	Platform   string            // platform tag: "telegram", "rss", "reddit", "youtube"
	Source     string            // source identifier exactly as the caller gave it
	URL        string            // canonical link to the original item
	Content    string            // full text content
	PostedAt   time.Time         // publication timestamp, always UTC
	MediaURLs  []string          // attachment links, never nil (empty = none)
	Categories []string          // tags/topics/hashtags, never nil
	Metadata   map[string]string // opaque platform-specific extras, never nil
}

// New builds a Post with its invariants enforced: the timestamp is converted
// to UTC and nil slices/maps become empty ones.
func New(platform, source, url, content string, postedAt time.Time) Post {
	return Post{
		Platform:   platform,
		Source:     source,
		URL:        url,
		Content:    content,
		PostedAt:   postedAt.UTC(),
		MediaURLs:  []string{},
		Categories: []string{},
		Metadata:   map[string]string{},
	}
}

// SortChronological sorts posts ascending by timestamp in place.
// Every fetch operation returns posts in this order regardless of how the
// platform delivered them.
func SortChronological(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PostedAt.Before(posts[j].PostedAt)
	})
}

// Merge combines per-platform result lists into one chronological narrative.
// Dedup is not applied here: URL uniqueness is only guaranteed within a single
// platform, so cross-platform collisions are left alone.
func Merge(lists ...[]Post) []Post {
	var merged []Post
	for _, l := range lists {
		merged = append(merged, l...)
	}
	SortChronological(merged)
	return merged
}
