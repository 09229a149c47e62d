// Package rss ingests syndication feeds (RSS and Atom) through gofeed.
// The feed URL itself is the source identifier.
package rss

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/glintlabs/glint/internal/connector"
	"github.com/glintlabs/glint/internal/post"
)

const (
	platformName   = "rss"
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
	userAgent      = "Mozilla/5.0 (compatible; glint/1.0; +https://github.com/glintlabs/glint)"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s{3,}`)
)

// Options configures the feed connector. Zero values pick up defaults.
type Options struct {
	Timeout time.Duration
	Retries int
	Logger  *log.Logger
}

// Connector fetches feed items and normalizes them into posts. Feeds are
// public, so Connect only builds the HTTP client.
type Connector struct {
	parser *gofeed.Parser
	log    *log.Logger

	retries int
	sleep   func(time.Duration)
	now     func() time.Time
}

func New(opts Options) *Connector {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	fp := gofeed.NewParser()
	fp.Client = &http.Client{
		Timeout:   opts.Timeout,
		Transport: &uaTransport{base: http.DefaultTransport},
	}

	return &Connector{
		parser:  fp,
		log:     logger,
		retries: opts.Retries,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

func (c *Connector) Platform() string { return platformName }

// Connect is a no-op: feeds need no credentials or session state.
func (c *Connector) Connect(ctx context.Context) error { return nil }

func (c *Connector) Disconnect() error { return nil }

func (c *Connector) Fetch(ctx context.Context, source string, limit any) ([]post.Post, error) {
	mode, err := connector.ParseLimit(limit)
	if err != nil {
		return nil, err
	}
	if mode.Kind == connector.ModeFromID {
		return nil, fmt.Errorf("rss: feeds have no message ids, %q cannot be served", limit)
	}

	feed, err := c.parseWithRetry(ctx, source)
	if err != nil {
		c.log.Printf("rss: %s: %v", source, err)
		return []post.Post{}, nil
	}

	posts := c.normalize(feed, source, time.Time{})
	if mode.Kind == connector.ModeRecent && len(posts) > mode.N {
		posts = posts[len(posts)-mode.N:]
	}
	return posts, nil
}

// FetchByTimeframe walks each feed and keeps items newer than the cutoff.
// With several sources a broken feed only costs its own items; a lone
// failed source is reported so the caller's tally stays accurate.
func (c *Connector) FetchByTimeframe(ctx context.Context, sources []string, days int) ([]post.Post, error) {
	cutoff := connector.Cutoff(days, c.now())

	var all []post.Post
	for _, src := range sources {
		feed, err := c.parseWithRetry(ctx, src)
		if err != nil {
			if len(sources) == 1 {
				return nil, err
			}
			c.log.Printf("rss: %s: %v", src, err)
			continue
		}
		all = append(all, c.normalize(feed, src, cutoff)...)
	}

	post.SortChronological(all)
	return all, nil
}

func (c *Connector) parseWithRetry(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err == nil {
			return feed, nil
		}
		if !retryable(err) {
			return nil, classify(feedURL, err)
		}
		lastErr = err
		if attempt < c.retries-1 {
			c.sleep(time.Duration(1<<uint(attempt)) * time.Second) // 1s, 2s, 4s
		}
	}
	return nil, classify(feedURL, lastErr)
}

// normalize converts feed items to posts, oldest first. Items without a
// usable timestamp or link are dropped; duplicates share a link and are
// kept once.
func (c *Connector) normalize(feed *gofeed.Feed, feedURL string, cutoff time.Time) []post.Post {
	seen := make(map[string]bool)
	var posts []post.Post
	for _, item := range feed.Items {
		postedAt := publishedTime(item)
		if postedAt.IsZero() || postedAt.Before(cutoff) {
			continue
		}
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		p := post.New(platformName, feedURL, link, itemText(item), postedAt)
		for _, enc := range item.Enclosures {
			if enc.URL != "" {
				p.MediaURLs = append(p.MediaURLs, enc.URL)
			}
		}
		p.Categories = append(p.Categories, item.Categories...)
		if feed.Title != "" {
			p.Metadata["feed_title"] = feed.Title
		}
		if item.GUID != "" {
			p.Metadata["guid"] = item.GUID
		}
		posts = append(posts, p)
	}

	post.SortChronological(posts)
	return posts
}

// uaTransport injects a User-Agent header into every request.
type uaTransport struct {
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "timeout") || strings.Contains(s, "Timeout") {
		return true
	}
	if strings.Contains(s, "connection refused") || strings.Contains(s, "no such host") {
		return true
	}
	// Rate limiting and server-side failures are worth another attempt.
	if strings.Contains(s, "429") || strings.Contains(s, "500") ||
		strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "504") {
		return true
	}
	return false
}

// classify maps a fetch failure onto the shared error taxonomy: a feed
// that cannot be found or parsed is a bad source, everything else is
// assumed transient.
func classify(feedURL string, err error) error {
	if err == nil {
		return nil
	}
	s := err.Error()
	if strings.Contains(s, "404") || errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return &connector.ResolutionError{Source: feedURL, Reason: "not a feed"}
	}
	return &connector.TransientError{Op: "fetch " + feedURL, Err: err}
}

func publishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

func itemText(item *gofeed.Item) string {
	raw := item.Content
	if raw == "" {
		raw = item.Description
	}
	text := stripHTML(raw)
	if item.Title != "" && !strings.Contains(text, item.Title) {
		if text == "" {
			text = item.Title
		} else {
			text = item.Title + "\n\n" + text
		}
	}
	return strings.TrimSpace(text)
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
