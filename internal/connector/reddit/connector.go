// Package reddit ingests public subreddits through the unauthenticated
// JSON listing API. The subreddit name (without the r/ prefix) is the
// source identifier.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/glintlabs/glint/internal/connector"
	"github.com/glintlabs/glint/internal/post"
)

const (
	platformName = "reddit"

	defaultBaseURL = "https://www.reddit.com"
	defaultTimeout = 30 * time.Second
	userAgent      = "glint/1.0"

	// Listing pages carry at most 100 children; unauthenticated clients
	// get roughly one request per second before 429s start.
	pageSize       = 100
	maxPageFetches = 20
	allPageFetches = 100
	requestsPerSec = 1
)

// Options configures the subreddit connector. Zero values pick up
// defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *log.Logger
}

// Connector pages through subreddit listings, pacing requests with a
// token bucket so the public API's unauthenticated quota holds.
type Connector struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	log     *log.Logger
	now     func() time.Time
}

func New(opts Options) *Connector {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Connector{
		client:  &http.Client{Timeout: opts.Timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		log:     logger,
		now:     time.Now,
	}
}

func (c *Connector) Platform() string { return platformName }

// Connect is a no-op: public listings need no credentials.
func (c *Connector) Connect(ctx context.Context) error { return nil }

func (c *Connector) Disconnect() error { return nil }

func (c *Connector) Fetch(ctx context.Context, source string, limit any) ([]post.Post, error) {
	mode, err := connector.ParseLimit(limit)
	if err != nil {
		return nil, err
	}
	if mode.Kind == connector.ModeFromID {
		return nil, fmt.Errorf("reddit: listings have no numeric message ids, %q cannot be served", limit)
	}

	target := mode.N
	maxPages := maxPageFetches
	if mode.Kind == connector.ModeAll {
		target = 0
		maxPages = allPageFetches
	}

	posts, err := c.page(ctx, source, target, maxPages, time.Time{})
	if err != nil {
		c.log.Printf("reddit: r/%s: %v", source, err)
		return []post.Post{}, nil
	}
	if target > 0 && len(posts) > target {
		posts = posts[len(posts)-target:]
	}
	return posts, nil
}

// FetchByTimeframe pages each subreddit back to the cutoff. A lone
// failed source is reported so the caller's tally stays accurate;
// otherwise each subreddit fails alone.
func (c *Connector) FetchByTimeframe(ctx context.Context, sources []string, days int) ([]post.Post, error) {
	cutoff := connector.Cutoff(days, c.now())

	var all []post.Post
	for _, src := range sources {
		posts, err := c.page(ctx, src, 0, allPageFetches, cutoff)
		if err != nil {
			if len(sources) == 1 {
				return nil, err
			}
			c.log.Printf("reddit: r/%s: %v", src, err)
			continue
		}
		all = append(all, posts...)
	}

	post.SortChronological(all)
	return all, nil
}

// page walks the /new listing with after-tokens. Listings come back
// newest first; the loop stops once the target count is reached, the
// cutoff is crossed, the listing ends, or the page cap trips. Partial
// results survive a mid-walk failure.
func (c *Connector) page(ctx context.Context, subreddit string, target, maxPages int, cutoff time.Time) ([]post.Post, error) {
	seen := make(map[string]bool)
	var posts []post.Post
	after := ""

	for fetches := 0; fetches < maxPages; fetches++ {
		listing, err := c.listing(ctx, subreddit, after)
		if err != nil {
			if len(posts) == 0 {
				return nil, err
			}
			c.log.Printf("reddit: r/%s: keeping %d posts after error: %v", subreddit, len(posts), err)
			break
		}

		reachedCutoff := false
		for _, child := range listing.Data.Children {
			p := c.normalize(child.Data, subreddit)
			if !cutoff.IsZero() && p.PostedAt.Before(cutoff) {
				reachedCutoff = true
				continue
			}
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			posts = append(posts, p)
		}

		if reachedCutoff || listing.Data.After == "" {
			break
		}
		if target > 0 && len(posts) >= target {
			break
		}
		after = listing.Data.After
	}

	post.SortChronological(posts)
	return posts, nil
}

func (c *Connector) listing(ctx context.Context, subreddit, after string) (*redditListing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &connector.TransientError{Op: "reddit pacing", Err: err}
	}

	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", c.baseURL, subreddit, pageSize)
	if after != "" {
		url += "&after=" + after
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &connector.TransientError{Op: "fetch r/" + subreddit, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &connector.ResolutionError{Source: subreddit, Reason: "no such subreddit"}
	case http.StatusForbidden:
		return nil, &connector.ResolutionError{Source: subreddit, Reason: "private or banned"}
	case http.StatusTooManyRequests:
		return nil, &connector.RateLimitError{Wait: retryAfter(resp)}
	default:
		return nil, &connector.TransientError{
			Op:  "fetch r/" + subreddit,
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", subreddit, err)
	}
	return &listing, nil
}

func (c *Connector) normalize(p redditPost, subreddit string) post.Post {
	text := p.Title
	if strings.TrimSpace(p.Selftext) != "" {
		text = p.Title + "\n\n" + p.Selftext
	}

	out := post.New(platformName, subreddit, c.baseURL+p.Permalink, text, time.Unix(int64(p.CreatedUTC), 0))
	if isMediaLink(p) {
		out.MediaURLs = append(out.MediaURLs, p.URL)
	}
	if p.LinkFlairText != "" {
		out.Categories = append(out.Categories, p.LinkFlairText)
	}
	out.Metadata["id"] = p.ID
	out.Metadata["score"] = strconv.Itoa(p.Score)
	out.Metadata["num_comments"] = strconv.Itoa(p.NumComments)
	return out
}

func isMediaLink(p redditPost) bool {
	if p.PostHint == "image" || p.IsVideo {
		return true
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".mp4", ".webm"} {
		if strings.HasSuffix(p.URL, ext) {
			return true
		}
	}
	return false
}

func retryAfter(resp *http.Response) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Minute
}

type redditListing struct {
	Data struct {
		After    string        `json:"after"`
		Children []redditChild `json:"children"`
	} `json:"data"`
}

type redditChild struct {
	Data redditPost `json:"data"`
}

type redditPost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	CreatedUTC    float64 `json:"created_utc"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	LinkFlairText string  `json:"link_flair_text"`
	PostHint      string  `json:"post_hint"`
	IsVideo       bool    `json:"is_video"`
}
