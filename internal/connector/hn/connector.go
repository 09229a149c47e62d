// Package hn ingests Hacker News story lists through the Firebase API.
// The list name ("top", "new", or "best") is the source identifier.
package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/glintlabs/glint/internal/connector"
	"github.com/glintlabs/glint/internal/post"
)

const (
	platformName = "hn"

	defaultBaseURL = "https://hacker-news.firebaseio.com/v0"
	defaultTimeout = 30 * time.Second

	// The API caps each list at 500 ids; item lookups fan out over a
	// small worker pool.
	maxStories = 500
	maxWorkers = 5
)

var listEndpoints = map[string]string{
	"top":  "/topstories.json",
	"new":  "/newstories.json",
	"best": "/beststories.json",
}

// Options configures the connector. Zero values pick up defaults.
type Options struct {
	BaseURL   string
	MinPoints int // stories below the threshold are dropped; 0 keeps everything
	Timeout   time.Duration
	Logger    *log.Logger
}

type Connector struct {
	client    *http.Client
	baseURL   string
	minPoints int
	log       *log.Logger
	now       func() time.Time
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
		client:    &http.Client{Timeout: opts.Timeout},
		baseURL:   opts.BaseURL,
		minPoints: opts.MinPoints,
		log:       logger,
		now:       time.Now,
	}
}

func (c *Connector) Platform() string { return platformName }

// Connect is a no-op: the API is public.
func (c *Connector) Connect(ctx context.Context) error { return nil }

func (c *Connector) Disconnect() error { return nil }

// Fetch returns stories from one list. Item ids are a global sequence,
// so the from-id mode keeps only stories newer than that id.
func (c *Connector) Fetch(ctx context.Context, source string, limit any) ([]post.Post, error) {
	mode, err := connector.ParseLimit(limit)
	if err != nil {
		return nil, err
	}

	posts, err := c.fetchList(ctx, source, time.Time{})
	if err != nil {
		if connector.IsResolution(err) || connector.IsTransient(err) {
			c.log.Printf("hn: %s: %v", source, err)
			return []post.Post{}, nil
		}
		return nil, err
	}

	switch mode.Kind {
	case connector.ModeFromID:
		var kept []post.Post
		for _, p := range posts {
			if id, _ := strconv.Atoi(p.Metadata["id"]); id > mode.N {
				kept = append(kept, p)
			}
		}
		posts = kept
	case connector.ModeRecent:
		if len(posts) > mode.N {
			posts = posts[len(posts)-mode.N:]
		}
	}
	return posts, nil
}

// FetchByTimeframe filters each list down to stories newer than the
// cutoff. A lone failed source is reported so the caller's tally stays
// accurate; otherwise each list fails alone.
func (c *Connector) FetchByTimeframe(ctx context.Context, sources []string, days int) ([]post.Post, error) {
	cutoff := connector.Cutoff(days, c.now())

	var all []post.Post
	for _, src := range sources {
		posts, err := c.fetchList(ctx, src, cutoff)
		if err != nil {
			if len(sources) == 1 {
				return nil, err
			}
			c.log.Printf("hn: %s: %v", src, err)
			continue
		}
		all = append(all, posts...)
	}

	post.SortChronological(all)
	return all, nil
}

// fetchList pulls the id list, fans item lookups out over a worker
// pool, and keeps stories above the points threshold and cutoff.
// Individual item failures cost only that story.
func (c *Connector) fetchList(ctx context.Context, list string, cutoff time.Time) ([]post.Post, error) {
	endpoint, ok := listEndpoints[list]
	if !ok {
		return nil, &connector.ResolutionError{Source: list, Reason: "unknown list (want top, new, or best)"}
	}

	ids, err := c.fetchIDs(ctx, endpoint)
	if err != nil {
		return nil, &connector.TransientError{Op: "hn " + list, Err: err}
	}
	if len(ids) > maxStories {
		ids = ids[:maxStories]
	}

	jobs := make(chan int, len(ids))
	results := make(chan *post.Post, len(ids))

	workers := maxWorkers
	if len(ids) < workers {
		workers = len(ids)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				item, err := c.fetchItem(ctx, id)
				if err != nil {
					c.log.Printf("hn: %v", err)
					results <- nil
					continue
				}
				p := c.normalize(item, list, cutoff)
				results <- p
			}
		}()
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var posts []post.Post
	for p := range results {
		if p != nil {
			posts = append(posts, *p)
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PostedAt.Before(posts[j].PostedAt)
	})
	return posts, nil
}

// normalize returns nil for items that are not stories, score too low,
// or older than the cutoff.
func (c *Connector) normalize(item *hnItem, list string, cutoff time.Time) *post.Post {
	if item.Type != "story" || item.Score < c.minPoints {
		return nil
	}
	postedAt := time.Unix(item.Time, 0).UTC()
	if !cutoff.IsZero() && postedAt.Before(cutoff) {
		return nil
	}

	url := item.URL
	if url == "" {
		url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
	}
	p := post.New(platformName, list, url, item.Title, postedAt)
	p.Metadata["id"] = strconv.Itoa(item.ID)
	p.Metadata["score"] = strconv.Itoa(item.Score)
	p.Metadata["by"] = item.By
	p.Metadata["comments"] = strconv.Itoa(item.Descendants)
	return &p
}

type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
	By          string `json:"by"`
}

func (c *Connector) fetchIDs(ctx context.Context, endpoint string) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list: HTTP %d", resp.StatusCode)
	}
	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return ids, nil
}

func (c *Connector) fetchItem(ctx context.Context, id int) (*hnItem, error) {
	url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("item %d: HTTP %d", id, resp.StatusCode)
	}
	var item hnItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	return &item, nil
}
