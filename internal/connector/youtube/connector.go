// Package youtube ingests channel uploads through the YouTube Data API.
// A channel handle ("@name") or channel id is the source identifier.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/glintlabs/glint/internal/connector"
	"github.com/glintlabs/glint/internal/post"
)

const (
	platformName = "youtube"

	// The Data API serves at most 50 playlist items per page.
	pageSize       = 50
	maxPageFetches = 20
	allPageFetches = 100
)

// Options configures the connector. An API key is required.
type Options struct {
	APIKey string
	Logger *log.Logger
}

type Connector struct {
	opts Options
	api  API
	log  *log.Logger

	dial func(ctx context.Context, apiKey string) (API, error)
	now  func() time.Time
}

func New(opts Options) *Connector {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Connector{
		opts: opts,
		log:  logger,
		dial: dialDataAPI,
		now:  time.Now,
	}
}

func (c *Connector) Platform() string { return platformName }

func (c *Connector) Connect(ctx context.Context) error {
	if c.opts.APIKey == "" {
		return &connector.SetupError{Platform: platformName, Reason: "missing api key"}
	}
	api, err := c.dial(ctx, c.opts.APIKey)
	if err != nil {
		return err
	}
	c.api = api
	return nil
}

func (c *Connector) Disconnect() error {
	c.api = nil
	return nil
}

func (c *Connector) Fetch(ctx context.Context, source string, limit any) ([]post.Post, error) {
	mode, err := connector.ParseLimit(limit)
	if err != nil {
		return nil, err
	}
	if mode.Kind == connector.ModeFromID {
		return nil, fmt.Errorf("youtube: uploads have no numeric message ids, %q cannot be served", limit)
	}
	if c.api == nil {
		return nil, errors.New("youtube: not connected")
	}

	target := mode.N
	maxPages := maxPageFetches
	if mode.Kind == connector.ModeAll {
		target = 0
		maxPages = allPageFetches
	}

	posts, err := c.page(ctx, source, target, maxPages, time.Time{})
	if err != nil {
		c.log.Printf("youtube: %s: %v", source, err)
		return []post.Post{}, nil
	}
	if target > 0 && len(posts) > target {
		posts = posts[len(posts)-target:]
	}
	return posts, nil
}

// FetchByTimeframe pages each channel's uploads back to the cutoff.
// A lone failed source is reported so the caller's tally stays
// accurate; otherwise each channel fails alone.
func (c *Connector) FetchByTimeframe(ctx context.Context, sources []string, days int) ([]post.Post, error) {
	if c.api == nil {
		return nil, errors.New("youtube: not connected")
	}
	cutoff := connector.Cutoff(days, c.now())

	var all []post.Post
	for _, src := range sources {
		posts, err := c.page(ctx, src, 0, allPageFetches, cutoff)
		if err != nil {
			if len(sources) == 1 {
				return nil, err
			}
			c.log.Printf("youtube: %s: %v", src, err)
			continue
		}
		all = append(all, posts...)
	}

	post.SortChronological(all)
	return all, nil
}

// page walks the uploads playlist, newest first, stopping at the target
// count, the cutoff, the playlist end, or the page cap. Partial results
// survive a mid-walk failure; a channel that cannot be resolved yields
// the resolution error for the caller to absorb or report.
func (c *Connector) page(ctx context.Context, source string, target, maxPages int, cutoff time.Time) ([]post.Post, error) {
	ch, err := c.api.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var posts []post.Post
	token := ""

	for fetches := 0; fetches < maxPages; fetches++ {
		videos, next, err := c.api.Uploads(ctx, ch.UploadsPlaylist, token)
		if err != nil {
			var rl *connector.RateLimitError
			if errors.As(err, &rl) {
				return nil, err // daily quota, waiting it out is pointless here
			}
			if len(posts) == 0 {
				return nil, err
			}
			c.log.Printf("youtube: %s: keeping %d posts after error: %v", source, len(posts), err)
			break
		}

		reachedCutoff := false
		for _, v := range videos {
			if !cutoff.IsZero() && v.PublishedAt.Before(cutoff) {
				reachedCutoff = true
				continue
			}
			p := normalize(v, source, ch.Title)
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			posts = append(posts, p)
		}

		if reachedCutoff || next == "" {
			break
		}
		if target > 0 && len(posts) >= target {
			break
		}
		token = next
	}

	post.SortChronological(posts)
	return posts, nil
}

func normalize(v Video, source, channelTitle string) post.Post {
	content := v.Title
	if v.Description != "" {
		content = v.Title + "\n\n" + v.Description
	}
	p := post.New(platformName, source, "https://www.youtube.com/watch?v="+v.ID, content, v.PublishedAt)
	if v.Thumbnail != "" {
		p.MediaURLs = append(p.MediaURLs, v.Thumbnail)
	}
	p.Metadata["video_id"] = v.ID
	if channelTitle != "" {
		p.Metadata["channel_title"] = channelTitle
	}
	return p
}
