// Package telegram implements the chat-broadcast connector: throttled,
// paginated retrieval of channel messages and their synthesis into unified
// posts.
package telegram

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/glintlabs/glint/internal/connector"
	"github.com/glintlabs/glint/internal/post"
)

const (
	platformName = "telegram"

	fetchChunkSize = 100
	maxPageFetches = 20  // per recent/from-id fetch; caps pathological sources
	allPageFetches = 400 // full-history fetches page much deeper

	defaultThreshold = 15
	defaultCooldown  = 30 * time.Second
)

// Options configures the connector. Threshold and Cooldown default to the
// platform-safe values when zero.
type Options struct {
	APIID       int
	APIHash     string
	SessionFile string
	Threshold   int
	Cooldown    time.Duration
	Logger      *log.Logger
}

// Connector fetches posts from broadcast channels. One instance must be
// used single-flight: the throttle counter is unsynchronized mutable state
// and the orchestrator awaits each call to completion before issuing the
// next.
type Connector struct {
	opts     Options
	client   Client
	throttle *throttle
	log      *log.Logger

	// dial and now are swapped out in tests.
	dial func(ctx context.Context, opts Options) (Client, error)
	now  func() time.Time
}

// New creates a Telegram connector. Credentials are validated in Connect.
func New(opts Options) *Connector {
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = defaultCooldown
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "", log.LstdFlags)
	}
	return &Connector{
		opts:     opts,
		throttle: newThrottle(opts.Threshold, opts.Cooldown, opts.Logger),
		log:      opts.Logger,
		dial: func(ctx context.Context, opts Options) (Client, error) {
			return DialMTProto(ctx, opts.APIID, opts.APIHash, opts.SessionFile)
		},
		now: time.Now,
	}
}

// Platform returns "telegram".
func (c *Connector) Platform() string { return platformName }

// Connect validates credentials and dials the platform. A client without
// prior authorization surfaces as connector.ErrAuthRequired; the caller
// resolves the login through its own channel.
func (c *Connector) Connect(ctx context.Context) error {
	if c.opts.APIID == 0 || c.opts.APIHash == "" {
		return &connector.SetupError{Platform: platformName, Reason: "missing api id or api hash"}
	}

	client, err := c.dial(ctx, c.opts)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// Disconnect releases the platform client. Safe to call twice.
func (c *Connector) Disconnect() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Fetch returns the latest posts from one channel. The limit parameter is
// overloaded (see connector.ParseLimit); an invalid limit is the only
// source-independent failure this method reports. Source-level problems are
// absorbed: the result is simply empty or partial.
func (c *Connector) Fetch(ctx context.Context, source string, limit any) ([]post.Post, error) {
	mode, err := connector.ParseLimit(limit)
	if err != nil {
		return nil, err
	}
	if c.client == nil {
		return nil, errors.New("telegram: not connected")
	}

	// Full-history fetches legitimately take far longer than a recent
	// window, so the deadline scales with the mode.
	ctx, cancel := context.WithTimeout(ctx, c.timeoutFor(mode))
	defer cancel()

	posts := c.fetchPosts(ctx, source, mode)
	return posts, nil
}

// timeoutFor scales the fetch deadline with the mode: All >> FromID > Recent.
func (c *Connector) timeoutFor(mode connector.Mode) time.Duration {
	switch mode.Kind {
	case connector.ModeAll:
		return c.opts.Cooldown * 10
	case connector.ModeFromID:
		return c.opts.Cooldown * 3
	default:
		return c.opts.Cooldown * 2
	}
}

// fetchPosts runs the paginate → synthesize → dedup → sort pipeline for one
// channel. An unresolvable channel yields an empty result; a transient error
// mid-loop keeps whatever was accumulated.
func (c *Connector) fetchPosts(ctx context.Context, source string, mode connector.Mode) []post.Post {
	alias := strings.TrimPrefix(source, "@")

	c.throttle.tick()
	ch, err := c.client.Resolve(ctx, alias)
	if err != nil {
		c.log.Printf("telegram: %s: %v", source, err)
		return nil
	}
	if ch.Username != "" {
		alias = ch.Username
	}

	target := math.MaxInt
	lastID := 0
	maxFetches := maxPageFetches
	switch mode.Kind {
	case connector.ModeRecent:
		target = mode.N
	case connector.ModeFromID:
		lastID = mode.N
	case connector.ModeAll:
		maxFetches = allPageFetches
	}

	var accumulated []post.Post
	seen := make(map[string]bool)

	for attempt := 0; attempt < maxFetches; attempt++ {
		if len(accumulated) >= target || ctx.Err() != nil {
			break
		}

		c.throttle.tick()
		msgs, err := c.client.History(ctx, ch, lastID, fetchChunkSize)
		if err != nil {
			if wait, ok := connector.AsRateLimit(err); ok {
				c.log.Printf("telegram: %s: rate limited, waiting %s", source, wait)
				c.throttle.sleep(wait)
				continue // retry the same chunk
			}
			// Private-mid-run, network, or generic API failure: stop
			// paginating this source, keep what we have.
			c.log.Printf("telegram: %s: %v", source, err)
			break
		}
		if len(msgs) == 0 {
			break
		}

		for _, p := range synthesize(msgs, source, alias) {
			if !seen[p.URL] {
				accumulated = append(accumulated, p)
				seen[p.URL] = true
			}
		}
		lastID = msgs[len(msgs)-1].ID
	}

	// Keep the newest N, then hand back chronological order regardless of
	// fetch mode.
	if mode.Kind == connector.ModeRecent && len(accumulated) > mode.N {
		sort.SliceStable(accumulated, func(i, j int) bool {
			return accumulated[i].PostedAt.After(accumulated[j].PostedAt)
		})
		accumulated = accumulated[:mode.N]
	}
	post.SortChronological(accumulated)
	return accumulated
}

// FetchByTimeframe fetches everything newer than the cutoff from each
// channel. Per-source failures are counted and logged; other sources keep
// going.
func (c *Connector) FetchByTimeframe(ctx context.Context, sources []string, days int) ([]post.Post, error) {
	if c.client == nil {
		return nil, errors.New("telegram: not connected")
	}

	cutoff := connector.Cutoff(days, c.now())

	var all []post.Post
	failed := 0
	for _, src := range sources {
		posts, err := c.fetchSince(ctx, src, cutoff)
		if err != nil {
			// A lone failed source has no siblings to protect; report it
			// so the orchestrator's tally stays accurate.
			if len(sources) == 1 {
				return nil, err
			}
			failed++
			c.log.Printf("telegram: %s: %v", src, err)
			continue
		}
		all = append(all, posts...)
	}
	if failed > 0 {
		c.log.Printf("telegram: timeframe sweep: %d of %d sources failed", failed, len(sources))
	}

	post.SortChronological(all)
	return all, nil
}

// fetchSince streams pages until the first message older than the cutoff,
// buffering everything newer, then reconstructs albums from the buffer.
//
// Album members can be separated by streaming order, so group reconstruction
// scans the entire buffer for siblings of each member before synthesizing.
// That join is O(buffer × members) per message — fine for bounded day/week
// windows, but extending this to unbounded history would need an incremental
// group-id index instead.
func (c *Connector) fetchSince(ctx context.Context, source string, cutoff time.Time) ([]post.Post, error) {
	alias := strings.TrimPrefix(source, "@")

	c.throttle.tick()
	ch, err := c.client.Resolve(ctx, alias)
	if err != nil {
		return nil, err
	}
	if ch.Username != "" {
		alias = ch.Username
	}

	var buffer []Message
	lastID := 0

	for attempt := 0; attempt < allPageFetches; attempt++ {
		if ctx.Err() != nil {
			break
		}

		c.throttle.tick()
		msgs, err := c.client.History(ctx, ch, lastID, fetchChunkSize)
		if err != nil {
			if wait, ok := connector.AsRateLimit(err); ok {
				c.log.Printf("telegram: %s: rate limited, waiting %s", source, wait)
				c.throttle.sleep(wait)
				continue
			}
			if len(buffer) == 0 {
				return nil, err
			}
			c.log.Printf("telegram: %s: %v (keeping %d buffered messages)", source, err, len(buffer))
			break
		}
		if len(msgs) == 0 {
			break
		}

		reachedCutoff := false
		for _, m := range msgs {
			if m.Date.Before(cutoff) {
				reachedCutoff = true
				break
			}
			buffer = append(buffer, m)
		}
		if reachedCutoff {
			break
		}
		lastID = msgs[len(msgs)-1].ID
	}

	processed := make(map[int]bool)
	seen := make(map[string]bool)
	var posts []post.Post

	for _, m := range buffer {
		if processed[m.ID] {
			continue
		}

		var group []Message
		if m.GroupID != 0 {
			for _, sibling := range buffer {
				if sibling.GroupID == m.GroupID {
					group = append(group, sibling)
					processed[sibling.ID] = true
				}
			}
		} else {
			group = []Message{m}
			processed[m.ID] = true
		}

		for _, p := range synthesize(group, source, alias) {
			if !seen[p.URL] {
				posts = append(posts, p)
				seen[p.URL] = true
			}
		}
	}

	return posts, nil
}
