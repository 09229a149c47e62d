// Package engine orchestrates the registered connectors: it isolates
// per-source failures, bounds every delegated call in time, and merges
// results into one chronological narrative.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/glintlabs/glint/internal/connector"
	"github.com/glintlabs/glint/internal/post"
)

// DefaultSourceTimeout bounds a single delegated connector call.
const DefaultSourceTimeout = 90 * time.Second

// errTimeout marks a call abandoned by the bounded-time guard.
var errTimeout = errors.New("deadline exceeded")

// Failure records one failed source with its identity and reason.
type Failure struct {
	Platform string
	Source   string
	Reason   string
}

// Report tallies a multi-source operation.
type Report struct {
	Succeeded int
	Failed    int
	Failures  []Failure
}

// Engine owns the registry of active connectors. Platforms without
// credentials simply never enter the registry; that is capability
// negotiation, not an error.
//
// All delegated calls are issued sequentially: connectors keep
// unsynchronized throttle state that is only safe single-flight, and
// hitting several platforms' rate limits at once buys nothing.
type Engine struct {
	connectors map[string]connector.Connector
	order      []string // stable sweep order
	timeout    time.Duration
	log        *log.Logger
}

// New creates an engine with an explicit logging handle. A zero timeout
// falls back to DefaultSourceTimeout.
func New(timeout time.Duration, logger *log.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	return &Engine{
		connectors: make(map[string]connector.Connector),
		timeout:    timeout,
		log:        logger,
	}
}

// Register connects c and adds it to the registry. A failed Connect keeps
// the platform out entirely — the only failure mode allowed to do so.
func (e *Engine) Register(ctx context.Context, c connector.Connector) error {
	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("register %s: %w", c.Platform(), err)
	}
	e.connectors[c.Platform()] = c
	e.order = append(e.order, c.Platform())
	return nil
}

// Platforms returns the registered platform tags in registration order.
func (e *Engine) Platforms() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Close disconnects every registered connector.
func (e *Engine) Close() {
	for _, name := range e.order {
		if err := e.connectors[name].Disconnect(); err != nil {
			e.log.Printf("engine: disconnect %s: %v", name, err)
		}
	}
}

// Fetch delegates a single-source fetch to the named platform under the
// bounded-time guard. Source-level failures (unresolvable source, timeout,
// upstream trouble) are logged and yield an empty result; only caller
// mistakes — unknown platform, invalid limit — come back as errors.
func (e *Engine) Fetch(ctx context.Context, platform, source string, limit any) ([]post.Post, error) {
	c, ok := e.connectors[platform]
	if !ok {
		return nil, fmt.Errorf("engine: platform %q is not registered", platform)
	}

	posts, err := e.guarded(ctx, platform, source, func(ctx context.Context) ([]post.Post, error) {
		return c.Fetch(ctx, source, limit)
	})
	if err != nil {
		if sourceLevel(err) {
			e.log.Printf("engine: %s/%s: %v", platform, source, err)
			return nil, nil
		}
		return nil, err
	}
	return posts, nil
}

// Sweep fetches everything newer than the timeframe cutoff from every
// registered platform. The guard is applied per source independently, and
// sources are awaited one at a time. The combined result is sorted once,
// ascending by timestamp; dedup is not applied across platforms because URL
// uniqueness is only guaranteed within one platform.
func (e *Engine) Sweep(ctx context.Context, sources map[string][]string, days int) ([]post.Post, Report) {
	var lists [][]post.Post
	var report Report

	for _, platform := range e.order {
		c := e.connectors[platform]
		for _, src := range sources[platform] {
			posts, err := e.guarded(ctx, platform, src, func(ctx context.Context) ([]post.Post, error) {
				return c.FetchByTimeframe(ctx, []string{src}, days)
			})
			if err != nil {
				report.Failed++
				report.Failures = append(report.Failures, Failure{Platform: platform, Source: src, Reason: err.Error()})
				e.log.Printf("engine: %s/%s: %v", platform, src, err)
				continue
			}
			report.Succeeded++
			lists = append(lists, posts)
		}
	}

	return post.Merge(lists...), report
}

// guarded runs fn under the per-call deadline. When the deadline expires the
// call is abandoned and errTimeout returned — the connector gets no chance
// to roll back client-side state such as its throttle counter; that is a
// documented limitation, not a guarantee.
func (e *Engine) guarded(ctx context.Context, platform, source string, fn func(ctx context.Context) ([]post.Post, error)) ([]post.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		posts []post.Post
		err   error
	}
	done := make(chan result, 1)

	go func() {
		posts, err := fn(ctx)
		done <- result{posts, err}
	}()

	select {
	case r := <-done:
		return r.posts, r.err
	case <-ctx.Done():
		e.log.Printf("engine: %s/%s timed out after %s, substituting empty result", platform, source, e.timeout)
		return nil, errTimeout
	}
}

// sourceLevel reports whether err belongs to the source, not the caller.
func sourceLevel(err error) bool {
	if errors.Is(err, errTimeout) || connector.IsResolution(err) || connector.IsTransient(err) {
		return true
	}
	_, rateLimited := connector.AsRateLimit(err)
	return rateLimited
}
