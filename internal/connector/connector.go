// Package connector defines the capability contract shared by every source
// connector and the fetch-mode/error vocabulary they have in common.
package connector

import (
	"context"

	"github.com/glintlabs/glint/internal/post"
)

// Connector is the capability set every platform connector implements.
//
// Failure contract: per-item and per-source problems are absorbed and logged
// inside Fetch and FetchByTimeframe — both return a (possibly empty) list
// instead of signaling upward. An error from Fetch means the call itself was
// malformed (bad limit, not connected), not that a source misbehaved. Only a
// failed Connect is allowed to keep a platform out of the registry entirely.
type Connector interface {
	// Platform returns the platform tag ("telegram", "rss", ...).
	Platform() string

	// Connect acquires the platform client. It must not prompt for
	// interactive input; missing first-time authorization surfaces as a
	// typed error the caller resolves through its own channel.
	Connect(ctx context.Context) error

	// Disconnect releases the platform client. Safe to call after a
	// failed Connect and safe to call twice.
	Disconnect() error

	// Fetch returns the latest posts from one source. limit is the
	// overloaded parameter parsed by ParseLimit: a count, a negative
	// start-id, or the "-all" sentinel.
	Fetch(ctx context.Context, source string, limit any) ([]post.Post, error)

	// FetchByTimeframe returns all posts from the given sources newer than
	// the cutoff (now − days, or start of today UTC when days == 0),
	// sorted ascending by timestamp.
	FetchByTimeframe(ctx context.Context, sources []string, days int) ([]post.Post, error)
}
