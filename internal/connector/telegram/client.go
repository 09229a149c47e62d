package telegram

import (
	"context"
	"time"
)

// Channel is a resolved broadcast channel.
type Channel struct {
	ID         int64
	AccessHash int64
	Username   string
}

// Message is one raw upstream message. Messages that belong to the same
// album share a non-zero GroupID.
type Message struct {
	ID       int
	GroupID  int64
	Text     string
	HasMedia bool
	Date     time.Time
}

// Client is the narrow platform-client surface the connector is written
// against. The production implementation lives in gotd.go; tests substitute
// a fake.
//
// Errors returned by Resolve and History use the connector taxonomy:
// *connector.ResolutionError for missing/private/invalid channels,
// *connector.RateLimitError for an explicit wait-then-retry limit, and
// *connector.TransientError for everything network- or API-shaped.
type Client interface {
	// Resolve looks up a channel by username (without the @ prefix).
	Resolve(ctx context.Context, username string) (Channel, error)

	// History returns up to limit messages older than offsetID, newest
	// first. offsetID 0 starts at the channel head.
	History(ctx context.Context, ch Channel, offsetID, limit int) ([]Message, error)

	// Close releases the underlying connection.
	Close() error
}
