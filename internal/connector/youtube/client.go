package youtube

import (
	"context"
	"time"
)

// Channel is a resolved channel: the uploads playlist is what actually
// gets paged.
type Channel struct {
	ID              string
	Title           string
	UploadsPlaylist string
}

// Video is one uploads-playlist entry.
type Video struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	PublishedAt time.Time
}

// API is the narrow slice of the Data API the connector needs. The
// production implementation wraps the generated service; tests swap in
// a fake.
type API interface {
	// Resolve looks up a channel by handle ("@name") or channel id.
	Resolve(ctx context.Context, source string) (Channel, error)

	// Uploads returns one page of the uploads playlist, newest first,
	// with the token for the next page ("" when exhausted).
	Uploads(ctx context.Context, playlistID, pageToken string) ([]Video, string, error)
}
