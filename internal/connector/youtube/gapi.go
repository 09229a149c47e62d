package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/glintlabs/glint/internal/connector"
)

// dataAPI adapts the generated Data API client to the API interface.
type dataAPI struct {
	svc *ytapi.Service
}

func dialDataAPI(ctx context.Context, apiKey string) (API, error) {
	svc, err := ytapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &connector.SetupError{Platform: platformName, Reason: err.Error()}
	}
	return &dataAPI{svc: svc}, nil
}

func (a *dataAPI) Resolve(ctx context.Context, source string) (Channel, error) {
	call := a.svc.Channels.List([]string{"snippet", "contentDetails"}).Context(ctx)
	if strings.HasPrefix(source, "UC") {
		call = call.Id(source)
	} else {
		call = call.ForHandle(strings.TrimPrefix(source, "@"))
	}

	resp, err := call.Do()
	if err != nil {
		return Channel{}, mapAPIError(source, err)
	}
	if len(resp.Items) == 0 {
		return Channel{}, &connector.ResolutionError{Source: source, Reason: "no such channel"}
	}

	item := resp.Items[0]
	uploads := ""
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		uploads = item.ContentDetails.RelatedPlaylists.Uploads
	}
	if uploads == "" {
		return Channel{}, &connector.ResolutionError{Source: source, Reason: "channel has no uploads playlist"}
	}

	title := ""
	if item.Snippet != nil {
		title = item.Snippet.Title
	}
	return Channel{ID: item.Id, Title: title, UploadsPlaylist: uploads}, nil
}

func (a *dataAPI) Uploads(ctx context.Context, playlistID, pageToken string) ([]Video, string, error) {
	call := a.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", mapAPIError(playlistID, err)
	}

	var videos []Video
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		v := Video{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		}
		if item.ContentDetails != nil {
			v.ID = item.ContentDetails.VideoId
			if ts, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt); err == nil {
				v.PublishedAt = ts.UTC()
			}
		}
		if v.PublishedAt.IsZero() {
			if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				v.PublishedAt = ts.UTC()
			}
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			v.Thumbnail = item.Snippet.Thumbnails.High.Url
		}
		if v.ID == "" || v.PublishedAt.IsZero() {
			continue
		}
		videos = append(videos, v)
	}
	return videos, resp.NextPageToken, nil
}

// mapAPIError folds googleapi errors into the shared taxonomy: missing
// resources resolve to nothing, quota exhaustion is a rate limit, the
// rest is assumed transient.
func mapAPIError(subject string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return &connector.ResolutionError{Source: subject, Reason: "not found"}
		case http.StatusForbidden, http.StatusTooManyRequests:
			for _, e := range gerr.Errors {
				if e.Reason == "quotaExceeded" || e.Reason == "rateLimitExceeded" {
					return &connector.RateLimitError{Wait: time.Hour}
				}
			}
			return &connector.ResolutionError{Source: subject, Reason: "access forbidden"}
		}
	}
	return &connector.TransientError{Op: fmt.Sprintf("youtube %s", subject), Err: err}
}
