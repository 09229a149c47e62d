package hn

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glintlabs/glint/internal/connector"
)

func testConnector(baseURL string, minPoints int) *Connector {
	c := New(Options{
		BaseURL:   baseURL,
		MinPoints: minPoints,
		Logger:    log.New(io.Discard, "", 0),
	})
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func serveItems(t *testing.T, lists map[string][]int, items map[string]hnItem) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for name, ids := range lists {
			if r.URL.Path == "/"+name+"stories.json" {
				_ = json.NewEncoder(w).Encode(ids)
				return
			}
		}
		if strings.HasPrefix(r.URL.Path, "/item/") {
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/item/"), ".json")
			item, ok := items[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(item)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestFetch_FiltersAndSortsAscending(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := map[string]hnItem{
		"1": {ID: 1, Type: "story", Title: "newer story", URL: "https://example.com/1", Score: 300, Time: base.Add(-1 * time.Hour).Unix()},
		"2": {ID: 2, Type: "story", Title: "low score", URL: "https://example.com/2", Score: 5, Time: base.Add(-1 * time.Hour).Unix()},
		"3": {ID: 3, Type: "job", Title: "hiring", URL: "https://example.com/3", Score: 200, Time: base.Add(-1 * time.Hour).Unix()},
		"4": {ID: 4, Type: "story", Title: "older story", URL: "https://example.com/4", Score: 150, Time: base.Add(-3 * time.Hour).Unix()},
	}
	ts := serveItems(t, map[string][]int{"top": {1, 2, 3, 4}}, items)

	c := testConnector(ts.URL, 100)
	posts, err := c.Fetch(context.Background(), "top", 10)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].Content != "older story" || posts[1].Content != "newer story" {
		t.Errorf("order = %q, %q; want oldest first", posts[0].Content, posts[1].Content)
	}
	if posts[0].Platform != "hn" || posts[0].Source != "top" {
		t.Errorf("platform/source = %q/%q", posts[0].Platform, posts[0].Source)
	}
	if posts[1].Metadata["score"] != "300" {
		t.Errorf("score = %q, want 300", posts[1].Metadata["score"])
	}
}

func TestFetch_RecentTrimsToNewest(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := map[string]hnItem{}
	ids := []int{}
	for i := 1; i <= 4; i++ {
		items[string(rune('0'+i))] = hnItem{
			ID: i, Type: "story", Title: "story", URL: "https://example.com",
			Score: 100, Time: base.Add(-time.Duration(i) * time.Hour).Unix(),
		}
		ids = append(ids, i)
	}
	ts := serveItems(t, map[string][]int{"top": ids}, items)

	c := testConnector(ts.URL, 0)
	posts, err := c.Fetch(context.Background(), "top", 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	// Newest two are ids 1 and 2.
	if posts[1].Metadata["id"] != "1" || posts[0].Metadata["id"] != "2" {
		t.Errorf("kept ids %q, %q; want 2, 1", posts[0].Metadata["id"], posts[1].Metadata["id"])
	}
}

func TestFetch_FromIDKeepsNewerItems(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := map[string]hnItem{
		"10": {ID: 10, Type: "story", Title: "old", URL: "https://example.com/10", Score: 50, Time: base.Unix()},
		"20": {ID: 20, Type: "story", Title: "new", URL: "https://example.com/20", Score: 50, Time: base.Unix()},
	}
	ts := serveItems(t, map[string][]int{"new": {10, 20}}, items)

	c := testConnector(ts.URL, 0)
	posts, err := c.Fetch(context.Background(), "new", -15)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 1 || posts[0].Metadata["id"] != "20" {
		t.Fatalf("got %d posts, want only item 20", len(posts))
	}
}

func TestFetch_UnknownListYieldsEmpty(t *testing.T) {
	ts := serveItems(t, map[string][]int{"top": {}}, nil)
	c := testConnector(ts.URL, 0)
	posts, err := c.Fetch(context.Background(), "weird", 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("got %d posts, want 0", len(posts))
	}
}

func TestFetch_MissingItemsCostOnlyThemselves(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := map[string]hnItem{
		"1": {ID: 1, Type: "story", Title: "survivor", URL: "https://example.com/1", Score: 50, Time: base.Unix()},
	}
	ts := serveItems(t, map[string][]int{"top": {1, 2, 3}}, items)

	c := testConnector(ts.URL, 0)
	posts, err := c.Fetch(context.Background(), "top", 10)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 1 || posts[0].Content != "survivor" {
		t.Fatalf("got %d posts, want the one reachable item", len(posts))
	}
}

func TestFetchByTimeframe_CutoffAndMerge(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := map[string]hnItem{
		"1": {ID: 1, Type: "story", Title: "fresh top", URL: "https://example.com/1", Score: 50, Time: base.Add(-2 * time.Hour).Unix()},
		"2": {ID: 2, Type: "story", Title: "stale top", URL: "https://example.com/2", Score: 50, Time: base.Add(-72 * time.Hour).Unix()},
		"3": {ID: 3, Type: "story", Title: "fresh best", URL: "https://example.com/3", Score: 50, Time: base.Add(-1 * time.Hour).Unix()},
	}
	ts := serveItems(t, map[string][]int{"top": {1, 2}, "best": {3}}, items)

	c := testConnector(ts.URL, 0)
	posts, err := c.FetchByTimeframe(context.Background(), []string{"top", "best"}, 1)
	if err != nil {
		t.Fatalf("FetchByTimeframe: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].Content != "fresh top" || posts[1].Content != "fresh best" {
		t.Errorf("order = %q, %q; want oldest first", posts[0].Content, posts[1].Content)
	}
}

func TestFetchByTimeframe_LoneFailurePropagates(t *testing.T) {
	ts := serveItems(t, map[string][]int{"top": {}}, nil)
	c := testConnector(ts.URL, 0)

	_, err := c.FetchByTimeframe(context.Background(), []string{"weird"}, 1)
	var resErr *connector.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %v, want ResolutionError", err)
	}
}

func TestFetch_CommentsURLFallback(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := map[string]hnItem{
		"42": {ID: 42, Type: "story", Title: "ask hn", Score: 50, Time: base.Unix()},
	}
	ts := serveItems(t, map[string][]int{"top": {42}}, items)

	c := testConnector(ts.URL, 0)
	posts, err := c.Fetch(context.Background(), "top", 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	want := "https://news.ycombinator.com/item?id=42"
	if posts[0].URL != want {
		t.Errorf("url = %q, want %q", posts[0].URL, want)
	}
}

func TestFetch_InvalidLimit(t *testing.T) {
	c := testConnector("http://unused", 0)
	if _, err := c.Fetch(context.Background(), "top", 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}
