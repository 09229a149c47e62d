package post

import (
	"testing"
	"time"
)

func TestNew_NormalizesFields(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 1, 13, 30, 0, 0, loc)

	p := New("telegram", "@durov", "https://t.me/durov/100", "hello", ts)

	if p.PostedAt.Location() != time.UTC {
		t.Errorf("posted_at location = %v, want UTC", p.PostedAt.Location())
	}
	if !p.PostedAt.Equal(ts) {
		t.Errorf("posted_at = %v, want instant %v", p.PostedAt, ts)
	}
	if p.MediaURLs == nil || p.Categories == nil || p.Metadata == nil {
		t.Fatal("media_urls, categories and metadata must never be nil")
	}
	if len(p.MediaURLs) != 0 || len(p.Categories) != 0 || len(p.Metadata) != 0 {
		t.Error("fresh post must have empty media, categories and metadata")
	}
	if p.Source != "@durov" {
		t.Errorf("source = %q, want unnormalized @durov", p.Source)
	}
}

func TestSortChronological(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	posts := []Post{
		New("rss", "f", "u3", "third", base.Add(2*time.Hour)),
		New("rss", "f", "u1", "first", base),
		New("rss", "f", "u2", "second", base.Add(time.Hour)),
	}

	SortChronological(posts)

	for i, want := range []string{"u1", "u2", "u3"} {
		if posts[i].URL != want {
			t.Errorf("posts[%d].URL = %q, want %q", i, posts[i].URL, want)
		}
	}
}

func TestMerge_Interleaves(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := []Post{
		New("telegram", "a", "t1", "", base),
		New("telegram", "a", "t3", "", base.Add(2*time.Hour)),
	}
	b := []Post{
		New("rss", "b", "t2", "", base.Add(time.Hour)),
	}

	merged := Merge(a, b)

	if len(merged) != 3 {
		t.Fatalf("got %d posts, want 3", len(merged))
	}
	for i, want := range []string{"t1", "t2", "t3"} {
		if merged[i].URL != want {
			t.Errorf("merged[%d].URL = %q, want %q", i, merged[i].URL, want)
		}
	}
}
