package digest

import (
	"strings"
	"testing"
)

func TestMarkdown_Sections(t *testing.T) {
	var sb strings.Builder
	if err := NewMarkdown().Render(&sb, briefInput()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "# glint brief\n") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "## rss (1)") || !strings.Contains(out, "## telegram (1)") {
		t.Errorf("missing platform headings:\n%s", out)
	}
	if !strings.Contains(out, "[first update](https://t.me/chan/1)") {
		t.Errorf("posts must link to their URL:\n%s", out)
	}
	if !strings.Contains(out, "*1 source(s) failed:*") {
		t.Errorf("missing failure section:\n%s", out)
	}
}

func TestMarkdown_Overview(t *testing.T) {
	in := briefInput()
	in.Summary = "Two quiet updates."

	var sb strings.Builder
	if err := NewMarkdown().Render(&sb, in); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(sb.String(), "## Overview\n\nTwo quiet updates.") {
		t.Errorf("missing overview:\n%s", sb.String())
	}
}

func TestMarkdown_Empty(t *testing.T) {
	var sb strings.Builder
	if err := NewMarkdown().Render(&sb, Input{Label: "today"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(sb.String(), "No posts found.") {
		t.Errorf("output:\n%s", sb.String())
	}
}
