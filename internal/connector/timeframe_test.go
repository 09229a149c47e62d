package connector

import (
	"testing"
	"time"
)

func TestCutoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	if got, want := Cutoff(1, now), now.Add(-24*time.Hour); !got.Equal(want) {
		t.Errorf("Cutoff(1) = %v, want %v", got, want)
	}
	if got, want := Cutoff(7, now), now.Add(-7*24*time.Hour); !got.Equal(want) {
		t.Errorf("Cutoff(7) = %v, want %v", got, want)
	}

	// Zero days means "since midnight today", not "since now".
	startOfDay := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := Cutoff(0, now); !got.Equal(startOfDay) {
		t.Errorf("Cutoff(0) = %v, want %v", got, startOfDay)
	}

	// Non-UTC input is normalized before the midnight computation.
	ny, _ := time.LoadLocation("America/New_York")
	local := time.Date(2026, 2, 28, 22, 0, 0, 0, ny) // already March 1 in UTC
	if got := Cutoff(0, local); !got.Equal(startOfDay) {
		t.Errorf("Cutoff(0, local) = %v, want %v", got, startOfDay)
	}
}
