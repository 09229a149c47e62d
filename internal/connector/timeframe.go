package connector

import "time"

// Cutoff returns the oldest timestamp a timeframe sweep should keep:
// now − days, or the start of today (UTC) when days is zero.
func Cutoff(days int, now time.Time) time.Time {
	now = now.UTC()
	if days == 0 {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}
