package utils

import "time"

// StartOfDay returns midnight of t's calendar day in t's own location.
// Truncate(24h) would cut on UTC days and shift the boundary for any other
// timezone.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
