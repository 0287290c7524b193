package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDayKeepsLocalCalendarDay(t *testing.T) {
	bogota := time.FixedZone("-05", -5*3600)
	late := time.Date(2025, 1, 31, 23, 30, 0, 0, bogota)

	got := StartOfDay(late)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, bogota), got)

	// A UTC 24h truncation would land on a different local day here.
	utcCut := late.Truncate(24 * time.Hour)
	assert.NotEqual(t, got, utcCut)
}

func TestStartOfDayIsIdempotent(t *testing.T) {
	now := time.Now()
	assert.Equal(t, StartOfDay(now), StartOfDay(StartOfDay(now)))
}
