package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	at := time.Date(2025, 3, 10, 18, 45, 12, 0, loc)
	got := StartOfDay(at, loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), got)
}

func TestStartOfDay_ConvertsZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	// 22:00 UTC is already the next day in Almaty (UTC+5).
	at := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	got := StartOfDay(at, loc)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, loc), got)
}

func TestYesterdayRange(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	start, end := YesterdayRange(now, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), end)
}

func TestYesterdayRange_EndIsExclusiveBoundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end := YesterdayRange(now, time.UTC)

	// Exactly at midnight, "yesterday" is still the previous full day.
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, now, end)
}

func TestSameDay(t *testing.T) {
	loc := time.UTC
	a := time.Date(2025, 3, 10, 0, 0, 1, 0, loc)
	b := time.Date(2025, 3, 10, 23, 59, 59, 0, loc)
	c := time.Date(2025, 3, 11, 0, 0, 0, 0, loc)

	assert.True(t, SameDay(a, b, loc))
	assert.False(t, SameDay(b, c, loc))
}

func TestSameDay_AcrossZones(t *testing.T) {
	almaty, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	// 21:00 UTC and 23:00 UTC are the same UTC day but straddle
	// midnight in Almaty.
	a := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b, time.UTC))
	assert.False(t, SameDay(a, b, almaty))
}

func TestNextDailyAt(t *testing.T) {
	loc := time.UTC

	t.Run("later today", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 7, 0, 0, 0, loc)
		next := NextDailyAt(now, 9, 30, loc)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, loc), next)
	})

	t.Run("already passed rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)
		next := NextDailyAt(now, 9, 30, loc)
		assert.Equal(t, time.Date(2025, 3, 11, 9, 30, 0, 0, loc), next)
	})

	t.Run("exact hit rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, loc)
		next := NextDailyAt(now, 9, 30, loc)
		assert.Equal(t, time.Date(2025, 3, 11, 9, 30, 0, 0, loc), next)
	})
}
