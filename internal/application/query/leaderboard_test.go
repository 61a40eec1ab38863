package query

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func appendEvent(t *testing.T, store *memory.Store, userID stats.UserID, chatID stats.ChatID, mt stats.MessageType, at time.Time) {
	t.Helper()
	require.NoError(t, store.Append(context.Background(), stats.MessageEvent{
		UserID: userID, ChatID: chatID, Type: mt, At: at,
	}))
}

func TestLeaderboard_WeightedOrdering(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	// User 1: 3 texts (score 3, count 3).
	// User 2: 1 photo + 1 voice (score 6, count 2).
	// User 3: 2 stickers (score 4, count 2).
	for i := 0; i < 3; i++ {
		appendEvent(t, store, 1, 100, stats.TypeText, base.Add(time.Duration(i)*time.Minute))
	}
	appendEvent(t, store, 2, 100, stats.TypePhoto, base.Add(10*time.Minute))
	appendEvent(t, store, 2, 100, stats.TypeVoice, base.Add(11*time.Minute))
	appendEvent(t, store, 3, 100, stats.TypeSticker, base.Add(20*time.Minute))
	appendEvent(t, store, 3, 100, stats.TypeSticker, base.Add(21*time.Minute))

	h := NewLeaderboardHandler(store, nil, testLogger())

	entries, err := h.Handle(context.Background(), LeaderboardQuery{ChatID: 100, Window: stats.AllTime})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, stats.UserID(2), entries[0].UserID)
	assert.Equal(t, 6, entries[0].Score)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, stats.UserID(3), entries[1].UserID)
	assert.Equal(t, stats.UserID(1), entries[2].UserID)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestLeaderboard_SortByCount(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		appendEvent(t, store, 1, 100, stats.TypeText, base.Add(time.Duration(i)*time.Minute))
	}
	appendEvent(t, store, 2, 100, stats.TypePhoto, base.Add(10*time.Minute))
	appendEvent(t, store, 2, 100, stats.TypeVoice, base.Add(11*time.Minute))

	h := NewLeaderboardHandler(store, nil, testLogger())

	entries, err := h.Handle(context.Background(), LeaderboardQuery{
		ChatID: 100, Window: stats.AllTime, SortKey: stats.SortByCount,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, stats.UserID(1), entries[0].UserID, "count ordering ignores weights")
	assert.Equal(t, 3, entries[0].Count)
}

func TestLeaderboard_TieBrokenByEarliestPost(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	// Equal scores; user 2 posted first.
	appendEvent(t, store, 2, 100, stats.TypeText, base)
	appendEvent(t, store, 1, 100, stats.TypeText, base.Add(time.Minute))

	h := NewLeaderboardHandler(store, nil, testLogger())

	entries, err := h.Handle(context.Background(), LeaderboardQuery{ChatID: 100, Window: stats.AllTime})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, stats.UserID(2), entries[0].UserID)
	assert.Equal(t, stats.UserID(1), entries[1].UserID)
}

func TestLeaderboard_WindowAndLimit(t *testing.T) {
	store := memory.NewStore()
	day1 := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	appendEvent(t, store, 1, 100, stats.TypeText, day1)
	for u := stats.UserID(1); u <= 4; u++ {
		appendEvent(t, store, u, 100, stats.TypeText, day2)
	}

	h := NewLeaderboardHandler(store, nil, testLogger())

	window := stats.Between(
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	)
	entries, err := h.Handle(context.Background(), LeaderboardQuery{ChatID: 100, Window: window, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 2, "limit truncates")
	assert.Equal(t, 1, entries[0].Count, "day-1 event is outside the window")

	all, err := h.Handle(context.Background(), LeaderboardQuery{ChatID: 100, Window: window, Limit: 0})
	require.NoError(t, err)
	assert.Len(t, all, 4, "limit <= 0 returns every row")
}

func TestLeaderboard_InvalidQuery(t *testing.T) {
	h := NewLeaderboardHandler(memory.NewStore(), nil, testLogger())

	_, err := h.Handle(context.Background(), LeaderboardQuery{ChatID: 0})
	assert.ErrorIs(t, err, stats.ErrInvalidChatID)

	_, err = h.Handle(context.Background(), LeaderboardQuery{ChatID: 100, SortKey: "bogus"})
	assert.Error(t, err)
}

// stubCache serves a fixed payload and records writes.
type stubCache struct {
	entries []LeaderboardEntry
	hit     bool
	sets    int
}

func (c *stubCache) Get(context.Context, LeaderboardQuery) ([]LeaderboardEntry, bool) {
	return c.entries, c.hit
}

func (c *stubCache) Set(context.Context, LeaderboardQuery, []LeaderboardEntry) {
	c.sets++
}

func TestLeaderboard_CacheHitSkipsStore(t *testing.T) {
	cached := []LeaderboardEntry{{Rank: 1, RankedRow: stats.RankedRow{UserID: 9, Score: 42}}}
	cache := &stubCache{entries: cached, hit: true}

	// An empty store proves the rows came from the cache.
	h := NewLeaderboardHandler(memory.NewStore(), cache, testLogger())

	entries, err := h.Handle(context.Background(), LeaderboardQuery{ChatID: 100, Window: stats.AllTime})
	require.NoError(t, err)
	assert.Equal(t, cached, entries)
	assert.Zero(t, cache.sets)
}

func TestLeaderboard_CacheMissPopulates(t *testing.T) {
	store := memory.NewStore()
	appendEvent(t, store, 1, 100, stats.TypeText, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	cache := &stubCache{}

	h := NewLeaderboardHandler(store, cache, testLogger())

	entries, err := h.Handle(context.Background(), LeaderboardQuery{ChatID: 100, Window: stats.AllTime})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, cache.sets)
}
