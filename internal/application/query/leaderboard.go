// Package query contains read operations (CQRS - Queries). Queries
// never modify state; each one is a self-contained use case with its
// own request and result types.
package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD QUERY
// Ranks the users of one chat inside a time window by weighted score or
// raw message count. Backed by the event log, optionally fronted by a
// short-TTL cache.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardQuery selects a chat, window, ordering and row limit.
type LeaderboardQuery struct {
	ChatID stats.ChatID
	Window stats.Window

	// SortKey defaults to SortByScore when empty.
	SortKey stats.SortKey

	// Limit <= 0 returns all rows.
	Limit int
}

// Validate validates the query and applies defaults.
func (q *LeaderboardQuery) Validate() error {
	if !q.ChatID.IsValid() {
		return stats.ErrInvalidChatID
	}
	if q.SortKey == "" {
		q.SortKey = stats.SortByScore
	}
	if q.SortKey != stats.SortByScore && q.SortKey != stats.SortByCount {
		return fmt.Errorf("leaderboard: unknown sort key %q", q.SortKey)
	}
	return nil
}

// LeaderboardEntry is one ranked row, positions starting at 1.
type LeaderboardEntry struct {
	Rank int
	stats.RankedRow
}

// LeaderboardCache caches computed leaderboards for a short TTL.
// Results served from it may lag the event log slightly.
type LeaderboardCache interface {
	Get(ctx context.Context, q LeaderboardQuery) ([]LeaderboardEntry, bool)
	Set(ctx context.Context, q LeaderboardQuery, entries []LeaderboardEntry)
}

// LeaderboardHandler serves leaderboard queries.
type LeaderboardHandler struct {
	events stats.EventRepository
	cache  LeaderboardCache
	logger *slog.Logger
}

// NewLeaderboardHandler creates the handler. cache may be nil.
func NewLeaderboardHandler(events stats.EventRepository, cache LeaderboardCache, logger *slog.Logger) *LeaderboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardHandler{events: events, cache: cache, logger: logger}
}

// Handle returns the ranked rows, most active first. Ties are broken
// by whoever posted earliest inside the window.
func (h *LeaderboardHandler) Handle(ctx context.Context, q LeaderboardQuery) ([]LeaderboardEntry, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if entries, ok := h.cache.Get(ctx, q); ok {
			return entries, nil
		}
	}

	rows, err := h.events.Leaderboard(ctx, q.ChatID, q.Window, q.SortKey, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{Rank: i + 1, RankedRow: row}
	}

	if h.cache != nil {
		h.cache.Set(ctx, q, entries)
	}
	return entries, nil
}
