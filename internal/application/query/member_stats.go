package query

import (
	"context"
	"fmt"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBER STATS QUERY
// The /myinfo view: experience, level, progress to the next level, and
// message counts for today and all time. Holdings (achievements, badges,
// cards) are separate methods used by their own commands.
// ══════════════════════════════════════════════════════════════════════════════

// MemberStats is the personal summary for one user.
type MemberStats struct {
	User stats.User

	// EarnedToday is today's capped-relevant earnings, reconstructed
	// from the event log with the configured point table.
	EarnedToday int
	DailyLimit  int

	// NextThreshold is the absolute experience for the next level;
	// AtMaxLevel is true on the terminal level, where no threshold
	// exists.
	NextThreshold int
	AtMaxLevel    bool

	TodayCounts    stats.TypeCounts
	LifetimeCounts stats.TypeCounts
}

// MemberStatsHandler serves personal statistics and holdings.
type MemberStatsHandler struct {
	users        stats.UserRepository
	events       stats.EventRepository
	achievements progression.AchievementRepository
	badges       progression.BadgeRepository
	cards        progression.CardRepository
	catalog      progression.Catalog
	location     *time.Location
}

// NewMemberStatsHandler creates the handler.
func NewMemberStatsHandler(
	users stats.UserRepository,
	events stats.EventRepository,
	achievements progression.AchievementRepository,
	badges progression.BadgeRepository,
	cards progression.CardRepository,
	catalog progression.Catalog,
	location *time.Location,
) *MemberStatsHandler {
	if location == nil {
		location = time.UTC
	}
	return &MemberStatsHandler{
		users:        users,
		events:       events,
		achievements: achievements,
		badges:       badges,
		cards:        cards,
		catalog:      catalog,
		location:     location,
	}
}

// Handle builds the personal summary as of now.
func (h *MemberStatsHandler) Handle(ctx context.Context, userID stats.UserID, now time.Time) (MemberStats, error) {
	var res MemberStats

	if !userID.IsValid() {
		return res, stats.ErrInvalidUserID
	}
	if now.IsZero() {
		now = time.Now()
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("member_stats: %w", err)
	}
	res.User = *user

	today := stats.Since(timeutil.StartOfToday(now, h.location))
	res.TodayCounts, err = h.events.CountsByUser(ctx, userID, today)
	if err != nil {
		return res, fmt.Errorf("member_stats: today counts: %w", err)
	}
	res.LifetimeCounts, err = h.events.CountsByUser(ctx, userID, stats.AllTime)
	if err != nil {
		return res, fmt.Errorf("member_stats: lifetime counts: %w", err)
	}

	res.EarnedToday = h.catalog.Points.EarnedToday(res.TodayCounts)
	res.DailyLimit = h.catalog.DailyLimit

	next, ok := h.catalog.Levels.NextThreshold(user.Level)
	res.NextThreshold = next
	res.AtMaxLevel = !ok

	return res, nil
}

// Achievements returns the user's unlocked achievements, oldest first.
func (h *MemberStatsHandler) Achievements(ctx context.Context, userID stats.UserID) ([]progression.AchievementUnlock, error) {
	if !userID.IsValid() {
		return nil, stats.ErrInvalidUserID
	}
	return h.achievements.ListByUser(ctx, userID)
}

// Badges returns the user's earned badges, oldest first.
func (h *MemberStatsHandler) Badges(ctx context.Context, userID stats.UserID) ([]progression.BadgeAward, error) {
	if !userID.IsValid() {
		return nil, stats.ErrInvalidUserID
	}
	return h.badges.ListByUser(ctx, userID)
}

// Cards returns the user's card holdings grouped by key.
func (h *MemberStatsHandler) Cards(ctx context.Context, userID stats.UserID) ([]progression.CardHolding, error) {
	if !userID.IsValid() {
		return nil, stats.ErrInvalidUserID
	}
	return h.cards.ListByUser(ctx, userID)
}
