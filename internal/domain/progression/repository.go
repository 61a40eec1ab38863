package progression

import (
	"context"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// AchievementRepository persists achievement unlocks.
type AchievementRepository interface {
	// Unlock records an unlock. Returns true when the row was created
	// and false when the user already held the achievement; a repeated
	// unlock is never an error.
	Unlock(ctx context.Context, userID stats.UserID, key string, at time.Time) (bool, error)

	// ListByUser returns the user's unlocks, oldest first.
	ListByUser(ctx context.Context, userID stats.UserID) ([]AchievementUnlock, error)
}

// BadgeRepository persists badge awards. The store does not dedupe:
// the engine checks current holdings before awarding.
type BadgeRepository interface {
	// Award records one earned badge.
	Award(ctx context.Context, userID stats.UserID, key string, at time.Time) error

	// ListByUser returns the user's awards, oldest first.
	ListByUser(ctx context.Context, userID stats.UserID) ([]BadgeAward, error)
}

// CardRepository persists card ownership as one row per owned unit.
type CardRepository interface {
	// Purchase debits the price from the user's experience and adds
	// one unit of the card, atomically. Returns
	// ErrInsufficientExperience when the balance no longer covers the
	// price at commit time.
	Purchase(ctx context.Context, userID stats.UserID, key string, price int, at time.Time) error

	// Consume removes exactly one unit of the card, or returns
	// ErrCardNotOwned when the user has none.
	Consume(ctx context.Context, userID stats.UserID, key string) error

	// ListByUser returns the user's holdings grouped by key.
	ListByUser(ctx context.Context, userID stats.UserID) ([]CardHolding, error)
}
