package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepo implements progression.AchievementRepository.
type AchievementRepo struct {
	conn *Connection
}

// NewAchievementRepo creates the repository.
func NewAchievementRepo(conn *Connection) *AchievementRepo {
	return &AchievementRepo{conn: conn}
}

// Unlock inserts the unlock row; the unique constraint absorbs races,
// so losing one reports created=false instead of an error.
func (r *AchievementRepo) Unlock(ctx context.Context, userID stats.UserID, key string, at time.Time) (bool, error) {
	query := `
		INSERT INTO achievements (user_id, achievement_key, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_key) DO NOTHING
	`
	tag, err := r.conn.Exec(ctx, query, int64(userID), key, at)
	if err != nil {
		return false, fmt.Errorf("%w: unlock achievement: %v", stats.ErrStorageUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser returns unlocks oldest first.
func (r *AchievementRepo) ListByUser(ctx context.Context, userID stats.UserID) ([]progression.AchievementUnlock, error) {
	query := `
		SELECT achievement_key, unlocked_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY unlocked_at, id
	`
	rows, err := r.conn.Query(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: list achievements: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var unlocks []progression.AchievementUnlock
	for rows.Next() {
		var u progression.AchievementUnlock
		if err := rows.Scan(&u.Key, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("%w: scan achievement: %v", stats.ErrStorageUnavailable, err)
		}
		unlocks = append(unlocks, u)
	}
	return unlocks, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepo implements progression.BadgeRepository. The table has no
// uniqueness: the engine decides when a badge may be earned again.
type BadgeRepo struct {
	conn *Connection
}

// NewBadgeRepo creates the repository.
func NewBadgeRepo(conn *Connection) *BadgeRepo {
	return &BadgeRepo{conn: conn}
}

// Award inserts one earned-badge row.
func (r *BadgeRepo) Award(ctx context.Context, userID stats.UserID, key string, at time.Time) error {
	query := `INSERT INTO badges (user_id, badge_key, earned_at) VALUES ($1, $2, $3)`
	if _, err := r.conn.Exec(ctx, query, int64(userID), key, at); err != nil {
		return fmt.Errorf("%w: award badge: %v", stats.ErrStorageUnavailable, err)
	}
	return nil
}

// ListByUser returns awards oldest first.
func (r *BadgeRepo) ListByUser(ctx context.Context, userID stats.UserID) ([]progression.BadgeAward, error) {
	query := `
		SELECT badge_key, earned_at
		FROM badges
		WHERE user_id = $1
		ORDER BY earned_at, id
	`
	rows, err := r.conn.Query(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: list badges: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var awards []progression.BadgeAward
	for rows.Next() {
		var a progression.BadgeAward
		if err := rows.Scan(&a.Key, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("%w: scan badge: %v", stats.ErrStorageUnavailable, err)
		}
		awards = append(awards, a)
	}
	return awards, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// CARD REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// CardRepo implements progression.CardRepository.
type CardRepo struct {
	conn *Connection
}

// NewCardRepo creates the repository.
func NewCardRepo(conn *Connection) *CardRepo {
	return &CardRepo{conn: conn}
}

// Purchase debits the price and grants one unit in a single
// transaction. The guarded UPDATE re-checks the balance, so two
// concurrent purchases cannot overdraw.
func (r *CardRepo) Purchase(ctx context.Context, userID stats.UserID, key string, price int, at time.Time) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET total_exp = total_exp - $2, updated_at = NOW()
			WHERE user_id = $1 AND total_exp >= $2
		`, int64(userID), price)
		if err != nil {
			return fmt.Errorf("%w: debit: %v", stats.ErrStorageUnavailable, err)
		}
		if tag.RowsAffected() == 0 {
			return progression.ErrInsufficientExperience
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO cards (user_id, card_key, acquired_at) VALUES ($1, $2, $3)
		`, int64(userID), key, at)
		if err != nil {
			return fmt.Errorf("%w: grant card: %v", stats.ErrStorageUnavailable, err)
		}
		return nil
	})
}

// Consume deletes exactly one owned row of the card, oldest first.
func (r *CardRepo) Consume(ctx context.Context, userID stats.UserID, key string) error {
	query := `
		DELETE FROM cards
		WHERE id = (
			SELECT id FROM cards
			WHERE user_id = $1 AND card_key = $2
			ORDER BY acquired_at, id
			LIMIT 1
		)
	`
	tag, err := r.conn.Exec(ctx, query, int64(userID), key)
	if err != nil {
		return fmt.Errorf("%w: consume card: %v", stats.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return progression.ErrCardNotOwned
	}
	return nil
}

// ListByUser returns holdings grouped by key, largest stacks first.
func (r *CardRepo) ListByUser(ctx context.Context, userID stats.UserID) ([]progression.CardHolding, error) {
	query := `
		SELECT card_key, COUNT(*)
		FROM cards
		WHERE user_id = $1
		GROUP BY card_key
		ORDER BY COUNT(*) DESC, card_key
	`
	rows, err := r.conn.Query(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: list cards: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var holdings []progression.CardHolding
	for rows.Next() {
		var h progression.CardHolding
		if err := rows.Scan(&h.Key, &h.Count); err != nil {
			return nil, fmt.Errorf("%w: scan card holding: %v", stats.ErrStorageUnavailable, err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
