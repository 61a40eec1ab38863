package command

import (
	"context"
	"fmt"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN COMMANDS
// Manual interventions used by the operator CLI: experience adjustments,
// card consumption, user deletion and the full store reset. These bypass
// the daily cap but still respect the level ladder's never-decrease rule.
// ══════════════════════════════════════════════════════════════════════════════

// AdminHandler bundles the operator-only write operations.
type AdminHandler struct {
	users  stats.UserRepository
	cards  progression.CardRepository
	reset  stats.Resetter
	levels progression.LevelTable
}

// NewAdminHandler creates the handler.
func NewAdminHandler(
	users stats.UserRepository,
	cards progression.CardRepository,
	reset stats.Resetter,
	levels progression.LevelTable,
) *AdminHandler {
	return &AdminHandler{users: users, cards: cards, reset: reset, levels: levels}
}

// AddExperience adjusts a user's balance by delta (negative to debit)
// and raises the level if a threshold was crossed. Returns the new
// balance and level.
func (h *AdminHandler) AddExperience(ctx context.Context, userID stats.UserID, delta int) (int, int, error) {
	if !userID.IsValid() {
		return 0, 0, stats.ErrInvalidUserID
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("admin: load user: %w", err)
	}

	total, err := h.users.AddExperience(ctx, userID, delta)
	if err != nil {
		return 0, 0, fmt.Errorf("admin: add experience: %w", err)
	}

	level := user.Level
	if target := h.levels.LevelFor(total); target > level {
		if err := h.users.SetLevel(ctx, userID, target); err != nil {
			return total, level, fmt.Errorf("admin: set level: %w", err)
		}
		level = target
	}
	return total, level, nil
}

// SetExperience overwrites a user's balance and raises the level if
// the new value crosses a threshold.
func (h *AdminHandler) SetExperience(ctx context.Context, userID stats.UserID, value int) (int, error) {
	if !userID.IsValid() {
		return 0, stats.ErrInvalidUserID
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("admin: load user: %w", err)
	}
	if err := h.users.SetExperience(ctx, userID, value); err != nil {
		return 0, fmt.Errorf("admin: set experience: %w", err)
	}

	level := user.Level
	if target := h.levels.LevelFor(value); target > level {
		if err := h.users.SetLevel(ctx, userID, target); err != nil {
			return level, fmt.Errorf("admin: set level: %w", err)
		}
		level = target
	}
	return level, nil
}

// UseCard consumes exactly one unit of an owned card.
func (h *AdminHandler) UseCard(ctx context.Context, userID stats.UserID, cardKey string) error {
	if !userID.IsValid() {
		return stats.ErrInvalidUserID
	}
	if err := h.cards.Consume(ctx, userID, cardKey); err != nil {
		return fmt.Errorf("admin: use card: %w", err)
	}
	return nil
}

// DeleteUser removes a user and everything recorded about them.
func (h *AdminHandler) DeleteUser(ctx context.Context, userID stats.UserID) error {
	if !userID.IsValid() {
		return stats.ErrInvalidUserID
	}
	if err := h.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("admin: delete user: %w", err)
	}
	return nil
}

// ResetStore wipes all data and leaves the store in a usable empty
// state. Confirmation is the caller's responsibility; this method is
// unconditional.
func (h *AdminHandler) ResetStore(ctx context.Context) error {
	if err := h.reset.Reset(ctx); err != nil {
		return fmt.Errorf("admin: reset store: %w", err)
	}
	return nil
}
