package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// BUY CARD COMMAND
// Spends experience on one unit of a catalog card. The debit and the
// ownership row are written atomically; the level is never lowered by
// the spend.
// ══════════════════════════════════════════════════════════════════════════════

// BuyCardCommand is a purchase request.
type BuyCardCommand struct {
	UserID  stats.UserID
	ChatID  stats.ChatID
	CardKey string

	// At is the purchase time (defaults to now if zero).
	At time.Time
}

// Validate validates the command.
func (c BuyCardCommand) Validate() error {
	if !c.UserID.IsValid() {
		return stats.ErrInvalidUserID
	}
	if c.CardKey == "" {
		return fmt.Errorf("buy_card: %w: empty key", progression.ErrCardNotFound)
	}
	return nil
}

// BuyCardResult reports a completed purchase.
type BuyCardResult struct {
	Card    progression.CardDef
	Balance int
}

// BuyCardHandler processes card purchases.
type BuyCardHandler struct {
	users    stats.UserRepository
	cards    progression.CardRepository
	catalog  progression.Catalog
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewBuyCardHandler creates the handler.
func NewBuyCardHandler(
	users stats.UserRepository,
	cards progression.CardRepository,
	catalog progression.Catalog,
	notifier notification.Notifier,
	logger *slog.Logger,
) *BuyCardHandler {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BuyCardHandler{
		users:    users,
		cards:    cards,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle looks the card up, checks the balance, then debits and grants
// atomically. The repository re-checks the balance inside the
// transaction, so a concurrent spend surfaces as
// ErrInsufficientExperience rather than a negative balance.
func (h *BuyCardHandler) Handle(ctx context.Context, cmd BuyCardCommand) (BuyCardResult, error) {
	var res BuyCardResult

	if err := cmd.Validate(); err != nil {
		return res, err
	}
	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}

	card, ok := h.catalog.CardByKey(cmd.CardKey)
	if !ok {
		return res, fmt.Errorf("buy_card: %w: %q", progression.ErrCardNotFound, cmd.CardKey)
	}
	if card.Price <= 0 {
		return res, fmt.Errorf("buy_card: %w: %q", progression.ErrCardNotForSale, cmd.CardKey)
	}

	user, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return res, fmt.Errorf("buy_card: load user: %w", err)
	}
	if user.TotalExperience < card.Price {
		return res, fmt.Errorf("buy_card: %w: have %d, need %d",
			progression.ErrInsufficientExperience, user.TotalExperience, card.Price)
	}

	if err := h.cards.Purchase(ctx, cmd.UserID, card.Key, card.Price, at); err != nil {
		return res, fmt.Errorf("buy_card: purchase: %w", err)
	}

	res.Card = card
	res.Balance = user.TotalExperience - card.Price

	if cmd.ChatID.IsValid() {
		n := notification.New(notification.KindPurchaseConfirmed, cmd.ChatID, at)
		n.Purchase = &notification.PurchasePayload{
			UserID:    cmd.UserID,
			UserName:  user.DisplayName(),
			CardKey:   card.Key,
			CardTitle: card.Title,
			Emoji:     card.Emoji,
			Price:     card.Price,
			Balance:   res.Balance,
		}
		if err := h.notifier.Notify(ctx, n); err != nil {
			h.logger.Warn("purchase notification failed",
				slog.Int64("chat_id", int64(cmd.ChatID)),
				slog.String("error", err.Error()))
		}
	}

	return res, nil
}
