// Package notification defines the outbound messages the engine emits
// when something noteworthy happens: level-ups, unlocks, purchase
// confirmations, scheduled reports. The engine only builds payloads;
// rendering and delivery belong to the transport layer.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// Kind classifies a notification payload.
type Kind string

const (
	KindLevelUp             Kind = "level_up"
	KindAchievementUnlocked Kind = "achievement_unlocked"
	KindBadgeEarned         Kind = "badge_earned"
	KindPurchaseConfirmed   Kind = "purchase_confirmed"
	KindDailyReport         Kind = "daily_report"
)

// Notification is one outbound message addressed to a chat. Exactly
// one payload field matching Kind is set.
type Notification struct {
	ID     uuid.UUID
	Kind   Kind
	ChatID stats.ChatID
	At     time.Time

	LevelUp     *LevelUpPayload
	Achievement *AchievementPayload
	Badge       *BadgePayload
	Purchase    *PurchasePayload
	Report      *ReportPayload
}

// LevelUpPayload announces a user reaching a new level.
type LevelUpPayload struct {
	UserID   stats.UserID
	UserName string
	Level    int
}

// AchievementPayload announces an achievement unlock.
type AchievementPayload struct {
	UserID   stats.UserID
	UserName string
	Key      string
	Title    string
	Emoji    string
}

// BadgePayload announces an earned daily badge.
type BadgePayload struct {
	UserID   stats.UserID
	UserName string
	Key      string
	Title    string
	Emoji    string
}

// PurchasePayload confirms a card purchase.
type PurchasePayload struct {
	UserID    stats.UserID
	UserName  string
	CardKey   string
	CardTitle string
	Emoji     string
	Price     int
	Balance   int
}

// ReportPayload carries one chat's slice of the daily report: the
// cross-chat message total for the day plus this chat's top users.
type ReportPayload struct {
	Date          time.Time
	TotalMessages int
	Entries       []stats.RankedRow
}

// New builds a notification with a fresh correlation ID.
func New(kind Kind, chatID stats.ChatID, at time.Time) Notification {
	return Notification{
		ID:     uuid.New(),
		Kind:   kind,
		ChatID: chatID,
		At:     at,
	}
}

// Notifier delivers notifications to a chat. Implementations render
// the payload for their transport.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NopNotifier drops every notification. Useful in tests and in the
// admin CLI where nothing should be announced.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) error { return nil }
