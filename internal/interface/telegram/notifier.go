package telegram

import (
	"context"
	"fmt"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/external/telegram"
	"github.com/cookie-hub/cookie-growth-bot/internal/interface/telegram/presenter"
)

// Notifier renders engine notifications as HTML and delivers them to
// the chat they address. It is the only notification.Notifier in the
// bot process.
type Notifier struct {
	client *telegram.Client
}

// NewNotifier creates the notifier.
func NewNotifier(client *telegram.Client) *Notifier {
	return &Notifier{client: client}
}

// Notify implements notification.Notifier.
func (n *Notifier) Notify(ctx context.Context, msg notification.Notification) error {
	var text string
	switch msg.Kind {
	case notification.KindLevelUp:
		text = presenter.LevelUp(msg.LevelUp)
	case notification.KindAchievementUnlocked:
		text = presenter.AchievementUnlocked(msg.Achievement)
	case notification.KindBadgeEarned:
		text = presenter.BadgeEarned(msg.Badge)
	case notification.KindPurchaseConfirmed:
		text = presenter.PurchaseConfirmed(msg.Purchase)
	case notification.KindDailyReport:
		text = presenter.DailyReport(msg.Report)
	default:
		return fmt.Errorf("telegram: unknown notification kind %q", msg.Kind)
	}

	_, err := n.client.SendHTML(ctx, int64(msg.ChatID), text)
	return err
}
