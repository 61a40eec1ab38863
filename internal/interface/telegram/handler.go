package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/application/command"
	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/external/telegram"
	"github.com/cookie-hub/cookie-growth-bot/internal/interface/telegram/presenter"
	"github.com/cookie-hub/cookie-growth-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE RECORDING
// ══════════════════════════════════════════════════════════════════════════════

// classify maps a Telegram message onto a message type tag.
func classify(msg *telegram.Message) stats.MessageType {
	switch {
	case msg.Sticker != nil:
		return stats.TypeSticker
	case msg.Voice != nil:
		return stats.TypeVoice
	case len(msg.Photo) > 0:
		return stats.TypePhoto
	case msg.Text != "":
		return stats.TypeText
	default:
		return stats.TypeOther
	}
}

// recordMessage feeds one group message into the engine.
func (b *Bot) recordMessage(ctx context.Context, msg *telegram.Message) {
	cmd := command.RecordMessageCommand{
		UserID:    stats.UserID(msg.From.ID),
		ChatID:    stats.ChatID(msg.Chat.ID),
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		ChatTitle: msg.Chat.Title,
		Type:      classify(msg),
		At:        time.Unix(msg.Date, 0),
	}
	if _, err := b.deps.RecordMessage.Handle(ctx, cmd); err != nil {
		b.logger.Error("record message failed",
			slog.Int64("user_id", msg.From.ID),
			slog.Int64("chat_id", msg.Chat.ID),
			slog.String("error", err.Error()))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// parseCommand extracts "/cmd args" from message text. Commands
// addressed to another bot ("/cmd@other_bot") are ignored.
func parseCommand(text, botUsername string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if head == "" {
		return "", "", false
	}
	if name, target, mentioned := strings.Cut(head, "@"); mentioned {
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return "", "", false
		}
		head = name
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// handleCommand routes one command and sends the reply.
func (b *Bot) handleCommand(ctx context.Context, msg *telegram.Message, cmd, args string) {
	var text string
	var err error

	switch cmd {
	case "start":
		text = presenter.Welcome()
	case "help":
		text = presenter.Help()
	case "ping":
		text = presenter.Pong()
	case "myinfo":
		text, err = b.myInfo(ctx, msg)
	case "leaderboard":
		text, err = b.leaderboard(ctx, msg, args)
	case "yesterday_report":
		text, err = b.yesterdayReport(ctx, msg)
	case "achievements":
		text = presenter.AchievementCatalog(b.deps.Catalog.Achievements)
	case "badges":
		text = presenter.BadgeCatalog(b.deps.Catalog.Badges)
	case "cards":
		text = presenter.CardShop(b.deps.Catalog.Cards)
	case "buycard":
		text, err = b.buyCard(ctx, msg, args)
	case "myachievements":
		text, err = b.myAchievements(ctx, msg)
	case "mybadges":
		text, err = b.myBadges(ctx, msg)
	case "mycards":
		text, err = b.myCards(ctx, msg)
	default:
		return
	}

	if err != nil {
		b.logger.Error("command failed",
			slog.String("command", cmd),
			slog.Int64("chat_id", msg.Chat.ID),
			slog.String("error", err.Error()))
		text = "Something went wrong, try again later."
	}
	if text == "" {
		return
	}
	if _, err := b.client.SendHTML(ctx, msg.Chat.ID, text); err != nil {
		b.logger.Error("command reply failed",
			slog.String("command", cmd),
			slog.Int64("chat_id", msg.Chat.ID),
			slog.String("error", err.Error()))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// COMMAND IMPLEMENTATIONS
// ─────────────────────────────────────────────────────────────────────────────

func (b *Bot) myInfo(ctx context.Context, msg *telegram.Message) (string, error) {
	st, err := b.deps.MemberStats.Handle(ctx, stats.UserID(msg.From.ID), time.Now())
	if err != nil {
		if errors.Is(err, stats.ErrUserNotFound) {
			return "I don't know you yet. Say something in a group chat first!", nil
		}
		return "", err
	}
	return presenter.MyInfo(st), nil
}

func (b *Bot) leaderboard(ctx context.Context, msg *telegram.Message, args string) (string, error) {
	window := stats.Since(timeutil.StartOfToday(time.Now(), b.deps.Location))
	title := "Today's leaderboard"
	limit := 10
	if strings.EqualFold(args, "all") {
		window = stats.AllTime
		title = "All-time leaderboard"
		limit = 0 // all rows
	}

	entries, err := b.deps.Leaderboard.Handle(ctx, query.LeaderboardQuery{
		ChatID: stats.ChatID(msg.Chat.ID),
		Window: window,
		Limit:  limit,
	})
	if err != nil {
		return "", err
	}
	return presenter.Leaderboard(title, entries), nil
}

func (b *Bot) yesterdayReport(ctx context.Context, msg *telegram.Message) (string, error) {
	section, total, err := b.deps.DailyReport.ChatYesterday(ctx, stats.ChatID(msg.Chat.ID), time.Now())
	if err != nil {
		return "", err
	}
	start, _ := timeutil.YesterdayRange(time.Now(), b.deps.Location)
	rows := make([]stats.RankedRow, len(section.Entries))
	for i, e := range section.Entries {
		rows[i] = e.RankedRow
	}
	return presenter.DailyReport(&notification.ReportPayload{
		Date:          start,
		TotalMessages: total,
		Entries:       rows,
	}), nil
}

func (b *Bot) buyCard(ctx context.Context, msg *telegram.Message, args string) (string, error) {
	if args == "" {
		return "Which card? Use /buycard &lt;name&gt;, see /cards for the shop.", nil
	}

	key := resolveCardKey(b.deps.Catalog, args)
	_, err := b.deps.BuyCard.Handle(ctx, command.BuyCardCommand{
		UserID:  stats.UserID(msg.From.ID),
		ChatID:  stats.ChatID(msg.Chat.ID),
		CardKey: key,
	})
	switch {
	case err == nil:
		// The purchase notifier already announced it; reply quietly.
		return "", nil
	case errors.Is(err, progression.ErrCardNotFound):
		return "No such card. Check /cards for what's on offer.", nil
	case errors.Is(err, progression.ErrCardNotForSale):
		return "That card isn't for sale.", nil
	case errors.Is(err, progression.ErrInsufficientExperience):
		return "Not enough experience for that card. Keep chatting!", nil
	case errors.Is(err, stats.ErrUserNotFound):
		return "I don't know you yet. Say something in a group chat first!", nil
	default:
		return "", err
	}
}

// resolveCardKey accepts either a card key or a display title.
func resolveCardKey(catalog progression.Catalog, arg string) string {
	if _, ok := catalog.CardByKey(arg); ok {
		return arg
	}
	for _, d := range catalog.Cards {
		if strings.EqualFold(d.Title, arg) {
			return d.Key
		}
	}
	return arg
}

func (b *Bot) myAchievements(ctx context.Context, msg *telegram.Message) (string, error) {
	unlocks, err := b.deps.MemberStats.Achievements(ctx, stats.UserID(msg.From.ID))
	if err != nil {
		return "", err
	}
	return presenter.MyAchievements(unlocks, b.deps.Catalog), nil
}

func (b *Bot) myBadges(ctx context.Context, msg *telegram.Message) (string, error) {
	awards, err := b.deps.MemberStats.Badges(ctx, stats.UserID(msg.From.ID))
	if err != nil {
		return "", err
	}
	return presenter.MyBadges(awards, b.deps.Catalog), nil
}

func (b *Bot) myCards(ctx context.Context, msg *telegram.Message) (string, error) {
	holdings, err := b.deps.MemberStats.Cards(ctx, stats.UserID(msg.From.ID))
	if err != nil {
		return "", err
	}
	return presenter.MyCards(holdings, b.deps.Catalog), nil
}
