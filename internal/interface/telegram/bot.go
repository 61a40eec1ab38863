// Package telegram is the bot's transport layer: it long-polls for
// updates, routes commands, feeds every group message into the
// recording pipeline, and renders replies via the presenter.
package telegram

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/application/command"
	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig configures the update loop and chat behavior.
type BotConfig struct {
	// PollingTimeout is the long-poll hold in seconds.
	PollingTimeout int

	// ReplyChance is the probability (0..1) of answering a plain
	// message with a random phrase.
	ReplyChance float64

	// Phrases is the pool of random replies.
	Phrases []string

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		PollingTimeout: 30,
		ReplyChance:    0.02,
	}
}

// BotDependencies aggregates the application handlers the bot calls.
type BotDependencies struct {
	RecordMessage *command.RecordMessageHandler
	BuyCard       *command.BuyCardHandler
	Leaderboard   *query.LeaderboardHandler
	MemberStats   *query.MemberStatsHandler
	DailyReport   *query.DailyReportHandler
	Catalog       progression.Catalog
	Location      *time.Location
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot drives the polling loop. Updates are processed sequentially:
// the recording pipeline assumes one writer, and group chat volumes
// don't need more.
type Bot struct {
	client   *telegram.Client
	cfg      BotConfig
	deps     BotDependencies
	logger   *slog.Logger
	rng      *rand.Rand
	username string
}

// NewBot creates the bot.
func NewBot(client *telegram.Client, cfg BotConfig, deps BotDependencies) *Bot {
	if cfg.PollingTimeout <= 0 {
		cfg.PollingTimeout = 30
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Bot{
		client: client,
		cfg:    cfg,
		deps:   deps,
		logger: cfg.Logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start verifies the token and blocks polling for updates until the
// context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}
	b.username = me.Username
	b.logger.Info("bot started", slog.String("username", me.Username))

	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopped")
			return nil
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, 100, b.cfg.PollingTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("bot stopped")
				return nil
			}
			b.logger.Error("get updates failed", slog.String("error", err.Error()))
			// Back off briefly so a dead API doesn't spin the loop.
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

// handleUpdate dispatches one update. Handler errors are logged, never
// propagated: one bad message must not stop the loop.
func (b *Bot) handleUpdate(ctx context.Context, upd telegram.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.From.IsBot {
		return
	}
	if !msg.Chat.IsGroup() {
		// Private chats get command replies but no stat tracking.
		if cmd, args, ok := parseCommand(msg.Text, b.username); ok {
			b.handleCommand(ctx, msg, cmd, args)
		}
		return
	}

	if cmd, args, ok := parseCommand(msg.Text, b.username); ok {
		b.handleCommand(ctx, msg, cmd, args)
		return
	}

	b.recordMessage(ctx, msg)
	b.maybeReply(ctx, msg)
}

// maybeReply answers a plain message with a random phrase, rarely.
func (b *Bot) maybeReply(ctx context.Context, msg *telegram.Message) {
	if len(b.cfg.Phrases) == 0 || b.cfg.ReplyChance <= 0 {
		return
	}
	if b.rng.Float64() >= b.cfg.ReplyChance {
		return
	}
	phrase := b.cfg.Phrases[b.rng.Intn(len(b.cfg.Phrases))]
	if _, err := b.client.SendText(ctx, msg.Chat.ID, phrase); err != nil {
		b.logger.Warn("random reply failed", slog.String("error", err.Error()))
	}
}
