// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD MESSAGE COMMAND
// The hot path of the engine: one incoming group message is recorded as an
// event, awarded capped experience, and run through the level, achievement
// and badge checks.
// ══════════════════════════════════════════════════════════════════════════════

// RecordMessageCommand carries one observed group message.
type RecordMessageCommand struct {
	UserID    stats.UserID
	ChatID    stats.ChatID
	Username  string
	FirstName string
	LastName  string
	ChatTitle string
	Type      stats.MessageType

	// At is when the message arrived (defaults to now if zero).
	At time.Time
}

// Validate validates the command.
func (c RecordMessageCommand) Validate() error {
	if !c.UserID.IsValid() {
		return stats.ErrInvalidUserID
	}
	if !c.ChatID.IsValid() {
		return stats.ErrInvalidChatID
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", stats.ErrInvalidMessageType, c.Type)
	}
	return nil
}

// RecordMessageResult reports what one message did to the user's state.
type RecordMessageResult struct {
	// Awarded is the experience granted for this message after the
	// daily cap, possibly zero.
	Awarded int

	// TotalExperience is the user's balance after the award.
	TotalExperience int

	// Level is the user's level after the check.
	Level int

	// LeveledUp indicates the level was raised by this message.
	LeveledUp bool

	// AchievementsUnlocked lists achievement keys unlocked just now.
	AchievementsUnlocked []string

	// BadgesEarned lists badge keys earned just now.
	BadgesEarned []string
}

// RecordMessageDeps wires the handler.
type RecordMessageDeps struct {
	Users        stats.UserRepository
	Chats        stats.ChatRepository
	Events       stats.EventRepository
	Achievements progression.AchievementRepository
	Badges       progression.BadgeRepository
	Catalog      progression.Catalog
	Notifier     notification.Notifier
	Location     *time.Location
	Logger       *slog.Logger
}

// RecordMessageHandler processes incoming messages.
type RecordMessageHandler struct {
	deps RecordMessageDeps
}

// NewRecordMessageHandler creates the handler. Nil Notifier, Location
// and Logger fall back to safe defaults.
func NewRecordMessageHandler(deps RecordMessageDeps) *RecordMessageHandler {
	if deps.Notifier == nil {
		deps.Notifier = notification.NopNotifier{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &RecordMessageHandler{deps: deps}
}

// Handle runs the full per-message flow:
//
//  1. ensure the user and chat exist, refreshing identity fields;
//  2. compute today's earned experience from the event log and clamp
//     this message's award against the daily cap;
//  3. append the event (always, even when the award is zero);
//  4. apply the award and raise the level if a threshold was crossed;
//  5. re-check achievement conditions against lifetime counts;
//  6. on the first message of the day, check badge conditions.
//
// Failures in the award and unlock steps are logged and swallowed so a
// flaky notification or unlock write never loses the recorded event.
func (h *RecordMessageHandler) Handle(ctx context.Context, cmd RecordMessageCommand) (RecordMessageResult, error) {
	var res RecordMessageResult

	if err := cmd.Validate(); err != nil {
		return res, err
	}
	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}

	if err := h.deps.Users.Upsert(ctx, cmd.UserID, cmd.Username, cmd.FirstName, cmd.LastName); err != nil {
		return res, fmt.Errorf("record_message: upsert user: %w", err)
	}
	if err := h.deps.Chats.Upsert(ctx, cmd.ChatID, cmd.ChatTitle); err != nil {
		return res, fmt.Errorf("record_message: upsert chat: %w", err)
	}

	today := stats.Since(timeutil.StartOfToday(at, h.deps.Location))

	// Today's earnings are reconstructed from the log before this
	// message is appended, so the cap applies to prior messages only.
	countsBefore, err := h.deps.Events.CountsByUser(ctx, cmd.UserID, today)
	if err != nil {
		return res, fmt.Errorf("record_message: today counts: %w", err)
	}
	earned := h.deps.Catalog.Points.EarnedToday(countsBefore)
	award := progression.ClampAward(h.deps.Catalog.Points.PointFor(cmd.Type), earned, h.deps.Catalog.DailyLimit)

	ev := stats.MessageEvent{UserID: cmd.UserID, ChatID: cmd.ChatID, Type: cmd.Type, At: at}
	if err := h.deps.Events.Append(ctx, ev); err != nil {
		return res, fmt.Errorf("record_message: append event: %w", err)
	}
	res.Awarded = award

	user, err := h.deps.Users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return res, fmt.Errorf("record_message: load user: %w", err)
	}
	res.TotalExperience = user.TotalExperience
	res.Level = user.Level

	if award > 0 {
		h.applyAward(ctx, cmd, user, award, at, &res)
	}

	h.checkAchievements(ctx, cmd, user, at, &res)
	h.checkBadges(ctx, cmd, user, today, at, &res)

	return res, nil
}

// applyAward credits the experience and raises the cached level when a
// threshold was crossed. The level only ever moves up.
func (h *RecordMessageHandler) applyAward(ctx context.Context, cmd RecordMessageCommand, user *stats.User, award int, at time.Time, res *RecordMessageResult) {
	total, err := h.deps.Users.AddExperience(ctx, cmd.UserID, award)
	if err != nil {
		h.deps.Logger.Error("award experience failed",
			slog.Int64("user_id", int64(cmd.UserID)),
			slog.String("error", err.Error()))
		return
	}
	res.TotalExperience = total

	newLevel := h.deps.Catalog.Levels.LevelFor(total)
	if newLevel <= user.Level {
		return
	}
	if err := h.deps.Users.SetLevel(ctx, cmd.UserID, newLevel); err != nil {
		h.deps.Logger.Error("set level failed",
			slog.Int64("user_id", int64(cmd.UserID)),
			slog.Int("level", newLevel),
			slog.String("error", err.Error()))
		return
	}
	res.Level = newLevel
	res.LeveledUp = true

	n := notification.New(notification.KindLevelUp, cmd.ChatID, at)
	n.LevelUp = &notification.LevelUpPayload{
		UserID:   cmd.UserID,
		UserName: user.DisplayName(),
		Level:    newLevel,
	}
	h.notify(ctx, n)
}

// checkAchievements re-evaluates every achievement the user does not
// hold yet against lifetime counts. Unlocks are idempotent: a lost
// race on the unique unlock row is not an error and not re-announced.
func (h *RecordMessageHandler) checkAchievements(ctx context.Context, cmd RecordMessageCommand, user *stats.User, at time.Time, res *RecordMessageResult) {
	if len(h.deps.Catalog.Achievements) == 0 {
		return
	}

	held, err := h.deps.Achievements.ListByUser(ctx, cmd.UserID)
	if err != nil {
		h.deps.Logger.Error("list achievements failed",
			slog.Int64("user_id", int64(cmd.UserID)),
			slog.String("error", err.Error()))
		return
	}
	heldKeys := make(map[string]bool, len(held))
	for _, u := range held {
		heldKeys[u.Key] = true
	}

	lifetime, err := h.deps.Events.CountsByUser(ctx, cmd.UserID, stats.AllTime)
	if err != nil {
		h.deps.Logger.Error("lifetime counts failed",
			slog.Int64("user_id", int64(cmd.UserID)),
			slog.String("error", err.Error()))
		return
	}

	for _, def := range h.deps.Catalog.Achievements {
		if heldKeys[def.Key] || def.Condition.Metric.IsRank() {
			continue
		}
		if !def.Condition.Matches(countMetric(lifetime, def.Condition.Metric)) {
			continue
		}
		created, err := h.deps.Achievements.Unlock(ctx, cmd.UserID, def.Key, at)
		if err != nil {
			h.deps.Logger.Error("unlock achievement failed",
				slog.Int64("user_id", int64(cmd.UserID)),
				slog.String("achievement", def.Key),
				slog.String("error", err.Error()))
			continue
		}
		if !created {
			continue
		}
		res.AchievementsUnlocked = append(res.AchievementsUnlocked, def.Key)

		n := notification.New(notification.KindAchievementUnlocked, cmd.ChatID, at)
		n.Achievement = &notification.AchievementPayload{
			UserID:   cmd.UserID,
			UserName: user.DisplayName(),
			Key:      def.Key,
			Title:    def.Title,
			Emoji:    def.Emoji,
		}
		h.notify(ctx, n)
	}
}

// checkBadges runs only on the user's first message of the day in the
// chat (today's in-chat count is exactly 1 after the append) and
// evaluates rank conditions against the leaderboard as it stands at
// that moment. Badges already earned today are skipped; the same badge
// can be earned again on a later day.
func (h *RecordMessageHandler) checkBadges(ctx context.Context, cmd RecordMessageCommand, user *stats.User, today stats.Window, at time.Time, res *RecordMessageResult) {
	if len(h.deps.Catalog.Badges) == 0 {
		return
	}

	inChatToday, err := h.deps.Events.CountByUserInChat(ctx, cmd.UserID, cmd.ChatID, today)
	if err != nil {
		h.deps.Logger.Error("badge gating count failed",
			slog.Int64("user_id", int64(cmd.UserID)),
			slog.String("error", err.Error()))
		return
	}
	if inChatToday != 1 {
		return
	}

	held, err := h.deps.Badges.ListByUser(ctx, cmd.UserID)
	if err != nil {
		h.deps.Logger.Error("list badges failed",
			slog.Int64("user_id", int64(cmd.UserID)),
			slog.String("error", err.Error()))
		return
	}
	heldKeys := make(map[string]bool, len(held))
	for _, b := range held {
		if timeutil.SameDay(b.EarnedAt, at, h.deps.Location) {
			heldKeys[b.Key] = true
		}
	}

	for _, def := range h.deps.Catalog.Badges {
		if heldKeys[def.Key] || !def.Condition.Metric.IsRank() {
			continue
		}
		observed, err := h.rankMetric(ctx, cmd, today, def.Condition.Metric)
		if err != nil {
			h.deps.Logger.Error("badge rank check failed",
				slog.Int64("user_id", int64(cmd.UserID)),
				slog.String("badge", def.Key),
				slog.String("error", err.Error()))
			continue
		}
		if !def.Condition.Matches(observed) {
			continue
		}
		if err := h.deps.Badges.Award(ctx, cmd.UserID, def.Key, at); err != nil {
			h.deps.Logger.Error("award badge failed",
				slog.Int64("user_id", int64(cmd.UserID)),
				slog.String("badge", def.Key),
				slog.String("error", err.Error()))
			continue
		}
		res.BadgesEarned = append(res.BadgesEarned, def.Key)

		n := notification.New(notification.KindBadgeEarned, cmd.ChatID, at)
		n.Badge = &notification.BadgePayload{
			UserID:   cmd.UserID,
			UserName: user.DisplayName(),
			Key:      def.Key,
			Title:    def.Title,
			Emoji:    def.Emoji,
		}
		h.notify(ctx, n)
	}
}

// rankMetric resolves a point-in-time rank metric: 1 when the user
// currently leads today's board for the metric's message type in the
// chat the message arrived in, 0 otherwise.
func (h *RecordMessageHandler) rankMetric(ctx context.Context, cmd RecordMessageCommand, today stats.Window, m progression.Metric) (int, error) {
	var filter stats.MessageType
	switch m {
	case progression.MetricTopByMessages:
		filter = "" // all types
	case progression.MetricTopByStickers:
		filter = stats.TypeSticker
	default:
		return 0, fmt.Errorf("record_message: unknown rank metric %q", m)
	}

	top, err := h.deps.Events.TopByType(ctx, cmd.ChatID, filter, today, 1)
	if err != nil {
		return 0, err
	}
	if len(top) > 0 && top[0].UserID == cmd.UserID {
		return 1, nil
	}
	return 0, nil
}

func (h *RecordMessageHandler) notify(ctx context.Context, n notification.Notification) {
	if err := h.deps.Notifier.Notify(ctx, n); err != nil {
		h.deps.Logger.Warn("notification failed",
			slog.String("kind", string(n.Kind)),
			slog.Int64("chat_id", int64(n.ChatID)),
			slog.String("error", err.Error()))
	}
}

// countMetric maps a lifetime-count metric onto aggregated counts.
func countMetric(counts stats.TypeCounts, m progression.Metric) int {
	switch m {
	case progression.MetricTotalMessages:
		return counts.Total
	case progression.MetricTextCount:
		return counts.Count(stats.TypeText)
	case progression.MetricPhotoCount:
		return counts.Count(stats.TypePhoto)
	case progression.MetricVoiceCount:
		return counts.Count(stats.TypeVoice)
	case progression.MetricStickerCount:
		return counts.Count(stats.TypeSticker)
	}
	return 0
}
