// Package presenter renders bot output as Telegram HTML. All
// user-controlled strings pass through EscapeHTML; the engine itself
// never produces markup.
package presenter

import (
	"fmt"
	"html"
	"strings"

	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

var medals = []string{"🥇", "🥈", "🥉"}

func rankMark(rank int) string {
	if rank >= 1 && rank <= len(medals) {
		return medals[rank-1]
	}
	return fmt.Sprintf("%d.", rank)
}

// EscapeHTML escapes a user-controlled string for Telegram HTML.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Welcome renders the /start reply.
func Welcome() string {
	return "🍪 <b>Cookie Growth Bot</b>\n\n" +
		"I count every message in this chat, hand out experience, levels, " +
		"achievements and daily badges.\n\n" +
		"Try /myinfo to see your stats or /help for all commands."
}

// Help renders the /help reply.
func Help() string {
	return `<b>Commands</b>
/myinfo — your experience, level and message counts
/leaderboard — today's top users (add "all" for all time)
/yesterday_report — yesterday's summary for this chat
/achievements — achievement catalog
/badges — badge catalog
/cards — card shop
/buycard &lt;name&gt; — buy a card with experience
/myachievements — your unlocked achievements
/mybadges — your earned badges
/mycards — your cards
/ping — check that I'm alive`
}

// Pong renders the /ping reply.
func Pong() string {
	return "pong 🏓"
}

// MyInfo renders the personal stats card.
func MyInfo(s query.MemberStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 <b>%s</b>\n\n", EscapeHTML(s.User.DisplayName()))
	fmt.Fprintf(&b, "⭐ Level: <b>%d</b>\n", s.User.Level)
	fmt.Fprintf(&b, "✨ Experience: <b>%d</b>", s.User.TotalExperience)
	if s.AtMaxLevel {
		b.WriteString(" (max level)\n")
	} else {
		fmt.Fprintf(&b, " / %d to next level\n", s.NextThreshold)
	}
	fmt.Fprintf(&b, "📅 Earned today: <b>%d</b> of %d\n\n", s.EarnedToday, s.DailyLimit)

	fmt.Fprintf(&b, "📨 Messages today: <b>%d</b>\n", s.TodayCounts.Total)
	fmt.Fprintf(&b, "📚 Messages total: <b>%d</b>\n", s.LifetimeCounts.Total)

	details := make([]string, 0, len(stats.AllMessageTypes))
	for _, t := range stats.AllMessageTypes {
		if n := s.LifetimeCounts.Count(t); n > 0 {
			details = append(details, fmt.Sprintf("%s %d", t, n))
		}
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, "<i>%s</i>", strings.Join(details, " · "))
	}
	return b.String()
}

// Leaderboard renders ranked entries under a title.
func Leaderboard(title string, entries []query.LeaderboardEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("<b>%s</b>\n\nNothing here yet — say something!", EscapeHTML(title))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 <b>%s</b>\n\n", EscapeHTML(title))
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s — <b>%d</b> pts (%d msg)\n",
			rankMark(e.Rank), EscapeHTML(e.DisplayName()), e.Score, e.Count)
	}
	return b.String()
}

// DailyReport renders one chat's report section.
func DailyReport(p *notification.ReportPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Report for %s</b>\n", p.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Messages across all chats: <b>%d</b>\n\n", p.TotalMessages)

	if len(p.Entries) == 0 {
		b.WriteString("This chat was quiet yesterday.")
		return b.String()
	}
	b.WriteString("Most active here:\n")
	for i, row := range p.Entries {
		fmt.Fprintf(&b, "%s %s — <b>%d</b> pts (%d msg)\n",
			rankMark(i+1), EscapeHTML(row.DisplayName()), row.Score, row.Count)
	}
	return b.String()
}

// LevelUp renders the level-up announcement.
func LevelUp(p *notification.LevelUpPayload) string {
	return fmt.Sprintf("🎉 <b>%s</b> reached level <b>%d</b>!",
		EscapeHTML(p.UserName), p.Level)
}

// AchievementUnlocked renders the unlock announcement.
func AchievementUnlocked(p *notification.AchievementPayload) string {
	return fmt.Sprintf("%s <b>%s</b> unlocked the achievement <b>%s</b>!",
		emojiOr(p.Emoji, "🏅"), EscapeHTML(p.UserName), EscapeHTML(p.Title))
}

// BadgeEarned renders the badge announcement.
func BadgeEarned(p *notification.BadgePayload) string {
	return fmt.Sprintf("%s <b>%s</b> earned the badge <b>%s</b>!",
		emojiOr(p.Emoji, "🎖"), EscapeHTML(p.UserName), EscapeHTML(p.Title))
}

// PurchaseConfirmed renders the purchase announcement.
func PurchaseConfirmed(p *notification.PurchasePayload) string {
	return fmt.Sprintf("%s <b>%s</b> bought <b>%s</b> for %d ✨ (%d left)",
		emojiOr(p.Emoji, "🃏"), EscapeHTML(p.UserName), EscapeHTML(p.CardTitle),
		p.Price, p.Balance)
}

// AchievementCatalog renders the full achievement list.
func AchievementCatalog(defs []progression.AchievementDef) string {
	if len(defs) == 0 {
		return "No achievements are configured."
	}
	var b strings.Builder
	b.WriteString("🏅 <b>Achievements</b>\n\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "%s <b>%s</b> — %s\n",
			emojiOr(d.Emoji, "▫️"), EscapeHTML(d.Title), EscapeHTML(d.Description))
	}
	return b.String()
}

// BadgeCatalog renders the full badge list.
func BadgeCatalog(defs []progression.BadgeDef) string {
	if len(defs) == 0 {
		return "No badges are configured."
	}
	var b strings.Builder
	b.WriteString("🎖 <b>Badges</b>\n\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "%s <b>%s</b> — %s\n",
			emojiOr(d.Emoji, "▫️"), EscapeHTML(d.Title), EscapeHTML(d.Description))
	}
	return b.String()
}

// CardShop renders the purchasable card list.
func CardShop(defs []progression.CardDef) string {
	if len(defs) == 0 {
		return "The card shop is empty."
	}
	var b strings.Builder
	b.WriteString("🃏 <b>Card shop</b>\n\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "%s <b>%s</b> — %d ✨\n<i>%s</i>\n",
			emojiOr(d.Emoji, "▫️"), EscapeHTML(d.Title), d.Price, EscapeHTML(d.Description))
	}
	b.WriteString("\nBuy with /buycard &lt;name&gt;")
	return b.String()
}

// MyAchievements renders the user's unlocks against the catalog.
func MyAchievements(unlocks []progression.AchievementUnlock, catalog progression.Catalog) string {
	if len(unlocks) == 0 {
		return "You haven't unlocked any achievements yet. Keep chatting!"
	}
	var b strings.Builder
	b.WriteString("🏅 <b>Your achievements</b>\n\n")
	for _, u := range unlocks {
		title, emoji := u.Key, "▫️"
		if def, ok := catalog.AchievementByKey(u.Key); ok {
			title = def.Title
			emoji = emojiOr(def.Emoji, emoji)
		}
		fmt.Fprintf(&b, "%s <b>%s</b> — %s\n", emoji, EscapeHTML(title), u.UnlockedAt.Format("2006-01-02"))
	}
	return b.String()
}

// MyBadges renders the user's badge awards against the catalog.
func MyBadges(awards []progression.BadgeAward, catalog progression.Catalog) string {
	if len(awards) == 0 {
		return "No badges yet. Be the first to speak up in the morning!"
	}
	var b strings.Builder
	b.WriteString("🎖 <b>Your badges</b>\n\n")
	for _, a := range awards {
		title, emoji := a.Key, "▫️"
		if def, ok := catalog.BadgeByKey(a.Key); ok {
			title = def.Title
			emoji = emojiOr(def.Emoji, emoji)
		}
		fmt.Fprintf(&b, "%s <b>%s</b> — %s\n", emoji, EscapeHTML(title), a.EarnedAt.Format("2006-01-02"))
	}
	return b.String()
}

// MyCards renders the user's card holdings against the catalog.
func MyCards(holdings []progression.CardHolding, catalog progression.Catalog) string {
	if len(holdings) == 0 {
		return "You don't own any cards. Browse the shop with /cards."
	}
	var b strings.Builder
	b.WriteString("🃏 <b>Your cards</b>\n\n")
	for _, h := range holdings {
		title, emoji := h.Key, "▫️"
		if def, ok := catalog.CardByKey(h.Key); ok {
			title = def.Title
			emoji = emojiOr(def.Emoji, emoji)
		}
		fmt.Fprintf(&b, "%s <b>%s</b> × %d\n", emoji, EscapeHTML(title), h.Count)
	}
	return b.String()
}

func emojiOr(emoji, fallback string) string {
	if emoji != "" {
		return emoji
	}
	return fallback
}
