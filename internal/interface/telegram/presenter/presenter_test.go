package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;hi&amp;bye&lt;/b&gt;", EscapeHTML("<b>hi&bye</b>"))
}

func TestLeaderboard_EscapesNames(t *testing.T) {
	entries := []query.LeaderboardEntry{
		{Rank: 1, RankedRow: stats.RankedRow{UserID: 1, FirstName: "<script>", Score: 10, Count: 5}},
	}
	out := Leaderboard("Today", entries)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "🥇")
}

func TestLeaderboard_Empty(t *testing.T) {
	out := Leaderboard("Today", nil)
	assert.Contains(t, out, "Nothing here yet")
}

func TestRankMarks(t *testing.T) {
	entries := []query.LeaderboardEntry{
		{Rank: 1, RankedRow: stats.RankedRow{FirstName: "A", Score: 4, Count: 4}},
		{Rank: 2, RankedRow: stats.RankedRow{FirstName: "B", Score: 3, Count: 3}},
		{Rank: 3, RankedRow: stats.RankedRow{FirstName: "C", Score: 2, Count: 2}},
		{Rank: 4, RankedRow: stats.RankedRow{FirstName: "D", Score: 1, Count: 1}},
	}
	out := Leaderboard("Today", entries)
	assert.Contains(t, out, "🥇")
	assert.Contains(t, out, "🥈")
	assert.Contains(t, out, "🥉")
	assert.Contains(t, out, "4.")
}

func TestMyInfo(t *testing.T) {
	s := query.MemberStats{
		User:          stats.User{FirstName: "Aibek", TotalExperience: 120, Level: 2},
		EarnedToday:   20,
		DailyLimit:    150,
		NextThreshold: 300,
		TodayCounts:   stats.TypeCounts{Total: 5},
		LifetimeCounts: stats.TypeCounts{
			ByType: map[stats.MessageType]int{stats.TypeText: 40, stats.TypePhoto: 2},
			Total:  42,
		},
	}
	out := MyInfo(s)
	assert.Contains(t, out, "Aibek")
	assert.Contains(t, out, "/ 300 to next level")
	assert.Contains(t, out, "20</b> of 150")
	assert.Contains(t, out, "text 40")

	s.AtMaxLevel = true
	assert.Contains(t, MyInfo(s), "(max level)")
}

func TestDailyReport(t *testing.T) {
	p := &notification.ReportPayload{
		Date:          time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		TotalMessages: 42,
		Entries: []stats.RankedRow{
			{UserID: 1, FirstName: "Aibek", Score: 10, Count: 7},
		},
	}
	out := DailyReport(p)
	assert.Contains(t, out, "2025-03-09")
	assert.Contains(t, out, "<b>42</b>")
	assert.Contains(t, out, "Aibek")

	p.Entries = nil
	assert.Contains(t, DailyReport(p), "quiet yesterday")
}

func TestAnnouncements(t *testing.T) {
	up := LevelUp(&notification.LevelUpPayload{UserName: "Aibek", Level: 3})
	assert.Contains(t, up, "level <b>3</b>")

	ach := AchievementUnlocked(&notification.AchievementPayload{UserName: "Aibek", Title: "Chatterbox", Emoji: "🗣"})
	assert.Contains(t, ach, "🗣")
	assert.Contains(t, ach, "Chatterbox")

	badge := BadgeEarned(&notification.BadgePayload{UserName: "Aibek", Title: "Daily Leader"})
	assert.Contains(t, badge, "🎖", "missing emoji falls back")

	buy := PurchaseConfirmed(&notification.PurchasePayload{
		UserName: "Aibek", CardTitle: "Golden Cookie", Price: 50, Balance: 70,
	})
	assert.Contains(t, buy, "Golden Cookie")
	assert.Contains(t, buy, "50")
	assert.Contains(t, buy, "70")
}
