package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/memory"
)

func TestYesterday_WindowAndTotals(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Chats().Upsert(ctx, 100, "Cookies"))
	require.NoError(t, store.Chats().Upsert(ctx, 200, "Crumbs"))

	yesterday := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	twoDaysAgo := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)

	appendEvent(t, store, 1, 100, stats.TypeText, yesterday)
	appendEvent(t, store, 2, 100, stats.TypePhoto, yesterday.Add(time.Hour))
	appendEvent(t, store, 1, 200, stats.TypeText, yesterday.Add(2*time.Hour))
	// Outside the report window.
	appendEvent(t, store, 1, 100, stats.TypeText, today)
	appendEvent(t, store, 1, 100, stats.TypeText, twoDaysAgo)
	// Exactly at today's midnight: belongs to today.
	appendEvent(t, store, 3, 100, stats.TypeText, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	h := NewDailyReportHandler(store, store.Chats(), time.UTC)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	report, err := h.Yesterday(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), report.Date)
	assert.Equal(t, 3, report.TotalMessages, "total spans all chats, yesterday only")
	require.Len(t, report.Chats, 2)

	var chat100 ChatReport
	for _, section := range report.Chats {
		if section.ChatID == 100 {
			chat100 = section
		}
	}
	assert.Equal(t, "Cookies", chat100.Title)
	require.Len(t, chat100.Entries, 2)
	assert.Equal(t, stats.UserID(2), chat100.Entries[0].UserID, "photo outweighs text")
	assert.Equal(t, 1, chat100.Entries[0].Rank)
}

func TestYesterday_NoActivity(t *testing.T) {
	h := NewDailyReportHandler(memory.NewStore(), memory.NewStore().Chats(), time.UTC)

	report, err := h.Yesterday(context.Background(), time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, report.TotalMessages)
	assert.Empty(t, report.Chats)
}

func TestYesterday_SectionsCapAtTopSize(t *testing.T) {
	store := memory.NewStore()
	yesterday := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	for u := 1; u <= ReportTopSize+3; u++ {
		appendEvent(t, store, stats.UserID(u), 100, stats.TypeText, yesterday.Add(time.Duration(u)*time.Minute))
	}

	h := NewDailyReportHandler(store, store.Chats(), time.UTC)
	report, err := h.Yesterday(context.Background(), time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, report.Chats, 1)
	assert.Len(t, report.Chats[0].Entries, ReportTopSize)
}

func TestChatYesterday(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Chats().Upsert(ctx, 100, "Cookies"))

	yesterday := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	appendEvent(t, store, 1, 100, stats.TypeText, yesterday)
	appendEvent(t, store, 2, 200, stats.TypeText, yesterday)

	h := NewDailyReportHandler(store, store.Chats(), time.UTC)

	section, total, err := h.ChatYesterday(ctx, 100, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, total, "the total is cross-chat")
	assert.Equal(t, "Cookies", section.Title)
	require.Len(t, section.Entries, 1)
	assert.Equal(t, stats.UserID(1), section.Entries[0].UserID)

	_, _, err = h.ChatYesterday(ctx, 0, time.Time{})
	assert.ErrorIs(t, err, stats.ErrInvalidChatID)
}

func TestYesterday_LocalMidnightBoundary(t *testing.T) {
	almaty, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	store := memory.NewStore()
	// 20:00 UTC on March 9 is 01:00 March 10 in Almaty, so it must not
	// appear in Almaty's March-9 report.
	appendEvent(t, store, 1, 100, stats.TypeText, time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC))
	appendEvent(t, store, 2, 100, stats.TypeText, time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC))

	h := NewDailyReportHandler(store, store.Chats(), almaty)
	report, err := h.Yesterday(context.Background(), time.Date(2025, 3, 10, 9, 0, 0, 0, almaty))
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalMessages)
}
