package query

import (
	"context"
	"fmt"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY REPORT QUERY
// Builds the yesterday summary: the cross-chat message total plus a
// top-10 leaderboard per chat that saw activity. Used by the scheduled
// report job and by the /yesterday_report command.
// ══════════════════════════════════════════════════════════════════════════════

// ReportTopSize is how many users each chat's report section lists.
const ReportTopSize = 10

// ChatReport is one chat's slice of the daily report.
type ChatReport struct {
	ChatID  stats.ChatID
	Title   string
	Entries []LeaderboardEntry
}

// DailyReport summarizes one completed day.
type DailyReport struct {
	// Date is the start of the reported day in the configured location.
	Date time.Time

	// TotalMessages counts every event across all chats that day.
	TotalMessages int

	// Chats holds a section per chat with at least one event that day.
	Chats []ChatReport
}

// DailyReportHandler builds daily reports from the event log.
type DailyReportHandler struct {
	events   stats.EventRepository
	chats    stats.ChatRepository
	location *time.Location
}

// NewDailyReportHandler creates the handler.
func NewDailyReportHandler(events stats.EventRepository, chats stats.ChatRepository, location *time.Location) *DailyReportHandler {
	if location == nil {
		location = time.UTC
	}
	return &DailyReportHandler{events: events, chats: chats, location: location}
}

// Yesterday builds the report for the day before now, over the
// half-open local-calendar window.
func (h *DailyReportHandler) Yesterday(ctx context.Context, now time.Time) (DailyReport, error) {
	if now.IsZero() {
		now = time.Now()
	}
	start, end := timeutil.YesterdayRange(now, h.location)
	return h.forWindow(ctx, start, end)
}

// forWindow assembles the report for one day window.
func (h *DailyReportHandler) forWindow(ctx context.Context, start, end time.Time) (DailyReport, error) {
	report := DailyReport{Date: start}
	window := stats.Between(start, end)

	total, err := h.events.TotalMessages(ctx, window)
	if err != nil {
		return report, fmt.Errorf("daily_report: total: %w", err)
	}
	report.TotalMessages = total

	chatIDs, err := h.events.ActiveChats(ctx, window)
	if err != nil {
		return report, fmt.Errorf("daily_report: active chats: %w", err)
	}

	for _, chatID := range chatIDs {
		section, err := h.chatSection(ctx, chatID, window)
		if err != nil {
			return report, err
		}
		report.Chats = append(report.Chats, section)
	}
	return report, nil
}

// ChatYesterday builds just one chat's section for yesterday, for the
// in-chat report command.
func (h *DailyReportHandler) ChatYesterday(ctx context.Context, chatID stats.ChatID, now time.Time) (ChatReport, int, error) {
	if !chatID.IsValid() {
		return ChatReport{}, 0, stats.ErrInvalidChatID
	}
	if now.IsZero() {
		now = time.Now()
	}
	start, end := timeutil.YesterdayRange(now, h.location)
	window := stats.Between(start, end)

	total, err := h.events.TotalMessages(ctx, window)
	if err != nil {
		return ChatReport{}, 0, fmt.Errorf("daily_report: total: %w", err)
	}
	section, err := h.chatSection(ctx, chatID, window)
	if err != nil {
		return ChatReport{}, 0, err
	}
	return section, total, nil
}

func (h *DailyReportHandler) chatSection(ctx context.Context, chatID stats.ChatID, window stats.Window) (ChatReport, error) {
	section := ChatReport{ChatID: chatID}

	chat, err := h.chats.GetByID(ctx, chatID)
	if err == nil {
		section.Title = chat.Title
	}

	rows, err := h.events.Leaderboard(ctx, chatID, window, stats.SortByScore, ReportTopSize)
	if err != nil {
		return section, fmt.Errorf("daily_report: chat %d leaderboard: %w", chatID, err)
	}
	section.Entries = make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		section.Entries[i] = LeaderboardEntry{Rank: i + 1, RankedRow: row}
	}
	return section, nil
}
