// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY REPORT JOB
// Once a day, summarizes yesterday's activity: the cross-chat message
// total and each active chat's top users, delivered to that chat. One
// chat failing to receive its report never blocks the others.
// ══════════════════════════════════════════════════════════════════════════════

// DailyReportJob builds and dispatches the yesterday report.
type DailyReportJob struct {
	reports  *query.DailyReportHandler
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewDailyReportJob creates the job.
func NewDailyReportJob(reports *query.DailyReportHandler, notifier notification.Notifier, logger *slog.Logger) *DailyReportJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyReportJob{reports: reports, notifier: notifier, logger: logger}
}

// Name implements scheduler.Job.
func (j *DailyReportJob) Name() string { return "daily_report" }

// Description implements scheduler.Job.
func (j *DailyReportJob) Description() string {
	return "sends yesterday's activity summary to every active chat"
}

// Run builds the report and dispatches one message per active chat.
// Per-chat dispatch failures are logged and skipped.
func (j *DailyReportJob) Run(ctx context.Context) error {
	now := time.Now()

	report, err := j.reports.Yesterday(ctx, now)
	if err != nil {
		return fmt.Errorf("daily_report: build: %w", err)
	}
	if len(report.Chats) == 0 {
		j.logger.Info("daily report skipped, no active chats",
			slog.Time("date", report.Date))
		return nil
	}

	sent, failed := 0, 0
	for _, section := range report.Chats {
		n := notification.New(notification.KindDailyReport, section.ChatID, now)
		n.Report = &notification.ReportPayload{
			Date:          report.Date,
			TotalMessages: report.TotalMessages,
			Entries:       flattenEntries(section.Entries),
		}
		if err := j.notifier.Notify(ctx, n); err != nil {
			failed++
			j.logger.Error("daily report dispatch failed",
				slog.Int64("chat_id", int64(section.ChatID)),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	j.logger.Info("daily report dispatched",
		slog.Time("date", report.Date),
		slog.Int("total_messages", report.TotalMessages),
		slog.Int("chats_sent", sent),
		slog.Int("chats_failed", failed))
	return nil
}

func flattenEntries(entries []query.LeaderboardEntry) []stats.RankedRow {
	rows := make([]stats.RankedRow, len(entries))
	for i, e := range entries {
		rows[i] = e.RankedRow
	}
	return rows
}
