package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/memory"
)

// flakyNotifier fails for selected chats and records what got through.
type flakyNotifier struct {
	mu       sync.Mutex
	failFor  map[stats.ChatID]bool
	received []notification.Notification
}

func (f *flakyNotifier) Notify(_ context.Context, n notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[n.ChatID] {
		return errors.New("send failed")
	}
	f.received = append(f.received, n)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedYesterday(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Chats().Upsert(ctx, 100, "Cookies"))
	require.NoError(t, store.Chats().Upsert(ctx, 200, "Crumbs"))

	start, _ := yesterdayBounds()
	require.NoError(t, store.Append(ctx, stats.MessageEvent{UserID: 1, ChatID: 100, Type: stats.TypeText, At: start.Add(10 * time.Hour)}))
	require.NoError(t, store.Append(ctx, stats.MessageEvent{UserID: 2, ChatID: 200, Type: stats.TypePhoto, At: start.Add(11 * time.Hour)}))
}

func yesterdayBounds() (time.Time, time.Time) {
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -1), end
}

func TestDailyReportJob_DispatchesPerChat(t *testing.T) {
	store := memory.NewStore()
	seedYesterday(t, store)

	reports := query.NewDailyReportHandler(store, store.Chats(), time.UTC)
	notifier := &flakyNotifier{}
	job := NewDailyReportJob(reports, notifier, testLogger())

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, notifier.received, 2)
	for _, n := range notifier.received {
		assert.Equal(t, notification.KindDailyReport, n.Kind)
		require.NotNil(t, n.Report)
		assert.Equal(t, 2, n.Report.TotalMessages, "the total is cross-chat")
		assert.Len(t, n.Report.Entries, 1)
	}
}

func TestDailyReportJob_ChatFailureDoesNotBlockOthers(t *testing.T) {
	store := memory.NewStore()
	seedYesterday(t, store)

	reports := query.NewDailyReportHandler(store, store.Chats(), time.UTC)
	notifier := &flakyNotifier{failFor: map[stats.ChatID]bool{100: true}}
	job := NewDailyReportJob(reports, notifier, testLogger())

	require.NoError(t, job.Run(context.Background()), "per-chat failures are not job failures")

	require.Len(t, notifier.received, 1)
	assert.Equal(t, stats.ChatID(200), notifier.received[0].ChatID)
}

func TestDailyReportJob_NoActivityNoMessages(t *testing.T) {
	store := memory.NewStore()
	reports := query.NewDailyReportHandler(store, store.Chats(), time.UTC)
	notifier := &flakyNotifier{}
	job := NewDailyReportJob(reports, notifier, testLogger())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, notifier.received)
}

func TestDailyReportJob_Name(t *testing.T) {
	job := NewDailyReportJob(nil, nil, testLogger())
	assert.Equal(t, "daily_report", job.Name())
	assert.NotEmpty(t, job.Description())
}
