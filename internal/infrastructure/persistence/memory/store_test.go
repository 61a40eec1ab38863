package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

func seedEvents(t *testing.T, s *Store, userID stats.UserID, chatID stats.ChatID, at time.Time, types ...stats.MessageType) {
	t.Helper()
	for i, mt := range types {
		require.NoError(t, s.Append(context.Background(), stats.MessageEvent{
			UserID: userID, ChatID: chatID, Type: mt, At: at.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestCountsByUser_TypesSumToTotal(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	seedEvents(t, s, 1, 100, at,
		stats.TypeText, stats.TypeText, stats.TypePhoto, stats.TypeSticker, stats.TypeOther)
	seedEvents(t, s, 2, 100, at, stats.TypeText)

	counts, err := s.CountsByUser(context.Background(), 1, stats.AllTime)
	require.NoError(t, err)

	sum := 0
	for _, n := range counts.ByType {
		sum += n
	}
	assert.Equal(t, counts.Total, sum)
	assert.Equal(t, 5, counts.Total)
	assert.Equal(t, 2, counts.Count(stats.TypeText))
	assert.Equal(t, 1, counts.Count(stats.TypeOther))
}

func TestCountByUserInChat(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	seedEvents(t, s, 1, 100, at, stats.TypeText, stats.TypeText)
	seedEvents(t, s, 1, 200, at, stats.TypeText)
	seedEvents(t, s, 2, 100, at, stats.TypeText)

	n, err := s.CountByUserInChat(context.Background(), 1, 100, stats.AllTime)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountByUserInChat(context.Background(), 1, 300, stats.AllTime)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTopByType(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	seedEvents(t, s, 1, 100, at, stats.TypeSticker, stats.TypeSticker, stats.TypeText)
	seedEvents(t, s, 2, 100, at.Add(time.Minute), stats.TypeSticker)

	top, err := s.TopByType(context.Background(), 100, stats.TypeSticker, stats.AllTime, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, stats.UserCount{UserID: 1, Count: 2}, top[0])

	// Empty type filter counts every message.
	top, err = s.TopByType(context.Background(), 100, "", stats.AllTime, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 3, top[0].Count)
}

func TestActiveChatsAndTotal(t *testing.T) {
	s := NewStore()
	day1 := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	seedEvents(t, s, 1, 100, day1, stats.TypeText)
	seedEvents(t, s, 1, 200, day2, stats.TypeText)

	window := stats.Between(
		time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	chats, err := s.ActiveChats(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, []stats.ChatID{100}, chats)

	total, err := s.TotalMessages(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDelete_Cascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(ctx, 1, "u", "F", "L"))
	require.NoError(t, s.SetExperience(ctx, 1, 100))
	seedEvents(t, s, 1, 100, at, stats.TypeText)
	_, err := s.Unlock(ctx, 1, "chatterbox", at)
	require.NoError(t, err)
	require.NoError(t, s.Badges().Award(ctx, 1, "daily_leader", at))
	require.NoError(t, s.Cards().Purchase(ctx, 1, "golden_cookie", 50, at))

	require.NoError(t, s.Delete(ctx, 1))

	_, err = s.GetByID(ctx, 1)
	assert.ErrorIs(t, err, stats.ErrUserNotFound)

	counts, err := s.CountsByUser(ctx, 1, stats.AllTime)
	require.NoError(t, err)
	assert.Zero(t, counts.Total)

	unlocks, err := s.ListAchievements(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, unlocks)

	holdings, err := s.Cards().ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestUnlock_Idempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	created, err := s.Unlock(ctx, 1, "chatterbox", at)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Unlock(ctx, 1, "chatterbox", at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)

	unlocks, err := s.ListAchievements(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)
}

func TestConsume_RemovesOldestUnit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, 1, "", "F", ""))
	require.NoError(t, s.SetExperience(ctx, 1, 200))

	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Cards().Purchase(ctx, 1, "golden_cookie", 50, at))
	require.NoError(t, s.Cards().Purchase(ctx, 1, "golden_cookie", 50, at.Add(time.Hour)))

	require.NoError(t, s.Cards().Consume(ctx, 1, "golden_cookie"))
	holdings, err := s.Cards().ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 1, holdings[0].Count)

	require.NoError(t, s.Cards().Consume(ctx, 1, "golden_cookie"))
	err = s.Cards().Consume(ctx, 1, "golden_cookie")
	assert.ErrorIs(t, err, progression.ErrCardNotOwned)
}

func TestChatSummaries(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Chats().Upsert(ctx, 100, "Cookies"))

	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	seedEvents(t, s, 1, 100, at, stats.TypeText, stats.TypePhoto)
	seedEvents(t, s, 1, 200, at.Add(time.Hour), stats.TypeText)

	summaries, err := s.ChatSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Most active chat first.
	assert.Equal(t, stats.ChatID(100), summaries[0].ChatID)
	assert.Equal(t, "Cookies", summaries[0].Title)
	assert.Equal(t, 2, summaries[0].Messages)
	assert.Equal(t, 1+3, summaries[0].Score)
}
