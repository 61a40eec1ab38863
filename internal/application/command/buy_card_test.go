package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/notification"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/memory"
)

func shopCatalog() progression.Catalog {
	c := testCatalog()
	c.Cards = []progression.CardDef{
		{Key: "golden_cookie", Title: "Golden Cookie", Emoji: "🍪", Price: 50},
		{Key: "trophy", Title: "Trophy", Price: 0},
	}
	return c
}

func seedUser(t *testing.T, store *memory.Store, id stats.UserID, exp int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, id, "", "Buyer", ""))
	require.NoError(t, store.SetExperience(ctx, id, exp))
}

func TestBuyCard_Success(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 120)
	notifier := &recordingNotifier{}
	h := NewBuyCardHandler(store, store.Cards(), shopCatalog(), notifier, testLogger())

	res, err := h.Handle(context.Background(), BuyCardCommand{
		UserID:  1,
		ChatID:  100,
		CardKey: "golden_cookie",
		At:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "golden_cookie", res.Card.Key)
	assert.Equal(t, 70, res.Balance)

	user, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 70, user.TotalExperience)

	holdings, err := store.Cards().ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, progression.CardHolding{Key: "golden_cookie", Count: 1}, holdings[0])

	sent := notifier.byKind(notification.KindPurchaseConfirmed)
	require.Len(t, sent, 1)
	assert.Equal(t, 70, sent[0].Purchase.Balance)
}

func TestBuyCard_RepeatPurchasesStack(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 120)
	h := NewBuyCardHandler(store, store.Cards(), shopCatalog(), nil, testLogger())

	for i := 0; i < 2; i++ {
		_, err := h.Handle(context.Background(), BuyCardCommand{UserID: 1, ChatID: 100, CardKey: "golden_cookie"})
		require.NoError(t, err)
	}

	holdings, err := store.Cards().ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 2, holdings[0].Count)

	user, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 20, user.TotalExperience)
}

func TestBuyCard_InsufficientExperience(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 40)
	h := NewBuyCardHandler(store, store.Cards(), shopCatalog(), nil, testLogger())

	_, err := h.Handle(context.Background(), BuyCardCommand{UserID: 1, ChatID: 100, CardKey: "golden_cookie"})
	require.ErrorIs(t, err, progression.ErrInsufficientExperience)

	// The failed attempt changes nothing.
	user, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 40, user.TotalExperience)

	holdings, err := store.Cards().ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestBuyCard_UnknownAndUnsellable(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 1000)
	h := NewBuyCardHandler(store, store.Cards(), shopCatalog(), nil, testLogger())

	_, err := h.Handle(context.Background(), BuyCardCommand{UserID: 1, CardKey: "nope"})
	assert.ErrorIs(t, err, progression.ErrCardNotFound)

	_, err = h.Handle(context.Background(), BuyCardCommand{UserID: 1, CardKey: "trophy"})
	assert.ErrorIs(t, err, progression.ErrCardNotForSale)

	_, err = h.Handle(context.Background(), BuyCardCommand{UserID: 1, CardKey: ""})
	assert.ErrorIs(t, err, progression.ErrCardNotFound)
}

func TestBuyCard_UnknownUser(t *testing.T) {
	store := memory.NewStore()
	h := NewBuyCardHandler(store, store.Cards(), shopCatalog(), nil, testLogger())

	_, err := h.Handle(context.Background(), BuyCardCommand{UserID: 42, CardKey: "golden_cookie"})
	assert.ErrorIs(t, err, stats.ErrUserNotFound)
}

func TestBuyCard_NoChatNoAnnouncement(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 120)
	notifier := &recordingNotifier{}
	h := NewBuyCardHandler(store, store.Cards(), shopCatalog(), notifier, testLogger())

	_, err := h.Handle(context.Background(), BuyCardCommand{UserID: 1, CardKey: "golden_cookie"})
	require.NoError(t, err)
	assert.Empty(t, notifier.byKind(notification.KindPurchaseConfirmed))
}
