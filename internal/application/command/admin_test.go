package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/memory"
)

func newAdmin(store *memory.Store) *AdminHandler {
	return NewAdminHandler(store, store.Cards(), store, progression.NewLevelTable([]int{100, 200}))
}

func TestAdmin_AddExperienceRaisesLevel(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 90)
	h := newAdmin(store)

	total, level, err := h.AddExperience(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 110, total)
	assert.Equal(t, 2, level)
}

func TestAdmin_NegativeDeltaKeepsLevel(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 150)
	h := newAdmin(store)

	_, _, err := h.AddExperience(context.Background(), 1, 20)
	require.NoError(t, err)

	total, level, err := h.AddExperience(context.Background(), 1, -160)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 2, level, "debits never lower the level")
}

func TestAdmin_SetExperience(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 0)
	h := newAdmin(store)

	level, err := h.SetExperience(context.Background(), 1, 350)
	require.NoError(t, err)
	assert.Equal(t, 3, level)

	user, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 350, user.TotalExperience)
}

func TestAdmin_UseCard(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 100)
	ctx := context.Background()
	require.NoError(t, store.Cards().Purchase(ctx, 1, "golden_cookie", 50, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))
	h := newAdmin(store)

	require.NoError(t, h.UseCard(ctx, 1, "golden_cookie"))

	err := h.UseCard(ctx, 1, "golden_cookie")
	assert.ErrorIs(t, err, progression.ErrCardNotOwned)
}

func TestAdmin_DeleteUser(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 100)
	h := newAdmin(store)

	require.NoError(t, h.DeleteUser(context.Background(), 1))

	_, err := store.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, stats.ErrUserNotFound)

	err = h.DeleteUser(context.Background(), 1)
	assert.ErrorIs(t, err, stats.ErrUserNotFound)
}

func TestAdmin_ResetStore(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 1, 100)
	h := newAdmin(store)

	require.NoError(t, h.ResetStore(context.Background()))

	users, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
