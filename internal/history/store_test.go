package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"data-copilot/internal/common/config"
	"data-copilot/internal/common/database"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	client, err := database.NewSQLite(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Init(context.Background(), false))

	return NewStore(client, logger.NewTestLogger(t))
}

func TestStore_SaveAndQueryTurns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	turns := []models.Turn{
		{SessionID: "s1", Query: "total revenue", SQL: "SELECT 1", RowCount: 1, Answer: "Revenue is 100", CreatedAt: base},
		{SessionID: "s1", Query: "by region", SQL: "SELECT 2", RowCount: 4, ChartPath: "abc.png", Answer: "West leads", CreatedAt: base.Add(time.Minute)},
		{SessionID: "s2", Query: "what is 2+2", Answer: "The answer is 4", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, turn := range turns {
		require.NoError(t, store.SaveTurn(ctx, turn))
	}

	got, err := store.TurnsBySession(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "by region", got[0].Query, "newest first")
	assert.Equal(t, "abc.png", got[0].ChartPath)
	assert.Equal(t, "total revenue", got[1].Query)
	assert.NotZero(t, got[0].ID)

	other, err := store.TurnsBySession(ctx, "s2", 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "The answer is 4", other[0].Answer)
}

func TestStore_TurnsBySessionLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveTurn(ctx, models.Turn{
			SessionID: "s1",
			Query:     "q",
			Answer:    "a",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := store.TurnsBySession(ctx, "s1", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStore_RecentHistoryOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveTurn(ctx, models.Turn{
		SessionID: "s1", Query: "first", Answer: "a1", CreatedAt: base,
	}))
	require.NoError(t, store.SaveTurn(ctx, models.Turn{
		SessionID: "s1", Query: "second", Answer: "a2", CreatedAt: base.Add(time.Minute),
	}))

	entries, err := store.RecentHistory(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Query)
	assert.Equal(t, "second", entries[1].Query)
}

func TestStore_EmptySession(t *testing.T) {
	store := newTestStore(t)

	turns, err := store.TurnsBySession(context.Background(), "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
