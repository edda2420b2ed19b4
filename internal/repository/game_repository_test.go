package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ctchen222/Gomoku/internal/db"
	"ctchen222/Gomoku/internal/game"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func playedState(t *testing.T, moves ...game.Position) game.State {
	t.Helper()
	engine, err := game.NewEngine()
	require.NoError(t, err)
	state := engine.State()
	for _, m := range moves {
		state, err = engine.Play(m.Row, m.Col)
		require.NoError(t, err)
	}
	return state
}

// runGameRepositoryContract exercises the behaviour every backend shares.
func runGameRepositoryContract(t *testing.T, repo GameRepository) {
	ctx := context.Background()

	t.Run("Create then FindByID round-trips the state", func(t *testing.T) {
		state := playedState(t, game.Position{Row: 7, Col: 7}, game.Position{Row: 7, Col: 8})
		require.NoError(t, repo.Create(ctx, "round-trip", state))

		got, err := repo.FindByID(ctx, "round-trip")
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("Create refuses an existing id", func(t *testing.T) {
		state := playedState(t)
		require.NoError(t, repo.Create(ctx, "duplicate", state))
		assert.ErrorIs(t, repo.Create(ctx, "duplicate", state), ErrGameExists)
	})

	t.Run("FindByID of unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, "save", playedState(t)))

		next := playedState(t, game.Position{Row: 0, Col: 0})
		require.NoError(t, repo.Save(ctx, "save", next))

		got, err := repo.FindByID(ctx, "save")
		require.NoError(t, err)
		assert.Equal(t, next, got)
	})

	t.Run("Save of unknown id", func(t *testing.T) {
		assert.ErrorIs(t, repo.Save(ctx, "save-missing", playedState(t)), ErrGameNotFound)
	})

	t.Run("Delete removes the game", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, "delete", playedState(t)))
		require.NoError(t, repo.Delete(ctx, "delete"))

		_, err := repo.FindByID(ctx, "delete")
		assert.ErrorIs(t, err, ErrGameNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "delete"), ErrGameNotFound)
	})
}

func TestMemoryGameRepository(t *testing.T) {
	runGameRepositoryContract(t, NewMemoryGameRepository(0))
}

func TestMemoryGameRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepository(0)

	state := playedState(t, game.Position{Row: 1, Col: 1})
	require.NoError(t, repo.Create(ctx, "copy", state))

	state.Board[2][2] = game.White
	state.LastMove.Row = 9

	got, err := repo.FindByID(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, game.None, got.Board[2][2])
	assert.Equal(t, 1, got.LastMove.Row)
}

func TestMemoryGameRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepository(time.Hour).(*memoryGameRepository)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, "expiring", playedState(t)))

	now = now.Add(59 * time.Minute)
	_, err := repo.FindByID(ctx, "expiring")
	require.NoError(t, err, "game should still be live before the ttl")

	// Saving refreshes the expiry.
	require.NoError(t, repo.Save(ctx, "expiring", playedState(t, game.Position{Row: 3, Col: 3})))
	now = now.Add(59 * time.Minute)
	_, err = repo.FindByID(ctx, "expiring")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.FindByID(ctx, "expiring")
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, repo.Save(ctx, "expiring", playedState(t)), ErrGameNotFound)

	// An expired id can be reused.
	assert.NoError(t, repo.Create(ctx, "expiring", playedState(t)))
}

func TestMemoryGameRepository_EvictsExpiredGames(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepository(time.Minute).(*memoryGameRepository)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		require.NoError(t, repo.Create(ctx, fmt.Sprintf("abandoned-%d", i), playedState(t)))
	}
	assert.Len(t, repo.games, 1000)

	now = now.Add(time.Minute)
	require.NoError(t, repo.Create(ctx, "fresh", playedState(t)))

	assert.Len(t, repo.games, 1)
	assert.ErrorIs(t, repo.Delete(ctx, "abandoned-0"), ErrGameNotFound)
}

func newSQLiteRepository(t *testing.T, ttl time.Duration) *sqliteGameRepository {
	t.Helper()
	pool, err := db.ConnectSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return NewSQLiteGameRepository(pool, ttl).(*sqliteGameRepository)
}

func TestSQLiteGameRepository(t *testing.T) {
	runGameRepositoryContract(t, newSQLiteRepository(t, 0))
}

func TestSQLiteGameRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t, time.Hour)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, "expiring", playedState(t)))

	now = now.Add(59 * time.Minute)
	_, err := repo.FindByID(ctx, "expiring")
	require.NoError(t, err, "game should still be live before the ttl")

	// Saving refreshes the expiry.
	require.NoError(t, repo.Save(ctx, "expiring", playedState(t, game.Position{Row: 3, Col: 3})))
	now = now.Add(59 * time.Minute)
	_, err = repo.FindByID(ctx, "expiring")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.FindByID(ctx, "expiring")
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, repo.Save(ctx, "expiring", playedState(t)), ErrGameNotFound)

	// An expired id can be reused.
	assert.NoError(t, repo.Create(ctx, "expiring", playedState(t)))
}

func TestRedisGameRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := db.NewRedisClient(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	runGameRepositoryContract(t, NewRedisGameRepository(rdb, time.Hour))

	t.Run("keys carry the ttl", func(t *testing.T) {
		require.NoError(t, NewRedisGameRepository(rdb, time.Minute).Create(ctx, "ttl", playedState(t)))

		ttl, err := rdb.TTL(ctx, gameKey("ttl")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("corrupt value surfaces a decode error", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, gameKey("corrupt"), "not json", redis.KeepTTL).Err())

		_, err := NewRedisGameRepository(rdb, time.Hour).FindByID(ctx, "corrupt")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrGameNotFound)
	})
}
