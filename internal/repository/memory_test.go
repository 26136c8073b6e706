package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRepository(t *testing.T) {
	repo := NewMemoryCacheRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("SearchRoundTrip", func(t *testing.T) {
		require.NoError(t, repo.SetSearch(ctx, "0:all", []byte("x"), time.Minute))
		val, ok, err := repo.GetSearch(ctx, "0:all")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("x"), val)

		now = now.Add(2 * time.Minute)
		_, ok, _ = repo.GetSearch(ctx, "0:all")
		assert.False(t, ok)
	})

	t.Run("BumpDropsEntries", func(t *testing.T) {
		require.NoError(t, repo.SetSearch(ctx, "0:hotel", []byte("x"), time.Hour))
		require.NoError(t, repo.BumpGeneration(ctx))

		gen, err := repo.Generation(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), gen)

		_, ok, _ := repo.GetSearch(ctx, "0:hotel")
		assert.False(t, ok)
	})

	t.Run("RateLimit", func(t *testing.T) {
		actorID := int64(456)
		allowed, _ := repo.CheckRateLimit(ctx, actorID, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, actorID, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, actorID, 2, time.Second)
		assert.False(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, actorID+1, 2, time.Second)
		assert.True(t, allowed, "limits are per actor")

		now = now.Add(2 * time.Second)
		allowed, _ = repo.CheckRateLimit(ctx, actorID, 2, time.Second)
		assert.True(t, allowed)
	})
}
