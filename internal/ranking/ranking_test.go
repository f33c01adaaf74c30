package ranking_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/parleyhq/parley/internal/ranking"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) *ranking.Leaderboard {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return ranking.NewLeaderboard(client, zap.NewNop())
}

func TestLeaderboard_OrdersByHotness(t *testing.T) {
	lb := setupTest(t)
	ctx := context.Background()

	require.NoError(t, lb.SetHotness(ctx, 1, 10.5))
	require.NoError(t, lb.SetHotness(ctx, 2, 99.9))
	require.NoError(t, lb.SetHotness(ctx, 3, 42.0))

	ids, err := lb.Hottest(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestLeaderboard_SetHotnessOverwrites(t *testing.T) {
	lb := setupTest(t)
	ctx := context.Background()

	require.NoError(t, lb.SetHotness(ctx, 1, 1.0))
	require.NoError(t, lb.SetHotness(ctx, 2, 2.0))

	// Re-scoring a topic moves it, it does not duplicate it.
	require.NoError(t, lb.SetHotness(ctx, 1, 3.0))

	ids, err := lb.Hottest(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestLeaderboard_Remove(t *testing.T) {
	lb := setupTest(t)
	ctx := context.Background()

	require.NoError(t, lb.SetHotness(ctx, 1, 1.0))
	require.NoError(t, lb.SetHotness(ctx, 2, 2.0))
	require.NoError(t, lb.Remove(ctx, 2))

	ids, err := lb.Hottest(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestLeaderboard_HottestRespectsLimit(t *testing.T) {
	lb := setupTest(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, lb.SetHotness(ctx, i, float64(i)))
	}

	ids, err := lb.Hottest(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, ids)
}

func TestLeaderboard_HottestNonPositiveLimit(t *testing.T) {
	lb := setupTest(t)
	ctx := context.Background()

	require.NoError(t, lb.SetHotness(ctx, 1, 1.0))
	require.NoError(t, lb.SetHotness(ctx, 2, 2.0))

	ids, err := lb.Hottest(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = lb.Hottest(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
