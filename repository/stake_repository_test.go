package repository

import (
	"context"
	"testing"

	"bankroll/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeRepository_Feed(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStakeRepository(testDB.DB)
	ctx := context.Background()

	row1 := testutil.CreateTestStakeRow("xCLAMADDR1", 1000)
	row2 := testutil.CreateTestStakeRow("xCLAMADDR2", 500)
	require.NoError(t, repo.Append(ctx, row1))
	require.NoError(t, repo.Append(ctx, row2))

	t.Run("unprocessed rows are listed", func(t *testing.T) {
		rows, err := repo.ListUnprocessed(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
	})

	t.Run("processed rows disappear from the feed", func(t *testing.T) {
		require.NoError(t, repo.MarkProcessed(ctx, []int64{row1.ID, row2.ID}))

		rows, err := repo.ListUnprocessed(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("marking an unknown row fails", func(t *testing.T) {
		assert.Error(t, repo.MarkProcessed(ctx, []int64{999_999}))
	})

	t.Run("marking nothing is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.MarkProcessed(ctx, nil))
	})
}

func TestStakeRepository_Pool(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStakeRepository(testDB.DB)
	ctx := context.Background()

	pool, err := repo.GetPool(ctx)
	require.NoError(t, err)
	require.NotNil(t, pool)
	assert.Equal(t, int64(0), pool.StakeTotal)

	pool.StakeCount = 3
	pool.StakeTotal = 4500
	pool.OrphanCount = 1
	pool.Held = -200
	require.NoError(t, repo.UpdatePool(ctx, pool))

	stored, err := repo.GetPool(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.StakeCount)
	assert.Equal(t, int64(4500), stored.StakeTotal)
	assert.Equal(t, int64(1), stored.OrphanCount)
	assert.Equal(t, int64(-200), stored.Held)
}
