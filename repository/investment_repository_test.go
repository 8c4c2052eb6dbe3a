package repository

import (
	"context"
	"testing"

	"bankroll/models"
	"bankroll/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvestmentRepository_PendingLifecycle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewInvestmentRepository(testDB.DB)
	ctx := context.Background()

	account, err := accountRepo.Create(ctx, "investor", models.RoleUser)
	require.NoError(t, err)

	first := testutil.CreateTestInvestment(account.ID, account.Username, models.ActionInvest, 1000, models.CurrencyClam)
	require.NoError(t, repo.Create(ctx, first))

	t.Run("a second pending request is rejected", func(t *testing.T) {
		second := testutil.CreateTestInvestment(account.ID, account.Username, models.ActionDivest, 500, models.CurrencyClam)
		assert.ErrorIs(t, repo.Create(ctx, second), models.ErrInvestmentAlreadyMade)
	})

	t.Run("a pending request in another currency is fine", func(t *testing.T) {
		btc := testutil.CreateTestInvestment(account.ID, account.Username, models.ActionInvest, 200, models.CurrencyBtc)
		assert.NoError(t, repo.Create(ctx, btc))
	})

	t.Run("has pending", func(t *testing.T) {
		pending, err := repo.HasPending(ctx, account.ID, models.CurrencyClam)
		require.NoError(t, err)
		assert.True(t, pending)
	})

	t.Run("list pending returns only the matching action", func(t *testing.T) {
		invests, err := repo.ListPending(ctx, models.ActionInvest, models.CurrencyClam)
		require.NoError(t, err)
		require.Len(t, invests, 1)
		assert.Equal(t, first.ID, invests[0].ID)

		divests, err := repo.ListPending(ctx, models.ActionDivest, models.CurrencyClam)
		require.NoError(t, err)
		assert.Empty(t, divests)
	})

	t.Run("complete settles the request and frees the slot", func(t *testing.T) {
		require.NoError(t, repo.Complete(ctx, first.ID, 1000, 0, 0, 5000))

		settled, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, settled)
		assert.False(t, settled.Pending())
		assert.Equal(t, int64(1000), settled.Amount)
		assert.Equal(t, int64(5000), settled.PoolTotalPrev)

		pending, err := repo.HasPending(ctx, account.ID, models.CurrencyClam)
		require.NoError(t, err)
		assert.False(t, pending)

		next := testutil.CreateTestInvestment(account.ID, account.Username, models.ActionInvest, 300, models.CurrencyClam)
		assert.NoError(t, repo.Create(ctx, next))
	})

	t.Run("completing twice fails", func(t *testing.T) {
		assert.Error(t, repo.Complete(ctx, first.ID, 1000, 0, 0, 5000))
	})
}
