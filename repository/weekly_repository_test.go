package repository

import (
	"context"
	"testing"
	"time"

	"bankroll/models"
	"bankroll/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyRepository_Donations(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewWeeklyRepository(testDB.DB)
	ctx := context.Background()

	account, err := accountRepo.Create(ctx, "donor", models.RoleUser)
	require.NoError(t, err)

	donate := func(amount int64, week int) {
		err := repo.CreateDonation(ctx, &models.WeeklyDonation{
			AccountID: account.ID,
			Amount:    amount,
			Week:      week,
			Year:      2026,
			Currency:  models.CurrencyClam,
		})
		require.NoError(t, err)
	}

	donate(1000, 35)
	donate(500, 35)
	donate(9999, 36)

	total, err := repo.DonatedTotal(ctx, 35, 2026, models.CurrencyClam)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total)

	empty, err := repo.DonatedTotal(ctx, 34, 2026, models.CurrencyClam)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty)
}

func TestWeeklyRepository_Leaderboard(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	playRepo := NewPlayRepository(testDB.DB)
	repo := NewWeeklyRepository(testDB.DB)
	ctx := context.Background()

	winner, err := accountRepo.Create(ctx, "winner", models.RoleUser)
	require.NoError(t, err)
	grinder, err := accountRepo.Create(ctx, "grinder", models.RoleUser)
	require.NoError(t, err)

	// winner: one 100 bet cashed out at 500, net +400.
	play := testutil.CreateTestPlay(winner.ID, 1, models.CurrencyClam, 100)
	require.NoError(t, playRepo.Create(ctx, play))
	_, err = playRepo.SetCashOut(ctx, play.ID, 500)
	require.NoError(t, err)

	// grinder: two 1000 bets, both lost, net -2000 but top wagered.
	for round := int64(2); round <= 3; round++ {
		lost := testutil.CreateTestPlay(grinder.ID, round, models.CurrencyClam, 1000)
		require.NoError(t, playRepo.Create(ctx, lost))
	}

	week, year := time.Now().UTC().ISOWeek()
	require.NoError(t, repo.RebuildLeaderboard(ctx, week, year, models.CurrencyClam))

	topNet, err := repo.TopNet(ctx, week, year, models.CurrencyClam, 10)
	require.NoError(t, err)
	require.Len(t, topNet, 2)
	assert.Equal(t, winner.ID, topNet[0].AccountID)
	assert.Equal(t, int64(400), topNet[0].NetProfit)

	topWagered, err := repo.TopWagered(ctx, week, year, models.CurrencyClam, 10)
	require.NoError(t, err)
	require.Len(t, topWagered, 2)
	assert.Equal(t, grinder.ID, topWagered[0].AccountID)
	assert.Equal(t, int64(2000), topWagered[0].Wagered)

	// Rebuilding is idempotent.
	require.NoError(t, repo.RebuildLeaderboard(ctx, week, year, models.CurrencyClam))
	again, err := repo.TopNet(ctx, week, year, models.CurrencyClam, 10)
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func TestWeeklyRepository_LeaderboardBucketsByUTC(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	playRepo := NewPlayRepository(testDB.DB)
	ctx := context.Background()

	account, err := accountRepo.Create(ctx, "nightowl", models.RoleUser)
	require.NoError(t, err)

	play := testutil.CreateTestPlay(account.ID, 1, models.CurrencyClam, 100)
	require.NoError(t, playRepo.Create(ctx, play))

	// Late Sunday in UTC, ISO week 1 of 2026; east of Greenwich that instant
	// is already Monday of week 2.
	_, err = testDB.DB.Pool.Exec(ctx,
		`UPDATE plays SET created_at = '2026-01-04 23:30:00+00' WHERE id = $1`, play.ID)
	require.NoError(t, err)

	conn, err := testDB.DB.Pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()
	_, err = conn.Exec(ctx, `SET TIME ZONE 'Australia/Sydney'`)
	require.NoError(t, err)

	repo := newWeeklyRepositoryWithTx(conn)
	require.NoError(t, repo.RebuildLeaderboard(ctx, 1, 2026, models.CurrencyClam))

	entries, err := repo.TopNet(ctx, 1, 2026, models.CurrencyClam, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, account.ID, entries[0].AccountID)
}

func TestWeeklyRepository_PrizeLog(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWeeklyRepository(testDB.DB)
	ctx := context.Background()

	missing, err := repo.GetPrizeLog(ctx, 35, 2026, models.CurrencyClam)
	require.NoError(t, err)
	assert.Nil(t, missing)

	log := &models.WeeklyPrizeLog{
		Week:     35,
		Year:     2026,
		Currency: models.CurrencyClam,
		Status:   "complete",
		Total:    1000,
	}
	require.NoError(t, repo.CreatePrizeLog(ctx, log))

	stored, err := repo.GetPrizeLog(ctx, 35, 2026, models.CurrencyClam)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(1000), stored.Total)

	// The primary key rejects paying the same week twice.
	assert.Error(t, repo.CreatePrizeLog(ctx, log))
}

func TestWeeklyRepository_CommissionRuns(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWeeklyRepository(testDB.DB)
	ctx := context.Background()

	none, err := repo.PendingCommissionRun(ctx, models.CurrencyClam)
	require.NoError(t, err)
	assert.Nil(t, none)

	queued, err := repo.QueueCommissionRun(ctx, models.CurrencyClam)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionRunQueued, queued.Status)

	pending, err := repo.PendingCommissionRun(ctx, models.CurrencyClam)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, queued.ID, pending.ID)

	// Another currency's queue is independent.
	other, err := repo.PendingCommissionRun(ctx, models.CurrencyBtc)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, repo.CompleteCommissionRun(ctx, queued.ID, 3, 4500))

	done, err := repo.PendingCommissionRun(ctx, models.CurrencyClam)
	require.NoError(t, err)
	assert.Nil(t, done)

	assert.Error(t, repo.CompleteCommissionRun(ctx, 999_999, 0, 0))
}
