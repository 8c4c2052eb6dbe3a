package service

import (
	"context"
	"testing"

	"bankroll/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInvestService_QueueInvest(t *testing.T) {
	ctx := context.Background()
	account := &models.Account{ID: 1, Username: "alice"}

	t.Run("debits balance and snapshots the pool", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, nil, nil, nil, nil, nil)

		amount := int64(5000) * models.UnitScale
		mockAccountRepo.On("GetByID", ctx, int64(1)).Return(account, nil)
		mockInvestmentRepo.On("HasPending", ctx, int64(1), models.CurrencyClam).Return(false, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{AccountID: 1, Currency: models.CurrencyClam, Balance: 2 * amount, Invested: 100}, nil)
		mockAccountRepo.On("Debit", ctx, int64(1), models.CurrencyClam, amount).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, int64(0)).Return(int64(777), nil)
		mockInvestmentRepo.On("Create", ctx, mock.MatchedBy(func(inv *models.Investment) bool {
			return inv.AccountID == 1 &&
				inv.Amount == amount &&
				inv.Action == models.ActionInvest &&
				inv.InvestedPrev == 100 &&
				inv.PoolTotalPrev == 777 &&
				inv.Pending()
		})).Return(nil)

		svc := NewInvestService(mockFactory)
		investment, err := svc.QueueInvest(ctx, 1, 5000, false, models.CurrencyClam)

		require.NoError(t, err)
		assert.Equal(t, amount, investment.Amount)
		mockAccountRepo.AssertExpectations(t)
		mockInvestmentRepo.AssertExpectations(t)
	})

	t.Run("all funds takes the whole balance", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, nil, nil, nil, nil, nil)

		balance := int64(1234) * models.UnitScale
		mockAccountRepo.On("GetByID", ctx, int64(1)).Return(account, nil)
		mockInvestmentRepo.On("HasPending", ctx, int64(1), models.CurrencyClam).Return(false, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{AccountID: 1, Currency: models.CurrencyClam, Balance: balance}, nil)
		mockAccountRepo.On("Debit", ctx, int64(1), models.CurrencyClam, balance).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, int64(0)).Return(int64(0), nil)
		mockInvestmentRepo.On("Create", ctx, mock.MatchedBy(func(inv *models.Investment) bool {
			return inv.Amount == balance && inv.AllFunds
		})).Return(nil)

		svc := NewInvestService(mockFactory)
		_, err := svc.QueueInvest(ctx, 1, 0, true, models.CurrencyClam)

		require.NoError(t, err)
		mockAccountRepo.AssertExpectations(t)
	})

	t.Run("second pending request is rejected", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, nil, nil, nil, nil, nil)

		mockAccountRepo.On("GetByID", ctx, int64(1)).Return(account, nil)
		mockInvestmentRepo.On("HasPending", ctx, int64(1), models.CurrencyClam).Return(true, nil)

		svc := NewInvestService(mockFactory)
		_, err := svc.QueueInvest(ctx, 1, 5000, false, models.CurrencyClam)

		assert.ErrorIs(t, err, models.ErrInvestmentAlreadyMade)
	})
}

func TestInvestService_QueueDivest(t *testing.T) {
	ctx := context.Background()
	account := &models.Account{ID: 1, Username: "alice"}

	t.Run("rejects more than invested", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, nil, nil, nil, nil, nil)

		mockAccountRepo.On("GetByID", ctx, int64(1)).Return(account, nil)
		mockInvestmentRepo.On("HasPending", ctx, int64(1), models.CurrencyClam).Return(false, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{AccountID: 1, Currency: models.CurrencyClam, Invested: 100 * models.UnitScale}, nil)

		svc := NewInvestService(mockFactory)
		_, err := svc.QueueDivest(ctx, 1, 200, false, models.CurrencyClam)

		assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	})
}

func TestInvestService_SettlePendingInvests(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory := setupMockUow(ctx)
	mockAccountRepo := new(MockAccountRepository)
	mockInvestmentRepo := new(MockInvestmentRepository)
	mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, nil, nil, nil, nil, nil)

	amount := int64(5000) * models.UnitScale
	request := &models.Investment{
		ID:            "req-1",
		AccountID:     1,
		Amount:        amount,
		Action:        models.ActionInvest,
		InvestedPrev:  100,
		PoolTotalPrev: 777,
		Currency:      models.CurrencyClam,
	}

	mockInvestmentRepo.On("ListPending", ctx, models.ActionInvest, models.CurrencyClam).
		Return([]*models.Investment{request}, nil)
	mockAccountRepo.On("AddInvested", ctx, int64(1), models.CurrencyClam, amount).Return(nil)
	mockInvestmentRepo.On("Complete", ctx, "req-1", amount, int64(0), int64(100), int64(777)).Return(nil)

	svc := NewInvestService(mockFactory)
	settled, err := svc.SettlePendingInvests(ctx, models.CurrencyClam)

	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	mockAccountRepo.AssertExpectations(t)
	mockInvestmentRepo.AssertExpectations(t)
}

func TestInvestService_SettlePendingDivests(t *testing.T) {
	ctx := context.Background()

	divestRequest := func(amount int64, allFunds bool) *models.Investment {
		return &models.Investment{
			ID:        "req-1",
			AccountID: 1,
			Amount:    amount,
			Action:    models.ActionDivest,
			AllFunds:  allFunds,
			Currency:  models.CurrencyClam,
		}
	}

	// Commission below is always 10% of profit above the high-water mark,
	// per the default configuration.

	t.Run("commission taken from remaining invested balance", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockCommissionRepo := new(MockCommissionRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, mockCommissionRepo, nil, nil, nil, nil)

		total := int64(100) * models.UnitScale
		mockInvestmentRepo.On("ListPending", ctx, models.ActionDivest, models.CurrencyClam).
			Return([]*models.Investment{divestRequest(total, false)}, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{
				AccountID:      1,
				Currency:       models.CurrencyClam,
				Invested:       1000 * models.UnitScale,
				BankrollProfit: 1000,
				Hightide:       200,
			}, nil)

		// 10% of (1000 - 200) = 80, covered by the invested remainder.
		mockAccountRepo.On("ApplyDivest", ctx, int64(1), models.CurrencyClam, int64(1000), total, total+80).Return(nil)
		mockAccountRepo.On("Credit", ctx, int64(7), models.CurrencyClam, int64(80)).Return(nil)
		mockCommissionRepo.On("Create", ctx, mock.MatchedBy(func(c *models.Commission) bool {
			return c.Amount == 80 && c.Reason == models.ReasonDivestCommission && c.FromAccountID == 1
		})).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, int64(0)).Return(int64(900), nil)
		mockInvestmentRepo.On("Complete", ctx, "req-1", total, int64(80), int64(1000)*models.UnitScale, int64(900)).Return(nil)

		svc := NewInvestService(mockFactory)
		settled, err := svc.SettlePendingDivests(ctx, models.CurrencyClam)

		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		mockAccountRepo.AssertExpectations(t)
		mockInvestmentRepo.AssertExpectations(t)
		mockCommissionRepo.AssertExpectations(t)
	})

	t.Run("shortfall comes out of the withdrawal", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockCommissionRepo := new(MockCommissionRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, mockCommissionRepo, nil, nil, nil, nil)

		// Invested 150, withdrawing 100 leaves 50, commission is 80: the
		// 30 shortfall reduces the payout to 70 and empties the stake.
		mockInvestmentRepo.On("ListPending", ctx, models.ActionDivest, models.CurrencyClam).
			Return([]*models.Investment{divestRequest(100, false)}, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{
				AccountID:      1,
				Currency:       models.CurrencyClam,
				Invested:       150,
				BankrollProfit: 1000,
				Hightide:       200,
			}, nil)

		mockAccountRepo.On("ApplyDivestAll", ctx, int64(1), models.CurrencyClam, int64(1000), int64(70)).Return(nil)
		mockAccountRepo.On("Credit", ctx, int64(7), models.CurrencyClam, int64(80)).Return(nil)
		mockCommissionRepo.On("Create", ctx, mock.Anything).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, int64(0)).Return(int64(0), nil)
		mockInvestmentRepo.On("Complete", ctx, "req-1", int64(70), int64(80), int64(150), int64(0)).Return(nil)

		svc := NewInvestService(mockFactory)
		settled, err := svc.SettlePendingDivests(ctx, models.CurrencyClam)

		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		mockAccountRepo.AssertExpectations(t)
	})

	t.Run("all funds nets commission off the payout", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockCommissionRepo := new(MockCommissionRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, mockCommissionRepo, nil, nil, nil, nil)

		mockInvestmentRepo.On("ListPending", ctx, models.ActionDivest, models.CurrencyClam).
			Return([]*models.Investment{divestRequest(0, true)}, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{
				AccountID:      1,
				Currency:       models.CurrencyClam,
				Invested:       500,
				BankrollProfit: 1000,
				Hightide:       200,
			}, nil)

		mockAccountRepo.On("ApplyDivestAll", ctx, int64(1), models.CurrencyClam, int64(1000), int64(420)).Return(nil)
		mockAccountRepo.On("Credit", ctx, int64(7), models.CurrencyClam, int64(80)).Return(nil)
		mockCommissionRepo.On("Create", ctx, mock.Anything).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, int64(0)).Return(int64(0), nil)
		mockInvestmentRepo.On("Complete", ctx, "req-1", int64(420), int64(80), int64(500), int64(0)).Return(nil)

		svc := NewInvestService(mockFactory)
		settled, err := svc.SettlePendingDivests(ctx, models.CurrencyClam)

		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		mockAccountRepo.AssertExpectations(t)
	})

	t.Run("no commission below the high-water mark", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockCommissionRepo := new(MockCommissionRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, mockCommissionRepo, nil, nil, nil, nil)

		mockInvestmentRepo.On("ListPending", ctx, models.ActionDivest, models.CurrencyClam).
			Return([]*models.Investment{divestRequest(100, false)}, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{
				AccountID:      1,
				Currency:       models.CurrencyClam,
				Invested:       500,
				BankrollProfit: 100,
				Hightide:       200,
			}, nil)

		// High-water mark untouched, full amount paid out.
		mockAccountRepo.On("ApplyDivest", ctx, int64(1), models.CurrencyClam, int64(200), int64(100), int64(100)).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, int64(0)).Return(int64(400), nil)
		mockInvestmentRepo.On("Complete", ctx, "req-1", int64(100), int64(0), int64(500), int64(400)).Return(nil)

		svc := NewInvestService(mockFactory)
		settled, err := svc.SettlePendingDivests(ctx, models.CurrencyClam)

		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		mockCommissionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("over-ask is clamped to the remaining stake", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, nil, nil, nil, nil, nil)

		// 200 requested but only 100 still invested: the whole stake is
		// paid out instead of the request being dropped.
		mockInvestmentRepo.On("ListPending", ctx, models.ActionDivest, models.CurrencyClam).
			Return([]*models.Investment{divestRequest(200, false)}, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{
				AccountID:      1,
				Currency:       models.CurrencyClam,
				Invested:       100,
				BankrollProfit: 100,
				Hightide:       200,
			}, nil)

		mockAccountRepo.On("ApplyDivest", ctx, int64(1), models.CurrencyClam, int64(200), int64(100), int64(100)).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, int64(0)).Return(int64(0), nil)
		mockInvestmentRepo.On("Complete", ctx, "req-1", int64(100), int64(0), int64(100), int64(0)).Return(nil)

		svc := NewInvestService(mockFactory)
		settled, err := svc.SettlePendingDivests(ctx, models.CurrencyClam)

		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		mockAccountRepo.AssertExpectations(t)
		mockInvestmentRepo.AssertExpectations(t)
	})

	t.Run("empty stake leaves the request pending", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockInvestmentRepo := new(MockInvestmentRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, mockInvestmentRepo, nil, nil, nil, nil, nil)

		mockInvestmentRepo.On("ListPending", ctx, models.ActionDivest, models.CurrencyClam).
			Return([]*models.Investment{divestRequest(100, false)}, nil)
		mockAccountRepo.On("GetBalance", ctx, int64(1), models.CurrencyClam).
			Return(&models.AccountBalance{AccountID: 1, Currency: models.CurrencyClam, Invested: 0}, nil)

		svc := NewInvestService(mockFactory)
		settled, err := svc.SettlePendingDivests(ctx, models.CurrencyClam)

		require.NoError(t, err)
		assert.Equal(t, 0, settled)
		mockInvestmentRepo.AssertNotCalled(t, "Complete",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvestService_DistributeRoundResult(t *testing.T) {
	ctx := context.Background()

	t.Run("shares profit in stake proportion", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockStatsRepo := new(MockStatsRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil, nil, nil, mockStatsRepo, nil, nil)

		dust := models.CurrencyClam.DustThreshold()
		wagered := int64(1000) * models.UnitScale
		profit := int64(100) * models.UnitScale

		mockStatsRepo.On("AddSiteTotals", ctx, models.CurrencyClam, wagered, profit).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, dust).Return(int64(1000)*models.UnitScale, nil)
		mockAccountRepo.On("ListInvestors", ctx, models.CurrencyClam, dust).Return([]*models.AccountBalance{
			{AccountID: 1, Currency: models.CurrencyClam, Invested: 600 * models.UnitScale},
			{AccountID: 2, Currency: models.CurrencyClam, Invested: 300 * models.UnitScale},
			{AccountID: 3, Currency: models.CurrencyClam, Invested: 100 * models.UnitScale},
		}, nil)

		mockAccountRepo.On("AddRoundCut", ctx, int64(1), models.CurrencyClam, int64(60)*models.UnitScale).Return(nil)
		mockAccountRepo.On("AddRoundCut", ctx, int64(2), models.CurrencyClam, int64(30)*models.UnitScale).Return(nil)
		mockAccountRepo.On("AddRoundCut", ctx, int64(3), models.CurrencyClam, int64(10)*models.UnitScale).Return(nil)

		svc := NewInvestService(mockFactory)
		err := svc.DistributeRoundResult(ctx, 42, models.CurrencyClam, 1000, 900)

		require.NoError(t, err)
		mockAccountRepo.AssertExpectations(t)
		mockStatsRepo.AssertExpectations(t)
	})

	t.Run("loss cut clamps at the invested balance", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockStatsRepo := new(MockStatsRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil, nil, nil, mockStatsRepo, nil, nil)

		dust := models.CurrencyClam.DustThreshold()
		mockStatsRepo.On("AddSiteTotals", ctx, models.CurrencyClam, mock.Anything, mock.Anything).Return(nil)
		mockAccountRepo.On("TotalInvested", ctx, models.CurrencyClam, dust).Return(int64(100)*models.UnitScale, nil)
		mockAccountRepo.On("ListInvestors", ctx, models.CurrencyClam, dust).Return([]*models.AccountBalance{
			{AccountID: 1, Currency: models.CurrencyClam, Invested: 50 * models.UnitScale},
		}, nil)

		// The proportional cut of -150 exceeds the 50 invested.
		mockAccountRepo.On("AddRoundCut", ctx, int64(1), models.CurrencyClam, int64(-50)*models.UnitScale).Return(nil)

		svc := NewInvestService(mockFactory)
		err := svc.DistributeRoundResult(ctx, 43, models.CurrencyClam, 100, 400)

		require.NoError(t, err)
		mockAccountRepo.AssertExpectations(t)
	})

	t.Run("zero profit only updates site totals", func(t *testing.T) {
		mockUoW, mockFactory := setupMockUow(ctx)
		mockAccountRepo := new(MockAccountRepository)
		mockStatsRepo := new(MockStatsRepository)
		mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil, nil, nil, mockStatsRepo, nil, nil)

		mockStatsRepo.On("AddSiteTotals", ctx, models.CurrencyClam, int64(500)*models.UnitScale, int64(0)).Return(nil)

		svc := NewInvestService(mockFactory)
		err := svc.DistributeRoundResult(ctx, 44, models.CurrencyClam, 500, 500)

		require.NoError(t, err)
		mockAccountRepo.AssertNotCalled(t, "ListInvestors", mock.Anything, mock.Anything, mock.Anything)
	})
}
