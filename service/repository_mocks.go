package service

import (
	"context"

	"bankroll/events"
	"bankroll/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, username string, role models.Role) (*models.Account, error) {
	args := m.Called(ctx, username, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) SetFrozen(ctx context.Context, id int64, frozen bool) error {
	args := m.Called(ctx, id, frozen)
	return args.Error(0)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, accountID int64, currency models.Currency) (*models.AccountBalance, error) {
	args := m.Called(ctx, accountID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountBalance), args.Error(1)
}

func (m *MockAccountRepository) Credit(ctx context.Context, accountID int64, currency models.Currency, amount int64) error {
	args := m.Called(ctx, accountID, currency, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) Debit(ctx context.Context, accountID int64, currency models.Currency, amount int64) error {
	args := m.Called(ctx, accountID, currency, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyBet(ctx context.Context, accountID int64, currency models.Currency, amount int64) error {
	args := m.Called(ctx, accountID, currency, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) AddNetProfit(ctx context.Context, accountID int64, currency models.Currency, delta int64) error {
	args := m.Called(ctx, accountID, currency, delta)
	return args.Error(0)
}

func (m *MockAccountRepository) AddInvested(ctx context.Context, accountID int64, currency models.Currency, delta int64) error {
	args := m.Called(ctx, accountID, currency, delta)
	return args.Error(0)
}

func (m *MockAccountRepository) TotalInvested(ctx context.Context, currency models.Currency, minInvested int64) (int64, error) {
	args := m.Called(ctx, currency, minInvested)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ListInvestors(ctx context.Context, currency models.Currency, minInvested int64) ([]*models.AccountBalance, error) {
	args := m.Called(ctx, currency, minInvested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AccountBalance), args.Error(1)
}

func (m *MockAccountRepository) AddRoundCut(ctx context.Context, accountID int64, currency models.Currency, cut int64) error {
	args := m.Called(ctx, accountID, currency, cut)
	return args.Error(0)
}

func (m *MockAccountRepository) AddStakingCut(ctx context.Context, accountID int64, currency models.Currency, cut int64) error {
	args := m.Called(ctx, accountID, currency, cut)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyDivest(ctx context.Context, accountID int64, currency models.Currency, hightide, credit, investedDebit int64) error {
	args := m.Called(ctx, accountID, currency, hightide, credit, investedDebit)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyDivestAll(ctx context.Context, accountID int64, currency models.Currency, hightide, credit int64) error {
	args := m.Called(ctx, accountID, currency, hightide, credit)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyWeeklyCommission(ctx context.Context, accountID int64, currency models.Currency, hightide, commission int64) error {
	args := m.Called(ctx, accountID, currency, hightide, commission)
	return args.Error(0)
}

// MockPlayRepository is a mock implementation of PlayRepository
type MockPlayRepository struct {
	mock.Mock
}

func (m *MockPlayRepository) Create(ctx context.Context, play *models.Play) error {
	args := m.Called(ctx, play)
	return args.Error(0)
}

func (m *MockPlayRepository) GetByID(ctx context.Context, id int64) (*models.Play, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Play), args.Error(1)
}

func (m *MockPlayRepository) SetCashOut(ctx context.Context, playID int64, amount int64) (int64, error) {
	args := m.Called(ctx, playID, amount)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

// MockInvestmentRepository is a mock implementation of InvestmentRepository
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, investment *models.Investment) error {
	args := m.Called(ctx, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id string) (*models.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) HasPending(ctx context.Context, accountID int64, currency models.Currency) (bool, error) {
	args := m.Called(ctx, accountID, currency)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvestmentRepository) ListPending(ctx context.Context, action models.InvestmentAction, currency models.Currency) ([]*models.Investment, error) {
	args := m.Called(ctx, action, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) Complete(ctx context.Context, id string, amount, commission, investedPrev, poolTotalPrev int64) error {
	args := m.Called(ctx, id, amount, commission, investedPrev, poolTotalPrev)
	return args.Error(0)
}

// MockCommissionRepository is a mock implementation of CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) Create(ctx context.Context, commission *models.Commission) error {
	args := m.Called(ctx, commission)
	return args.Error(0)
}

// MockStakeRepository is a mock implementation of StakeRepository
type MockStakeRepository struct {
	mock.Mock
}

func (m *MockStakeRepository) GetPool(ctx context.Context) (*models.StakingPool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StakingPool), args.Error(1)
}

func (m *MockStakeRepository) UpdatePool(ctx context.Context, pool *models.StakingPool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

func (m *MockStakeRepository) ListUnprocessed(ctx context.Context) ([]*models.StakeFeedRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StakeFeedRow), args.Error(1)
}

func (m *MockStakeRepository) MarkProcessed(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockStakeRepository) Append(ctx context.Context, row *models.StakeFeedRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) AddSiteTotals(ctx context.Context, currency models.Currency, wageredDelta, profitDelta int64) error {
	args := m.Called(ctx, currency, wageredDelta, profitDelta)
	return args.Error(0)
}

func (m *MockStatsRepository) GetSiteTotals(ctx context.Context, currency models.Currency) (int64, int64, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockWeeklyRepository is a mock implementation of WeeklyRepository
type MockWeeklyRepository struct {
	mock.Mock
}

func (m *MockWeeklyRepository) CreateDonation(ctx context.Context, donation *models.WeeklyDonation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockWeeklyRepository) DonatedTotal(ctx context.Context, week, year int, currency models.Currency) (int64, error) {
	args := m.Called(ctx, week, year, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWeeklyRepository) GetPrizeLog(ctx context.Context, week, year int, currency models.Currency) (*models.WeeklyPrizeLog, error) {
	args := m.Called(ctx, week, year, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyPrizeLog), args.Error(1)
}

func (m *MockWeeklyRepository) CreatePrizeLog(ctx context.Context, log *models.WeeklyPrizeLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockWeeklyRepository) CreatePrize(ctx context.Context, prize *models.WeeklyPrize) error {
	args := m.Called(ctx, prize)
	return args.Error(0)
}

func (m *MockWeeklyRepository) RebuildLeaderboard(ctx context.Context, week, year int, currency models.Currency) error {
	args := m.Called(ctx, week, year, currency)
	return args.Error(0)
}

func (m *MockWeeklyRepository) TopNet(ctx context.Context, week, year int, currency models.Currency, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, week, year, currency, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockWeeklyRepository) TopWagered(ctx context.Context, week, year int, currency models.Currency, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, week, year, currency, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockWeeklyRepository) PendingCommissionRun(ctx context.Context, currency models.Currency) (*models.WeeklyCommissionRun, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyCommissionRun), args.Error(1)
}

func (m *MockWeeklyRepository) QueueCommissionRun(ctx context.Context, currency models.Currency) (*models.WeeklyCommissionRun, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyCommissionRun), args.Error(1)
}

func (m *MockWeeklyRepository) CompleteCommissionRun(ctx context.Context, id int64, users int, amount int64) error {
	args := m.Called(ctx, id, users, amount)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plugged in with SetRepositories; unset ones fall back to fresh mocks with
// no expectations.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo    AccountRepository
	playRepo       PlayRepository
	transferRepo   TransferRepository
	investmentRepo InvestmentRepository
	commissionRepo CommissionRepository
	stakeRepo      StakeRepository
	statsRepo      StatsRepository
	weeklyRepo     WeeklyRepository
	eventPublisher EventPublisher
}

// SetRepositories wires the given mocks into the unit of work. Nil arguments
// are replaced by empty mocks.
func (m *MockUnitOfWork) SetRepositories(
	accountRepo AccountRepository,
	playRepo PlayRepository,
	transferRepo TransferRepository,
	investmentRepo InvestmentRepository,
	commissionRepo CommissionRepository,
	stakeRepo StakeRepository,
	statsRepo StatsRepository,
	weeklyRepo WeeklyRepository,
	eventPublisher EventPublisher,
) {
	if accountRepo == nil {
		accountRepo = new(MockAccountRepository)
	}
	if playRepo == nil {
		playRepo = new(MockPlayRepository)
	}
	if transferRepo == nil {
		transferRepo = new(MockTransferRepository)
	}
	if investmentRepo == nil {
		investmentRepo = new(MockInvestmentRepository)
	}
	if commissionRepo == nil {
		commissionRepo = new(MockCommissionRepository)
	}
	if stakeRepo == nil {
		stakeRepo = new(MockStakeRepository)
	}
	if statsRepo == nil {
		statsRepo = new(MockStatsRepository)
	}
	if weeklyRepo == nil {
		weeklyRepo = new(MockWeeklyRepository)
	}
	if eventPublisher == nil {
		publisher := new(MockEventPublisher)
		publisher.On("Publish", mock.Anything).Maybe()
		eventPublisher = publisher
	}

	m.accountRepo = accountRepo
	m.playRepo = playRepo
	m.transferRepo = transferRepo
	m.investmentRepo = investmentRepo
	m.commissionRepo = commissionRepo
	m.stakeRepo = stakeRepo
	m.statsRepo = statsRepo
	m.weeklyRepo = weeklyRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) PlayRepository() PlayRepository {
	return m.playRepo
}

func (m *MockUnitOfWork) TransferRepository() TransferRepository {
	return m.transferRepo
}

func (m *MockUnitOfWork) InvestmentRepository() InvestmentRepository {
	return m.investmentRepo
}

func (m *MockUnitOfWork) CommissionRepository() CommissionRepository {
	return m.commissionRepo
}

func (m *MockUnitOfWork) StakeRepository() StakeRepository {
	return m.stakeRepo
}

func (m *MockUnitOfWork) StatsRepository() StatsRepository {
	return m.statsRepo
}

func (m *MockUnitOfWork) WeeklyRepository() WeeklyRepository {
	return m.weeklyRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
