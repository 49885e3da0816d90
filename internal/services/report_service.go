package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletledger/internal/models"
	"walletledger/internal/store"
)

type UserReportStore interface {
	ListRegisteredBetween(ctx context.Context, start, end time.Time) ([]models.User, error)
}

type TransactionReportStore interface {
	ListInPeriod(ctx context.Context, start, end time.Time, status *models.TransactionStatus, sign store.AmountSign) ([]models.Transaction, error)
}

type RateProvider interface {
	GetAllToUSD(ctx context.Context) (map[models.Currency]decimal.Decimal, error)
}

// defaultRatesToUSD backs the report when a currency has no rate row.
var defaultRatesToUSD = map[models.Currency]decimal.Decimal{
	models.USD:  decimal.RequireFromString("1.0"),
	models.EUR:  decimal.RequireFromString("0.9342"),
	models.AUD:  decimal.RequireFromString("0.5447"),
	models.CAD:  decimal.RequireFromString("0.6162"),
	models.ARS:  decimal.RequireFromString("0.0009"),
	models.PLN:  decimal.RequireFromString("0.2343"),
	models.BTC:  decimal.RequireFromString("100000.0"),
	models.ETH:  decimal.RequireFromString("3557.3476"),
	models.DOGE: decimal.RequireFromString("0.3627"),
	models.USDT: decimal.RequireFromString("0.9709"),
}

type WeeklyReport struct {
	StartDate                       string          `json:"start_date"`
	EndDate                         string          `json:"end_date"`
	RegisteredUsersCount            int             `json:"registered_users_count"`
	UsersWithDepositsCount          int             `json:"users_with_deposits_count"`
	UsersWithPostedDepositsCount    int             `json:"users_with_posted_deposits_count"`
	UsersWithPostedWithdrawalsCount int             `json:"users_with_posted_withdrawals_count"`
	TotalDepositsUSD                decimal.Decimal `json:"total_deposits_usd"`
	TotalWithdrawalsUSD             decimal.Decimal `json:"total_withdrawals_usd"`
	TotalTransactionsCount          int             `json:"total_transactions_count"`
	PostedTransactionsCount         int             `json:"posted_transactions_count"`
}

type ReportService struct {
	users        UserReportStore
	transactions TransactionReportStore
	rates        RateProvider
	logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(users UserReportStore, transactions TransactionReportStore, rates RateProvider, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		users:        users,
		transactions: transactions,
		rates:        rates,
		logger:       logger,
		now:          time.Now,
	}
}

// Weekly walks back over 7-day windows ending now and returns one report per
// window that saw any activity. Weeks with no registrations and no
// transactions are skipped.
func (s *ReportService) Weekly(ctx context.Context, weeks int) ([]WeeklyReport, error) {
	s.logger.Info("generating weekly report", zap.Int("weeks", weeks))

	rates, err := s.loadRates(ctx)
	if err != nil {
		return nil, err
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -6)

	reports := []WeeklyReport{}
	for i := 0; i < weeks; i++ {
		report, err := s.buildWindow(ctx, start, end, rates)
		if err != nil {
			return nil, fmt.Errorf("report window %s..%s: %w", start.Format("2006-01-02"), end.Format("2006-01-02"), err)
		}
		if hasActivity(report) {
			reports = append(reports, report)
		}
		end = start.AddDate(0, 0, -1)
		start = end.AddDate(0, 0, -6)
	}

	s.logger.Info("weekly report generated",
		zap.Int("weeks_requested", weeks),
		zap.Int("weeks_with_activity", len(reports)),
	)
	return reports, nil
}

func (s *ReportService) buildWindow(ctx context.Context, start, end time.Time, rates map[models.Currency]decimal.Decimal) (WeeklyReport, error) {
	registered, err := s.users.ListRegisteredBetween(ctx, start, end)
	if err != nil {
		return WeeklyReport{}, err
	}
	registeredIDs := make(map[int64]struct{}, len(registered))
	for _, user := range registered {
		registeredIDs[user.ID] = struct{}{}
	}

	posted := models.TransactionPosted
	depositsAll, err := s.transactions.ListInPeriod(ctx, start, end, nil, store.SignDeposits)
	if err != nil {
		return WeeklyReport{}, err
	}
	depositsPosted, err := s.transactions.ListInPeriod(ctx, start, end, &posted, store.SignDeposits)
	if err != nil {
		return WeeklyReport{}, err
	}
	withdrawalsPosted, err := s.transactions.ListInPeriod(ctx, start, end, &posted, store.SignWithdrawals)
	if err != nil {
		return WeeklyReport{}, err
	}
	allTransactions, err := s.transactions.ListInPeriod(ctx, start, end, nil, store.SignAny)
	if err != nil {
		return WeeklyReport{}, err
	}
	postedTransactions, err := s.transactions.ListInPeriod(ctx, start, end, &posted, store.SignAny)
	if err != nil {
		return WeeklyReport{}, err
	}

	totalDeposits := decimal.Zero
	for _, transaction := range depositsPosted {
		totalDeposits = totalDeposits.Add(convertToUSD(transaction.Amount, transaction.Currency, rates))
	}
	totalWithdrawals := decimal.Zero
	for _, transaction := range withdrawalsPosted {
		totalWithdrawals = totalWithdrawals.Add(convertToUSD(transaction.Amount, transaction.Currency, rates))
	}

	return WeeklyReport{
		StartDate:                       start.Format("2006-01-02"),
		EndDate:                         end.Format("2006-01-02"),
		RegisteredUsersCount:            len(registered),
		UsersWithDepositsCount:          countDistinctUsers(depositsAll, registeredIDs),
		UsersWithPostedDepositsCount:    countDistinctUsers(depositsPosted, registeredIDs),
		UsersWithPostedWithdrawalsCount: countDistinctUsers(withdrawalsPosted, registeredIDs),
		TotalDepositsUSD:                totalDeposits,
		TotalWithdrawalsUSD:             totalWithdrawals.Abs(),
		TotalTransactionsCount:          len(allTransactions),
		PostedTransactionsCount:         len(postedTransactions),
	}, nil
}

func (s *ReportService) loadRates(ctx context.Context) (map[models.Currency]decimal.Decimal, error) {
	rates := make(map[models.Currency]decimal.Decimal, len(defaultRatesToUSD))
	for currency, rate := range defaultRatesToUSD {
		rates[currency] = rate
	}
	if s.rates == nil {
		return rates, nil
	}
	stored, err := s.rates.GetAllToUSD(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}
	for currency, rate := range stored {
		rates[currency] = rate
	}
	return rates, nil
}

func convertToUSD(amount decimal.Decimal, currency models.Currency, rates map[models.Currency]decimal.Decimal) decimal.Decimal {
	rate, ok := rates[currency]
	if !ok {
		rate = decimal.NewFromInt(1)
	}
	return amount.Mul(rate)
}

func countDistinctUsers(transactions []models.Transaction, within map[int64]struct{}) int {
	seen := map[int64]struct{}{}
	for _, transaction := range transactions {
		if _, ok := within[transaction.UserID]; !ok {
			continue
		}
		seen[transaction.UserID] = struct{}{}
	}
	return len(seen)
}

func hasActivity(report WeeklyReport) bool {
	return report.RegisteredUsersCount > 0 ||
		report.UsersWithDepositsCount > 0 ||
		report.TotalTransactionsCount > 0
}
