package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"walletledger/internal/models"
	"walletledger/internal/store"
	"walletledger/internal/websocket"
)

// fakeLedger is an in-memory stand-in for the relational store. It backs all
// store interfaces the services consume and, through its TxRunner, restores
// the pre-transaction state when the unit of work fails, mirroring a real
// rollback.
type fakeLedger struct {
	users        map[int64]models.User
	balances     map[string]decimal.Decimal
	transactions map[int64]models.Transaction
	nextUserID   int64
	nextTxID     int64
	clock        time.Time

	failTransactionWrites bool
	auditActions          []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:        map[int64]models.User{},
		balances:     map[string]decimal.Decimal{},
		transactions: map[int64]models.Transaction{},
		nextUserID:   1,
		nextTxID:     1,
		clock:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func balanceKey(userID int64, currency models.Currency) string {
	return fmt.Sprintf("%d/%s", userID, currency)
}

func (f *fakeLedger) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeLedger) addUser(email string, status models.UserStatus) models.User {
	user := models.User{ID: f.nextUserID, Email: email, Status: status, Created: f.tick()}
	f.nextUserID++
	f.users[user.ID] = user
	for _, currency := range models.SupportedCurrencies {
		f.balances[balanceKey(user.ID, currency)] = decimal.Zero
	}
	return user
}

func (f *fakeLedger) balance(userID int64, currency models.Currency) decimal.Decimal {
	return f.balances[balanceKey(userID, currency)]
}

// TxRunner

func (f *fakeLedger) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	snapshotBalances := make(map[string]decimal.Decimal, len(f.balances))
	for k, v := range f.balances {
		snapshotBalances[k] = v
	}
	snapshotTransactions := make(map[int64]models.Transaction, len(f.transactions))
	for k, v := range f.transactions {
		snapshotTransactions[k] = v
	}
	snapshotUsers := make(map[int64]models.User, len(f.users))
	for k, v := range f.users {
		snapshotUsers[k] = v
	}
	snapshotNextTxID := f.nextTxID
	snapshotNextUserID := f.nextUserID
	if err := fn(nil); err != nil {
		f.balances = snapshotBalances
		f.transactions = snapshotTransactions
		f.users = snapshotUsers
		f.nextTxID = snapshotNextTxID
		f.nextUserID = snapshotNextUserID
		return err
	}
	return nil
}

// UserStore / UserAdminStore

func (f *fakeLedger) GetByID(ctx context.Context, userID int64) (models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeLedger) Create(ctx context.Context, tx store.Getter, email string) (models.User, error) {
	return f.addUser(email, models.UserActive), nil
}

func (f *fakeLedger) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, user := range f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) List(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	users := []models.User{}
	for _, user := range f.users {
		if filter.ID != nil && user.ID != *filter.ID {
			continue
		}
		if filter.Email != nil && user.Email != *filter.Email {
			continue
		}
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Created.After(users[j].Created) })
	return users, nil
}

func (f *fakeLedger) UpdateStatus(ctx context.Context, tx store.Getter, userID int64, status models.UserStatus) (models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	user.Status = status
	f.users[userID] = user
	return user, nil
}

func (f *fakeLedger) ListRegisteredBetween(ctx context.Context, start, end time.Time) ([]models.User, error) {
	users := []models.User{}
	for _, user := range f.users {
		if user.Created.Before(start) || user.Created.After(end) {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// BalanceStore / BalanceInitStore

func (f *fakeLedger) GetByUserAndCurrency(ctx context.Context, userID int64, currency models.Currency) (models.Balance, error) {
	amount, ok := f.balances[balanceKey(userID, currency)]
	if !ok {
		return models.Balance{}, sql.ErrNoRows
	}
	return models.Balance{UserID: userID, Currency: currency, Amount: amount}, nil
}

func (f *fakeLedger) ApplyDelta(ctx context.Context, tx store.Tx, userID int64, currency models.Currency, delta decimal.Decimal) (models.Balance, error) {
	amount, ok := f.balances[balanceKey(userID, currency)]
	if !ok {
		return models.Balance{}, &models.BalanceNotFoundError{UserID: userID, Currency: currency}
	}
	updated := amount.Add(delta)
	if updated.IsNegative() {
		return models.Balance{}, &models.InsufficientBalanceError{Currency: currency, Current: amount, Requested: delta}
	}
	f.balances[balanceKey(userID, currency)] = updated
	return models.Balance{UserID: userID, Currency: currency, Amount: updated}, nil
}

func (f *fakeLedger) CreateAll(ctx context.Context, tx store.Execer, userID int64) ([]models.Balance, error) {
	balances := make([]models.Balance, 0, len(models.SupportedCurrencies))
	for _, currency := range models.SupportedCurrencies {
		f.balances[balanceKey(userID, currency)] = decimal.Zero
		balances = append(balances, models.Balance{UserID: userID, Currency: currency, Amount: decimal.Zero})
	}
	return balances, nil
}

// TransactionStore

func (f *fakeLedger) CreateTransaction(ctx context.Context, tx store.Getter, userID int64, currency models.Currency, amount decimal.Decimal, status models.TransactionStatus) (models.Transaction, error) {
	if f.failTransactionWrites {
		return models.Transaction{}, errors.New("injected transaction write failure")
	}
	transaction := models.Transaction{
		ID:       f.nextTxID,
		UserID:   userID,
		Currency: currency,
		Amount:   amount,
		Status:   status,
		Created:  f.tick(),
	}
	f.nextTxID++
	f.transactions[transaction.ID] = transaction
	return transaction, nil
}

func (f *fakeLedger) GetTransactionByID(ctx context.Context, transactionID int64) (models.Transaction, error) {
	transaction, ok := f.transactions[transactionID]
	if !ok {
		return models.Transaction{}, sql.ErrNoRows
	}
	return transaction, nil
}

func (f *fakeLedger) listTransactions(filter func(models.Transaction) bool, limit, offset int) []models.Transaction {
	transactions := []models.Transaction{}
	for _, transaction := range f.transactions {
		if filter == nil || filter(transaction) {
			transactions = append(transactions, transaction)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Created.After(transactions[j].Created)
	})
	if offset >= len(transactions) {
		return []models.Transaction{}
	}
	transactions = transactions[offset:]
	if limit < len(transactions) {
		transactions = transactions[:limit]
	}
	return transactions
}

func (f *fakeLedger) ListTransactionsByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Transaction, error) {
	return f.listTransactions(func(t models.Transaction) bool { return t.UserID == userID }, limit, offset), nil
}

func (f *fakeLedger) ListAllTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	return f.listTransactions(nil, limit, offset), nil
}

func (f *fakeLedger) UpdateTransactionStatus(ctx context.Context, tx store.Getter, transactionID int64, status models.TransactionStatus) (models.Transaction, error) {
	transaction, ok := f.transactions[transactionID]
	if !ok {
		return models.Transaction{}, sql.ErrNoRows
	}
	transaction.Status = status
	f.transactions[transactionID] = transaction
	return transaction, nil
}

func (f *fakeLedger) ListInPeriod(ctx context.Context, start, end time.Time, status *models.TransactionStatus, sign store.AmountSign) ([]models.Transaction, error) {
	return f.listTransactions(func(t models.Transaction) bool {
		if t.Created.Before(start) || t.Created.After(end) {
			return false
		}
		if status != nil && t.Status != *status {
			return false
		}
		switch sign {
		case store.SignDeposits:
			return t.Amount.IsPositive()
		case store.SignWithdrawals:
			return t.Amount.IsNegative()
		}
		return true
	}, len(f.transactions), 0), nil
}

// AuditStore

func (f *fakeLedger) Log(ctx context.Context, tx store.Execer, actorUserID int64, action, entityType, entityID, data string) error {
	f.auditActions = append(f.auditActions, action)
	return nil
}

// fakeTransactionStore adapts fakeLedger's transaction methods to the
// TransactionStore interface (the method names on fakeLedger avoid
// colliding with its user-store methods).
type fakeTransactionStore struct {
	ledger *fakeLedger
}

func (s fakeTransactionStore) Create(ctx context.Context, tx store.Getter, userID int64, currency models.Currency, amount decimal.Decimal, status models.TransactionStatus) (models.Transaction, error) {
	return s.ledger.CreateTransaction(ctx, tx, userID, currency, amount, status)
}

func (s fakeTransactionStore) GetByID(ctx context.Context, transactionID int64) (models.Transaction, error) {
	return s.ledger.GetTransactionByID(ctx, transactionID)
}

func (s fakeTransactionStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Transaction, error) {
	return s.ledger.ListTransactionsByUser(ctx, userID, limit, offset)
}

func (s fakeTransactionStore) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	return s.ledger.ListAllTransactions(ctx, limit, offset)
}

func (s fakeTransactionStore) UpdateStatus(ctx context.Context, tx store.Getter, transactionID int64, status models.TransactionStatus) (models.Transaction, error) {
	return s.ledger.UpdateTransactionStatus(ctx, tx, transactionID, status)
}

// fakeBalanceListStore exposes fakeLedger balances as BalanceInitStore.
type fakeBalanceListStore struct {
	ledger *fakeLedger
}

func (s fakeBalanceListStore) CreateAll(ctx context.Context, tx store.Execer, userID int64) ([]models.Balance, error) {
	return s.ledger.CreateAll(ctx, tx, userID)
}

func (s fakeBalanceListStore) ListByUser(ctx context.Context, userID int64) ([]models.Balance, error) {
	balances := []models.Balance{}
	for _, currency := range models.SupportedCurrencies {
		amount, ok := s.ledger.balances[balanceKey(userID, currency)]
		if !ok {
			continue
		}
		balances = append(balances, models.Balance{UserID: userID, Currency: currency, Amount: amount})
	}
	return balances, nil
}

type recordingHub struct {
	updates []websocket.BalanceUpdate
}

func (h *recordingHub) BroadcastBalance(userID int64, update websocket.BalanceUpdate) {
	h.updates = append(h.updates, update)
}

func newTestTransactionService(ledger *fakeLedger, hub BalanceHub) *TransactionService {
	return NewTransactionService(ledger, ledger, ledger, fakeTransactionStore{ledger}, ledger, hub, nil)
}

func newTestUserService(ledger *fakeLedger) *UserService {
	return NewUserService(ledger, ledger, fakeBalanceListStore{ledger}, ledger, nil)
}
