package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletledger/internal/db"
	"walletledger/internal/models"
	"walletledger/internal/store"
	"walletledger/internal/websocket"
)

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (models.User, error)
}

type BalanceStore interface {
	GetByUserAndCurrency(ctx context.Context, userID int64, currency models.Currency) (models.Balance, error)
	ApplyDelta(ctx context.Context, tx store.Tx, userID int64, currency models.Currency, delta decimal.Decimal) (models.Balance, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Getter, userID int64, currency models.Currency, amount decimal.Decimal, status models.TransactionStatus) (models.Transaction, error)
	GetByID(ctx context.Context, transactionID int64) (models.Transaction, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, tx store.Getter, transactionID int64, status models.TransactionStatus) (models.Transaction, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorUserID int64, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID int64, update websocket.BalanceUpdate)
}

// TransactionService couples every balance mutation to its transaction
// record inside one database transaction, so the sum of a user's non-reversed
// transaction amounts per currency always equals the stored balance.
type TransactionService struct {
	txRunner     db.TxRunner
	users        UserStore
	balances     BalanceStore
	transactions TransactionStore
	audit        AuditStore
	hub          BalanceHub
	logger       *zap.Logger
}

func NewTransactionService(txRunner db.TxRunner, users UserStore, balances BalanceStore, transactions TransactionStore, audit AuditStore, hub BalanceHub, logger *zap.Logger) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{
		txRunner:     txRunner,
		users:        users,
		balances:     balances,
		transactions: transactions,
		audit:        audit,
		hub:          hub,
		logger:       logger,
	}
}

type NewTransaction struct {
	Currency models.Currency
	Amount   decimal.Decimal
}

// Create posts a deposit (positive amount) or withdrawal (negative amount)
// for the user. The balance delta and the transaction record commit together
// or not at all.
func (s *TransactionService) Create(ctx context.Context, userID int64, input NewTransaction) (models.Transaction, error) {
	s.logger.Info("creating transaction",
		zap.Int64("user_id", userID),
		zap.String("currency", string(input.Currency)),
		zap.String("amount", input.Amount.String()),
	)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	if user.Status == models.UserBlocked {
		s.logger.Warn("blocked user attempted transaction", zap.Int64("user_id", userID))
		return models.Transaction{}, &models.UserBlockedError{UserID: userID, Operation: "create transaction"}
	}

	balance, err := s.loadBalance(ctx, userID, input.Currency)
	if err != nil {
		return models.Transaction{}, err
	}

	// Pre-check before touching storage. ApplyDelta re-validates the same
	// condition under the row lock.
	projected := balance.Amount.Add(input.Amount)
	if projected.IsNegative() {
		s.logger.Warn("insufficient balance for transaction",
			zap.Int64("user_id", userID),
			zap.String("current", balance.Amount.String()),
			zap.String("requested", input.Amount.String()),
		)
		return models.Transaction{}, &models.InsufficientBalanceError{
			Currency:  input.Currency,
			Current:   balance.Amount,
			Requested: input.Amount,
		}
	}

	var created models.Transaction
	var after models.Balance
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.balances.ApplyDelta(ctx, tx, userID, input.Currency, input.Amount)
		if err != nil {
			return err
		}
		created, err = s.transactions.Create(ctx, tx, userID, input.Currency, input.Amount, models.TransactionPosted)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		after = updated
		return s.logAudit(ctx, tx, userID, "transaction.create", created)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.logger.Info("transaction posted",
		zap.Int64("transaction_id", created.ID),
		zap.Int64("user_id", userID),
		zap.String("balance", after.Amount.String()),
	)
	s.broadcast(after)
	return created, nil
}

// Reverse undoes a posted transaction exactly once: it applies the negated
// amount to the balance and marks the record REVERSED in one atomic step.
func (s *TransactionService) Reverse(ctx context.Context, userID, transactionID int64) (models.Transaction, error) {
	s.logger.Info("reversing transaction",
		zap.Int64("user_id", userID),
		zap.Int64("transaction_id", transactionID),
	)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	if user.Status == models.UserBlocked {
		s.logger.Warn("blocked user attempted reversal", zap.Int64("user_id", userID))
		return models.Transaction{}, &models.UserBlockedError{UserID: userID, Operation: "rollback transaction"}
	}

	transaction, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, &models.TransactionNotFoundError{TransactionID: transactionID}
		}
		return models.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	if transaction.UserID != userID {
		s.logger.Warn("reversal denied, transaction belongs to another user",
			zap.Int64("transaction_id", transactionID),
			zap.Int64("user_id", userID),
			zap.Int64("owner_id", transaction.UserID),
		)
		return models.Transaction{}, &models.TransactionOwnershipError{TransactionID: transactionID, UserID: userID}
	}
	if transaction.Status == models.TransactionReversed {
		return models.Transaction{}, &models.TransactionAlreadyReversedError{TransactionID: transactionID}
	}

	reverseAmount := transaction.Amount.Neg()
	balance, err := s.loadBalance(ctx, userID, transaction.Currency)
	if err != nil {
		return models.Transaction{}, err
	}
	projected := balance.Amount.Add(reverseAmount)
	if projected.IsNegative() {
		s.logger.Warn("insufficient balance for reversal",
			zap.Int64("user_id", userID),
			zap.Int64("transaction_id", transactionID),
			zap.String("current", balance.Amount.String()),
			zap.String("reverse_amount", reverseAmount.String()),
		)
		return models.Transaction{}, &models.InsufficientBalanceError{
			Currency:  transaction.Currency,
			Current:   balance.Amount,
			Requested: reverseAmount,
		}
	}

	var reversed models.Transaction
	var after models.Balance
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.balances.ApplyDelta(ctx, tx, userID, transaction.Currency, reverseAmount)
		if err != nil {
			return err
		}
		reversed, err = s.transactions.UpdateStatus(ctx, tx, transactionID, models.TransactionReversed)
		if err != nil {
			return fmt.Errorf("update transaction status: %w", err)
		}
		after = updated
		return s.logAudit(ctx, tx, userID, "transaction.reverse", reversed)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.logger.Info("transaction reversed",
		zap.Int64("transaction_id", reversed.ID),
		zap.Int64("user_id", userID),
		zap.String("balance", after.Amount.String()),
	)
	s.broadcast(after)
	return reversed, nil
}

// List returns transactions newest first, optionally scoped to one user.
func (s *TransactionService) List(ctx context.Context, userID *int64, limit, offset int) ([]models.Transaction, error) {
	if userID != nil {
		return s.transactions.ListByUser(ctx, *userID, limit, offset)
	}
	return s.transactions.ListAll(ctx, limit, offset)
}

func (s *TransactionService) loadUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, &models.UserNotFoundError{UserID: userID}
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *TransactionService) loadBalance(ctx context.Context, userID int64, currency models.Currency) (models.Balance, error) {
	balance, err := s.balances.GetByUserAndCurrency(ctx, userID, currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Balance rows are created with the user, so a missing row is a
			// consistency fault, not caller error.
			s.logger.Error("balance row missing for existing user",
				zap.Int64("user_id", userID),
				zap.String("currency", string(currency)),
			)
			return models.Balance{}, &models.BalanceNotFoundError{UserID: userID, Currency: currency}
		}
		return models.Balance{}, fmt.Errorf("load balance: %w", err)
	}
	return balance, nil
}

func (s *TransactionService) logAudit(ctx context.Context, tx store.Execer, userID int64, action string, transaction models.Transaction) error {
	data, _ := json.Marshal(map[string]string{
		"currency": string(transaction.Currency),
		"amount":   transaction.Amount.String(),
		"status":   string(transaction.Status),
	})
	return s.audit.Log(ctx, tx, userID, action, "transaction", strconv.FormatInt(transaction.ID, 10), string(data))
}

func (s *TransactionService) broadcast(balance models.Balance) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastBalance(balance.UserID, websocket.BalanceUpdate{
		UserID:   balance.UserID,
		Currency: string(balance.Currency),
		Balance:  balance.Amount.String(),
	})
}
