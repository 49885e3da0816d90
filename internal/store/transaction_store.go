package store

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"walletledger/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// AmountSign filters window queries by the sign of the transaction amount.
type AmountSign int

const (
	SignAny AmountSign = iota
	SignDeposits
	SignWithdrawals
)

func (s *TransactionStore) Create(ctx context.Context, tx Getter, userID int64, currency models.Currency, amount decimal.Decimal, status models.TransactionStatus) (models.Transaction, error) {
	var transaction models.Transaction
	err := tx.GetContext(ctx, &transaction, `
		INSERT INTO transactions (user_id, currency, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, currency, amount, status, created
	`, userID, currency, amount, status)
	if err != nil {
		return models.Transaction{}, err
	}
	return transaction, nil
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID int64) (models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.GetContext(ctx, &transaction, `
		SELECT id, user_id, currency, amount, status, created
		FROM transactions
		WHERE id = $1
	`, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return transaction, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := s.db.SelectContext(ctx, &transactions, `
		SELECT id, user_id, currency, amount, status, created
		FROM transactions
		WHERE user_id = $1
		ORDER BY created DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *TransactionStore) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := s.db.SelectContext(ctx, &transactions, `
		SELECT id, user_id, currency, amount, status, created
		FROM transactions
		ORDER BY created DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *TransactionStore) UpdateStatus(ctx context.Context, tx Getter, transactionID int64, status models.TransactionStatus) (models.Transaction, error) {
	var transaction models.Transaction
	err := tx.GetContext(ctx, &transaction, `
		UPDATE transactions
		SET status = $1
		WHERE id = $2
		RETURNING id, user_id, currency, amount, status, created
	`, status, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return transaction, nil
}

func (s *TransactionStore) CountInPeriod(ctx context.Context, start, end time.Time, status *models.TransactionStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE created >= $1 AND created <= $2`
	args := []any{start, end}
	if status != nil {
		args = append(args, *status)
		query += " AND status = $" + itoa(len(args))
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *TransactionStore) ListInPeriod(ctx context.Context, start, end time.Time, status *models.TransactionStatus, sign AmountSign) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, currency, amount, status, created
		FROM transactions
		WHERE created >= $1 AND created <= $2`
	args := []any{start, end}
	if status != nil {
		args = append(args, *status)
		query += " AND status = $" + itoa(len(args))
	}
	switch sign {
	case SignDeposits:
		query += " AND amount > 0"
	case SignWithdrawals:
		query += " AND amount < 0"
	}
	transactions := []models.Transaction{}
	if err := s.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *TransactionStore) SumAmountInPeriod(ctx context.Context, start, end time.Time, currency *models.Currency, status *models.TransactionStatus, sign AmountSign) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE created >= $1 AND created <= $2`
	args := []any{start, end}
	if currency != nil {
		args = append(args, *currency)
		query += " AND currency = $" + itoa(len(args))
	}
	if status != nil {
		args = append(args, *status)
		query += " AND status = $" + itoa(len(args))
	}
	switch sign {
	case SignDeposits:
		query += " AND amount > 0"
	case SignWithdrawals:
		query += " AND amount < 0"
	}
	var sum decimal.Decimal
	if err := s.db.GetContext(ctx, &sum, query, args...); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
