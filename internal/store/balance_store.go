package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"walletledger/internal/models"
)

type BalanceStore struct {
	db DB
}

func NewBalanceStore(db DB) *BalanceStore {
	return &BalanceStore{db: db}
}

func (s *BalanceStore) GetByUserAndCurrency(ctx context.Context, userID int64, currency models.Currency) (models.Balance, error) {
	var balance models.Balance
	err := s.db.GetContext(ctx, &balance, `
		SELECT user_id, currency, amount
		FROM balances
		WHERE user_id = $1 AND currency = $2
	`, userID, currency)
	if err != nil {
		return models.Balance{}, err
	}
	return balance, nil
}

// GetForUpdate locks the balance row for the rest of the enclosing
// transaction. Concurrent read-then-write sequences on the same
// (user, currency) pair block here instead of racing.
func (s *BalanceStore) GetForUpdate(ctx context.Context, tx Getter, userID int64, currency models.Currency) (models.Balance, error) {
	var balance models.Balance
	err := tx.GetContext(ctx, &balance, `
		SELECT user_id, currency, amount
		FROM balances
		WHERE user_id = $1 AND currency = $2
		FOR UPDATE
	`, userID, currency)
	if err != nil {
		return models.Balance{}, err
	}
	return balance, nil
}

func (s *BalanceStore) ListByUser(ctx context.Context, userID int64) ([]models.Balance, error) {
	balances := []models.Balance{}
	err := s.db.SelectContext(ctx, &balances, `
		SELECT user_id, currency, amount
		FROM balances
		WHERE user_id = $1
		ORDER BY currency
	`, userID)
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// ApplyDelta locks the balance row, adds delta and persists the result. It
// re-validates the non-negative invariant under the lock even when the
// caller has already pre-checked it, so a racing operation that drained the
// balance after the pre-check still gets rejected.
func (s *BalanceStore) ApplyDelta(ctx context.Context, tx Tx, userID int64, currency models.Currency, delta decimal.Decimal) (models.Balance, error) {
	balance, err := s.GetForUpdate(ctx, tx, userID, currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Balance{}, &models.BalanceNotFoundError{UserID: userID, Currency: currency}
		}
		return models.Balance{}, err
	}
	updated := balance.Amount.Add(delta)
	if updated.IsNegative() {
		return models.Balance{}, &models.InsufficientBalanceError{
			Currency:  currency,
			Current:   balance.Amount,
			Requested: delta,
		}
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE balances
		SET amount = $1
		WHERE user_id = $2 AND currency = $3
	`, updated, userID, currency); err != nil {
		return models.Balance{}, err
	}
	balance.Amount = updated
	return balance, nil
}

// CreateAll inserts a zero balance row for every supported currency. Runs in
// the same transaction as the user insert so a user never exists without its
// full set of balances.
func (s *BalanceStore) CreateAll(ctx context.Context, tx Execer, userID int64) ([]models.Balance, error) {
	balances := make([]models.Balance, 0, len(models.SupportedCurrencies))
	for _, currency := range models.SupportedCurrencies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO balances (user_id, currency, amount)
			VALUES ($1, $2, 0)
		`, userID, currency); err != nil {
			return nil, err
		}
		balances = append(balances, models.Balance{
			UserID:   userID,
			Currency: currency,
			Amount:   decimal.Zero,
		})
	}
	return balances, nil
}
