package store

import (
	"context"

	"github.com/shopspring/decimal"

	"walletledger/internal/models"
)

// RateStore holds the per-currency conversion rates to USD used by the
// reporting layer.
type RateStore struct {
	db DB
}

type rateRow struct {
	Currency models.Currency `db:"currency"`
	RateUSD  decimal.Decimal `db:"rate_usd"`
}

func NewRateStore(db DB) *RateStore {
	return &RateStore{db: db}
}

func (s *RateStore) GetAllToUSD(ctx context.Context) (map[models.Currency]decimal.Decimal, error) {
	var rows []rateRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT currency, rate_usd
		FROM exchange_rates
	`)
	if err != nil {
		return nil, err
	}
	rates := make(map[models.Currency]decimal.Decimal, len(rows))
	for _, row := range rows {
		rates[row.Currency] = row.RateUSD
	}
	return rates, nil
}

func (s *RateStore) SetRate(ctx context.Context, tx Execer, currency models.Currency, rate decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO exchange_rates (currency, rate_usd)
		VALUES ($1, $2)
		ON CONFLICT (currency) DO UPDATE SET rate_usd = EXCLUDED.rate_usd
	`, currency, rate)
	return err
}
