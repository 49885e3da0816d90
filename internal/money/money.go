// Package money parses and formats ledger amounts. Amounts are exact
// decimals end to end; binary floating point is never involved.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const maxFractionalDigits = 10

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrZeroAmount      = errors.New("amount must not be zero")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseAmount parses a signed decimal amount. Positive means deposit,
// negative means withdrawal; zero is rejected.
func ParseAmount(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.IsZero() {
		return decimal.Zero, ErrZeroAmount
	}
	if amount.Exponent() < -maxFractionalDigits {
		return decimal.Zero, ErrTooManyDecimals
	}
	return amount, nil
}

func FormatAmount(amount decimal.Decimal) string {
	return amount.String()
}
