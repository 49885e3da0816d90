package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	USD  Currency = "USD"
	EUR  Currency = "EUR"
	AUD  Currency = "AUD"
	CAD  Currency = "CAD"
	ARS  Currency = "ARS"
	PLN  Currency = "PLN"
	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
	DOGE Currency = "DOGE"
	USDT Currency = "USDT"
)

// SupportedCurrencies is the fixed set of currencies a user holds a balance
// in. A zero balance row exists for each of these from the moment the user
// is created.
var SupportedCurrencies = []Currency{USD, EUR, AUD, CAD, ARS, PLN, BTC, ETH, DOGE, USDT}

func (c Currency) Valid() bool {
	for _, supported := range SupportedCurrencies {
		if c == supported {
			return true
		}
	}
	return false
}

type UserStatus string

const (
	UserActive  UserStatus = "ACTIVE"
	UserBlocked UserStatus = "BLOCKED"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserBlocked
}

type TransactionStatus string

const (
	TransactionPosted   TransactionStatus = "POSTED"
	TransactionReversed TransactionStatus = "REVERSED"
)

type User struct {
	ID      int64      `db:"id" json:"id"`
	Email   string     `db:"email" json:"email"`
	Status  UserStatus `db:"status" json:"status"`
	Created time.Time  `db:"created" json:"created"`
}

type Balance struct {
	UserID   int64           `db:"user_id" json:"user_id"`
	Currency Currency        `db:"currency" json:"currency"`
	Amount   decimal.Decimal `db:"amount" json:"amount"`
}

// Transaction is a single balance movement. A positive amount is a deposit,
// a negative amount a withdrawal. Once Status is REVERSED the record is
// terminal and its balance effect has been undone exactly once.
type Transaction struct {
	ID       int64             `db:"id" json:"id"`
	UserID   int64             `db:"user_id" json:"user_id"`
	Currency Currency          `db:"currency" json:"currency"`
	Amount   decimal.Decimal   `db:"amount" json:"amount"`
	Status   TransactionStatus `db:"status" json:"status"`
	Created  time.Time         `db:"created" json:"created"`
}
