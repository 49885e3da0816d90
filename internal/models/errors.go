package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain error kinds. Each carries the structured fields the caller needs;
// mapping a kind to an HTTP status or a user-facing message is the request
// layer's job.

type UserNotFoundError struct {
	UserID int64
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.UserID)
}

type UserAlreadyExistsError struct {
	Email string
}

func (e *UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email %q already exists", e.Email)
}

type UserAlreadyBlockedError struct {
	UserID int64
}

func (e *UserAlreadyBlockedError) Error() string {
	return fmt.Sprintf("user %d is already blocked", e.UserID)
}

type UserAlreadyActiveError struct {
	UserID int64
}

func (e *UserAlreadyActiveError) Error() string {
	return fmt.Sprintf("user %d is already active", e.UserID)
}

type UserBlockedError struct {
	UserID    int64
	Operation string
}

func (e *UserBlockedError) Error() string {
	return fmt.Sprintf("cannot perform %q for blocked user %d", e.Operation, e.UserID)
}

// BalanceNotFoundError indicates a missing balance row for an existing user.
// Users are created with a row per supported currency, so this is a
// consistency fault rather than a user error.
type BalanceNotFoundError struct {
	UserID   int64
	Currency Currency
}

func (e *BalanceNotFoundError) Error() string {
	return fmt.Sprintf("balance for user %d in %s not found", e.UserID, e.Currency)
}

type InsufficientBalanceError struct {
	Currency  Currency
	Current   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in %s: current %s, requested %s",
		e.Currency, e.Current, e.Requested.Abs())
}

type TransactionNotFoundError struct {
	TransactionID int64
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %d not found", e.TransactionID)
}

type TransactionOwnershipError struct {
	TransactionID int64
	UserID        int64
}

func (e *TransactionOwnershipError) Error() string {
	return fmt.Sprintf("transaction %d does not belong to user %d", e.TransactionID, e.UserID)
}

type TransactionAlreadyReversedError struct {
	TransactionID int64
}

func (e *TransactionAlreadyReversedError) Error() string {
	return fmt.Sprintf("transaction %d is already reversed", e.TransactionID)
}
