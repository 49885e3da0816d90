package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"walletledger/internal/db"
	"walletledger/internal/models"
	"walletledger/internal/store"
)

type UserAdminStore interface {
	Create(ctx context.Context, tx store.Getter, email string) (models.User, error)
	GetByID(ctx context.Context, userID int64) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter store.UserFilter) ([]models.User, error)
	UpdateStatus(ctx context.Context, tx store.Getter, userID int64, status models.UserStatus) (models.User, error)
}

type BalanceInitStore interface {
	CreateAll(ctx context.Context, tx store.Execer, userID int64) ([]models.Balance, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Balance, error)
}

type UserService struct {
	txRunner db.TxRunner
	users    UserAdminStore
	balances BalanceInitStore
	audit    AuditStore
	logger   *zap.Logger
}

func NewUserService(txRunner db.TxRunner, users UserAdminStore, balances BalanceInitStore, audit AuditStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		txRunner: txRunner,
		users:    users,
		balances: balances,
		audit:    audit,
		logger:   logger,
	}
}

// UserDetail is a user with all of their per-currency balances attached.
type UserDetail struct {
	models.User
	Balances []models.Balance `json:"balances"`
}

// Create registers a user and, in the same transaction, a zero balance for
// every supported currency.
func (s *UserService) Create(ctx context.Context, email string) (UserDetail, error) {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return UserDetail{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return UserDetail{}, &models.UserAlreadyExistsError{Email: email}
	}

	var detail UserDetail
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.Create(ctx, tx, email)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		balances, err := s.balances.CreateAll(ctx, tx, user.ID)
		if err != nil {
			return fmt.Errorf("initialize balances: %w", err)
		}
		detail = UserDetail{User: user, Balances: balances}
		return s.audit.Log(ctx, tx, user.ID, "user.create", "user", strconv.FormatInt(user.ID, 10), "{}")
	})
	if err != nil {
		return UserDetail{}, err
	}

	s.logger.Info("user created", zap.Int64("user_id", detail.ID), zap.String("email", email))
	return detail, nil
}

func (s *UserService) List(ctx context.Context, filter store.UserFilter) ([]UserDetail, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	details := make([]UserDetail, 0, len(users))
	for _, user := range users {
		balances, err := s.balances.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("list balances for user %d: %w", user.ID, err)
		}
		details = append(details, UserDetail{User: user, Balances: balances})
	}
	return details, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (UserDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserDetail{}, &models.UserNotFoundError{UserID: userID}
		}
		return UserDetail{}, fmt.Errorf("load user: %w", err)
	}
	balances, err := s.balances.ListByUser(ctx, userID)
	if err != nil {
		return UserDetail{}, fmt.Errorf("list balances: %w", err)
	}
	return UserDetail{User: user, Balances: balances}, nil
}

// UpdateStatus flips a user between ACTIVE and BLOCKED. Requesting the
// status the user already has is rejected rather than treated as a no-op.
func (s *UserService) UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, &models.UserNotFoundError{UserID: userID}
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if user.Status == status {
		if status == models.UserBlocked {
			return models.User{}, &models.UserAlreadyBlockedError{UserID: userID}
		}
		return models.User{}, &models.UserAlreadyActiveError{UserID: userID}
	}

	var updated models.User
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err = s.users.UpdateStatus(ctx, tx, userID, status)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return s.audit.Log(ctx, tx, userID, "user.status", "user", strconv.FormatInt(userID, 10), `{"status":"`+string(status)+`"}`)
	})
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user status updated",
		zap.Int64("user_id", userID),
		zap.String("status", string(status)),
	)
	return updated, nil
}
