package handlers

import (
	"context"

	"walletledger/internal/models"
	"walletledger/internal/reports"
	"walletledger/internal/services"
	"walletledger/internal/store"
)

type UserService interface {
	Create(ctx context.Context, email string) (services.UserDetail, error)
	List(ctx context.Context, filter store.UserFilter) ([]services.UserDetail, error)
	GetByID(ctx context.Context, userID int64) (services.UserDetail, error)
	UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) (models.User, error)
}

type TransactionService interface {
	Create(ctx context.Context, userID int64, input services.NewTransaction) (models.Transaction, error)
	Reverse(ctx context.Context, userID, transactionID int64) (models.Transaction, error)
	List(ctx context.Context, userID *int64, limit, offset int) ([]models.Transaction, error)
}

type ReportService interface {
	Weekly(ctx context.Context, weeks int) ([]services.WeeklyReport, error)
}

type ReportRunner interface {
	Enqueue(weeks int) string
	Get(jobID string) (reports.Job, bool)
}

type AuditStore interface {
	List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}
