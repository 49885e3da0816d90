package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"walletledger/internal/config"
	"walletledger/internal/models"
	"walletledger/internal/reports"
	"walletledger/internal/services"
	"walletledger/internal/store"
	"walletledger/internal/websocket"

	"github.com/go-chi/chi/v5"
)

type stubUserService struct {
	createFn       func(ctx context.Context, email string) (services.UserDetail, error)
	listFn         func(ctx context.Context, filter store.UserFilter) ([]services.UserDetail, error)
	getByIDFn      func(ctx context.Context, userID int64) (services.UserDetail, error)
	updateStatusFn func(ctx context.Context, userID int64, status models.UserStatus) (models.User, error)
}

func (s stubUserService) Create(ctx context.Context, email string) (services.UserDetail, error) {
	if s.createFn == nil {
		return services.UserDetail{}, nil
	}
	return s.createFn(ctx, email)
}

func (s stubUserService) List(ctx context.Context, filter store.UserFilter) ([]services.UserDetail, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s stubUserService) GetByID(ctx context.Context, userID int64) (services.UserDetail, error) {
	if s.getByIDFn == nil {
		return services.UserDetail{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserService) UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) (models.User, error) {
	if s.updateStatusFn == nil {
		return models.User{}, nil
	}
	return s.updateStatusFn(ctx, userID, status)
}

type stubTransactionService struct {
	createFn  func(ctx context.Context, userID int64, input services.NewTransaction) (models.Transaction, error)
	reverseFn func(ctx context.Context, userID, transactionID int64) (models.Transaction, error)
	listFn    func(ctx context.Context, userID *int64, limit, offset int) ([]models.Transaction, error)
}

func (s stubTransactionService) Create(ctx context.Context, userID int64, input services.NewTransaction) (models.Transaction, error) {
	if s.createFn == nil {
		return models.Transaction{}, nil
	}
	return s.createFn(ctx, userID, input)
}

func (s stubTransactionService) Reverse(ctx context.Context, userID, transactionID int64) (models.Transaction, error) {
	if s.reverseFn == nil {
		return models.Transaction{}, nil
	}
	return s.reverseFn(ctx, userID, transactionID)
}

func (s stubTransactionService) List(ctx context.Context, userID *int64, limit, offset int) ([]models.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, limit, offset)
}

type stubReportService struct {
	weeklyFn func(ctx context.Context, weeks int) ([]services.WeeklyReport, error)
}

func (s stubReportService) Weekly(ctx context.Context, weeks int) ([]services.WeeklyReport, error) {
	if s.weeklyFn == nil {
		return nil, nil
	}
	return s.weeklyFn(ctx, weeks)
}

type stubRunner struct {
	enqueueFn func(weeks int) string
	getFn     func(jobID string) (reports.Job, bool)
}

func (s stubRunner) Enqueue(weeks int) string {
	if s.enqueueFn == nil {
		return "job-1"
	}
	return s.enqueueFn(weeks)
}

func (s stubRunner) Get(jobID string) (reports.Job, bool) {
	if s.getFn == nil {
		return reports.Job{}, false
	}
	return s.getFn(jobID)
}

type stubAuditStore struct {
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type handlerStubs struct {
	users        stubUserService
	transactions stubTransactionService
	reports      stubReportService
	runner       stubRunner
	audit        stubAuditStore
}

func newTestHandler(stubs handlerStubs) *Handler {
	return New(config.Config{AllowedOrigins: "*"}, stubs.users, stubs.transactions, stubs.reports, stubs.runner, stubs.audit, websocket.NewHub(), nil)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	return withURLParams(req, map[string]string{key: value})
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func doJSON(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}
