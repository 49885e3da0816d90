package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"walletledger/internal/config"
	"walletledger/internal/websocket"
)

type Handler struct {
	cfg          config.Config
	users        UserService
	transactions TransactionService
	reports      ReportService
	runner       ReportRunner
	audit        AuditStore
	hub          *websocket.Hub
	logger       *zap.Logger
}

func New(cfg config.Config, users UserService, transactions TransactionService, reportSvc ReportService, runner ReportRunner, audit AuditStore, hub *websocket.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:          cfg,
		users:        users,
		transactions: transactions,
		reports:      reportSvc,
		runner:       runner,
		audit:        audit,
		hub:          hub,
		logger:       logger,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Patch("/{id}", h.UpdateUserStatus)
		r.Post("/{id}/transactions", h.CreateTransaction)
		r.Post("/{id}/transactions/{txID}/rollback", h.ReverseTransaction)
	})
	router.Get("/transactions", h.ListTransactions)

	router.Route("/reports", func(r chi.Router) {
		r.Get("/weekly", h.WeeklyReport)
		r.Post("/weekly/async", h.EnqueueWeeklyReport)
		r.Get("/jobs/{id}", h.GetReportJob)
	})

	router.Get("/audit", h.ListAuditLogs)
	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
