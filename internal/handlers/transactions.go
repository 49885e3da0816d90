package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"walletledger/internal/models"
	"walletledger/internal/money"
	"walletledger/internal/services"
)

type createTransactionRequest struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	currency := models.Currency(strings.ToUpper(strings.TrimSpace(req.Currency)))
	if !currency.Valid() {
		respondError(w, http.StatusBadRequest, "unsupported currency")
		return
	}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transaction, err := h.transactions.Create(r.Context(), userID, services.NewTransaction{
		Currency: currency,
		Amount:   amount,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transaction)
}

func (h *Handler) ReverseTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	transactionID, err := pathID(r, "txID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	transaction, err := h.transactions.Reverse(r.Context(), userID, transactionID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var userID *int64
	if raw := query.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = &id
	}
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	transactions, err := h.transactions.List(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
