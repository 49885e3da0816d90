package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"walletledger/internal/models"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the typed domain errors onto HTTP statuses. A
// missing balance row is a data-integrity fault, not a client mistake, so it
// surfaces as a 500 and gets logged loudly.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var (
		userNotFound    *models.UserNotFoundError
		userExists      *models.UserAlreadyExistsError
		userBlocked     *models.UserBlockedError
		alreadyBlocked  *models.UserAlreadyBlockedError
		alreadyActive   *models.UserAlreadyActiveError
		balanceMissing  *models.BalanceNotFoundError
		insufficient    *models.InsufficientBalanceError
		txNotFound      *models.TransactionNotFoundError
		txOwnership     *models.TransactionOwnershipError
		alreadyReversed *models.TransactionAlreadyReversedError
	)
	switch {
	case errors.As(err, &userNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &txNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &userExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &userBlocked):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &txOwnership):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &insufficient):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &alreadyReversed):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &alreadyBlocked):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &alreadyActive):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &balanceMissing):
		h.logger.Error("balance row missing", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "balance record missing")
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
