package handlers

import (
	"net/http"
	"strconv"

	"walletledger/internal/websocket"
)

// WSBalances upgrades the connection and streams balance updates for the
// requested user after every posted or reversed transaction.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if _, err := h.users.GetByID(r.Context(), userID); err != nil {
		h.respondDomainError(w, err)
		return
	}
	websocket.ServeWS(w, r, h.hub, userID)
}
