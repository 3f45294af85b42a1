package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rewards-ledger/internal/core/domain"
)

type mintRequest struct {
	Token  string `json:"token"`
	Amount uint64 `json:"amount"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Token   string `json:"token"`
	Balance uint64 `json:"balance"`
}

// handleMint credits demo funds to an account. The route is only mounted
// when the faucet is enabled in configuration.
func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.accounts.Mint(r.Context(), address, req.Token, req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	balance, err := h.accounts.Balance(r.Context(), address, req.Token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceResponse{Address: address.String(), Token: req.Token, Balance: balance})
}

// handleBalance returns an account's balance for the token given in the
// `token` query parameter.
func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token parameter", http.StatusBadRequest)
		return
	}
	balance, err := h.accounts.Balance(r.Context(), address, token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceResponse{Address: address.String(), Token: token, Balance: balance})
}
