package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

type createCampaignRequest struct {
	Owner       string `json:"owner"`
	CampaignID  string `json:"campaign_id"`
	Token       string `json:"token"`
	TotalAmount uint64 `json:"total_amount"`
	MerkleRoot  string `json:"merkle_root"`
	LeafCount   uint32 `json:"leaf_count"`
}

// handleCreateCampaign funds a new Merkle-gated campaign. The owner's balance
// moves into campaign escrow atomically with record creation; a duplicate
// campaign id results in HTTP 409 with no funds moved.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	owner, err := domain.ParseAddress(req.Owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	root, err := parseHash(req.MerkleRoot)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.campaigns.CreateCampaign(r.Context(), port.CreateCampaignParams{
		Owner:       owner,
		CampaignID:  req.CampaignID,
		Token:       req.Token,
		TotalAmount: req.TotalAmount,
		MerkleRoot:  root,
		LeafCount:   req.LeafCount,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, summary)
}

type claimRewardRequest struct {
	Claimant   string   `json:"claimant"`
	Owner      string   `json:"owner"`
	CampaignID string   `json:"campaign_id"`
	SlotIndex  uint32   `json:"slot_index"`
	Amount     uint64   `json:"amount"`
	Proof      []string `json:"proof"`
	LeafHash   string   `json:"leaf_hash"`
}

// handleClaimReward verifies a Merkle membership proof and releases the claim
// amount from escrow to the claimant. Replayed slots return HTTP 409, failed
// proofs HTTP 422.
func (h *Handler) handleClaimReward(w http.ResponseWriter, r *http.Request) {
	var req claimRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	claimant, err := domain.ParseAddress(req.Claimant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	owner, err := domain.ParseAddress(req.Owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	leafHash, err := parseHash(req.LeafHash)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.campaigns.ClaimReward(r.Context(), port.ClaimRewardParams{
		Claimant:   claimant,
		Owner:      owner,
		CampaignID: req.CampaignID,
		SlotIndex:  req.SlotIndex,
		Amount:     req.Amount,
		Proof:      proof,
		LeafHash:   leafHash,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

type withdrawRequest struct {
	Caller string `json:"caller"`
	Owner  string `json:"owner"`
	ID     string `json:"id"`
	Amount uint64 `json:"amount"`
}

// handleCampaignWithdraw returns unclaimed residual funds to the campaign
// owner.
func (h *Handler) handleCampaignWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	owner, err := domain.ParseAddress(req.Owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.campaigns.WithdrawResidual(r.Context(), caller, owner, req.ID, req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// handleGetCampaign returns the campaign summary.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	owner, err := domain.ParseAddress(chi.URLParam(r, "owner"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.campaigns.GetCampaign(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// handleSlotStatus reports whether one claim slot has been paid.
func (h *Handler) handleSlotStatus(w http.ResponseWriter, r *http.Request) {
	owner, err := domain.ParseAddress(chi.URLParam(r, "owner"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slot, err := strconv.ParseUint(chi.URLParam(r, "slot"), 10, 32)
	if err != nil {
		http.Error(w, "invalid slot index", http.StatusBadRequest)
		return
	}
	status, err := h.campaigns.SlotStatus(r.Context(), owner, chi.URLParam(r, "id"), uint32(slot))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}
