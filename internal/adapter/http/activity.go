package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

type createActivityRequest struct {
	Creator       string `json:"creator"`
	ActivityID    string `json:"activity_id"`
	Token         string `json:"token"`
	TotalAmount   uint64 `json:"total_amount"`
	RewardPerUser uint64 `json:"reward_per_user"`
	MaxUsers      uint32 `json:"max_users"`
}

// handleCreateActivity funds a new fixed-reward activity. The funding must
// equal reward_per_user * max_users exactly; a mismatch returns HTTP 422.
func (h *Handler) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	creator, err := domain.ParseAddress(req.Creator)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.activities.CreateActivity(r.Context(), port.CreateActivityParams{
		Creator:       creator,
		ActivityID:    req.ActivityID,
		Token:         req.Token,
		TotalAmount:   req.TotalAmount,
		RewardPerUser: req.RewardPerUser,
		MaxUsers:      req.MaxUsers,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, summary)
}

type activityActionRequest struct {
	Caller     string `json:"caller"`
	Creator    string `json:"creator"`
	ActivityID string `json:"activity_id"`
}

func (h *Handler) decodeActivityAction(w http.ResponseWriter, r *http.Request) (caller, creator domain.Address, id string, ok bool) {
	var req activityActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	creator, err = domain.ParseAddress(req.Creator)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	return caller, creator, req.ActivityID, true
}

// handleCompleteActivity marks an activity completed, opening claims.
func (h *Handler) handleCompleteActivity(w http.ResponseWriter, r *http.Request) {
	caller, creator, id, ok := h.decodeActivityAction(w, r)
	if !ok {
		return
	}
	summary, err := h.activities.CompleteActivity(r.Context(), caller, creator, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

type claimActivityRequest struct {
	Participant string `json:"participant"`
	Creator     string `json:"creator"`
	ActivityID  string `json:"activity_id"`
}

// handleClaimActivity pays the fixed reward to the authenticated participant.
func (h *Handler) handleClaimActivity(w http.ResponseWriter, r *http.Request) {
	var req claimActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	participant, err := domain.ParseAddress(req.Participant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	creator, err := domain.ParseAddress(req.Creator)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.activities.ClaimActivity(r.Context(), creator, req.ActivityID, participant)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// handleDeactivateActivity blocks further claims on an activity.
func (h *Handler) handleDeactivateActivity(w http.ResponseWriter, r *http.Request) {
	caller, creator, id, ok := h.decodeActivityAction(w, r)
	if !ok {
		return
	}
	summary, err := h.activities.DeactivateActivity(r.Context(), caller, creator, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// handleActivityWithdraw returns residual funds to the creator.
func (h *Handler) handleActivityWithdraw(w http.ResponseWriter, r *http.Request) {
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
	creator, err := domain.ParseAddress(req.Owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.activities.WithdrawResidual(r.Context(), caller, creator, req.ID, req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// handleGetActivity returns the activity summary.
func (h *Handler) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	creator, err := domain.ParseAddress(chi.URLParam(r, "creator"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.activities.GetActivity(r.Context(), creator, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// handleParticipantStatus reports one participant's claim state.
func (h *Handler) handleParticipantStatus(w http.ResponseWriter, r *http.Request) {
	creator, err := domain.ParseAddress(chi.URLParam(r, "creator"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	participant, err := domain.ParseAddress(chi.URLParam(r, "participant"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status, err := h.activities.ParticipantStatus(r.Context(), creator, chi.URLParam(r, "id"), participant)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}
