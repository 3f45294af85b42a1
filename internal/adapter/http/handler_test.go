package httpadapter

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"rewards-ledger/internal/adapter/memory"
	"rewards-ledger/internal/adapter/usecase"
	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
)

var operator = domain.Address{0x01}

func newServer(t *testing.T, faucet bool) (*httptest.Server, *memory.TokenLedger) {
	t.Helper()
	tokens := memory.NewTokenLedger()
	h := NewHandler(
		usecase.NewCampaignUseCase(memory.NewCampaignStore(tokens, operator, nil)),
		usecase.NewActivityUseCase(memory.NewActivityStore(tokens, operator, nil)),
		usecase.NewAccountUseCase(tokens),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		faucet,
	)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, tokens
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	srv, _ := newServer(t, true)

	owner := domain.Address{31: 0x0a}
	claimant := domain.Address{31: 0x10}
	leaf := domain.HashLeaf(claimant[:])

	resp := post(t, srv, "/api/v1/accounts/"+owner.String()+"/mint", map[string]any{
		"token": "RWD", "amount": 100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = post(t, srv, "/api/v1/campaigns", map[string]any{
		"owner":        owner.String(),
		"campaign_id":  "c1",
		"token":        "RWD",
		"total_amount": 100,
		"merkle_root":  hex.EncodeToString(leaf[:]),
		"leaf_count":   1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[port.CampaignSummary](t, resp)
	require.Equal(t, uint64(100), created.Residual)

	// Duplicate creation must conflict.
	resp = post(t, srv, "/api/v1/campaigns", map[string]any{
		"owner":        owner.String(),
		"campaign_id":  "c1",
		"token":        "RWD",
		"total_amount": 100,
		"merkle_root":  hex.EncodeToString(leaf[:]),
		"leaf_count":   1,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	claim := map[string]any{
		"claimant":    claimant.String(),
		"owner":       owner.String(),
		"campaign_id": "c1",
		"slot_index":  0,
		"amount":      100,
		"proof":       []string{},
		"leaf_hash":   hex.EncodeToString(leaf[:]),
	}
	resp = post(t, srv, "/api/v1/campaigns/claim", claim)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	claimed := decode[port.CampaignSummary](t, resp)
	require.Equal(t, uint64(100), claimed.ClaimedAmount)
	require.Equal(t, uint64(0), claimed.Residual)

	// Replay of the same slot conflicts.
	resp = post(t, srv, "/api/v1/campaigns/claim", claim)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, srv, "/api/v1/campaigns/"+owner.String()+"/c1/slots/0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slot := decode[port.SlotStatus](t, resp)
	require.True(t, slot.Claimed)

	resp = get(t, srv, fmt.Sprintf("/api/v1/accounts/%s/balance?token=RWD", claimant))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balance := decode[balanceResponse](t, resp)
	require.Equal(t, uint64(100), balance.Balance)
}

func TestCampaignClaimBadProofOverHTTP(t *testing.T) {
	srv, tokens := newServer(t, false)

	owner := domain.Address{31: 0x0a}
	claimant := domain.Address{31: 0x10}
	require.NoError(t, tokens.Mint(context.Background(), owner, "RWD", 100))
	leaf := domain.HashLeaf(claimant[:])

	resp := post(t, srv, "/api/v1/campaigns", map[string]any{
		"owner":        owner.String(),
		"campaign_id":  "c1",
		"token":        "RWD",
		"total_amount": 100,
		"merkle_root":  hex.EncodeToString(leaf[:]),
		"leaf_count":   1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	wrong := domain.HashLeaf([]byte("someone else"))
	resp = post(t, srv, "/api/v1/campaigns/claim", map[string]any{
		"claimant":    claimant.String(),
		"owner":       owner.String(),
		"campaign_id": "c1",
		"slot_index":  0,
		"amount":      100,
		"proof":       []string{},
		"leaf_hash":   hex.EncodeToString(wrong[:]),
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, srv, "/api/v1/campaigns/"+owner.String()+"/missing")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestActivityLifecycleOverHTTP(t *testing.T) {
	srv, tokens := newServer(t, false)

	creator := domain.Address{31: 0x0b}
	participant := domain.Address{31: 0x20}
	stranger := domain.Address{31: 0x66}
	require.NoError(t, tokens.Mint(context.Background(), creator, "RWD", 100))

	resp := post(t, srv, "/api/v1/activities", map[string]any{
		"creator":         creator.String(),
		"activity_id":     "a1",
		"token":           "RWD",
		"total_amount":    100,
		"reward_per_user": 10,
		"max_users":       10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Claims are rejected until the activity completes.
	claim := map[string]any{
		"participant": participant.String(),
		"creator":     creator.String(),
		"activity_id": "a1",
	}
	resp = post(t, srv, "/api/v1/activities/claim", claim)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// Only the creator may complete.
	resp = post(t, srv, "/api/v1/activities/complete", map[string]any{
		"caller": stranger.String(), "creator": creator.String(), "activity_id": "a1",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = post(t, srv, "/api/v1/activities/complete", map[string]any{
		"caller": creator.String(), "creator": creator.String(), "activity_id": "a1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = post(t, srv, "/api/v1/activities/claim", claim)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[port.ActivitySummary](t, resp)
	require.Equal(t, uint32(1), summary.CurrentUsers)

	resp = post(t, srv, "/api/v1/activities/claim", claim)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, srv, "/api/v1/activities/"+creator.String()+"/a1/claims/"+participant.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[port.ParticipantStatus](t, resp)
	require.True(t, status.Claimed)
	require.NotNil(t, status.ClaimedAt)

	resp = post(t, srv, "/api/v1/activities/withdraw", map[string]any{
		"caller": creator.String(), "owner": creator.String(), "id": "a1", "amount": 90,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drained := decode[port.ActivitySummary](t, resp)
	require.Equal(t, uint64(0), drained.Residual)
}

func TestFaucetDisabled(t *testing.T) {
	srv, _ := newServer(t, false)
	addr := domain.Address{31: 0x30}
	resp := post(t, srv, "/api/v1/accounts/"+addr.String()+"/mint", map[string]any{
		"token": "RWD", "amount": 5,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestBadRequests(t *testing.T) {
	srv, _ := newServer(t, false)

	resp, err := http.Post(srv.URL+"/api/v1/campaigns", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = post(t, srv, "/api/v1/campaigns", map[string]any{
		"owner": "not-hex", "campaign_id": "c", "token": "RWD",
		"total_amount": 1, "merkle_root": "00", "leaf_count": 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, srv, "/api/v1/accounts/"+domain.Address{}.String()+"/balance")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
