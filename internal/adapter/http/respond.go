package httpadapter

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"rewards-ledger/internal/core/domain"
)

// writeJSON encodes v as the response body. Encoding failures are logged but
// not surfaced; headers are already out by then.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps the ledger error taxonomy onto HTTP status codes. Unknown
// errors are logged and reported as 500 without leaking detail.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrAlreadyClaimed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrInsufficientBalance):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrInvalidProof),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrNotCompleted),
		errors.Is(err, domain.ErrInactive):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("ledger error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// parseHash decodes a hex-encoded 32-byte hash.
func parseHash(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(raw) != domain.HashSize {
		return nil, fmt.Errorf("invalid hash length: got %d bytes, want %d", len(raw), domain.HashSize)
	}
	return raw, nil
}

// parseProof decodes a proof path of hex-encoded sibling hashes.
func parseProof(elems []string) ([][]byte, error) {
	proof := make([][]byte, 0, len(elems))
	for _, e := range elems {
		raw, err := parseHash(e)
		if err != nil {
			return nil, err
		}
		proof = append(proof, raw)
	}
	return proof, nil
}
