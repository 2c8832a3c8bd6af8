package web

import (
	"net/http"
	"time"
)

type createSessionRequest struct {
	// Secret is the shared secret of the external auth service.
	Secret string `json:"secret"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession exchanges an identity asserted by the external auth service
// for a session token. Credentials never pass through here; the auth service
// proves itself with the configured shared secret.
func (h *handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if !h.Auth.VerifySecret(req.Secret) {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid auth secret"})
		return
	}

	// First sign-in creates the user document.
	if _, err := h.Ledger.EnsureUser(r.Context(), req.UserID, req.Name, req.Email); err != nil {
		h.error(w, r, err)
		return
	}

	session, err := h.Auth.CreateSession(r.Context(), req.UserID)
	if err != nil {
		h.error(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	if err := h.Auth.DeleteSession(r.Context(), token); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
