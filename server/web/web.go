// Package web exposes the ledger's operations as a JSON API. Rendering is a
// client concern; everything here is interface boundary per the ledger's
// error taxonomy.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/campushq/unievents/server"
	"github.com/campushq/unievents/server/auth"
	"github.com/campushq/unievents/server/ledger"
)

type handler struct {
	*server.Server
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) error(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrFull), errors.Is(err, ledger.ErrLimitExceeded), errors.Is(err, ledger.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, auth.ErrSessionNotFound):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("err", err))
		respondJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %w", ledger.ErrInvalidArgument)
	}
	return nil
}

// identity returns the authenticated caller or writes a 401.
func (h *handler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity := auth.GetIdentity(r)
	if identity.Anonymous() {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return auth.Identity{}, false
	}
	return identity, true
}
